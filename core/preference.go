package core

// Preference 是用户偏好集中的一项。
type Preference struct {
	ItemID      int64   `json:"item_id"`
	DisplayName string  `json:"display_name"`
	Genres      string  `json:"genres"`
	Score       float64 `json:"score"`
}

// PreferenceSet 是用户评分不低于其个人 75 分位的物品集合，按评分降序。
// 按需计算，不持久化。
type PreferenceSet []Preference

// Names 返回展示名序列，保持顺序。
func (s PreferenceSet) Names() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.DisplayName
	}
	return out
}

// NameSet 返回展示名集合，用于新颖性过滤。
func (s PreferenceSet) NameSet() map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for _, p := range s {
		out[p.DisplayName] = struct{}{}
	}
	return out
}

// Contains 判断展示名是否在集合中。
func (s PreferenceSet) Contains(name string) bool {
	for _, p := range s {
		if p.DisplayName == name {
			return true
		}
	}
	return false
}

// Without 返回去掉 exclude 中展示名后的子集，保持顺序。
func (s PreferenceSet) Without(exclude map[string]struct{}) PreferenceSet {
	if len(exclude) == 0 {
		return s
	}
	out := make(PreferenceSet, 0, len(s))
	for _, p := range s {
		if _, ok := exclude[p.DisplayName]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}
