// Package preference 从评分表中抽取用户偏好集。
//
// 偏好集 = 评分不低于该用户个人分位阈值（默认 75 分位）的物品，按评分降序。
// 评分少于 4 条时阈值可能退化（例如只有一条评分时就是该评分本身）。
package preference

import (
	"math"
	"sort"

	"github.com/rushteam/embedrec/catalog"
	"github.com/rushteam/embedrec/core"
)

// Percentile 计算 values 的 p 分位数（0 <= p <= 1），在最近两个秩之间线性插值，
// 位置为 p*(len-1)。values 为空时返回 NaN，不修改入参。
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// Extractor 是用户偏好抽取器。
type Extractor struct {
	// Percentile 是阈值分位点，<= 0 时使用默认值 0.75
	Percentile float64
}

// NewExtractor 创建偏好抽取器
func NewExtractor(percentile float64) *Extractor {
	return &Extractor{Percentile: percentile}
}

func (e *Extractor) percentile() float64 {
	if e == nil || e.Percentile <= 0 {
		return core.Defaults.DefaultPercentile()
	}
	return e.Percentile
}

// Extract 从全量评分中抽取 userID 的偏好集。
func (e *Extractor) Extract(userID int64, ratings []core.Rating, cat *catalog.Catalog) (core.PreferenceSet, error) {
	var own []core.Rating
	for _, r := range ratings {
		if r.UserID == userID {
			own = append(own, r)
		}
	}
	return e.FromUserRatings(userID, own, cat)
}

// FromUserRatings 与 Extract 相同，但 own 已经是该用户的评分（见 GroupByUser）。
func (e *Extractor) FromUserRatings(userID int64, own []core.Rating, cat *catalog.Catalog) (core.PreferenceSet, error) {
	if cat == nil {
		return nil, core.NewInvalidInputError(core.ModulePreference, "catalog is nil")
	}
	if len(own) == 0 {
		return nil, core.NewInsufficientDataError(core.ModulePreference, "user %d has no ratings", userID)
	}

	scores := make([]float64, len(own))
	for i, r := range own {
		scores[i] = r.Score
	}
	threshold := Percentile(scores, e.percentile())

	kept := make([]core.Rating, 0, len(own))
	for _, r := range own {
		if r.Score >= threshold {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	out := make(core.PreferenceSet, 0, len(kept))
	for _, r := range kept {
		rows, err := cat.ResolveByID(r.ItemID)
		if err != nil {
			// 目录中不存在的物品直接丢弃
			continue
		}
		it, _ := catalog.First(rows)
		out = append(out, core.Preference{
			ItemID:      it.ID,
			DisplayName: it.DisplayName,
			Genres:      it.Genres,
			Score:       r.Score,
		})
	}
	return out, nil
}

// GroupByUser 按用户分组评分，组内保持原顺序。
func GroupByUser(ratings []core.Rating) map[int64][]core.Rating {
	out := make(map[int64][]core.Rating)
	for _, r := range ratings {
		out[r.UserID] = append(out[r.UserID], r)
	}
	return out
}
