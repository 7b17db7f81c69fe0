package core

// Item 是物品目录中的一行：id、展示名、类型（逗号分隔）。
// ID 是唯一标识；DisplayName 是面向人的次级键，不保证唯一。
type Item struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Genres      string `json:"genres"`
}

// Synopsis 是物品简介，ID 与 Item.ID 同域。
// Name 是简介表自带的名称列，用于按名称查找简介。
type Synopsis struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Text string `json:"text"`
}

// Rating 是一条用户评分记录。
type Rating struct {
	UserID int64   `json:"user_id"`
	ItemID int64   `json:"item_id"`
	Score  float64 `json:"score"`
}

// Neighbor 是相似度检索的单个结果：领域 id 与打分。
type Neighbor struct {
	ID    int64   `json:"id"`
	Score float64 `json:"similarity"`
}

// NeighborResult 是按相关度排序的近邻列表（nearest 降序，farthest 升序）。
type NeighborResult []Neighbor

// IDs 返回结果中的 id 序列，保持顺序。
func (r NeighborResult) IDs() []int64 {
	out := make([]int64, len(r))
	for i, n := range r {
		out[i] = n.ID
	}
	return out
}

// SimilarItem 是物品相似检索面向用户的一行，附带目录元信息。
type SimilarItem struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Genres     string  `json:"genres"`
	Similarity float64 `json:"similarity"`
}

// RecommendationEntry 是聚合推荐的一行。
// SupportCount 是偏好集中包含该物品的相似用户数。
type RecommendationEntry struct {
	SupportCount int    `json:"n"`
	ItemName     string `json:"item_name"`
	Genres       string `json:"genres"`
	Synopsis     string `json:"synopsis"`
}

// ScoredName 是混合推荐的输出：物品名与加权分。
type ScoredName struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}
