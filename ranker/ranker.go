// Package ranker 在稠密向量矩阵上做精确的 top/bottom-N 相似度排序。
//
// 相似度为查询行与每一行的点积，不做归一化。排序使用稳定升序 argsort：
//   - Nearest：取 argsort 的最后 n+1 个
//   - Farthest：取 argsort 的前 n+1 个
//
// 多取的一个用于给调用方剔除查询自身。
package ranker

import (
	"fmt"
	"sort"

	"github.com/rushteam/embedrec/core"
	"github.com/rushteam/embedrec/embedding"
)

// Direction 是排序方向。
type Direction int

const (
	Nearest Direction = iota
	Farthest
)

func (d Direction) String() string {
	if d == Farthest {
		return "farthest"
	}
	return "nearest"
}

// ParseDirection 解析 "nearest" / "farthest"，空串视为 nearest。
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "nearest":
		return Nearest, nil
	case "farthest":
		return Farthest, nil
	default:
		return Nearest, core.NewInvalidInputError(core.ModuleRanker, "unknown direction %q", s)
	}
}

// Selection 是原始排序结果：全部打分与被选中的行号（argsort 顺序）。
type Selection struct {
	Scores  []float64 `json:"scores"`
	Indices []int     `json:"indices"`
}

// Scores 计算 matrix 每一行与第 query 行的点积。
func Scores(m embedding.Matrix, query int) ([]float64, error) {
	if len(m) == 0 {
		return nil, core.NewInvalidInputError(core.ModuleRanker, "matrix is empty")
	}
	if query < 0 || query >= len(m) {
		return nil, core.NewInvalidInputError(core.ModuleRanker, "query row %d outside matrix with %d rows", query, len(m))
	}
	q := m[query]
	scores := make([]float64, len(m))
	for i, row := range m {
		if len(row) != len(q) {
			return nil, core.NewInvalidInputError(core.ModuleRanker,
				"row %d has %d columns, query has %d", i, len(row), len(q))
		}
		scores[i] = dotProduct(row, q)
	}
	return scores, nil
}

func dotProduct(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Argsort 返回使 scores 升序的下标序列，相等分数保持原下标顺序。
func Argsort(scores []float64) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return scores[idx[i]] < scores[idx[j]]
	})
	return idx
}

// Rank 对第 query 行做排序，选出 n+1 行。n <= 0 时使用默认条数。
func Rank(m embedding.Matrix, query, n int, dir Direction) (Selection, error) {
	if n <= 0 {
		n = core.Defaults.DefaultTopN()
	}
	scores, err := Scores(m, query)
	if err != nil {
		return Selection{}, err
	}
	order := Argsort(scores)
	// 先比较再加一，避免 n 接近 MaxInt 时溢出
	k := len(order)
	if n < len(order) {
		k = n + 1
	}

	var picked []int
	switch dir {
	case Nearest:
		picked = order[len(order)-k:]
	case Farthest:
		picked = order[:k]
	default:
		return Selection{}, core.NewInvalidInputError(core.ModuleRanker, "unknown direction %d", int(dir))
	}
	indices := make([]int, k)
	copy(indices, picked)
	return Selection{Scores: scores, Indices: indices}, nil
}

// Ordered 返回按相关度排序的选中行：nearest 分数降序，farthest 分数升序，同分按行号升序。
func (s Selection) Ordered(dir Direction) []int {
	out := make([]int, len(s.Indices))
	copy(out, s.Indices)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := s.Scores[out[i]], s.Scores[out[j]]
		if a != b {
			if dir == Farthest {
				return a < b
			}
			return a > b
		}
		return out[i] < out[j]
	})
	return out
}

// Decode 把选中行映射回领域 id，保持 Ordered 顺序；不在 decode 中的行被跳过。
func Decode(sel Selection, dir Direction, decode map[int]int64) core.NeighborResult {
	rows := sel.Ordered(dir)
	out := make(core.NeighborResult, 0, len(rows))
	for _, row := range rows {
		id, ok := decode[row]
		if !ok {
			continue
		}
		out = append(out, core.Neighbor{ID: id, Score: sel.Scores[row]})
	}
	return out
}

// ExcludeSelf 去掉查询自身 id 并截断到 n 条。
func ExcludeSelf(result core.NeighborResult, self int64, n int) core.NeighborResult {
	if n <= 0 {
		n = core.Defaults.DefaultTopN()
	}
	out := make(core.NeighborResult, 0, min(n, len(result)))
	for _, nb := range result {
		if nb.ID == self {
			continue
		}
		if len(out) == n {
			break
		}
		out = append(out, nb)
	}
	return out
}

// String 便于日志输出。
func (s Selection) String() string {
	return fmt.Sprintf("Selection{rows=%d, picked=%v}", len(s.Scores), s.Indices)
}
