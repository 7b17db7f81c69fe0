// Package aggregate 把相似用户的偏好集合并成一份推荐列表。
//
// 流程：
//  1. 按近邻顺序逐个抽取相似用户的偏好集
//  2. 去掉查询用户自己偏好集中已有的物品（新颖性）
//  3. 统计每个物品被多少个相似用户支持（同一用户最多计一次）
//  4. 按支持数降序排序，同分按首次出现顺序
//  5. 取前 n 个，补全类型与简介
package aggregate

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/rushteam/embedrec/catalog"
	"github.com/rushteam/embedrec/core"
	"github.com/rushteam/embedrec/pkg/metrics"
	"github.com/rushteam/embedrec/preference"
)

// Policy 决定候选物品缺少简介时的处理方式。
type Policy int

const (
	// PolicySkip 跳过该物品并计入 Result.Dropped，继续补足 n 条
	PolicySkip Policy = iota
	// PolicyFail 直接返回 NOT_FOUND，整个聚合失败
	PolicyFail
)

func (p Policy) String() string {
	if p == PolicyFail {
		return "fail"
	}
	return "skip"
}

// ParsePolicy 解析 "skip" / "fail"，空串视为 skip。
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "skip":
		return PolicySkip, nil
	case "fail":
		return PolicyFail, nil
	default:
		return PolicySkip, core.NewInvalidInputError(core.ModuleAggregate, "unknown missing-synopsis policy %q", s)
	}
}

// Result 是聚合结果。
type Result struct {
	Entries []core.RecommendationEntry `json:"entries"`
	// Dropped 是因缺少简介被跳过的候选数
	Dropped int `json:"dropped"`
}

// Aggregator 是推荐聚合器，无状态，可并发使用。
type Aggregator struct {
	Extractor *preference.Extractor
	Policy    Policy
	Logger    zerolog.Logger

	// Accept 可选，返回 false 的条目不进入结果，也不计入 Dropped
	Accept func(core.RecommendationEntry) (bool, error)
}

// New 创建聚合器
func New(extractor *preference.Extractor, policy Policy, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		Extractor: extractor,
		Policy:    policy,
		Logger:    logger.With().Str("component", "aggregate").Logger(),
	}
}

type candidate struct {
	name  string
	count int
}

// Aggregate 汇总 neighbors 的偏好，返回至多 n 条新颖推荐。
// 没有任何相似用户贡献新物品时返回空结果，不报错。
func (a *Aggregator) Aggregate(
	ctx context.Context,
	neighbors core.NeighborResult,
	exclude core.PreferenceSet,
	cat *catalog.Catalog,
	ratings []core.Rating,
	n int,
) (Result, error) {
	if n <= 0 {
		n = core.Defaults.DefaultTopN()
	}
	candidates, err := a.pool(ctx, neighbors, exclude.NameSet(), cat, ratings)
	if err != nil {
		return Result{}, err
	}

	res := Result{Entries: make([]core.RecommendationEntry, 0, min(n, len(candidates)))}
	for _, c := range candidates {
		if len(res.Entries) == n {
			break
		}
		rows, err := cat.ResolveByName(c.name)
		if err != nil {
			return Result{}, err
		}
		first, _ := catalog.First(rows)
		synopsis, err := cat.SynopsisByID(first.ID)
		if err != nil {
			if a.Policy == PolicyFail || !core.IsNotFound(err) {
				return Result{}, err
			}
			res.Dropped++
			a.Logger.Debug().Str("item_name", c.name).Int64("item_id", first.ID).Msg("no synopsis, entry dropped")
			continue
		}
		entry := core.RecommendationEntry{
			SupportCount: c.count,
			ItemName:     c.name,
			Genres:       first.Genres,
			Synopsis:     synopsis,
		}
		if a.Accept != nil {
			ok, err := a.Accept(entry)
			if err != nil {
				return Result{}, err
			}
			if !ok {
				continue
			}
		}
		res.Entries = append(res.Entries, entry)
	}
	metrics.RecordDropped("missing_synopsis", res.Dropped)
	return res, nil
}

// pool 统计支持数并排序，同分保持首次出现顺序。
func (a *Aggregator) pool(
	ctx context.Context,
	neighbors core.NeighborResult,
	exclude map[string]struct{},
	cat *catalog.Catalog,
	ratings []core.Rating,
) ([]candidate, error) {
	byUser := preference.GroupByUser(ratings)
	index := make(map[string]int)
	var out []candidate

	for _, nb := range neighbors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prefs, err := a.Extractor.FromUserRatings(nb.ID, byUser[nb.ID], cat)
		if err != nil {
			if core.IsInsufficientData(err) {
				a.Logger.Debug().Int64("user_id", nb.ID).Msg("neighbour has no ratings")
				continue
			}
			return nil, err
		}

		seen := make(map[string]struct{}, len(prefs))
		for _, p := range prefs {
			name := p.DisplayName
			if name == "" {
				continue
			}
			if _, ok := exclude[name]; ok {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}

			if i, ok := index[name]; ok {
				out[i].count++
				continue
			}
			index[name] = len(out)
			out = append(out, candidate{name: name, count: 1})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].count > out[j].count
	})
	return out, nil
}
