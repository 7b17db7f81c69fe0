// Package hybrid 组合用户协同路径与物品内容路径，输出加权推荐。
//
// 流程：先走用户路径得到推荐物品名，再以每个物品名为种子并发检索相似物品，
// 用户路径每个名字加 UserWeight，内容路径每出现一次加 ContentWeight，
// 按分数降序取前 n，同分按首次出现顺序（用户路径在前，种子按顺序）。
// 用户已喜欢的物品（Exclude 返回的名字）不参与打分。
package hybrid

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/embedrec/core"
)

// UserPath 返回用户协同路径的推荐物品名，按推荐顺序。
type UserPath interface {
	RecommendNames(ctx context.Context, userID int64, n int) ([]string, error)
}

// ContentPath 返回与 name 最相似的物品名，按相似度降序。
type ContentPath interface {
	SimilarNames(ctx context.Context, name string, n int) ([]string, error)
}

// Recommender 是混合推荐器。
type Recommender struct {
	Users UserPath
	Items ContentPath

	UserWeight    float64
	ContentWeight float64

	MaxConcurrent int           // 最大并发种子数（0 表示无限制）
	Timeout       time.Duration // 每个种子的超时时间（0 表示不限制）

	// Exclude 返回用户已知的物品名，这些名字从结果中剔除；nil 表示不剔除。
	Exclude func(ctx context.Context, userID int64) (map[string]struct{}, error)

	Logger zerolog.Logger
}

// New 创建混合推荐器，权重默认各 0.5。
func New(users UserPath, items ContentPath, logger zerolog.Logger) *Recommender {
	return &Recommender{
		Users:         users,
		Items:         items,
		UserWeight:    0.5,
		ContentWeight: 0.5,
		MaxConcurrent: 4,
		Logger:        logger.With().Str("component", "hybrid").Logger(),
	}
}

func (r *Recommender) Name() string { return "hybrid" }

// Recommend 返回 userID 的前 n 个混合推荐。
func (r *Recommender) Recommend(ctx context.Context, userID int64, n int) ([]core.ScoredName, error) {
	if n <= 0 {
		n = core.Defaults.DefaultTopN()
	}
	seeds, err := r.Users.RecommendNames(ctx, userID, n)
	if err != nil {
		return nil, err
	}
	if len(seeds) == 0 {
		return []core.ScoredName{}, nil
	}

	var known map[string]struct{}
	if r.Exclude != nil {
		if known, err = r.Exclude(ctx, userID); err != nil {
			return nil, err
		}
	}

	content, err := r.expand(ctx, seeds, n)
	if err != nil {
		return nil, err
	}

	scores := newScoreboard(known)
	for _, name := range seeds {
		scores.add(name, r.UserWeight)
	}
	for _, names := range content {
		for _, name := range names {
			scores.add(name, r.ContentWeight)
		}
	}
	return scores.top(n), nil
}

// expand 并发检索每个种子的相似物品，结果按种子顺序放回，保证输出确定。
func (r *Recommender) expand(ctx context.Context, seeds []string, n int) ([][]string, error) {
	out := make([][]string, len(seeds))
	eg, egCtx := errgroup.WithContext(ctx)
	if r.MaxConcurrent > 0 {
		eg.SetLimit(r.MaxConcurrent)
	}

	for i, seed := range seeds {
		eg.Go(func() error {
			seedCtx := egCtx
			if r.Timeout > 0 {
				var cancel context.CancelFunc
				seedCtx, cancel = context.WithTimeout(egCtx, r.Timeout)
				defer cancel()
			}
			names, err := r.Items.SimilarNames(seedCtx, seed, n)
			if err != nil {
				if core.IsNotFound(err) {
					// 种子不在物品向量中，跳过
					r.Logger.Debug().Str("seed", seed).Msg("seed has no item embedding, skipped")
					return nil
				}
				return err
			}
			out[i] = names
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type scoreboard struct {
	index   map[string]int
	items   []core.ScoredName
	exclude map[string]struct{}
}

func newScoreboard(exclude map[string]struct{}) *scoreboard {
	return &scoreboard{index: make(map[string]int), exclude: exclude}
}

func (s *scoreboard) add(name string, w float64) {
	if name == "" {
		return
	}
	if _, ok := s.exclude[name]; ok {
		return
	}
	if i, ok := s.index[name]; ok {
		s.items[i].Score += w
		return
	}
	s.index[name] = len(s.items)
	s.items = append(s.items, core.ScoredName{Name: name, Score: w})
}

func (s *scoreboard) top(n int) []core.ScoredName {
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].Score > s.items[j].Score
	})
	if s.items == nil {
		return []core.ScoredName{}
	}
	if len(s.items) > n {
		return s.items[:n]
	}
	return s.items
}
