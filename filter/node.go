package filter

import (
	"context"

	"github.com/rushteam/embedrec/core"
)

// Chain 组合多个过滤器，任意一个返回 true 即过滤掉该条目。
type Chain []Filter

func (c Chain) Name() string { return "filter.chain" }

// ShouldFilter 依次检查每个过滤器，第一个错误直接返回。
func (c Chain) ShouldFilter(ctx context.Context, userID int64, entry core.RecommendationEntry) (bool, error) {
	for _, f := range c {
		if f == nil {
			continue
		}
		ok, err := f.ShouldFilter(ctx, userID, entry)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Apply 返回未被过滤的条目，保持原顺序。
func (c Chain) Apply(ctx context.Context, userID int64, entries []core.RecommendationEntry) ([]core.RecommendationEntry, error) {
	if len(c) == 0 || len(entries) == 0 {
		return entries, nil
	}
	out := make([]core.RecommendationEntry, 0, len(entries))
	for _, e := range entries {
		drop, err := c.ShouldFilter(ctx, userID, e)
		if err != nil {
			return nil, err
		}
		if !drop {
			out = append(out, e)
		}
	}
	return out, nil
}
