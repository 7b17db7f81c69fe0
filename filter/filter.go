// Package filter 对聚合后的推荐条目做二次过滤。
//
// 支持三类过滤器：
//   - Expr：CEL 表达式，按条目字段筛选
//   - BlacklistFilter：全局名称黑名单
//   - UserBlockFilter：按用户读取的拉黑名单
package filter

import (
	"context"

	"github.com/rushteam/embedrec/core"
)

// Filter 是过滤器的抽象接口，用于判断一条推荐是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 userID 的推荐条目 entry 是否应该被过滤
	ShouldFilter(ctx context.Context, userID int64, entry core.RecommendationEntry) (bool, error)
}
