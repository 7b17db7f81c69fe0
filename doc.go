// Package embedrec 是一个基于向量相似度的推荐引擎。
//
// 设计要点：
//   - 制品驱动：物品 / 用户向量矩阵与 id 映射由离线训练产出，在线只做加载与精确点积排序
//   - 四条路径：相似物品、相似用户、用户偏好（分位阈值）、基于相似用户的聚合推荐
//   - 错误带模块与错误码（core.DomainError），调用方按 NOT_FOUND / INVALID_INPUT 等分支处理
package embedrec

import (
	"github.com/rushteam/embedrec/core"
	"github.com/rushteam/embedrec/ranker"
	"github.com/rushteam/embedrec/service"
)

// 轻量 facade：便于直接 import "embedrec" 使用核心入口。
type Recommender = service.Recommender
type Request = service.Request
type Option = service.Option
type Direction = ranker.Direction

const (
	Nearest  = ranker.Nearest
	Farthest = ranker.Farthest
)

// NewRecommender 以 loader 构建推荐器，见 service.NewRecommender。
func NewRecommender(loader service.Loader, opts ...service.Option) *Recommender {
	return service.NewRecommender(loader, opts...)
}

// IsNotFound 判断 err 是否为 NOT_FOUND。
func IsNotFound(err error) bool { return core.IsNotFound(err) }
