package recall

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/embedrec/core"
	"github.com/rushteam/embedrec/pkg/metrics"
	"github.com/rushteam/embedrec/ranker"
)

// UserSimilarity 是用户向量上的相似用户检索。
//
// 未知用户（不在编码映射中）视为冷启动：Similar 返回空结果且不报错。
// 制品加载错误仍然向上返回。
type UserSimilarity struct {
	Loader UserLoader
	Logger zerolog.Logger
}

// NewUserSimilarity 创建用户相似检索
func NewUserSimilarity(loader UserLoader, logger zerolog.Logger) *UserSimilarity {
	return &UserSimilarity{
		Loader: loader,
		Logger: logger.With().Str("component", "recall.user").Logger(),
	}
}

func (r *UserSimilarity) Name() string { return "recall.user_similarity" }

// Similar 返回 userID 的 n 个相似用户，已剔除自身。
func (r *UserSimilarity) Similar(ctx context.Context, userID int64, n int, dir ranker.Direction) (core.NeighborResult, error) {
	if n <= 0 {
		n = core.Defaults.DefaultTopN()
	}
	emb, err := r.Loader.UserEmbedding(ctx)
	if err != nil {
		return nil, err
	}
	row, ok := emb.Index.EncodeID(userID)
	if !ok {
		metrics.RecordColdStart()
		r.Logger.Debug().Int64("user_id", userID).Msg("user not in encode map, cold start")
		return core.NeighborResult{}, nil
	}
	sel, err := ranker.Rank(emb.Matrix, row, n, dir)
	if err != nil {
		return nil, err
	}
	return ranker.ExcludeSelf(ranker.Decode(sel, dir, emb.Index.Decode), userID, n), nil
}

// Raw 返回原始排序结果。没有查询行可打分，因此未知用户返回 NOT_FOUND。
func (r *UserSimilarity) Raw(ctx context.Context, userID int64, n int, dir ranker.Direction) (ranker.Selection, error) {
	emb, err := r.Loader.UserEmbedding(ctx)
	if err != nil {
		return ranker.Selection{}, err
	}
	row, ok := emb.Index.EncodeID(userID)
	if !ok {
		return ranker.Selection{}, core.NewNotFoundError(core.ModuleEmbedding, "encoded index not found for user id %d", userID)
	}
	return ranker.Rank(emb.Matrix, row, n, dir)
}
