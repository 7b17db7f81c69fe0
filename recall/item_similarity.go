package recall

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/embedrec/catalog"
	"github.com/rushteam/embedrec/core"
	"github.com/rushteam/embedrec/ranker"
)

// ItemSimilarity 是物品向量上的相似物品检索。
//
// 查询 id 不在编码映射中时返回 NOT_FOUND（与用户路径的冷启动不同）。
type ItemSimilarity struct {
	Loader ItemLoader
	Logger zerolog.Logger
}

// NewItemSimilarity 创建物品相似检索
func NewItemSimilarity(loader ItemLoader, logger zerolog.Logger) *ItemSimilarity {
	return &ItemSimilarity{
		Loader: loader,
		Logger: logger.With().Str("component", "recall.item").Logger(),
	}
}

func (r *ItemSimilarity) Name() string { return "recall.item_similarity" }

// ByName 按展示名查询：取目录中第一条匹配行的 id 再按 id 检索。
func (r *ItemSimilarity) ByName(ctx context.Context, name string, n int, dir ranker.Direction) ([]core.SimilarItem, error) {
	cat, err := r.Loader.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := cat.ResolveByName(name)
	if err != nil {
		return nil, err
	}
	first, _ := catalog.First(rows)
	return r.byID(ctx, cat, first.ID, n, dir)
}

// ByID 返回 id 的 n 个近邻（或远邻），已剔除自身并附带目录信息。
func (r *ItemSimilarity) ByID(ctx context.Context, id int64, n int, dir ranker.Direction) ([]core.SimilarItem, error) {
	cat, err := r.Loader.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return r.byID(ctx, cat, id, n, dir)
}

func (r *ItemSimilarity) byID(ctx context.Context, cat *catalog.Catalog, id int64, n int, dir ranker.Direction) ([]core.SimilarItem, error) {
	if n <= 0 {
		n = core.Defaults.DefaultTopN()
	}
	neighbors, err := r.neighbors(ctx, id, n, dir)
	if err != nil {
		return nil, err
	}

	out := make([]core.SimilarItem, 0, len(neighbors))
	for _, nb := range neighbors {
		rows, err := cat.ResolveByID(nb.ID)
		if err != nil {
			r.Logger.Debug().Int64("item_id", nb.ID).Msg("neighbour missing from catalog, skipped")
			continue
		}
		it, _ := catalog.First(rows)
		out = append(out, core.SimilarItem{
			ID:         it.ID,
			Name:       it.DisplayName,
			Genres:     it.Genres,
			Similarity: nb.Score,
		})
	}
	r.Logger.Debug().Int64("item_id", id).Stringer("direction", dir).Int("n", n).Int("found", len(out)).Msg("similar items")
	return out, nil
}

// Neighbors 返回 id 的近邻 id 与打分，已剔除自身，不做目录关联。
func (r *ItemSimilarity) Neighbors(ctx context.Context, id int64, n int, dir ranker.Direction) (core.NeighborResult, error) {
	if n <= 0 {
		n = core.Defaults.DefaultTopN()
	}
	return r.neighbors(ctx, id, n, dir)
}

func (r *ItemSimilarity) neighbors(ctx context.Context, id int64, n int, dir ranker.Direction) (core.NeighborResult, error) {
	emb, err := r.Loader.ItemEmbedding(ctx)
	if err != nil {
		return nil, err
	}
	row, ok := emb.Index.EncodeID(id)
	if !ok {
		return nil, core.NewNotFoundError(core.ModuleEmbedding, "encoded index not found for item id %d", id)
	}
	sel, err := ranker.Rank(emb.Matrix, row, n, dir)
	if err != nil {
		return nil, err
	}
	return ranker.ExcludeSelf(ranker.Decode(sel, dir, emb.Index.Decode), id, n), nil
}

// Raw 返回未解码的原始排序结果（全部打分与选中行号）。
func (r *ItemSimilarity) Raw(ctx context.Context, id int64, n int, dir ranker.Direction) (ranker.Selection, error) {
	emb, err := r.Loader.ItemEmbedding(ctx)
	if err != nil {
		return ranker.Selection{}, err
	}
	row, ok := emb.Index.EncodeID(id)
	if !ok {
		return ranker.Selection{}, core.NewNotFoundError(core.ModuleEmbedding, "encoded index not found for item id %d", id)
	}
	return ranker.Rank(emb.Matrix, row, n, dir)
}
