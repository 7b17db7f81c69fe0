package recall

import (
	"context"

	"github.com/rushteam/embedrec/catalog"
	"github.com/rushteam/embedrec/embedding"
)

// ItemLoader 提供物品向量与目录。
type ItemLoader interface {
	ItemEmbedding(ctx context.Context) (*embedding.Embedding, error)
	Catalog(ctx context.Context) (*catalog.Catalog, error)
}

// UserLoader 提供用户向量。
type UserLoader interface {
	UserEmbedding(ctx context.Context) (*embedding.Embedding, error)
}
