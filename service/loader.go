package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/embedrec/artifact"
	"github.com/rushteam/embedrec/catalog"
	"github.com/rushteam/embedrec/core"
	"github.com/rushteam/embedrec/embedding"
	"github.com/rushteam/embedrec/pkg/metrics"
	"github.com/rushteam/embedrec/table"
)

// 制品类别，用于日志与监控
const (
	KindItemEmbedding = "item_embedding"
	KindUserEmbedding = "user_embedding"
	KindCatalog       = "catalog"
	KindRatings       = "ratings"
)

// Loader 提供一次调用所需的全部制品。
type Loader interface {
	ItemEmbedding(ctx context.Context) (*embedding.Embedding, error)
	UserEmbedding(ctx context.Context) (*embedding.Embedding, error)
	Catalog(ctx context.Context) (*catalog.Catalog, error)
	Ratings(ctx context.Context) ([]core.Rating, error)
}

// FileLoader 是默认 Loader：每次调用都从来源重新读取，不做缓存。
// 需要缓存时用 cache.Loader 包一层。
type FileLoader struct {
	Artifacts artifact.Source
	Items     embedding.Paths
	Users     embedding.Paths
	Tables    table.Reader
	Logger    zerolog.Logger
}

// NewFileLoader 创建默认 Loader
func NewFileLoader(src artifact.Source, items, users embedding.Paths, tables table.Reader, logger zerolog.Logger) *FileLoader {
	return &FileLoader{
		Artifacts: src,
		Items:     items,
		Users:     users,
		Tables:    tables,
		Logger:    logger.With().Str("component", "loader").Logger(),
	}
}

func (l *FileLoader) ItemEmbedding(ctx context.Context) (*embedding.Embedding, error) {
	emb, err := embedding.Load(ctx, l.Artifacts, l.Items)
	l.record(KindItemEmbedding, err)
	return emb, err
}

func (l *FileLoader) UserEmbedding(ctx context.Context) (*embedding.Embedding, error) {
	emb, err := embedding.Load(ctx, l.Artifacts, l.Users)
	l.record(KindUserEmbedding, err)
	return emb, err
}

func (l *FileLoader) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	items, err := l.Tables.Items(ctx)
	if err != nil {
		l.record(KindCatalog, err)
		return nil, err
	}
	synopses, err := l.Tables.Synopses(ctx)
	l.record(KindCatalog, err)
	if err != nil {
		return nil, err
	}
	return catalog.New(items, synopses), nil
}

func (l *FileLoader) Ratings(ctx context.Context) ([]core.Rating, error) {
	ratings, err := l.Tables.Ratings(ctx)
	l.record(KindRatings, err)
	return ratings, err
}

func (l *FileLoader) record(kind string, err error) {
	metrics.RecordArtifactLoad(kind, err)
	if err != nil {
		src := "none"
		if l.Artifacts != nil {
			src = l.Artifacts.Name()
		}
		l.Logger.Error().Err(err).Str("kind", kind).Str("source", src).Msg("artifact load failed")
		return
	}
	l.Logger.Debug().Str("kind", kind).Msg("artifact loaded")
}

var _ Loader = (*FileLoader)(nil)
