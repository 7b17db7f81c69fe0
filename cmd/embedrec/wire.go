package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rushteam/embedrec/aggregate"
	"github.com/rushteam/embedrec/artifact"
	"github.com/rushteam/embedrec/cache"
	"github.com/rushteam/embedrec/config"
	"github.com/rushteam/embedrec/core"
	"github.com/rushteam/embedrec/filter"
	"github.com/rushteam/embedrec/pkg/logging"
	"github.com/rushteam/embedrec/service"
	"github.com/rushteam/embedrec/store"
	"github.com/rushteam/embedrec/table"
	"github.com/rushteam/embedrec/table/duckdb"
)

// app 持有一次进程运行所需的全部组件。
type app struct {
	rec     *service.Recommender
	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// build 按配置组装制品来源、表读取器、Loader 与 Recommender。
func build(ctx context.Context, cfg *config.Config) (*app, error) {
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: cfg.Logging.Timestamp,
	})
	logger := logging.With("embedrec")
	a := &app{}

	var (
		src artifact.Source
		kv  core.Store
	)
	switch cfg.Artifacts.Backend {
	case "redis":
		rs, err := store.NewRedisStore(ctx, cfg.Artifacts.Redis.Addr, cfg.Artifacts.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, rs.Close)
		kv = rs
		src = artifact.NewStoreSource(rs, cfg.Artifacts.Redis.KeyPrefix)
	default:
		src = artifact.NewFileSource(cfg.Artifacts.Root)
	}

	var tables table.Reader
	switch cfg.Tables.Engine {
	case "duckdb":
		r, err := duckdb.Open(cfg.TablesRoot(), cfg.Tables.Files, cfg.Tables.Columns)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, r.Close)
		tables = r
	default:
		tables = table.NewCSVReader(src, cfg.Tables.Files, cfg.Tables.Columns)
	}

	var loader service.Loader = service.NewFileLoader(src, cfg.Artifacts.Items, cfg.Artifacts.Users, tables, logger)
	if cfg.Cache.Enabled {
		cl := cache.New(loader, cfg.Cache.TTL)
		a.closers = append(a.closers, cl.Close)
		loader = cl
	}

	policy, err := aggregate.ParsePolicy(cfg.Recommend.MissingSynopsis)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.rec = service.NewRecommender(loader,
		service.WithLogger(logger),
		service.WithTopN(cfg.Recommend.TopN),
		service.WithSimilarUsers(cfg.Recommend.SimilarUsers),
		service.WithPercentile(cfg.Recommend.Percentile),
		service.WithMissingSynopsisPolicy(policy),
		service.WithHybridWeights(cfg.Recommend.UserWeight, cfg.Recommend.ContentWeight),
		service.WithHybridConcurrency(cfg.Recommend.MaxConcurrent, cfg.Recommend.SeedTimeout),
		service.WithFilters(buildFilters(cfg.Filters, kv)...),
	)
	logRecommenderConfig(logger, cfg)
	return a, nil
}

// buildFilters 创建配置中的过滤器；名单存储只在有 key-value 存储时启用。
func buildFilters(cfg config.FiltersConfig, kv core.Store) []filter.Filter {
	var adapter *filter.StoreAdapter
	if kv != nil {
		adapter = filter.NewStoreAdapter(kv)
	}
	var out []filter.Filter
	if len(cfg.Blacklist) > 0 || (adapter != nil && cfg.BlacklistKey != "") {
		out = append(out, filter.NewBlacklistFilter(cfg.Blacklist, adapter, cfg.BlacklistKey))
	}
	if adapter != nil && cfg.UserBlockPrefix != "" {
		out = append(out, filter.NewUserBlockFilter(adapter, cfg.UserBlockPrefix))
	}
	return out
}

func logRecommenderConfig(logger zerolog.Logger, cfg *config.Config) {
	logger.Debug().
		Str("artifacts", cfg.Artifacts.Backend).
		Str("tables", cfg.Tables.Engine).
		Bool("cache", cfg.Cache.Enabled).
		Int("top_n", cfg.Recommend.TopN).
		Float64("percentile", cfg.Recommend.Percentile).
		Str("missing_synopsis", cfg.Recommend.MissingSynopsis).
		Msg("recommender configured")
}
