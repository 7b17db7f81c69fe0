// Package service 对外提供推荐引擎的全部公开操作。
//
// Recommender 本身无状态：每个操作都通过 Loader 取得制品，
// 默认的 FileLoader 每次调用都会重新读取，缓存由 cache.Loader 负责。
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/embedrec/aggregate"
	"github.com/rushteam/embedrec/core"
	"github.com/rushteam/embedrec/filter"
	"github.com/rushteam/embedrec/hybrid"
	"github.com/rushteam/embedrec/pkg/metrics"
	"github.com/rushteam/embedrec/preference"
	"github.com/rushteam/embedrec/ranker"
	"github.com/rushteam/embedrec/recall"
)

// Recommender 是推荐引擎的门面。
type Recommender struct {
	loader Loader
	logger zerolog.Logger

	topN         int
	similarUsers int
	percentile   float64
	policy       aggregate.Policy

	userWeight    float64
	contentWeight float64
	maxConcurrent int
	seedTimeout   time.Duration

	filters filter.Chain

	items     *recall.ItemSimilarity
	users     *recall.UserSimilarity
	extractor *preference.Extractor
}

// Option 是 Recommender 的可选配置。
type Option func(*Recommender)

// WithLogger 设置 logger
func WithLogger(l zerolog.Logger) Option {
	return func(r *Recommender) { r.logger = l }
}

// WithTopN 设置默认返回条数
func WithTopN(n int) Option {
	return func(r *Recommender) {
		if n > 0 {
			r.topN = n
		}
	}
}

// WithSimilarUsers 设置用户推荐时默认考虑的相似用户数
func WithSimilarUsers(n int) Option {
	return func(r *Recommender) {
		if n > 0 {
			r.similarUsers = n
		}
	}
}

// WithPercentile 设置偏好阈值分位点（0-1）
func WithPercentile(p float64) Option {
	return func(r *Recommender) {
		if p > 0 && p <= 1 {
			r.percentile = p
		}
	}
}

// WithMissingSynopsisPolicy 设置候选缺少简介时的处理方式
func WithMissingSynopsisPolicy(p aggregate.Policy) Option {
	return func(r *Recommender) { r.policy = p }
}

// WithHybridWeights 设置混合推荐中用户路径与内容路径的权重
func WithHybridWeights(user, content float64) Option {
	return func(r *Recommender) {
		r.userWeight = user
		r.contentWeight = content
	}
}

// WithHybridConcurrency 设置混合推荐的种子并发数与单个种子超时
func WithHybridConcurrency(maxConcurrent int, seedTimeout time.Duration) Option {
	return func(r *Recommender) {
		r.maxConcurrent = maxConcurrent
		r.seedTimeout = seedTimeout
	}
}

// WithFilters 追加对每次用户推荐都生效的过滤器
func WithFilters(filters ...filter.Filter) Option {
	return func(r *Recommender) { r.filters = append(r.filters, filters...) }
}

// NewRecommender 创建 Recommender。
func NewRecommender(loader Loader, opts ...Option) *Recommender {
	r := &Recommender{
		loader:        loader,
		logger:        zerolog.Nop(),
		topN:          core.Defaults.DefaultTopN(),
		similarUsers:  core.Defaults.DefaultSimilarUsers(),
		percentile:    core.Defaults.DefaultPercentile(),
		policy:        aggregate.PolicySkip,
		userWeight:    0.5,
		contentWeight: 0.5,
		maxConcurrent: 4,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.items = recall.NewItemSimilarity(loader, r.logger)
	r.users = recall.NewUserSimilarity(loader, r.logger)
	r.extractor = preference.NewExtractor(r.percentile)
	return r
}

func (r *Recommender) n(n int) int {
	if n <= 0 {
		return r.topN
	}
	return n
}

// SimilarItemsByName 返回与展示名 name 的物品最相似（或最不相似）的 n 个物品。
func (r *Recommender) SimilarItemsByName(ctx context.Context, name string, n int, dir ranker.Direction) (out []core.SimilarItem, err error) {
	defer observe("similar_items", &err)()
	return r.items.ByName(ctx, name, r.n(n), dir)
}

// SimilarItemsByID 返回与 id 最相似（或最不相似）的 n 个物品。
func (r *Recommender) SimilarItemsByID(ctx context.Context, id int64, n int, dir ranker.Direction) (out []core.SimilarItem, err error) {
	defer observe("similar_items", &err)()
	return r.items.ByID(ctx, id, r.n(n), dir)
}

// SimilarItemsRaw 返回物品相似检索的原始打分与选中行号。
func (r *Recommender) SimilarItemsRaw(ctx context.Context, id int64, n int, dir ranker.Direction) (ranker.Selection, error) {
	return r.items.Raw(ctx, id, r.n(n), dir)
}

// SimilarUsers 返回与 userID 最相似的 n 个用户。未知用户返回空结果。
func (r *Recommender) SimilarUsers(ctx context.Context, userID int64, n int, dir ranker.Direction) (out core.NeighborResult, err error) {
	defer observe("similar_users", &err)()
	return r.users.Similar(ctx, userID, r.n(n), dir)
}

// SimilarUsersRaw 返回用户相似检索的原始打分与选中行号，未知用户返回 NOT_FOUND。
func (r *Recommender) SimilarUsersRaw(ctx context.Context, userID int64, n int, dir ranker.Direction) (ranker.Selection, error) {
	return r.users.Raw(ctx, userID, r.n(n), dir)
}

// UserPreferences 返回 userID 的偏好集。
func (r *Recommender) UserPreferences(ctx context.Context, userID int64) (out core.PreferenceSet, err error) {
	defer observe("user_preferences", &err)()
	cat, err := r.loader.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	ratings, err := r.loader.Ratings(ctx)
	if err != nil {
		return nil, err
	}
	return r.extractor.Extract(userID, ratings, cat)
}

// Request 是一次用户推荐的参数，零值使用默认配置。
type Request struct {
	N            int    `json:"n"`
	SimilarUsers int    `json:"similar_users"`
	Filter       string `json:"filter"` // CEL 表达式，见 filter.Expr
}

// UserRecommendations 汇总相似用户的偏好，返回对 userID 新颖的推荐。
//
// 未知用户没有相似用户，返回空结果；用户自己没有评分时不做新颖性排除。
func (r *Recommender) UserRecommendations(ctx context.Context, userID int64, req Request) (res aggregate.Result, err error) {
	defer observe("user_recommendations", &err)()

	expr, err := filter.Compile(req.Filter)
	if err != nil {
		return aggregate.Result{}, err
	}
	chain := append(filter.Chain{expr}, r.filters...)

	similarUsers := req.SimilarUsers
	if similarUsers <= 0 {
		similarUsers = r.similarUsers
	}
	neighbors, err := r.users.Similar(ctx, userID, similarUsers, ranker.Nearest)
	if err != nil {
		return aggregate.Result{}, err
	}
	if len(neighbors) == 0 {
		return aggregate.Result{Entries: []core.RecommendationEntry{}}, nil
	}

	cat, err := r.loader.Catalog(ctx)
	if err != nil {
		return aggregate.Result{}, err
	}
	ratings, err := r.loader.Ratings(ctx)
	if err != nil {
		return aggregate.Result{}, err
	}

	own, err := r.extractor.Extract(userID, ratings, cat)
	if err != nil && !core.IsInsufficientData(err) {
		return aggregate.Result{}, err
	}

	agg := aggregate.New(r.extractor, r.policy, r.logger)
	agg.Accept = func(e core.RecommendationEntry) (bool, error) {
		drop, err := chain.ShouldFilter(ctx, userID, e)
		return !drop, err
	}
	res, err = agg.Aggregate(ctx, neighbors, own, cat, ratings, r.n(req.N))
	if err != nil {
		return aggregate.Result{}, err
	}
	r.logger.Debug().
		Int64("user_id", userID).
		Int("neighbors", len(neighbors)).
		Int("entries", len(res.Entries)).
		Int("dropped", res.Dropped).
		Msg("user recommendations")
	return res, nil
}

// Hybrid 返回 userID 的混合推荐（用户路径 + 内容路径加权）。
func (r *Recommender) Hybrid(ctx context.Context, userID int64, n int) (out []core.ScoredName, err error) {
	defer observe("hybrid", &err)()
	h := hybrid.New(userPath{r}, contentPath{r}, r.logger)
	h.UserWeight = r.userWeight
	h.ContentWeight = r.contentWeight
	h.MaxConcurrent = r.maxConcurrent
	h.Timeout = r.seedTimeout
	h.Exclude = r.knownNames
	return h.Recommend(ctx, userID, r.n(n))
}

// knownNames 返回用户自己的偏好物品名；没有评分的用户返回空集。
func (r *Recommender) knownNames(ctx context.Context, userID int64) (map[string]struct{}, error) {
	cat, err := r.loader.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	ratings, err := r.loader.Ratings(ctx)
	if err != nil {
		return nil, err
	}
	own, err := r.extractor.Extract(userID, ratings, cat)
	if err != nil {
		if core.IsInsufficientData(err) {
			return nil, nil
		}
		return nil, err
	}
	return own.NameSet(), nil
}

// Check 校验物品与用户向量的编码映射为双射且行号都在矩阵范围内。
func (r *Recommender) Check(ctx context.Context) error {
	items, err := r.loader.ItemEmbedding(ctx)
	if err != nil {
		return err
	}
	users, err := r.loader.UserEmbedding(ctx)
	if err != nil {
		return err
	}
	return errors.Join(
		wrapCheck(KindItemEmbedding, items.Check()),
		wrapCheck(KindUserEmbedding, users.Check()),
	)
}

// observe 在操作结束时记录耗时与结果。
func observe(operation string, errp *error) func() {
	start := time.Now()
	return func() { metrics.ObserveOperation(operation, start, *errp) }
}

func wrapCheck(kind string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", kind, err)
}

type userPath struct{ r *Recommender }

func (p userPath) RecommendNames(ctx context.Context, userID int64, n int) ([]string, error) {
	res, err := p.r.UserRecommendations(ctx, userID, Request{N: n})
	if err != nil {
		return nil, err
	}
	names := make([]string, len(res.Entries))
	for i, e := range res.Entries {
		names[i] = e.ItemName
	}
	return names, nil
}

type contentPath struct{ r *Recommender }

func (p contentPath) SimilarNames(ctx context.Context, name string, n int) ([]string, error) {
	items, err := p.r.items.ByName(ctx, name, n, ranker.Nearest)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names, nil
}
