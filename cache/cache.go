// Package cache 为 service.Loader 提供进程内缓存。
//
// 每类制品（物品向量、用户向量、目录、评分）各缓存一份，带 TTL；
// 制品更新后调用 Invalidate 显式失效。并发未命中通过 singleflight 合并为一次加载。
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rushteam/embedrec/catalog"
	"github.com/rushteam/embedrec/core"
	"github.com/rushteam/embedrec/embedding"
	"github.com/rushteam/embedrec/pkg/metrics"
	"github.com/rushteam/embedrec/service"
)

// Loader 是带缓存的 service.Loader 装饰器。
type Loader struct {
	next service.Loader
	ttl  time.Duration

	mu      sync.RWMutex
	entries map[string]*cacheEntry
	group   singleflight.Group

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	closeOnce     sync.Once

	now func() time.Time
}

type cacheEntry struct {
	value      any
	expireTime time.Time // 零值表示不过期
}

// New 创建缓存 Loader。ttl <= 0 表示不过期，只能通过 Invalidate 失效。
func New(next service.Loader, ttl time.Duration) *Loader {
	l := &Loader{
		next:        next,
		ttl:         ttl,
		entries:     make(map[string]*cacheEntry),
		stopCleanup: make(chan struct{}),
		now:         time.Now,
	}
	if ttl > 0 {
		l.cleanupTicker = time.NewTicker(ttl)
		go l.cleanup()
	}
	return l
}

func (l *Loader) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanExpired()
		case <-l.stopCleanup:
			l.cleanupTicker.Stop()
			return
		}
	}
}

func (l *Loader) cleanExpired() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for kind, e := range l.entries {
		if e.expired(now) {
			delete(l.entries, kind)
		}
	}
}

func (e *cacheEntry) expired(now time.Time) bool {
	return !e.expireTime.IsZero() && now.After(e.expireTime)
}

// Invalidate 使指定类别的缓存失效，不传参数时全部失效。
func (l *Loader) Invalidate(kinds ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(kinds) == 0 {
		l.entries = make(map[string]*cacheEntry)
		return
	}
	for _, k := range kinds {
		delete(l.entries, k)
	}
}

// Close 停止清理协程，可重复调用。
func (l *Loader) Close() error {
	l.closeOnce.Do(func() { close(l.stopCleanup) })
	return nil
}

func (l *Loader) lookup(kind string) (any, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[kind]
	if !ok || e.expired(l.now()) {
		return nil, false
	}
	return e.value, true
}

func (l *Loader) store(kind string, v any) {
	e := &cacheEntry{value: v}
	if l.ttl > 0 {
		e.expireTime = l.now().Add(l.ttl)
	}
	l.mu.Lock()
	l.entries[kind] = e
	l.mu.Unlock()
}

// get 先查缓存，未命中时加载并写入；加载错误不缓存。
func get[T any](ctx context.Context, l *Loader, kind string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := l.lookup(kind); ok {
		metrics.RecordCache(kind, true)
		return v.(T), nil
	}
	metrics.RecordCache(kind, false)

	v, err, _ := l.group.Do(kind, func() (any, error) {
		if v, ok := l.lookup(kind); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		l.store(kind, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (l *Loader) ItemEmbedding(ctx context.Context) (*embedding.Embedding, error) {
	return get(ctx, l, service.KindItemEmbedding, l.next.ItemEmbedding)
}

func (l *Loader) UserEmbedding(ctx context.Context) (*embedding.Embedding, error) {
	return get(ctx, l, service.KindUserEmbedding, l.next.UserEmbedding)
}

func (l *Loader) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	return get(ctx, l, service.KindCatalog, l.next.Catalog)
}

func (l *Loader) Ratings(ctx context.Context) ([]core.Rating, error) {
	return get(ctx, l, service.KindRatings, l.next.Ratings)
}

var _ service.Loader = (*Loader)(nil)
