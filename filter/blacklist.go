package filter

import (
	"context"

	"github.com/rushteam/embedrec/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉名称在黑名单中的物品。
type BlacklistFilter struct {
	// Names 是内存中的黑名单物品名
	Names []string

	// Store 用于从存储中读取黑名单（可选）
	Store BlacklistStore

	// Key 是 Store 中的黑名单 key（可选）
	Key string
}

// BlacklistStore 是黑名单存储接口。
type BlacklistStore interface {
	// GetBlacklist 获取黑名单物品名列表
	GetBlacklist(ctx context.Context, key string) ([]string, error)
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(names []string, storeAdapter *StoreAdapter, key string) *BlacklistFilter {
	var store BlacklistStore
	if storeAdapter != nil {
		store = storeAdapter
	}
	return &BlacklistFilter{Names: names, Store: store, Key: key}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(ctx context.Context, _ int64, entry core.RecommendationEntry) (bool, error) {
	for _, name := range f.Names {
		if entry.ItemName == name {
			return true, nil
		}
	}

	if f.Store != nil && f.Key != "" {
		blacklist, err := f.Store.GetBlacklist(ctx, f.Key)
		if err != nil {
			if core.IsStoreNotFound(err) {
				return false, nil
			}
			return false, err
		}
		for _, name := range blacklist {
			if entry.ItemName == name {
				return true, nil
			}
		}
	}
	return false, nil
}
