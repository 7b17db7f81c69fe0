package filter

import (
	"context"

	"github.com/rushteam/embedrec/core"
)

// UserBlockFilter 是用户拉黑过滤器，过滤掉用户拉黑的物品。
type UserBlockFilter struct {
	// Store 用于从存储中读取用户拉黑列表
	Store UserBlockStore

	// KeyPrefix 是 Store 中的 key 前缀，实际 key 为 {KeyPrefix}:{UserID}
	KeyPrefix string
}

// UserBlockStore 是用户拉黑存储接口。
type UserBlockStore interface {
	// GetUserBlocks 获取用户拉黑的物品名列表
	GetUserBlocks(ctx context.Context, userID int64, keyPrefix string) ([]string, error)
}

// NewUserBlockFilter 创建一个用户拉黑过滤器。
func NewUserBlockFilter(storeAdapter *StoreAdapter, keyPrefix string) *UserBlockFilter {
	var store UserBlockStore
	if storeAdapter != nil {
		store = storeAdapter
	}
	return &UserBlockFilter{Store: store, KeyPrefix: keyPrefix}
}

func (f *UserBlockFilter) Name() string {
	return "filter.user_block"
}

func (f *UserBlockFilter) ShouldFilter(ctx context.Context, userID int64, entry core.RecommendationEntry) (bool, error) {
	if f.Store == nil {
		return false, nil
	}
	keyPrefix := f.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "user:block"
	}

	// 没有拉黑记录不算错误
	blocked, err := f.Store.GetUserBlocks(ctx, userID, keyPrefix)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return false, nil
		}
		return false, err
	}
	for _, name := range blocked {
		if entry.ItemName == name {
			return true, nil
		}
	}
	return false, nil
}
