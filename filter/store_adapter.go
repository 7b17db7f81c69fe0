package filter

import (
	"context"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/rushteam/embedrec/core"
)

// StoreAdapter 将 core.Store 适配为过滤器所需的存储接口。
// 名单以 JSON 字符串数组存放。
type StoreAdapter struct {
	store core.Store
}

// NewStoreAdapter 创建一个 core.Store 适配器。
func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s}
}

// GetBlacklist 从 Store 读取黑名单。
func (a *StoreAdapter) GetBlacklist(ctx context.Context, key string) ([]string, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// GetUserBlocks 从 Store 读取用户拉黑列表，key 为 {keyPrefix}:{userID}。
func (a *StoreAdapter) GetUserBlocks(ctx context.Context, userID int64, keyPrefix string) ([]string, error) {
	return a.GetBlacklist(ctx, keyPrefix+":"+strconv.FormatInt(userID, 10))
}

// PutList 把名单写入 Store，ttl 为空表示不过期。
func (a *StoreAdapter) PutList(ctx context.Context, key string, names []string, ttl ...int) error {
	data, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, key, data, ttl...)
}
