package filter

import (
	"context"

	"github.com/rushteam/feedrec/core"
)

// BlacklistFilter 过滤黑名单中的内容。
// 黑名单来自配置的 ContentIDs，以及 Store 中 Key 对应的有序集合（成员即内容 ID，可选）。
type BlacklistFilter struct {
	ContentIDs map[string]struct{}

	Store core.KeyValueStore
	Key   string
}

// NewBlacklistFilter 创建一个黑名单过滤器，store 可以为 nil。
func NewBlacklistFilter(ids []string, store core.KeyValueStore, key string) *BlacklistFilter {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &BlacklistFilter{ContentIDs: set, Store: store, Key: key}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.ScoredCandidate,
) (bool, error) {
	id := item.ID()
	if _, ok := f.ContentIDs[id]; ok {
		return true, nil
	}
	if f.Store == nil || f.Key == "" {
		return false, nil
	}
	if _, err := f.Store.ZScore(ctx, f.Key, id); err != nil {
		if core.IsStoreNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
