// Package store 提供 core.Store / core.KeyValueStore 的实现：
// MemoryStore 用于测试与单机部署，RedisStore 用于多实例共享热门榜单。
//
// 示例：
//
//	var kv core.KeyValueStore = store.NewMemoryStore()
//	_, _ = kv.ZIncrBy(ctx, recall.DefaultHotKey, 1.5, "post-1")
package store
