package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rushteam/feedrec/core"
)

// MemoryStore 是内存实现的 KeyValueStore，用于测试/开发/单机，进程重启后数据丢失。
type MemoryStore struct {
	mu    sync.RWMutex
	zsets map[string]map[string]float64 // zset key -> member -> score
}

// NewMemoryStore 创建内存存储。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		zsets: make(map[string]map[string]float64),
	}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Close() error { return nil }

var _ core.KeyValueStore = (*MemoryStore)(nil)

func (m *MemoryStore) ZAdd(_ context.Context, key string, score float64, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.zset(key)[member] = score
	return nil
}

func (m *MemoryStore) ZIncrBy(_ context.Context, key string, increment float64, member string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	zs := m.zset(key)
	zs[member] += increment
	return zs[member], nil
}

func (m *MemoryStore) ZRem(_ context.Context, key string, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	zs, ok := m.zsets[key]
	if !ok {
		return nil
	}
	delete(zs, member)
	if len(zs) == 0 {
		delete(m.zsets, key)
	}
	return nil
}

// zset 需在持有写锁时调用
func (m *MemoryStore) zset(key string) map[string]float64 {
	zs, ok := m.zsets[key]
	if !ok {
		zs = make(map[string]float64)
		m.zsets[key] = zs
	}
	return zs
}

// ZRevRangeWithScores 按分数降序返回 [start, stop]，同分按 member 字典序降序（与 Redis ZREVRANGE 一致）。
func (m *MemoryStore) ZRevRangeWithScores(_ context.Context, key string, start, stop int64) ([]core.ZMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	zs, ok := m.zsets[key]
	if !ok || len(zs) == 0 {
		return nil, nil
	}

	members := make([]core.ZMember, 0, len(zs))
	for member, score := range zs {
		members = append(members, core.ZMember{Member: member, Score: score})
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Score != members[j].Score {
			return members[i].Score > members[j].Score
		}
		return members[i].Member > members[j].Member
	})

	n := int64(len(members))
	if start < 0 {
		start = 0
	}
	if stop < 0 || stop >= n {
		stop = n - 1
	}
	if start > stop {
		return nil, nil
	}
	return members[start : stop+1], nil
}

func (m *MemoryStore) ZScore(_ context.Context, key string, member string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	score, ok := m.zsets[key][member]
	if !ok {
		return 0, core.ErrStoreNotFound
	}
	return score, nil
}
