// Package catalog 维护内容目录：有序、线程安全，排序调用时以快照形式提供给引擎。
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/feedrec/core"
)

// MemoryCatalog 是进程内的内容目录。
// Upsert 已存在的 ID 时原地替换，保持该内容在目录中的位置。
type MemoryCatalog struct {
	mu    sync.RWMutex
	items []*core.ContentItem
	index map[string]int
}

// NewMemoryCatalog 创建内容目录，可选初始内容。
func NewMemoryCatalog(items ...*core.ContentItem) *MemoryCatalog {
	c := &MemoryCatalog{index: make(map[string]int)}
	_ = c.Upsert(items...)
	return c
}

var errEmptyID = core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: content id is empty")

// Upsert 写入内容。任一内容 ID 为空时整体拒绝。
// 目录保存的是副本，调用方后续修改入参不会影响目录。
func (c *MemoryCatalog) Upsert(items ...*core.ContentItem) error {
	for _, it := range items {
		if it == nil || it.ID == "" {
			return errEmptyID
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range items {
		cp := *it
		if pos, ok := c.index[it.ID]; ok {
			c.items[pos] = &cp
			continue
		}
		c.index[it.ID] = len(c.items)
		c.items = append(c.items, &cp)
	}
	return nil
}

// Items 返回目录快照（按写入顺序）。元素指针在 Upsert 替换后仍指向旧内容，可安全用于一次排序调用。
func (c *MemoryCatalog) Items() []*core.ContentItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*core.ContentItem, len(c.items))
	copy(out, c.items)
	return out
}

// Get 按 ID 获取内容。
func (c *MemoryCatalog) Get(id string) (*core.ContentItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pos, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return c.items[pos], true
}

// Len 返回内容数量。
func (c *MemoryCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// LoadFile 从 YAML 或 JSON 文件读取内容列表（按扩展名判断，.json 以外按 YAML 解析）。
// 字段名与 core.ContentItem 的 yaml/json tag 一致，缺失字段保持零值，由引擎按默认值处理。
func LoadFile(path string) ([]*core.ContentItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var items []*core.ContentItem
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &items)
	} else {
		err = yaml.Unmarshal(data, &items)
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	for i, it := range items {
		if it == nil || it.ID == "" {
			return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
				fmt.Sprintf("catalog: item #%d in %s has no id", i, path))
		}
	}
	return items, nil
}
