package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/feedrec/pipeline"
)

// 使用 feed.stages 配置时，需在入口处 import _ "github.com/rushteam/feedrec/config/builders"
// 以触发内置 Node（filter.expr、filter.min_score、rerank.diversity、rerank.topn）的 init 注册。

// NodeBuilder 与 pipeline.Builder 一致：根据 config 构建 Node。
type NodeBuilder = pipeline.Builder

var (
	defaultBuilders   = make(map[string]NodeBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种 Node 的构建逻辑，建议在 init 中调用。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的 Node 类型列表（排序）。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回基于当前注册表的 NodeFactory。
func DefaultFactory() *pipeline.NodeFactory {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range defaultBuilders {
		f.Register(typeName, builder)
	}
	return f
}

// ValidateStages 校验所有阶段类型均已注册；有未支持类型时返回包含已支持列表的错误。
func ValidateStages(stages []pipeline.NodeConfig) error {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	for i, nc := range stages {
		if nc.Type == "" {
			return fmt.Errorf("stage #%d: empty type", i)
		}
		if _, ok := defaultBuilders[nc.Type]; !ok {
			supported := make([]string, 0, len(defaultBuilders))
			for t := range defaultBuilders {
				supported = append(supported, t)
			}
			sort.Strings(supported)
			return fmt.Errorf("stage #%d: unsupported node type %q (supported: %v)", i, nc.Type, supported)
		}
	}
	return nil
}
