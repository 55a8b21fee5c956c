package pipeline

import (
	"fmt"
	"sort"
)

// NodeConfig 是单个 Node 的配置，例如 Feed 的后置阶段：
//
//	feed:
//	  stages:
//	    - type: filter.expr
//	      config:
//	        expr: 'item.sentiment >= 0.3'
//	    - type: rerank.diversity
//	      config:
//	        max_per_category: 3
type NodeConfig struct {
	Type   string         `koanf:"type" yaml:"type" json:"type"`       // filter.expr / rerank.diversity 等
	Config map[string]any `koanf:"config" yaml:"config" json:"config"` // Node 特定配置
}

// Builder 根据配置构建一个 Node。
type Builder func(config map[string]any) (Node, error)

// NodeFactory 用于根据配置构建 Node 实例。
type NodeFactory struct {
	builders map[string]Builder
}

func NewNodeFactory() *NodeFactory {
	return &NodeFactory{
		builders: make(map[string]Builder),
	}
}

// Register 注册 Node 构建器，同名覆盖。
func (f *NodeFactory) Register(nodeType string, builder Builder) {
	f.builders[nodeType] = builder
}

// Build 根据类型和配置构建 Node。
func (f *NodeFactory) Build(nodeType string, config map[string]any) (Node, error) {
	builder, ok := f.builders[nodeType]
	if !ok {
		return nil, fmt.Errorf("unknown node type: %s", nodeType)
	}
	return builder(config)
}

// Types 返回已注册的 Node 类型（排序后）。
func (f *NodeFactory) Types() []string {
	out := make([]string, 0, len(f.builders))
	for t := range f.builders {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// BuildNodes 按顺序构建一组 Node。
func (f *NodeFactory) BuildNodes(configs []NodeConfig) ([]Node, error) {
	nodes := make([]Node, 0, len(configs))
	for i, nc := range configs {
		node, err := f.Build(nc.Type, nc.Config)
		if err != nil {
			return nil, fmt.Errorf("build node #%d %s: %w", i, nc.Type, err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
