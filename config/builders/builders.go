// Package builders 注册 Feed 后置阶段可用的内置 Node。
package builders

import (
	"fmt"

	"github.com/rushteam/feedrec/config"
	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/filter"
	"github.com/rushteam/feedrec/pipeline"
	"github.com/rushteam/feedrec/pkg/conv"
	"github.com/rushteam/feedrec/pkg/metrics"
	"github.com/rushteam/feedrec/rerank"
)

func init() {
	config.Register("filter.expr", BuildExprFilterNode)
	config.Register("filter.min_score", BuildMinScoreFilterNode)
	config.Register("filter.blacklist", BuildBlacklistFilterNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("rerank.topn", BuildTopNNode)
}

// BuildExprFilterNode 配置：expr（必填），表达式为 true 的候选保留。
func BuildExprFilterNode(cfg map[string]any) (pipeline.Node, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("filter.expr: expr not found")
	}
	f, err := filter.NewExprFilter(expr)
	if err != nil {
		return nil, fmt.Errorf("filter.expr: %w", err)
	}
	return newFilterNode(f), nil
}

// BuildMinScoreFilterNode 配置：min_score。
func BuildMinScoreFilterNode(cfg map[string]any) (pipeline.Node, error) {
	return newFilterNode(&filter.MinScoreFilter{MinScore: conv.ConfigGetFloat64(cfg, "min_score", 0)}), nil
}

// BuildBlacklistFilterNode 配置：content_ids。
func BuildBlacklistFilterNode(cfg map[string]any) (pipeline.Node, error) {
	var ids []string
	if cfg != nil {
		ids = conv.ToStringSlice(cfg["content_ids"])
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("filter.blacklist: content_ids not found")
	}
	return newFilterNode(filter.NewBlacklistFilter(ids, nil, "")), nil
}

// NewStoreBlacklistNode 创建读取 store 中 key 有序集合的黑名单阶段。
func NewStoreBlacklistNode(store core.KeyValueStore, key string) pipeline.Node {
	return newFilterNode(filter.NewBlacklistFilter(nil, store, key))
}

// BuildDiversityNode 配置：max_per_category。
func BuildDiversityNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.Diversity{MaxPerCategory: conv.ConfigGetInt(cfg, "max_per_category", 1)}, nil
}

// BuildTopNNode 配置：n。
func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	n := conv.ConfigGetInt(cfg, "n", 0)
	if n < 0 {
		return nil, fmt.Errorf("rerank.topn: n must be >= 0, got %d", n)
	}
	return &rerank.TopNNode{N: n}, nil
}

func newFilterNode(filters ...filter.Filter) *filter.FilterNode {
	return &filter.FilterNode{
		Filters: filters,
		OnFiltered: func(_ *core.ScoredCandidate, reason string) {
			metrics.RecordFiltered(reason)
		},
	}
}
