package rerank

import (
	"context"

	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，在融合排序之后截取前 N 个候选。
//
// Feed 的固定顺序是先截断再做分数下限过滤：
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        recall.NewHybrid(content, cf, 0.6, 0.4), // 融合排序
//	        &rerank.TopNNode{N: limit},                 // 截取 Top N
//	        &filter.FilterNode{Filters: []filter.Filter{&filter.MinScoreFilter{MinScore: minScore}}},
//	    },
//	}
type TopNNode struct {
	// N 要保留的候选数量
	// 如果 N <= 0，则返回所有候选（不截断）
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.ScoredCandidate,
) ([]*core.ScoredCandidate, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
