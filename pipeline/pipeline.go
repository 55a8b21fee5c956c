package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/feedrec/core"
)

// Pipeline 把一次排序拆成可组合的 Node 链：打分融合 → 截断 → 分数下限 → 可选后置阶段。
type Pipeline struct {
	Nodes []Node
}

// Append 追加 Node，返回自身便于链式构建。
func (p *Pipeline) Append(nodes ...Node) *Pipeline {
	p.Nodes = append(p.Nodes, nodes...)
	return p
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.ScoredCandidate,
) ([]*core.ScoredCandidate, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", node.Kind(), node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}
