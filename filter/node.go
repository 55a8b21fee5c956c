package filter

import (
	"context"

	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/pipeline"
	"github.com/rushteam/feedrec/pkg/utils"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 任何一个过滤器返回 true，该候选就会被过滤掉；保留的候选维持原有顺序。
// 过滤器出错时不中断流程，视为保留。
type FilterNode struct {
	Filters []Filter

	// OnFiltered 在候选被过滤时回调（可选，用于观测）
	OnFiltered func(item *core.ScoredCandidate, reason string)
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.ScoredCandidate,
) ([]*core.ScoredCandidate, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.ScoredCandidate, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		reason := ""
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				continue
			}
			if ok {
				reason = f.Name()
				break
			}
		}

		if reason != "" {
			item.PutLabel(utils.LabelFiltered, utils.Label{Value: "true", Source: reason})
			if n.OnFiltered != nil {
				n.OnFiltered(item, reason)
			}
			continue
		}
		out = append(out, item)
	}
	return out, nil
}
