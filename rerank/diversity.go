package rerank

import (
	"context"

	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/pipeline"
)

// Diversity 是按品类打散的 ReRank：同一品类最多保留 MaxPerCategory 个，超出的候选被移除。
// 只删除不重排，保留候选的相对顺序。缺失品类按 lifestyle 计。
type Diversity struct {
	// MaxPerCategory 每个品类最多保留的数量，<= 0 时按 1 处理
	MaxPerCategory int
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.ScoredCandidate,
) ([]*core.ScoredCandidate, error) {
	if len(items) == 0 {
		return items, nil
	}

	limit := n.MaxPerCategory
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[core.Category]int, len(core.Categories)+1)
	out := make([]*core.ScoredCandidate, 0, len(items))
	for _, it := range items {
		if it == nil || it.Content == nil {
			continue
		}
		cate := it.Content.Category
		if cate == "" {
			cate = core.DefaultCategory
		}
		if seen[cate] >= limit {
			continue
		}
		seen[cate]++
		out = append(out, it)
	}
	return out, nil
}
