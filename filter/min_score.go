package filter

import (
	"context"

	"github.com/rushteam/feedrec/core"
)

// MinScoreFilter 过滤分数低于下限的候选（等于下限保留）。
type MinScoreFilter struct {
	MinScore float64
}

func (f *MinScoreFilter) Name() string {
	return "filter.min_score"
}

func (f *MinScoreFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.ScoredCandidate,
) (bool, error) {
	return item.Score < f.MinScore, nil
}
