package feature

import (
	"context"
	"fmt"

	"github.com/rushteam/feedrec/core"
)

// ProfileBuilder 根据交互账本计算用户画像向量。
// 画像向量每次请求重新计算，Builder 不持有跨调用的缓存。
type ProfileBuilder struct {
	Ledger core.InteractionLedger
}

// NewProfileBuilder 创建画像构建器。
func NewProfileBuilder(ledger core.InteractionLedger) *ProfileBuilder {
	return &ProfileBuilder{Ledger: ledger}
}

// ProfileFor 读取用户交互并计算画像向量。
func (b *ProfileBuilder) ProfileFor(ctx context.Context, userID string, candidates *core.CandidateSet) ([]float64, error) {
	if b.Ledger == nil {
		return BuildProfile(nil, candidates), nil
	}
	history, err := b.Ledger.InteractionsFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load interactions for %s: %w", userID, err)
	}
	return BuildProfile(history, candidates), nil
}

// BuildProfile 是画像向量的纯计算部分：
// 对 history 中能在 candidates 里找到的内容，按交互权重对特征向量做加权平均。
//
// 总权重为 0（没有交互、交互内容都不在候选集中、或权重全为 0）时：
// 候选集非空返回全 0.5 的中性向量，候选集为空返回零向量。
func BuildProfile(history []core.Interaction, candidates *core.CandidateSet) []float64 {
	acc := make([]float64, Dimension)
	var total float64

	for _, in := range history {
		item, ok := candidates.Get(in.ContentID)
		if !ok {
			continue
		}
		vec := Vectorize(item)
		for i, v := range vec {
			acc[i] += v * in.Weight
		}
		total += in.Weight
	}

	if total > 0 {
		for i := range acc {
			acc[i] /= total
		}
		return acc
	}
	if candidates.Len() == 0 {
		return make([]float64, Dimension)
	}
	return NeutralVector()
}
