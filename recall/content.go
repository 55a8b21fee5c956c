package recall

import (
	"context"
	"fmt"
	"sort"

	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/feature"
	"github.com/rushteam/feedrec/pkg/utils"
)

// ContentRecall 是基于内容的打分源（Content-Based Recommendation）。
//
// 核心思想："用户喜欢具有某些特征的内容，推荐特征相似的其他内容"
//
// 算法流程：
//  1. 读取用户交互快照，计算画像向量（feature.BuildProfile）
//  2. 对每个未交互过的候选计算画像与内容向量的余弦相似度
//  3. 稳定降序排序（同分保持候选顺序），取 TopK
type ContentRecall struct {
	Ledger core.InteractionLedger

	// TopK 返回 TopK 个内容，<= 0 时返回空
	TopK int
}

func (r *ContentRecall) Name() string {
	return "recall.content"
}

func (r *ContentRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.ScoredCandidate, error) {
	if rctx == nil || r.TopK <= 0 || rctx.Candidates.Len() == 0 {
		return nil, nil
	}

	var history []core.Interaction
	if r.Ledger != nil {
		var err error
		history, err = r.Ledger.InteractionsFor(ctx, rctx.UserID)
		if err != nil {
			return nil, fmt.Errorf("content recall for %s: %w", rctx.UserID, err)
		}
	}

	// 画像与已交互集合来自同一份快照
	profile := feature.BuildProfile(history, rctx.Candidates)
	seen := core.SeenContent(history)

	out := make([]*core.ScoredCandidate, 0, rctx.Candidates.Len())
	for _, item := range rctx.Candidates.Items() {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		// 重复 ID 只保留第一次出现
		if first, _ := rctx.Candidates.Get(item.ID); first != item {
			continue
		}
		score := CosineSimilarity(profile, feature.Vectorize(item))
		sc := core.NewScoredCandidate(item, score, core.MethodContentBased)
		sc.PutLabel(utils.LabelRecallSource, utils.Label{Value: "content", Source: "recall"})
		sc.PutLabel(utils.LabelRecallMetric, utils.Label{Value: "cosine", Source: "recall"})
		out = append(out, sc)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > r.TopK {
		out = out[:r.TopK]
	}
	return out, nil
}
