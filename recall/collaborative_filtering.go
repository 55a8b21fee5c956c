package recall

import (
	"context"
	"fmt"
	"sort"

	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/pkg/utils"
)

// DefaultNeighborThreshold 是相似用户的默认 Jaccard 下限（严格大于）。
const DefaultNeighborThreshold = 0.1

// UserBasedCF 是基于用户的协同过滤打分源（User-based Collaborative Filtering, User-CF）。
//
// 核心思想："兴趣相似的用户，喜欢相似的内容"
//
// 算法流程：
//  1. 用户 → 交互过的内容 ID 集合
//  2. 计算与其他每个用户的 Jaccard 相似度，保留严格大于阈值的邻居
//  3. 邻居对目标用户未见过内容的每次交互累加 weight * similarity
//  4. 在候选集合中解析内容 ID（解析不到的丢弃），稳定降序取 TopK
//
// 同分顺序为发现顺序：邻居按账本中用户首次出现的顺序，邻居内部按交互写入顺序。
type UserBasedCF struct {
	Ledger core.InteractionLedger

	// TopK 最终返回的 TopK 个内容，<= 0 时返回空
	TopK int

	// NeighborThreshold 邻居相似度下限，零值表示使用 DefaultNeighborThreshold。
	// 配置加载路径要求取值在 (0, 1)，零值仅出现在代码直接构造时
	NeighborThreshold float64
}

func (r *UserBasedCF) Name() string {
	return "recall.u2i" // u2u → u2i
}

// Neighbor 是一个相似用户及其交互快照。
type Neighbor struct {
	UserID     string
	Similarity float64
	History    []core.Interaction
}

func (r *UserBasedCF) threshold() float64 {
	if r.NeighborThreshold > 0 {
		return r.NeighborThreshold
	}
	return DefaultNeighborThreshold
}

// Neighbors 返回目标用户的相似用户及相似度（按账本用户顺序）。
func (r *UserBasedCF) Neighbors(ctx context.Context, userID string) ([]Neighbor, map[string]struct{}, error) {
	if r.Ledger == nil {
		return nil, nil, nil
	}
	target, err := r.Ledger.InteractionsFor(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load interactions for %s: %w", userID, err)
	}
	seen := core.SeenContent(target)

	users, err := r.Ledger.Users(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load users: %w", err)
	}

	threshold := r.threshold()
	var out []Neighbor
	for _, other := range users {
		if other == userID {
			continue // 跳过自己
		}
		history, err := r.Ledger.InteractionsFor(ctx, other)
		if err != nil {
			return nil, nil, fmt.Errorf("load interactions for %s: %w", other, err)
		}
		sim := JaccardSimilarity(seen, core.SeenContent(history))
		if sim > threshold {
			out = append(out, Neighbor{UserID: other, Similarity: sim, History: history})
		}
	}
	return out, seen, nil
}

func (r *UserBasedCF) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.ScoredCandidate, error) {
	if rctx == nil || r.TopK <= 0 {
		return nil, nil
	}

	neighbors, seen, err := r.Neighbors(ctx, rctx.UserID)
	if err != nil {
		return nil, fmt.Errorf("collaborative recall: %w", err)
	}

	// score[contentID] = Σ(weight * similarity)，order 记录发现顺序
	scores := make(map[string]float64)
	var order []string
	for _, nb := range neighbors {
		for _, in := range nb.History {
			if _, ok := seen[in.ContentID]; ok {
				continue
			}
			if _, ok := scores[in.ContentID]; !ok {
				order = append(order, in.ContentID)
			}
			scores[in.ContentID] += in.Weight * nb.Similarity
		}
	}

	out := make([]*core.ScoredCandidate, 0, len(order))
	for _, cid := range order {
		item, ok := rctx.Candidates.Get(cid)
		if !ok {
			continue
		}
		sc := core.NewScoredCandidate(item, scores[cid], core.MethodCollaborative)
		sc.PutLabel(utils.LabelRecallSource, utils.Label{Value: "u2i", Source: "recall"})
		sc.PutLabel(utils.LabelRecallMetric, utils.Label{Value: "jaccard", Source: "recall"})
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
