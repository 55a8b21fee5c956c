package recall

import (
	"context"
	"sort"

	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/pipeline"
	"github.com/rushteam/feedrec/pkg/utils"
)

// DefaultHotKey 是热门榜单在 KeyValueStore 中的默认有序集合 key。
const DefaultHotKey = "trending:content"

// Hot 是热门打分源：
//   - 如果 Store 非空，优先按有序集合（交互权重累加）降序读取
//   - 有序集合为空、读取失败或 Store 为空时，按候选内容的互动总量（点赞+评论+分享）降序
//
// 结果只包含候选集合中存在的内容。Hot 同时实现了 Source 和 Node 接口。
type Hot struct {
	Store core.KeyValueStore
	Key   string
	TopK  int
}

func (r *Hot) Name() string        { return "recall.hot" }
func (r *Hot) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Hot) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.ScoredCandidate,
) ([]*core.ScoredCandidate, error) {
	return r.Recall(ctx, rctx)
}

func (r *Hot) key() string {
	if r.Key == "" {
		return DefaultHotKey
	}
	return r.Key
}

// Recall 实现 Source 接口
func (r *Hot) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.ScoredCandidate, error) {
	if rctx == nil || r.TopK <= 0 || rctx.Candidates.Len() == 0 {
		return nil, nil
	}

	if out := r.fromStore(ctx, rctx.Candidates); len(out) > 0 {
		return out, nil
	}
	return r.byEngagement(rctx.Candidates), nil
}

// hotPageSize 是每次从有序集合读取的成员数下限。
const hotPageSize = 64

func (r *Hot) fromStore(ctx context.Context, candidates *core.CandidateSet) []*core.ScoredCandidate {
	if r.Store == nil {
		return nil
	}
	// 有序集合中可能包含已下线的内容，按页读取直到凑满 TopK 个候选内容
	page := int64(max(r.TopK*2, hotPageSize))
	out := make([]*core.ScoredCandidate, 0, r.TopK)
	for start := int64(0); ; start += page {
		members, err := r.Store.ZRevRangeWithScores(ctx, r.key(), start, start+page-1)
		if err != nil {
			return nil
		}
		for _, m := range members {
			item, ok := candidates.Get(m.Member)
			if !ok {
				continue
			}
			out = append(out, hotCandidate(item, m.Score, "zset"))
			if len(out) == r.TopK {
				return out
			}
		}
		if int64(len(members)) < page {
			return out
		}
	}
}

func (r *Hot) byEngagement(candidates *core.CandidateSet) []*core.ScoredCandidate {
	out := make([]*core.ScoredCandidate, 0, candidates.Len())
	for _, item := range candidates.Items() {
		if first, _ := candidates.Get(item.ID); first != item {
			continue
		}
		out = append(out, hotCandidate(item, float64(item.Engagement()), "engagement"))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > r.TopK {
		out = out[:r.TopK]
	}
	return out
}

func hotCandidate(item *core.ContentItem, score float64, metric string) *core.ScoredCandidate {
	sc := core.NewScoredCandidate(item, score, core.MethodTrending)
	sc.PutLabel(utils.LabelRecallSource, utils.Label{Value: "hot", Source: "recall"})
	sc.PutLabel(utils.LabelRecallMetric, utils.Label{Value: metric, Source: "recall"})
	return sc
}
