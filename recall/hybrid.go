package recall

import (
	"context"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/pipeline"
	"github.com/rushteam/feedrec/pkg/utils"
)

// WeightedSource 是参与融合的打分源及其权重。
type WeightedSource struct {
	Source Source
	Weight float64
}

// Hybrid 是一个 Recall Node：并发执行多个打分源，按权重融合为一份排序结果。
//
// 融合规则：
//   - 每个来源的分数乘以其权重后按内容 ID 累加
//   - 同一内容出现在多个来源时，方法集合取并集，Labels 合并
//   - 融合顺序为来源顺序（先来源 0 的结果，再来源 1 中新出现的结果），随后稳定降序排序
//
// 任一来源出错都会中断本次排序：打分源只读账本，出错意味着账本不可用。
type Hybrid struct {
	Sources []WeightedSource
}

// NewHybrid 创建内容 + 协同两路融合节点。
func NewHybrid(content, collaborative Source, contentWeight, collaborativeWeight float64) *Hybrid {
	return &Hybrid{
		Sources: []WeightedSource{
			{Source: content, Weight: contentWeight},
			{Source: collaborative, Weight: collaborativeWeight},
		},
	}
}

func (n *Hybrid) Name() string        { return "recall.hybrid" }
func (n *Hybrid) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Hybrid) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.ScoredCandidate,
) ([]*core.ScoredCandidate, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	// 每个来源写入自己的槽位，无需加锁，并保证融合顺序与来源顺序一致
	results := make([][]*core.ScoredCandidate, len(n.Sources))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, ws := range n.Sources {
		if ws.Source == nil {
			continue
		}
		eg.Go(func() error {
			items, err := ws.Source.Recall(egCtx, rctx)
			if err != nil {
				return err
			}
			results[i] = items
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return n.fuse(results), nil
}

func (n *Hybrid) fuse(results [][]*core.ScoredCandidate) []*core.ScoredCandidate {
	fused := make(map[string]*core.ScoredCandidate)
	var out []*core.ScoredCandidate

	for i, items := range results {
		weight := n.Sources[i].Weight
		for _, it := range items {
			if it == nil || it.Content == nil {
				continue
			}
			contribution := it.Score * weight
			fusion := utils.Label{
				Value:  string(firstMethod(it)) + "*" + strconv.FormatFloat(weight, 'f', -1, 64),
				Source: "hybrid",
			}
			if old, ok := fused[it.ID()]; ok {
				old.Score += contribution
				for _, m := range it.Methods {
					old.AddMethod(m)
				}
				for k, v := range it.Labels {
					old.PutLabel(k, v)
				}
				old.PutLabel(utils.LabelFusion, fusion)
				continue
			}
			sc := &core.ScoredCandidate{
				Content: it.Content,
				Score:   contribution,
				Methods: append([]core.Method(nil), it.Methods...),
			}
			for k, v := range it.Labels {
				sc.PutLabel(k, v)
			}
			sc.PutLabel(utils.LabelFusion, fusion)
			fused[it.ID()] = sc
			out = append(out, sc)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func firstMethod(sc *core.ScoredCandidate) core.Method {
	if len(sc.Methods) == 0 {
		return ""
	}
	return sc.Methods[0]
}
