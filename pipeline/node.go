package pipeline

import (
	"context"

	"github.com/rushteam/feedrec/core"
)

// Kind 用于标记 Node 类型，方便观测与编排（例如按阶段打点）。
type Kind string

const (
	KindRecall Kind = "recall" // 打分阶段：生成带分数的候选
	KindFilter Kind = "filter" // 过滤阶段：剔除不符合约束的候选
	KindReRank Kind = "rerank" // 重排阶段：截断、多样性等调整
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 candidates -> 输出 candidates”的形态，Recall 生成、Filter 剔除、ReRank 截断都走同一接口。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.ScoredCandidate,
	) ([]*core.ScoredCandidate, error)
}
