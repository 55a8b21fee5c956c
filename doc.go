// Package feedrec 是一个混合 Feed 推荐引擎：内容向量 + 用户协同过滤，加权融合后生成个性化 Feed。
//
// 设计要点：
// - Pipeline-first: 打分、截断、下限过滤与后置阶段都是 Node，按顺序串联
// - Labels-first: 每个候选携带来源方法与 labels，便于解释与观测
// - 账本即事实: 画像向量与相似用户每次请求由交互账本实时计算，不做缓存
package feedrec

import (
	"github.com/rushteam/feedrec/engine"
	"github.com/rushteam/feedrec/pipeline"
)

// 轻量 facade：便于直接 import "feedrec" 使用核心抽象。
type (
	Pipeline = pipeline.Pipeline
	Node     = pipeline.Node
	Kind     = pipeline.Kind
	Engine   = engine.Engine
)

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindReRank = pipeline.KindReRank
)

// NewEngine 创建打分引擎，等价于 engine.New。
var NewEngine = engine.New
