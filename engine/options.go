package engine

import (
	"github.com/rs/zerolog"

	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/pipeline"
)

// Option 配置 Engine。
type Option func(*Engine)

// WithConfig 设置打分参数（行为权重、融合权重、邻居阈值、默认下限等）。
func WithConfig(cfg core.ScoringConfig) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithLogger 设置日志，默认 zerolog.Nop()。
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithStages 追加 Feed 后置阶段，在分数下限过滤之后按顺序执行。
// 后置阶段只能删除候选，不能调整分数或新增候选。
func WithStages(nodes ...pipeline.Node) Option {
	return func(e *Engine) {
		e.stages = append(e.stages, nodes...)
	}
}
