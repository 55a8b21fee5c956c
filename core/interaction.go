package core

import (
	"math"
	"time"
)

// InteractionKind 是用户对内容的行为类型。
type InteractionKind string

const (
	InteractionView    InteractionKind = "view"
	InteractionLike    InteractionKind = "like"
	InteractionComment InteractionKind = "comment"
	InteractionShare   InteractionKind = "share"
)

// Interaction 是交互账本中的一条记录：只追加，不去重。
// Weight = 行为基础权重 × Score。
type Interaction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	ContentID string          `json:"content_id"`
	Kind      InteractionKind `json:"kind"`
	Score     float64         `json:"score"`
	Weight    float64         `json:"weight"`
	CreatedAt time.Time       `json:"created_at"`
}

// InteractionWeights 是各行为类型的基础权重。
type InteractionWeights struct {
	// Base 行为类型 -> 基础权重
	Base map[InteractionKind]float64

	// Default 未知行为类型的基础权重
	Default float64
}

// DefaultInteractionWeights 返回默认基础权重：view=0.5, like=1.0, comment=1.5, share=2.0，未知=0.5。
func DefaultInteractionWeights() InteractionWeights {
	return InteractionWeights{
		Base: map[InteractionKind]float64{
			InteractionView:    0.5,
			InteractionLike:    1.0,
			InteractionComment: 1.5,
			InteractionShare:   2.0,
		},
		Default: 0.5,
	}
}

// BaseOf 返回行为类型的基础权重，未知类型返回 Default。
func (w InteractionWeights) BaseOf(kind InteractionKind) float64 {
	if base, ok := w.Base[kind]; ok {
		return base
	}
	return w.Default
}

// WeightOf 计算一次交互的权重：BaseOf(kind) * score。
// 负数或非有限的结果按 0 处理，保证账本中的权重恒 >= 0。
func (w InteractionWeights) WeightOf(kind InteractionKind, score float64) float64 {
	weight := w.BaseOf(kind) * score
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight < 0 {
		return 0
	}
	return weight
}
