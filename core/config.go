package core

// ScoringConfig 汇总打分引擎的可调参数。
// 这些常量是经验值，保留为默认值而非硬约束，可通过配置覆盖。
type ScoringConfig struct {
	// Interaction 行为基础权重
	Interaction InteractionWeights

	// ContentWeight 融合时内容推荐分数的权重
	ContentWeight float64

	// CollaborativeWeight 融合时协同过滤分数的权重
	CollaborativeWeight float64

	// NeighborThreshold 相似用户的 Jaccard 相似度下限（严格大于）
	NeighborThreshold float64

	// MinScore 默认的分数下限
	MinScore float64

	// DefaultLimit 默认 Feed 长度
	DefaultLimit int

	// MaxLimit Feed 长度上限
	MaxLimit int
}

// DefaultScoringConfig 返回默认打分配置。
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Interaction:         DefaultInteractionWeights(),
		ContentWeight:       0.6,
		CollaborativeWeight: 0.4,
		NeighborThreshold:   0.1,
		MinScore:            0.5,
		DefaultLimit:        20,
		MaxLimit:            100,
	}
}

// ResolveLimit 把调用方给出的 limit 规范到 (0, MaxLimit]，<= 0 时使用 DefaultLimit。
func (c ScoringConfig) ResolveLimit(limit int) int {
	if limit <= 0 {
		limit = c.DefaultLimit
	}
	if c.MaxLimit > 0 && limit > c.MaxLimit {
		limit = c.MaxLimit
	}
	return limit
}
