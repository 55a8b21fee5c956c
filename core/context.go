package core

import "github.com/rushteam/feedrec/pkg/utils"

// RecommendContext 承载一次排序调用的用户、候选集合与请求参数，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string
	Scene  string

	// Candidates 本次调用可见的候选内容
	Candidates *CandidateSet

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级参数，例如 limit、min_score
	Params map[string]any
}

// NewRecommendContext 基于候选内容列表创建上下文。
func NewRecommendContext(userID string, candidates []*ContentItem) *RecommendContext {
	return &RecommendContext{
		UserID:     userID,
		Candidates: NewCandidateSet(candidates),
		Params:     make(map[string]any),
	}
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
