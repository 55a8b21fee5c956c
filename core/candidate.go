package core

import "github.com/rushteam/feedrec/pkg/utils"

// Method 标记某个推荐结果由哪种打分方法产生。
type Method string

const (
	MethodContentBased  Method = "content-based"
	MethodCollaborative Method = "collaborative"
	MethodTrending      Method = "trending"
)

// ScoredCandidate 是推荐链路中的统一承载结构：内容引用、分数、贡献方法与标签。
// 每次排序调用临时生成，不落盘。
type ScoredCandidate struct {
	Content *ContentItem
	Score   float64
	Methods []Method
	Labels  map[string]utils.Label
}

// NewScoredCandidate 创建一个带单一方法的候选。
func NewScoredCandidate(content *ContentItem, score float64, method Method) *ScoredCandidate {
	sc := &ScoredCandidate{
		Content: content,
		Score:   score,
		Labels:  make(map[string]utils.Label),
	}
	if method != "" {
		sc.Methods = []Method{method}
	}
	return sc
}

// ID 返回候选内容 ID。
func (sc *ScoredCandidate) ID() string {
	if sc == nil || sc.Content == nil {
		return ""
	}
	return sc.Content.ID
}

// HasMethod 判断候选是否包含某个方法的贡献。
func (sc *ScoredCandidate) HasMethod(m Method) bool {
	for _, have := range sc.Methods {
		if have == m {
			return true
		}
	}
	return false
}

// AddMethod 以集合语义追加方法。
func (sc *ScoredCandidate) AddMethod(m Method) {
	if sc.HasMethod(m) {
		return
	}
	sc.Methods = append(sc.Methods, m)
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (sc *ScoredCandidate) PutLabel(key string, lbl utils.Label) {
	if sc.Labels == nil {
		sc.Labels = make(map[string]utils.Label)
	}
	if old, ok := sc.Labels[key]; ok {
		sc.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	sc.Labels[key] = lbl
}
