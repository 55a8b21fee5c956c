package core

// CandidateSet 是一次排序调用可见的候选内容集合：保持调用方给出的顺序，并按 ID 建索引。
// ID 重复时以第一次出现为准；nil 元素被忽略。
type CandidateSet struct {
	items []*ContentItem
	index map[string]*ContentItem
}

// NewCandidateSet 基于调用方给出的内容列表构建候选集合，只引用不复制。
func NewCandidateSet(items []*ContentItem) *CandidateSet {
	cs := &CandidateSet{
		items: make([]*ContentItem, 0, len(items)),
		index: make(map[string]*ContentItem, len(items)),
	}
	for _, it := range items {
		if it == nil {
			continue
		}
		cs.items = append(cs.items, it)
		if _, ok := cs.index[it.ID]; !ok {
			cs.index[it.ID] = it
		}
	}
	return cs
}

// Items 返回候选列表（按原始顺序）。
func (cs *CandidateSet) Items() []*ContentItem {
	if cs == nil {
		return nil
	}
	return cs.items
}

// Get 按 ID 查找候选内容。
func (cs *CandidateSet) Get(id string) (*ContentItem, bool) {
	if cs == nil {
		return nil, false
	}
	it, ok := cs.index[id]
	return it, ok
}

// Len 返回候选数量。
func (cs *CandidateSet) Len() int {
	if cs == nil {
		return 0
	}
	return len(cs.items)
}
