package feedback

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/feedrec/core"
)

// MemoryCollector 把事件保存在内存中，用于开发与测试。
type MemoryCollector struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

func (c *MemoryCollector) RecordImpressions(_ context.Context, userID string, items []*core.ScoredCandidate) error {
	events := impressionEvents(userID, items, time.Now())
	c.mu.Lock()
	c.events = append(c.events, events...)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCollector) RecordInteraction(_ context.Context, in core.Interaction) error {
	c.mu.Lock()
	c.events = append(c.events, interactionEvent(in))
	c.mu.Unlock()
	return nil
}

// Events 返回已记录事件的快照。
func (c *MemoryCollector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

func (c *MemoryCollector) Close() error { return nil }
