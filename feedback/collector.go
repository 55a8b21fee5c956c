// Package feedback 采集曝光与交互事件并投递到下游（内存或 Kafka），供离线分析与训练使用。
//
// 采集是旁路：投递失败只记日志，不影响 Feed 与交互写入。
package feedback

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rushteam/feedrec/core"
)

// EventType 事件类型
type EventType string

const (
	EventImpression  EventType = "impression"  // 曝光：Feed 返回的内容
	EventInteraction EventType = "interaction" // 交互：view/like/comment/share
)

// Event 是一条反馈事件。
type Event struct {
	ID        string               `json:"id"`
	Type      EventType            `json:"type"`
	UserID    string               `json:"user_id"`
	ContentID string               `json:"content_id"`
	Kind      core.InteractionKind `json:"kind,omitempty"`
	Position  int                  `json:"position"`
	Score     float64              `json:"score"`
	Weight    float64              `json:"weight,omitempty"`
	Methods   []core.Method        `json:"methods,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// Collector 反馈收集器（异步非阻塞）
type Collector interface {
	// RecordImpressions 记录一次 Feed 的曝光，position 按返回顺序从 0 开始
	RecordImpressions(ctx context.Context, userID string, items []*core.ScoredCandidate) error

	// RecordInteraction 记录一次已写入账本的交互
	RecordInteraction(ctx context.Context, in core.Interaction) error

	// Close 优雅关闭，等待缓冲数据发送完成
	Close() error
}

func impressionEvents(userID string, items []*core.ScoredCandidate, now time.Time) []Event {
	events := make([]Event, 0, len(items))
	for i, sc := range items {
		if sc == nil {
			continue
		}
		events = append(events, Event{
			ID:        uuid.NewString(),
			Type:      EventImpression,
			UserID:    userID,
			ContentID: sc.ID(),
			Position:  i,
			Score:     sc.Score,
			Methods:   sc.Methods,
			Timestamp: now,
		})
	}
	return events
}

func interactionEvent(in core.Interaction) Event {
	ts := in.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	return Event{
		ID:        id,
		Type:      EventInteraction,
		UserID:    in.UserID,
		ContentID: in.ContentID,
		Kind:      in.Kind,
		Score:     in.Score,
		Weight:    in.Weight,
		Timestamp: ts,
	}
}
