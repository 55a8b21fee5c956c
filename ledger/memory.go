package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rushteam/feedrec/core"
)

// MemoryLedger 是进程内的交互账本，线程安全。
// 读取时复制出快照，调用方可以在不持锁的情况下遍历。
type MemoryLedger struct {
	mu     sync.RWMutex
	byUser map[string][]core.Interaction
	users  []string // 首次出现顺序
	count  int
}

// NewMemoryLedger 创建进程内账本。
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		byUser: make(map[string][]core.Interaction),
	}
}

func (l *MemoryLedger) Name() string { return "memory" }

// Record 追加一条交互。ID、CreatedAt 为空时自动补齐。
func (l *MemoryLedger) Record(_ context.Context, in core.Interaction) error {
	if err := validate(in); err != nil {
		return err
	}
	fill(&in)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.byUser[in.UserID]; !ok {
		l.users = append(l.users, in.UserID)
	}
	l.byUser[in.UserID] = append(l.byUser[in.UserID], in)
	l.count++
	return nil
}

func (l *MemoryLedger) InteractionsFor(_ context.Context, userID string) ([]core.Interaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	src := l.byUser[userID]
	out := make([]core.Interaction, len(src))
	copy(out, src)
	return out, nil
}

func (l *MemoryLedger) Users(_ context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]string, len(l.users))
	copy(out, l.users)
	return out, nil
}

// Len 返回账本中的交互总数。
func (l *MemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

var _ core.InteractionLedger = (*MemoryLedger)(nil)

var (
	errEmptyUser    = core.NewDomainError(core.ModuleLedger, core.ErrorCodeInvalidInput, "ledger: user id is empty")
	errEmptyContent = core.NewDomainError(core.ModuleLedger, core.ErrorCodeInvalidInput, "ledger: content id is empty")
)

func validate(in core.Interaction) error {
	if in.UserID == "" {
		return errEmptyUser
	}
	if in.ContentID == "" {
		return errEmptyContent
	}
	return nil
}

func fill(in *core.Interaction) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	if in.Weight < 0 {
		in.Weight = 0
	}
}
