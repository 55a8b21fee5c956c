package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rushteam/feedrec/core"
)

func TestMemoryLedger_RecordKeepsOrderAndDuplicates(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	for _, cid := range []string{"a", "b", "a"} {
		if err := l.Record(ctx, core.Interaction{UserID: "u1", ContentID: cid, Kind: core.InteractionLike, Weight: 1}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := l.InteractionsFor(ctx, "u1")
	if err != nil {
		t.Fatalf("InteractionsFor() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	want := []string{"a", "b", "a"}
	for i, in := range got {
		if in.ContentID != want[i] {
			t.Errorf("got[%d].ContentID = %q, want %q", i, in.ContentID, want[i])
		}
		if in.ID == "" {
			t.Errorf("got[%d].ID is empty", i)
		}
		if in.CreatedAt.IsZero() {
			t.Errorf("got[%d].CreatedAt is zero", i)
		}
	}
	if l.Len() != 3 {
		t.Errorf("Len() = %d, want 3", l.Len())
	}
}

func TestMemoryLedger_UsersFirstSeenOrder(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	for _, u := range []string{"u2", "u1", "u2", "u3"} {
		_ = l.Record(ctx, core.Interaction{UserID: u, ContentID: "x"})
	}

	users, err := l.Users(ctx)
	if err != nil {
		t.Fatalf("Users() error = %v", err)
	}
	want := []string{"u2", "u1", "u3"}
	if fmt.Sprint(users) != fmt.Sprint(want) {
		t.Errorf("Users() = %v, want %v", users, want)
	}
}

func TestMemoryLedger_UnknownUserIsEmpty(t *testing.T) {
	got, err := NewMemoryLedger().InteractionsFor(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("InteractionsFor() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("InteractionsFor(ghost) = %v, want empty", got)
	}
}

func TestMemoryLedger_RejectsMissingIdentity(t *testing.T) {
	tests := []struct {
		name string
		in   core.Interaction
		want error
	}{
		{name: "empty user", in: core.Interaction{ContentID: "a"}, want: errEmptyUser},
		{name: "empty content", in: core.Interaction{UserID: "u"}, want: errEmptyContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewMemoryLedger().Record(context.Background(), tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("Record() error = %v, want %v", err, tt.want)
			}
			if !core.IsInvalidInput(err) {
				t.Errorf("IsInvalidInput(%v) = false", err)
			}
		})
	}
}

func TestMemoryLedger_SnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	_ = l.Record(ctx, core.Interaction{UserID: "u", ContentID: "a"})

	snap, _ := l.InteractionsFor(ctx, "u")
	_ = l.Record(ctx, core.Interaction{UserID: "u", ContentID: "b"})
	snap[0].ContentID = "mutated"

	if len(snap) != 1 {
		t.Errorf("snapshot grew to %d", len(snap))
	}
	again, _ := l.InteractionsFor(ctx, "u")
	if again[0].ContentID != "a" {
		t.Errorf("ledger mutated through snapshot: %q", again[0].ContentID)
	}
}

func TestMemoryLedger_ConcurrentRecord(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", w%3)
			for i := 0; i < 100; i++ {
				_ = l.Record(ctx, core.Interaction{UserID: user, ContentID: fmt.Sprintf("c%d", i)})
				_, _ = l.InteractionsFor(ctx, user)
				_, _ = l.Users(ctx)
			}
		}(w)
	}
	wg.Wait()

	if l.Len() != 800 {
		t.Errorf("Len() = %d, want 800", l.Len())
	}
	users, _ := l.Users(ctx)
	if len(users) != 3 {
		t.Errorf("Users() = %v, want 3 distinct", users)
	}
}
