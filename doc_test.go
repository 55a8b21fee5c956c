package feedrec

import (
	"context"
	"testing"

	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/ledger"
)

func TestFacade(t *testing.T) {
	ctx := context.Background()
	var e *Engine = NewEngine(ledger.NewMemoryLedger())

	if _, err := e.Record(ctx, "u", "a", core.InteractionLike, 1); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	items := []*core.ContentItem{
		{ID: "a", Category: core.CategoryBeauty, Likes: 10},
		{ID: "b", Category: core.CategoryBeauty, Likes: 12},
	}
	feed, err := e.Personalize(ctx, "u", items, 5, 0)
	if err != nil {
		t.Fatalf("Personalize() error = %v", err)
	}
	if len(feed) != 1 || feed[0].ID() != "b" {
		t.Errorf("feed = %+v, want [b]", feed)
	}

	var p Pipeline
	if len(p.Nodes) != 0 || KindRecall != "recall" {
		t.Error("unexpected zero pipeline")
	}
}
