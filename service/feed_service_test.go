package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rushteam/feedrec/catalog"
	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/engine"
	"github.com/rushteam/feedrec/feedback"
	"github.com/rushteam/feedrec/ledger"
	"github.com/rushteam/feedrec/store"
)

func newTestService(t *testing.T) *FeedService {
	t.Helper()
	kv := store.NewMemoryStore()
	t.Cleanup(func() { _ = kv.Close() })

	cat := catalog.NewMemoryCatalog(
		&core.ContentItem{ID: "A", Category: core.CategoryBeauty, Likes: 100, Sentiment: core.Float(0.8)},
		&core.ContentItem{ID: "B", Category: core.CategoryBeauty, Likes: 90, Sentiment: core.Float(0.75)},
		&core.ContentItem{ID: "C", Category: core.CategoryTech, Likes: 5, Shares: 50},
	)
	svc := NewFeedService(engine.New(ledger.NewMemoryLedger()), NewUserManager(zerolog.Nop()), cat, kv, zerolog.Nop())
	for _, u := range []string{"U", "V"} {
		if _, err := svc.Users.Create(u, u, ""); err != nil {
			t.Fatalf("Create(%s) error = %v", u, err)
		}
	}
	return svc
}

func TestFeedService_FeedUnknownUser(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Feed(context.Background(), "ghost", 10, 0); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Feed(ghost) error = %v, want ErrUserNotFound", err)
	}
}

func TestFeedService_FeedAndViews(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.RecordInteraction(ctx, "U", "A", core.InteractionLike, 1); err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}
	feed, err := svc.Feed(ctx, "U", 0, svc.DefaultMinScore())
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(feed) == 0 || feed[0].ID() != "B" {
		t.Fatalf("feed = %+v, want B first", feed)
	}
	for _, sc := range feed {
		if sc.ID() == "A" {
			t.Error("interacted item A served")
		}
	}

	views, _ := svc.Users.ViewHistory("U", 0)
	// 1 次交互 + Feed 返回的内容
	if len(views) != 1+len(feed) {
		t.Errorf("views = %d, want %d", len(views), 1+len(feed))
	}
}

func TestFeedService_TrendingFollowsInteractions(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	// 没有交互时按互动总量：C(55) < B(90) < A(100)
	hot, err := svc.Trending(ctx, 2)
	if err != nil {
		t.Fatalf("Trending() error = %v", err)
	}
	if len(hot) != 2 || hot[0].ID() != "A" || hot[1].ID() != "B" {
		t.Errorf("Trending() = %v, want [A B]", hot)
	}

	_, _ = svc.RecordInteraction(ctx, "U", "C", core.InteractionShare, 1) // 2.0
	_, _ = svc.RecordInteraction(ctx, "V", "B", core.InteractionView, 1)  // 0.5
	_, _ = svc.RecordInteraction(ctx, "V", "C", core.InteractionLike, -1) // 0，不计入

	hot, _ = svc.Trending(ctx, 10)
	if len(hot) != 2 || hot[0].ID() != "C" || hot[0].Score != 2 || hot[1].ID() != "B" {
		t.Errorf("Trending() = %+v, want [C(2) B]", hot)
	}
}

func TestFeedService_AnalyticsAndSave(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, _ = svc.RecordInteraction(ctx, "U", "A", core.InteractionLike, 1)
	_, _ = svc.RecordInteraction(ctx, "U", "A", core.InteractionShare, 1)
	_ = svc.SavePost(ctx, "U", "B")
	_ = svc.Users.SetInterests("U", []string{"beauty"})

	a, err := svc.Analytics(ctx, "U")
	if err != nil {
		t.Fatalf("Analytics() error = %v", err)
	}
	if a.TotalInteractions != 2 || a.ByKind["share"] != 1 || a.TotalSaved != 1 || a.TotalViews != 2 {
		t.Errorf("Analytics() = %+v", a)
	}
	if a.Interests["beauty"] != 1 {
		t.Errorf("Interests = %v", a.Interests)
	}

	if err := svc.SavePost(ctx, "ghost", "B"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("SavePost(ghost) error = %v", err)
	}
	if _, err := svc.Analytics(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Analytics(ghost) error = %v", err)
	}
}

func TestFeedService_RecordRejectsEmptyIDs(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.RecordInteraction(context.Background(), "", "A", core.InteractionLike, 1); !core.IsInvalidInput(err) {
		t.Errorf("RecordInteraction() error = %v, want INVALID_INPUT", err)
	}
}

func TestFeedService_AddContent(t *testing.T) {
	svc := newTestService(t)
	if err := svc.AddContent(&core.ContentItem{ID: "D"}); err != nil {
		t.Fatalf("AddContent() error = %v", err)
	}
	if _, ok := svc.Catalog.Get("D"); !ok {
		t.Error("D not in catalog")
	}
	if err := svc.AddContent(&core.ContentItem{}); !core.IsInvalidInput(err) {
		t.Errorf("AddContent(empty id) error = %v", err)
	}
}

func TestFeedService_Feedback(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	collector := feedback.NewMemoryCollector()
	svc.Feedback = collector

	if _, err := svc.RecordInteraction(ctx, "U", "A", core.InteractionLike, 1); err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}
	feed, err := svc.Feed(ctx, "U", 10, 0)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}

	events := collector.Events()
	if len(events) != 1+len(feed) {
		t.Fatalf("events = %d, want %d", len(events), 1+len(feed))
	}
	if events[0].Type != feedback.EventInteraction || events[0].ContentID != "A" {
		t.Errorf("events[0] = %+v", events[0])
	}
	for i, sc := range feed {
		ev := events[1+i]
		if ev.Type != feedback.EventImpression || ev.ContentID != sc.ID() || ev.Position != i {
			t.Errorf("impression %d = %+v, want %s", i, ev, sc.ID())
		}
	}
}

func TestFeedService_Blacklist(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if err := svc.BlockContent(ctx, "A"); !errors.Is(err, ErrBlacklistDisabled) {
		t.Fatalf("BlockContent() without key error = %v, want ErrBlacklistDisabled", err)
	}
	svc.BlacklistKey = "feed:blacklist"

	if err := svc.BlockContent(ctx, ""); !core.IsInvalidInput(err) {
		t.Errorf("BlockContent(\"\") error = %v, want INVALID_INPUT", err)
	}
	for _, id := range []string{"B", "C"} {
		if err := svc.BlockContent(ctx, id); err != nil {
			t.Fatalf("BlockContent(%s) error = %v", id, err)
		}
	}
	if err := svc.UnblockContent(ctx, "C"); err != nil {
		t.Fatalf("UnblockContent() error = %v", err)
	}
	if err := svc.UnblockContent(ctx, "missing"); err != nil {
		t.Errorf("UnblockContent(missing) error = %v, want nil", err)
	}

	list, err := svc.Blacklist(ctx)
	if err != nil {
		t.Fatalf("Blacklist() error = %v", err)
	}
	if len(list) != 1 || list[0].ContentID != "B" || list[0].BlockedAt.IsZero() {
		t.Errorf("Blacklist() = %+v, want [B]", list)
	}
	if _, err := svc.Store.ZScore(ctx, "feed:blacklist", "B"); err != nil {
		t.Errorf("blacklist member missing from store: %v", err)
	}
}

func TestFeedService_FeedDropsBlockedKeywords(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_ = svc.Catalog.Upsert(&core.ContentItem{ID: "B", Title: "平价口红试色", Category: core.CategoryBeauty, Likes: 90, Sentiment: core.Float(0.75)})

	if _, err := svc.RecordInteraction(ctx, "U", "A", core.InteractionLike, 1); err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}
	if err := svc.Users.AddBlockedKeyword("U", "口红"); err != nil {
		t.Fatalf("AddBlockedKeyword() error = %v", err)
	}

	feed, err := svc.Feed(ctx, "U", 5, 0)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	for _, sc := range feed {
		if sc.ID() == "B" {
			t.Errorf("feed = %v, want B dropped by blocked keyword", sc)
		}
	}
	if len(feed) == 0 {
		t.Error("feed is empty, want C served")
	}

	// 其他用户不受影响
	if _, err := svc.RecordInteraction(ctx, "V", "A", core.InteractionLike, 1); err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}
	feed, _ = svc.Feed(ctx, "V", 5, 0)
	if len(feed) == 0 || feed[0].ID() != "B" {
		t.Errorf("feed(V) = %v, want B first", feed)
	}
}
