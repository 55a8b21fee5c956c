package simulate

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rushteam/feedrec/catalog"
	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/engine"
	"github.com/rushteam/feedrec/ledger"
	"github.com/rushteam/feedrec/service"
)

type event struct {
	user, content string
	kind          core.InteractionKind
}

type fakeRecorder struct {
	events []event
	saves  []string
	err    error
}

func (f *fakeRecorder) RecordInteraction(_ context.Context, userID, contentID string, kind core.InteractionKind, _ float64) (core.Interaction, error) {
	if f.err != nil {
		return core.Interaction{}, f.err
	}
	f.events = append(f.events, event{userID, contentID, kind})
	return core.Interaction{UserID: userID, ContentID: contentID, Kind: kind}, nil
}

func (f *fakeRecorder) SavePost(_ context.Context, userID, contentID string) error {
	f.saves = append(f.saves, userID+"/"+contentID)
	return nil
}

func testCatalog() *catalog.MemoryCatalog {
	return catalog.NewMemoryCatalog(
		&core.ContentItem{ID: "lipstick", Category: core.CategoryBeauty, PriceBand: core.PriceBandMid},
		&core.ContentItem{ID: "coat", Category: core.CategoryFashion, PriceBand: core.PriceBandHigh},
		&core.ContentItem{ID: "phone", Category: core.CategoryTech, PriceBand: core.PriceBandLow},
		&core.ContentItem{ID: "yoga", Category: core.CategoryHealth, PriceBand: core.PriceBandLow},
		&core.ContentItem{ID: "sofa", Category: core.CategoryLifestyle},
	)
}

func TestPersona_Interest(t *testing.T) {
	personas := DefaultPersonas()
	urban, beauty, value := personas[0], personas[1], personas[2]

	tests := []struct {
		name    string
		persona Persona
		item    *core.ContentItem
		want    float64
	}{
		{"品类+价格带", urban, &core.ContentItem{Category: core.CategoryBeauty, PriceBand: core.PriceBandHigh}, 0.6},
		{"价格带不匹配", urban, &core.ContentItem{Category: core.CategoryBeauty, PriceBand: core.PriceBandLow}, 0.4},
		{"缺省品类与价格带", urban, &core.ContentItem{}, 0.5},
		{"未列出的品类", beauty, &core.ContentItem{Category: core.CategoryHealth, PriceBand: core.PriceBandHigh}, 0},
		{"低价数码", value, &core.ContentItem{Category: core.CategoryTech, PriceBand: core.PriceBandLow}, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.persona.Interest(tt.item)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Interest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimulator_Deterministic(t *testing.T) {
	run := func() *fakeRecorder {
		rec := &fakeRecorder{}
		sim := &Simulator{
			Personas: DefaultPersonas(),
			Catalog:  testCatalog(),
			Recorder: rec,
			Seed:     42,
			Logger:   zerolog.Nop(),
		}
		if _, err := sim.Run(context.Background(), 3); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		return rec
	}
	a, b := run(), run()
	if !reflect.DeepEqual(a.events, b.events) || !reflect.DeepEqual(a.saves, b.saves) {
		t.Error("same seed produced different interactions")
	}
}

func TestSimulator_ReportMatchesEvents(t *testing.T) {
	rec := &fakeRecorder{}
	sim := &Simulator{
		Personas: DefaultPersonas(),
		Catalog:  testCatalog(),
		Recorder: rec,
		Seed:     7,
		Logger:   zerolog.Nop(),
	}
	report, err := sim.Run(context.Background(), 5)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Rounds != 5 {
		t.Errorf("Rounds = %d, want 5", report.Rounds)
	}

	total := report.Views + report.Likes + report.Comments + report.Shares
	if total != len(rec.events) {
		t.Errorf("report total = %d, events = %d", total, len(rec.events))
	}
	if report.Saves != len(rec.saves) {
		t.Errorf("Saves = %d, saves recorded = %d", report.Saves, len(rec.saves))
	}

	// 每个非 view 行为之前必须有同一用户对同一内容的 view
	viewed := make(map[string]bool)
	for _, e := range rec.events {
		key := e.user + "/" + e.content
		if e.kind == core.InteractionView {
			viewed[key] = true
			continue
		}
		if !viewed[key] {
			t.Fatalf("%s on %s without a view", e.kind, key)
		}
	}

	// 兴趣为 0 的组合永远不会出现
	for _, e := range rec.events {
		if e.user == "persona-beauty-enthusiast" && e.content == "yoga" {
			t.Fatal("beauty persona interacted with yoga")
		}
	}
}

func TestSimulator_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	sim := &Simulator{
		Personas: DefaultPersonas(),
		Catalog:  testCatalog(),
		Recorder: &fakeRecorder{err: boom},
		Seed:     1,
		Logger:   zerolog.Nop(),
	}
	if _, err := sim.Run(context.Background(), 10); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want boom", err)
	}
}

func TestSimulator_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sim := &Simulator{
		Personas: DefaultPersonas(),
		Catalog:  testCatalog(),
		Recorder: &fakeRecorder{},
		Logger:   zerolog.Nop(),
	}
	report, err := sim.Run(ctx, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if report.Rounds != 0 {
		t.Errorf("Rounds = %d, want 0", report.Rounds)
	}
}

func TestSimulator_DrivesFeedService(t *testing.T) {
	ctx := context.Background()
	cat := testCatalog()
	users := service.NewUserManager(zerolog.Nop())
	svc := service.NewFeedService(engine.New(ledger.NewMemoryLedger()), users, cat, nil, zerolog.Nop())

	sim := &Simulator{
		Personas: DefaultPersonas(),
		Catalog:  cat,
		Recorder: svc,
		Seed:     2024,
		Logger:   zerolog.Nop(),
	}
	if err := sim.Register(users); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	// 重复注册不报错
	if err := sim.Register(users); err != nil {
		t.Fatalf("second Register() error = %v", err)
	}

	report, err := sim.Run(ctx, 4)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Views == 0 {
		t.Fatal("no views generated")
	}

	recorded := 0
	for _, p := range sim.Personas {
		history, err := svc.Engine.Ledger().InteractionsFor(ctx, p.ID)
		if err != nil {
			t.Fatalf("InteractionsFor(%s) error = %v", p.ID, err)
		}
		recorded += len(history)
	}
	if want := report.Views + report.Likes + report.Comments + report.Shares; recorded != want {
		t.Errorf("ledger has %d interactions, report says %d", recorded, want)
	}
}
