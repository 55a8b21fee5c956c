package builders

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/rushteam/feedrec/config"
	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/pipeline"
	"github.com/rushteam/feedrec/store"
)

func TestRegisteredTypes(t *testing.T) {
	want := []string{"filter.blacklist", "filter.expr", "filter.min_score", "rerank.diversity", "rerank.topn"}
	got := config.SupportedTypes()
	for _, typ := range want {
		if !slices.Contains(got, typ) {
			t.Errorf("SupportedTypes() = %v, missing %s", got, typ)
		}
	}
}

func TestBuildStages(t *testing.T) {
	stages := []pipeline.NodeConfig{
		{Type: "filter.expr", Config: map[string]any{"expr": "item.likes >= 10"}},
		{Type: "filter.blacklist", Config: map[string]any{"content_ids": []any{"e"}}},
		{Type: "rerank.diversity", Config: map[string]any{"max_per_category": 1}},
		{Type: "rerank.topn", Config: map[string]any{"n": float64(2)}},
	}
	if err := config.ValidateStages(stages); err != nil {
		t.Fatalf("ValidateStages() error = %v", err)
	}
	nodes, err := config.DefaultFactory().BuildNodes(stages)
	if err != nil {
		t.Fatalf("BuildNodes() error = %v", err)
	}

	items := []*core.ScoredCandidate{
		core.NewScoredCandidate(&core.ContentItem{ID: "a", Category: core.CategoryBeauty, Likes: 50}, 0.9, core.MethodContentBased),
		core.NewScoredCandidate(&core.ContentItem{ID: "b", Category: core.CategoryBeauty, Likes: 40}, 0.8, core.MethodContentBased),
		core.NewScoredCandidate(&core.ContentItem{ID: "c", Category: core.CategoryTech, Likes: 1}, 0.7, core.MethodContentBased),
		core.NewScoredCandidate(&core.ContentItem{ID: "d", Category: core.CategoryTech, Likes: 30}, 0.6, core.MethodContentBased),
		core.NewScoredCandidate(&core.ContentItem{ID: "e", Category: core.CategoryHealth, Likes: 20}, 0.5, core.MethodContentBased),
	}
	out, err := (&pipeline.Pipeline{Nodes: nodes}).Run(context.Background(), core.NewRecommendContext("u", nil), items)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	var ids []string
	for _, sc := range out {
		ids = append(ids, sc.ID())
	}
	// c 被表达式过滤，b 被品类打散移除，最后截断到 2 个
	if want := []string{"a", "d"}; !slices.Equal(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		stage   pipeline.NodeConfig
		wantErr string
	}{
		{"缺少表达式", pipeline.NodeConfig{Type: "filter.expr"}, "expr not found"},
		{"表达式非法", pipeline.NodeConfig{Type: "filter.expr", Config: map[string]any{"expr": "item.likes >"}}, "filter.expr"},
		{"黑名单为空", pipeline.NodeConfig{Type: "filter.blacklist"}, "content_ids not found"},
		{"负的 n", pipeline.NodeConfig{Type: "rerank.topn", Config: map[string]any{"n": -1}}, "n must be >= 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.DefaultFactory().Build(tt.stage.Type, tt.stage.Config)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Build() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStages_Unsupported(t *testing.T) {
	err := config.ValidateStages([]pipeline.NodeConfig{{Type: "rank.lr"}})
	if err == nil || !strings.Contains(err.Error(), "unsupported node type") {
		t.Errorf("ValidateStages() error = %v", err)
	}
	if err := config.ValidateStages([]pipeline.NodeConfig{{}}); err == nil {
		t.Error("ValidateStages(empty type) error = nil")
	}
}

func TestNewStoreBlacklistNode(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()
	_ = kv.ZAdd(ctx, "feed:blacklist", 1, "b")

	node := NewStoreBlacklistNode(kv, "feed:blacklist")
	items := []*core.ScoredCandidate{
		core.NewScoredCandidate(&core.ContentItem{ID: "a"}, 0.9, core.MethodContentBased),
		core.NewScoredCandidate(&core.ContentItem{ID: "b"}, 0.8, core.MethodContentBased),
	}
	out, err := node.Process(ctx, core.NewRecommendContext("u", nil), items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 1 || out[0].ID() != "a" {
		t.Errorf("out = %v, want [a]", out)
	}
}
