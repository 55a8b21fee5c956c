package dsl

import (
	"testing"

	"github.com/rushteam/feedrec/core"
	"github.com/rushteam/feedrec/pkg/utils"
)

func candidate() *core.ScoredCandidate {
	sc := core.NewScoredCandidate(&core.ContentItem{
		ID:        "p1",
		Likes:     120,
		Comments:  8,
		Category:  core.CategoryBeauty,
		Sentiment: core.Float(0.8),
		PriceBand: 1,
	}, 0.72, core.MethodContentBased)
	sc.AddMethod(core.MethodCollaborative)
	sc.PutLabel(utils.LabelRecallSource, utils.Label{Value: "content", Source: "recall"})
	return sc
}

func TestProgram_Evaluate(t *testing.T) {
	rctx := core.NewRecommendContext("u1", nil)
	rctx.Scene = "home"

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{name: "score", expr: `item.score >= 0.5`, want: true},
		{name: "int vs double", expr: `item.likes > 100.0`, want: true},
		{name: "category", expr: `item.category == "beauty" && item.price_band <= 2`, want: true},
		{name: "category list", expr: `item.category in ["tech", "health"]`, want: false},
		{name: "methods", expr: `"collaborative" in item.methods`, want: true},
		{name: "label", expr: `label.recall_source == "content"`, want: true},
		{name: "label presence", expr: `"fusion" in label`, want: false},
		{name: "rctx", expr: `rctx.user_id == "u1" && rctx.scene == "home"`, want: true},
		{name: "engagement", expr: `item.engagement == 128`, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			got, err := p.Evaluate(candidate(), rctx)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%s) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	for _, expr := range []string{`item.score >`, `1 + 2`} {
		if _, err := Compile(expr); err == nil {
			t.Errorf("Compile(%q) expected error", expr)
		}
	}
}

func TestEvaluate_EmptyAndMissingLabel(t *testing.T) {
	ok, err := Evaluate("", candidate(), nil)
	if err != nil || !ok {
		t.Errorf("Evaluate(empty) = %v, %v, want true", ok, err)
	}
	if _, err := Evaluate(`label.missing == "x"`, candidate(), nil); err == nil {
		t.Error("Evaluate(missing label) expected error")
	}
}
