package recall

import (
	"math"
	"testing"
)

func set(ids ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{name: "self", a: []float64{1, 2, 3}, b: []float64{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, want: 0},
		{name: "opposite", a: []float64{1, 2}, b: []float64{-1, -2}, want: -1},
		{name: "zero norm", a: []float64{0, 0}, b: []float64{1, 1}, want: 0},
		{name: "length mismatch", a: []float64{1}, b: []float64{1, 2}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
			if rev := CosineSimilarity(tt.b, tt.a); rev != got {
				t.Errorf("not symmetric: %v vs %v", got, rev)
			}
			if got < -1 || got > 1 {
				t.Errorf("out of bounds: %v", got)
			}
		})
	}
}

func TestCosineSimilarity_Overflow(t *testing.T) {
	big := math.MaxFloat64
	if got := CosineSimilarity([]float64{big, big}, []float64{big, big}); got != 0 {
		t.Errorf("CosineSimilarity(overflow) = %v, want 0", got)
	}
}

func TestJaccardSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b map[string]struct{}
		want float64
	}{
		{name: "three of five", a: set("a", "b", "c", "d"), b: set("a", "b", "c", "e"), want: 0.6},
		{name: "identical", a: set("a"), b: set("a"), want: 1},
		{name: "disjoint", a: set("a"), b: set("b"), want: 0},
		{name: "one empty", a: set(), b: set("a"), want: 0},
		{name: "both empty", a: nil, b: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JaccardSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("JaccardSimilarity() = %v, want %v", got, tt.want)
			}
			if rev := JaccardSimilarity(tt.b, tt.a); rev != got {
				t.Errorf("not symmetric: %v vs %v", got, rev)
			}
		})
	}
}
