package services

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 0, 0}, []float64{1, 0, 0}, 1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"partial", []float64{0.6, 0.8}, []float64{1, 0}, 0.6},
		{"mismatched lengths", []float64{1, 0, 0}, []float64{1}, 1.0},
		{"empty", nil, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity(%v, %v) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestNormalizeVector(t *testing.T) {
	v := normalizeVector([]float64{3, 4})
	if math.Abs(v[0]-0.6) > 1e-9 || math.Abs(v[1]-0.8) > 1e-9 {
		t.Errorf("normalizeVector([3 4]) = %v, want [0.6 0.8]", v)
	}

	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if math.Abs(norm-1.0) > 1e-9 {
		t.Errorf("normalized vector has squared norm %f, want 1", norm)
	}

	zero := normalizeVector([]float64{0, 0, 0})
	for _, x := range zero {
		if x != 0 {
			t.Errorf("zero vector changed by normalization: %v", zero)
		}
	}
}

func TestTopKOrdering(t *testing.T) {
	query := []float64{1, 0}
	candidates := [][]float64{
		{0, 1},           // 0.0
		{1, 0},           // 1.0
		{0.7071, 0.7071}, // ~0.71
	}

	top := TopK(query, candidates, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 results, got %d", len(top))
	}
	if top[0].Index != 1 || top[1].Index != 2 {
		t.Errorf("expected indices [1 2], got [%d %d]", top[0].Index, top[1].Index)
	}
	if top[0].Score < top[1].Score {
		t.Errorf("results not in descending order: %v", top)
	}
}

func TestTopKStableTies(t *testing.T) {
	query := []float64{1, 0}
	candidates := [][]float64{
		{1, 0},
		{1, 0},
		{1, 0},
	}

	top := TopK(query, candidates, 3)
	for i, s := range top {
		if s.Index != i {
			t.Errorf("tied candidates reordered: position %d holds index %d", i, s.Index)
		}
	}
}

func TestTopKClampsK(t *testing.T) {
	query := []float64{1}
	candidates := [][]float64{{1}, {0.5}}

	if got := TopK(query, candidates, 10); len(got) != 2 {
		t.Errorf("expected k clamped to 2, got %d results", len(got))
	}
	if got := TopK(query, candidates, 0); got != nil {
		t.Errorf("expected nil for k=0, got %v", got)
	}
	if got := TopK(query, nil, 5); got != nil {
		t.Errorf("expected nil for no candidates, got %v", got)
	}
}
