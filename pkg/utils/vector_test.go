package utils

import (
	"math"
	"testing"
)

func TestDotProduct(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, expected: 0},
		{name: "parallel", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, expected: 14},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-2, 0}, expected: -2},
		{name: "length mismatch", a: []float32{1, 2}, b: []float32{1}, expected: 0},
		{name: "empty", a: nil, b: nil, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DotProduct(tt.a, tt.b); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("DotProduct(%v, %v) = %v, expected %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestDotProductOfUnitVectorsIsBounded(t *testing.T) {
	t.Parallel()
	a := Normalize([]float32{3, 1, 2})
	b := Normalize([]float32{1, 5, 0.5})

	if dot := DotProduct(a, a); math.Abs(dot-1) > 1e-6 {
		t.Errorf("self dot of unit vector = %v, expected 1", dot)
	}
	if dot := DotProduct(a, b); dot < -1-1e-6 || dot > 1+1e-6 {
		t.Errorf("dot of unit vectors %v outside [-1, 1]", dot)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	t.Run("normalize non-unit vector", func(t *testing.T) {
		result := Normalize([]float32{3, 4})
		if result == nil {
			t.Fatal("expected non-nil result")
		}
		if math.Abs(float64(result[0])-0.6) > 1e-6 || math.Abs(float64(result[1])-0.8) > 1e-6 {
			t.Errorf("expected [0.6, 0.8], got %v", result)
		}
		if mag := Magnitude(result); math.Abs(mag-1.0) > 1e-6 {
			t.Errorf("expected magnitude 1.0, got %v", mag)
		}
	})

	t.Run("normalize zero vector", func(t *testing.T) {
		if result := Normalize([]float32{0, 0, 0}); result != nil {
			t.Errorf("expected nil for zero vector, got %v", result)
		}
	})

	t.Run("normalize empty vector", func(t *testing.T) {
		if result := Normalize([]float32{}); result != nil {
			t.Errorf("expected nil for empty vector, got %v", result)
		}
	})
}

func TestTopKByScore(t *testing.T) {
	t.Parallel()
	t.Run("basic top k", func(t *testing.T) {
		items := []ScoredItem[string]{
			{Item: "a", Score: 0.5},
			{Item: "b", Score: 0.9},
			{Item: "c", Score: 0.3},
			{Item: "d", Score: 0.7},
			{Item: "e", Score: 0.1},
		}

		result := TopKByScore(items, 3)
		if len(result) != 3 {
			t.Fatalf("expected 3 items, got %d", len(result))
		}
		want := []string{"b", "d", "a"}
		for i, w := range want {
			if result[i].Item != w {
				t.Errorf("position %d: expected %s, got %v", i, w, result[i])
			}
		}
	})

	t.Run("k greater than length", func(t *testing.T) {
		items := []ScoredItem[int]{
			{Item: 1, Score: 0.5},
			{Item: 2, Score: 0.9},
		}

		result := TopKByScore(items, 10)
		if len(result) != 2 {
			t.Fatalf("expected 2 items, got %d", len(result))
		}
		if result[0].Item != 2 {
			t.Errorf("expected item 2 first, got %v", result[0])
		}
	})

	t.Run("k is zero", func(t *testing.T) {
		if result := TopKByScore([]ScoredItem[int]{{Item: 1, Score: 0.5}}, 0); result != nil {
			t.Errorf("expected nil for k=0, got %v", result)
		}
	})

	t.Run("empty items", func(t *testing.T) {
		if result := TopKByScore([]ScoredItem[int]{}, 5); result != nil {
			t.Errorf("expected nil for empty items, got %v", result)
		}
	})

	t.Run("ties keep input order", func(t *testing.T) {
		items := []ScoredItem[int]{
			{Item: 1, Score: 0.5},
			{Item: 2, Score: 0.5},
			{Item: 3, Score: 0.9},
			{Item: 4, Score: 0.5},
		}

		result := TopKByScore(items, 4)
		want := []int{3, 1, 2, 4}
		for i, w := range want {
			if result[i].Item != w {
				t.Fatalf("expected order %v, got %v", want, result)
			}
		}
	})

	t.Run("nan sorts last", func(t *testing.T) {
		items := []ScoredItem[string]{
			{Item: "nan", Score: math.NaN()},
			{Item: "low", Score: -0.2},
			{Item: "high", Score: 0.4},
		}

		result := TopKByScore(items, 3)
		if result[0].Item != "high" || result[1].Item != "low" || result[2].Item != "nan" {
			t.Errorf("unexpected order %v", result)
		}
	})

	t.Run("input is not modified", func(t *testing.T) {
		items := []ScoredItem[string]{
			{Item: "x", Score: 0.1},
			{Item: "y", Score: 0.9},
		}
		_ = TopKByScore(items, 1)
		if items[0].Item != "x" || items[1].Item != "y" {
			t.Errorf("input reordered: %v", items)
		}
	})
}

func BenchmarkTopKByScore(b *testing.B) {
	items := make([]ScoredItem[int], 2000)
	for i := range items {
		items[i] = ScoredItem[int]{Item: i, Score: math.Sin(float64(i))}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		TopKByScore(items, 50)
	}
}
