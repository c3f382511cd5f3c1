package feed

import (
	"math/rand"
	"testing"
)

func TestSampleWithoutReplacementClampsToPopulation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	items := []string{"a", "b", "c"}

	got := SampleWithoutReplacement(rng, items, nil, 10)
	if len(got) != 3 {
		t.Errorf("Expected sample clamped to population size 3, got %d", len(got))
	}
}

func TestSampleWithoutReplacementZeroK(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if got := SampleWithoutReplacement(rng, []string{"a"}, nil, 0); got != nil {
		t.Errorf("Expected nil for k=0, got %v", got)
	}
	if got := SampleWithoutReplacement[string](rng, nil, nil, 5); got != nil {
		t.Errorf("Expected nil for empty population, got %v", got)
	}
}

func TestSampleWithoutReplacementNoDuplicates(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	got := SampleWithoutReplacement(rng, items, nil, 20)
	if len(got) != 20 {
		t.Fatalf("Expected 20 items, got %d", len(got))
	}
	seen := make(map[int]struct{})
	for _, v := range got {
		if _, dup := seen[v]; dup {
			t.Errorf("Item %d sampled twice", v)
		}
		seen[v] = struct{}{}
	}
}

func TestSampleWithoutReplacementUniformWhenWeightsZero(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	items := []string{"a", "b", "c", "d"}
	weights := []float64{0, 0, 0, 0}

	got := SampleWithoutReplacement(rng, items, weights, 2)
	if len(got) != 2 {
		t.Errorf("Expected uniform fallback to return 2 items, got %d", len(got))
	}
	if got[0] == got[1] {
		t.Errorf("Uniform fallback sampled %q twice", got[0])
	}
}

func TestSampleWithoutReplacementFollowsWeights(t *testing.T) {
	items := []string{"light", "heavy"}
	weights := []float64{0.000001, 1000000}

	// the heavy item should dominate across many draws of one
	heavy := 0
	for seed := int64(0); seed < 100; seed++ {
		rng := rand.New(rand.NewSource(seed))
		got := SampleWithoutReplacement(rng, items, weights, 1)
		if len(got) != 1 {
			t.Fatalf("Expected 1 item, got %d", len(got))
		}
		if got[0] == "heavy" {
			heavy++
		}
	}
	if heavy < 99 {
		t.Errorf("Heavy item drawn only %d/100 times", heavy)
	}
}

func TestSampleWithoutReplacementNegativeWeightsIgnored(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	items := []string{"a", "b", "c"}
	weights := []float64{-1, 5, -3}

	got := SampleWithoutReplacement(rng, items, weights, 1)
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("Expected only positively weighted item, got %v", got)
	}
}

func TestSampleWithoutReplacementExhaustsPositiveThenUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	items := []string{"a", "b", "c", "d"}
	weights := []float64{4, 0, 0, 0}

	got := SampleWithoutReplacement(rng, items, weights, 3)
	if len(got) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(got))
	}
	seen := make(map[string]struct{})
	for _, v := range got {
		seen[v] = struct{}{}
	}
	if _, ok := seen["a"]; !ok {
		t.Error("Sole positively weighted item should always be drawn")
	}
	if len(seen) != 3 {
		t.Error("Zero-weight fill drew duplicates")
	}
}

func TestUniformSampleKeepsSourceIntact(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	items := []string{"a", "b", "c", "d", "e"}

	_ = uniformSample(rng, items, 3)
	want := []string{"a", "b", "c", "d", "e"}
	for i, v := range items {
		if v != want[i] {
			t.Fatalf("Source slice mutated: %v", items)
		}
	}
}
