package feed

import "math/rand"

// SampleWithoutReplacement draws up to k items from items with probability
// proportional to the corresponding weight. Negative weights are treated as
// zero. When weights is nil, or every weight is zero, it draws uniformly.
// It never returns more than len(items) elements and never fails: an
// oversized k is clamped to the population size.
func SampleWithoutReplacement[T any](rng *rand.Rand, items []T, weights []float64, k int) []T {
	if k <= 0 || len(items) == 0 {
		return nil
	}
	if k > len(items) {
		k = len(items)
	}

	if !hasPositiveWeight(weights) {
		return uniformSample(rng, items, k)
	}

	pool := make([]T, len(items))
	copy(pool, items)
	poolWeights := make([]float64, len(weights))
	copy(poolWeights, weights)

	chosen := make([]T, 0, k)
	for len(chosen) < k {
		total := 0.0
		for _, w := range poolWeights {
			if w > 0 {
				total += w
			}
		}
		if total <= 0 {
			// remaining items all have zero weight, finish uniformly
			chosen = append(chosen, uniformSample(rng, pool, k-len(chosen))...)
			break
		}

		pick := rng.Float64() * total
		acc := 0.0
		for i, w := range poolWeights {
			if w <= 0 {
				continue
			}
			acc += w
			if pick <= acc {
				chosen = append(chosen, pool[i])
				pool = append(pool[:i], pool[i+1:]...)
				poolWeights = append(poolWeights[:i], poolWeights[i+1:]...)
				break
			}
		}
	}

	return chosen
}

func hasPositiveWeight(weights []float64) bool {
	for _, w := range weights {
		if w > 0 {
			return true
		}
	}
	return false
}

func uniformSample[T any](rng *rand.Rand, items []T, k int) []T {
	if k <= 0 || len(items) == 0 {
		return nil
	}
	if k > len(items) {
		k = len(items)
	}

	// partial Fisher-Yates over a copy
	pool := make([]T, len(items))
	copy(pool, items)
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return pool[:k]
}
