package feed

import (
	"math"
	"sort"
	"time"

	"github.com/lcharvet/fotoblog/internal/models"
)

// Bucket names a category of feed content with its own quota and
// membership predicate.
type Bucket int

const (
	BucketFollowed Bucket = iota
	BucketUltraNew
	BucketPopular
	BucketCreatorDiscovery
	BucketBlogs
	BucketRandom

	bucketCount
)

// bucketOrder is the fixed selection priority: followed content must not be
// crowded out by later buckets claiming the same items, and the random
// catch-all goes last so it only fills what the others left over.
var bucketOrder = [bucketCount]Bucket{
	BucketFollowed,
	BucketUltraNew,
	BucketPopular,
	BucketCreatorDiscovery,
	BucketBlogs,
	BucketRandom,
}

func (b Bucket) String() string {
	switch b {
	case BucketFollowed:
		return "followed"
	case BucketUltraNew:
		return "ultra_new"
	case BucketPopular:
		return "popular"
	case BucketCreatorDiscovery:
		return "creator_discovery"
	case BucketBlogs:
		return "blogs"
	case BucketRandom:
		return "random"
	default:
		return "unknown"
	}
}

// normalizePercentages scales the per-bucket percentages so they sum to
// exactly 100. A zero sum is left unchanged.
func normalizePercentages(pct [bucketCount]float64) [bucketCount]float64 {
	total := 0.0
	for _, p := range pct {
		total += p
	}
	if total == 0 {
		return pct
	}

	factor := 100.0 / total
	for i := range pct {
		pct[i] *= factor
	}
	return pct
}

// classify assigns every candidate to zero or more buckets. The predicates
// are independent: one item can sit in several pools at once, and the
// random pool holds everything. Cross-bucket duplication is prevented at
// selection time, not here.
func classify(candidates []models.ContentItem, profile ViewerProfile, stats map[string]OwnerStats, now time.Time, cfg Config) [bucketCount][]models.ContentItem {
	var pools [bucketCount][]models.ContentItem

	for _, c := range candidates {
		ownerID := c.OwnerID()
		_, followed := profile.FollowedOwnerIDs[ownerID]

		if followed {
			pools[BucketFollowed] = append(pools[BucketFollowed], c)
		}
		if now.Sub(c.CreatedTime()) <= cfg.UltraNewWindow {
			pools[BucketUltraNew] = append(pools[BucketUltraNew], c)
		}
		if c.Engagement() >= cfg.PopularityThreshold {
			pools[BucketPopular] = append(pools[BucketPopular], c)
		}
		if !followed && stats[ownerID].IsCreator {
			pools[BucketCreatorDiscovery] = append(pools[BucketCreatorDiscovery], c)
		}
		if c.ContentRef().Kind == models.KindBlog {
			pools[BucketBlogs] = append(pools[BucketBlogs], c)
		}
		pools[BucketRandom] = append(pools[BucketRandom], c)
	}

	return pools
}

// quotas converts normalized percentages into integer per-bucket quotas
// summing to exactly limit. Rounding drift is redistributed one unit at a
// time across buckets ordered by descending quota, ties broken by bucket
// priority, never taking a quota below zero.
func quotas(limit int, pct [bucketCount]float64) [bucketCount]int {
	var counts [bucketCount]int
	sum := 0
	for i, p := range pct {
		counts[i] = int(math.Round(float64(limit) * p / 100.0))
		sum += counts[i]
	}
	if sum == limit {
		return counts
	}

	order := make([]int, bucketCount)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})

	diff := limit - sum
	for i := 0; diff != 0; i++ {
		idx := order[i%len(order)]
		if diff > 0 {
			counts[idx]++
			diff--
		} else if counts[idx] > 0 {
			counts[idx]--
			diff++
		}
	}

	return counts
}
