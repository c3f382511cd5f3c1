package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/lcharvet/fotoblog/internal/logging"
	"github.com/lcharvet/fotoblog/internal/models"
)

// PhotoSource provides the photo slices the gatherer and the fallback path
// read from.
type PhotoSource interface {
	RecentSince(ctx context.Context, cutoff time.Time, limit int) ([]*models.Photo, error)
	TopLiked(ctx context.Context, limit int) ([]*models.Photo, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Photo, error)
}

// BlogSource provides the blog slices the gatherer reads from. A nil
// BlogSource disables blog content entirely.
type BlogSource interface {
	RecentSince(ctx context.Context, cutoff time.Time, limit int) ([]*models.Blog, error)
	TopLiked(ctx context.Context, limit int) ([]*models.Blog, error)
}

// EngagementSource provides bulk per-owner aggregates and the viewer's
// like and view history.
type EngagementSource interface {
	OwnerLikesReceived(ctx context.Context, ownerIDs []string) (map[string]int, error)
	OwnerPhotoCounts(ctx context.Context, ownerIDs []string) (map[string]int, error)
	OwnerBlogCounts(ctx context.Context, ownerIDs []string) (map[string]int, error)
	OwnerRecentContentCounts(ctx context.Context, ownerIDs []string, cutoff time.Time) (map[string]int, error)
	LikedIDs(ctx context.Context, kind models.ContentKind, userID string) (map[string]struct{}, error)
	ViewedIDs(ctx context.Context, kind models.ContentKind, userID string) (map[string]struct{}, error)
}

// FollowSource provides the viewer's follow set.
type FollowSource interface {
	FollowedUserIDs(ctx context.Context, userID string) (map[string]struct{}, error)
}

// WeightFunc scores a candidate for weighted sampling. A nil WeightFunc
// means uniform sampling.
type WeightFunc func(item models.ContentItem, owner OwnerStats) float64

// Config carries the tunable knobs of the feed composer.
type Config struct {
	FollowedPercent         float64
	UltraNewPercent         float64
	PopularPercent          float64
	CreatorDiscoveryPercent float64
	BlogsPercent            float64
	RandomPercent           float64

	CandidateRecentDays int
	CandidateTopLiked   int
	CandidateMax        int
	UltraNewWindow      time.Duration
	PopularityThreshold int

	// AllowViewedIfInsufficient lets already-seen items fill a quota when a
	// bucket runs out of unseen ones.
	AllowViewedIfInsufficient bool

	// Weight, when set, biases per-bucket sampling instead of drawing
	// uniformly.
	Weight WeightFunc
}

// DefaultConfig returns the production composition settings.
func DefaultConfig() Config {
	return Config{
		FollowedPercent:           35,
		UltraNewPercent:           15,
		PopularPercent:            15,
		CreatorDiscoveryPercent:   10,
		BlogsPercent:              10,
		RandomPercent:             15,
		CandidateRecentDays:       30,
		CandidateTopLiked:         200,
		CandidateMax:              500,
		UltraNewWindow:            48 * time.Hour,
		PopularityThreshold:       10,
		AllowViewedIfInsufficient: true,
	}
}

func (c Config) percentages() [bucketCount]float64 {
	return [bucketCount]float64{
		BucketFollowed:         c.FollowedPercent,
		BucketUltraNew:         c.UltraNewPercent,
		BucketPopular:          c.PopularPercent,
		BucketCreatorDiscovery: c.CreatorDiscoveryPercent,
		BucketBlogs:            c.BlogsPercent,
		BucketRandom:           c.RandomPercent,
	}
}

// Service assembles personalized home feeds. Each request is an independent
// read-and-compute pass; the service holds no per-viewer state.
type Service struct {
	photos     PhotoSource
	blogs      BlogSource
	engagement EngagementSource
	follows    FollowSource
	config     Config
	logger     *logging.Logger
	newRNG     func() *rand.Rand
}

// NewService creates a feed service with a time-seeded random source.
func NewService(photos PhotoSource, blogs BlogSource, engagement EngagementSource, follows FollowSource, config Config, logger *logging.Logger) *Service {
	return NewServiceWithRNG(photos, blogs, engagement, follows, config, logger, func() *rand.Rand {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	})
}

// NewServiceWithRNG creates a feed service with an explicit random source
// factory. The factory is invoked once per request.
func NewServiceWithRNG(photos PhotoSource, blogs BlogSource, engagement EngagementSource, follows FollowSource, config Config, logger *logging.Logger, newRNG func() *rand.Rand) *Service {
	return &Service{
		photos:     photos,
		blogs:      blogs,
		engagement: engagement,
		follows:    follows,
		config:     config,
		logger:     logger,
		newRNG:     newRNG,
	}
}

// Compose builds a feed of up to limit content items for the given viewer.
// An empty viewerID composes an anonymous feed. The returned profile lets
// callers annotate items with viewer-specific flags.
func (s *Service) Compose(ctx context.Context, viewerID string, limit int) ([]models.ContentItem, ViewerProfile, error) {
	profile := emptyProfile()
	if limit <= 0 {
		return nil, profile, nil
	}

	now := time.Now()

	pool, err := s.gatherCandidates(ctx, now)
	if err != nil {
		return nil, profile, err
	}
	if len(pool.items) == 0 {
		items, err := s.fallbackRecentPhotos(ctx, limit)
		return items, profile, err
	}

	stats := s.buildOwnerStats(ctx, now, pool.items)
	profile = s.loadViewerProfile(ctx, viewerID)

	pools := classify(pool.items, profile, stats, now, s.config)
	counts := quotas(limit, normalizePercentages(s.config.percentages()))

	rng := s.newRNG()
	sel := &selection{
		rng:       rng,
		viewed:    profile.ViewedRefs,
		chosen:    make(map[models.ContentRef]struct{}),
		weigh:     s.config.Weight,
		stats:     stats,
		allowSeen: s.config.AllowViewedIfInsufficient,
	}

	for _, b := range bucketOrder {
		sel.takeFromPool(pools[b], counts[b])
	}

	// top up any shortfall from the whole pool, unseen first
	if len(sel.items) < limit {
		sel.takeFromPool(pool.items, limit-len(sel.items))
	}

	rng.Shuffle(len(sel.items), func(i, j int) {
		sel.items[i], sel.items[j] = sel.items[j], sel.items[i]
	})
	if len(sel.items) > limit {
		sel.items = sel.items[:limit]
	}

	return sel.items, profile, nil
}

// HomeFeed composes a feed and flattens it into the API response shape,
// annotating each item with whether the viewer has liked it.
func (s *Service) HomeFeed(ctx context.Context, viewerID string, limit int) (*models.FeedResponse, error) {
	items, profile, err := s.Compose(ctx, viewerID, limit)
	if err != nil {
		return nil, err
	}

	feedItems := make([]models.FeedItem, 0, len(items))
	for _, item := range items {
		fi := models.NewFeedItem(item)
		fi.Liked = profile.Liked(item.ContentRef())
		feedItems = append(feedItems, fi)
	}

	return &models.FeedResponse{
		Items: feedItems,
		Count: len(feedItems),
	}, nil
}

func (s *Service) fallbackRecentPhotos(ctx context.Context, limit int) ([]models.ContentItem, error) {
	photos, err := s.photos.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	items := make([]models.ContentItem, 0, len(photos))
	for _, p := range photos {
		items = append(items, p)
	}
	return items, nil
}

// selection accumulates chosen items across buckets, enforcing the global
// no-duplicates rule and the unseen-before-seen preference.
type selection struct {
	rng       *rand.Rand
	viewed    map[models.ContentRef]struct{}
	chosen    map[models.ContentRef]struct{}
	weigh     WeightFunc
	stats     map[string]OwnerStats
	allowSeen bool
	items     []models.ContentItem
}

// takeFromPool draws up to need items from pool, skipping anything already
// chosen. Unseen items are drawn first; seen items fill the remainder only
// when allowed.
func (s *selection) takeFromPool(pool []models.ContentItem, need int) {
	if need <= 0 || len(pool) == 0 {
		return
	}

	var unseen, seen []models.ContentItem
	for _, c := range pool {
		ref := c.ContentRef()
		if _, ok := s.chosen[ref]; ok {
			continue
		}
		if _, ok := s.viewed[ref]; ok {
			seen = append(seen, c)
		} else {
			unseen = append(unseen, c)
		}
	}

	picked := SampleWithoutReplacement(s.rng, unseen, s.weights(unseen), need)
	if len(picked) < need && s.allowSeen {
		picked = append(picked, SampleWithoutReplacement(s.rng, seen, s.weights(seen), need-len(picked))...)
	}

	for _, c := range picked {
		s.items = append(s.items, c)
		s.chosen[c.ContentRef()] = struct{}{}
	}
}

func (s *selection) weights(items []models.ContentItem) []float64 {
	if s.weigh == nil || len(items) == 0 {
		return nil
	}

	weights := make([]float64, len(items))
	for i, c := range items {
		weights[i] = s.weigh(c, s.stats[c.OwnerID()])
	}
	return weights
}
