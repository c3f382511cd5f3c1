package feed

import (
	"context"
	"time"

	"github.com/lcharvet/fotoblog/internal/models"
)

// candidatePool holds the deduplicated candidates for one feed request.
// Items keep their insertion order so sampling stays reproducible for a
// fixed random seed.
type candidatePool struct {
	items   []models.ContentItem
	refs    map[models.ContentRef]struct{}
	maxSize int
}

func newCandidatePool(maxSize int) *candidatePool {
	return &candidatePool{
		refs:    make(map[models.ContentRef]struct{}),
		maxSize: maxSize,
	}
}

// add inserts an item unless its (kind, id) pair is already present or the
// pool is full. First occurrence wins; existing entries are never evicted.
func (p *candidatePool) add(item models.ContentItem) {
	ref := item.ContentRef()
	if _, ok := p.refs[ref]; ok {
		return
	}
	if len(p.items) >= p.maxSize {
		return
	}
	p.refs[ref] = struct{}{}
	p.items = append(p.items, item)
}

// gatherCandidates pulls bounded slices from the content sources and merges
// them: ultra-new, then recent, then top-liked, photos before blogs. A nil
// blog source is skipped without error. Store failures propagate; gathering
// is the one stage that cannot degrade, there is nothing to rank without it.
func (s *Service) gatherCandidates(ctx context.Context, now time.Time) (*candidatePool, error) {
	pool := newCandidatePool(s.config.CandidateMax)

	ultraNewCutoff := now.Add(-s.config.UltraNewWindow)
	recentCutoff := now.AddDate(0, 0, -s.config.CandidateRecentDays)

	ultraNew, err := s.photos.RecentSince(ctx, ultraNewCutoff, s.config.CandidateMax)
	if err != nil {
		return nil, err
	}
	recent, err := s.photos.RecentSince(ctx, recentCutoff, s.config.CandidateMax)
	if err != nil {
		return nil, err
	}
	topLiked, err := s.photos.TopLiked(ctx, s.config.CandidateTopLiked)
	if err != nil {
		return nil, err
	}
	for _, batch := range [][]*models.Photo{ultraNew, recent, topLiked} {
		for _, photo := range batch {
			pool.add(photo)
		}
	}

	if s.blogs != nil {
		ultraNewBlogs, err := s.blogs.RecentSince(ctx, ultraNewCutoff, s.config.CandidateMax)
		if err != nil {
			return nil, err
		}
		recentBlogs, err := s.blogs.RecentSince(ctx, recentCutoff, s.config.CandidateMax)
		if err != nil {
			return nil, err
		}
		topBlogs, err := s.blogs.TopLiked(ctx, s.config.CandidateTopLiked)
		if err != nil {
			return nil, err
		}
		for _, batch := range [][]*models.Blog{ultraNewBlogs, recentBlogs, topBlogs} {
			for _, blog := range batch {
				pool.add(blog)
			}
		}
	}

	return pool, nil
}
