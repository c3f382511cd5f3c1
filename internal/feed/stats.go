package feed

import (
	"context"
	"time"

	"github.com/lcharvet/fotoblog/internal/logging"
	"github.com/lcharvet/fotoblog/internal/models"
)

// Influence weighting constants. Like density counts for less than
// sustained recent activity.
const (
	likeScoreWeight     = 10.0
	activityScoreWeight = 20.0
	activityTarget      = 10.0
)

// OwnerStats aggregates a content owner's standing across the whole site,
// computed fresh per feed request.
type OwnerStats struct {
	IsCreator      bool
	InfluenceScore float64
}

// ViewerProfile captures what the requesting viewer follows, has liked,
// and has already seen. All sets are empty for anonymous viewers.
type ViewerProfile struct {
	FollowedOwnerIDs map[string]struct{}
	LikedPhotoIDs    map[string]struct{}
	LikedBlogIDs     map[string]struct{}
	ViewedRefs       map[models.ContentRef]struct{}
}

func emptyProfile() ViewerProfile {
	return ViewerProfile{
		FollowedOwnerIDs: map[string]struct{}{},
		LikedPhotoIDs:    map[string]struct{}{},
		LikedBlogIDs:     map[string]struct{}{},
		ViewedRefs:       map[models.ContentRef]struct{}{},
	}
}

// Liked reports whether the viewer has liked the given content.
func (p ViewerProfile) Liked(ref models.ContentRef) bool {
	switch ref.Kind {
	case models.KindPhoto:
		_, ok := p.LikedPhotoIDs[ref.ID]
		return ok
	case models.KindBlog:
		_, ok := p.LikedBlogIDs[ref.ID]
		return ok
	default:
		return false
	}
}

// buildOwnerStats computes per-owner aggregates for every distinct owner in
// the candidate pool. Each metric is one bulk query; a failed query degrades
// that metric to zero for all owners rather than aborting the request.
func (s *Service) buildOwnerStats(ctx context.Context, now time.Time, candidates []models.ContentItem) map[string]OwnerStats {
	seen := make(map[string]struct{})
	var ownerIDs []string
	for _, c := range candidates {
		id := c.OwnerID()
		if id == "" {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ownerIDs = append(ownerIDs, id)
		}
	}

	stats := make(map[string]OwnerStats, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return stats
	}

	likes, err := s.engagement.OwnerLikesReceived(ctx, ownerIDs)
	if err != nil {
		s.logger.Warn("feed: owner likes aggregate failed", logging.WithField("error", err.Error()))
		likes = map[string]int{}
	}
	photoCounts, err := s.engagement.OwnerPhotoCounts(ctx, ownerIDs)
	if err != nil {
		s.logger.Warn("feed: owner photo count aggregate failed", logging.WithField("error", err.Error()))
		photoCounts = map[string]int{}
	}
	blogCounts, err := s.engagement.OwnerBlogCounts(ctx, ownerIDs)
	if err != nil {
		s.logger.Warn("feed: owner blog count aggregate failed", logging.WithField("error", err.Error()))
		blogCounts = map[string]int{}
	}
	recentCutoff := now.AddDate(0, 0, -s.config.CandidateRecentDays)
	recentCounts, err := s.engagement.OwnerRecentContentCounts(ctx, ownerIDs, recentCutoff)
	if err != nil {
		s.logger.Warn("feed: owner recent content aggregate failed", logging.WithField("error", err.Error()))
		recentCounts = map[string]int{}
	}

	for _, id := range ownerIDs {
		likeScore := float64(likes[id]) / float64(photoCounts[id]+1)
		activityScore := float64(recentCounts[id]) / activityTarget
		if activityScore > 1 {
			activityScore = 1
		}
		stats[id] = OwnerStats{
			IsCreator:      blogCounts[id] > 0,
			InfluenceScore: likeScore*likeScoreWeight + activityScore*activityScoreWeight,
		}
	}

	return stats
}

// loadViewerProfile loads the viewer's follow, like, and view sets. Any
// single lookup failure degrades that set to empty; the feed still renders.
func (s *Service) loadViewerProfile(ctx context.Context, viewerID string) ViewerProfile {
	profile := emptyProfile()
	if viewerID == "" {
		return profile
	}

	if followed, err := s.follows.FollowedUserIDs(ctx, viewerID); err != nil {
		s.logger.Warn("feed: follow set lookup failed", logging.WithField("error", err.Error()))
	} else if followed != nil {
		profile.FollowedOwnerIDs = followed
	}

	if liked, err := s.engagement.LikedIDs(ctx, models.KindPhoto, viewerID); err != nil {
		s.logger.Warn("feed: liked photo lookup failed", logging.WithField("error", err.Error()))
	} else if liked != nil {
		profile.LikedPhotoIDs = liked
	}

	if liked, err := s.engagement.LikedIDs(ctx, models.KindBlog, viewerID); err != nil {
		s.logger.Warn("feed: liked blog lookup failed", logging.WithField("error", err.Error()))
	} else if liked != nil {
		profile.LikedBlogIDs = liked
	}

	for _, kind := range []models.ContentKind{models.KindPhoto, models.KindBlog} {
		viewed, err := s.engagement.ViewedIDs(ctx, kind, viewerID)
		if err != nil {
			s.logger.Warn("feed: view history lookup failed",
				logging.WithFields(map[string]interface{}{"kind": string(kind), "error": err.Error()}))
			continue
		}
		for id := range viewed {
			profile.ViewedRefs[models.ContentRef{Kind: kind, ID: id}] = struct{}{}
		}
	}

	return profile
}
