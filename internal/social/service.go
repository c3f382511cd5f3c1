// Package social coordinates follows, likes, views, and public profiles.
package social

import (
	"context"
	"time"

	"github.com/lcharvet/fotoblog/internal/cache"
	"github.com/lcharvet/fotoblog/internal/database"
	"github.com/lcharvet/fotoblog/internal/logging"
	"github.com/lcharvet/fotoblog/internal/models"
)

const profileCountsTTL = 30 * time.Second

// ServiceError represents a social service validation/runtime error.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

type userStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	CreateFollow(ctx context.Context, followerID, followedID string) (*models.Follow, error)
	DeleteFollow(ctx context.Context, followerID, followedID string) error
	IsFollowing(ctx context.Context, followerID, followedID string) (bool, error)
	ListFollowers(ctx context.Context, userID string) (*models.FollowListResponse, error)
	ListFollowing(ctx context.Context, userID string) (*models.FollowListResponse, error)
	FollowCounts(ctx context.Context, userID string) (int, int, error)
}

type engagementStore interface {
	ToggleLike(ctx context.Context, ref models.ContentRef, userID string) (bool, int, error)
	MarkViewed(ctx context.Context, ref models.ContentRef, userID string) error
}

type contentCounter interface {
	CountByUploader(ctx context.Context, uploaderID string) (int, error)
}

type blogCounter interface {
	CountByAuthor(ctx context.Context, authorID string) (int, error)
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

type profileCounts struct {
	Photos    int
	Blogs     int
	Followers int
	Following int
}

// Service coordinates social graph and engagement logic.
type Service struct {
	users      userStore
	engagement engagementStore
	photos     contentCounter
	blogs      blogCounter
	cache      cache.Cache
	logger     *logging.Logger
}

// NewService creates a social service. The cache keeps profile counts warm;
// pass nil to disable caching.
func NewService(users *database.UserStore, engagement *database.EngagementStore, photos *database.PhotoStore, blogs *database.BlogStore, c cache.Cache, logger *logging.Logger) *Service {
	return NewServiceWithDeps(users, engagement, photos, blogs, c, logger)
}

// NewServiceWithDeps is exposed for testing.
func NewServiceWithDeps(users userStore, engagement engagementStore, photos contentCounter, blogs blogCounter, c cache.Cache, logger *logging.Logger) *Service {
	return &Service{
		users:      users,
		engagement: engagement,
		photos:     photos,
		blogs:      blogs,
		cache:      c,
		logger:     logger,
	}
}

// Follow makes follower follow the target user.
func (s *Service) Follow(ctx context.Context, followerID, followedID string) (*models.Follow, error) {
	if followerID == followedID {
		return nil, &ServiceError{Message: "cannot follow yourself"}
	}

	target, err := s.users.GetByID(ctx, followedID)
	if err != nil {
		return nil, err
	}
	if target == nil || target.Status != models.UserStatusActive {
		return nil, &ServiceError{Message: "user not found"}
	}

	follow, err := s.users.CreateFollow(ctx, followerID, followedID)
	if err != nil {
		return nil, err
	}

	s.invalidateProfileCounts(followerID)
	s.invalidateProfileCounts(followedID)

	s.logger.Info("Follow created", logging.WithFields(map[string]interface{}{
		"followerId": followerID,
		"followedId": followedID,
	}))

	return follow, nil
}

// Unfollow removes a follow relationship. Unfollowing someone not followed
// is a no-op.
func (s *Service) Unfollow(ctx context.Context, followerID, followedID string) error {
	if err := s.users.DeleteFollow(ctx, followerID, followedID); err != nil {
		return err
	}

	s.invalidateProfileCounts(followerID)
	s.invalidateProfileCounts(followedID)
	return nil
}

// Followers lists the users following userID.
func (s *Service) Followers(ctx context.Context, userID string) (*models.FollowListResponse, error) {
	return s.users.ListFollowers(ctx, userID)
}

// Following lists the users userID follows.
func (s *Service) Following(ctx context.Context, userID string) (*models.FollowListResponse, error) {
	return s.users.ListFollowing(ctx, userID)
}

// Profile assembles a public profile by username. requesterID may be empty
// for anonymous viewers.
func (s *Service) Profile(ctx context.Context, username, requesterID string) (*models.UserProfile, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != models.UserStatusActive {
		return nil, nil
	}

	counts, err := s.loadProfileCounts(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	profile := &models.UserProfile{
		ID:             user.ID,
		Username:       user.Username,
		Role:           user.Role,
		AvatarID:       user.AvatarID,
		CreatedAt:      user.CreatedAt,
		PhotoCount:     counts.Photos,
		BlogCount:      counts.Blogs,
		FollowerCount:  counts.Followers,
		FollowingCount: counts.Following,
	}

	if requesterID != "" && requesterID != user.ID {
		following, err := s.users.IsFollowing(ctx, requesterID, user.ID)
		if err != nil {
			s.logger.Warn("Failed to check follow state", logging.WithField("error", err.Error()))
		} else {
			profile.IsFollowing = following
		}
	}

	return profile, nil
}

// ToggleLike flips the viewer's like on the given content.
func (s *Service) ToggleLike(ctx context.Context, ref models.ContentRef, userID string) (*LikeResult, error) {
	liked, count, err := s.engagement.ToggleLike(ctx, ref, userID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, LikeCount: count}, nil
}

// MarkViewed records that the viewer has seen the given content.
func (s *Service) MarkViewed(ctx context.Context, ref models.ContentRef, userID string) error {
	return s.engagement.MarkViewed(ctx, ref, userID)
}

func profileCountsKey(userID string) string {
	return "profile-counts:" + userID
}

func (s *Service) invalidateProfileCounts(userID string) {
	if s.cache != nil {
		s.cache.Delete(profileCountsKey(userID))
	}
}

func (s *Service) loadProfileCounts(ctx context.Context, userID string) (profileCounts, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(profileCountsKey(userID)); ok {
			if counts, ok := cached.(profileCounts); ok {
				return counts, nil
			}
		}
	}

	photoCount, err := s.photos.CountByUploader(ctx, userID)
	if err != nil {
		return profileCounts{}, err
	}
	blogCount, err := s.blogs.CountByAuthor(ctx, userID)
	if err != nil {
		return profileCounts{}, err
	}
	followers, following, err := s.users.FollowCounts(ctx, userID)
	if err != nil {
		return profileCounts{}, err
	}

	counts := profileCounts{
		Photos:    photoCount,
		Blogs:     blogCount,
		Followers: followers,
		Following: following,
	}
	if s.cache != nil {
		s.cache.SetWithTTL(profileCountsKey(userID), counts, profileCountsTTL)
	}

	return counts, nil
}
