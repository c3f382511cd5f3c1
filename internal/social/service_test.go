package social

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lcharvet/fotoblog/internal/cache"
	"github.com/lcharvet/fotoblog/internal/models"
	"github.com/lcharvet/fotoblog/internal/testutil"
)

type fakeSocialUsers struct {
	users       map[string]*models.User
	follows     map[string]map[string]bool // followerID -> followedID
	followErr   error
	profileErr  error
	countCalls  int
	followCalls int
}

func newFakeSocialUsers() *fakeSocialUsers {
	return &fakeSocialUsers{
		users:   make(map[string]*models.User),
		follows: make(map[string]map[string]bool),
	}
}

func (f *fakeSocialUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeSocialUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeSocialUsers) CreateFollow(ctx context.Context, followerID, followedID string) (*models.Follow, error) {
	if f.followErr != nil {
		return nil, f.followErr
	}
	f.followCalls++
	if f.follows[followerID] == nil {
		f.follows[followerID] = make(map[string]bool)
	}
	f.follows[followerID][followedID] = true
	return &models.Follow{FollowerUserID: followerID, FollowedUserID: followedID, CreatedAt: time.Now()}, nil
}

func (f *fakeSocialUsers) DeleteFollow(ctx context.Context, followerID, followedID string) error {
	delete(f.follows[followerID], followedID)
	return nil
}

func (f *fakeSocialUsers) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	if f.profileErr != nil {
		return false, f.profileErr
	}
	return f.follows[followerID][followedID], nil
}

func (f *fakeSocialUsers) ListFollowers(ctx context.Context, userID string) (*models.FollowListResponse, error) {
	var summaries []models.UserSummary
	for followerID, followed := range f.follows {
		if followed[userID] {
			summaries = append(summaries, models.UserSummary{ID: followerID})
		}
	}
	return &models.FollowListResponse{Users: summaries, TotalCount: len(summaries)}, nil
}

func (f *fakeSocialUsers) ListFollowing(ctx context.Context, userID string) (*models.FollowListResponse, error) {
	var summaries []models.UserSummary
	for followedID := range f.follows[userID] {
		summaries = append(summaries, models.UserSummary{ID: followedID})
	}
	return &models.FollowListResponse{Users: summaries, TotalCount: len(summaries)}, nil
}

func (f *fakeSocialUsers) FollowCounts(ctx context.Context, userID string) (int, int, error) {
	f.countCalls++
	followers := 0
	for _, followed := range f.follows {
		if followed[userID] {
			followers++
		}
	}
	return followers, len(f.follows[userID]), nil
}

type fakeEngagement struct {
	liked map[models.ContentRef]map[string]bool
	views []models.ContentRef
}

func newFakeEngagement() *fakeEngagement {
	return &fakeEngagement{liked: make(map[models.ContentRef]map[string]bool)}
}

func (f *fakeEngagement) ToggleLike(ctx context.Context, ref models.ContentRef, userID string) (bool, int, error) {
	if f.liked[ref] == nil {
		f.liked[ref] = make(map[string]bool)
	}
	if f.liked[ref][userID] {
		delete(f.liked[ref], userID)
	} else {
		f.liked[ref][userID] = true
	}
	return f.liked[ref][userID], len(f.liked[ref]), nil
}

func (f *fakeEngagement) MarkViewed(ctx context.Context, ref models.ContentRef, userID string) error {
	f.views = append(f.views, ref)
	return nil
}

type fakeCounter struct {
	counts map[string]int
	calls  int
}

func (f *fakeCounter) CountByUploader(ctx context.Context, uploaderID string) (int, error) {
	f.calls++
	return f.counts[uploaderID], nil
}

func (f *fakeCounter) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	f.calls++
	return f.counts[authorID], nil
}

type socialTestEnv struct {
	svc        *Service
	users      *fakeSocialUsers
	engagement *fakeEngagement
	photos     *fakeCounter
	blogs      *fakeCounter
}

func newSocialTestEnv() *socialTestEnv {
	users := newFakeSocialUsers()
	users.users["alice"] = &models.User{ID: "alice", Username: "alice", Role: models.RoleCreator, Status: models.UserStatusActive}
	users.users["bob"] = &models.User{ID: "bob", Username: "bob", Role: models.RoleSubscriber, Status: models.UserStatusActive}
	users.users["gone"] = &models.User{ID: "gone", Username: "gone", Role: models.RoleSubscriber, Status: models.UserStatusDisabled}

	engagement := newFakeEngagement()
	photos := &fakeCounter{counts: map[string]int{"alice": 3}}
	blogs := &fakeCounter{counts: map[string]int{"alice": 2}}

	svc := NewServiceWithDeps(users, engagement, photos, blogs, cache.NewMemory(time.Minute), testutil.NullLogger())
	return &socialTestEnv{svc: svc, users: users, engagement: engagement, photos: photos, blogs: blogs}
}

func TestFollowSelfRejected(t *testing.T) {
	env := newSocialTestEnv()

	_, err := env.svc.Follow(context.Background(), "alice", "alice")
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Errorf("Follow() error = %v, want ServiceError", err)
	}
}

func TestFollowTargetMustBeActive(t *testing.T) {
	env := newSocialTestEnv()
	ctx := context.Background()

	var svcErr *ServiceError
	if _, err := env.svc.Follow(ctx, "bob", "ghost"); !errors.As(err, &svcErr) {
		t.Errorf("Follow() unknown target error = %v, want ServiceError", err)
	}
	if _, err := env.svc.Follow(ctx, "bob", "gone"); !errors.As(err, &svcErr) {
		t.Errorf("Follow() disabled target error = %v, want ServiceError", err)
	}
}

func TestFollowUnfollowRoundTrip(t *testing.T) {
	env := newSocialTestEnv()
	ctx := context.Background()

	follow, err := env.svc.Follow(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if follow.FollowerUserID != "bob" || follow.FollowedUserID != "alice" {
		t.Errorf("Follow() = %+v, want bob -> alice", follow)
	}

	followers, err := env.svc.Followers(ctx, "alice")
	if err != nil {
		t.Fatalf("Followers() error = %v", err)
	}
	if followers.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1", followers.TotalCount)
	}

	if err := env.svc.Unfollow(ctx, "bob", "alice"); err != nil {
		t.Fatalf("Unfollow() error = %v", err)
	}
	following, err := env.svc.Following(ctx, "bob")
	if err != nil {
		t.Fatalf("Following() error = %v", err)
	}
	if following.TotalCount != 0 {
		t.Errorf("TotalCount after unfollow = %d, want 0", following.TotalCount)
	}
}

func TestProfileCountsAndFollowState(t *testing.T) {
	env := newSocialTestEnv()
	ctx := context.Background()

	if _, err := env.svc.Follow(ctx, "bob", "alice"); err != nil {
		t.Fatalf("Follow() error = %v", err)
	}

	profile, err := env.svc.Profile(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if profile == nil {
		t.Fatal("Profile() = nil, want alice's profile")
	}
	if profile.PhotoCount != 3 || profile.BlogCount != 2 {
		t.Errorf("counts = (%d photos, %d blogs), want (3, 2)", profile.PhotoCount, profile.BlogCount)
	}
	if profile.FollowerCount != 1 {
		t.Errorf("FollowerCount = %d, want 1", profile.FollowerCount)
	}
	if !profile.IsFollowing {
		t.Error("IsFollowing = false, want true for a follower")
	}

	anon, err := env.svc.Profile(ctx, "alice", "")
	if err != nil {
		t.Fatalf("Profile() anonymous error = %v", err)
	}
	if anon.IsFollowing {
		t.Error("IsFollowing should stay false for anonymous viewers")
	}
}

func TestProfileMissingOrDisabled(t *testing.T) {
	env := newSocialTestEnv()
	ctx := context.Background()

	for _, username := range []string{"ghost", "gone"} {
		profile, err := env.svc.Profile(ctx, username, "")
		if err != nil {
			t.Fatalf("Profile(%q) error = %v", username, err)
		}
		if profile != nil {
			t.Errorf("Profile(%q) = %+v, want nil", username, profile)
		}
	}
}

func TestProfileCountsCached(t *testing.T) {
	env := newSocialTestEnv()
	ctx := context.Background()

	if _, err := env.svc.Profile(ctx, "alice", ""); err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if _, err := env.svc.Profile(ctx, "alice", ""); err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if env.photos.calls != 1 || env.users.countCalls != 1 {
		t.Errorf("count lookups = (photos %d, follows %d), want 1 each with warm cache", env.photos.calls, env.users.countCalls)
	}

	// a follow invalidates alice's cached counts
	if _, err := env.svc.Follow(ctx, "bob", "alice"); err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	profile, err := env.svc.Profile(ctx, "alice", "")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if profile.FollowerCount != 1 {
		t.Errorf("FollowerCount = %d, want 1 after cache invalidation", profile.FollowerCount)
	}
}

func TestToggleLike(t *testing.T) {
	env := newSocialTestEnv()
	ctx := context.Background()
	ref := models.ContentRef{Kind: models.KindPhoto, ID: "p1"}

	result, err := env.svc.ToggleLike(ctx, ref, "bob")
	if err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if !result.Liked || result.LikeCount != 1 {
		t.Errorf("ToggleLike() = %+v, want liked with count 1", result)
	}

	result, err = env.svc.ToggleLike(ctx, ref, "bob")
	if err != nil {
		t.Fatalf("ToggleLike() error = %v", err)
	}
	if result.Liked || result.LikeCount != 0 {
		t.Errorf("second ToggleLike() = %+v, want unliked with count 0", result)
	}
}

func TestMarkViewed(t *testing.T) {
	env := newSocialTestEnv()
	ref := models.ContentRef{Kind: models.KindBlog, ID: "b1"}

	if err := env.svc.MarkViewed(context.Background(), ref, "bob"); err != nil {
		t.Fatalf("MarkViewed() error = %v", err)
	}
	if len(env.engagement.views) != 1 || env.engagement.views[0] != ref {
		t.Errorf("views = %v, want %v recorded once", env.engagement.views, ref)
	}
}
