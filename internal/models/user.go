package models

import (
	"regexp"
	"strings"
	"time"
)

// UserStatus represents the status of a user account
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// UserRole determines what a user may publish. Creators author photos and
// blog posts; subscribers follow creators and consume the feed.
type UserRole string

const (
	RoleCreator    UserRole = "creator"
	RoleSubscriber UserRole = "subscriber"
)

// ValidRole reports whether the given role is one of the known roles.
func ValidRole(role UserRole) bool {
	return role == RoleCreator || role == RoleSubscriber
}

// User represents a user in the system
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	Role         UserRole   `json:"role"`
	PasswordHash string     `json:"-"`
	AvatarID     string     `json:"avatarId,omitempty"` // image asset id of profile photo
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// IsCreatorRole reports whether the user signed up as a creator. This is the
// declared role; the feed's creator-discovery bucket goes by authored blog
// count instead, so publishing activity counts even without a role change.
func (u *User) IsCreatorRole() bool {
	return u.Role == RoleCreator
}

// AuthTokens represents the tokens returned after authentication
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"` // seconds
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	User      *User       `json:"user"`
	Tokens    *AuthTokens `json:"tokens"`
	IsNewUser bool        `json:"isNewUser,omitempty"`
}

// SignupParams represents email/password signup parameters
type SignupParams struct {
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	Role     UserRole `json:"role,omitempty"`
}

// LoginParams represents email/password login parameters
type LoginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUserParams represents parameters for creating a user
type CreateUserParams struct {
	Email    string     `json:"email"`
	Username string     `json:"username"`
	Password string     `json:"-"` // already hashed
	Role     UserRole   `json:"role"`
	Status   UserStatus `json:"status,omitempty"`
}

// UpdateUserParams represents parameters for updating a user
type UpdateUserParams struct {
	Username *string     `json:"username,omitempty"`
	AvatarID *string     `json:"avatarId,omitempty"`
	Status   *UserStatus `json:"status,omitempty"`
	Password *string     `json:"-"`
}

// UserProfile represents the public profile response
type UserProfile struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Role           UserRole  `json:"role"`
	AvatarID       string    `json:"avatarId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	PhotoCount     int       `json:"photoCount"`
	BlogCount      int       `json:"blogCount"`
	FollowerCount  int       `json:"followerCount"`
	FollowingCount int       `json:"followingCount"`
	IsFollowing    bool      `json:"isFollowing"` // whether the requesting user follows this profile
}

// UserSummary represents minimal user info for follower/following lists
type UserSummary struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	AvatarID string   `json:"avatarId,omitempty"`
}

// Follow represents a follow relationship between two users
type Follow struct {
	ID             string    `json:"id"`
	FollowerUserID string    `json:"followerUserId"` // the user who is following
	FollowedUserID string    `json:"followedUserId"` // the user being followed
	CreatedAt      time.Time `json:"createdAt"`
}

// FollowListResponse represents a list of followers or following
type FollowListResponse struct {
	Users      []UserSummary `json:"users"`
	TotalCount int           `json:"totalCount"`
}

// RefreshToken represents a stored refresh token
type RefreshToken struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expiresAt"`
	CreatedAt time.Time  `json:"createdAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
}

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

// ValidationError represents a field validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidateUsername checks username format: 3-30 chars, letters/digits/underscore.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return &ValidationError{Field: "username", Message: "username is required"}
	}
	if !usernameRe.MatchString(username) {
		return &ValidationError{Field: "username", Message: "username must be 3-30 characters of letters, digits, or underscore"}
	}
	return nil
}
