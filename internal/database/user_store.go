package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lcharvet/fotoblog/internal/models"
)

// UserStore handles user database operations
type UserStore struct {
	db *DB
}

// NewUserStore creates a new user store
func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

// Create creates a new user
func (s *UserStore) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	status := params.Status
	if status == "" {
		status = models.UserStatusActive
	}
	role := params.Role
	if role == "" {
		role = models.RoleSubscriber
	}

	query := `
		INSERT INTO users (email, username, role, password_hash, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, username, role, avatar_id, status, created_at, updated_at, last_login_at
	`

	var passwordHash sql.NullString
	if params.Password != "" {
		passwordHash = sql.NullString{String: params.Password, Valid: true}
	}

	user := &models.User{}
	var avatarID sql.NullString
	var lastLoginAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query,
		email, params.Username, role, passwordHash, status,
	).Scan(
		&user.ID, &user.Email, &user.Username, &user.Role, &avatarID,
		&user.Status, &user.CreatedAt, &user.UpdatedAt, &lastLoginAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, fmt.Errorf("user with that email or username already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if avatarID.Valid {
		user.AvatarID = avatarID.String
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (s *UserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, email, username, role, password_hash, avatar_id, status, created_at, updated_at, last_login_at
		FROM users
		WHERE id = $1
	`

	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email (case-insensitive)
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	query := `
		SELECT id, email, username, role, password_hash, avatar_id, status, created_at, updated_at, last_login_at
		FROM users
		WHERE LOWER(email) = $1
	`

	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

// GetByUsername retrieves a user by username (case-insensitive)
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	query := `
		SELECT id, email, username, role, password_hash, avatar_id, status, created_at, updated_at, last_login_at
		FROM users
		WHERE LOWER(username) = $1
	`

	return s.scanUser(s.db.QueryRowContext(ctx, query, username))
}

// Update updates a user
func (s *UserStore) Update(ctx context.Context, id string, params models.UpdateUserParams) (*models.User, error) {
	var sets []string
	var args []interface{}
	argIdx := 1

	if params.Username != nil {
		sets = append(sets, fmt.Sprintf("username = $%d", argIdx))
		args = append(args, *params.Username)
		argIdx++
	}
	if params.AvatarID != nil {
		sets = append(sets, fmt.Sprintf("avatar_id = $%d", argIdx))
		args = append(args, nullString(*params.AvatarID))
		argIdx++
	}
	if params.Status != nil {
		sets = append(sets, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Password != nil {
		sets = append(sets, fmt.Sprintf("password_hash = $%d", argIdx))
		args = append(args, *params.Password)
		argIdx++
	}

	if len(sets) == 0 {
		return s.GetByID(ctx, id)
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE users SET %s
		WHERE id = $%d
		RETURNING id, email, username, role, password_hash, avatar_id, status, created_at, updated_at, last_login_at
	`, strings.Join(sets, ", "), argIdx)

	return s.scanUser(s.db.QueryRowContext(ctx, query, args...))
}

// UpdateLastLogin updates the last login timestamp
func (s *UserStore) UpdateLastLogin(ctx context.Context, id string) error {
	query := `UPDATE users SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`
	_, err := s.db.ExecContext(ctx, query, id)
	return err
}

// Delete soft-deletes a user by setting status to disabled
func (s *UserStore) Delete(ctx context.Context, id string) error {
	query := `UPDATE users SET status = 'disabled', updated_at = NOW() WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

func (s *UserStore) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var passwordHash, avatarID sql.NullString
	var lastLoginAt sql.NullTime

	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.Role, &passwordHash, &avatarID,
		&user.Status, &user.CreatedAt, &user.UpdatedAt, &lastLoginAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if passwordHash.Valid {
		user.PasswordHash = passwordHash.String
	}
	if avatarID.Valid {
		user.AvatarID = avatarID.String
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}

	return user, nil
}

// CreateFollow creates a follow relationship
func (s *UserStore) CreateFollow(ctx context.Context, followerID, followedID string) (*models.Follow, error) {
	if followerID == followedID {
		return nil, fmt.Errorf("cannot follow yourself")
	}

	query := `
		INSERT INTO follows (follower_user_id, followed_user_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_user_id, followed_user_id) DO UPDATE SET follower_user_id = EXCLUDED.follower_user_id
		RETURNING id, follower_user_id, followed_user_id, created_at
	`

	follow := &models.Follow{}
	err := s.db.QueryRowContext(ctx, query, followerID, followedID).Scan(
		&follow.ID, &follow.FollowerUserID, &follow.FollowedUserID, &follow.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create follow: %w", err)
	}

	return follow, nil
}

// DeleteFollow removes a follow relationship
func (s *UserStore) DeleteFollow(ctx context.Context, followerID, followedID string) error {
	query := `DELETE FROM follows WHERE follower_user_id = $1 AND followed_user_id = $2`
	_, err := s.db.ExecContext(ctx, query, followerID, followedID)
	return err
}

// IsFollowing reports whether follower follows followed
func (s *UserStore) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_user_id = $1 AND followed_user_id = $2)`
	var exists bool
	err := s.db.QueryRowContext(ctx, query, followerID, followedID).Scan(&exists)
	return exists, err
}

// FollowedUserIDs returns the set of user ids the given user follows
func (s *UserStore) FollowedUserIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	query := `SELECT followed_user_id FROM follows WHERE follower_user_id = $1`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}

	return ids, rows.Err()
}

// ListFollowers returns users following the given user
func (s *UserStore) ListFollowers(ctx context.Context, userID string) (*models.FollowListResponse, error) {
	query := `
		SELECT u.id, u.username, u.role, u.avatar_id
		FROM follows f
		JOIN users u ON u.id = f.follower_user_id
		WHERE f.followed_user_id = $1 AND u.status = 'active'
		ORDER BY f.created_at DESC
	`
	return s.queryUserSummaries(ctx, query, userID)
}

// ListFollowing returns users the given user follows
func (s *UserStore) ListFollowing(ctx context.Context, userID string) (*models.FollowListResponse, error) {
	query := `
		SELECT u.id, u.username, u.role, u.avatar_id
		FROM follows f
		JOIN users u ON u.id = f.followed_user_id
		WHERE f.follower_user_id = $1 AND u.status = 'active'
		ORDER BY f.created_at DESC
	`
	return s.queryUserSummaries(ctx, query, userID)
}

// FollowCounts returns follower and following counts for a user
func (s *UserStore) FollowCounts(ctx context.Context, userID string) (followers int, following int, err error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE followed_user_id = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_user_id = $1)
	`
	err = s.db.QueryRowContext(ctx, query, userID).Scan(&followers, &following)
	return followers, following, err
}

func (s *UserStore) queryUserSummaries(ctx context.Context, query string, args ...interface{}) (*models.FollowListResponse, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		var avatarID sql.NullString
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &avatarID); err != nil {
			return nil, err
		}
		if avatarID.Valid {
			u.AvatarID = avatarID.String
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &models.FollowListResponse{
		Users:      users,
		TotalCount: len(users),
	}, nil
}

// CreateRefreshToken stores a refresh token hash
func (s *UserStore) CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (*models.RefreshToken, error) {
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, token_hash, expires_at, created_at, revoked_at
	`

	token := &models.RefreshToken{}
	var revokedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, userID, tokenHash, expiresAt).Scan(
		&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.CreatedAt, &revokedAt,
	)
	if err != nil {
		return nil, err
	}
	if revokedAt.Valid {
		token.RevokedAt = &revokedAt.Time
	}

	return token, nil
}

// GetRefreshTokenByHash retrieves a valid (unexpired, unrevoked) refresh token
func (s *UserStore) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at, revoked_at
		FROM refresh_tokens
		WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > NOW()
	`

	token := &models.RefreshToken{}
	var revokedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID, &token.UserID, &token.TokenHash, &token.ExpiresAt, &token.CreatedAt, &revokedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if revokedAt.Valid {
		token.RevokedAt = &revokedAt.Time
	}

	return token, nil
}

// RevokeRefreshToken revokes a single refresh token
func (s *UserStore) RevokeRefreshToken(ctx context.Context, tokenID string) error {
	query := `UPDATE refresh_tokens SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`
	_, err := s.db.ExecContext(ctx, query, tokenID)
	return err
}

// RevokeAllUserRefreshTokens revokes all refresh tokens for a user
func (s *UserStore) RevokeAllUserRefreshTokens(ctx context.Context, userID string) error {
	query := `UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`
	_, err := s.db.ExecContext(ctx, query, userID)
	return err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
