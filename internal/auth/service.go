package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/lcharvet/fotoblog/internal/config"
	"github.com/lcharvet/fotoblog/internal/database"
	"github.com/lcharvet/fotoblog/internal/logging"
	"github.com/lcharvet/fotoblog/internal/models"
)

// Service handles authentication operations
type Service struct {
	config    config.AuthConfig
	userStore *database.UserStore
	logger    *logging.Logger
}

// NewService creates a new auth service
func NewService(userStore *database.UserStore, cfg config.AuthConfig, logger *logging.Logger) *Service {
	return &Service{
		config:    cfg,
		userStore: userStore,
		logger:    logger,
	}
}

// SignupWithEmail creates a new user with email/password and a declared role
func (s *Service) SignupWithEmail(ctx context.Context, params models.SignupParams) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	username := strings.TrimSpace(params.Username)

	// Validate input
	if email == "" {
		return nil, &AuthError{Code: "invalid_input", Message: "email is required"}
	}
	if err := models.ValidateUsername(username); err != nil {
		return nil, &AuthError{Code: "invalid_input", Message: err.Error()}
	}
	if params.Password == "" {
		return nil, &AuthError{Code: "invalid_input", Message: "password is required"}
	}
	if len(params.Password) < 8 {
		return nil, &AuthError{Code: "invalid_input", Message: "password must be at least 8 characters"}
	}
	role := params.Role
	if role == "" {
		role = models.RoleSubscriber
	}
	if !models.ValidRole(role) {
		return nil, &AuthError{Code: "invalid_input", Message: "role must be creator or subscriber"}
	}

	// Check if user exists
	existing, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, &AuthError{Code: "user_exists", Message: "a user with this email already exists"}
	}
	existing, err = s.userStore.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing username: %w", err)
	}
	if existing != nil {
		return nil, &AuthError{Code: "user_exists", Message: "a user with this username already exists"}
	}

	// Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Create user
	user, err := s.userStore.Create(ctx, models.CreateUserParams{
		Email:    email,
		Username: username,
		Password: string(passwordHash),
		Role:     role,
		Status:   models.UserStatusActive,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Generate tokens
	tokens, err := s.generateTokens(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.logger.Info("User signed up", logging.WithFields(map[string]interface{}{
		"userId": user.ID,
		"role":   string(user.Role),
	}))

	return &models.AuthResponse{
		User:      user,
		Tokens:    tokens,
		IsNewUser: true,
	}, nil
}

// LoginWithEmail authenticates a user with email/password
func (s *Service) LoginWithEmail(ctx context.Context, params models.LoginParams) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))

	if email == "" || params.Password == "" {
		return nil, &AuthError{Code: "invalid_input", Message: "email and password are required"}
	}

	// Get user
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, &AuthError{Code: "invalid_credentials", Message: "invalid email or password"}
	}

	// Check status
	if user.Status != models.UserStatusActive {
		return nil, &AuthError{Code: "account_disabled", Message: "account is disabled"}
	}

	// Check password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(params.Password)); err != nil {
		return nil, &AuthError{Code: "invalid_credentials", Message: "invalid email or password"}
	}

	// Update last login
	if err := s.userStore.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("Failed to update last login", logging.WithField("error", err.Error()))
	}

	// Generate tokens
	tokens, err := s.generateTokens(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.logger.Info("User logged in", logging.WithField("userId", user.ID))

	return &models.AuthResponse{
		User:   user,
		Tokens: tokens,
	}, nil
}

// RefreshTokens refreshes the access token using a refresh token
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	tokenHash := hashToken(refreshToken)

	storedToken, err := s.userStore.GetRefreshTokenByHash(ctx, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	if storedToken == nil {
		return nil, &AuthError{Code: "invalid_token", Message: "invalid or expired refresh token"}
	}

	user, err := s.userStore.GetByID(ctx, storedToken.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.Status != models.UserStatusActive {
		return nil, &AuthError{Code: "invalid_token", Message: "user not found or disabled"}
	}

	// Revoke old token
	if err := s.userStore.RevokeRefreshToken(ctx, storedToken.ID); err != nil {
		s.logger.Warn("Failed to revoke old refresh token", logging.WithField("error", err.Error()))
	}

	// Generate new tokens
	tokens, err := s.generateTokens(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return tokens, nil
}

// Logout revokes all refresh tokens for a user
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.userStore.RevokeAllUserRefreshTokens(ctx, userID)
}

// ValidateAccessToken validates a JWT access token and returns the user ID
func (s *Service) ValidateAccessToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})

	if err != nil {
		return "", &AuthError{Code: "invalid_token", Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", &AuthError{Code: "invalid_token", Message: "invalid token claims"}
	}

	// Validate issuer and audience
	if iss, _ := claims["iss"].(string); iss != s.config.JWTIssuer {
		return "", &AuthError{Code: "invalid_token", Message: "invalid token issuer"}
	}
	if aud, _ := claims["aud"].(string); aud != s.config.JWTAudience {
		return "", &AuthError{Code: "invalid_token", Message: "invalid token audience"}
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", &AuthError{Code: "invalid_token", Message: "invalid token subject"}
	}

	return userID, nil
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userStore.GetByID(ctx, userID)
}

// generateTokens generates access and refresh tokens
func (s *Service) generateTokens(ctx context.Context, user *models.User) (*models.AuthTokens, error) {
	now := time.Now()

	// Generate access token
	accessClaims := jwt.MapClaims{
		"sub":      user.ID,
		"email":    user.Email,
		"username": user.Username,
		"role":     string(user.Role),
		"iss":      s.config.JWTIssuer,
		"aud":      s.config.JWTAudience,
		"iat":      now.Unix(),
		"exp":      now.Add(s.config.AccessTokenTTL).Unix(),
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	// Generate refresh token
	refreshTokenBytes := make([]byte, 32)
	if _, err := rand.Read(refreshTokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refreshTokenString := base64.URLEncoding.EncodeToString(refreshTokenBytes)

	// Store refresh token hash
	refreshTokenHash := hashToken(refreshTokenString)
	expiresAt := now.Add(s.config.RefreshTokenTTL)

	_, err = s.userStore.CreateRefreshToken(ctx, user.ID, refreshTokenHash, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.AuthTokens{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.config.AccessTokenTTL.Seconds()),
	}, nil
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *AuthError) Error() string {
	return e.Message
}
