package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lcharvet/fotoblog/internal/auth"
	"github.com/lcharvet/fotoblog/internal/logging"
	"github.com/lcharvet/fotoblog/internal/social"
)

// SocialAPI handles follow graph and profile HTTP endpoints
type SocialAPI struct {
	socialSvc      *social.Service
	authMiddleware *auth.Middleware
	logger         *logging.Logger
}

// NewSocialAPI creates a new social API handler
func NewSocialAPI(socialSvc *social.Service, authMiddleware *auth.Middleware, logger *logging.Logger) *SocialAPI {
	return &SocialAPI{
		socialSvc:      socialSvc,
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

// RegisterRoutes registers social routes on the given mux
func (api *SocialAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/social/follow/", corsMiddleware(api.authMiddleware.RequireAuth(api.handleFollow)))
	mux.HandleFunc("/api/social/", corsMiddleware(api.authMiddleware.RequireAuth(api.handleSocialLists)))
	mux.HandleFunc("/api/profiles/", corsMiddleware(api.authMiddleware.OptionalAuth(api.handleProfile)))
}

// handleFollow handles POST/DELETE /api/social/follow/{userId}
func (api *SocialAPI) handleFollow(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/social/follow/")
	targetUserID := strings.TrimSuffix(path, "/")
	if targetUserID == "" {
		api.writeError(w, http.StatusBadRequest, "invalid_request", "user ID required")
		return
	}

	userID := auth.GetUserID(r.Context())

	switch r.Method {
	case http.MethodPost:
		follow, err := api.socialSvc.Follow(r.Context(), userID, targetUserID)
		if err != nil {
			var svcErr *social.ServiceError
			if errors.As(err, &svcErr) {
				api.writeError(w, http.StatusBadRequest, "invalid_request", svcErr.Message)
				return
			}
			api.logger.Error("Failed to follow user", logging.WithField("error", err.Error()))
			api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to follow user")
			return
		}
		api.writeJSON(w, http.StatusOK, follow)
	case http.MethodDelete:
		if err := api.socialSvc.Unfollow(r.Context(), userID, targetUserID); err != nil {
			api.logger.Error("Failed to unfollow user", logging.WithField("error", err.Error()))
			api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to unfollow user")
			return
		}
		api.writeJSON(w, http.StatusOK, map[string]string{"status": "unfollowed"})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSocialLists handles GET /api/social/{userId}/followers and
// GET /api/social/{userId}/following.
func (api *SocialAPI) handleSocialLists(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/social/")
	path = strings.TrimSuffix(path, "/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" {
		api.writeError(w, http.StatusNotFound, "not_found", "unknown social route")
		return
	}
	userID := parts[0]

	switch parts[1] {
	case "followers":
		list, err := api.socialSvc.Followers(r.Context(), userID)
		if err != nil {
			api.logger.Error("Failed to list followers", logging.WithField("error", err.Error()))
			api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to list followers")
			return
		}
		api.writeJSON(w, http.StatusOK, list)
	case "following":
		list, err := api.socialSvc.Following(r.Context(), userID)
		if err != nil {
			api.logger.Error("Failed to list following", logging.WithField("error", err.Error()))
			api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to list following")
			return
		}
		api.writeJSON(w, http.StatusOK, list)
	default:
		api.writeError(w, http.StatusNotFound, "not_found", "unknown social route")
	}
}

// handleProfile handles GET /api/profiles/{username}
func (api *SocialAPI) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/profiles/")
	username := strings.TrimSuffix(path, "/")
	if username == "" {
		api.writeError(w, http.StatusBadRequest, "invalid_request", "username required")
		return
	}

	requesterID := auth.GetUserID(r.Context())

	profile, err := api.socialSvc.Profile(r.Context(), username, requesterID)
	if err != nil {
		api.logger.Error("Failed to load profile", logging.WithField("error", err.Error()))
		api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to load profile")
		return
	}
	if profile == nil {
		api.writeError(w, http.StatusNotFound, "not_found", "profile not found")
		return
	}

	api.writeJSON(w, http.StatusOK, profile)
}

func (api *SocialAPI) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (api *SocialAPI) writeError(w http.ResponseWriter, status int, code, message string) {
	api.writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}
