package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/lcharvet/fotoblog/internal/auth"
	"github.com/lcharvet/fotoblog/internal/logging"
	"github.com/lcharvet/fotoblog/internal/models"
	"github.com/lcharvet/fotoblog/internal/photos"
	"github.com/lcharvet/fotoblog/internal/social"
)

const defaultListLimit = 50

// PhotoAPI handles photo HTTP endpoints
type PhotoAPI struct {
	photoSvc       *photos.Service
	socialSvc      *social.Service
	authMiddleware *auth.Middleware
	logger         *logging.Logger
}

// NewPhotoAPI creates a new photo API handler
func NewPhotoAPI(photoSvc *photos.Service, socialSvc *social.Service, authMiddleware *auth.Middleware, logger *logging.Logger) *PhotoAPI {
	return &PhotoAPI{
		photoSvc:       photoSvc,
		socialSvc:      socialSvc,
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

// RegisterRoutes registers photo routes on the given mux
func (api *PhotoAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/photos", corsMiddleware(api.authMiddleware.OptionalAuth(api.handleCollection)))
	mux.HandleFunc("/api/photos/", corsMiddleware(api.authMiddleware.OptionalAuth(api.handleItem)))
}

// handleCollection handles GET (recent list) and POST (publish) on /api/photos.
func (api *PhotoAPI) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		api.listRecent(w, r)
	case http.MethodPost:
		api.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleItem routes /api/photos/{id} and /api/photos/{id}/like.
func (api *PhotoAPI) handleItem(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/photos/")
	path = strings.TrimSuffix(path, "/")
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		api.writeError(w, http.StatusBadRequest, "invalid_request", "photo ID required")
		return
	}
	id := parts[0]

	if len(parts) == 2 && parts[1] == "like" {
		api.toggleLike(w, r, id)
		return
	}
	if len(parts) == 2 && parts[1] == "view" {
		api.markViewed(w, r, id)
		return
	}
	if len(parts) != 1 {
		api.writeError(w, http.StatusNotFound, "not_found", "unknown photo route")
		return
	}

	switch r.Method {
	case http.MethodGet:
		api.get(w, r, id)
	case http.MethodDelete:
		api.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (api *PhotoAPI) listRecent(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, defaultListLimit)

	var (
		list []*models.Photo
		err  error
	)
	if uploaderID := r.URL.Query().Get("uploaderId"); uploaderID != "" {
		list, err = api.photoSvc.ListByUploader(r.Context(), uploaderID, limit)
	} else {
		list, err = api.photoSvc.ListRecent(r.Context(), limit)
	}
	if err != nil {
		api.logger.Error("Failed to list photos", logging.WithField("error", err.Error()))
		api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to list photos")
		return
	}

	api.writeJSON(w, http.StatusOK, map[string]interface{}{
		"photos": list,
		"count":  len(list),
	})
}

func (api *PhotoAPI) create(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		api.writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	var req photos.CreatePhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	photo, err := api.photoSvc.Create(r.Context(), userID, req)
	if err != nil {
		var svcErr *photos.ServiceError
		if errors.As(err, &svcErr) {
			status := http.StatusBadRequest
			if errors.Is(err, photos.ErrNotCreator) {
				status = http.StatusForbidden
			}
			api.writeError(w, status, "invalid_request", svcErr.Message)
			return
		}
		api.logger.Error("Failed to publish photo", logging.WithField("error", err.Error()))
		api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to publish photo")
		return
	}

	api.writeJSON(w, http.StatusCreated, photo)
}

func (api *PhotoAPI) get(w http.ResponseWriter, r *http.Request, id string) {
	viewerID := auth.GetUserID(r.Context())

	photo, err := api.photoSvc.Get(r.Context(), id, viewerID)
	if err != nil {
		api.logger.Error("Failed to get photo", logging.WithField("error", err.Error()))
		api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to get photo")
		return
	}
	if photo == nil {
		api.writeError(w, http.StatusNotFound, "not_found", "photo not found")
		return
	}

	api.writeJSON(w, http.StatusOK, photo)
}

func (api *PhotoAPI) delete(w http.ResponseWriter, r *http.Request, id string) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		api.writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	if err := api.photoSvc.Delete(r.Context(), id, userID); err != nil {
		var svcErr *photos.ServiceError
		if errors.As(err, &svcErr) {
			api.writeError(w, http.StatusNotFound, "not_found", svcErr.Message)
			return
		}
		api.logger.Error("Failed to delete photo", logging.WithField("error", err.Error()))
		api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to delete photo")
		return
	}

	api.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (api *PhotoAPI) toggleLike(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := auth.GetUserID(r.Context())
	if userID == "" {
		api.writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	// confirm the photo exists before touching like state
	photo, err := api.photoSvc.Get(r.Context(), id, "")
	if err != nil {
		api.logger.Error("Failed to get photo for like", logging.WithField("error", err.Error()))
		api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to toggle like")
		return
	}
	if photo == nil {
		api.writeError(w, http.StatusNotFound, "not_found", "photo not found")
		return
	}

	result, err := api.socialSvc.ToggleLike(r.Context(), photo.ContentRef(), userID)
	if err != nil {
		api.logger.Error("Failed to toggle photo like", logging.WithField("error", err.Error()))
		api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to toggle like")
		return
	}

	api.writeJSON(w, http.StatusOK, result)
}

func (api *PhotoAPI) markViewed(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := auth.GetUserID(r.Context())
	if userID == "" {
		api.writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	ref := models.ContentRef{Kind: models.KindPhoto, ID: id}
	if err := api.socialSvc.MarkViewed(r.Context(), ref, userID); err != nil {
		api.logger.Error("Failed to mark photo viewed", logging.WithField("error", err.Error()))
		api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to record view")
		return
	}

	api.writeJSON(w, http.StatusOK, map[string]string{"status": "viewed"})
}

func parseLimit(r *http.Request, fallback int) int {
	limit := fallback
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return limit
}

func (api *PhotoAPI) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (api *PhotoAPI) writeError(w http.ResponseWriter, status int, code, message string) {
	api.writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}
