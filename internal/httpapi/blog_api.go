package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lcharvet/fotoblog/internal/auth"
	"github.com/lcharvet/fotoblog/internal/blogs"
	"github.com/lcharvet/fotoblog/internal/logging"
	"github.com/lcharvet/fotoblog/internal/models"
	"github.com/lcharvet/fotoblog/internal/social"
)

// BlogAPI handles blog post HTTP endpoints
type BlogAPI struct {
	blogSvc        *blogs.Service
	socialSvc      *social.Service
	authMiddleware *auth.Middleware
	logger         *logging.Logger
}

// NewBlogAPI creates a new blog API handler
func NewBlogAPI(blogSvc *blogs.Service, socialSvc *social.Service, authMiddleware *auth.Middleware, logger *logging.Logger) *BlogAPI {
	return &BlogAPI{
		blogSvc:        blogSvc,
		socialSvc:      socialSvc,
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

// RegisterRoutes registers blog routes on the given mux
func (api *BlogAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/blogs", corsMiddleware(api.authMiddleware.OptionalAuth(api.handleCollection)))
	mux.HandleFunc("/api/blogs/", corsMiddleware(api.authMiddleware.OptionalAuth(api.handleItem)))
}

func (api *BlogAPI) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		api.listRecent(w, r)
	case http.MethodPost:
		api.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (api *BlogAPI) handleItem(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/blogs/")
	path = strings.TrimSuffix(path, "/")
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		api.writeError(w, http.StatusBadRequest, "invalid_request", "blog post ID required")
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
		api.writeError(w, http.StatusNotFound, "not_found", "unknown blog route")
		return
	}

	switch r.Method {
	case http.MethodGet:
		api.get(w, r, id)
	case http.MethodPut, http.MethodPatch:
		api.update(w, r, id)
	case http.MethodDelete:
		api.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (api *BlogAPI) listRecent(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, defaultListLimit)

	var (
		list []*models.Blog
		err  error
	)
	if authorID := r.URL.Query().Get("authorId"); authorID != "" {
		list, err = api.blogSvc.ListByAuthor(r.Context(), authorID, limit)
	} else {
		list, err = api.blogSvc.ListRecent(r.Context(), limit)
	}
	if err != nil {
		api.logger.Error("Failed to list blog posts", logging.WithField("error", err.Error()))
		api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to list blog posts")
		return
	}

	api.writeJSON(w, http.StatusOK, map[string]interface{}{
		"blogs": list,
		"count": len(list),
	})
}

func (api *BlogAPI) create(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		api.writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	var req blogs.CreateBlogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	blog, err := api.blogSvc.Create(r.Context(), userID, req)
	if err != nil {
		var svcErr *blogs.ServiceError
		if errors.As(err, &svcErr) {
			status := http.StatusBadRequest
			if errors.Is(err, blogs.ErrNotCreator) {
				status = http.StatusForbidden
			}
			api.writeError(w, status, "invalid_request", svcErr.Message)
			return
		}
		api.logger.Error("Failed to publish blog post", logging.WithField("error", err.Error()))
		api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to publish blog post")
		return
	}

	api.writeJSON(w, http.StatusCreated, blog)
}

func (api *BlogAPI) get(w http.ResponseWriter, r *http.Request, id string) {
	viewerID := auth.GetUserID(r.Context())

	blog, err := api.blogSvc.Get(r.Context(), id, viewerID)
	if err != nil {
		api.logger.Error("Failed to get blog post", logging.WithField("error", err.Error()))
		api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to get blog post")
		return
	}
	if blog == nil {
		api.writeError(w, http.StatusNotFound, "not_found", "blog post not found")
		return
	}

	api.writeJSON(w, http.StatusOK, blog)
}

func (api *BlogAPI) update(w http.ResponseWriter, r *http.Request, id string) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		api.writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	var params models.UpdateBlogParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		api.writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	blog, err := api.blogSvc.Update(r.Context(), id, userID, params)
	if err != nil {
		var svcErr *blogs.ServiceError
		if errors.As(err, &svcErr) {
			api.writeError(w, http.StatusBadRequest, "invalid_request", svcErr.Message)
			return
		}
		if strings.Contains(err.Error(), "not found") {
			api.writeError(w, http.StatusNotFound, "not_found", "blog post not found")
			return
		}
		api.logger.Error("Failed to update blog post", logging.WithField("error", err.Error()))
		api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to update blog post")
		return
	}

	api.writeJSON(w, http.StatusOK, blog)
}

func (api *BlogAPI) delete(w http.ResponseWriter, r *http.Request, id string) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		api.writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	if err := api.blogSvc.Delete(r.Context(), id, userID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			api.writeError(w, http.StatusNotFound, "not_found", "blog post not found")
			return
		}
		api.logger.Error("Failed to delete blog post", logging.WithField("error", err.Error()))
		api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to delete blog post")
		return
	}

	api.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (api *BlogAPI) toggleLike(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := auth.GetUserID(r.Context())
	if userID == "" {
		api.writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	blog, err := api.blogSvc.Get(r.Context(), id, "")
	if err != nil {
		api.logger.Error("Failed to get blog post for like", logging.WithField("error", err.Error()))
		api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to toggle like")
		return
	}
	if blog == nil {
		api.writeError(w, http.StatusNotFound, "not_found", "blog post not found")
		return
	}

	result, err := api.socialSvc.ToggleLike(r.Context(), blog.ContentRef(), userID)
	if err != nil {
		api.logger.Error("Failed to toggle blog like", logging.WithField("error", err.Error()))
		api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to toggle like")
		return
	}

	api.writeJSON(w, http.StatusOK, result)
}

func (api *BlogAPI) markViewed(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := auth.GetUserID(r.Context())
	if userID == "" {
		api.writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	ref := models.ContentRef{Kind: models.KindBlog, ID: id}
	if err := api.socialSvc.MarkViewed(r.Context(), ref, userID); err != nil {
		api.logger.Error("Failed to mark blog viewed", logging.WithField("error", err.Error()))
		api.writeError(w, http.StatusInternalServerError, "internal_error", "failed to record view")
		return
	}

	api.writeJSON(w, http.StatusOK, map[string]string{"status": "viewed"})
}

func (api *BlogAPI) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (api *BlogAPI) writeError(w http.ResponseWriter, status int, code, message string) {
	api.writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}
