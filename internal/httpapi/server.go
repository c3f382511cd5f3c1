// Package httpapi exposes the application over HTTP/JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/lcharvet/fotoblog/internal/auth"
	"github.com/lcharvet/fotoblog/internal/blogs"
	"github.com/lcharvet/fotoblog/internal/config"
	"github.com/lcharvet/fotoblog/internal/feed"
	"github.com/lcharvet/fotoblog/internal/images"
	"github.com/lcharvet/fotoblog/internal/logging"
	"github.com/lcharvet/fotoblog/internal/photos"
	"github.com/lcharvet/fotoblog/internal/ratelimit"
	"github.com/lcharvet/fotoblog/internal/social"
)

type Server struct {
	feedSvc        *feed.Service
	photoSvc       *photos.Service
	blogSvc        *blogs.Service
	socialSvc      *social.Service
	imageSvc       *images.Service
	authSvc        *auth.Service
	authMiddleware *auth.Middleware
	limiter        *ratelimit.Limiter
	feedCfg        config.FeedConfig
	logger         *logging.Logger
	server         *http.Server
}

func New(feedSvc *feed.Service, photoSvc *photos.Service, blogSvc *blogs.Service, socialSvc *social.Service, imageSvc *images.Service, authSvc *auth.Service, authMiddleware *auth.Middleware, limiter *ratelimit.Limiter, feedCfg config.FeedConfig, logger *logging.Logger) *Server {
	return &Server{
		feedSvc:        feedSvc,
		photoSvc:       photoSvc,
		blogSvc:        blogSvc,
		socialSvc:      socialSvc,
		imageSvc:       imageSvc,
		authSvc:        authSvc,
		authMiddleware: authMiddleware,
		limiter:        limiter,
		feedCfg:        feedCfg,
		logger:         logger,
	}
}

func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	// Home feed
	mux.HandleFunc("/api/feed", s.corsMiddleware(s.authMiddleware.OptionalAuth(s.handleGetFeed)))

	// Auth routes
	authAPI := NewAuthAPI(s.authSvc, s.authMiddleware, s.limiter, s.logger)
	authAPI.RegisterRoutes(mux, s.corsMiddleware)

	// Photo routes
	photoAPI := NewPhotoAPI(s.photoSvc, s.socialSvc, s.authMiddleware, s.logger)
	photoAPI.RegisterRoutes(mux, s.corsMiddleware)

	// Blog routes
	blogAPI := NewBlogAPI(s.blogSvc, s.socialSvc, s.authMiddleware, s.logger)
	blogAPI.RegisterRoutes(mux, s.corsMiddleware)

	// Social graph and profiles
	socialAPI := NewSocialAPI(s.socialSvc, s.authMiddleware, s.logger)
	socialAPI.RegisterRoutes(mux, s.corsMiddleware)

	// Image upload + serving
	if s.imageSvc != nil {
		imageAPI := NewImageAPI(s.imageSvc, s.authMiddleware, s.logger)
		imageAPI.RegisterRoutes(mux, s.corsMiddleware)
	}

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("HTTP API server starting", logging.WithField("addr", addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// handleGetFeed serves GET /api/feed. Anonymous requests get a generic
// feed; authenticated requests get one biased by follows and view history.
func (s *Server) handleGetFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := s.feedCfg.DefaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > s.feedCfg.MaxLimit {
		limit = s.feedCfg.MaxLimit
	}

	viewerID := auth.GetUserID(r.Context())

	response, err := s.feedSvc.HomeFeed(r.Context(), viewerID, limit)
	if err != nil {
		s.logger.Error("Failed to compose feed", logging.WithField("error", err.Error()))
		s.writeError(w, http.StatusInternalServerError, "internal_error", "failed to compose feed")
		return
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}

// clientAddr extracts the caller's address for rate limiting, preferring
// the first X-Forwarded-For hop when present.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
