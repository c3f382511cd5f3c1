// Package app wires configuration, storage, and services together.
package app

import (
	"context"
	"time"

	"github.com/lcharvet/fotoblog/internal/auth"
	"github.com/lcharvet/fotoblog/internal/blogs"
	"github.com/lcharvet/fotoblog/internal/cache"
	"github.com/lcharvet/fotoblog/internal/config"
	"github.com/lcharvet/fotoblog/internal/database"
	"github.com/lcharvet/fotoblog/internal/feed"
	"github.com/lcharvet/fotoblog/internal/httpapi"
	"github.com/lcharvet/fotoblog/internal/images"
	"github.com/lcharvet/fotoblog/internal/logging"
	"github.com/lcharvet/fotoblog/internal/moderation"
	"github.com/lcharvet/fotoblog/internal/photos"
	"github.com/lcharvet/fotoblog/internal/ratelimit"
	"github.com/lcharvet/fotoblog/internal/social"
	"github.com/lcharvet/fotoblog/internal/tagging"
)

// App holds all application dependencies
type App struct {
	Config         *config.Config
	Logger         *logging.Logger
	Cache          cache.Cache
	FeedSvc        *feed.Service
	PhotoSvc       *photos.Service
	BlogSvc        *blogs.Service
	SocialSvc      *social.Service
	ImageSvc       *images.Service
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	HTTPServer     *httpapi.Server

	db          *database.DB
	redisClient *cache.RedisCache
	authLimiter *ratelimit.Limiter
}

// New creates and initializes a new App instance
func New(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	app.Logger = app.initLogger()
	app.Cache = app.initCache()
	app.authLimiter = ratelimit.New(cfg.Server.RateLimitDur)

	if err := app.initDatabaseServices(); err != nil {
		return nil, err
	}

	app.initHTTPServer()

	return app, nil
}

// Run starts the HTTP server and blocks until it stops.
func (a *App) Run(ctx context.Context) error {
	a.Logger.Info("Starting HTTP server", logging.WithField("addr", a.Config.Server.HTTPAddr))
	return a.HTTPServer.Start(a.Config.Server.HTTPAddr)
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error("HTTP server shutdown error", logging.WithField("error", err.Error()))
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.Logger.Error("Database close error", logging.WithField("error", err.Error()))
		}
	}

	return nil
}

func (a *App) initLogger() *logging.Logger {
	level := logging.LevelInfo
	switch a.Config.Logging.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	return logging.New(level)
}

func (a *App) initCache() cache.Cache {
	switch a.Config.Cache.Backend {
	case "redis":
		a.Logger.Info("Using Redis cache backend", logging.WithField("addr", a.Config.Cache.RedisAddr))
		redisCache, err := cache.NewRedis(cache.RedisConfig{
			Addr: a.Config.Cache.RedisAddr,
		}, a.Config.Cache.TTL)
		if err != nil {
			a.Logger.Error("Failed to connect to Redis, falling back to memory cache", logging.WithField("error", err.Error()))
			return cache.NewMemory(a.Config.Cache.TTL)
		}
		a.redisClient = redisCache
		return redisCache
	default:
		a.Logger.Info("Using in-memory cache backend")
		return cache.NewMemory(a.Config.Cache.TTL)
	}
}

func (a *App) initDatabaseServices() error {
	dbConfig := database.Config{
		Host:     a.Config.Database.Host,
		Port:     a.Config.Database.Port,
		User:     a.Config.Database.User,
		Password: a.Config.Database.Password,
		Database: a.Config.Database.Database,
		SSLMode:  a.Config.Database.SSLMode,
	}

	db, err := database.New(dbConfig)
	if err != nil {
		return err
	}

	a.Logger.Info("Connected to PostgreSQL")
	if err := db.Migrate(context.Background()); err != nil {
		db.Close()
		return err
	}
	a.db = db

	userStore := database.NewUserStore(db)
	photoStore := database.NewPhotoStore(db)
	blogStore := database.NewBlogStore(db)
	engagementStore := database.NewEngagementStore(db)
	assetStore := database.NewImageAssetStore(db)

	a.AuthService = auth.NewService(userStore, a.Config.Auth, a.Logger)
	a.AuthMiddleware = auth.NewMiddleware(a.AuthService)

	a.ImageSvc = a.initImageService(assetStore)

	tagger := tagging.New()

	a.FeedSvc = feed.NewService(photoStore, blogStore, engagementStore, userStore, a.feedConfig(), a.Logger)
	a.PhotoSvc = photos.NewService(photoStore, userStore, a.ImageSvc, engagementStore, tagger, a.Logger)
	a.BlogSvc = blogs.NewService(blogStore, photoStore, userStore, engagementStore, tagger, a.Logger)
	a.SocialSvc = social.NewService(userStore, engagementStore, photoStore, blogStore, a.Cache, a.Logger)

	a.Logger.Info("Services initialized")
	return nil
}

func (a *App) initImageService(assetStore *database.ImageAssetStore) *images.Service {
	modCfg := a.Config.Moderation

	var detector moderation.Detector
	var moderator images.Moderator
	if modCfg.Enabled && modCfg.AWSRegion != "" {
		awsDetector, err := moderation.NewAWSDetector(context.Background(), modCfg.AWSRegion)
		if err != nil {
			a.Logger.Warn("Failed to initialize Rekognition, uploads will be queued for review", logging.WithField("error", err.Error()))
		} else {
			detector = awsDetector
		}
	} else if !modCfg.Enabled {
		a.Logger.Info("Image moderation disabled, approving uploads automatically")
		moderator = &moderation.MockModerator{}
	}

	if detector != nil {
		moderator = moderation.NewService(detector, modCfg.RejectConfidence)
	}

	var pending images.PendingStore
	if a.redisClient != nil {
		pending = images.NewRedisPendingStore(a.redisClient.Client(), modCfg.PendingUploadTTL)
		a.Logger.Info("Using Redis for pending uploads")
	} else {
		pending = images.NewInMemoryPendingStore(modCfg.PendingUploadTTL)
	}

	return images.NewService(moderator, assetStore, pending, modCfg.Timeout)
}

func (a *App) feedConfig() feed.Config {
	fc := a.Config.Feed
	cfg := feed.DefaultConfig()

	cfg.FollowedPercent = fc.FollowedPercent
	cfg.UltraNewPercent = fc.UltraNewPercent
	cfg.PopularPercent = fc.PopularPercent
	cfg.CreatorDiscoveryPercent = fc.CreatorDiscoveryPercent
	cfg.BlogsPercent = fc.BlogsPercent
	cfg.RandomPercent = fc.RandomPercent

	cfg.CandidateRecentDays = fc.CandidateRecentDays
	cfg.CandidateTopLiked = fc.CandidateTopLiked
	cfg.CandidateMax = fc.CandidateMax
	cfg.UltraNewWindow = time.Duration(fc.UltraNewWindowHours) * time.Hour
	cfg.PopularityThreshold = fc.PopularityThreshold
	cfg.AllowViewedIfInsufficient = fc.AllowViewedIfInsufficient

	return cfg
}

func (a *App) initHTTPServer() {
	a.HTTPServer = httpapi.New(
		a.FeedSvc,
		a.PhotoSvc,
		a.BlogSvc,
		a.SocialSvc,
		a.ImageSvc,
		a.AuthService,
		a.AuthMiddleware,
		a.authLimiter,
		a.Config.Feed,
		a.Logger,
	)
}
