// Package server exposes the exchange workflow over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "interu/docs" // swagger docs
	"interu/internal/cache"
	"interu/internal/config"
	"interu/internal/database"
	"interu/internal/featureflags"
	"interu/internal/middleware"
	"interu/internal/models"
	"interu/internal/repository"
	"interu/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	store          *repository.Store
	featureFlags   *featureflags.Manager

	notificationService *service.NotificationService
	profileService      *service.ProfileService
	postService         *service.PostService
	chatService         *service.ChatService
	ratingService       *service.RatingService
	moderationService   *service.ModerationService
}

// NewServer connects to the configured database and Redis and wires the services.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional; a nil client disables caching and revocation checks.
	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, fmt.Errorf("config and database are required")
	}
	if redisClient != nil && cache.GetClient() != redisClient {
		cache.SetClient(redisClient)
	}

	store := repository.NewStore(db)
	flags := featureflags.NewManager(cfg.FeatureFlags)
	notifications := service.NewNotificationService(store)

	return &Server{
		config:              cfg,
		db:                  db,
		redis:               redisClient,
		promMiddleware:      middleware.InitMetrics("interu-api"),
		store:               store,
		featureFlags:        flags,
		notificationService: notifications,
		profileService:      service.NewProfileService(store),
		postService:         service.NewPostService(store),
		chatService:         service.NewChatService(store, notifications),
		ratingService:       service.NewRatingService(store, notifications, flags),
		moderationService:   service.NewModerationService(store, store.Users.IsModerator, flags),
	}, nil
}

// NewApp builds a Fiber app with the error handler, middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Interu API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, &models.AppError{
					Code:    fiberErrorCode(fe.Code),
					Message: fe.Message,
				})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func fiberErrorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return models.CodeNotFound
	case fiber.StatusUnauthorized:
		return models.CodeUnauthorized
	case fiber.StatusForbidden:
		return models.CodeForbidden
	case fiber.StatusInternalServerError:
		return models.CodeInternal
	default:
		return models.CodeInvalidRequest
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected browser requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Interu Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Public feed
	publicPosts := api.Group("/posts")
	publicPosts.Get("/", s.GetPosts)

	protected := api.Group("", s.AuthRequired())

	protected.Post("/auth/logout", s.Logout)

	profile := protected.Group("/profile")
	profile.Get("/", s.GetMyProfile)
	profile.Post("/", s.CreateMyProfile)
	profile.Put("/", s.UpdateMyProfile)

	posts := protected.Group("/posts")
	// Specific routes before the generic /:id
	posts.Get("/mine", s.GetMyPosts)
	posts.Post("/", middleware.RateLimit(s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	chats := protected.Group("/chats")
	chats.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "open_chat"), s.OpenChat)
	chats.Get("/", s.GetChats)
	chats.Patch("/:id/complete", s.CompleteChat)
	chats.Patch("/:id/read", s.MarkChatRead)
	chats.Get("/:id", s.GetChat)

	protected.Post("/messages", middleware.RateLimit(s.redis, 30, time.Minute, "send_message"), s.SendMessage)
	protected.Post("/ratings", middleware.RateLimit(s.redis, 10, time.Minute, "submit_rating"), s.SubmitRating)

	notifications := protected.Group("/notifications")
	notifications.Get("/", s.GetNotifications)
	notifications.Get("/unread-count", s.GetUnreadCount)
	notifications.Post("/mark-all", s.MarkAllNotificationsRead)
	notifications.Patch("/:id", s.MarkNotificationRead)

	reports := protected.Group("/reports")
	reports.Post("/", middleware.RateLimit(s.redis, 5, 10*time.Minute, "file_report"), s.FileReport)
	reports.Get("/", s.GetReports)
	reports.Patch("/:id", s.ResolveReport)

	admin := protected.Group("/admin", s.ModeratorRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings the database and Redis. Redis is required for
// readiness since rate limiting and revocation depend on it.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app and blocks serving on the configured port.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown stops the HTTP server and closes the database and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if s.redis == cache.GetClient() {
			cache.SetClient(nil)
		}
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
