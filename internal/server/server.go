// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mitronepal/JobMandu/docs" // swagger docs
	"github.com/mitronepal/JobMandu/internal/assist"
	"github.com/mitronepal/JobMandu/internal/cache"
	"github.com/mitronepal/JobMandu/internal/config"
	"github.com/mitronepal/JobMandu/internal/database"
	"github.com/mitronepal/JobMandu/internal/featureflags"
	"github.com/mitronepal/JobMandu/internal/feed"
	"github.com/mitronepal/JobMandu/internal/geocode"
	"github.com/mitronepal/JobMandu/internal/middleware"
	"github.com/mitronepal/JobMandu/internal/models"
	"github.com/mitronepal/JobMandu/internal/notifications"
	"github.com/mitronepal/JobMandu/internal/repository"
	"github.com/mitronepal/JobMandu/internal/service"
	"github.com/mitronepal/JobMandu/internal/support"
	"github.com/mitronepal/JobMandu/internal/validation"

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
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	mongo          *mongo.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	stores       repository.Stores
	engine       *feed.Engine
	broker       *feed.Broker
	notifier     *notifications.Notifier
	feedHub      *notifications.FeedHub
	featureFlags *featureflags.Manager
	support      support.Linker

	profiles   *service.ProfileService
	listings   *service.ListingService
	posting    *service.PostingService
	moderation *service.ModerationService
	views      *service.ViewService

	assist  *assist.Client
	geocode *geocode.Client
}

// NewServer connects to the configured stores and creates a server.
func NewServer(cfg *config.Config) (*Server, error) {
	// Redis is optional; without it the server runs single-instance.
	redisClient := cache.Open(context.Background(), cfg.RedisURL)

	if cfg.StoreDriver != config.StoreMongo {
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		return NewServerWithDeps(cfg, db, redisClient)
	}

	mongoClient, mongoDB, err := database.ConnectMongo(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	s := NewServerWithStores(cfg, nil, redisClient, repository.NewMongoStores(mongoDB))
	s.mongo = mongoClient
	return s, nil
}

// NewServerWithDeps creates a Server over the relational store using
// already-initialized dependencies. redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	return NewServerWithStores(cfg, db, redisClient, repository.NewSQLStores(db)), nil
}

// NewServerWithStores wires services, the feed broker and the live feed hub
// over stores. db is only used for readiness checks and may be nil.
func NewServerWithStores(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, stores repository.Stores) *Server {
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("jobmandu-api"),
		stores:         stores,
		engine:         feed.NewEngine(nil),
		broker:         feed.NewBroker(stores.Listings),
		feedHub:        notifications.NewFeedHub(),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		support:        support.Linker{Number: cfg.SupportWhatsApp},
	}

	for _, entry := range s.featureFlags.Invalid() {
		middleware.Logger.Warn("ignoring feature flag entry", slog.String("entry", entry))
	}

	s.notifier = notifications.NewNotifier(redisClient, func(ctx context.Context, _ string) {
		_ = s.broker.Refresh(ctx)
	})

	s.profiles = service.NewProfileService(stores.Profiles, redisClient)
	s.listings = service.NewListingService(stores.Listings, s.notifier)
	s.posting = service.NewPostingService(stores.Listings, validation.New(), s.notifier)
	s.moderation = service.NewModerationService(stores.Listings, suspender{s.profiles, s.feedHub}, s.notifier)
	s.views = service.NewViewService(stores.Listings, s.notifier)

	s.assist = assist.NewClient(assist.Config{
		BaseURL: cfg.AssistBaseURL,
		APIKey:  cfg.AssistAPIKey,
		Model:   cfg.AssistModel,
		Timeout: cfg.AssistTimeout,
	}, nil)
	s.geocode = geocode.NewClient(geocode.Config{
		BaseURL:   cfg.GeocodeBaseURL,
		UserAgent: cfg.GeocodeUserAgent,
		Timeout:   cfg.GeocodeTimeout,
	}, nil, redisClient)

	return s
}

// suspender blocks a profile and drops its live feed connections.
type suspender struct {
	*service.ProfileService
	hub *notifications.FeedHub
}

func (p suspender) Block(ctx context.Context, uid string) error {
	if err := p.ProfileService.Block(ctx, uid); err != nil {
		return err
	}
	p.hub.Disconnect(uid)
	return nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithAppError(c, models.NewRateLimitedError("api"))
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "JobMandu Backend Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	api.Get("/meta", s.GetMeta)
	api.Get("/features", s.OptionalAuth(), s.GetFeatureFlags)
	api.Get("/support/contact", s.GetSupportContact)

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)
	auth.Get("/me", s.AuthRequired(), s.GetAuthState)

	profile := api.Group("/profile", s.AuthRequired())
	profile.Post("/", s.SelectRole)
	profile.Get("/me", s.GetMyProfile)

	listings := api.Group("/listings")
	listings.Get("/", s.OptionalAuth(), s.GetFeed)
	listings.Post("/validate", s.AuthRequired(), s.ActiveRequired(), s.ValidateListing)
	listings.Post("/", s.AuthRequired(), s.ActiveRequired(),
		middleware.RateLimit(s.redis, 10, time.Hour, "post_listing"), s.CreateListing)
	listings.Get("/:id", s.AuthRequired(), s.ActiveRequired(), s.GetListing)
	listings.Post("/:id/report", s.AuthRequired(), s.ActiveRequired(),
		middleware.RateLimit(s.redis, 20, time.Hour, "report"), s.ReportListing)
	listings.Post("/:id/status", s.AuthRequired(), s.ActiveRequired(), s.ToggleListingStatus)
	listings.Delete("/:id", s.AuthRequired(), s.ActiveRequired(), s.DeleteListing)

	api.Post("/assist/description", s.AuthRequired(), s.ActiveRequired(),
		middleware.RateLimit(s.redis, 20, time.Hour, "assist"), s.GenerateDescription)
	api.Get("/geo/reverse", s.AuthRequired(),
		middleware.RateLimit(s.redis, 60, time.Minute, "geocode"), s.ReverseGeocode)

	api.Post("/ws/ticket", s.AuthRequired(), s.IssueWSTicket)
	api.Get("/ws/feed", s.AuthRequired(), s.WebSocketFeedHandler())
}

// LivenessCheck reports that the process is up.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the service can take traffic. Redis is optional, so only
// the document stores decide readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	checks := fiber.Map{}
	healthy := true

	if s.db != nil {
		dbStatus := "healthy"
		sqlDB, err := s.db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "unhealthy"
			healthy = false
		}
		checks["database"] = dbStatus
	}

	if s.mongo != nil {
		mongoStatus := "healthy"
		if err := s.mongo.Ping(ctx, nil); err != nil {
			mongoStatus = "unhealthy"
			healthy = false
		}
		checks["mongo"] = mongoStatus
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}
	checks["redis"] = redisStatus

	status := fiber.StatusOK
	overall := "healthy"
	if !healthy {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"version": "1.0.0",
		"status":  overall,
		"checks":  checks,
		"time":    time.Now(),
	})
}

// AuthRequired returns the authentication middleware. A single-use WebSocket
// ticket is accepted first, then a Bearer token.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isWSPath := strings.HasPrefix(c.Path(), "/api/ws/feed")

		if ticket := c.Query("ticket"); ticket != "" {
			if userID, ok := s.consumeWSTicket(c.UserContext(), ticket); ok {
				return s.authenticated(c, userID)
			}
			if isWSPath {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
		}

		tokenString := middleware.BearerToken(c)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := middleware.ParseToken(s.config.JWTSecret, tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(capitalize(err.Error())))
		}

		if s.isRevoked(c.UserContext(), claims.JTI) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		}

		c.Locals("jti", claims.JTI)
		return s.authenticated(c, claims.UserID)
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := middleware.ParseToken(s.config.JWTSecret, middleware.BearerToken(c))
		if err != nil || s.isRevoked(c.UserContext(), claims.JTI) {
			return c.Next()
		}
		return s.authenticated(c, claims.UserID)
	}
}

func (s *Server) authenticated(c *fiber.Ctx, userID string) error {
	c.Locals("userID", userID)
	c.SetUserContext(middleware.WithUser(c.UserContext(), userID))
	return c.Next()
}

func (s *Server) isRevoked(ctx context.Context, jti string) bool {
	if jti == "" || s.redis == nil {
		return false
	}
	n, err := s.redis.Exists(ctx, cache.BlacklistKey(jti)).Result()
	return err == nil && n > 0
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName:   "JobMandu API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if err := s.startFeed(ctx); err != nil {
		return err
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// startFeed loads the first snapshot and subscribes to change signals from
// other instances. Both run concurrently; a failed subscription only degrades
// the server to local change signals.
func (s *Server) startFeed(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.broker.Refresh(gctx)
	})
	g.Go(func() error {
		err := s.notifier.StartListingsSubscriber(ctx, func(string) {
			_ = s.broker.Refresh(ctx)
		})
		if err != nil {
			middleware.Logger.Warn("listing change subscription unavailable", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("initial feed snapshot failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.feedHub != nil {
		if err := s.feedHub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down feed hub", slog.String("error", err.Error()))
		}
	}

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
			}
		}
	}

	if s.mongo != nil {
		if err := s.mongo.Disconnect(ctx); err != nil {
			middleware.Logger.Error("error disconnecting mongo", slog.String("error", err.Error()))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
