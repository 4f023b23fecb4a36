// Package server contains the HTTP and WebSocket handlers for the API.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	"pulse/internal/appstate"
	"pulse/internal/auth"
	"pulse/internal/config"
	"pulse/internal/docstore"
	"pulse/internal/feed"
	"pulse/internal/middleware"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config   *config.Config
	redis    *redis.Client
	store    docstore.Store
	auth     *auth.Service
	posts    *feed.PostService
	likes    *feed.LikeService
	comments *feed.CommentService
	profiles *feed.ProfileService
	state    *appstate.State

	projector     *feed.Projector
	stopProjector func()
}

// NewServer connects to the store and wires all services.
func NewServer(cfg *config.Config) (*Server, error) {
	store, err := docstore.Connect(cfg.RedisURL, docstore.Options{
		OpTimeout: cfg.StoreTimeout,
		Logger:    middleware.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("document store connection failed: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})

	return newServer(cfg, store, rdb)
}

// newServer wires a server on an existing store. Tests enter here with a
// miniredis-backed store.
func newServer(cfg *config.Config, store docstore.Store, rdb *redis.Client) (*Server, error) {
	authSvc, err := auth.NewService(store, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	return &Server{
		config:    cfg,
		redis:     rdb,
		store:     store,
		auth:      authSvc,
		posts:     feed.NewPostService(store),
		likes:     feed.NewLikeService(store),
		comments:  feed.NewCommentService(store),
		profiles:  feed.NewProfileService(store, middleware.Logger),
		state:     appstate.New(),
		projector: feed.NewProjector(store, middleware.Logger),
	}, nil
}

// StartProjection opens the live feed projection. Must be called once
// before the server can push feed snapshots.
func (s *Server) StartProjection(ctx context.Context) error {
	cancel, err := s.projector.Start(ctx, s.state)
	if err != nil {
		return fmt.Errorf("feed projection failed to start: %w", err)
	}
	s.stopProjector = cancel
	return nil
}

// Shutdown releases the projection and store connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.stopProjector != nil {
		s.stopProjector()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(requestid.New())
	app.Use(middleware.StructuredLogger())

	prometheus := fiberprometheus.New("pulse")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		MaxAge:       86400,
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/", s.HealthCheck)

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/reset-password", middleware.RateLimit(s.redis, 3, 10*time.Minute, "reset"), s.RequestPasswordReset)
	auth.Post("/reset-password/confirm", s.ConfirmPasswordReset)

	// Public feed
	api.Get("/feed", s.GetFeed)
	api.Get("/posts/:id", s.GetPost)
	api.Get("/posts/:id/comments", s.GetComments)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired(s.auth))
	protected.Get("/me", s.GetMyProfile)
	protected.Put("/me", s.UpdateMyProfile)
	protected.Post("/posts", s.CreatePost)
	protected.Post("/posts/:id/like", s.LikePost)
	protected.Post("/posts/:id/comments", s.AddComment)

	app.Get("/ws/feed", s.FeedStream())
}

// HealthCheck handles GET /api/
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// userID returns the authenticated principal id set by AuthRequired.
func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}
