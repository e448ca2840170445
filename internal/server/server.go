// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/session"
	"inkwell/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	sessions       *session.Manager
	files          *storage.Store
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	userService    *service.UserService
	postService    *service.PostService
	commentService *service.CommentService
}

// NewServer creates a new server instance, establishing the database,
// Redis, and upload-directory dependencies from configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient, err := session.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized DB and
// Redis clients. Use this in tests or when a bootstrap layer
// establishes the connections.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	files, err := storage.NewStore(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("upload dir init failed: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	sessions := session.NewManager(redisClient, time.Duration(cfg.SessionTTLHours)*time.Hour)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		sessions:       sessions,
		files:          files,
		promMiddleware: promMiddleware(),
		userRepo:       userRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		userService:    service.NewUserService(userRepo),
		postService:    service.NewPostService(postRepo, commentRepo, files),
		commentService: service.NewCommentService(commentRepo, postRepo),
	}

	return server, nil
}

var (
	promOnce     sync.Once
	promInstance *fiberprometheus.FiberPrometheus
)

// promMiddleware returns the process-wide Prometheus middleware.
// Collectors register with the default registry exactly once, so
// constructing multiple servers (as tests do) is safe.
func promMiddleware() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInstance = fiberprometheus.New("inkwell-api")
	})
	return promInstance
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for log correlation
	app.Use(requestid.New())

	// Propagate request ID and user ID into the request context
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured request logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept",
	}))
}

// SetupRoutes registers all API routes on the Fiber app.
func (s *Server) SetupRoutes(app *fiber.App) {
	authRequired := middleware.SessionAuth(s.sessions)
	authOptional := middleware.OptionalSessionAuth(s.sessions)

	app.Get("/health", s.Health)

	app.Post("/register", s.Register)
	app.Post("/login", authOptional, s.Login)
	app.Post("/logout", authRequired, s.Logout)
	app.Get("/profile", authRequired, s.Profile)

	app.Post("/posts", authRequired, s.CreatePost)
	app.Get("/posts", s.GetPosts)
	app.Get("/posts/:id", s.GetPost)
	app.Put("/posts/:id/edit", authRequired, s.UpdatePost)
	app.Patch("/posts/:id/edit", authRequired, s.UpdatePost)
	app.Delete("/posts/:id", authRequired, s.DeletePost)

	app.Post("/posts/:id/comments", authRequired, s.CreateComment)
}

// Health handles GET /health.
func (s *Server) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Shutdown releases server-held resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			return err
		}
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}
