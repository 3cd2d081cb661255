package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/revuo/reviews-api/internal/api/handler"
	"github.com/revuo/reviews-api/internal/api/middleware"
	"github.com/revuo/reviews-api/internal/core/ports"
	"github.com/revuo/reviews-api/internal/core/service"
	mongodb "github.com/revuo/reviews-api/internal/infrastructure/db/mongo"
	"github.com/revuo/reviews-api/internal/realtime"
)

// Deps carries everything the router needs to wire handlers.
type Deps struct {
	Logger      zerolog.Logger
	DB          *mongo.Database
	Redis       *redis.Client
	JWTSecret   string
	TokenTTL    time.Duration
	Images      ports.ImageStore
	Broadcaster ports.Broadcaster
	Hub         *realtime.Hub
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("reviews"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(deps.DB)
	reviewRepo := mongodb.NewReviewRepository(deps.DB)
	txRunner := mongodb.NewTxRunner(deps.DB.Client())

	authService := service.NewAuthService(userRepo, deps.JWTSecret, deps.TokenTTL)
	userService := service.NewUserService(userRepo, reviewRepo, txRunner, deps.Images, deps.Broadcaster, deps.Logger)
	reviewService := service.NewReviewService(reviewRepo, userRepo, txRunner, deps.Images, deps.Broadcaster, deps.Logger)
	imageService := service.NewImageService(reviewRepo, deps.Images, deps.Broadcaster, deps.Logger)

	userHandler := handler.NewUserHandler(authService, userService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	imageHandler := handler.NewImageHandler(imageService)
	auth := middleware.Auth(deps.JWTSecret)

	// --- Review routes ---
	reviews := e.Group("/api/reviews")
	reviews.GET("", reviewHandler.List)
	reviews.GET("/:id", reviewHandler.Get)
	reviews.GET("/:userId/reviews", reviewHandler.ListByUser)
	reviews.GET("/:name/count", reviewHandler.Count)
	reviews.POST("", reviewHandler.Create, auth)
	reviews.PATCH("/:id", reviewHandler.Update, auth)
	reviews.PATCH("/:id/images", imageHandler.Attach, auth)
	reviews.PATCH("/:id/images/delete", imageHandler.Detach, auth)
	reviews.DELETE("/:id", reviewHandler.Delete, auth)

	// --- User routes ---
	users := e.Group("/api/users")
	users.GET("", userHandler.Me, auth)
	users.POST("/signup", userHandler.Signup)
	users.POST("/login", userHandler.Login)
	users.PATCH("/:id", userHandler.Update, auth)
	users.DELETE("/:id", userHandler.Delete, auth)

	// --- Realtime channel ---
	e.GET("/ws", deps.Hub.Handle)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
