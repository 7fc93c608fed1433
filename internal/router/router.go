package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"salon_backend/internal/config"
	"salon_backend/internal/handlers"
	"salon_backend/internal/metrics"
	"salon_backend/internal/middleware"
	"salon_backend/internal/notifications"
	"salon_backend/internal/repositories"
	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler mounted under /api.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Client  *handlers.ClientHandler
	Service *handlers.ServiceHandler
	Visit   *handlers.VisitHandler
	Report  *handlers.ReportHandler
}

// NewEngine creates a gin engine with the shared middleware stack and the
// ops routes (/ping, /metrics).
func NewEngine(cfg config.AppConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(utils.GinLogger())
	engine.Use(metrics.GinMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	return engine
}

// Setup initializes the routing for the application. The returned func waits
// for background work started by requests and must run before db is closed.
func Setup(engine *gin.Engine, db *sql.DB, cfg *config.Config, notifier notifications.Notifier) func(ctx context.Context) error {
	// Initialize Repositories
	tx := repositories.NewTransactor(db)
	authRepo := repositories.NewAuthRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	serviceRepo := repositories.NewServiceRepository(db)
	visitRepo := repositories.NewVisitRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	// Initialize Services
	authService := services.NewAuthService(authRepo, tx, cfg.Auth.BcryptCost)
	clientService := services.NewClientService(clientRepo, visitRepo, tx)
	catalogService := services.NewCatalogService(serviceRepo, tx)
	visitService := services.NewVisitService(visitRepo, clientRepo, serviceRepo, tx, notifier)
	reportService := services.NewReportService(reportRepo, visitRepo, clientRepo, serviceRepo, authRepo)

	// Initialize Handlers
	h := Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		Client:  handlers.NewClientHandler(clientService),
		Service: handlers.NewServiceHandler(catalogService),
		Visit:   handlers.NewVisitHandler(visitService),
		Report:  handlers.NewReportHandler(reportService),
	}
	limiter := middleware.NewIPRateLimiter(cfg.App.LoginRateLimit, cfg.App.LoginRateBurst)
	RegisterRoutes(engine, h, limiter)
	return visitService.Drain
}

// RegisterRoutes mounts the API. Everything except login needs a token.
func RegisterRoutes(engine *gin.Engine, h Handlers, loginLimiter *middleware.IPRateLimiter) {
	api := engine.Group("/api")

	SetupPublicAuthRoutes(api.Group("/auth"), h.Auth, loginLimiter)

	authenticated := api.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), h.Auth)
		SetupClientRoutes(authenticated, h.Client)
		SetupServiceRoutes(authenticated, h.Service)
		SetupVisitRoutes(authenticated, h.Visit)
		SetupReportRoutes(authenticated, h.Report)
	}
}
