package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fixlab/api-core/internal/alert"
	"github.com/fixlab/api-core/internal/config"
	"github.com/fixlab/api-core/internal/handler"
	"github.com/fixlab/api-core/internal/meter"
	"github.com/fixlab/api-core/internal/middleware"
	"github.com/fixlab/api-core/internal/monitor"
	"github.com/fixlab/api-core/internal/service"
	"github.com/fixlab/api-core/internal/storage"
	"github.com/fixlab/api-core/internal/store"
)

type Server struct {
	router      *gin.Engine
	config      *config.Config
	logger      *zap.Logger
	redis       *storage.RedisClient
	postgres    *storage.Postgres
	authService *service.AuthService
	meter       *meter.Meter
	engine      *alert.Engine
	monitor     *monitor.ErrorMonitor
	httpServer  *http.Server
}

// New wires the gating core around the given principal store. Redis and
// Postgres are optional collaborators; nil disables the key cache and the
// database health check respectively.
func New(cfg *config.Config, logger *zap.Logger, principals store.PrincipalStore, redis *storage.RedisClient, postgres *storage.Postgres) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	engine := alert.NewEngine(alert.NewLogSink(logger))
	errorMonitor := monitor.NewErrorMonitor(engine, logger)
	authService := service.NewAuthService(principals, redis, logger, cfg.Auth.JWTSecret, cfg.Auth.TokenExpiryHours)
	usageMeter := meter.New(principals, logger)

	s := &Server{
		router:      router,
		config:      cfg,
		logger:      logger,
		redis:       redis,
		postgres:    postgres,
		authService: authService,
		meter:       usageMeter,
		engine:      engine,
		monitor:     errorMonitor,
	}

	s.setupMiddleware()
	s.setupRoutes(principals)

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery(s.logger, s.monitor))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.ErrorTrap(s.monitor))
}

func (s *Server) setupRoutes(principals store.PrincipalStore) {
	authHandler := handler.NewAuthHandler(s.authService)
	adminHandler := handler.NewAdminHandler(principals, s.engine)

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/pricing", handler.Pricing)
	s.router.POST("/register", authHandler.Register)
	s.router.POST("/login", authHandler.Login)

	authed := s.router.Group("")
	authed.Use(middleware.Authenticate(s.authService))
	{
		authed.GET("/me", authHandler.Me)
	}

	metered := s.router.Group("/api/v1")
	metered.Use(middleware.Authenticate(s.authService))
	metered.Use(middleware.MeterUsage(s.meter))
	{
		metered.POST("/analyze", handler.ComingSoon("code analysis"))
		metered.POST("/fix", handler.ComingSoon("automated fixes"))
	}

	admin := s.router.Group("/admin")
	admin.Use(middleware.Authenticate(s.authService))
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/users", adminHandler.Users)
		admin.GET("/alerts", adminHandler.Alerts)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if s.redis != nil {
		redisHealthy := s.redis.Ping(c.Request.Context()) == nil
		checks["redis"] = redisHealthy
		healthy = healthy && redisHealthy
	}

	if s.postgres != nil {
		dbHealthy := s.postgres.Ping(c.Request.Context()) == nil
		checks["database"] = dbHealthy
		healthy = healthy && dbHealthy
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !healthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    status,
		"service":   "api-core",
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

// Monitor returns the error monitor feeding the alert engine.
func (s *Server) Monitor() *monitor.ErrorMonitor {
	return s.monitor
}

// Engine returns the alert engine.
func (s *Server) Engine() *alert.Engine {
	return s.engine
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	s.logger.Info("starting server",
		zap.String("addr", addr),
		zap.String("environment", s.config.Server.Environment))

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
