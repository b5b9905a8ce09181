package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/api/handlers"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/api/middleware"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/api/routes"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/attachment"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/directory"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/event"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/location"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/notification"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/roles"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/infrastructure/cache"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/infrastructure/persistence/postgres/connection"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/infrastructure/persistence/postgres/migrations"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/infrastructure/scheduler"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/pkg/config"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/pkg/logger"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/pkg/security/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// RequestLoggerMiddleware logs all incoming HTTP requests
func RequestLoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("Request completed",
			zap.String("path", path),
			zap.String("method", method),
			zap.Int("status", c.Writer.Status()),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("") // Empty string will make it search in default locations
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	log := logger.NewLoggerWithLevel(cfg.Logging.Level)
	defer log.Sync()

	log.Info("Configuration loaded successfully")
	log.Info("Server mode: " + cfg.Server.Mode)

	// Set up Gin
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	gin.DefaultWriter = os.Stdout

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggerMiddleware(log))
	router.Use(middleware.NewMetricsMiddleware().CollectMetrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowedOrigins,
		AllowMethods: cfg.CORS.AllowedMethods,
		AllowHeaders: append(cfg.CORS.AllowedHeaders,
			"Accept-Encoding",
			"Content-Type",
			"Authorization",
		),
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
		},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	// Connect to database
	db, err := connection.NewDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if err := migrations.AutoMigrate(db, log.Logger); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize Redis
	redisConfig := cache.NewConfigFromEnv(cfg)
	redisClient, err := cache.NewRedisClient(redisConfig)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize logrus logger for the notification dispatcher
	mailLogger := logrus.New()
	mailLogger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Server.Mode == "production" {
		mailLogger.SetLevel(logrus.InfoLevel)
	} else {
		mailLogger.SetLevel(logrus.DebugLevel)
	}

	// Initialize repositories
	directoryRepo := directory.NewRepository(db.DB)
	locationRepo := location.NewRepository(db.DB)
	attachmentRepo := attachment.NewRepository(db.DB)
	rolesRepo := roles.NewRepository(db.DB)
	eventRepo := event.NewRepository(db.DB)

	// Initialize services
	directoryService := directory.NewService(directoryRepo, redisClient, log.Logger)
	locationService := location.NewService(locationRepo, log.Logger)
	attachmentService := attachment.NewService(attachmentRepo, log.Logger)
	rolesService := roles.NewService(rolesRepo, log.Logger)

	// Mail transport: real SMTP when configured, otherwise log-only
	var transport notification.Transport
	if cfg.SMTP.Host != "" {
		transport = notification.NewSMTPTransport(cfg.SMTP)
		log.Info("SMTP transport configured", zap.String("host", cfg.SMTP.Host))
	} else {
		transport = notification.NewLogTransport(mailLogger)
		log.Warn("SMTP host not configured, notifications will only be logged")
	}
	dispatcher := notification.NewDispatcher(directoryService, transport, mailLogger)

	eventService := event.NewService(eventRepo, locationRepo, attachmentRepo, directoryRepo, dispatcher, log.Logger)

	// Initialize and start the reminder scheduler
	if cfg.Reminder.Enabled {
		reminderScheduler := scheduler.NewScheduler(eventService, cfg.Reminder.CronSpec, log)
		if err := reminderScheduler.Start(); err != nil {
			log.Fatal("Failed to start reminder scheduler", zap.Error(err))
		}
		defer reminderScheduler.Stop()
	} else {
		log.Warn("Reminder scheduler disabled by configuration")
	}

	// Initialize handlers
	jwtService := auth.NewJWTService(cfg.Auth)
	authHandler := handlers.NewAuthHandler(directoryService, rolesService, jwtService)
	directoryHandler := handlers.NewDirectoryHandler(directoryService)
	locationHandler := handlers.NewLocationHandler(locationService)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentService)
	rolesHandler := handlers.NewRolesHandler(rolesService)
	eventHandler := handlers.NewEventHandler(eventService)

	// Register routes
	routes.SetupHealthRoutes(router)

	authRoutes := routes.NewAuthRoutes(authHandler)
	authRoutes.RegisterRoutes(router)
	log.Info("Registered auth routes at /api/auth")

	directoryRoutes := routes.NewDirectoryRoutes(directoryHandler, cfg.Auth.JWTSecret)
	directoryRoutes.RegisterRoutes(router)
	log.Info("Registered directory routes at /api/users and /api/departments")

	locationRoutes := routes.NewLocationRoutes(locationHandler, cfg.Auth.JWTSecret)
	locationRoutes.RegisterRoutes(router)
	log.Info("Registered location routes at /api/locations")

	attachmentRoutes := routes.NewAttachmentRoutes(attachmentHandler, cfg.Auth.JWTSecret)
	attachmentRoutes.RegisterRoutes(router)
	log.Info("Registered attachment routes at /api/attachments")

	rolesRoutes := routes.NewRolesRoutes(rolesHandler, cfg.Auth.JWTSecret)
	rolesRoutes.RegisterRoutes(router)
	log.Info("Registered role routes at /api/roles")

	eventRoutes := routes.NewEventRoutes(eventHandler, cfg.Auth.JWTSecret)
	eventRoutes.RegisterRoutes(router)
	log.Info("Registered event routes at /api/events")

	// Start server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info(fmt.Sprintf("Server starting on port %d", cfg.Server.Port))
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info("Shutting down server...")
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited properly")
}
