package main

import (
	"context"
	"log"

	"agroterms/config"
	"agroterms/handlers"
	"agroterms/middleware"
	"agroterms/models"
	"agroterms/routes"
	"agroterms/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize WebSocket hub for the admin activity feed
	hub := services.NewActivityHub()
	go hub.Run()

	// Initialize services
	activityService := services.NewActivityService(db, hub)
	themeService := services.NewThemeService(db)
	termService := services.NewTermService(db, themeService)
	resultService := services.NewResultService(db, activityService)
	quizService := services.NewQuizService(
		termService,
		services.NewRedisQuizSessions(redisClient, cfg.QuizSessionTTL),
		resultService,
		nil,
	)
	importService := services.NewImportService(termService, themeService, activityService)
	statsService := services.NewStatsService(db, termService, activityService)
	authService := services.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpire, activityService)

	// Seed the first admin and reconcile cached theme counts
	if err := authService.EnsureDefaultAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal("Failed to create default admin:", err)
	}
	if err := themeService.RecomputeThemeCounts(context.Background()); err != nil {
		log.Printf("Failed to recompute theme counts: %v", err)
	}

	// Initialize handlers
	h := routes.Handlers{
		Auth:  handlers.NewAuthHandler(authService),
		Terms: handlers.NewTermHandler(termService, activityService),
		Theme: handlers.NewThemeHandler(themeService, activityService),
		Quiz:  handlers.NewQuizHandler(quizService, resultService),
		Admin: handlers.NewAdminHandler(importService, statsService, cfg.MaxUploadSize),
	}

	// Setup Gin router
	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxUploadSize
	// Add CORS middleware
	router.Use(middleware.CORS(cfg.CORSOrigins))

	// Setup routes, rate limited per client IP on /api
	limiter := middleware.RateLimit(middleware.NewRedisCounter(redisClient), cfg.RateLimit, cfg.RateLimitWindow)
	routes.SetupRoutes(router, h, authService, hub, limiter, cfg.CORSOrigins)

	// Start server
	log.Printf("Server starting on %s", cfg.Addr())
	if err := router.Run(cfg.Addr()); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
