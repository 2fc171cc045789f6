package routes

import (
	"log"
	"net/http"

	"agroterms/handlers"
	"agroterms/middleware"
	"agroterms/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Handlers bundles everything SetupRoutes mounts.
type Handlers struct {
	Auth  *handlers.AuthHandler
	Terms *handlers.TermHandler
	Theme *handlers.ThemeHandler
	Quiz  *handlers.QuizHandler
	Admin *handlers.AdminHandler
}

func newUpgrader(origins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed[origin] || allowed["*"]
		},
	}
}

func SetupRoutes(
	router *gin.Engine,
	h Handlers,
	authService *services.AuthService,
	hub *services.ActivityHub,
	limiter gin.HandlerFunc,
	corsOrigins []string,
) {
	// API routes
	api := router.Group("/api")
	if limiter != nil {
		api.Use(limiter)
	}
	{
		// Glossary routes (public)
		terms := api.Group("/terms")
		{
			terms.GET("", h.Terms.ListTerms)
			terms.GET("/:id", h.Terms.GetTerm)
			terms.POST("/:id/favorite", h.Terms.AddFavorite)
			terms.DELETE("/:id/favorite", h.Terms.RemoveFavorite)
		}

		api.GET("/themes", h.Theme.ListThemes)

		// Quiz routes (public, keyed by anonymous session id)
		quizzes := api.Group("/quiz")
		{
			quizzes.GET("", h.Quiz.GenerateQuiz)
			quizzes.POST("/:id/submit", h.Quiz.SubmitQuiz)
			quizzes.POST("/result", h.Quiz.SaveResult)
			quizzes.GET("/history", h.Quiz.History)
			quizzes.GET("/stats", h.Quiz.Stats)
		}

		api.GET("/stats/popular", h.Terms.PopularTerms)

		// Admin login (public)
		api.POST("/admin/login", h.Auth.Login)

		// Protected admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuth(authService))
		{
			admin.GET("/verify", h.Auth.Verify)

			// Term management
			admin.POST("/terms", h.Terms.CreateTerm)
			admin.PUT("/terms/:id", h.Terms.UpdateTerm)
			admin.DELETE("/terms/:id", h.Terms.DeleteTerm)
			admin.POST("/terms/import", h.Admin.ImportTerms)
			admin.GET("/terms/export", h.Admin.ExportTerms)

			// Theme management
			admin.POST("/themes", h.Theme.CreateTheme)
			admin.PUT("/themes/:id", h.Theme.UpdateTheme)
			admin.DELETE("/themes/:id", h.Theme.DeleteTheme)
			admin.POST("/themes/recount", h.Theme.RecountThemes)

			// Dashboard
			admin.GET("/stats", h.Admin.Dashboard)
			admin.GET("/analytics", h.Admin.Analytics)
		}
	}

	// Live activity feed for the admin dashboard. Browsers cannot set headers
	// on a websocket handshake, so the token comes in the query string.
	upgrader := newUpgrader(corsOrigins)
	router.GET("/ws/activity", func(c *gin.Context) {
		claims, err := authService.ParseToken(c.Query("token"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// Upgrade HTTP connection to WebSocket
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for %s: %v", claims.Username, err)
			return
		}

		// Register client with hub
		hub.RegisterClient(conn, claims.Username)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "feed_clients": hub.ConnectedClients()})
	})
}
