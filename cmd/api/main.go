// main.go
package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/auth"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/internal/platform"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/series"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/webhooks"
)

type Server struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Router *gin.Engine
}

func NewServer() (*Server, error) {
	// Use the shared connection initializers
	db := platform.NewDBConnection()
	rdb := platform.NewRedisClient()

	router := gin.Default()

	// Add database to context middleware
	router.Use(func(c *gin.Context) {
		c.Set("db", db)
		c.Next()
	})

	// Add CORS middleware for your frontend
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", os.Getenv("FRONTEND_URL"))
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	server := &Server{
		DB:     db,
		Redis:  rdb,
		Router: router,
	}

	server.setupRoutes()

	return server, nil
}

func (s *Server) setupRoutes() {
	// Health check (no auth required)
	s.Router.GET("/health", func(c *gin.Context) {
		sqlDB, err := s.DB.DB()
		if err != nil {
			c.JSON(500, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		if err := sqlDB.Ping(); err != nil {
			c.JSON(500, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "healthy"})
	})

	authHandler := auth.NewHandler(s.DB)
	seriesHandler := series.NewHandler(s.DB, s.Redis)
	webhookHandler := webhooks.NewHandler(s.DB)

	// OAuth flow (no auth required)
	s.Router.GET("/auth/google", authHandler.InitiateGoogleLogin)
	s.Router.GET("/auth/google/callback", authHandler.GoogleCallback)

	// Stripe webhooks (signature-verified, no session)
	s.Router.POST("/webhooks/stripe", webhookHandler.HandleStripeWebhook)

	// Session-protected routes
	protected := s.Router.Group("/")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/me", authHandler.GetCurrentUser)
		protected.POST("/auth/logout", authHandler.Logout)

		protected.POST("/series", seriesHandler.CreateSeries)
		protected.GET("/series", seriesHandler.GetUserSeries)
		protected.PATCH("/series/:id/status", seriesHandler.UpdateSeriesStatus)
		protected.GET("/series/:id/videos", seriesHandler.GetSeriesVideos)
		protected.POST("/series/:id/generate", seriesHandler.TriggerGeneration)

		protected.GET("/runs/:run_id", seriesHandler.GetRun)
		protected.POST("/runs/:run_id/retry", seriesHandler.RetryRun)

		protected.POST("/videos/:video_id/publish", seriesHandler.PublishVideo)
	}
}

func main() {
	godotenv.Load()
	platform.InitLogger("api")

	server, err := NewServer()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create server")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Info().Str("port", port).Msg("api listening")
	if err := server.Router.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
