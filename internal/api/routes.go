package api

import (
	"net/http"

	"befit/fitness-app/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers every endpoint under /api/v1.
func SetupRoutes(
	router *gin.Engine,
	authService service.AuthService,
	routineService service.RoutineService,
	sessionService service.SessionService,
	defaultRestSeconds int,
) {
	authHandler := NewAuthHandler(authService)
	gymHandler := NewGymHandler(routineService)
	sessionHandler := NewSessionHandler(sessionService, defaultRestSeconds)

	// --- Public Routes ---
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	// --- Protected Routes ---
	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(authService))
	{
		protected.GET("/me", authHandler.Me)

		gym := protected.Group("/gym")
		{
			gym.POST("/generate", gymHandler.Generate)
			gym.POST("/routines", gymHandler.CreateRoutine)
			gym.GET("/current", gymHandler.Current)
			gym.PUT("/progress", gymHandler.UpdateProgress)
			gym.GET("/history", gymHandler.History)

			// Static /stats sits beside the /:id routes
			sessions := gym.Group("/sessions")
			{
				sessions.POST("", sessionHandler.Start)
				sessions.GET("", sessionHandler.List)
				sessions.GET("/stats", sessionHandler.Stats)
				sessions.PUT("/:id/complete", sessionHandler.Complete)
				sessions.GET("/:id/report", sessionHandler.Report)
			}
		}
	}
}
