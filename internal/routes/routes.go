package routes

import (
	"time"

	"sams/internal/container"
	"sams/internal/middleware"
	"sams/pkg/security"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the whole HTTP surface: public auth, the protected
// API behind the JWT middleware, and utility endpoints.
func RegisterRoutes(router *gin.Engine, c *container.Container) {
	router.Use(middleware.RecoveryMiddleware(c.Logger))
	router.Use(middleware.TimeoutMiddleware(30 * time.Second))

	c.LoginHandler.RegisterRoutes(router)

	protected := router.Group("/api")
	protected.Use(security.JWTMiddleware())

	c.AssetHandler.RegisterRoutes(protected)
	c.SitesHandler.RegisterRoutes(protected)
	c.UserHandler.RegisterRoutes(protected)
	if c.SheetsHandler != nil {
		c.SheetsHandler.RegisterRoutes(protected)
	}

	router.GET("/health", middleware.HealthCheckHandler())
}
