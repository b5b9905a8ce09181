package routes

import (
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/api/handlers"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/api/middleware"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/roles"
	"github.com/gin-gonic/gin"
)

// LocationRoutes handles the setup of location routes
type LocationRoutes struct {
	handler   *handlers.LocationHandler
	jwtSecret string
}

// NewLocationRoutes creates a new LocationRoutes instance
func NewLocationRoutes(handler *handlers.LocationHandler, jwtSecret string) *LocationRoutes {
	return &LocationRoutes{handler: handler, jwtSecret: jwtSecret}
}

// RegisterRoutes registers all location-related routes
func (lr *LocationRoutes) RegisterRoutes(router *gin.Engine) {
	locations := router.Group("/api/locations")
	locations.Use(middleware.NewAuthMiddleware(lr.jwtSecret))
	{
		locations.POST("", middleware.RequirePermission(roles.PermEventManage), lr.handler.Create)
		locations.GET("", lr.handler.List)
		locations.GET("/:id", lr.handler.Get)
		locations.PUT("/:id", middleware.RequirePermission(roles.PermEventManage), lr.handler.Update)
		locations.DELETE("/:id", middleware.RequirePermission(roles.PermEventManage), lr.handler.Delete)
	}
}
