package routes

import (
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/api/handlers"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/api/middleware"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/roles"
	"github.com/gin-gonic/gin"
)

// RolesRoutes handles the setup of role management routes
type RolesRoutes struct {
	handler   *handlers.RolesHandler
	jwtSecret string
}

// NewRolesRoutes creates a new RolesRoutes instance
func NewRolesRoutes(handler *handlers.RolesHandler, jwtSecret string) *RolesRoutes {
	return &RolesRoutes{handler: handler, jwtSecret: jwtSecret}
}

// RegisterRoutes registers all role management routes
func (rr *RolesRoutes) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/roles")
	group.Use(middleware.NewAuthMiddleware(rr.jwtSecret))
	{
		group.GET("", rr.handler.ListRoles)
		group.GET("/permissions", rr.handler.ListPermissions)
		group.POST("/assign", middleware.RequirePermission(roles.PermUserManage), rr.handler.AssignRole)
		group.POST("/revoke", middleware.RequirePermission(roles.PermUserManage), rr.handler.RevokeRole)
	}
}
