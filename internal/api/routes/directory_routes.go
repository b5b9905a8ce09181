package routes

import (
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/api/handlers"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/api/middleware"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/roles"
	"github.com/gin-gonic/gin"
)

// DirectoryRoutes handles the setup of user and department routes
type DirectoryRoutes struct {
	handler   *handlers.DirectoryHandler
	jwtSecret string
}

// NewDirectoryRoutes creates a new DirectoryRoutes instance
func NewDirectoryRoutes(handler *handlers.DirectoryHandler, jwtSecret string) *DirectoryRoutes {
	return &DirectoryRoutes{handler: handler, jwtSecret: jwtSecret}
}

// RegisterRoutes registers all directory-related routes
func (dr *DirectoryRoutes) RegisterRoutes(router *gin.Engine) {
	users := router.Group("/api/users")
	users.Use(middleware.NewAuthMiddleware(dr.jwtSecret))
	{
		users.POST("", middleware.RequirePermission(roles.PermUserManage), dr.handler.CreateUser)
		users.GET("", dr.handler.ListUsers)
		users.GET("/:id", dr.handler.GetUser)
		users.PUT("/:id", middleware.RequirePermission(roles.PermUserManage), dr.handler.UpdateUser)
		users.DELETE("/:id", middleware.RequirePermission(roles.PermUserManage), dr.handler.DeleteUser)
	}

	departments := router.Group("/api/departments")
	departments.Use(middleware.NewAuthMiddleware(dr.jwtSecret))
	{
		departments.POST("", middleware.RequirePermission(roles.PermUserManage), dr.handler.CreateDepartment)
		departments.GET("", dr.handler.ListDepartments)
		departments.GET("/:id", dr.handler.GetDepartment)
		departments.PUT("/:id", middleware.RequirePermission(roles.PermUserManage), dr.handler.UpdateDepartment)
		departments.DELETE("/:id", middleware.RequirePermission(roles.PermUserManage), dr.handler.DeleteDepartment)
		departments.GET("/:id/members", dr.handler.ListDepartmentMembers)
	}
}
