package routes

import (
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/api/handlers"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/api/middleware"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/roles"
	"github.com/gin-gonic/gin"
)

// EventRoutes handles the setup of event-related routes
type EventRoutes struct {
	handler   *handlers.EventHandler
	jwtSecret string
}

// NewEventRoutes creates a new EventRoutes instance
func NewEventRoutes(handler *handlers.EventHandler, jwtSecret string) *EventRoutes {
	return &EventRoutes{handler: handler, jwtSecret: jwtSecret}
}

// RegisterRoutes registers all event-related routes
func (er *EventRoutes) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/events")
	group.Use(middleware.NewAuthMiddleware(er.jwtSecret))

	group.POST("", er.handler.CreateEvent)
	group.GET("", er.handler.ListEvents)
	group.GET("/:id", er.handler.GetEvent)
	group.PUT("/:id", er.handler.UpdateEvent)
	group.DELETE("/:id", middleware.RequirePermission(roles.PermEventManage), er.handler.DeleteEvent)
	group.GET("/:id/history", er.handler.GetHistory)

	// Status transitions require the approve permission
	group.POST("/:id/approve", middleware.RequirePermission(roles.PermEventApprove), er.handler.ApproveEvent)
	group.POST("/:id/decline", middleware.RequirePermission(roles.PermEventApprove), er.handler.DeclineEvent)
}
