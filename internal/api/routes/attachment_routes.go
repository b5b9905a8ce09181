package routes

import (
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/api/handlers"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// AttachmentRoutes handles the setup of attachment routes
type AttachmentRoutes struct {
	handler   *handlers.AttachmentHandler
	jwtSecret string
}

// NewAttachmentRoutes creates a new AttachmentRoutes instance
func NewAttachmentRoutes(handler *handlers.AttachmentHandler, jwtSecret string) *AttachmentRoutes {
	return &AttachmentRoutes{handler: handler, jwtSecret: jwtSecret}
}

// RegisterRoutes registers all attachment-related routes
func (ar *AttachmentRoutes) RegisterRoutes(router *gin.Engine) {
	attachments := router.Group("/api/attachments")
	attachments.Use(middleware.NewAuthMiddleware(ar.jwtSecret))
	{
		attachments.POST("", ar.handler.Create)
		attachments.GET("", ar.handler.ListMine)
		attachments.GET("/:id", ar.handler.Get)
		attachments.DELETE("/:id", ar.handler.Delete)
	}
}
