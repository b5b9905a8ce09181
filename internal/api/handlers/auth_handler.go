package handlers

import (
	"net/http"

	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/api/dto"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/directory"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/internal/domain/roles"
	"github.com/dat19082k3/VNUA-SCHEDULE-SYSTEM-API-sub000/pkg/security/auth"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles login and token issuance
type AuthHandler struct {
	directory directory.Service
	roles     roles.Service
	jwt       *auth.JWTService
}

// NewAuthHandler creates a new auth handler instance
func NewAuthHandler(dir directory.Service, rolesSvc roles.Service, jwt *auth.JWTService) *AuthHandler {
	return &AuthHandler{directory: dir, roles: rolesSvc, jwt: jwt}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.directory.FindUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if user.Status != directory.UserStatusActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account is not active"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	permissions, err := h.roles.PermissionNamesForUser(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load permissions"})
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Email, permissions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:       token,
		UserID:      user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		Permissions: permissions,
	})
}
