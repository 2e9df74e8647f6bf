package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/docentes-portal/backend/internal/auth"
	"github.com/docentes-portal/backend/internal/sessions"
	"github.com/docentes-portal/backend/pkg/logger"
	"github.com/docentes-portal/backend/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// LoginDocenteRequest is the instructor login payload.
type LoginDocenteRequest struct {
	Cedula string `json:"cedula" binding:"required"`
}

// LoginAdminRequest is the administrator login payload.
type LoginAdminRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	svc         *auth.Service
	revocations *sessions.Revocations
}

func NewAuthHandler(svc *auth.Service, rev *sessions.Revocations) *AuthHandler {
	return &AuthHandler{svc: svc, revocations: rev}
}

// Register routes under /auth. limit guards the login endpoints and
// requireAuth guards logout; either may be nil.
func (h *AuthHandler) Register(rg *gin.RouterGroup, limit, requireAuth gin.HandlerFunc) {
	a := rg.Group("/auth")
	login := a.Group("/login")
	if limit != nil {
		login.Use(limit)
	}
	login.POST("/docente", h.LoginDocente)
	login.POST("/admin", h.LoginAdmin)
	if requireAuth != nil {
		a.POST("/logout", requireAuth, h.Logout)
	}
}

func (h *AuthHandler) LoginDocente(c *gin.Context) {
	var req LoginDocenteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	res, err := h.svc.LoginInstructor(c.Request.Context(), req.Cedula)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) LoginAdmin(c *gin.Context) {
	var req LoginAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	res, err := h.svc.LoginAdministrator(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Logout revokes the presented access token until it would have expired.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		return
	}
	if !h.revocations.Enabled() {
		c.JSON(http.StatusOK, gin.H{"message": "logged out", "revoked": false})
		return
	}
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := h.revocations.Revoke(c.Request.Context(), claims.ID, ttl); err != nil {
		logger.Errorf("logout: revoke token for %s: %v", claims.Subject, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to revoke access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out", "revoked": true})
}

// writeAuthError maps login failures to HTTP. Only the public message of an
// *auth.Error reaches the client.
func writeAuthError(c *gin.Context, err error) {
	var ae *auth.Error
	if !errors.As(err, &ae) {
		logger.Errorf("login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error interno del servidor"})
		return
	}
	status := http.StatusUnauthorized
	if errors.Is(err, auth.ErrInvalidInput) {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"message": ae.Message})
}
