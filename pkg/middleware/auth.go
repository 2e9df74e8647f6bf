package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/docentes-portal/backend/internal/models"
	"github.com/docentes-portal/backend/internal/tokens"
	"github.com/docentes-portal/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	ClaimsKey = "claims"
	UserKey   = "user"
)

// MsgInactiveUser is returned when a valid token belongs to a missing or inactive user.
const MsgInactiveUser = "Usuario no encontrado o inactivo"

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(raw string) (*tokens.Claims, error)
}

// RevocationChecker reports whether a token ID has been revoked (logout).
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// UserLoader reloads the user a token was issued for.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msg})
}

// BearerToken extracts the raw token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if auth == "" {
		return "", false
	}
	var token string
	if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
		return "", false
	}
	return token, true
}

// AuthMiddleware verifies the Bearer token, rejects revoked tokens and
// reloads the user, who must still exist and be active. rev may be nil.
func AuthMiddleware(ver Verifier, rev RevocationChecker, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			unauthorized(c, "missing Authorization header")
			return
		}
		token, ok := BearerToken(c)
		if !ok {
			unauthorized(c, "invalid Authorization header")
			return
		}

		claims, err := ver.Verify(token)
		if err != nil {
			logger.Debugf("auth: token rejected: %v", err)
			unauthorized(c, "invalid token")
			return
		}

		if rev != nil {
			revoked, err := rev.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logger.Errorf("auth: revocation check failed: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "token check failed"})
				return
			}
			if revoked {
				unauthorized(c, "token revoked")
				return
			}
		}

		u, err := users.FindByID(c.Request.Context(), claims.Subject)
		if err != nil {
			logger.Errorf("auth: load user %s: %v", claims.Subject, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "user lookup failed"})
			return
		}
		if u == nil || !u.Activo.Truthy() {
			unauthorized(c, MsgInactiveUser)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserKey, u)
		c.Next()
	}
}

// RequireRoles aborts with 403 unless the authenticated user has one of roles.
// It must run after AuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			unauthorized(c, "not authenticated")
			return
		}
		for _, r := range roles {
			if u.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden resource"})
	}
}

// CurrentUser returns the user loaded by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}

// CurrentClaims returns the verified token claims.
func CurrentClaims(c *gin.Context) (*tokens.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	cl, ok := v.(*tokens.Claims)
	return cl, ok
}
