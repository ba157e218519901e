package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const CtxClaimsKey = "auth_claims"

// ErrNoProfile is returned when a profile-scoped read has no selected profile.
var ErrNoProfile = errors.New("select profile first")

// VersionSource reports a user's current token version.
type VersionSource interface {
	GetTokenVersion(ctx context.Context, userID string) (int, error)
}

// AuthMiddleware rejects requests without a valid bearer token. When versions
// is non-nil, tokens issued before the last logout or password change are
// rejected too.
func AuthMiddleware(tokens TokenService, versions VersionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		raw := strings.TrimSpace(h[len("Bearer "):])
		claims, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if versions != nil {
			current, err := versions.GetTokenVersion(c.Request.Context(), claims.UserID)
			if err != nil || current != claims.TokenVersion {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
		}

		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

func MustGetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := MustGetClaims(c)
		if claims == nil || claims.Role != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

// RequireProfile must run after AuthMiddleware.
func RequireProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := ProfileID(c); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

// ProfileID returns the profile the request's token is scoped to.
func ProfileID(c *gin.Context) (string, error) {
	claims := MustGetClaims(c)
	if claims == nil || strings.TrimSpace(claims.ProfileID) == "" {
		return "", ErrNoProfile
	}
	return claims.ProfileID, nil
}
