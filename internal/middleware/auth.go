package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/auth"
)

var authLog = logrus.WithField("area", "auth")

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Protect rejects requests without a valid bearer token and puts the
// identity on the request context.
func Protect(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			authLog.WithField("path", c.FullPath()).Info("missing token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token"})
			return
		}

		if !attachIdentity(c, verifier, token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed"})
			return
		}
		c.Next()
	}
}

// OptionalAuth attaches an identity when a bearer token is sent. Requests
// without one continue anonymously; a token that fails verification is
// still rejected.
func OptionalAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if errors.Is(err, auth.ErrMissingToken) {
			c.Next()
			return
		}

		if err != nil || !attachIdentity(c, verifier, token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed"})
			return
		}
		c.Next()
	}
}

// Admin must run after Protect.
func Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.IdentityFrom(c.Request.Context())
		if !ok || !id.IsAdmin() {
			authLog.WithField("path", c.FullPath()).Warn("admin route refused")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Not authorized as an admin"})
			return
		}
		c.Next()
	}
}

func attachIdentity(c *gin.Context, verifier TokenVerifier, token string) bool {
	id, err := verifier.Verify(token)
	if err != nil {
		authLog.WithError(err).Info("token validation failed")
		return false
	}
	c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
	return true
}
