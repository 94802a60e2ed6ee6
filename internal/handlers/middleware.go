package handlers

import (
	"net/http"
	"strings"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/identity"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/services"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const identityContextKey = "identity"

// AuthMiddleware resolves the Bearer token against the identity provider
// and stores the caller on the request context. Requests without a valid
// token are rejected before any handler runs. Resolved callers are
// mirrored into the user store.
func AuthMiddleware(provider identity.Provider, profiles services.ProfileService, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing authorization header",
			})
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid authorization header",
			})
			return
		}

		caller, err := provider.CurrentIdentity(c.Request.Context(), token)
		if err != nil {
			logger.Warn("Token verification failed",
				"path", c.Request.URL.Path,
				"error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid or expired token",
			})
			return
		}

		profiles.Touch(c.Request.Context(), caller)

		c.Set(identityContextKey, caller)
		c.Next()
	}
}

// CallerIdentity returns the authenticated caller set by AuthMiddleware,
// or nil on unauthenticated routes.
func CallerIdentity(c *gin.Context) *identity.Identity {
	value, exists := c.Get(identityContextKey)
	if !exists {
		return nil
	}
	caller, ok := value.(*identity.Identity)
	if !ok {
		return nil
	}
	return caller
}
