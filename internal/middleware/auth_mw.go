package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"pizza_service/internal/model"
	"pizza_service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	AuthUserKey  = "authUser"
	AuthTokenKey = "authToken"
)

// Authenticator resolves a bearer token to the user it was issued to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// AttachUser runs on every request and attaches the caller when the bearer token is
// still valid. It never rejects; RequireAuth does that for protected routes.
func AttachUser(auth Authenticator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Next()
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(AuthUserKey, user)
			c.Set(AuthTokenKey, token)
		case !errors.Is(err, service.ErrUnauthenticated):
			log.Error("token check failed", zap.Error(err))
		}
		c.Next()
	}
}

// RequireAuth rejects requests without an authenticated caller.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated caller, or nil.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(AuthUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}

func CurrentToken(c *gin.Context) string {
	return c.GetString(AuthTokenKey)
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
