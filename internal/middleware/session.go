package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-records-api/internal/models"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
	"github.com/noah-isme/school-records-api/pkg/logger"
	"github.com/noah-isme/school-records-api/pkg/response"
)

const (
	// ContextUserKey holds the *models.User resolved from the session cookie.
	ContextUserKey = "current_user"
	// ContextSessionTokenKey holds the raw session token when a cookie was sent.
	ContextSessionTokenKey = "session_token"
)

type sessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

type tokenReader interface {
	Read(r *http.Request) string
}

// Session resolves the session cookie on every request. Requests without a
// valid session continue anonymously; only store failures abort.
func Session(resolver sessionResolver, cookies tokenReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookies.Read(c.Request)
		if token != "" {
			c.Set(ContextSessionTokenKey, token)
		}

		user, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			response.Abort(c, err)
			return
		}
		if user != nil {
			c.Set(ContextUserKey, user)
			c.Set(logger.UserIDKey, user.ID)
		}
		c.Next()
	}
}

// RequireSession rejects anonymous requests with 401.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user or nil.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// SessionToken returns the raw session token sent with the request.
func SessionToken(c *gin.Context) string {
	return c.GetString(ContextSessionTokenKey)
}
