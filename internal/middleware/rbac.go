package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-records-api/internal/models"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
	"github.com/noah-isme/school-records-api/pkg/response"
)

// RequireRoles rejects requests whose user does not hold one of roles. It runs
// ahead of body binding so a denied caller gets 403 whatever it sent.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
			return
		}
		if _, ok := allowed[user.Role]; !ok {
			response.Abort(c, appErrors.Clone(appErrors.ErrForbidden, "access denied"))
			return
		}
		c.Next()
	}
}
