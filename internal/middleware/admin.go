package middleware

import (
	"gorm.io/gorm"

	"github.com/gin-gonic/gin"

	"github.com/pawhaven/pawhaven/internal/models"
	"github.com/pawhaven/pawhaven/pkg/errors"
	"github.com/pawhaven/pawhaven/pkg/metrics"
	"github.com/pawhaven/pawhaven/pkg/response"
)

// RequireAdmin restricts a route group to platform administrators. It runs
// after Auth, so the user id is already in the request context.
func RequireAdmin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUserIDKey)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		userID, _ := v.(string)

		var user models.User
		if err := db.WithContext(c.Request.Context()).
			Select("id", "role", "is_active").
			First(&user, "id = ?", userID).Error; err != nil {
			metrics.RoleChecks.WithLabelValues("deny").Inc()
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		if !user.IsActive || !user.IsAdmin() {
			metrics.RoleChecks.WithLabelValues("deny").Inc()
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		metrics.RoleChecks.WithLabelValues("allow").Inc()
		c.Next()
	}
}
