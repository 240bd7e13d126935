package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/echomag/echomag/internal/shared/constants"
	"github.com/echomag/echomag/internal/shared/errors"
	"github.com/echomag/echomag/internal/shared/utils"
)

// CronToken protects the internal trigger endpoint. Without a configured
// token the endpoint refuses every call.
func CronToken(token string) gin.HandlerFunc {
	expected := []byte(token)
	return func(c *gin.Context) {
		if token == "" {
			utils.AbortWithError(c, errors.NewForbiddenError("internal trigger is disabled"))
			return
		}

		provided := []byte(c.GetHeader(constants.HeaderCronToken))
		if subtle.ConstantTimeCompare(provided, expected) != 1 {
			utils.AbortWithError(c, errors.NewUnauthorizedError("invalid cron token"))
			return
		}
		c.Next()
	}
}
