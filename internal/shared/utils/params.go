package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/echomag/echomag/internal/shared/errors"
)

// ParseOptionalIntQuery reads an integer query parameter. A missing or empty
// parameter yields nil so the use case can apply its own default.
func ParseOptionalIntQuery(c *gin.Context, name string) (*int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("%s must be an integer", name), raw)
	}
	return &v, nil
}
