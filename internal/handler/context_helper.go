package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/highroller/payroll-api/internal/middleware"
	"github.com/highroller/payroll-api/internal/models"
	appErrors "github.com/highroller/payroll-api/pkg/errors"
	"github.com/highroller/payroll-api/pkg/response"
)

// identityFromContext writes a 401 and returns false when no session is attached.
func identityFromContext(c *gin.Context) (models.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Identity{}, false
	}
	return identity, true
}

// int64Param parses a positive numeric path parameter, writing a 400 on failure.
func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name))
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return def
}
