package httpx

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"snapcap/tools/errs"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ParsePage validates page/limit query params before any store access.
// page < 1 and limit > 100 are rejected outright.
func ParsePage(c *gin.Context) (page, limit int, err error) {
	page, err = intQuery(c, "page", 1)
	if err != nil {
		return 0, 0, errs.NewValidation("page must be an integer").Wrap()
	}
	limit, err = intQuery(c, "limit", DefaultLimit)
	if err != nil {
		return 0, 0, errs.NewValidation("limit must be an integer").Wrap()
	}
	if page < 1 {
		return 0, 0, errs.NewValidation("page must be >= 1").Wrap()
	}
	if limit < 1 || limit > MaxLimit {
		return 0, 0, errs.NewValidation("limit must be between 1 and 100").Wrap()
	}
	return page, limit, nil
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// Skip converts page/limit into a store offset.
func Skip(page, limit int) int64 {
	return int64(page-1) * int64(limit)
}
