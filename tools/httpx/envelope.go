package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"snapcap/logger"
	"snapcap/tools/errs"
)

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Envelope is the uniform response body for every REST endpoint.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func OKMsg(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: msg, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Fail maps any error onto the fixed status taxonomy. Unclassified errors
// become 500 and are logged with their detail; the detail never reaches the
// client.
func Fail(c *gin.Context, err error) {
	ce := errs.AsCodeError(err)
	if ce.Code == errs.CodeInternal {
		logger.Errorf("internal error: %s path=%s", ce.Error(), c.FullPath())
	}
	c.AbortWithStatusJSON(ce.Code, Envelope{Success: false, Message: ce.Msg})
}

// FailValidation reports field-level 400s.
func FailValidation(c *gin.Context, msg string, fields ...FieldError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{
		Success: false,
		Message: msg,
		Errors:  fields,
	})
}
