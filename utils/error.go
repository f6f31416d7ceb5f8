package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	// GuestErrors has one entry per guest input; empty means valid.
	GuestErrors []string `json:"guestErrors,omitempty"`
	Actions     []string `json:"actions,omitempty"`
}

// ErrorHandler catches panics raised while building a response. The client
// gets a generic fallback offering to go home or reload; the panic is logged.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				RequestLogger(c).Error("Unhandled panic",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path))

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:   "Oops! Something went wrong",
					Details: "We're sorry for the inconvenience. Please try refreshing the page.",
					Actions: []string{"home", "reload"},
				})
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	RequestLogger(c).Warn(message, zap.Int("status", status), zap.String("details", details))
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// RequestLogger returns the request-scoped logger set by middleware, or the
// global one.
func RequestLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get(CtxLogger); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return GetLogger()
}
