package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerr "github.com/amirhossein-jamali/upi-tracker/internal/domain/error"
	coreport "github.com/amirhossein-jamali/upi-tracker/internal/domain/port/core"
	"github.com/amirhossein-jamali/upi-tracker/internal/infrastructure/adapter/api/dto"
)

// ErrorHandler recovers from panics and renders errors attached with c.Error
// when the handler did not write a response itself
func ErrorHandler(logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered in API request", map[string]any{
					"error":      err,
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
					"client_ip":  c.ClientIP(),
					"request_id": c.GetString(RequestIDKey),
					"user_agent": c.Request.UserAgent(),
				})

				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Code:    domainerr.ErrorCode(domainerr.ErrInternalServer),
					Message: "Internal server error",
				})
			}
		}()

		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		status := HTTPStatus(last.Err)
		message := last.Err.Error()
		if status >= http.StatusInternalServerError {
			logger.Error("Request failed", map[string]any{
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(RequestIDKey),
				"error":      last.Err.Error(),
			})
			message = http.StatusText(status)
		}
		c.JSON(status, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(last.Err),
			Message: message,
		})
	}
}

// HTTPStatus maps domain errors onto status codes
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, domainerr.ErrInvalidRequest),
		errors.Is(err, domainerr.ErrInvalidAmount),
		errors.Is(err, domainerr.ErrInvalidDirection):
		return http.StatusBadRequest
	case domainerr.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, domainerr.ErrDuplicateTransaction),
		errors.Is(err, domainerr.ErrConstraintViolation),
		errors.Is(err, domainerr.ErrManuallyVerified):
		return http.StatusConflict
	case errors.Is(err, domainerr.ErrDatabaseConnection),
		errors.Is(err, domainerr.ErrOracleUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domainerr.ErrOracleTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
