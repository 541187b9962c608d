package handler

import (
	"errors"
	"net/http"
	"strconv"

	"pizza_service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps a domain error kind to an HTTP status. InvalidReference differs by
// call site, so the caller picks it.
func statusFor(err error, referenceStatus int) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidReference):
		return referenceStatus
	case errors.Is(err, service.ErrDataMismatch), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, log *zap.Logger, err error, referenceStatus int) {
	status := statusFor(err, referenceStatus)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"message": service.Message(err, "internal server error")})
}

// intParam reads a numeric path parameter, answering 400 when it is not one.
func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid " + name})
		return 0, false
	}
	return v, true
}
