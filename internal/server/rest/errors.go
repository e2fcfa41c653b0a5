package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/dailydiet/internal/common"
	"github.com/dmitrijs2005/dailydiet/internal/logging"
	"github.com/gin-gonic/gin"
)

const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeUnauthorized   = "UNAUTHORIZED"
	codeNotFound       = "NOT_FOUND"
	codeConflict       = "CONFLICT"
	codeRateLimited    = "RATE_LIMITED"
	codeInternal       = "INTERNAL_ERROR"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// abortUnauthorized sends the one body every authentication failure gets.
// Reasons are logged by the caller and never reach the client.
func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Code: codeUnauthorized, Message: "authentication failed"})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Code: codeInvalidRequest, Message: msg})
}

// writeError maps a service error to a status code and JSON body.
func writeError(c *gin.Context, logger logging.Logger, err error) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		logger.Warn(ctx, "authentication failed", "reason", err.Error(), "request_id", requestID(ctx))
		abortUnauthorized(c)
	case errors.Is(err, common.ErrorValidation):
		badRequest(c, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Code: codeNotFound, Message: "not found"})
	case errors.Is(err, common.ErrorAlreadyExists):
		c.AbortWithStatusJSON(http.StatusConflict, errorResponse{Code: codeConflict, Message: "already exists"})
	default:
		logger.Error(ctx, "request failed", "error", err, "request_id", requestID(ctx))
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Code: codeInternal, Message: "internal error"})
	}
}
