package rest

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/common"
	"github.com/dmitrijs2005/dailydiet/internal/logging"
	"github.com/dmitrijs2005/dailydiet/internal/server/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

// userIDKey holds the authenticated user id in the gin context.
const userIDKey = "user_id"

// RequestID takes X-Request-ID from the request or generates one, echoes it
// in the response and stores it in the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(common.RequestIDHeaderName)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(common.RequestIDHeaderName, reqID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDKey, reqID))
		c.Next()
	}
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Logger logs every request and records it in the HTTP metrics.
func Logger(logger logging.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		ctx := c.Request.Context()
		logger.Info(ctx, "request",
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", latency,
			"client_ip", c.ClientIP(),
			"request_id", requestID(ctx),
		)

		if m != nil {
			code := strconv.Itoa(status)
			m.RequestCount.WithLabelValues(c.Request.Method, path, code).Inc()
			m.RequestDuration.WithLabelValues(c.Request.Method, path, code).Observe(latency.Seconds())
		}
	}
}

// Recovery turns a panic into a 500.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				ctx := c.Request.Context()
				logger.Error(ctx, "panic",
					"error", err,
					"path", c.Request.URL.Path,
					"request_id", requestID(ctx),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Code: codeInternal, Message: "internal error"})
			}
		}()
		c.Next()
	}
}

// AccessVerifier resolves an access token to a user id.
type AccessVerifier interface {
	VerifyAccess(ctx context.Context, token string) (string, error)
}

func extractBearer(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects requests without a valid bearer access token and
// stores the caller's user id for the handlers.
func RequireAuth(v AccessVerifier, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token := extractBearer(c.GetHeader(common.AuthorizationHeaderName))
		if token == "" {
			logger.Warn(ctx, "authentication failed", "reason", "missing bearer token", "request_id", requestID(ctx))
			abortUnauthorized(c)
			return
		}

		userID, err := v.VerifyAccess(ctx, token)
		if err != nil {
			logger.Warn(ctx, "authentication failed", "reason", err.Error(), "request_id", requestID(ctx))
			abortUnauthorized(c)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
