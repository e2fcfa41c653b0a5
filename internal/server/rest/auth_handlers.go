package rest

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name, a valid email and a password of at least 6 characters are required")
		return
	}

	u, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(u))
}

func (h *Handlers) login(c *gin.Context) {
	if !h.allowLogin(c) {
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}

	pair, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newTokenResponse(pair))
}

// allowLogin applies the per-IP login limit. A failing limiter backend lets
// the request through.
func (h *Handlers) allowLogin(c *gin.Context) bool {
	if h.limiter == nil {
		return true
	}

	ctx := c.Request.Context()
	allowed, retryAfter, err := h.limiter.Allow(ctx, c.ClientIP(), h.clock.Now())
	if err != nil {
		h.logger.Warn(ctx, "rate limiter unavailable", "error", err)
		return true
	}
	if allowed {
		return true
	}

	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	c.Header("Retry-After", strconv.Itoa(secs))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Code: codeRateLimited, Message: "too many login attempts"})
	return false
}

func (h *Handlers) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "refresh_token is required")
		return
	}

	pair, err := h.sessions.Rotate(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newTokenResponse(pair))
}

// logout revokes the given refresh token, or every session of the caller
// when the body carries none.
func (h *Handlers) logout(c *gin.Context) {
	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "malformed body")
		return
	}

	if err := h.sessions.Revoke(c.Request.Context(), currentUserID(c), req.RefreshToken); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
