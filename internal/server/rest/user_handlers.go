package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) me(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(u))
}

func (h *Handlers) deleteMe(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), currentUserID(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
