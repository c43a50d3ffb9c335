package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskcalendar/internal/logger"
	"github.com/monocle-dev/taskcalendar/internal/utils"
)

// WebSocket streams refresh events for the authenticated user's data.
func (h *Handler) WebSocket(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	// The upgrader writes its own error response on failure.
	if err := h.Hub.Serve(ctx.Writer, ctx.Request, userID); err != nil {
		logger.WithRequestID(h.Log, utils.GetRequestID(ctx)).WithError(err).Warn("WebSocket upgrade failed")
	}
}
