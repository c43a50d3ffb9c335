package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) HealthCheck(ctx *gin.Context) {
	status := http.StatusOK
	state := "ok"
	database := "ok"

	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := h.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(pingCtx)
	}

	if err != nil {
		h.Log.WithError(err).Warn("database health check failed")
		status = http.StatusServiceUnavailable
		state = "degraded"
		database = "unavailable"
	}

	ctx.JSON(status, gin.H{
		"status":    state,
		"database":  database,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
