package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskcalendar/internal/logger"
	"github.com/monocle-dev/taskcalendar/internal/types"
	"github.com/sirupsen/logrus"
)

// RequestLogger writes one structured entry per request once it completes.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path

		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = path
		}

		entry := logger.WithRequestID(log, ctx.GetString(types.ContextRequestIDKey)).WithFields(logrus.Fields{
			"method":      ctx.Request.Method,
			"route":       route,
			"status":      ctx.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"remote_ip":   ctx.ClientIP(),
			"user_agent":  ctx.Request.UserAgent(),
		})

		if len(ctx.Errors) > 0 {
			entry = entry.WithField("errors", ctx.Errors.String())
		}

		switch status := ctx.Writer.Status(); {
		case status >= 500:
			entry.Error("request completed")
		case status >= 400:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	}
}
