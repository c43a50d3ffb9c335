package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskcalendar/internal/logger"
	"github.com/monocle-dev/taskcalendar/internal/realtime"
	"github.com/monocle-dev/taskcalendar/internal/services"
	"github.com/monocle-dev/taskcalendar/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Handler carries the dependencies shared by every route.
type Handler struct {
	Service *services.Service
	Hub     *realtime.Hub
	DB      *gorm.DB
	Log     *logrus.Logger
}

func New(service *services.Service, hub *realtime.Hub, db *gorm.DB, log *logrus.Logger) *Handler {
	return &Handler{
		Service: service,
		Hub:     hub,
		DB:      db,
		Log:     log,
	}
}

// fail maps service errors to HTTP responses. Anything unrecognised is a
// storage fault: it is logged and answered with a bare 500.
func (h *Handler) fail(ctx *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, services.ErrConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": "Username already registered"})
	case errors.Is(err, services.ErrUnauthorized):
		ctx.Header("WWW-Authenticate", "Bearer")
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
	case errors.Is(err, services.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, services.ErrInvalidCategory):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Category does not exist"})
	case errors.Is(err, services.ErrInvalidInput):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = ctx.Error(err)
		logger.WithRequestID(h.Log, utils.GetRequestID(ctx)).WithError(err).Errorf("Failed to %s", action)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (h *Handler) badRequest(ctx *gin.Context, err error) {
	logger.WithRequestID(h.Log, utils.GetRequestID(ctx)).WithError(err).Debug("Failed to bind JSON")
	ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
}

func (h *Handler) currentUserID(ctx *gin.Context) (uint, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.Header("WWW-Authenticate", "Bearer")
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, false
	}

	return userID, true
}
