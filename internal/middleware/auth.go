package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskcalendar/internal/logger"
	"github.com/monocle-dev/taskcalendar/internal/models"
	"github.com/monocle-dev/taskcalendar/internal/services"
	"github.com/monocle-dev/taskcalendar/internal/types"
	"github.com/sirupsen/logrus"
)

type AuthenticatedUser struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

const invalidCredentialsMessage = "Could not validate credentials"

func AuthMiddleware(authn Authenticator, log *logrus.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" {
			abortUnauthorized(ctx, "Authorization token is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			abortUnauthorized(ctx, "Authorization header format must be Bearer {token}")
			return
		}

		user, err := authn.Authenticate(ctx.Request.Context(), strings.TrimSpace(parts[1]))

		if err != nil {
			if errors.Is(err, services.ErrUnauthorized) {
				abortUnauthorized(ctx, invalidCredentialsMessage)
				return
			}

			logger.WithRequestID(log, ctx.GetString(types.ContextRequestIDKey)).
				WithError(err).
				Error("failed to resolve token user")
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:        user.ID,
			Username:  user.Username,
			CreatedAt: user.CreatedAt,
		})
		ctx.Next()
	}
}

// BearerFromQuery copies a token from the query string into the
// Authorization header. Browsers cannot set headers on websocket upgrades.
func BearerFromQuery(param string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.GetHeader("Authorization") == "" {
			if token := ctx.Query(param); token != "" {
				ctx.Request.Header.Set("Authorization", "Bearer "+token)
			}
		}
		ctx.Next()
	}
}

func abortUnauthorized(ctx *gin.Context, message string) {
	ctx.Header("WWW-Authenticate", "Bearer")
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
