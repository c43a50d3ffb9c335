package utils

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskcalendar/internal/middleware"
	"github.com/monocle-dev/taskcalendar/internal/types"
)

var ErrNotAuthenticated = errors.New("User not authenticated")

// GetCurrentUser returns the account AuthMiddleware resolved for this
// request: id, username and the time the account was created.
func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	value, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return middleware.AuthenticatedUser{}, ErrNotAuthenticated
	}

	user, ok := value.(middleware.AuthenticatedUser)

	if !ok || user.ID == 0 {
		return middleware.AuthenticatedUser{}, fmt.Errorf("%w: unexpected %T in context", ErrNotAuthenticated, value)
	}

	return user, nil
}

// GetCurrentUserID is the owner id every task and category query is scoped to.
func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}

// GetCurrentUserResponse renders the current account for GET /me.
func GetCurrentUserResponse(ctx *gin.Context) (types.UserResponse, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return types.UserResponse{}, err
	}

	return types.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt.UTC(),
	}, nil
}

func GetRequestID(ctx *gin.Context) string {
	return ctx.GetString(types.ContextRequestIDKey)
}
