package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskcalendar/internal/types"
	"github.com/monocle-dev/taskcalendar/internal/utils"
)

func (h *Handler) Register(ctx *gin.Context) {
	var body types.CredentialsRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		h.badRequest(ctx, err)
		return
	}

	token, err := h.Service.Register(ctx.Request.Context(), body.Username, body.Password)

	if err != nil {
		h.fail(ctx, err, "register user")
		return
	}

	ctx.JSON(http.StatusCreated, types.TokenResponse{
		AccessToken: token,
		TokenType:   types.TokenTypeBearer,
	})
}

func (h *Handler) Login(ctx *gin.Context) {
	var body types.LoginRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		h.badRequest(ctx, err)
		return
	}

	token, err := h.Service.Login(ctx.Request.Context(), body.Username, body.Password)

	if err != nil {
		h.fail(ctx, err, "log in")
		return
	}

	ctx.JSON(http.StatusOK, types.TokenResponse{
		AccessToken: token,
		TokenType:   types.TokenTypeBearer,
	})
}

func (h *Handler) Me(ctx *gin.Context) {
	me, err := utils.GetCurrentUserResponse(ctx)

	if err != nil {
		ctx.Header("WWW-Authenticate", "Bearer")
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx.JSON(http.StatusOK, me)
}
