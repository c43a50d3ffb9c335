package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskcalendar/internal/types"
)

func (h *Handler) ListCategories(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	categories, err := h.Service.ListCategories(ctx.Request.Context(), userID)

	if err != nil {
		h.fail(ctx, err, "list categories")
		return
	}

	ctx.JSON(http.StatusOK, categories)
}

func (h *Handler) CreateCategory(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	var body types.CreateCategoryRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		h.badRequest(ctx, err)
		return
	}

	category, err := h.Service.CreateCategory(ctx.Request.Context(), userID, body)

	if err != nil {
		h.fail(ctx, err, "create category")
		return
	}

	ctx.JSON(http.StatusCreated, category)
}
