package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/taskcalendar/internal/types"
	"github.com/monocle-dev/taskcalendar/internal/utils"
)

func (h *Handler) ListTasks(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	tasks, err := h.Service.ListTasks(ctx.Request.Context(), userID)

	if err != nil {
		h.fail(ctx, err, "list tasks")
		return
	}

	ctx.JSON(http.StatusOK, tasks)
}

func (h *Handler) CreateTask(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	var body types.CreateTaskRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		h.badRequest(ctx, err)
		return
	}

	task, err := h.Service.CreateTask(ctx.Request.Context(), userID, body)

	if err != nil {
		h.fail(ctx, err, "create task")
		return
	}

	ctx.JSON(http.StatusCreated, task)
}

func (h *Handler) UpdateTask(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var patch types.TaskPatch

	if err := ctx.ShouldBindJSON(&patch); err != nil {
		h.badRequest(ctx, err)
		return
	}

	task, err := h.Service.UpdateTask(ctx.Request.Context(), userID, taskID, patch)

	if err != nil {
		h.fail(ctx, err, "update task")
		return
	}

	ctx.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(ctx *gin.Context) {
	userID, ok := h.currentUserID(ctx)
	if !ok {
		return
	}

	taskID, err := utils.GetTaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Service.DeleteTask(ctx.Request.Context(), userID, taskID); err != nil {
		h.fail(ctx, err, "delete task")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}
