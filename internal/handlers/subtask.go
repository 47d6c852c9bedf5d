package handlers

import (
	"net/http"

	"github.com/Weskio/ai-task-whisperer/internal/dto"

	"github.com/gin-gonic/gin"
)

// AddSubtask godoc
// @Summary      Add a subtask
// @Tags         subtasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string              true  "Task ID"
// @Param        body  body      dto.SubtaskRequest  true  "Subtask"
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /tasks/{id}/subtasks [post]
func (h *TaskHandler) AddSubtask(c *gin.Context) {
	var req dto.SubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.AddSubtask(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, taskToResponse(t))
}

// EditSubtask godoc
// @Summary      Rename a subtask
// @Tags         subtasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id         path      string              true  "Task ID"
// @Param        subtaskId  path      string              true  "Subtask ID"
// @Param        body       body      dto.SubtaskRequest  true  "New title"
// @Success      200        {object}  dto.TaskResponse
// @Failure      400        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Router       /tasks/{id}/subtasks/{subtaskId} [patch]
func (h *TaskHandler) EditSubtask(c *gin.Context) {
	var req dto.SubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.EditSubtask(c.Request.Context(), c.Param("id"), c.Param("subtaskId"), req.Title)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t))
}

// ToggleSubtask godoc
// @Summary      Toggle a subtask's completed flag
// @Tags         subtasks
// @Produce      json
// @Security     CookieAuth
// @Param        id         path      string  true  "Task ID"
// @Param        subtaskId  path      string  true  "Subtask ID"
// @Success      200        {object}  dto.TaskResponse
// @Failure      404        {object}  map[string]string
// @Router       /tasks/{id}/subtasks/{subtaskId}/toggle [post]
func (h *TaskHandler) ToggleSubtask(c *gin.Context) {
	t, err := h.svc.ToggleSubtask(c.Request.Context(), c.Param("id"), c.Param("subtaskId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t))
}

// DeleteSubtask godoc
// @Summary      Delete a subtask
// @Tags         subtasks
// @Security     CookieAuth
// @Param        id         path  string  true  "Task ID"
// @Param        subtaskId  path  string  true  "Subtask ID"
// @Success      204
// @Router       /tasks/{id}/subtasks/{subtaskId} [delete]
func (h *TaskHandler) DeleteSubtask(c *gin.Context) {
	if err := h.svc.DeleteSubtask(c.Request.Context(), c.Param("id"), c.Param("subtaskId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
