package handlers

import (
	"errors"
	"net/http"

	dom "github.com/Weskio/ai-task-whisperer/internal/domain"
	"github.com/Weskio/ai-task-whisperer/internal/dto"
	"github.com/Weskio/ai-task-whisperer/internal/service"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	svc *service.BoardService
}

func NewTaskHandler(svc *service.BoardService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// Board godoc
// @Summary      Board snapshot
// @Description  All tasks, per-column counts and whether a suggestion fetch is in flight.
// @Tags         board
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.BoardResponse
// @Router       /board [get]
func (h *TaskHandler) Board(c *gin.Context) {
	list := h.svc.Tasks()
	counts := make(map[string]int, len(dom.Columns))
	for _, col := range dom.Columns {
		counts[string(col)] = 0
	}
	for _, t := range list {
		counts[string(t.Column)]++
	}
	c.JSON(http.StatusOK, dto.BoardResponse{
		Tasks:   tasksToResponses(list),
		Loading: h.svc.Pending() > 0,
		Columns: counts,
	})
}

// Create godoc
// @Summary      Create a task
// @Description  Waits for suggestions (remote or fallback) before the task is added.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateTaskRequest  true  "Task body"
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	prio := dom.PriorityMedium
	if req.Priority != "" {
		p, ok := dom.ParsePriority(req.Priority)
		if !ok {
			writeError(c, service.ErrInvalidPriority)
			return
		}
		prio = p
	}
	t, err := h.svc.Create(c.Request.Context(), req.Title, prio)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, taskToResponse(t))
}

// List godoc
// @Summary      List all tasks
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        column  query     string  false  "Only tasks in this column (todo, in-progress, done)"
// @Success      200     {object}  dto.ListTasksResponse
// @Failure      400     {object}  map[string]string
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	list := h.svc.Tasks()
	if raw := c.Query("column"); raw != "" {
		col, ok := dom.ParseColumn(raw)
		if !ok {
			writeError(c, service.ErrInvalidColumn)
			return
		}
		filtered := list[:0]
		for _, t := range list {
			if t.Column == col {
				filtered = append(filtered, t)
			}
		}
		list = filtered
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{Items: tasksToResponses(list)})
}

// Get godoc
// @Summary      Get a task by ID
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	t, err := h.svc.Task(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t))
}

// Update godoc
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string                 true  "Task ID"
// @Param        body  body      dto.UpdateTaskRequest  true  "Partial update"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	patch := service.TaskPatch{Title: req.Title, Suggestions: req.Suggestions}
	if req.Priority != nil {
		p, ok := dom.ParsePriority(*req.Priority)
		if !ok {
			writeError(c, service.ErrInvalidPriority)
			return
		}
		patch.Priority = &p
	}
	if req.Column != nil {
		col, ok := dom.ParseColumn(*req.Column)
		if !ok {
			writeError(c, service.ErrInvalidColumn)
			return
		}
		patch.Column = &col
	}
	if req.Subtasks != nil {
		subs := make([]dom.Subtask, len(*req.Subtasks))
		for i, s := range *req.Subtasks {
			subs[i] = dom.Subtask{ID: s.ID, Title: s.Title, Completed: s.Completed}
		}
		patch.Subtasks = &subs
	}
	t, err := h.svc.UpdateFields(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t))
}

// Delete godoc
// @Summary      Delete a task
// @Description  Deleting an unknown task succeeds and changes nothing.
// @Tags         tasks
// @Security     CookieAuth
// @Param        id   path  string  true  "Task ID"
// @Success      204
// @Failure      500  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Move godoc
// @Summary      Move a task to another column
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string               true  "Task ID"
// @Param        body  body      dto.MoveTaskRequest  true  "Target column"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /tasks/{id}/move [post]
func (h *TaskHandler) Move(c *gin.Context) {
	var req dto.MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	col, ok := dom.ParseColumn(req.Column)
	if !ok {
		writeError(c, service.ErrInvalidColumn)
		return
	}
	t, err := h.svc.Move(c.Request.Context(), c.Param("id"), col)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t))
}

// RegenerateSuggestions godoc
// @Summary      Regenerate suggestions
// @Description  Fetches a fresh suggestion list for the task's current title.
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id}/suggestions [post]
func (h *TaskHandler) RegenerateSuggestions(c *gin.Context) {
	t, err := h.svc.RegenerateSuggestions(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t))
}

// writeError maps service errors to HTTP status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrEmptyTitle),
		errors.Is(err, service.ErrInvalidColumn),
		errors.Is(err, service.ErrInvalidPriority),
		errors.Is(err, service.ErrInvalidSubtask):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func taskToResponse(t dom.Task) dto.TaskResponse {
	subs := make([]dto.SubtaskResponse, len(t.Subtasks))
	for i, s := range t.Subtasks {
		subs[i] = dto.SubtaskResponse{ID: s.ID, Title: s.Title, Completed: s.Completed}
	}
	sugg := t.Suggestions
	if sugg == nil {
		sugg = []string{}
	}
	return dto.TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Priority:    string(t.Priority),
		Column:      string(t.Column),
		Subtasks:    subs,
		Suggestions: sugg,
		Progress:    t.Progress(),
	}
}

func tasksToResponses(list []dom.Task) []dto.TaskResponse {
	out := make([]dto.TaskResponse, len(list))
	for i := range list {
		out[i] = taskToResponse(list[i])
	}
	return out
}
