package dto

import "time"

type CreateTaskRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Priority string `json:"priority" binding:"omitempty,oneof=high medium low"`
}

type SubtaskPayload struct {
	ID        string `json:"id" binding:"required"`
	Title     string `json:"title" binding:"required,max=200"`
	Completed bool   `json:"completed"`
}

// UpdateTaskRequest is a partial update: omitted fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string           `json:"title" binding:"omitempty,max=200"`
	Priority    *string           `json:"priority"`
	Column      *string           `json:"column"`
	Subtasks    *[]SubtaskPayload `json:"subtasks" binding:"omitempty,dive"`
	Suggestions *[]string         `json:"suggestions"`
}

type MoveTaskRequest struct {
	Column string `json:"column" binding:"required"`
}

type SubtaskRequest struct {
	Title string `json:"title" binding:"required,max=200"`
}

type SubtaskResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type TaskResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Priority    string            `json:"priority"`
	Column      string            `json:"column"`
	Subtasks    []SubtaskResponse `json:"subtasks"`
	Suggestions []string          `json:"suggestions"`
	// Progress is the rounded percentage of completed subtasks.
	Progress int `json:"progress"`
}

type ListTasksResponse struct {
	Items []TaskResponse `json:"items"`
}

type BoardResponse struct {
	Tasks   []TaskResponse `json:"tasks"`
	Loading bool           `json:"loading"`
	Columns map[string]int `json:"columns"`
}

type APIKeyRequest struct {
	APIKey string `json:"api_key"`
}

type APIKeyStatusResponse struct {
	Configured bool `json:"configured"`
}

type NotificationResponse struct {
	ID      int64     `json:"id"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type ListNotificationsResponse struct {
	Items []NotificationResponse `json:"items"`
}
