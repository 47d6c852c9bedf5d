package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Weskio/ai-task-whisperer/internal/auth"
	"github.com/Weskio/ai-task-whisperer/internal/config"
	"github.com/Weskio/ai-task-whisperer/internal/dto"
	"github.com/Weskio/ai-task-whisperer/internal/repo"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		App:   config.AppConfig{Env: "test", Version: "test"},
		Store: config.StoreConfig{Backend: config.BackendMemory, KeyPrefix: "test:"},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func do(t *testing.T, a *App, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	a := newTestApp(t, nil)
	w := do(t, a, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"env":"test","store":"memory"}`, w.Body.String())
}

func TestTaskCRUD(t *testing.T) {
	a := newTestApp(t, nil)

	w := do(t, a, http.MethodPost, "/api/v1/tasks", gin.H{"title": "Write report", "priority": "high"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	task := decode[dto.TaskResponse](t, w)
	assert.Equal(t, "todo", task.Column)
	assert.Equal(t, "high", task.Priority)
	assert.Len(t, task.Suggestions, 4)
	assert.Equal(t, []dto.SubtaskResponse{}, task.Subtasks)

	w = do(t, a, http.MethodGet, "/api/v1/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, a, http.MethodPatch, "/api/v1/tasks/"+task.ID, gin.H{"title": "Write final report", "column": "inProgress"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	task = decode[dto.TaskResponse](t, w)
	assert.Equal(t, "Write final report", task.Title)
	assert.Equal(t, "in-progress", task.Column)

	w = do(t, a, http.MethodPost, "/api/v1/tasks/"+task.ID+"/move", gin.H{"column": "done"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "done", decode[dto.TaskResponse](t, w).Column)

	w = do(t, a, http.MethodGet, "/api/v1/board", nil)
	board := decode[dto.BoardResponse](t, w)
	assert.Len(t, board.Tasks, 1)
	assert.False(t, board.Loading)
	assert.Equal(t, map[string]int{"todo": 0, "in-progress": 0, "done": 1}, board.Columns)

	w = do(t, a, http.MethodGet, "/api/v1/tasks?column=todo", nil)
	assert.Empty(t, decode[dto.ListTasksResponse](t, w).Items)

	w = do(t, a, http.MethodDelete, "/api/v1/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, a, http.MethodDelete, "/api/v1/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code, "deleting twice is a no-op")

	w = do(t, a, http.MethodGet, "/api/v1/tasks/"+task.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskValidation(t *testing.T) {
	a := newTestApp(t, nil)

	cases := []struct {
		name, method, path string
		body               any
		want               int
	}{
		{"missing title", http.MethodPost, "/api/v1/tasks", gin.H{"priority": "low"}, http.StatusBadRequest},
		{"blank title", http.MethodPost, "/api/v1/tasks", gin.H{"title": "   "}, http.StatusBadRequest},
		{"bad priority", http.MethodPost, "/api/v1/tasks", gin.H{"title": "x", "priority": "urgent"}, http.StatusBadRequest},
		{"bad column filter", http.MethodGet, "/api/v1/tasks?column=later", nil, http.StatusBadRequest},
		{"move unknown task", http.MethodPost, "/api/v1/tasks/nope/move", gin.H{"column": "done"}, http.StatusNotFound},
		{"patch unknown task", http.MethodPatch, "/api/v1/tasks/nope", gin.H{"title": "x"}, http.StatusNotFound},
		{"regenerate unknown task", http.MethodPost, "/api/v1/tasks/nope/suggestions", nil, http.StatusNotFound},
		{"subtask on unknown task", http.MethodPost, "/api/v1/tasks/nope/subtasks", gin.H{"title": "s"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		w := do(t, a, tc.method, tc.path, tc.body)
		assert.Equal(t, tc.want, w.Code, tc.name)
	}
	assert.Empty(t, a.Board().Tasks())

	w := do(t, a, http.MethodGet, "/api/v1/notifications?limit=1", nil)
	items := decode[dto.ListNotificationsResponse](t, w).Items
	require.Len(t, items, 1)
	assert.Equal(t, "error", items[0].Level)
	assert.Equal(t, "Failed to regenerate suggestions", items[0].Message)
}

func TestSubtaskRoutes(t *testing.T) {
	a := newTestApp(t, nil)
	w := do(t, a, http.MethodPost, "/api/v1/tasks", gin.H{"title": "Ship it"})
	task := decode[dto.TaskResponse](t, w)
	base := "/api/v1/tasks/" + task.ID + "/subtasks"

	w = do(t, a, http.MethodPost, base, gin.H{"title": "Tag"})
	require.Equal(t, http.StatusCreated, w.Code)
	task = decode[dto.TaskResponse](t, w)
	require.Len(t, task.Subtasks, 1)
	subID := task.Subtasks[0].ID

	w = do(t, a, http.MethodPost, base+"/"+subID+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	task = decode[dto.TaskResponse](t, w)
	assert.True(t, task.Subtasks[0].Completed)
	assert.Equal(t, 100, task.Progress)

	w = do(t, a, http.MethodPatch, base+"/"+subID, gin.H{"title": "Tag v1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Tag v1", decode[dto.TaskResponse](t, w).Subtasks[0].Title)

	w = do(t, a, http.MethodPost, base+"/missing/toggle", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, a, http.MethodDelete, base+"/"+subID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	got, err := a.Board().Task(task.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Subtasks)
}

func TestAPIKeySettings(t *testing.T) {
	a := newTestApp(t, nil)

	w := do(t, a, http.MethodGet, "/api/v1/settings/api-key", nil)
	assert.False(t, decode[dto.APIKeyStatusResponse](t, w).Configured)

	w = do(t, a, http.MethodPut, "/api/v1/settings/api-key", gin.H{"api_key": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Please enter a valid API key"}`, w.Body.String())

	w = do(t, a, http.MethodPut, "/api/v1/settings/api-key", gin.H{"api_key": "sk-test"})
	require.Equal(t, http.StatusOK, w.Code)
	key, err := a.Credentials().APIKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)
	assert.Equal(t, "API key saved successfully", a.Notifications().Recent(1)[0].Message)

	w = do(t, a, http.MethodDelete, "/api/v1/settings/api-key", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, a, http.MethodGet, "/api/v1/settings/api-key", nil)
	assert.False(t, decode[dto.APIKeyStatusResponse](t, w).Configured)
}

func TestExportRoute(t *testing.T) {
	a := newTestApp(t, nil)
	do(t, a, http.MethodPost, "/api/v1/tasks", gin.H{"title": "Email client"})

	w := do(t, a, http.MethodGet, "/api/v1/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Email client")

	w = do(t, a, http.MethodGet, "/api/v1/export?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFileBackendPersistsAcrossRestart(t *testing.T) {
	path := t.TempDir() + "/board.json"
	useFile := func(c *config.Config) {
		c.Store.Backend = config.BackendFile
		c.Store.Path = path
	}

	a := newTestApp(t, useFile)
	w := do(t, a, http.MethodPost, "/api/v1/tasks", gin.H{"title": "Survive restart"})
	require.Equal(t, http.StatusCreated, w.Code)

	b := newTestApp(t, useFile)
	list := b.Board().Tasks()
	require.Len(t, list, 1)
	assert.Equal(t, "Survive restart", list[0].Title)
}

func TestRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	a := newTestApp(t, func(c *config.Config) {
		c.Store.Backend = config.BackendRedis
		c.Redis.Addr = mr.Addr()
	})

	w := do(t, a, http.MethodPost, "/api/v1/tasks", gin.H{"title": "Stored in redis"})
	require.Equal(t, http.StatusCreated, w.Code)

	raw, err := mr.Get("test:" + repo.KeyTasks)
	require.NoError(t, err)
	list, err := repo.DecodeTasks([]byte(raw))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Stored in redis", list[0].Title)
}

func TestOwnerPasscode(t *testing.T) {
	mr := miniredis.RunT(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("open sesame"), bcrypt.MinCost)
	require.NoError(t, err)
	a := newTestApp(t, func(c *config.Config) {
		c.Redis.Addr = mr.Addr()
		c.Auth.PasswordHash = string(hash)
	})

	w := do(t, a, http.MethodGet, "/api/v1/board", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, a, http.MethodPost, "/api/v1/auth/login", gin.H{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, a, http.MethodPost, "/api/v1/auth/login", gin.H{"password": "open sesame"})
	require.Equal(t, http.StatusOK, w.Code)
	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			session = c
		}
	}
	require.NotNil(t, session)

	w = do(t, a, http.MethodGet, "/api/v1/board", nil, session)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, a, http.MethodPost, "/api/v1/auth/logout", nil, session)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, a, http.MethodGet, "/api/v1/board", nil, session)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
