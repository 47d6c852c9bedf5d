package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/Weskio/ai-task-whisperer/internal/dto"
	"github.com/Weskio/ai-task-whisperer/internal/notify"
	"github.com/Weskio/ai-task-whisperer/internal/repo"

	"github.com/gin-gonic/gin"
)

const (
	msgKeySaved   = "API key saved successfully"
	msgKeyInvalid = "Please enter a valid API key"
)

// CacheInvalidator drops cached suggestions when the key changes.
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

type SettingsHandler struct {
	creds    *repo.CredentialRepo
	cache    CacheInvalidator
	notifier notify.Notifier
}

// NewSettingsHandler returns a SettingsHandler. cache may be nil.
func NewSettingsHandler(creds *repo.CredentialRepo, cache CacheInvalidator, n notify.Notifier) *SettingsHandler {
	return &SettingsHandler{creds: creds, cache: cache, notifier: n}
}

// APIKeyStatus godoc
// @Summary      Whether a completion API key is stored
// @Tags         settings
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.APIKeyStatusResponse
// @Failure      500  {object}  map[string]string
// @Router       /settings/api-key [get]
func (h *SettingsHandler) APIKeyStatus(c *gin.Context) {
	key, err := h.creds.APIKey(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.APIKeyStatusResponse{Configured: key != ""})
}

// SetAPIKey godoc
// @Summary      Store the completion API key
// @Tags         settings
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.APIKeyRequest  true  "API key"
// @Success      200   {object}  dto.APIKeyStatusResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /settings/api-key [put]
func (h *SettingsHandler) SetAPIKey(c *gin.Context) {
	var req dto.APIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		h.notifier.Notify(notify.LevelError, msgKeyInvalid)
		c.JSON(http.StatusBadRequest, gin.H{"error": msgKeyInvalid})
		return
	}
	if err := h.creds.SetAPIKey(c.Request.Context(), req.APIKey); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.invalidate(c.Request.Context())
	h.notifier.Notify(notify.LevelSuccess, msgKeySaved)
	c.JSON(http.StatusOK, dto.APIKeyStatusResponse{Configured: true})
}

// ClearAPIKey godoc
// @Summary      Remove the completion API key
// @Description  Suggestions fall back to the built-in keyword lists.
// @Tags         settings
// @Security     CookieAuth
// @Success      204
// @Failure      500  {object}  map[string]string
// @Router       /settings/api-key [delete]
func (h *SettingsHandler) ClearAPIKey(c *gin.Context) {
	if err := h.creds.ClearAPIKey(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.invalidate(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *SettingsHandler) invalidate(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateAll(ctx); err != nil {
		log.Printf("invalidate suggestion cache: %v", err)
	}
}
