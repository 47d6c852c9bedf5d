package handlers

import (
	"errors"
	"net/http"

	"github.com/Weskio/ai-task-whisperer/internal/auth"
	"github.com/Weskio/ai-task-whisperer/internal/dto"
	"github.com/Weskio/ai-task-whisperer/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles owner login and logout.
type AuthHandler struct {
	sessions *auth.Store
	owner    *service.OwnerService
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(sessions *auth.Store, owner *service.OwnerService) *AuthHandler {
	return &AuthHandler{sessions: sessions, owner: owner}
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Owner passcode"
// @Success      200   {object}  map[string]bool
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.owner.ValidatePassword(req.Password); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	sessionID, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.SetCookie(auth.SessionCookieName, sessionID, int(h.sessions.TTL().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Logout godoc
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(auth.SessionCookieName)
	if err == nil && sessionID != "" {
		_ = h.sessions.Delete(c.Request.Context(), sessionID)
	}
	c.SetCookie(auth.SessionCookieName, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}
