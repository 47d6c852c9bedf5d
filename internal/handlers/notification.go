package handlers

import (
	"net/http"
	"strconv"

	"github.com/Weskio/ai-task-whisperer/internal/dto"
	"github.com/Weskio/ai-task-whisperer/internal/notify"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	feed *notify.Feed
}

func NewNotificationHandler(feed *notify.Feed) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

// List godoc
// @Summary      Recent notifications
// @Tags         notifications
// @Produce      json
// @Security     CookieAuth
// @Param        limit  query     int  false  "Maximum number of items (default 20)"
// @Success      200    {object}  dto.ListNotificationsResponse
// @Failure      400    {object}  map[string]string
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	recent := h.feed.Recent(limit)
	items := make([]dto.NotificationResponse, len(recent))
	for i, n := range recent {
		items[i] = dto.NotificationResponse{ID: n.ID, Level: string(n.Level), Message: n.Message, At: n.At}
	}
	c.JSON(http.StatusOK, dto.ListNotificationsResponse{Items: items})
}
