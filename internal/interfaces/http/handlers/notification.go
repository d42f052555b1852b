// internal/interfaces/http/handlers/notification.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/notification"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// NotificationHandler handles user notification endpoints
type NotificationHandler struct {
	dispatcher *notification.Dispatcher
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(dispatcher *notification.Dispatcher) *NotificationHandler {
	return &NotificationHandler{dispatcher: dispatcher}
}

// List handles GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	unreadOnly := c.Query("unread") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifications, err := h.dispatcher.List(userID, unreadOnly, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Notifications retrieved", notifications)
}

// MarkRead handles PUT /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.dispatcher.MarkRead(userID, id); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Notification marked read", nil)
}

// MarkAllRead handles PUT /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	if err := h.dispatcher.MarkAllRead(userID); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "All notifications marked read", nil)
}
