package handlers

import (
	"fmt"
	"net/http"

	"blogapi/internal/middleware"
	"blogapi/internal/services"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifications *services.NotificationService
	strict        bool
}

func NewNotificationHandler(notifications *services.NotificationService, strict bool) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, strict: strict}
}

// ListForUser handles GET /notifications/user/:userId
func (h *NotificationHandler) ListForUser(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	if h.strict {
		if actor, _ := middleware.CurrentUserID(c); actor != userID {
			RespondError(c, fmt.Errorf("%w: notifications belong to another user", services.ErrForbidden))
			return
		}
	}

	notifications, err := h.notifications.ListForUser(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}
