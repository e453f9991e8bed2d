package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListNotifications(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}

	list, err := h.notifications.ListByUser(c.Request.Context(), userID, parseQueryBool(c, "unread"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, mapSlice(list, toNotificationResponse))
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), userID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.Delete(c.Request.Context(), userID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
