package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TriggerReminders runs a reminder pass immediately. An empty body uses the
// engine clock; {"at": "..."} replays a pass as of that instant.
func (h *Handler) TriggerReminders(c *gin.Context) {
	var req tickRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	now := h.reminders.Now()
	if req.At != nil {
		now = *req.At
	}

	result := h.reminders.Tick(c.Request.Context(), now)
	h.log.Info("manual reminder tick",
		zap.Time("at", now),
		zap.String("summary", result.Summary()),
	)
	c.JSON(http.StatusOK, APIResponse[tickResponse]{Data: toTickResponse(result)})
}
