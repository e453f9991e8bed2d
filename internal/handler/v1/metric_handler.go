package v1

import (
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/metric"
	"github.com/gin-gonic/gin"
)

func (h *Handler) RecordMetric(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}
	var req recordMetricRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &metric.RecordReadingCommand{UserID: userID, MetricType: req.MetricType, Value: *req.Value}
	if req.Timestamp != nil {
		cmd.Timestamp = *req.Timestamp
	}

	r, err := h.metrics.Record(c.Request.Context(), cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toMetricResponse(r))
}

func (h *Handler) ListMetrics(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}

	readings, err := h.metrics.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, mapSlice(readings, toMetricResponse))
}

func (h *Handler) GetMetric(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	r, err := h.metrics.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toMetricResponse(r))
}
