package v1

import (
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/symptom"
	"github.com/gin-gonic/gin"
)

func (h *Handler) RecordSymptom(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}
	var req recordSymptomRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &symptom.RecordSymptomCommand{
		UserID:      userID,
		SymptomType: req.SymptomType,
		Severity:    req.Severity,
		Description: req.Description,
	}
	if req.Timestamp != nil {
		cmd.Timestamp = *req.Timestamp
	}

	r, err := h.symptoms.Record(c.Request.Context(), cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toSymptomResponse(r))
}

func (h *Handler) UpdateSymptom(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req updateSymptomRequest
	if !bindJSON(c, &req) {
		return
	}

	r, err := h.symptoms.Update(c.Request.Context(), userID, id, &symptom.UpdateSymptomCommand{
		SymptomType: req.SymptomType,
		Severity:    req.Severity,
		Description: req.Description,
		Timestamp:   req.Timestamp,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toSymptomResponse(r))
}

func (h *Handler) GetSymptom(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	r, err := h.symptoms.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toSymptomResponse(r))
}

func (h *Handler) ListSymptoms(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}

	reports, err := h.symptoms.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, mapSlice(reports, toSymptomResponse))
}
