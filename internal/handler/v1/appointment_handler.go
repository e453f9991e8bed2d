package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/appointment"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ScheduleAppointment(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}
	var req scheduleAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.appointments.ScheduleAppointment(c.Request.Context(), &appointment.CreateAppointmentCommand{
		UserID:          userID,
		DoctorName:      req.DoctorName,
		Location:        req.Location,
		AppointmentDate: req.AppointmentDate,
		ReasonForVisit:  req.ReasonForVisit,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toAppointmentResponse(a))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.appointments.GetAppointment(c.Request.Context(), userID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(a))
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req updateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.appointments.UpdateAppointment(c.Request.Context(), userID, id, &appointment.UpdateAppointmentCommand{
		DoctorName:      req.DoctorName,
		Location:        req.Location,
		AppointmentDate: req.AppointmentDate,
		ReasonForVisit:  req.ReasonForVisit,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(a))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.appointments.CancelAppointment(c.Request.Context(), userID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UpcomingAppointments(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}

	list, err := h.appointments.Upcoming(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, mapSlice(list, toAppointmentResponse))
}

func (h *Handler) AppointmentHistory(c *gin.Context) {
	userID, ok := parseUUID(c, "userId")
	if !ok {
		return
	}

	list, err := h.appointments.History(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, mapSlice(list, toAppointmentResponse))
}
