package v1

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/alerting"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/metric"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/notification"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/symptom"
	"github.com/google/uuid"
)

type registerUserRequest struct {
	Email     string `json:"email" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, CreatedAt: u.CreatedAt}
}

type recordMetricRequest struct {
	MetricType string     `json:"metric_type" binding:"required"`
	Value      *float64   `json:"value" binding:"required"`
	Timestamp  *time.Time `json:"timestamp"`
}

type metricResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	MetricType string    `json:"metric_type"`
	Value      float64   `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
	Derived    bool      `json:"derived"`
}

func toMetricResponse(r *metric.Reading) metricResponse {
	return metricResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		MetricType: r.MetricType,
		Value:      r.Value,
		Timestamp:  r.Timestamp,
		Derived:    r.Derived,
	}
}

type recordSymptomRequest struct {
	SymptomType string     `json:"symptom_type" binding:"required"`
	Severity    int        `json:"severity"`
	Description string     `json:"description"`
	Timestamp   *time.Time `json:"timestamp"`
}

type updateSymptomRequest struct {
	SymptomType *string    `json:"symptom_type"`
	Severity    *int       `json:"severity"`
	Description *string    `json:"description"`
	Timestamp   *time.Time `json:"timestamp"`
}

type symptomResponse struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	SymptomType   string    `json:"symptom_type"`
	Severity      int       `json:"severity"`
	SeverityLabel string    `json:"severity_label"`
	Description   string    `json:"description,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func toSymptomResponse(r *symptom.Report) symptomResponse {
	return symptomResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		SymptomType:   r.SymptomType,
		Severity:      r.Severity,
		SeverityLabel: r.SeverityLabel(),
		Description:   r.Description,
		Timestamp:     r.Timestamp,
	}
}

type scheduleAppointmentRequest struct {
	DoctorName      string    `json:"doctor_name" binding:"required"`
	Location        string    `json:"location"`
	AppointmentDate time.Time `json:"appointment_date" binding:"required"`
	ReasonForVisit  string    `json:"reason_for_visit"`
}

type updateAppointmentRequest struct {
	DoctorName      *string    `json:"doctor_name"`
	Location        *string    `json:"location"`
	AppointmentDate *time.Time `json:"appointment_date"`
	ReasonForVisit  *string    `json:"reason_for_visit"`
}

type appointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	DoctorName      string    `json:"doctor_name"`
	Location        string    `json:"location,omitempty"`
	AppointmentDate time.Time `json:"appointment_date"`
	ReasonForVisit  string    `json:"reason_for_visit,omitempty"`
}

func toAppointmentResponse(a *appointment.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:              a.ID,
		UserID:          a.UserID,
		DoctorName:      a.DoctorName,
		Location:        a.Location,
		AppointmentDate: a.AppointmentDate,
		ReasonForVisit:  a.ReasonForVisit,
	}
}

type notificationResponse struct {
	ID          uuid.UUID             `json:"id"`
	Category    notification.Category `json:"category"`
	SubCategory string                `json:"sub_category,omitempty"`
	Message     string                `json:"message"`
	Timestamp   time.Time             `json:"timestamp"`
	Read        bool                  `json:"read"`
}

func toNotificationResponse(n *notification.Record) notificationResponse {
	return notificationResponse{
		ID:          n.ID,
		Category:    n.Category,
		SubCategory: n.SubCategory,
		Message:     n.Message,
		Timestamp:   n.Timestamp,
		Read:        n.Read,
	}
}

type tickRequest struct {
	At *time.Time `json:"at"`
}

type scanResponse struct {
	Scan       string `json:"scan"`
	Skipped    bool   `json:"skipped"`
	Candidates int    `json:"candidates"`
	Created    int    `json:"created"`
	Suppressed int    `json:"suppressed"`
	Failed     int    `json:"failed"`
	Error      string `json:"error,omitempty"`
}

type tickResponse struct {
	At      time.Time      `json:"at"`
	Summary string         `json:"summary"`
	Scans   []scanResponse `json:"scans"`
}

func toTickResponse(r alerting.TickResult) tickResponse {
	scans := make([]scanResponse, 0, len(r.Scans))
	for _, s := range r.Scans {
		sr := scanResponse{
			Scan:       s.Scan,
			Skipped:    s.Skipped,
			Candidates: s.Candidates,
			Created:    s.Created,
			Suppressed: s.Suppressed,
			Failed:     s.Failed,
		}
		if s.Err != nil {
			sr.Error = s.Err.Error()
		}
		scans = append(scans, sr)
	}
	return tickResponse{At: r.At, Summary: r.Summary(), Scans: scans}
}

func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
