package service

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/metric"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/symptom"
)

// AlertEngine is the subset of *alerting.Engine the services call after a
// successful write.
type AlertEngine interface {
	OnMetricRecorded(ctx context.Context, r *metric.Reading) error
	OnSymptomRecorded(ctx context.Context, r *symptom.Report) error
	OnSymptomUpdated(ctx context.Context, old, updated *symptom.Report) error
	OnAppointmentCreated(ctx context.Context, a *appointment.Appointment) error
	OnAppointmentUpdated(ctx context.Context, old, updated *appointment.Appointment) error
	OnAppointmentDeleted(ctx context.Context, a *appointment.Appointment) error
}
