package v1

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/alerting"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/service"
	"go.uber.org/zap"
)

// ReminderTicker runs one reminder pass on demand.
type ReminderTicker interface {
	Tick(ctx context.Context, now time.Time) alerting.TickResult
	Now() time.Time
}

type Handler struct {
	users         *service.UserService
	metrics       *service.MetricService
	symptoms      *service.SymptomService
	appointments  *service.AppointmentService
	notifications *service.NotificationService
	reminders     ReminderTicker
	log           *zap.Logger
}

type Services struct {
	Users         *service.UserService
	Metrics       *service.MetricService
	Symptoms      *service.SymptomService
	Appointments  *service.AppointmentService
	Notifications *service.NotificationService
	Reminders     ReminderTicker
}

func NewHandler(svc Services, log *zap.Logger) *Handler {
	return &Handler{
		users:         svc.Users,
		metrics:       svc.Metrics,
		symptoms:      svc.Symptoms,
		appointments:  svc.Appointments,
		notifications: svc.Notifications,
		reminders:     svc.Reminders,
		log:           log,
	}
}
