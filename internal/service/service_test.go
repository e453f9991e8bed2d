package service

import (
	"context"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/alerting"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/metric"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/notification"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/symptom"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/pkg/metrics"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var base = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	ctx           context.Context
	users         *memory.UserRepository
	appointments  *memory.AppointmentRepository
	notifications *memory.NotificationRepository
	audit         *memory.AuditRepository
	auditSvc      *AuditService

	userSvc         *UserService
	metricSvc       *MetricService
	symptomSvc      *SymptomService
	appointmentSvc  *AppointmentService
	notificationSvc *NotificationService

	user *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zap.NewNop()
	collector := metrics.NewCollector("test", prometheus.NewRegistry())
	clock := func() time.Time { return base }

	f := &fixture{
		ctx:           context.Background(),
		users:         memory.NewUserRepository(),
		appointments:  memory.NewAppointmentRepository(),
		notifications: memory.NewNotificationRepository(),
		audit:         memory.NewAuditRepository(),
	}
	readings := memory.NewMetricRepository()
	symptoms := memory.NewSymptomRepository()

	opts := alerting.DefaultOptions()
	opts.Clock = clock
	engine := alerting.New(alerting.Dependencies{
		Users:         f.users,
		Metrics:       readings,
		Symptoms:      symptoms,
		Appointments:  f.appointments,
		Notifications: f.notifications,
		Collector:     collector,
		Log:           log,
	}, opts)

	f.auditSvc = NewAuditService(f.audit, collector, log)
	f.userSvc = NewUserService(f.users, f.auditSvc, log)
	f.metricSvc = NewMetricService(readings, f.users, engine, f.auditSvc, log)
	f.metricSvc.now = clock
	f.symptomSvc = NewSymptomService(symptoms, f.users, engine, f.auditSvc, log)
	f.symptomSvc.now = clock
	f.appointmentSvc = NewAppointmentService(f.appointments, f.users, engine, f.auditSvc, log)
	f.appointmentSvc.now = clock
	f.notificationSvc = NewNotificationService(f.notifications, f.users, f.auditSvc, log)

	u, err := f.userSvc.Register(f.ctx, &domain.RegisterUserCommand{Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	f.user = u
	return f
}

func (f *fixture) notificationsOf(t *testing.T, category notification.Category) []*notification.Record {
	t.Helper()
	all, err := f.notificationSvc.ListByUser(f.ctx, f.user.ID, false)
	require.NoError(t, err)

	var out []*notification.Record
	for _, n := range all {
		if n.Category == category {
			out = append(out, n)
		}
	}
	return out
}

func TestRegisterValidatesFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.userSvc.Register(f.ctx, &domain.RegisterUserCommand{Email: "not-an-email"})
	var validErr *ValidationError
	require.ErrorAs(t, err, &validErr)
	assert.Len(t, validErr.Fields, 3)

	_, err = f.userSvc.Register(f.ctx, &domain.RegisterUserCommand{Email: "ADA@example.com", FirstName: "A", LastName: "L"})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestRecordMetricForUnknownUserPersistsNothing(t *testing.T) {
	f := newFixture(t)
	ghost := uuid.New()

	_, err := f.metricSvc.Record(f.ctx, &metric.RecordReadingCommand{UserID: ghost, MetricType: "Heart Rate", Value: 150})
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	all, err := f.notifications.ListByUser(f.ctx, ghost)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRecordMetricDefaultsTimestampAndAlerts(t *testing.T) {
	f := newFixture(t)

	r, err := f.metricSvc.Record(f.ctx, &metric.RecordReadingCommand{UserID: f.user.ID, MetricType: " Heart Rate ", Value: 150})
	require.NoError(t, err)
	assert.Equal(t, "Heart Rate", r.MetricType)
	assert.True(t, r.Timestamp.Equal(base))

	assert.Len(t, f.notificationsOf(t, notification.CategoryHealthMetricAlert), 1)
}

func TestRecordSymptomRejectsSeverityOutOfRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.symptomSvc.Record(f.ctx, &symptom.RecordSymptomCommand{UserID: f.user.ID, SymptomType: "Headache", Severity: 11})
	var validErr *ValidationError
	require.ErrorAs(t, err, &validErr)
	assert.Contains(t, validErr.Fields, "severity must be between 1 and 10")
}

func TestUpdateSymptomRaisesDeterioration(t *testing.T) {
	f := newFixture(t)

	r, err := f.symptomSvc.Record(f.ctx, &symptom.RecordSymptomCommand{UserID: f.user.ID, SymptomType: "Headache", Severity: 2})
	require.NoError(t, err)

	severity := 7
	updated, err := f.symptomSvc.Update(f.ctx, f.user.ID, r.ID, &symptom.UpdateSymptomCommand{Severity: &severity})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Severity)
	assert.Len(t, f.notificationsOf(t, notification.CategorySymptomDeterioration), 1)

	_, err = f.symptomSvc.Update(f.ctx, uuid.New(), r.ID, &symptom.UpdateSymptomCommand{Severity: &severity})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCancelAppointmentNotifiesFromSnapshot(t *testing.T) {
	f := newFixture(t)

	a, err := f.appointmentSvc.ScheduleAppointment(f.ctx, &appointment.CreateAppointmentCommand{
		UserID:          f.user.ID,
		DoctorName:      "Smith",
		Location:        "Clinic",
		AppointmentDate: base.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	assert.Len(t, f.notificationsOf(t, notification.CategoryAppointmentConfirmation), 1)

	require.NoError(t, f.appointmentSvc.CancelAppointment(f.ctx, f.user.ID, a.ID))

	cancelled := f.notificationsOf(t, notification.CategoryAppointmentCancelled)
	require.Len(t, cancelled, 1)
	assert.Contains(t, cancelled[0].Message, "Dr. Smith")

	_, err = f.appointmentSvc.GetAppointment(f.ctx, f.user.ID, a.ID)
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)

	// A second cancel fails before any notice is built.
	err = f.appointmentSvc.CancelAppointment(f.ctx, f.user.ID, a.ID)
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
	assert.Len(t, f.notificationsOf(t, notification.CategoryAppointmentCancelled), 1)
}

func TestRescheduleRerunsConflictCheck(t *testing.T) {
	f := newFixture(t)
	at := base.Add(72 * time.Hour)

	_, err := f.appointmentSvc.ScheduleAppointment(f.ctx, &appointment.CreateAppointmentCommand{UserID: f.user.ID, DoctorName: "Smith", AppointmentDate: at})
	require.NoError(t, err)
	b, err := f.appointmentSvc.ScheduleAppointment(f.ctx, &appointment.CreateAppointmentCommand{UserID: f.user.ID, DoctorName: "Jones", AppointmentDate: at.Add(24 * time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, f.notificationsOf(t, notification.CategoryAppointmentConflict))

	moved := at.Add(time.Hour)
	_, err = f.appointmentSvc.UpdateAppointment(f.ctx, f.user.ID, b.ID, &appointment.UpdateAppointmentCommand{AppointmentDate: &moved})
	require.NoError(t, err)

	assert.Len(t, f.notificationsOf(t, notification.CategoryAppointmentUpdated), 1)
	assert.Len(t, f.notificationsOf(t, notification.CategoryAppointmentConflict), 1)
}

func TestUpcomingAndHistory(t *testing.T) {
	f := newFixture(t)
	for _, offset := range []time.Duration{-48 * time.Hour, -time.Hour, 2 * time.Hour, 24 * time.Hour, 31 * 24 * time.Hour} {
		f.appointments.Put(appointment.Appointment{ID: uuid.New(), UserID: f.user.ID, DoctorName: "Lee", AppointmentDate: base.Add(offset)})
	}

	upcoming, err := f.appointmentSvc.Upcoming(f.ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.True(t, upcoming[0].AppointmentDate.Equal(base.Add(2*time.Hour)))

	history, err := f.appointmentSvc.History(f.ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].AppointmentDate.Equal(base.Add(-time.Hour)))
}

func TestNotificationOwnership(t *testing.T) {
	f := newFixture(t)
	_, err := f.metricSvc.Record(f.ctx, &metric.RecordReadingCommand{UserID: f.user.ID, MetricType: "Heart Rate", Value: 150})
	require.NoError(t, err)

	alerts := f.notificationsOf(t, notification.CategoryHealthMetricAlert)
	require.Len(t, alerts, 1)
	id := alerts[0].ID

	assert.ErrorIs(t, f.notificationSvc.MarkRead(f.ctx, uuid.New(), id), ErrForbidden)
	require.NoError(t, f.notificationSvc.MarkRead(f.ctx, f.user.ID, id))

	unread, err := f.notificationSvc.ListByUser(f.ctx, f.user.ID, true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	require.NoError(t, f.notificationSvc.Delete(f.ctx, f.user.ID, id))
	assert.ErrorIs(t, f.notificationSvc.Delete(f.ctx, f.user.ID, id), notification.ErrNotificationNotFound)
}

func TestAuditEntriesFlushedOnShutdown(t *testing.T) {
	f := newFixture(t)
	_, err := f.metricSvc.Record(f.ctx, &metric.RecordReadingCommand{UserID: f.user.ID, MetricType: "Weight", Value: 150})
	require.NoError(t, err)

	f.auditSvc.Shutdown()

	entries := f.audit.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "user", entries[0].ResourceType)
	assert.Equal(t, "health_metric", entries[1].ResourceType)
	assert.JSONEq(t, `{"metric_type":"Weight","value":150}`, string(entries[1].Changes))
}
