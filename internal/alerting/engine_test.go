package alerting

import (
	"context"
	"sync"
	"testing"
	"time"

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

// 12:00 UTC is 06:00 in the test zone, outside the day-of hour.
var (
	base   = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	testTZ = time.FixedZone("CST", -6*60*60)
)

type recordingPublisher struct {
	mu      sync.Mutex
	records []*notification.Record
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, n *notification.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.records = append(p.records, n)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}

type harness struct {
	t   *testing.T
	ctx context.Context

	users         *memory.UserRepository
	readings      *memory.MetricRepository
	symptoms      *memory.SymptomRepository
	appointments  *memory.AppointmentRepository
	notifications *memory.NotificationRepository
	publisher     *recordingPublisher
	collector     *metrics.Collector

	engine *Engine
	now    time.Time
	userID uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		t:             t,
		ctx:           context.Background(),
		users:         memory.NewUserRepository(),
		readings:      memory.NewMetricRepository(),
		symptoms:      memory.NewSymptomRepository(),
		appointments:  memory.NewAppointmentRepository(),
		notifications: memory.NewNotificationRepository(),
		publisher:     &recordingPublisher{},
		collector:     metrics.NewCollector("test", prometheus.NewRegistry()),
		now:           base,
	}

	opts := DefaultOptions()
	opts.Location = testTZ
	opts.Clock = func() time.Time { return h.now }

	h.engine = New(Dependencies{
		Users:         h.users,
		Metrics:       h.readings,
		Symptoms:      h.symptoms,
		Appointments:  h.appointments,
		Notifications: h.notifications,
		Publisher:     h.publisher,
		Collector:     h.collector,
		Log:           zap.NewNop(),
	}, opts)

	h.userID = h.newUser()
	return h
}

func (h *harness) newUser() uuid.UUID {
	u := &domain.User{Email: uuid.NewString() + "@example.com", FirstName: "Test", LastName: "User"}
	require.NoError(h.t, h.users.Create(h.ctx, u))
	return u.ID
}

func (h *harness) recordMetric(userID uuid.UUID, metricType string, value float64) *metric.Reading {
	r := &metric.Reading{UserID: userID, MetricType: metricType, Value: value, Timestamp: h.now}
	require.NoError(h.t, h.readings.Create(h.ctx, r))
	require.NoError(h.t, h.engine.OnMetricRecorded(h.ctx, r))
	return r
}

func (h *harness) recordSymptom(symptomType string, severity int, at time.Time) *symptom.Report {
	r := &symptom.Report{UserID: h.userID, SymptomType: symptomType, Severity: severity, Description: "test", Timestamp: at}
	require.NoError(h.t, h.symptoms.Create(h.ctx, r))
	require.NoError(h.t, h.engine.OnSymptomRecorded(h.ctx, r))
	return r
}

func (h *harness) createAppointment(doctor string, at time.Time) *appointment.Appointment {
	a := &appointment.Appointment{UserID: h.userID, DoctorName: doctor, Location: "Clinic", AppointmentDate: at, ReasonForVisit: "checkup"}
	require.NoError(h.t, h.appointments.Create(h.ctx, a))
	require.NoError(h.t, h.engine.OnAppointmentCreated(h.ctx, a))
	return a
}

func (h *harness) records(userID uuid.UUID, category notification.Category) []*notification.Record {
	all, err := h.notifications.ListByUser(h.ctx, userID)
	require.NoError(h.t, err)

	var out []*notification.Record
	for _, n := range all {
		if n.Category == category {
			out = append(out, n)
		}
	}
	return out
}

func TestEveryThresholdProducesOneAlert(t *testing.T) {
	h := newHarness(t)

	for metricType, rule := range DefaultRules().Thresholds {
		t.Run(metricType, func(t *testing.T) {
			userID := h.newUser()
			h.recordMetric(userID, metricType, rule.Threshold+1)

			got := h.records(userID, notification.CategoryHealthMetricAlert)
			require.Len(t, got, 1)
			assert.Equal(t, metricType, got[0].SubCategory)
			assert.False(t, got[0].Read)
			assert.True(t, got[0].Timestamp.Equal(base))
		})
	}
}

func TestReadingAtThresholdOrUnknownTypeIsInert(t *testing.T) {
	h := newHarness(t)

	h.recordMetric(h.userID, "Heart Rate", 100)
	h.recordMetric(h.userID, "Step Count", 50000)

	assert.Empty(t, h.records(h.userID, notification.CategoryHealthMetricAlert))
}

func TestRepeatedAbnormalMetricWithinCooldownAlertsOnce(t *testing.T) {
	h := newHarness(t)

	h.recordMetric(h.userID, "Heart Rate", 120)
	h.now = base.Add(23 * time.Hour)
	h.recordMetric(h.userID, "Heart Rate", 130)
	require.Len(t, h.records(h.userID, notification.CategoryHealthMetricAlert), 1)

	h.now = base.Add(24*time.Hour + time.Second)
	h.recordMetric(h.userID, "Heart Rate", 125)
	assert.Len(t, h.records(h.userID, notification.CategoryHealthMetricAlert), 2)
	assert.Equal(t, 2, h.publisher.count())
}

func TestDifferentMetricTypesAreSeparateKeys(t *testing.T) {
	h := newHarness(t)

	h.recordMetric(h.userID, "Heart Rate", 120)
	h.recordMetric(h.userID, "Blood Sugar", 200)

	assert.Len(t, h.records(h.userID, notification.CategoryHealthMetricAlert), 2)
}

func TestWeightWithPriorHeightDerivesBMI(t *testing.T) {
	h := newHarness(t)

	h.recordMetric(h.userID, "Height", 70)
	h.now = base.Add(time.Minute)
	h.recordMetric(h.userID, "Weight", 180)

	bmi, err := h.readings.MostRecentByType(h.ctx, h.userID, metric.TypeBMI)
	require.NoError(t, err)
	assert.Equal(t, 25.82, bmi.Value)
	assert.True(t, bmi.Derived)
	assert.True(t, bmi.Timestamp.Equal(h.now))

	// 25.82 is below the BMI threshold and neither input is abnormal.
	assert.Empty(t, h.records(h.userID, notification.CategoryHealthMetricAlert))
}

func TestDerivedBMIFlowsBackThroughEvaluation(t *testing.T) {
	h := newHarness(t)

	h.recordMetric(h.userID, "weight", 300)
	h.recordMetric(h.userID, "height", 60)

	got := h.records(h.userID, notification.CategoryHealthMetricAlert)
	require.Len(t, got, 1)
	assert.Equal(t, metric.TypeBMI, got[0].SubCategory)
	assert.Contains(t, got[0].Message, "58.58")
	assert.Contains(t, got[0].Message, "obese")
}

func TestBMINotDerivedOutsideUnitBounds(t *testing.T) {
	h := newHarness(t)

	h.recordMetric(h.userID, "Height", 20)
	h.recordMetric(h.userID, "Weight", 180)

	_, err := h.readings.MostRecentByType(h.ctx, h.userID, metric.TypeBMI)
	assert.ErrorIs(t, err, metric.ErrReadingNotFound)
}

func TestChestPainIsCriticalNotHighSeverity(t *testing.T) {
	h := newHarness(t)

	h.recordSymptom("Chest Pain", 9, base)

	critical := h.records(h.userID, notification.CategoryCriticalSymptom)
	require.Len(t, critical, 1)
	assert.Equal(t, "Chest Pain", critical[0].SubCategory)
	assert.Contains(t, critical[0].Message, "chest pain")
	assert.Empty(t, h.records(h.userID, notification.CategoryHighSeveritySymptom))
	assert.Len(t, h.records(h.userID, notification.CategoryWellnessTip), 1)
}

func TestWellnessTipAtMostOncePerDay(t *testing.T) {
	h := newHarness(t)

	h.recordSymptom("Headache", 2, base)
	h.recordSymptom("Cough", 2, base)

	tips := h.records(h.userID, notification.CategoryWellnessTip)
	require.Len(t, tips, 1)
	assert.Contains(t, tips[0].Message, "headaches")
}

func TestSymptomDeterioration(t *testing.T) {
	h := newHarness(t)

	old := h.recordSymptom("Headache", 3, base)

	updated := *old
	updated.Severity = 5
	require.NoError(t, h.engine.OnSymptomUpdated(h.ctx, old, &updated))
	assert.Empty(t, h.records(h.userID, notification.CategorySymptomDeterioration))

	updated.Severity = 6
	require.NoError(t, h.engine.OnSymptomUpdated(h.ctx, old, &updated))
	got := h.records(h.userID, notification.CategorySymptomDeterioration)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "from 3/10 to 6/10")
}

func TestRecurringAndMultipleSymptomPatterns(t *testing.T) {
	h := newHarness(t)

	h.recordSymptom("Nausea", 2, base.Add(-6*24*time.Hour))
	h.recordSymptom("Nausea", 2, base.Add(-2*24*time.Hour))
	assert.Empty(t, h.records(h.userID, notification.CategoryRecurringSymptom))

	h.recordSymptom("Nausea", 2, base.Add(-time.Hour))
	recurring := h.records(h.userID, notification.CategoryRecurringSymptom)
	require.Len(t, recurring, 1)
	assert.Contains(t, recurring[0].Message, "nausea 3 times")

	h.recordSymptom("Fever", 2, base.Add(-30*time.Minute))
	assert.Empty(t, h.records(h.userID, notification.CategoryMultipleSymptoms))

	h.recordSymptom("Cough", 2, base)
	multiple := h.records(h.userID, notification.CategoryMultipleSymptoms)
	require.Len(t, multiple, 1)
	assert.Equal(t, "Multiple", multiple[0].SubCategory)
	assert.Contains(t, multiple[0].Message, "3 different symptoms today: Cough, Fever, Nausea")
}

func TestAppointmentConflictListsOtherAppointment(t *testing.T) {
	h := newHarness(t)
	first := time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC) // 9:00 AM local

	h.createAppointment("Smith", first)
	require.Len(t, h.records(h.userID, notification.CategoryAppointmentConfirmation), 1)
	assert.Empty(t, h.records(h.userID, notification.CategoryAppointmentConflict))

	second := h.createAppointment("Jones", first.Add(90*time.Minute))

	conflicts := h.records(h.userID, notification.CategoryAppointmentConflict)
	require.Len(t, conflicts, 1)
	assert.Equal(t, occurrenceKey(second), conflicts[0].SubCategory)
	assert.Contains(t, conflicts[0].Message, "Dr. Smith at Mar 12, 2025 at 9:00 AM")

	sameDay := h.records(h.userID, notification.CategoryMultipleDayAppointments)
	require.Len(t, sameDay, 1)
	assert.Contains(t, sameDay[0].Message, "1 other appointment(s) scheduled for Mar 12, 2025")
}

func TestRescheduleIntoNewConflictNotifiesAgain(t *testing.T) {
	h := newHarness(t)
	first := time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

	h.createAppointment("Smith", first)
	second := h.createAppointment("Jones", first.Add(90*time.Minute))
	require.Len(t, h.records(h.userID, notification.CategoryAppointmentConflict), 1)

	old := *second
	moved := *second
	moved.AppointmentDate = first.Add(30 * time.Minute)
	require.NoError(t, h.appointments.Update(h.ctx, &moved))
	require.NoError(t, h.engine.OnAppointmentUpdated(h.ctx, &old, &moved))

	conflicts := h.records(h.userID, notification.CategoryAppointmentConflict)
	require.Len(t, conflicts, 2)
	assert.ElementsMatch(t,
		[]string{occurrenceKey(&old), occurrenceKey(&moved)},
		[]string{conflicts[0].SubCategory, conflicts[1].SubCategory},
	)
	assert.Len(t, h.records(h.userID, notification.CategoryMultipleDayAppointments), 2)
}

func TestConflictWindowIsInclusive(t *testing.T) {
	h := newHarness(t)
	first := time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

	h.createAppointment("Smith", first)
	h.createAppointment("Jones", first.Add(2*time.Hour))
	h.createAppointment("Brown", first.Add(-2*time.Hour-time.Minute))

	assert.Len(t, h.records(h.userID, notification.CategoryAppointmentConflict), 1)
}

func TestSameDayUsesConfiguredZone(t *testing.T) {
	h := newHarness(t)

	// 23:00 and 02:00 local fall on different days but share a UTC day.
	h.createAppointment("Smith", time.Date(2025, 3, 13, 5, 0, 0, 0, time.UTC))
	h.createAppointment("Jones", time.Date(2025, 3, 13, 8, 0, 0, 0, time.UTC))

	assert.Empty(t, h.records(h.userID, notification.CategoryMultipleDayAppointments))
}

func TestAppointmentUpdateSummarizesChanges(t *testing.T) {
	h := newHarness(t)
	a := h.createAppointment("Smith", time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC))
	old := *a

	updated := *a
	updated.DoctorName = "Jones"
	updated.Location = "Annex"
	require.NoError(t, h.engine.OnAppointmentUpdated(h.ctx, &old, &updated))

	got := h.records(h.userID, notification.CategoryAppointmentUpdated)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "Doctor changed from Dr. Smith to Dr. Jones; Location changed from Clinic to Annex")

	unchanged := updated
	unchanged.ReasonForVisit = "follow-up"
	require.NoError(t, h.engine.OnAppointmentUpdated(h.ctx, &updated, &unchanged))
	assert.Len(t, h.records(h.userID, notification.CategoryAppointmentUpdated), 1)
}

func TestCancellationBuiltFromPreDeletionState(t *testing.T) {
	h := newHarness(t)
	a := h.createAppointment("Smith", time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC))

	snapshot, err := h.appointments.GetByID(h.ctx, a.ID)
	require.NoError(t, err)
	require.NoError(t, h.appointments.Delete(h.ctx, a.ID))
	require.NoError(t, h.engine.OnAppointmentDeleted(h.ctx, snapshot))

	got := h.records(h.userID, notification.CategoryAppointmentCancelled)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "Dr. Smith scheduled for Mar 12, 2025 at 9:00 AM at Clinic")

	_, err = h.appointments.GetByID(h.ctx, a.ID)
	assert.ErrorIs(t, err, appointment.ErrAppointmentNotFound)
}

func TestMissingOwnerAbortsWithoutNotifications(t *testing.T) {
	h := newHarness(t)
	ghost := uuid.New()

	err := h.engine.OnMetricRecorded(h.ctx, &metric.Reading{UserID: ghost, MetricType: "Heart Rate", Value: 150, Timestamp: base})
	require.ErrorIs(t, err, ErrOwnerNotFound)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	err = h.engine.OnAppointmentDeleted(h.ctx, &appointment.Appointment{ID: uuid.New(), UserID: ghost, DoctorName: "Smith", AppointmentDate: base})
	require.ErrorIs(t, err, ErrOwnerNotFound)

	all, err := h.notifications.ListByUser(h.ctx, ghost)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDefaultOptionsUseCentralTime(t *testing.T) {
	assert.Equal(t, DefaultTimezone, DefaultOptions().Location.String())
	assert.Equal(t, DefaultTimezone, Options{}.withDefaults().Location.String())
}
