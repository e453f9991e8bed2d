package alerting

import (
	"context"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/notification"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) seedAppointment(doctor string, at time.Time) *appointment.Appointment {
	a := &appointment.Appointment{UserID: h.userID, DoctorName: doctor, Location: "Clinic", AppointmentDate: at, ReasonForVisit: "checkup"}
	require.NoError(h.t, h.appointments.Create(h.ctx, a))
	return a
}

func TestTickTwiceSends24HourReminderOnce(t *testing.T) {
	h := newHarness(t)
	a := h.seedAppointment("Smith", base.Add(24*time.Hour))

	first := h.engine.Tick(h.ctx, base)
	scan, ok := first.Scan(Scan24Hour)
	require.True(t, ok)
	assert.Equal(t, 1, scan.Candidates)
	assert.Equal(t, 1, scan.Created)

	second := h.engine.Tick(h.ctx, base)
	scan, _ = second.Scan(Scan24Hour)
	assert.Equal(t, 0, scan.Created)
	assert.Equal(t, 1, scan.Suppressed)

	// The next hourly tick still sees the appointment in its window.
	h.engine.Tick(h.ctx, base.Add(time.Hour))

	got := h.records(h.userID, notification.CategoryReminder24Hour)
	require.Len(t, got, 1)
	assert.Equal(t, occurrenceKey(a), got[0].SubCategory)
	assert.Contains(t, got[0].Message, "appointment tomorrow with Dr. Smith")
}

func TestRemindersAreKeyedByAppointment(t *testing.T) {
	h := newHarness(t)
	h.seedAppointment("Smith", base.Add(24*time.Hour))
	h.seedAppointment("Jones", base.Add(24*time.Hour+30*time.Minute))

	result := h.engine.Tick(h.ctx, base)

	scan, _ := result.Scan(Scan24Hour)
	assert.Equal(t, 2, scan.Created)
	assert.Len(t, h.records(h.userID, notification.CategoryReminder24Hour), 2)
}

func TestRescheduledAppointmentGetsFreshReminder(t *testing.T) {
	h := newHarness(t)
	a := h.seedAppointment("Smith", base.Add(2*time.Hour))

	h.engine.Tick(h.ctx, base)
	require.Len(t, h.records(h.userID, notification.CategoryReminder2Hour), 1)

	old := *a
	moved := *a
	moved.AppointmentDate = base.Add(5 * time.Hour)
	require.NoError(t, h.appointments.Update(h.ctx, &moved))
	require.NoError(t, h.engine.OnAppointmentUpdated(h.ctx, &old, &moved))

	result := h.engine.Tick(h.ctx, base.Add(3*time.Hour))
	scan, _ := result.Scan(Scan2Hour)
	assert.Equal(t, 1, scan.Candidates)
	assert.Equal(t, 1, scan.Created)
	assert.Equal(t, 0, scan.Suppressed)

	got := h.records(h.userID, notification.CategoryReminder2Hour)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0].SubCategory, got[1].SubCategory)
}

func TestTwoHourReminderWindow(t *testing.T) {
	h := newHarness(t)
	h.seedAppointment("Inside", base.Add(2*time.Hour+30*time.Minute))
	h.seedAppointment("Outside", base.Add(2*time.Hour+31*time.Minute))

	h.engine.Tick(h.ctx, base)

	got := h.records(h.userID, notification.CategoryReminder2Hour)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "Dr. Inside")
}

func TestDayOfRemindersOnlyDuringConfiguredHour(t *testing.T) {
	h := newHarness(t)
	eightLocal := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	h.seedAppointment("Later", eightLocal.Add(3*time.Hour))
	h.seedAppointment("Tonight", eightLocal.Add(15*time.Hour)) // 23:00 local, next UTC day
	h.seedAppointment("Earlier", eightLocal.Add(-time.Hour))
	h.seedAppointment("Tomorrow", eightLocal.Add(17*time.Hour))

	skipped := h.engine.Tick(h.ctx, base)
	scan, _ := skipped.Scan(ScanDayOf)
	assert.True(t, scan.Skipped)

	result := h.engine.Tick(h.ctx, eightLocal)
	scan, _ = result.Scan(ScanDayOf)
	assert.False(t, scan.Skipped)
	assert.Equal(t, 2, scan.Created)

	got := h.records(h.userID, notification.CategoryReminderDayOf)
	require.Len(t, got, 2)
	joined := got[0].Message + " " + got[1].Message
	assert.Contains(t, joined, "Dr. Later at Mar 10, 2025 at 11:00 AM (3 hours from now)")
	assert.Contains(t, joined, "Dr. Tonight at Mar 10, 2025 at 11:00 PM (15 hours from now)")
	assert.NotContains(t, joined, "Dr. Earlier")
}

func TestTickSurvivesMalformedAppointment(t *testing.T) {
	h := newHarness(t)
	h.appointments.Put(appointment.Appointment{ID: uuid.New(), DoctorName: "Orphan", AppointmentDate: base.Add(24 * time.Hour)})
	h.seedAppointment("Smith", base.Add(24*time.Hour+10*time.Minute))

	result := h.engine.Tick(h.ctx, base)

	scan, _ := result.Scan(Scan24Hour)
	assert.Equal(t, 2, scan.Candidates)
	assert.Equal(t, 1, scan.Failed)
	assert.Equal(t, 1, scan.Created)
	assert.Contains(t, result.Summary(), "24h=candidates:2 created:1 suppressed:0 failed:1")
	assert.Contains(t, result.Summary(), "day_of=skipped")
	assert.Equal(t, 1.0, testutil.ToFloat64(h.collector.EvaluationFailures.WithLabelValues("reminder_24h")))
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	h := newHarness(t)
	h.seedAppointment("Smith", base.Add(24*time.Hour))

	s := h.engine.Scheduler()
	s.interval = 10 * time.Millisecond
	s.runOnStart = true

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(h.records(h.userID, notification.CategoryReminder24Hour)) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Len(t, h.records(h.userID, notification.CategoryReminder24Hour), 1)
}
