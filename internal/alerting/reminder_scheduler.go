package alerting

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/notification"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	Scan24Hour = "24h"
	Scan2Hour  = "2h"
	ScanDayOf  = "day_of"
)

// reminderScan is one lead-time bucket. window returns the inclusive range
// of appointment dates it covers at now; ok=false skips the scan.
type reminderScan struct {
	name     string
	category notification.Category
	window   func(now time.Time) (start, end time.Time, ok bool)
	message  func(a *appointment.Appointment, now time.Time) string
	// skip filters candidates inside the window.
	skip func(a *appointment.Appointment, now time.Time) bool
}

type ScanResult struct {
	Scan       string
	Skipped    bool
	Candidates int
	Created    int
	Suppressed int
	Failed     int
	Err        error
}

type TickResult struct {
	At    time.Time
	Scans []ScanResult
}

func (r TickResult) Created() int {
	n := 0
	for _, s := range r.Scans {
		n += s.Created
	}
	return n
}

func (r TickResult) Scan(name string) (ScanResult, bool) {
	for _, s := range r.Scans {
		if s.Scan == name {
			return s, true
		}
	}
	return ScanResult{}, false
}

// Summary returns a one-line description suitable for logs.
func (r TickResult) Summary() string {
	parts := make([]string, 0, len(r.Scans))
	for _, s := range r.Scans {
		if s.Skipped {
			parts = append(parts, s.Scan+"=skipped")
			continue
		}
		part := fmt.Sprintf("%s=candidates:%d created:%d suppressed:%d failed:%d",
			s.Scan, s.Candidates, s.Created, s.Suppressed, s.Failed)
		if s.Err != nil {
			part += " error:" + s.Err.Error()
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}

type ReminderScheduler struct {
	appointments appointment.Repository
	dedup        *Deduplicator
	rules        Rules
	loc          *time.Location
	dayOfHour    int
	workers      int
	interval     time.Duration
	runOnStart   bool
	clock        func() time.Time
	metrics      *metrics.Collector
	log          *zap.Logger

	scans []reminderScan
}

func newReminderScheduler(
	appointments appointment.Repository,
	dedup *Deduplicator,
	opts Options,
	m *metrics.Collector,
	log *zap.Logger,
) *ReminderScheduler {
	s := &ReminderScheduler{
		appointments: appointments,
		dedup:        dedup,
		rules:        opts.Rules,
		loc:          opts.Location,
		dayOfHour:    opts.DayOfHour,
		workers:      opts.Workers,
		interval:     opts.Interval,
		runOnStart:   opts.RunOnStart,
		clock:        opts.Clock,
		metrics:      m,
		log:          log,
	}
	s.scans = []reminderScan{
		{
			name:     Scan24Hour,
			category: notification.CategoryReminder24Hour,
			window:   leadWindow(24*time.Hour, time.Hour),
			message:  s.message24Hour,
		},
		{
			name:     Scan2Hour,
			category: notification.CategoryReminder2Hour,
			window:   leadWindow(2*time.Hour, 30*time.Minute),
			message:  s.message2Hour,
		},
		{
			name:     ScanDayOf,
			category: notification.CategoryReminderDayOf,
			window:   s.dayOfWindow,
			message:  s.messageDayOf,
			skip: func(a *appointment.Appointment, now time.Time) bool {
				return a.IsPast(now)
			},
		},
	}
	return s
}

func leadWindow(lead, slack time.Duration) func(time.Time) (time.Time, time.Time, bool) {
	return func(now time.Time) (time.Time, time.Time, bool) {
		at := now.Add(lead)
		return at.Add(-slack), at.Add(slack), true
	}
}

// dayOfWindow is open only during DayOfHour in the configured zone.
func (s *ReminderScheduler) dayOfWindow(now time.Time) (time.Time, time.Time, bool) {
	if now.In(s.loc).Hour() != s.dayOfHour {
		return time.Time{}, time.Time{}, false
	}
	return startOfDay(now, s.loc), endOfDay(now, s.loc), true
}

// Start runs Tick every interval until ctx is cancelled. Intended to be
// called with `go`.
func (s *ReminderScheduler) Start(ctx context.Context) {
	s.log.Info("reminder scheduler started",
		zap.Duration("interval", s.interval),
		zap.String("timezone", s.loc.String()),
	)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if s.runOnStart {
		s.runTick(ctx)
	}

	for {
		select {
		case <-ticker.C:
			s.runTick(ctx)
		case <-ctx.Done():
			s.log.Info("reminder scheduler stopped")
			return
		}
	}
}

func (s *ReminderScheduler) runTick(ctx context.Context) {
	result := s.Tick(ctx, s.clock())
	if result.Created() > 0 {
		s.log.Info("reminder tick", zap.String("summary", result.Summary()))
	} else {
		s.log.Debug("reminder tick", zap.String("summary", result.Summary()))
	}
}

// Tick runs every scan against now. Scans and candidates are independent:
// a failing query or a malformed appointment is logged and counted, never
// propagated.
func (s *ReminderScheduler) Tick(ctx context.Context, now time.Time) TickResult {
	start := time.Now()
	defer func() {
		s.metrics.SchedulerTickDuration.Observe(time.Since(start).Seconds())
	}()

	result := TickResult{At: now}
	for _, scan := range s.scans {
		result.Scans = append(result.Scans, s.runScan(ctx, scan, now))
	}
	return result
}

func (s *ReminderScheduler) runScan(ctx context.Context, scan reminderScan, now time.Time) ScanResult {
	res := ScanResult{Scan: scan.name}

	from, to, ok := scan.window(now)
	if !ok {
		res.Skipped = true
		return res
	}

	due, err := s.appointments.ListBetween(ctx, from, to)
	if err != nil {
		s.metrics.EvaluationFailures.WithLabelValues("reminder_" + scan.name).Inc()
		s.log.Error("reminder scan query failed",
			zap.String("scan", scan.name),
			zap.Time("from", from),
			zap.Time("to", to),
			zap.Error(err),
		)
		res.Err = err
		return res
	}
	res.Candidates = len(due)
	s.metrics.ReminderCandidates.WithLabelValues(scan.name).Add(float64(len(due)))

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.workers)

	for _, a := range due {
		g.Go(func() error {
			outcome, err := s.remind(ctx, scan, a, now)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				res.Failed++
			case outcome == nil:
			case *outcome == OutcomeCreated:
				res.Created++
			default:
				res.Suppressed++
			}
			return nil
		})
	}
	_ = g.Wait()

	return res
}

// remind returns a nil outcome when the candidate was filtered out.
func (s *ReminderScheduler) remind(ctx context.Context, scan reminderScan, a *appointment.Appointment, now time.Time) (*Outcome, error) {
	if err := a.Validate(); err != nil {
		s.itemFailed(scan, a, err)
		return nil, err
	}
	if scan.skip != nil && scan.skip(a, now) {
		return nil, nil
	}

	c := Candidate{
		UserID:      a.UserID,
		Category:    scan.category,
		SubCategory: occurrenceKey(a),
		Message:     scan.message(a, now),
		Cooldown:    s.rules.Cooldowns.For(scan.category),
	}

	outcome, err := s.dedup.Deliver(ctx, c, now)
	if err != nil {
		s.itemFailed(scan, a, err)
		return nil, err
	}
	return &outcome, nil
}

func (s *ReminderScheduler) itemFailed(scan reminderScan, a *appointment.Appointment, err error) {
	s.metrics.EvaluationFailures.WithLabelValues("reminder_" + scan.name).Inc()
	s.log.Error("reminder failed",
		zap.String("scan", scan.name),
		zap.String("appointment_id", a.ID.String()),
		zap.Error(err),
	)
}

func (s *ReminderScheduler) message24Hour(a *appointment.Appointment, _ time.Time) string {
	return fmt.Sprintf("24-HOUR REMINDER: You have an appointment tomorrow with Dr. %s at %s. "+
		"Location: %s. Reason: %s. Please prepare any necessary documents and arrive 15 minutes early.",
		a.DoctorName, formatAppointmentTime(a.AppointmentDate, s.loc), a.Location, a.ReasonForVisit)
}

func (s *ReminderScheduler) message2Hour(a *appointment.Appointment, _ time.Time) string {
	return fmt.Sprintf("2-HOUR REMINDER: Your appointment with Dr. %s is coming up at %s. "+
		"Location: %s. Please start preparing to leave soon to arrive on time.",
		a.DoctorName, formatAppointmentTime(a.AppointmentDate, s.loc), a.Location)
}

func (s *ReminderScheduler) messageDayOf(a *appointment.Appointment, now time.Time) string {
	hours := int(a.AppointmentDate.Sub(now).Hours())
	return fmt.Sprintf("GOOD MORNING REMINDER: You have an appointment today with Dr. %s at %s "+
		"(%d hours from now). Location: %s. Reason: %s. Have a great day!",
		a.DoctorName, formatAppointmentTime(a.AppointmentDate, s.loc), hours, a.Location, a.ReasonForVisit)
}
