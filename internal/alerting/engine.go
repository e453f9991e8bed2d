package alerting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/metric"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/notification"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/symptom"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/dmehra2102/prod-golang-projects/healthtrack/internal/alerting"

// DefaultTimezone is the zone used when Options.Location is nil.
const DefaultTimezone = "America/Chicago"

// ErrOwnerNotFound is returned by the On* handlers when the record's owner
// does not exist. No notification is built in that case.
var ErrOwnerNotFound = fmt.Errorf("owner not found: %w", domain.ErrUserNotFound)

type Dependencies struct {
	Users         domain.UserRepository
	Metrics       metric.Repository
	Symptoms      symptom.Repository
	Appointments  appointment.Repository
	Notifications notification.Repository
	// Nil disables fan-out.
	Publisher notification.Publisher

	Collector *metrics.Collector
	Log       *zap.Logger
}

type Options struct {
	Rules Rules
	// Zone for calendar-day windows and DayOfHour. Defaults to
	// DefaultTimezone, or UTC when the zone database is unavailable.
	Location   *time.Location
	DayOfHour  int
	Workers    int
	Interval   time.Duration
	RunOnStart bool
	Clock      func() time.Time
}

func DefaultOptions() Options {
	return Options{
		Rules:     DefaultRules(),
		Location:  defaultLocation(),
		DayOfHour: 8,
		Workers:   4,
		Interval:  time.Hour,
		Clock:     time.Now,
	}
}

func defaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (o Options) withDefaults() Options {
	if o.Rules.Cooldowns == nil {
		o.Rules = DefaultRules()
	}
	if o.Location == nil {
		o.Location = defaultLocation()
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Interval <= 0 {
		o.Interval = time.Hour
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// Engine is the entry point for everything that raises notifications. The
// On* handlers are called after the triggering write succeeded; they only
// return errors for a missing owner or a failed owner lookup. Rule
// failures are logged and counted.
type Engine struct {
	users    domain.UserRepository
	readings metric.Repository
	symptoms symptom.Repository

	evaluator  *MetricEvaluator
	classifier *SymptomClassifier
	patterns   *PatternDetector
	conflicts  *ConflictDetector
	dedup      *Deduplicator
	scheduler  *ReminderScheduler

	clock     func() time.Time
	collector *metrics.Collector
	log       *zap.Logger
	tracer    trace.Tracer
}

func New(deps Dependencies, opts Options) *Engine {
	opts = opts.withDefaults()

	publisher := deps.Publisher
	if publisher == nil {
		publisher = nopPublisher{}
	}
	log := deps.Log.Named("alerting")
	dedup := NewDeduplicator(deps.Notifications, publisher, deps.Collector, log)

	return &Engine{
		users:      deps.Users,
		readings:   deps.Metrics,
		symptoms:   deps.Symptoms,
		evaluator:  NewMetricEvaluator(opts.Rules, deps.Metrics),
		classifier: NewSymptomClassifier(opts.Rules),
		patterns:   NewPatternDetector(opts.Rules),
		conflicts:  NewConflictDetector(opts.Rules, deps.Appointments, opts.Location),
		dedup:      dedup,
		scheduler:  newReminderScheduler(deps.Appointments, dedup, opts, deps.Collector, log.Named("scheduler")),
		clock:      opts.Clock,
		collector:  deps.Collector,
		log:        log,
		tracer:     otel.Tracer(tracerName),
	}
}

func (e *Engine) Scheduler() *ReminderScheduler {
	return e.scheduler
}

func (e *Engine) OnMetricRecorded(ctx context.Context, r *metric.Reading) error {
	ctx, span := e.start(ctx, "OnMetricRecorded", r.UserID)
	defer span.End()

	if err := e.verifyOwner(ctx, span, r.UserID); err != nil {
		return err
	}
	now := e.clock()

	e.evaluateReading(ctx, r, now)

	derived, err := e.evaluator.DeriveBMI(ctx, r, now)
	if err != nil {
		e.failed("derive_bmi", r.UserID, err)
		return nil
	}
	if derived == nil {
		return nil
	}
	if err := e.readings.Create(ctx, derived); err != nil {
		e.failed("derive_bmi", r.UserID, fmt.Errorf("saving derived BMI: %w", err))
		return nil
	}
	e.collector.DerivedMetrics.Inc()
	span.SetAttributes(attribute.Float64("bmi", derived.Value))

	e.evaluateReading(ctx, derived, now)
	return nil
}

func (e *Engine) evaluateReading(ctx context.Context, r *metric.Reading, now time.Time) {
	if c, ok := e.evaluator.Evaluate(r); ok {
		e.deliver(ctx, "metric", c, now)
	}
}

func (e *Engine) OnSymptomRecorded(ctx context.Context, r *symptom.Report) error {
	ctx, span := e.start(ctx, "OnSymptomRecorded", r.UserID)
	defer span.End()

	if err := e.verifyOwner(ctx, span, r.UserID); err != nil {
		return err
	}
	now := e.clock()

	e.deliver(ctx, "symptom", e.classifier.Classify(r), now)
	e.deliver(ctx, "wellness_tip", e.classifier.WellnessTip(r), now)

	history, err := e.symptoms.ListByUser(ctx, r.UserID)
	if err != nil {
		e.failed("pattern", r.UserID, fmt.Errorf("listing symptom history: %w", err))
		return nil
	}
	if c, ok := e.patterns.Recurring(r, history, now); ok {
		e.deliver(ctx, "pattern_recurring", c, now)
	}
	if c, ok := e.patterns.Multiple(r.UserID, history, now); ok {
		e.deliver(ctx, "pattern_multiple", c, now)
	}
	return nil
}

func (e *Engine) OnSymptomUpdated(ctx context.Context, old, updated *symptom.Report) error {
	ctx, span := e.start(ctx, "OnSymptomUpdated", updated.UserID)
	defer span.End()

	if err := e.verifyOwner(ctx, span, updated.UserID); err != nil {
		return err
	}
	if c, ok := e.classifier.Deterioration(old, updated); ok {
		e.deliver(ctx, "deterioration", c, e.clock())
	}
	return nil
}

func (e *Engine) OnAppointmentCreated(ctx context.Context, a *appointment.Appointment) error {
	ctx, span := e.start(ctx, "OnAppointmentCreated", a.UserID)
	defer span.End()

	if err := e.verifyOwner(ctx, span, a.UserID); err != nil {
		return err
	}
	now := e.clock()

	e.deliver(ctx, "appointment_confirmation", e.conflicts.Confirmation(a), now)
	e.checkSchedule(ctx, a, now)
	return nil
}

// OnAppointmentUpdated reruns the same-day and conflict checks only when the
// date moved.
func (e *Engine) OnAppointmentUpdated(ctx context.Context, old, updated *appointment.Appointment) error {
	ctx, span := e.start(ctx, "OnAppointmentUpdated", updated.UserID)
	defer span.End()

	if err := e.verifyOwner(ctx, span, updated.UserID); err != nil {
		return err
	}
	now := e.clock()

	if c, ok := e.conflicts.Update(old, updated); ok {
		e.deliver(ctx, "appointment_update", c, now)
	}
	if !old.AppointmentDate.Equal(updated.AppointmentDate) {
		e.checkSchedule(ctx, updated, now)
	}
	return nil
}

// OnAppointmentDeleted expects the appointment as it was before deletion.
func (e *Engine) OnAppointmentDeleted(ctx context.Context, a *appointment.Appointment) error {
	ctx, span := e.start(ctx, "OnAppointmentDeleted", a.UserID)
	defer span.End()

	if err := e.verifyOwner(ctx, span, a.UserID); err != nil {
		return err
	}
	e.deliver(ctx, "appointment_cancellation", e.conflicts.Cancellation(a), e.clock())
	return nil
}

func (e *Engine) checkSchedule(ctx context.Context, a *appointment.Appointment, now time.Time) {
	if c, ok, err := e.conflicts.SameDay(ctx, a); err != nil {
		e.failed("appointment_same_day", a.UserID, err)
	} else if ok {
		e.deliver(ctx, "appointment_same_day", c, now)
	}

	if c, ok, err := e.conflicts.Conflicts(ctx, a); err != nil {
		e.failed("appointment_conflict", a.UserID, err)
	} else if ok {
		e.deliver(ctx, "appointment_conflict", c, now)
	}
}

// Tick runs one reminder pass at now.
func (e *Engine) Tick(ctx context.Context, now time.Time) TickResult {
	ctx, span := e.tracer.Start(ctx, "alerting.Tick", trace.WithAttributes(attribute.String("now", now.Format(time.RFC3339))))
	defer span.End()

	result := e.scheduler.Tick(ctx, now)
	span.SetAttributes(attribute.Int("created", result.Created()))
	return result
}

func (e *Engine) Now() time.Time {
	return e.clock()
}

func (e *Engine) start(ctx context.Context, op string, userID uuid.UUID) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "alerting."+op, trace.WithAttributes(attribute.String("user_id", userID.String())))
}

func (e *Engine) verifyOwner(ctx context.Context, span trace.Span, userID uuid.UUID) error {
	_, err := e.users.GetByID(ctx, userID)
	if err == nil {
		return nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "owner lookup failed")
	if errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("%w: %s", ErrOwnerNotFound, userID)
	}
	return fmt.Errorf("verifying owner: %w", err)
}

func (e *Engine) deliver(ctx context.Context, stage string, c Candidate, now time.Time) {
	if _, err := e.dedup.Deliver(ctx, c, now); err != nil {
		e.failed(stage, c.UserID, err)
	}
}

func (e *Engine) failed(stage string, userID uuid.UUID, err error) {
	e.collector.EvaluationFailures.WithLabelValues(stage).Inc()
	e.log.Error("alert evaluation failed",
		zap.String("stage", stage),
		zap.String("user_id", userID.String()),
		zap.Error(err),
	)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, *notification.Record) error { return nil }
