package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/notification"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/pkg/metrics"
	"go.uber.org/zap"
)

type Outcome int

const (
	OutcomeSuppressed Outcome = iota
	OutcomeCreated
)

func (o Outcome) String() string {
	if o == OutcomeCreated {
		return "created"
	}
	return "suppressed"
}

// Deduplicator is the only path by which notifications are created. The
// exists-since check and the insert run under a per-owner lock, so two
// producers racing on the same key in this process cannot both insert.
type Deduplicator struct {
	store     notification.Repository
	publisher notification.Publisher
	locks     *keyedMutex
	metrics   *metrics.Collector
	log       *zap.Logger
}

func NewDeduplicator(
	store notification.Repository,
	publisher notification.Publisher,
	m *metrics.Collector,
	log *zap.Logger,
) *Deduplicator {
	return &Deduplicator{
		store:     store,
		publisher: publisher,
		locks:     newKeyedMutex(),
		metrics:   m,
		log:       log,
	}
}

// Deliver creates c unless a record with the same key exists inside its
// cooldown. Suppression is not an error. The created record is published
// after the lock is released; publish failures are logged and counted only.
func (d *Deduplicator) Deliver(ctx context.Context, c Candidate, now time.Time) (Outcome, error) {
	unlock := d.locks.Lock(c.UserID)
	rec, err := d.checkAndCreate(ctx, c, now)
	unlock()

	if err != nil {
		return OutcomeSuppressed, err
	}
	if rec == nil {
		d.metrics.NotificationsTotal.WithLabelValues(string(c.Category), OutcomeSuppressed.String()).Inc()
		d.log.Debug("notification suppressed by cooldown",
			zap.String("user_id", c.UserID.String()),
			zap.String("category", string(c.Category)),
			zap.String("sub_category", c.SubCategory),
		)
		return OutcomeSuppressed, nil
	}

	d.metrics.NotificationsTotal.WithLabelValues(string(c.Category), OutcomeCreated.String()).Inc()

	if err := d.publisher.Publish(ctx, rec); err != nil {
		d.metrics.PublishFailures.Inc()
		d.log.Warn("failed to publish notification",
			zap.String("notification_id", rec.ID.String()),
			zap.Error(err),
		)
	}

	return OutcomeCreated, nil
}

func (d *Deduplicator) checkAndCreate(ctx context.Context, c Candidate, now time.Time) (*notification.Record, error) {
	if c.Cooldown > 0 {
		exists, err := d.store.ExistsSince(ctx, c.UserID, c.Category, c.SubCategory, now.Add(-c.Cooldown))
		if err != nil {
			return nil, fmt.Errorf("checking %s cooldown: %w", c.Category, err)
		}
		if exists {
			return nil, nil
		}
	}

	rec := c.record(now)
	if err := d.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving %s notification: %w", c.Category, err)
	}
	return rec, nil
}
