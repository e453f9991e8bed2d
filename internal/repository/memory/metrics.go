package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/metric"
	"github.com/google/uuid"
)

type MetricRepository struct {
	mu       sync.RWMutex
	readings map[uuid.UUID]metric.Reading
}

func NewMetricRepository() *MetricRepository {
	return &MetricRepository{readings: make(map[uuid.UUID]metric.Reading)}
}

func (r *MetricRepository) Create(_ context.Context, m *metric.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now().UTC()
	r.readings[m.ID] = *m
	return nil
}

func (r *MetricRepository) GetByID(_ context.Context, id uuid.UUID) (*metric.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.readings[id]
	if !ok {
		return nil, metric.ErrReadingNotFound
	}
	return &m, nil
}

// ListByUser returns readings newest first.
func (r *MetricRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*metric.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*metric.Reading
	for _, m := range r.readings {
		if m.UserID == userID {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (r *MetricRepository) MostRecentByType(_ context.Context, userID uuid.UUID, metricType string) (*metric.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *metric.Reading
	for _, m := range r.readings {
		if m.UserID != userID || !m.IsType(metricType) {
			continue
		}
		if latest == nil || m.Timestamp.After(latest.Timestamp) {
			m := m
			latest = &m
		}
	}
	if latest == nil {
		return nil, metric.ErrReadingNotFound
	}
	return latest, nil
}
