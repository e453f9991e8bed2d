package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/symptom"
	"github.com/google/uuid"
)

type SymptomRepository struct {
	mu      sync.RWMutex
	reports map[uuid.UUID]symptom.Report
}

func NewSymptomRepository() *SymptomRepository {
	return &SymptomRepository{reports: make(map[uuid.UUID]symptom.Report)}
}

func (r *SymptomRepository) Create(_ context.Context, s *symptom.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	r.reports[s.ID] = *s
	return nil
}

func (r *SymptomRepository) GetByID(_ context.Context, id uuid.UUID) (*symptom.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.reports[id]
	if !ok {
		return nil, symptom.ErrReportNotFound
	}
	return &s, nil
}

func (r *SymptomRepository) Update(_ context.Context, s *symptom.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reports[s.ID]; !ok {
		return symptom.ErrReportNotFound
	}
	s.UpdatedAt = time.Now().UTC()
	r.reports[s.ID] = *s
	return nil
}

// ListByUser returns reports newest first.
func (r *SymptomRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*symptom.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*symptom.Report
	for _, s := range r.reports {
		if s.UserID == userID {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}
