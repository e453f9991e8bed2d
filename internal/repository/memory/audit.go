package memory

import (
	"context"
	"sync"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain"
	"github.com/google/uuid"
)

type AuditRepository struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) Create(_ context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *AuditRepository) Entries() []domain.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuditLog(nil), r.entries...)
}
