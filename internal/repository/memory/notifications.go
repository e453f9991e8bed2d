package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/notification"
	"github.com/google/uuid"
)

type NotificationRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]notification.Record
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{records: make(map[uuid.UUID]notification.Record)}
}

func (r *NotificationRepository) Create(_ context.Context, n *notification.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	r.records[n.ID] = *n
	return nil
}

func (r *NotificationRepository) GetByID(_ context.Context, id uuid.UUID) (*notification.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.records[id]
	if !ok {
		return nil, notification.ErrNotificationNotFound
	}
	return &n, nil
}

// ListByUser returns records newest first.
func (r *NotificationRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*notification.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*notification.Record
	for _, n := range r.records {
		if n.UserID == userID {
			n := n
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (r *NotificationRepository) ExistsSince(
	_ context.Context,
	userID uuid.UUID,
	category notification.Category,
	subCategory string,
	since time.Time,
) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.records {
		if n.UserID == userID && n.Category == category && n.SubCategory == subCategory && n.Timestamp.After(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.records[id]
	if !ok {
		return notification.ErrNotificationNotFound
	}
	n.Read = true
	r.records[id] = n
	return nil
}

func (r *NotificationRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return notification.ErrNotificationNotFound
	}
	delete(r.records, id)
	return nil
}
