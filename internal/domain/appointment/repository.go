package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByUser returns the user's appointments ordered by date ascending.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Appointment, error)

	// ListBetween returns appointments of all users with start <= date <= end.
	// Used by the reminder scans.
	ListBetween(ctx context.Context, start, end time.Time) ([]*Appointment, error)
}
