package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, n *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)

	// ListByUser returns the user's notifications, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Record, error)

	// ExistsSince reports whether a record with the same owner, category and
	// sub-category has a timestamp strictly after since.
	ExistsSince(ctx context.Context, userID uuid.UUID, category Category, subCategory string, since time.Time) (bool, error)

	MarkRead(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Publisher fans created records out to downstream consumers (push, email).
type Publisher interface {
	Publish(ctx context.Context, n *Record) error
}
