package metric

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Reading) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reading, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Reading, error)

	// MostRecentByType returns the newest reading of metricType (matched
	// case-insensitively) or ErrReadingNotFound.
	MostRecentByType(ctx context.Context, userID uuid.UUID, metricType string) (*Reading, error)
}
