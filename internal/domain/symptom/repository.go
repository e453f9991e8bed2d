package symptom

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*Report, error)
	Update(ctx context.Context, r *Report) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Report, error)
}
