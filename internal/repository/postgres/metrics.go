package postgres

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/metric"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MetricRepository struct {
	db *gorm.DB
}

func NewMetricRepository(db *gorm.DB) *MetricRepository {
	return &MetricRepository{db: db}
}

func (r *MetricRepository) Create(ctx context.Context, m *metric.Reading) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("inserting health metric: %w", err)
	}
	return nil
}

func (r *MetricRepository) GetByID(ctx context.Context, id uuid.UUID) (*metric.Reading, error) {
	var m metric.Reading
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, metric.ErrReadingNotFound)
	}
	return &m, nil
}

func (r *MetricRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*metric.Reading, error) {
	var out []*metric.Reading
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing health metrics: %w", err)
	}
	return out, nil
}

func (r *MetricRepository) MostRecentByType(ctx context.Context, userID uuid.UUID, metricType string) (*metric.Reading, error) {
	var m metric.Reading
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND LOWER(metric_type) = LOWER(?)", userID, metricType).
		Order("timestamp DESC").
		First(&m).Error
	if err != nil {
		return nil, notFound(err, metric.ErrReadingNotFound)
	}
	return &m, nil
}
