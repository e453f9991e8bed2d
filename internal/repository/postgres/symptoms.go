package postgres

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/symptom"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SymptomRepository struct {
	db *gorm.DB
}

func NewSymptomRepository(db *gorm.DB) *SymptomRepository {
	return &SymptomRepository{db: db}
}

func (r *SymptomRepository) Create(ctx context.Context, s *symptom.Report) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("inserting symptom: %w", err)
	}
	return nil
}

func (r *SymptomRepository) GetByID(ctx context.Context, id uuid.UUID) (*symptom.Report, error) {
	var s symptom.Report
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err, symptom.ErrReportNotFound)
	}
	return &s, nil
}

func (r *SymptomRepository) Update(ctx context.Context, s *symptom.Report) error {
	result := r.db.WithContext(ctx).
		Model(&symptom.Report{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"symptom_type": s.SymptomType,
			"severity":     s.Severity,
			"description":  s.Description,
			"timestamp":    s.Timestamp,
		})
	if result.Error != nil {
		return fmt.Errorf("updating symptom: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return symptom.ErrReportNotFound
	}
	return nil
}

func (r *SymptomRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*symptom.Report, error) {
	var out []*symptom.Report
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing symptoms: %w", err)
	}
	return out, nil
}
