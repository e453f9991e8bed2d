package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/appointment"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("inserting appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err, appointment.ErrAppointmentNotFound)
	}
	return &a, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, a *appointment.Appointment) error {
	result := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"doctor_name":      a.DoctorName,
			"location":         a.Location,
			"appointment_date": a.AppointmentDate,
			"reason_for_visit": a.ReasonForVisit,
		})
	if result.Error != nil {
		return fmt.Errorf("updating appointment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

// Delete removes the row permanently. Appointments carry no soft-delete
// column.
func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&appointment.Appointment{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("deleting appointment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("appointment_date ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return out, nil
}

func (r *AppointmentRepository) ListBetween(ctx context.Context, start, end time.Time) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Where("appointment_date BETWEEN ? AND ?", start, end).
		Order("appointment_date ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing appointments in window: %w", err)
	}
	return out, nil
}
