package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/notification"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Record) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*notification.Record, error) {
	var n notification.Record
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, notFound(err, notification.ErrNotificationNotFound)
	}
	return &n, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Record, error) {
	var out []*notification.Record
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return out, nil
}

// ExistsSince is served by idx_notification_dedup.
func (r *NotificationRepository) ExistsSince(
	ctx context.Context,
	userID uuid.UUID,
	category notification.Category,
	subCategory string,
	since time.Time,
) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).Raw(
		`SELECT EXISTS (
			SELECT 1 FROM tracking.notifications
			WHERE user_id = ? AND category = ? AND sub_category = ? AND timestamp > ?
		)`,
		userID, category, subCategory, since,
	).Scan(&exists).Error
	if err != nil {
		return false, fmt.Errorf("checking notification cooldown: %w", err)
	}
	return exists, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&notification.Record{}).
		Where("id = ?", id).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("marking notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&notification.Record{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("deleting notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}
