package service

import (
	"context"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/notification"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationService exposes the user-facing side of notifications.
// Records are only ever created by the alerting engine.
type NotificationService struct {
	repo     notification.Repository
	users    domain.UserRepository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewNotificationService(
	repo notification.Repository,
	users domain.UserRepository,
	auditSvc *AuditService,
	log *zap.Logger,
) *NotificationService {
	return &NotificationService{repo: repo, users: users, auditSvc: auditSvc, log: log}
}

func (s *NotificationService) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*notification.Record, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	all, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	if !unreadOnly {
		return all, nil
	}

	out := make([]*notification.Record, 0, len(all))
	for _, n := range all {
		if !n.Read {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	return nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting notification: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       userID,
		Action:       string(domain.ActionDelete),
		ResourceType: "notification",
		ResourceID:   id.String(),
	})
	return nil
}

func (s *NotificationService) owned(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return ErrForbidden
	}
	return nil
}
