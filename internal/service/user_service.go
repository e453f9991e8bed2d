package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService struct {
	repo     domain.UserRepository
	auditSvc *AuditService
	log      *zap.Logger
}

func NewUserService(repo domain.UserRepository, auditSvc *AuditService, log *zap.Logger) *UserService {
	return &UserService{repo: repo, auditSvc: auditSvc, log: log}
}

func (s *UserService) Register(ctx context.Context, cmd *domain.RegisterUserCommand) (*domain.User, error) {
	var errs []string
	if _, err := mail.ParseAddress(cmd.Email); err != nil {
		errs = append(errs, "email is invalid")
	}
	if strings.TrimSpace(cmd.FirstName) == "" {
		errs = append(errs, "first_name is required")
	}
	if strings.TrimSpace(cmd.LastName) == "" {
		errs = append(errs, "last_name is required")
	}
	if err := validationErr(errs); err != nil {
		return nil, err
	}

	u := &domain.User{
		Email:     strings.ToLower(strings.TrimSpace(cmd.Email)),
		FirstName: strings.TrimSpace(cmd.FirstName),
		LastName:  strings.TrimSpace(cmd.LastName),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       u.ID,
		Action:       string(domain.ActionCreate),
		ResourceType: "user",
		ResourceID:   u.ID.String(),
	})

	return u, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// requireUser is the owner check every write goes through before anything
// is persisted.
func requireUser(ctx context.Context, users domain.UserRepository, id uuid.UUID) error {
	if _, err := users.GetByID(ctx, id); err != nil {
		return fmt.Errorf("verifying user: %w", err)
	}
	return nil
}
