package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/symptom"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SymptomService struct {
	repo     symptom.Repository
	users    domain.UserRepository
	engine   AlertEngine
	auditSvc *AuditService
	log      *zap.Logger
	now      func() time.Time
}

func NewSymptomService(
	repo symptom.Repository,
	users domain.UserRepository,
	engine AlertEngine,
	auditSvc *AuditService,
	log *zap.Logger,
) *SymptomService {
	return &SymptomService{repo: repo, users: users, engine: engine, auditSvc: auditSvc, log: log, now: time.Now}
}

func (s *SymptomService) Record(ctx context.Context, cmd *symptom.RecordSymptomCommand) (*symptom.Report, error) {
	var errs []string
	if strings.TrimSpace(cmd.SymptomType) == "" {
		errs = append(errs, "symptom_type is required")
	}
	if !validSeverity(cmd.Severity) {
		errs = append(errs, "severity must be between 1 and 10")
	}
	if err := validationErr(errs); err != nil {
		return nil, err
	}

	if err := requireUser(ctx, s.users, cmd.UserID); err != nil {
		return nil, err
	}

	ts := cmd.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	r := &symptom.Report{
		UserID:      cmd.UserID,
		SymptomType: strings.TrimSpace(cmd.SymptomType),
		Severity:    cmd.Severity,
		Description: cmd.Description,
		Timestamp:   ts,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		s.log.Error("failed to record symptom", zap.Error(err))
		return nil, fmt.Errorf("recording symptom: %w", err)
	}

	if err := s.engine.OnSymptomRecorded(ctx, r); err != nil {
		s.log.Warn("symptom alert evaluation aborted", zap.String("symptom_id", r.ID.String()), zap.Error(err))
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       r.UserID,
		Action:       string(domain.ActionCreate),
		ResourceType: "symptom",
		ResourceID:   r.ID.String(),
		Changes:      map[string]any{"symptom_type": r.SymptomType, "severity": r.Severity},
	})

	return r, nil
}

func (s *SymptomService) Update(ctx context.Context, userID, id uuid.UUID, cmd *symptom.UpdateSymptomCommand) (*symptom.Report, error) {
	var errs []string
	if cmd.SymptomType != nil && strings.TrimSpace(*cmd.SymptomType) == "" {
		errs = append(errs, "symptom_type cannot be empty")
	}
	if cmd.Severity != nil && !validSeverity(*cmd.Severity) {
		errs = append(errs, "severity must be between 1 and 10")
	}
	if err := validationErr(errs); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.UserID != userID {
		return nil, ErrForbidden
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}

	old := *current
	cmd.Apply(current)
	if err := s.repo.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("updating symptom: %w", err)
	}

	if err := s.engine.OnSymptomUpdated(ctx, &old, current); err != nil {
		s.log.Warn("symptom update evaluation aborted", zap.String("symptom_id", id.String()), zap.Error(err))
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       userID,
		Action:       string(domain.ActionUpdate),
		ResourceType: "symptom",
		ResourceID:   id.String(),
		Changes:      map[string]any{"severity_from": old.Severity, "severity_to": current.Severity},
	})

	return current, nil
}

func (s *SymptomService) Get(ctx context.Context, userID, id uuid.UUID) (*symptom.Report, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, ErrForbidden
	}
	return r, nil
}

func (s *SymptomService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*symptom.Report, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, userID)
}

func validSeverity(v int) bool {
	return v >= symptom.MinSeverity && v <= symptom.MaxSeverity
}
