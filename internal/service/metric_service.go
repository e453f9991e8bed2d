package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/metric"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MetricService struct {
	repo     metric.Repository
	users    domain.UserRepository
	engine   AlertEngine
	auditSvc *AuditService
	log      *zap.Logger
	now      func() time.Time
}

func NewMetricService(
	repo metric.Repository,
	users domain.UserRepository,
	engine AlertEngine,
	auditSvc *AuditService,
	log *zap.Logger,
) *MetricService {
	return &MetricService{repo: repo, users: users, engine: engine, auditSvc: auditSvc, log: log, now: time.Now}
}

func (s *MetricService) Record(ctx context.Context, cmd *metric.RecordReadingCommand) (*metric.Reading, error) {
	var errs []string
	if strings.TrimSpace(cmd.MetricType) == "" {
		errs = append(errs, "metric_type is required")
	}
	if math.IsNaN(cmd.Value) || math.IsInf(cmd.Value, 0) {
		errs = append(errs, "value must be a finite number")
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
	r := &metric.Reading{
		UserID:     cmd.UserID,
		MetricType: strings.TrimSpace(cmd.MetricType),
		Value:      cmd.Value,
		Timestamp:  ts,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		s.log.Error("failed to record health metric", zap.Error(err))
		return nil, fmt.Errorf("recording health metric: %w", err)
	}

	if err := s.engine.OnMetricRecorded(ctx, r); err != nil {
		s.log.Warn("metric alert evaluation aborted", zap.String("metric_id", r.ID.String()), zap.Error(err))
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       r.UserID,
		Action:       string(domain.ActionCreate),
		ResourceType: "health_metric",
		ResourceID:   r.ID.String(),
		Changes:      map[string]any{"metric_type": r.MetricType, "value": r.Value},
	})

	return r, nil
}

func (s *MetricService) Get(ctx context.Context, userID, id uuid.UUID) (*metric.Reading, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, ErrForbidden
	}
	return r, nil
}

func (s *MetricService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*metric.Reading, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, userID)
}
