package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/appointment"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const upcomingHorizon = 30 * 24 * time.Hour

type AppointmentService struct {
	repo     appointment.Repository
	users    domain.UserRepository
	engine   AlertEngine
	auditSvc *AuditService
	log      *zap.Logger
	now      func() time.Time
}

func NewAppointmentService(
	repo appointment.Repository,
	users domain.UserRepository,
	engine AlertEngine,
	auditSvc *AuditService,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{repo: repo, users: users, engine: engine, auditSvc: auditSvc, log: log, now: time.Now}
}

func (s *AppointmentService) ScheduleAppointment(ctx context.Context, cmd *appointment.CreateAppointmentCommand) (*appointment.Appointment, error) {
	var errs []string
	if strings.TrimSpace(cmd.DoctorName) == "" {
		errs = append(errs, "doctor_name is required")
	}
	if cmd.AppointmentDate.IsZero() {
		errs = append(errs, "appointment_date is required")
	}
	if err := validationErr(errs); err != nil {
		return nil, err
	}

	// ── Verify owner exists ────────────────────────────────────────────────
	if err := requireUser(ctx, s.users, cmd.UserID); err != nil {
		return nil, err
	}

	a := &appointment.Appointment{
		UserID:          cmd.UserID,
		DoctorName:      strings.TrimSpace(cmd.DoctorName),
		Location:        cmd.Location,
		AppointmentDate: cmd.AppointmentDate,
		ReasonForVisit:  cmd.ReasonForVisit,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		s.log.Error("failed to create appointment", zap.Error(err))
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	if err := s.engine.OnAppointmentCreated(ctx, a); err != nil {
		s.log.Warn("appointment notices aborted", zap.String("appointment_id", a.ID.String()), zap.Error(err))
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       a.UserID,
		Action:       string(domain.ActionCreate),
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
	})

	return a, nil
}

func (s *AppointmentService) GetAppointment(ctx context.Context, userID, id uuid.UUID) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, ErrForbidden
	}
	return a, nil
}

func (s *AppointmentService) UpdateAppointment(ctx context.Context, userID, id uuid.UUID, cmd *appointment.UpdateAppointmentCommand) (*appointment.Appointment, error) {
	var errs []string
	if cmd.DoctorName != nil && strings.TrimSpace(*cmd.DoctorName) == "" {
		errs = append(errs, "doctor_name cannot be empty")
	}
	if cmd.AppointmentDate != nil && cmd.AppointmentDate.IsZero() {
		errs = append(errs, "appointment_date cannot be empty")
	}
	if err := validationErr(errs); err != nil {
		return nil, err
	}

	a, err := s.GetAppointment(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}

	old := *a
	cmd.Apply(a)
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment: %w", err)
	}

	if err := s.engine.OnAppointmentUpdated(ctx, &old, a); err != nil {
		s.log.Warn("appointment update notices aborted", zap.String("appointment_id", id.String()), zap.Error(err))
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       userID,
		Action:       string(domain.ActionUpdate),
		ResourceType: "appointment",
		ResourceID:   id.String(),
		Changes: map[string]any{
			"doctor_name":      a.DoctorName,
			"location":         a.Location,
			"appointment_date": a.AppointmentDate,
		},
	})

	return a, nil
}

// CancelAppointment deletes the appointment and then raises the
// cancellation notice from the snapshot taken before deletion. A failed
// delete raises nothing.
func (s *AppointmentService) CancelAppointment(ctx context.Context, userID, id uuid.UUID) error {
	a, err := s.GetAppointment(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return err
	}

	snapshot := *a
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting appointment: %w", err)
	}

	if err := s.engine.OnAppointmentDeleted(ctx, &snapshot); err != nil {
		s.log.Warn("cancellation notice aborted", zap.String("appointment_id", id.String()), zap.Error(err))
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       userID,
		Action:       string(domain.ActionDelete),
		ResourceType: "appointment",
		ResourceID:   id.String(),
		Changes:      map[string]any{"doctor_name": snapshot.DoctorName, "appointment_date": snapshot.AppointmentDate},
	})

	return nil
}

// Upcoming returns appointments in the next 30 days, soonest first.
func (s *AppointmentService) Upcoming(ctx context.Context, userID uuid.UUID) ([]*appointment.Appointment, error) {
	all, err := s.listOwned(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	horizon := now.Add(upcomingHorizon)
	out := make([]*appointment.Appointment, 0, len(all))
	for _, a := range all {
		if !a.AppointmentDate.Before(now) && !a.AppointmentDate.After(horizon) {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(x, y *appointment.Appointment) int {
		return x.AppointmentDate.Compare(y.AppointmentDate)
	})
	return out, nil
}

// History returns past appointments, most recent first.
func (s *AppointmentService) History(ctx context.Context, userID uuid.UUID) ([]*appointment.Appointment, error) {
	all, err := s.listOwned(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]*appointment.Appointment, 0, len(all))
	for _, a := range all {
		if a.IsPast(now) {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(x, y *appointment.Appointment) int {
		return y.AppointmentDate.Compare(x.AppointmentDate)
	})
	return out, nil
}

func (s *AppointmentService) listOwned(ctx context.Context, userID uuid.UUID) ([]*appointment.Appointment, error) {
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	all, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return all, nil
}
