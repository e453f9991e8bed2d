package alerting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/notification"
)

// ConflictDetector builds the notices raised by appointment writes.
// Confirmation, update and cancellation notices are one-shot; the same-day
// and conflict checks are keyed by appointment id.
type ConflictDetector struct {
	rules        Rules
	appointments appointment.Repository
	loc          *time.Location
}

func NewConflictDetector(rules Rules, appointments appointment.Repository, loc *time.Location) *ConflictDetector {
	return &ConflictDetector{rules: rules, appointments: appointments, loc: loc}
}

func (d *ConflictDetector) Confirmation(a *appointment.Appointment) Candidate {
	return d.candidate(a, notification.CategoryAppointmentConfirmation, fmt.Sprintf(
		"APPOINTMENT CONFIRMED: Your appointment with Dr. %s has been scheduled for %s at %s. "+
			"Reason for visit: %s. Please arrive 15 minutes early and bring a valid ID.",
		a.DoctorName, formatAppointmentTime(a.AppointmentDate, d.loc), a.Location, a.ReasonForVisit,
	))
}

func (d *ConflictDetector) Cancellation(a *appointment.Appointment) Candidate {
	return d.candidate(a, notification.CategoryAppointmentCancelled, fmt.Sprintf(
		"APPOINTMENT CANCELLED: Your appointment with Dr. %s scheduled for %s at %s has been cancelled. "+
			"Reason for visit was: %s. Please reschedule if needed.",
		a.DoctorName, formatAppointmentTime(a.AppointmentDate, d.loc), a.Location, a.ReasonForVisit,
	))
}

// Update lists the date, doctor and location changes between old and
// updated. It reports false when none of them changed.
func (d *ConflictDetector) Update(old, updated *appointment.Appointment) (Candidate, bool) {
	var changes []string
	if !old.AppointmentDate.Equal(updated.AppointmentDate) {
		changes = append(changes, fmt.Sprintf("Date/Time changed from %s to %s",
			formatAppointmentTime(old.AppointmentDate, d.loc), formatAppointmentTime(updated.AppointmentDate, d.loc)))
	}
	if old.DoctorName != updated.DoctorName {
		changes = append(changes, fmt.Sprintf("Doctor changed from Dr. %s to Dr. %s", old.DoctorName, updated.DoctorName))
	}
	if old.Location != updated.Location {
		changes = append(changes, fmt.Sprintf("Location changed from %s to %s", old.Location, updated.Location))
	}
	if len(changes) == 0 {
		return Candidate{}, false
	}

	return d.candidate(updated, notification.CategoryAppointmentUpdated, fmt.Sprintf(
		"APPOINTMENT UPDATED: Your appointment has been modified. Changes: %s. "+
			"Current details: Dr. %s at %s, %s. Reason: %s",
		strings.Join(changes, "; "), updated.DoctorName,
		formatAppointmentTime(updated.AppointmentDate, d.loc), updated.Location, updated.ReasonForVisit,
	)), true
}

// SameDay reports the owner's other appointments on the same calendar day
// in the configured zone.
func (d *ConflictDetector) SameDay(ctx context.Context, a *appointment.Appointment) (Candidate, bool, error) {
	others, err := d.others(ctx, a, startOfDay(a.AppointmentDate, d.loc), endOfDay(a.AppointmentDate, d.loc))
	if err != nil {
		return Candidate{}, false, err
	}
	if len(others) == 0 {
		return Candidate{}, false, nil
	}

	return d.candidate(a, notification.CategoryMultipleDayAppointments, fmt.Sprintf(
		"MULTIPLE APPOINTMENTS: You have %d other appointment(s) scheduled for %s. "+
			"Please review your schedule to avoid conflicts. Latest appointment: Dr. %s at %s.",
		len(others), formatAppointmentDay(a.AppointmentDate, d.loc),
		a.DoctorName, formatAppointmentTime(a.AppointmentDate, d.loc),
	)), true, nil
}

// Conflicts reports the owner's other appointments within ConflictWindow of
// a, bounds inclusive.
func (d *ConflictDetector) Conflicts(ctx context.Context, a *appointment.Appointment) (Candidate, bool, error) {
	w := d.rules.ConflictWindow
	others, err := d.others(ctx, a, a.AppointmentDate.Add(-w), a.AppointmentDate.Add(w))
	if err != nil {
		return Candidate{}, false, err
	}
	if len(others) == 0 {
		return Candidate{}, false, nil
	}

	details := make([]string, 0, len(others))
	for _, o := range others {
		details = append(details, fmt.Sprintf("Dr. %s at %s", o.DoctorName, formatAppointmentTime(o.AppointmentDate, d.loc)))
	}

	return d.candidate(a, notification.CategoryAppointmentConflict, fmt.Sprintf(
		"POTENTIAL CONFLICT: Your new appointment with Dr. %s at %s "+
			"is scheduled within 2 hours of: %s. Please ensure you have adequate travel time.",
		a.DoctorName, formatAppointmentTime(a.AppointmentDate, d.loc), strings.Join(details, ", "),
	)), true, nil
}

func (d *ConflictDetector) others(ctx context.Context, a *appointment.Appointment, start, end time.Time) ([]*appointment.Appointment, error) {
	all, err := d.appointments.ListByUser(ctx, a.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}

	var out []*appointment.Appointment
	for _, o := range all {
		if o.ID == a.ID {
			continue
		}
		if o.AppointmentDate.Before(start) || o.AppointmentDate.After(end) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (d *ConflictDetector) candidate(a *appointment.Appointment, c notification.Category, msg string) Candidate {
	return Candidate{
		UserID:      a.UserID,
		Category:    c,
		SubCategory: occurrenceKey(a),
		Message:     msg,
		Cooldown:    d.rules.Cooldowns.For(c),
	}
}

