package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/appointment"
	"github.com/google/uuid"
)

type AppointmentRepository struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]appointment.Appointment
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{appointments: make(map[uuid.UUID]appointment.Appointment)}
}

func (r *AppointmentRepository) Create(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	r.appointments[a.ID] = *a
	return nil
}

func (r *AppointmentRepository) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *AppointmentRepository) Update(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[a.ID]; !ok {
		return appointment.ErrAppointmentNotFound
	}
	a.UpdatedAt = time.Now().UTC()
	r.appointments[a.ID] = *a
	return nil
}

func (r *AppointmentRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[id]; !ok {
		return appointment.ErrAppointmentNotFound
	}
	delete(r.appointments, id)
	return nil
}

func (r *AppointmentRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*appointment.Appointment, error) {
	return r.list(func(a *appointment.Appointment) bool { return a.UserID == userID }), nil
}

func (r *AppointmentRepository) ListBetween(_ context.Context, start, end time.Time) ([]*appointment.Appointment, error) {
	return r.list(func(a *appointment.Appointment) bool {
		return !a.AppointmentDate.Before(start) && !a.AppointmentDate.After(end)
	}), nil
}

// list returns matches ordered by date ascending.
func (r *AppointmentRepository) list(match func(*appointment.Appointment) bool) []*appointment.Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*appointment.Appointment
	for _, a := range r.appointments {
		a := a
		if match(&a) {
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentDate.Before(out[j].AppointmentDate) })
	return out
}

// Put stores a as-is, bypassing defaults. Lets tests seed records the
// service layer would reject.
func (r *AppointmentRepository) Put(a appointment.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments[a.ID] = a
}
