package alerting

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/notification"
	"github.com/google/uuid"
)

// Candidate is a notification that a rule wants to send. It becomes a
// notification.Record only if the Deduplicator lets it through.
type Candidate struct {
	UserID      uuid.UUID
	Category    notification.Category
	SubCategory string
	Message     string
	Cooldown    time.Duration
}

func (c Candidate) record(now time.Time) *notification.Record {
	return &notification.Record{
		UserID:      c.UserID,
		Category:    c.Category,
		SubCategory: c.SubCategory,
		Message:     c.Message,
		Timestamp:   now,
	}
}

// occurrenceKey identifies one scheduled time of an appointment. A
// rescheduled appointment gets a fresh key, so notices for its new time are
// not suppressed by ones sent for the old time.
func occurrenceKey(a *appointment.Appointment) string {
	return a.ID.String() + "@" + a.AppointmentDate.UTC().Format(time.RFC3339)
}
