package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Lifecycle: created, possibly updated (date, doctor, location), then either
// deleted or left alone once AppointmentDate has passed.
type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`

	DoctorName      string    `gorm:"column:doctor_name;type:varchar(150);not null"`
	Location        string    `gorm:"column:location;type:varchar(255)"`
	AppointmentDate time.Time `gorm:"column:appointment_date;not null;index"`
	ReasonForVisit  string    `gorm:"column:reason_for_visit;type:text"`
}

func (Appointment) TableName() string {
	return "tracking.appointments"
}

// Validate reports records the reminder scans cannot act on.
func (a *Appointment) Validate() error {
	if a.UserID == uuid.Nil {
		return ErrMissingOwner
	}
	if a.AppointmentDate.IsZero() {
		return ErrMissingDate
	}
	return nil
}

func (a *Appointment) IsPast(now time.Time) bool {
	return a.AppointmentDate.Before(now)
}

type CreateAppointmentCommand struct {
	UserID          uuid.UUID
	DoctorName      string
	Location        string
	AppointmentDate time.Time
	ReasonForVisit  string
}

type UpdateAppointmentCommand struct {
	DoctorName      *string
	Location        *string
	AppointmentDate *time.Time
	ReasonForVisit  *string
}

// Apply copies the set fields of cmd onto a.
func (cmd *UpdateAppointmentCommand) Apply(a *Appointment) {
	if cmd.DoctorName != nil {
		a.DoctorName = *cmd.DoctorName
	}
	if cmd.Location != nil {
		a.Location = *cmd.Location
	}
	if cmd.AppointmentDate != nil {
		a.AppointmentDate = *cmd.AppointmentDate
	}
	if cmd.ReasonForVisit != nil {
		a.ReasonForVisit = *cmd.ReasonForVisit
	}
}
