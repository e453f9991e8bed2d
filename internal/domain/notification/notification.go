package notification

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryHealthMetricAlert Category = "HealthMetricAlert"

	CategoryCriticalSymptom      Category = "CriticalSymptomAlert"
	CategoryHighSeveritySymptom  Category = "HighSeveritySymptom"
	CategoryModerateSymptom      Category = "ModerateSymptomAlert"
	CategorySymptomTracking      Category = "SymptomTracking"
	CategorySymptomDeterioration Category = "SymptomDeterioration"
	CategoryRecurringSymptom     Category = "RecurringSymptom"
	CategoryMultipleSymptoms     Category = "MultipleSymptoms"
	CategoryWellnessTip          Category = "WellnessTip"

	CategoryAppointmentConfirmation Category = "AppointmentConfirmation"
	CategoryMultipleDayAppointments Category = "MultipleDayAppointments"
	CategoryAppointmentConflict     Category = "AppointmentConflict"
	CategoryAppointmentUpdated      Category = "AppointmentUpdated"
	CategoryAppointmentCancelled    Category = "AppointmentCancelled"

	CategoryReminder24Hour Category = "Appointment24HourReminder"
	CategoryReminder2Hour  Category = "Appointment2HourReminder"
	CategoryReminderDayOf  Category = "AppointmentDayOfReminder"
)

// Record is created only by the alerting engine, mutated only by MarkRead
// and deleted only on the owner's request.
type Record struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:idx_notification_dedup,priority:1"`
	Category    Category  `gorm:"column:category;type:varchar(60);not null;index:idx_notification_dedup,priority:2"`
	SubCategory string    `gorm:"column:sub_category;type:varchar(100);index:idx_notification_dedup,priority:3"`
	Timestamp   time.Time `gorm:"column:timestamp;not null;index:idx_notification_dedup,priority:4"`

	Message string `gorm:"column:message;type:text;not null"`
	Read    bool   `gorm:"column:read;not null;default:false"`
}

func (Record) TableName() string {
	return "tracking.notifications"
}
