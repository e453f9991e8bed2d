package symptom

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinSeverity = 1
	MaxSeverity = 10
)

type Report struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:idx_symptom_user_ts,priority:1"`
	SymptomType string    `gorm:"column:symptom_type;type:varchar(100);not null"`
	Severity    int       `gorm:"column:severity;not null"`
	Description string    `gorm:"column:description;type:text"`
	Timestamp   time.Time `gorm:"column:timestamp;not null;index:idx_symptom_user_ts,priority:2"`
}

func (Report) TableName() string {
	return "tracking.symptoms"
}

// SeverityLabel buckets the 1–10 scale into words used in alert text.
func (r *Report) SeverityLabel() string {
	switch {
	case r.Severity >= 9:
		return "critical"
	case r.Severity >= 7:
		return "severe"
	case r.Severity >= 5:
		return "moderate"
	case r.Severity >= 3:
		return "mild"
	default:
		return "minimal"
	}
}

type RecordSymptomCommand struct {
	UserID      uuid.UUID
	SymptomType string
	Severity    int
	Description string
	Timestamp   time.Time
}

type UpdateSymptomCommand struct {
	SymptomType *string
	Severity    *int
	Description *string
	Timestamp   *time.Time
}

func (cmd *UpdateSymptomCommand) Apply(r *Report) {
	if cmd.SymptomType != nil {
		r.SymptomType = *cmd.SymptomType
	}
	if cmd.Severity != nil {
		r.Severity = *cmd.Severity
	}
	if cmd.Description != nil {
		r.Description = *cmd.Description
	}
	if cmd.Timestamp != nil {
		r.Timestamp = *cmd.Timestamp
	}
}
