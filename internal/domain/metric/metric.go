package metric

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	TypeWeight = "Weight" // pounds
	TypeHeight = "Height" // inches
	TypeBMI    = "BMI"
)

// Reading is a single measurement. Readings are immutable once stored except
// for explicit edits by their owner.
type Reading struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:idx_metric_user_type_ts,priority:1"`
	MetricType string    `gorm:"column:metric_type;type:varchar(100);not null;index:idx_metric_user_type_ts,priority:2"`
	Value      float64   `gorm:"column:value;not null"`
	Timestamp  time.Time `gorm:"column:timestamp;not null;index:idx_metric_user_type_ts,priority:3"`

	// Derived readings are computed from other readings, never submitted.
	Derived bool `gorm:"column:derived;not null;default:false"`
}

func (Reading) TableName() string {
	return "tracking.health_metrics"
}

func (r *Reading) IsType(metricType string) bool {
	return strings.EqualFold(r.MetricType, metricType)
}

type RecordReadingCommand struct {
	UserID     uuid.UUID
	MetricType string
	Value      float64
	// Zero means "now".
	Timestamp time.Time
}
