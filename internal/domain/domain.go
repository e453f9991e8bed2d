package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email already exists")
)

// User owns every metric, symptom, appointment and notification. Credentials
// live with the identity provider, not here.
type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	Email     string `gorm:"column:email;type:varchar(255);uniqueIndex;not null"`
	FirstName string `gorm:"column:first_name;type:varchar(100);not null"`
	LastName  string `gorm:"column:last_name;type:varchar(100);not null"`
}

func (User) TableName() string {
	return "tracking.users"
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type UserRepository interface {
	// Create returns ErrUserAlreadyExists on duplicate email.
	Create(ctx context.Context, u *User) error

	// GetByID returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

type RegisterUserCommand struct {
	Email     string
	FirstName string
	LastName  string
}

type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
)

type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OccurredAt time.Time `gorm:"autoCreateTime;index"`

	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`

	Action       AuditAction `gorm:"column:action;type:varchar(20);not null;index"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(50);not null;index"`
	ResourceID   string      `gorm:"column:resource_id;type:varchar(50);index"`

	Changes datatypes.JSON `gorm:"column:changes;type:jsonb"`
}

func (AuditLog) TableName() string {
	return "audit.logs"
}
