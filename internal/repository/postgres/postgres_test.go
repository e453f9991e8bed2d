package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain/appointment"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestNotFoundMapsRecordNotFound(t *testing.T) {
	wrapped := fmt.Errorf("query: %w", gorm.ErrRecordNotFound)
	assert.ErrorIs(t, notFound(wrapped, appointment.ErrAppointmentNotFound), appointment.ErrAppointmentNotFound)

	other := errors.New("connection reset")
	assert.Equal(t, other, notFound(other, appointment.ErrAppointmentNotFound))
}
