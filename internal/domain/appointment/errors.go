package appointment

import "errors"

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrMissingOwner        = errors.New("appointment has no owner")
	ErrMissingDate         = errors.New("appointment has no date")
)
