package metric

import "errors"

var ErrReadingNotFound = errors.New("health metric not found")
