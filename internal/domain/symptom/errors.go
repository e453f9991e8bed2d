package symptom

import "errors"

var ErrReportNotFound = errors.New("symptom not found")
