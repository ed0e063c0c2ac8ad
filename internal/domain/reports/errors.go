package reports

import "errors"

var (
	ErrNotFound         = errors.New("report not found")
	ErrUnknownType      = errors.New("unknown report type")
	ErrInvalidFrequency = errors.New("recurring reports require a valid frequency")
	ErrNotGenerated     = errors.New("report has no generated data yet")
)
