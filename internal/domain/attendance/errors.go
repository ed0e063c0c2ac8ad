package attendance

import "errors"

var (
	ErrNotFound          = errors.New("attendance record not found")
	ErrNoRecordToday     = errors.New("no attendance record for today")
	ErrAlreadyCheckedIn  = errors.New("already checked in today")
	ErrAlreadyCheckedOut = errors.New("already checked out today")
	ErrDuplicateDay      = errors.New("attendance already recorded for this day")
	ErrCheckOutBeforeIn  = errors.New("check-out must not precede check-in")
)
