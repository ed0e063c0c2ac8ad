package attendance

import (
	"context"
	"errors"
	"time"
)

type Service struct {
	Store             StoreAPI
	LateThresholdHour int
}

func NewService(store StoreAPI, lateThresholdHour int) *Service {
	return &Service{Store: store, LateThresholdHour: lateThresholdHour}
}

// CheckIn records a check-in for the employee's current calendar day.
// An open record (checked in, not out) is a conflict; a pre-marked record
// without a check-in (absence, leave, holiday) is claimed in place.
func (s *Service) CheckIn(ctx context.Context, employeeID string, now time.Time) (Record, error) {
	day := DayOf(now)
	status := CheckInStatus(now, s.LateThresholdHour)

	existing, found, err := s.Store.FindByEmployeeAndDate(ctx, employeeID, day)
	if err != nil {
		return Record{}, err
	}

	if !found {
		rec, err := s.Store.Create(ctx, Record{
			EmployeeID: employeeID,
			Date:       day,
			CheckIn:    &now,
			Status:     status,
		})
		if errors.Is(err, ErrDuplicateDay) {
			// Lost a same-day race; the winning record carries the check-in.
			return Record{}, ErrAlreadyCheckedIn
		}
		return rec, err
	}

	if existing.CheckIn != nil {
		return Record{}, ErrAlreadyCheckedIn
	}

	if err := s.Store.SetCheckIn(ctx, existing.ID, now, status); err != nil {
		return Record{}, err
	}
	existing.CheckIn = &now
	existing.Status = status
	return existing, nil
}

// CheckOut closes the employee's record for the current calendar day and
// derives the worked hours.
func (s *Service) CheckOut(ctx context.Context, employeeID string, now time.Time) (Record, error) {
	day := DayOf(now)

	existing, found, err := s.Store.FindByEmployeeAndDate(ctx, employeeID, day)
	if err != nil {
		return Record{}, err
	}
	if !found {
		return Record{}, ErrNoRecordToday
	}
	if existing.CheckOut != nil {
		return Record{}, ErrAlreadyCheckedOut
	}

	hours := WorkHours(existing.CheckIn, &now)
	if err := s.Store.SetCheckOut(ctx, existing.ID, now, hours); err != nil {
		return Record{}, err
	}
	existing.CheckOut = &now
	existing.WorkHours = hours
	return existing, nil
}

// Mark creates a manual attendance record for an explicit day.
func (s *Service) Mark(ctx context.Context, rec Record) (Record, error) {
	rec.Date = DayOf(rec.Date)
	if rec.CheckOut != nil && rec.CheckIn != nil && rec.CheckOut.Before(*rec.CheckIn) {
		return Record{}, ErrCheckOutBeforeIn
	}
	rec.WorkHours = WorkHours(rec.CheckIn, rec.CheckOut)
	return s.Store.Create(ctx, rec)
}

// Update rewrites a record, recomputing the derived hours.
func (s *Service) Update(ctx context.Context, recordID string, rec Record) (Record, error) {
	if rec.CheckOut != nil && rec.CheckIn != nil && rec.CheckOut.Before(*rec.CheckIn) {
		return Record{}, ErrCheckOutBeforeIn
	}
	rec.Date = DayOf(rec.Date)
	rec.WorkHours = WorkHours(rec.CheckIn, rec.CheckOut)
	if err := s.Store.Update(ctx, recordID, rec); err != nil {
		return Record{}, err
	}
	return s.Store.Get(ctx, recordID)
}

// StatsWindow defaults an open range to the current calendar month.
func (s *Service) StatsWindow(ctx context.Context, from, to time.Time, now time.Time) (Stats, error) {
	if from.IsZero() || to.IsZero() {
		start, end := MonthWindow(now)
		if from.IsZero() {
			from = start
		}
		if to.IsZero() {
			to = end.AddDate(0, 0, -1)
		}
	}
	return s.Store.Stats(ctx, DayOf(from), DayOf(to))
}
