package attendance

import (
	"context"
	"time"
)

type StoreAPI interface {
	Get(ctx context.Context, recordID string) (Record, error)
	FindByEmployeeAndDate(ctx context.Context, employeeID string, day time.Time) (Record, bool, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]Record, int, error)
	Create(ctx context.Context, rec Record) (Record, error)
	SetCheckIn(ctx context.Context, recordID string, at time.Time, status string) error
	SetCheckOut(ctx context.Context, recordID string, at time.Time, workHours float64) error
	Update(ctx context.Context, recordID string, rec Record) error
	Delete(ctx context.Context, recordID string) error
	Stats(ctx context.Context, from, to time.Time) (Stats, error)
}

var _ StoreAPI = (*Store)(nil)
