package performance

import (
	"context"
	"time"
)

type StoreAPI interface {
	Get(ctx context.Context, reviewID string) (Review, error)
	EmployeeUserID(ctx context.Context, reviewID string) (string, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]Review, int, error)
	Create(ctx context.Context, rev Review) (Review, error)
	Update(ctx context.Context, reviewID string, rev Review) error
	Delete(ctx context.Context, reviewID string) error
	Acknowledge(ctx context.Context, reviewID, comments string, at time.Time) error
	Stats(ctx context.Context, from, to time.Time) (Stats, error)
}

var _ StoreAPI = (*Store)(nil)
