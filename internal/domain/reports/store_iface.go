package reports

import (
	"context"
	"time"
)

type StoreAPI interface {
	Get(ctx context.Context, reportID string) (Report, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]Report, int, error)
	Create(ctx context.Context, rep Report) (Report, error)
	Update(ctx context.Context, reportID string, rep Report) error
	Delete(ctx context.Context, reportID string) error
	MarkGenerated(ctx context.Context, reportID string, payload any, at time.Time) error
	MarkFailed(ctx context.Context, reportID, reason string) error
	ListRecurringDue(ctx context.Context, now time.Time) ([]Report, error)
	PayrollInputs(ctx context.Context, from, to time.Time, params Parameters) ([]PayrollInput, error)
	Directory(ctx context.Context, params Parameters) ([]DirectoryEntry, error)
	DepartmentSummaries(ctx context.Context) ([]DepartmentSummary, error)
	RecordCounts(ctx context.Context) (map[string]int, error)
}

var _ StoreAPI = (*Store)(nil)
