package reports

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"erm/internal/domain/attendance"
	"erm/internal/domain/performance"
)

type fakeStore struct {
	reports     map[string]Report
	nextID      int
	payroll     []PayrollInput
	payrollErr  error
	directory   []DirectoryEntry
	departments []DepartmentSummary
}

func newReportFake() *fakeStore {
	return &fakeStore{reports: map[string]Report{}}
}

func (f *fakeStore) Get(_ context.Context, reportID string) (Report, error) {
	rep, ok := f.reports[reportID]
	if !ok {
		return Report{}, ErrNotFound
	}
	return rep, nil
}

func (f *fakeStore) List(_ context.Context, _ Filter, _, _ int) ([]Report, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) Create(_ context.Context, rep Report) (Report, error) {
	f.nextID++
	rep.ID = fmt.Sprintf("rep-%d", f.nextID)
	rep.Status = StatusPending
	f.reports[rep.ID] = rep
	return rep, nil
}

func (f *fakeStore) Update(_ context.Context, reportID string, rep Report) error {
	if _, ok := f.reports[reportID]; !ok {
		return ErrNotFound
	}
	rep.ID = reportID
	f.reports[reportID] = rep
	return nil
}

func (f *fakeStore) Delete(_ context.Context, reportID string) error {
	if _, ok := f.reports[reportID]; !ok {
		return ErrNotFound
	}
	delete(f.reports, reportID)
	return nil
}

func (f *fakeStore) MarkGenerated(_ context.Context, reportID string, payload any, at time.Time) error {
	rep, ok := f.reports[reportID]
	if !ok {
		return ErrNotFound
	}
	rep.GeneratedData = payload
	rep.Status = StatusGenerated
	rep.Error = ""
	rep.GeneratedAt = &at
	f.reports[reportID] = rep
	return nil
}

func (f *fakeStore) MarkFailed(_ context.Context, reportID, reason string) error {
	rep, ok := f.reports[reportID]
	if !ok {
		return ErrNotFound
	}
	rep.Status = StatusFailed
	rep.Error = reason
	f.reports[reportID] = rep
	return nil
}

func (f *fakeStore) ListRecurringDue(_ context.Context, _ time.Time) ([]Report, error) {
	var due []Report
	for _, rep := range f.reports {
		if rep.Recurring {
			due = append(due, rep)
		}
	}
	return due, nil
}

func (f *fakeStore) PayrollInputs(_ context.Context, _, _ time.Time, _ Parameters) ([]PayrollInput, error) {
	return f.payroll, f.payrollErr
}

func (f *fakeStore) Directory(_ context.Context, _ Parameters) ([]DirectoryEntry, error) {
	return f.directory, nil
}

func (f *fakeStore) DepartmentSummaries(_ context.Context) ([]DepartmentSummary, error) {
	return f.departments, nil
}

func (f *fakeStore) RecordCounts(_ context.Context) (map[string]int, error) {
	return map[string]int{"employees": 3}, nil
}

type fakeAttendanceStats struct{}

func (fakeAttendanceStats) StatsWindow(_ context.Context, from, to, _ time.Time) (attendance.Stats, error) {
	return attendance.Stats{From: from, To: to, TotalRecords: 7}, nil
}

type fakePerformanceStats struct{}

func (fakePerformanceStats) StatsWindow(_ context.Context, from, to time.Time) (performance.Stats, error) {
	return performance.Stats{From: from, To: to, TotalReviews: 2}, nil
}

func newTestService(store *fakeStore) *Service {
	return NewService(store, fakeAttendanceStats{}, fakePerformanceStats{}, nil, nil)
}

func TestCreateValidatesType(t *testing.T) {
	svc := newTestService(newReportFake())

	_, err := svc.Create(context.Background(), Report{Name: "x", Type: "nonsense"})
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("err = %v, want ErrUnknownType", err)
	}

	_, err = svc.Create(context.Background(), Report{Name: "x", Type: TypePayroll, Recurring: true, Frequency: "hourly"})
	if !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("err = %v, want ErrInvalidFrequency", err)
	}
}

func TestCreateClearsFrequencyWhenNotRecurring(t *testing.T) {
	store := newReportFake()
	svc := newTestService(store)

	rep, err := svc.Create(context.Background(), Report{Name: "x", Type: TypeCustom, Frequency: FrequencyDaily})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rep.Frequency != "" {
		t.Fatalf("frequency = %q, want empty", rep.Frequency)
	}
}

func TestGeneratePayroll(t *testing.T) {
	store := newReportFake()
	store.payroll = []PayrollInput{{EmployeeID: "emp-1", Name: "Jane Doe", Salary: 4400, WorkDays: 22}}
	svc := newTestService(store)

	rep, _ := svc.Create(context.Background(), Report{Name: "August payroll", Type: TypePayroll})

	generated, err := svc.Generate(context.Background(), rep.ID, "user-1", "req-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if generated.Status != StatusGenerated {
		t.Fatalf("status = %q, want generated", generated.Status)
	}
	payload, ok := generated.GeneratedData.(PayrollPayload)
	if !ok {
		t.Fatalf("payload type %T", generated.GeneratedData)
	}
	if payload.TotalPay != 4400 {
		t.Fatalf("totalPay = %v, want 4400", payload.TotalPay)
	}
}

func TestGenerateFailureRecordedOnReport(t *testing.T) {
	store := newReportFake()
	store.payrollErr = errors.New("employees table unreachable")
	svc := newTestService(store)

	rep, _ := svc.Create(context.Background(), Report{Name: "broken", Type: TypePayroll})

	failed, err := svc.Generate(context.Background(), rep.ID, "", "")
	if err != nil {
		t.Fatalf("Generate returned error instead of marking: %v", err)
	}
	if failed.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", failed.Status)
	}
	if failed.Error == "" {
		t.Fatal("expected error text on report")
	}
}

func TestGenerateAttendanceUsesWindow(t *testing.T) {
	store := newReportFake()
	svc := newTestService(store)

	start := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC)
	rep, _ := svc.Create(context.Background(), Report{
		Name:       "July attendance",
		Type:       TypeAttendance,
		Parameters: Parameters{StartDate: &start, EndDate: &end},
	})

	generated, err := svc.Generate(context.Background(), rep.ID, "", "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	payload, ok := generated.GeneratedData.(AttendancePayload)
	if !ok {
		t.Fatalf("payload type %T", generated.GeneratedData)
	}
	if !payload.Summary.From.Equal(start) || !payload.Summary.To.Equal(end) {
		t.Fatalf("window = %v..%v", payload.Summary.From, payload.Summary.To)
	}
}

func TestGenerateRecurring(t *testing.T) {
	store := newReportFake()
	svc := newTestService(store)

	if _, err := svc.Create(context.Background(), Report{Name: "daily custom", Type: TypeCustom, Recurring: true, Frequency: FrequencyDaily}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(context.Background(), Report{Name: "one-off", Type: TypeCustom}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := svc.GenerateRecurring(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("GenerateRecurring: %v", err)
	}
	if n != 1 {
		t.Fatalf("generated = %d, want 1", n)
	}
}

func TestRenderPDFRequiresGeneratedData(t *testing.T) {
	_, err := RenderPDF(Report{Status: StatusPending})
	if !errors.Is(err, ErrNotGenerated) {
		t.Fatalf("err = %v, want ErrNotGenerated", err)
	}
}

func TestRenderPDFProducesDocument(t *testing.T) {
	at := time.Now().UTC()
	data, err := RenderPDF(Report{
		Name:          "August payroll",
		Type:          TypePayroll,
		Status:        StatusGenerated,
		GeneratedAt:   &at,
		GeneratedData: map[string]any{"totalPay": 4400.0, "lines": []any{map[string]any{"name": "Jane Doe", "basicPay": 4400.0}}},
	})
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if len(data) == 0 || string(data[:4]) != "%PDF" {
		t.Fatalf("not a PDF document (%d bytes)", len(data))
	}
}
