package reportshandler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"erm/internal/domain/auth"
	"erm/internal/domain/reports"
	"erm/internal/transport/http/api"
	"erm/internal/transport/http/middleware"
)

type fakeReportStore struct {
	reports map[string]reports.Report
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{reports: map[string]reports.Report{}}
}

func (f *fakeReportStore) Get(ctx context.Context, reportID string) (reports.Report, error) {
	rep, ok := f.reports[reportID]
	if !ok {
		return reports.Report{}, reports.ErrNotFound
	}
	return rep, nil
}

func (f *fakeReportStore) List(ctx context.Context, filter reports.Filter, limit, offset int) ([]reports.Report, int, error) {
	var out []reports.Report
	for _, rep := range f.reports {
		out = append(out, rep)
	}
	return out, len(out), nil
}

func (f *fakeReportStore) Create(ctx context.Context, rep reports.Report) (reports.Report, error) {
	rep.ID = "rep-1"
	f.reports[rep.ID] = rep
	return rep, nil
}

func (f *fakeReportStore) Update(ctx context.Context, reportID string, rep reports.Report) error {
	if _, ok := f.reports[reportID]; !ok {
		return reports.ErrNotFound
	}
	rep.ID = reportID
	f.reports[reportID] = rep
	return nil
}

func (f *fakeReportStore) Delete(ctx context.Context, reportID string) error {
	if _, ok := f.reports[reportID]; !ok {
		return reports.ErrNotFound
	}
	delete(f.reports, reportID)
	return nil
}

func (f *fakeReportStore) MarkGenerated(ctx context.Context, reportID string, payload any, at time.Time) error {
	rep := f.reports[reportID]
	rep.Status = reports.StatusGenerated
	rep.GeneratedData = payload
	rep.GeneratedAt = &at
	f.reports[reportID] = rep
	return nil
}

func (f *fakeReportStore) MarkFailed(ctx context.Context, reportID, reason string) error {
	rep := f.reports[reportID]
	rep.Status = reports.StatusFailed
	rep.Error = reason
	f.reports[reportID] = rep
	return nil
}

func (f *fakeReportStore) ListRecurringDue(ctx context.Context, now time.Time) ([]reports.Report, error) {
	return nil, nil
}

func (f *fakeReportStore) PayrollInputs(ctx context.Context, from, to time.Time, params reports.Parameters) ([]reports.PayrollInput, error) {
	return nil, nil
}

func (f *fakeReportStore) Directory(ctx context.Context, params reports.Parameters) ([]reports.DirectoryEntry, error) {
	return nil, nil
}

func (f *fakeReportStore) DepartmentSummaries(ctx context.Context) ([]reports.DepartmentSummary, error) {
	return nil, nil
}

func (f *fakeReportStore) RecordCounts(ctx context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}

var _ reports.StoreAPI = (*fakeReportStore)(nil)

func newTestHandler() *Handler {
	svc := reports.NewService(newFakeReportStore(), nil, nil, nil, slog.Default())
	return NewHandler(svc)
}

func adminRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{UserID: "admin-1", Role: auth.RoleAdmin}))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) api.Envelope {
	t.Helper()
	var env api.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func requireFieldError(t *testing.T, env api.Envelope, field string) {
	t.Helper()
	if env.Error == nil {
		t.Fatal("expected an error payload")
	}
	if env.Error.Code != "validation_error" {
		t.Fatalf("error code: got %q", env.Error.Code)
	}
	for _, detail := range env.Error.Details {
		if detail.Field == field {
			return
		}
	}
	t.Fatalf("expected a detail for field %q, got %+v", field, env.Error.Details)
}

func TestListRejectsBadRecurringFilter(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.handleList(rec, adminRequest(http.MethodGet, "/reports?recurring=banana", ""))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	requireFieldError(t, decodeEnvelope(t, rec), "recurring")
}

func TestCreateRejectsUnknownType(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.handleCreate(rec, adminRequest(http.MethodPost, "/reports",
		`{"name":"Monthly","type":"horoscope"}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	requireFieldError(t, decodeEnvelope(t, rec), "type")
}

func TestCreateRejectsBadFrequency(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.handleCreate(rec, adminRequest(http.MethodPost, "/reports",
		`{"name":"Monthly","type":"attendance","recurring":true,"frequency":"hourly"}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	requireFieldError(t, decodeEnvelope(t, rec), "frequency")
}
