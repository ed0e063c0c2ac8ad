package shared

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", 1, 20},
		{"explicit", "?page=3&limit=10", 3, 10},
		{"capped", "?limit=500", 1, 100},
		{"garbage ignored", "?page=abc&limit=-5", 1, 20},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/employees"+tc.query, nil)
			p := ParsePagination(req, 20, 100)
			if p.Page != tc.wantPage || p.Limit != tc.wantLimit {
				t.Fatalf("got page=%d limit=%d, want page=%d limit=%d", p.Page, p.Limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	p := Pagination{Page: 3, Limit: 10}
	if p.Offset() != 20 {
		t.Fatalf("offset = %d, want 20", p.Offset())
	}
}

func TestParseDate(t *testing.T) {
	if parsed, err := ParseDate("2026-08-31"); err != nil || parsed.Day() != 31 {
		t.Fatalf("plain date: %v %v", parsed, err)
	}
	if parsed, err := ParseDate("2026-08-31T09:15:00Z"); err != nil || parsed.Hour() != 9 {
		t.Fatalf("rfc3339: %v %v", parsed, err)
	}
	if _, err := ParseDate("31/08/2026"); err == nil {
		t.Fatal("expected error for unsupported layout")
	}
	if parsed, err := ParseDate(""); err != nil || !parsed.IsZero() {
		t.Fatalf("empty should be zero: %v %v", parsed, err)
	}
}

func TestValidatorCollectsAndSorts(t *testing.T) {
	v := NewValidator()
	v.Required("lastName", "", "is required")
	v.Required("firstName", "", "is required")
	v.Enum("status", "retired", []string{"active", "inactive"}, "must be a known status")
	v.Range("ratings.quality", 6, 1, 5)

	issues := v.Issues()
	if len(issues) != 4 {
		t.Fatalf("issues = %d, want 4", len(issues))
	}
	if issues[0].Field != "firstName" {
		t.Fatalf("first issue field = %q, want firstName", issues[0].Field)
	}
}

func TestValidatorDateOrder(t *testing.T) {
	v := NewValidator()
	start := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	v.DateOrder("startDate", start, "endDate", end)
	if !v.HasIssues() {
		t.Fatal("expected inverted range to be rejected")
	}
}

func TestValidatorRejectWritesBadRequest(t *testing.T) {
	v := NewValidator()
	v.Add("email", "is required")
	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("Reject should report issues")
	}
	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	clean := NewValidator()
	rec2 := httptest.NewRecorder()
	if clean.Reject(rec2, "req-1") {
		t.Fatal("clean validator should not reject")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "203.0.113.10:4444"
	if got := ClientIP(req); got != "203.0.113.10" {
		t.Fatalf("got %q", got)
	}
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	if got := ClientIP(req); got != "198.51.100.7" {
		t.Fatalf("got %q", got)
	}
}
