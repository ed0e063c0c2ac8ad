package reports

import (
	"testing"
	"time"
)

func TestPayrollRates(t *testing.T) {
	tests := []struct {
		name       string
		salary     float64
		wantDaily  float64
		wantHourly float64
	}{
		{"round salary", 4400, 200, 25},
		{"uneven salary", 5000, 227.27, 28.41},
		{"zero salary", 0, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DailyRate(tc.salary); got != tc.wantDaily {
				t.Fatalf("DailyRate(%v) = %v, want %v", tc.salary, got, tc.wantDaily)
			}
			if got := HourlyRate(tc.salary); got != tc.wantHourly {
				t.Fatalf("HourlyRate(%v) = %v, want %v", tc.salary, got, tc.wantHourly)
			}
		})
	}
}

func TestBuildPayrollLine(t *testing.T) {
	line := BuildPayrollLine(PayrollInput{
		EmployeeID: "emp-1",
		Name:       "Jane Doe",
		Salary:     4400,
		WorkDays:   20,
	})
	if line.DailyRate != 200 {
		t.Fatalf("daily = %v, want 200", line.DailyRate)
	}
	if line.BasicPay != 4000 {
		t.Fatalf("basicPay = %v, want 4000", line.BasicPay)
	}
}

func TestBuildPayrollTotals(t *testing.T) {
	payload := BuildPayroll("2026-08", []PayrollInput{
		{EmployeeID: "a", Salary: 4400, WorkDays: 22},
		{EmployeeID: "b", Salary: 2200, WorkDays: 11},
	})
	if len(payload.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(payload.Lines))
	}
	if payload.TotalPay != 4400+1100 {
		t.Fatalf("totalPay = %v, want 5500", payload.TotalPay)
	}
}

func TestReportWindowDefaultsToCurrentMonth(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	from, to := ReportWindow(Parameters{}, now)
	if from != time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("from = %v", from)
	}
	if to.Month() != time.August || to.Day() != 31 {
		t.Fatalf("to = %v", to)
	}
}

func TestReportWindowUsesGivenBounds(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	from, to := ReportWindow(Parameters{StartDate: &start, EndDate: &end}, time.Now())
	if !from.Equal(start) || !to.Equal(end) {
		t.Fatalf("window = %v..%v", from, to)
	}
}

func TestNextRun(t *testing.T) {
	now := time.Date(2026, time.August, 31, 6, 0, 0, 0, time.UTC)
	if got := NextRun(FrequencyDaily, now); got.Day() != 1 || got.Month() != time.September {
		t.Fatalf("daily next = %v", got)
	}
	if got := NextRun(FrequencyWeekly, now); got.Sub(now) != 7*24*time.Hour {
		t.Fatalf("weekly next = %v", got)
	}
	if got := NextRun(FrequencyMonthly, now); got.Month() != time.October {
		t.Fatalf("monthly next = %v", got)
	}
}
