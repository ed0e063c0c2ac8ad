package reports

import (
	"math"
	"time"
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DailyRate divides the monthly salary over the fixed 22 working days.
func DailyRate(salary float64) float64 {
	return round2(salary / WorkDaysPerMonth)
}

// HourlyRate divides the monthly salary over 22 days of 8 hours.
func HourlyRate(salary float64) float64 {
	return round2(salary / (WorkDaysPerMonth * HoursPerWorkDay))
}

// BuildPayrollLine prices one employee's window from attended work days.
func BuildPayrollLine(in PayrollInput) PayrollLine {
	daily := DailyRate(in.Salary)
	return PayrollLine{
		EmployeeID:     in.EmployeeID,
		EmployeeNumber: in.EmployeeNumber,
		Name:           in.Name,
		Department:     in.Department,
		Salary:         in.Salary,
		WorkDays:       in.WorkDays,
		DailyRate:      daily,
		HourlyRate:     HourlyRate(in.Salary),
		BasicPay:       round2(float64(in.WorkDays) * daily),
	}
}

// BuildPayroll prices every input and totals the run.
func BuildPayroll(window string, inputs []PayrollInput) PayrollPayload {
	payload := PayrollPayload{Window: window, Lines: make([]PayrollLine, 0, len(inputs))}
	for _, in := range inputs {
		line := BuildPayrollLine(in)
		payload.Lines = append(payload.Lines, line)
		payload.TotalPay = round2(payload.TotalPay + line.BasicPay)
	}
	return payload
}

// ReportWindow resolves the parameter dates, defaulting to the current
// calendar month when either bound is missing.
func ReportWindow(params Parameters, now time.Time) (time.Time, time.Time) {
	if params.StartDate != nil && params.EndDate != nil {
		return *params.StartDate, *params.EndDate
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// NextRun returns when a recurring report is due again after a run at now.
func NextRun(frequency string, now time.Time) time.Time {
	switch frequency {
	case FrequencyDaily:
		return now.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return now.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return now.AddDate(0, 1, 0)
	default:
		return now.AddDate(0, 0, 1)
	}
}
