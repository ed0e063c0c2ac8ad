package reports

import (
	"time"

	"erm/internal/domain/attendance"
	"erm/internal/domain/performance"
)

// Parameters scope what a generator looks at. All fields are optional;
// generators fall back to sensible windows when dates are absent.
type Parameters struct {
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	DepartmentID string     `json:"departmentId,omitempty"`
	EmployeeIDs  []string   `json:"employeeIds,omitempty"`
	Status       string     `json:"status,omitempty"`
}

type Report struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	Parameters    Parameters `json:"parameters"`
	GeneratedData any        `json:"generatedData,omitempty"`
	Status        string     `json:"status"`
	Error         string     `json:"error,omitempty"`
	Recurring     bool       `json:"recurring"`
	Frequency     string     `json:"frequency,omitempty"`
	GeneratedAt   *time.Time `json:"generatedAt,omitempty"`
	CreatedBy     string     `json:"createdBy,omitempty"`
	CreatorName   string     `json:"creatorName,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type Filter struct {
	Type      string
	Status    string
	CreatedBy string
	Recurring *bool
}

// AttendancePayload is the generated_data shape for attendance reports.
type AttendancePayload struct {
	Window  string           `json:"window"`
	Summary attendance.Stats `json:"summary"`
}

// PerformancePayload is the generated_data shape for performance reports.
type PerformancePayload struct {
	Window  string            `json:"window"`
	Summary performance.Stats `json:"summary"`
}

type DirectoryEntry struct {
	EmployeeID     string  `json:"employeeId"`
	EmployeeNumber string  `json:"employeeNumber"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Position       string  `json:"position"`
	Department     string  `json:"department"`
	Status         string  `json:"status"`
	Salary         float64 `json:"salary"`
	JoinDate       string  `json:"joinDate"`
}

type EmployeePayload struct {
	Total        int                      `json:"total"`
	ByStatus     map[string]int           `json:"byStatus"`
	ByDepartment map[string][]DirectoryEntry `json:"byDepartment"`
}

type DepartmentSummary struct {
	DepartmentID string  `json:"departmentId"`
	Name         string  `json:"name"`
	Headcount    int     `json:"headcount"`
	Budget       float64 `json:"budget"`
	SalaryTotal  float64 `json:"salaryTotal"`
}

type DepartmentPayload struct {
	Departments []DepartmentSummary `json:"departments"`
	TotalBudget float64             `json:"totalBudget"`
	TotalStaff  int                 `json:"totalStaff"`
}

// PayrollInput is the raw material for one payroll line: the employee's
// salary and how many present or late attendance days fell in the window.
type PayrollInput struct {
	EmployeeID     string
	EmployeeNumber string
	Name           string
	Department     string
	Salary         float64
	WorkDays       int
}

type PayrollLine struct {
	EmployeeID     string  `json:"employeeId"`
	EmployeeNumber string  `json:"employeeNumber"`
	Name           string  `json:"name"`
	Department     string  `json:"department"`
	Salary         float64 `json:"salary"`
	WorkDays       int     `json:"workDays"`
	DailyRate      float64 `json:"dailyRate"`
	HourlyRate     float64 `json:"hourlyRate"`
	BasicPay       float64 `json:"basicPay"`
}

type PayrollPayload struct {
	Window   string        `json:"window"`
	Lines    []PayrollLine `json:"lines"`
	TotalPay float64       `json:"totalPay"`
}

type CustomPayload struct {
	Parameters  Parameters     `json:"parameters"`
	RecordCount map[string]int `json:"recordCounts"`
}
