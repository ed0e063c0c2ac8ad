package reports

const (
	TypeAttendance  = "attendance"
	TypePerformance = "performance"
	TypeEmployee    = "employee"
	TypeDepartment  = "department"
	TypePayroll     = "payroll"
	TypeCustom      = "custom"

	StatusPending   = "pending"
	StatusGenerated = "generated"
	StatusFailed    = "failed"

	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"

	// Payroll policy: a month counts 22 working days of 8 hours.
	WorkDaysPerMonth = 22
	HoursPerWorkDay  = 8
)

var Types = []string{TypeAttendance, TypePerformance, TypeEmployee, TypeDepartment, TypePayroll, TypeCustom}

var Frequencies = []string{FrequencyDaily, FrequencyWeekly, FrequencyMonthly}

func ValidType(reportType string) bool {
	for _, candidate := range Types {
		if reportType == candidate {
			return true
		}
	}
	return false
}

func ValidFrequency(frequency string) bool {
	for _, candidate := range Frequencies {
		if frequency == candidate {
			return true
		}
	}
	return false
}
