package core

const (
	EmployeeStatusActive     = "active"
	EmployeeStatusInactive   = "inactive"
	EmployeeStatusLeave      = "leave"
	EmployeeStatusTerminated = "terminated"

	ProjectStatusPlanning   = "planning"
	ProjectStatusInProgress = "in-progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusOnHold     = "on-hold"
)

var EmployeeStatuses = []string{
	EmployeeStatusActive,
	EmployeeStatusInactive,
	EmployeeStatusLeave,
	EmployeeStatusTerminated,
}

var ProjectStatuses = []string{
	ProjectStatusPlanning,
	ProjectStatusInProgress,
	ProjectStatusCompleted,
	ProjectStatusOnHold,
}
