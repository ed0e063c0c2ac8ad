package attendance

import "time"

type Record struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employeeId"`
	EmployeeNumber string     `json:"employeeNumber,omitempty"`
	EmployeeName   string     `json:"employeeName,omitempty"`
	Date           time.Time  `json:"date"`
	CheckIn        *time.Time `json:"checkIn,omitempty"`
	CheckOut       *time.Time `json:"checkOut,omitempty"`
	Status         string     `json:"status"`
	WorkHours      float64    `json:"workHours"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type Filter struct {
	EmployeeID   string
	DepartmentID string
	Status       string
	From         time.Time
	To           time.Time
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type DepartmentCount struct {
	DepartmentID   string `json:"departmentId"`
	DepartmentName string `json:"departmentName"`
	Count          int    `json:"count"`
}

type Stats struct {
	From           time.Time         `json:"from"`
	To             time.Time         `json:"to"`
	TotalRecords   int               `json:"totalRecords"`
	ByStatus       []StatusCount     `json:"byStatus"`
	ByDepartment   []DepartmentCount `json:"byDepartment"`
	TotalWorkHours float64           `json:"totalWorkHours"`
	AvgWorkHours   float64           `json:"avgWorkHours"`
}
