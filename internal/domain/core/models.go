package core

import "time"

type Employee struct {
	ID                    string     `json:"id"`
	EmployeeNumber        string     `json:"employeeId"`
	UserID                string     `json:"userId,omitempty"`
	FirstName             string     `json:"firstName"`
	LastName              string     `json:"lastName"`
	Email                 string     `json:"email"`
	Phone                 string     `json:"phone,omitempty"`
	DepartmentID          string     `json:"departmentId"`
	DepartmentName        string     `json:"departmentName,omitempty"`
	Position              string     `json:"position,omitempty"`
	JoinDate              *time.Time `json:"joinDate,omitempty"`
	Status                string     `json:"status"`
	Salary                *float64   `json:"salary,omitempty"`
	Address               string     `json:"address,omitempty"`
	EmergencyName         string     `json:"emergencyName,omitempty"`
	EmergencyRelationship string     `json:"emergencyRelationship,omitempty"`
	EmergencyPhone        string     `json:"emergencyPhone,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

type Department struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	ManagerID     string    `json:"managerId,omitempty"`
	Budget        *float64  `json:"budget,omitempty"`
	Location      string    `json:"location,omitempty"`
	EmployeeCount int       `json:"employeeCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Team struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	DepartmentID string    `json:"departmentId"`
	LeaderID     string    `json:"leaderId,omitempty"`
	MemberIDs    []string  `json:"memberIds"`
	Projects     []Project `json:"projects,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Project struct {
	ID          string     `json:"id"`
	TeamID      string     `json:"teamId"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type CreateEmployeeInput struct {
	FirstName             string
	LastName              string
	Email                 string
	Phone                 string
	DepartmentID          string
	Position              string
	JoinDate              *time.Time
	Status                string
	Salary                *float64
	Address               string
	EmergencyName         string
	EmergencyRelationship string
	EmergencyPhone        string
	PasswordHash          string
	ActorUserID           string
	RequestID             string
	IP                    string
}

type EmployeeFilter struct {
	DepartmentID string
	Status       string
	Search       string
}
