package performance

import "time"

type Ratings struct {
	Productivity  int `json:"productivity"`
	Quality       int `json:"quality"`
	JobKnowledge  int `json:"jobKnowledge"`
	Communication int `json:"communication"`
	Teamwork      int `json:"teamwork"`
	Initiative    int `json:"initiative"`
}

type Goal struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
}

type Review struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employeeId"`
	EmployeeName   string     `json:"employeeName,omitempty"`
	ReviewerID     string     `json:"reviewerId"`
	ReviewerName   string     `json:"reviewerName,omitempty"`
	PeriodStart    time.Time  `json:"periodStart"`
	PeriodEnd      time.Time  `json:"periodEnd"`
	Ratings        Ratings    `json:"ratings"`
	OverallRating  float64    `json:"overallRating"`
	Feedback       string     `json:"feedback,omitempty"`
	Goals          []Goal     `json:"goals"`
	Status         string     `json:"status"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
	Comments       string     `json:"comments,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type Filter struct {
	EmployeeID string
	ReviewerID string
	Status     string
	From       time.Time
	To         time.Time
}

type DimensionAverages struct {
	Productivity  float64 `json:"productivity"`
	Quality       float64 `json:"quality"`
	JobKnowledge  float64 `json:"jobKnowledge"`
	Communication float64 `json:"communication"`
	Teamwork      float64 `json:"teamwork"`
	Initiative    float64 `json:"initiative"`
}

type DepartmentAverage struct {
	DepartmentID   string  `json:"departmentId"`
	DepartmentName string  `json:"departmentName"`
	AvgOverall     float64 `json:"avgOverall"`
	ReviewCount    int     `json:"reviewCount"`
}

type TopPerformer struct {
	EmployeeID     string  `json:"employeeId"`
	EmployeeName   string  `json:"employeeName"`
	EmployeeNumber string  `json:"employeeNumber"`
	AvgOverall     float64 `json:"avgOverall"`
}

type GoalStatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type Stats struct {
	From          time.Time           `json:"from"`
	To            time.Time           `json:"to"`
	TotalReviews  int                 `json:"totalReviews"`
	Averages      DimensionAverages   `json:"averages"`
	AvgOverall    float64             `json:"avgOverall"`
	ByDepartment  []DepartmentAverage `json:"byDepartment"`
	TopPerformers []TopPerformer      `json:"topPerformers"`
	GoalStatuses  []GoalStatusCount   `json:"goalStatuses"`
}
