package core

import "errors"

var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrDepartmentNotFound  = errors.New("department not found")
	ErrDepartmentNotEmpty  = errors.New("department still has employees assigned")
	ErrDepartmentNameTaken = errors.New("department name already in use")
	ErrEmailTaken          = errors.New("email already in use")
	ErrEmployeeIsReviewer  = errors.New("employee's account authored performance reviews")
	ErrTeamNotFound        = errors.New("team not found")
	ErrTeamNameTaken       = errors.New("team name already in use")
	ErrProjectNotFound     = errors.New("project not found")
)
