package core

import (
	"fmt"
	"regexp"
	"strings"
)

var employeeNumberPattern = regexp.MustCompile(`^EMP\d{4,}$`)

// FormatEmployeeNumber renders a sequence value as a public employee code.
// Values beyond 9999 keep their full width rather than wrapping.
func FormatEmployeeNumber(seq int64) string {
	return fmt.Sprintf("EMP%04d", seq)
}

// IsEmployeeNumber reports whether a reference looks like a public employee
// code rather than an internal id.
func IsEmployeeNumber(ref string) bool {
	return employeeNumberPattern.MatchString(strings.ToUpper(strings.TrimSpace(ref)))
}

func ValidEmployeeStatus(status string) bool {
	for _, candidate := range EmployeeStatuses {
		if status == candidate {
			return true
		}
	}
	return false
}

func ValidProjectStatus(status string) bool {
	for _, candidate := range ProjectStatuses {
		if status == candidate {
			return true
		}
	}
	return false
}
