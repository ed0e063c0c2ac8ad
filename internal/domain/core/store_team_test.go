package core

import (
	"errors"
	"testing"
)

func TestMemberFKError(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{"team_members_team_id_fkey", ErrTeamNotFound},
		{"team_members_employee_id_fkey", ErrEmployeeNotFound},
	}

	for _, tc := range tests {
		if got := memberFKError(tc.constraint); !errors.Is(got, tc.want) {
			t.Fatalf("memberFKError(%q) = %v, want %v", tc.constraint, got, tc.want)
		}
	}
}
