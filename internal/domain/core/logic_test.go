package core

import "testing"

func TestFormatEmployeeNumber(t *testing.T) {
	tests := []struct {
		seq  int64
		want string
	}{
		{1, "EMP0001"},
		{42, "EMP0042"},
		{9999, "EMP9999"},
		{10000, "EMP10000"},
	}

	for _, tc := range tests {
		if got := FormatEmployeeNumber(tc.seq); got != tc.want {
			t.Fatalf("FormatEmployeeNumber(%d) = %s, want %s", tc.seq, got, tc.want)
		}
	}
}

func TestIsEmployeeNumber(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"EMP0001", true},
		{"emp0042", true},
		{" EMP0100 ", true},
		{"EMP10000", true},
		{"EMP1", false},
		{"0001", false},
		{"8b7f2a5c-1d0e-4f7a-9c3b-2f6e8d9a1b0c", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := IsEmployeeNumber(tc.ref); got != tc.want {
			t.Fatalf("IsEmployeeNumber(%q) = %v, want %v", tc.ref, got, tc.want)
		}
	}
}

func TestValidEmployeeStatus(t *testing.T) {
	for _, status := range EmployeeStatuses {
		if !ValidEmployeeStatus(status) {
			t.Fatalf("expected %s to be valid", status)
		}
	}
	if ValidEmployeeStatus("retired") {
		t.Fatal("expected retired to be invalid")
	}
}
