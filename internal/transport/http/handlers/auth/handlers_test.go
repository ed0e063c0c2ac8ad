package authhandler

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		wantIssues int
	}{
		{"strong", "correct2horse", 0},
		{"too short", "ab1", 1},
		{"no digits", "passwordonly", 1},
		{"no letters", "12345678", 1},
		{"short and weak", "abc", 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			issues := validatePassword(tc.password)
			if len(issues) != tc.wantIssues {
				t.Fatalf("issues = %v, want %d", issues, tc.wantIssues)
			}
		})
	}
}

func TestBuildResetLink(t *testing.T) {
	link := buildResetLink("https://erm.example.com/", "tok123")
	if link != "https://erm.example.com/reset-password?token=tok123" {
		t.Fatalf("got %q", link)
	}
	if strings.Contains(buildResetLink("https://erm.example.com", "t"), "//reset") {
		t.Fatal("double slash in link")
	}
}
