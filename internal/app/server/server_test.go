package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"erm/internal/platform/config"
)

// The journey test exercises the full stack against a real database. It is
// skipped unless TEST_DATABASE_URL points at a disposable Postgres instance.
func journeyConfig(t *testing.T, suffix string) config.Config {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	return config.Config{
		Addr:               ":0",
		DatabaseURL:        dbURL,
		JWTSecret:          "journey-test-secret",
		TokenTTL:           time.Hour,
		Environment:        "test",
		SeedAdminName:      "Journey Admin",
		SeedAdminEmail:     "admin-" + suffix + "@example.com",
		SeedAdminPassword:  "AdminPass123",
		DefaultPassword:    "Welcome123",
		ResetBaseURL:       "http://localhost",
		ResetTokenTTL:      time.Hour,
		RunMigrations:      true,
		MigrationsDir:      "../../../migrations",
		RunSeed:            true,
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 1000,
		LateThresholdHour:  23,
		ReportInterval:     time.Hour,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func call(t *testing.T, client *http.Client, method, url, token string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v", method, url, err)
	}
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestEmployeeJourney(t *testing.T) {
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	cfg := journeyConfig(t, suffix)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	app, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("boot: %v", err)
	}
	defer app.Shutdown(context.Background())

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	base := ts.URL + "/api/v1"
	client := ts.Client()

	// Admin login from the seeded account.
	status, env := call(t, client, http.MethodPost, base+"/auth/login", "", map[string]any{
		"email":    cfg.SeedAdminEmail,
		"password": cfg.SeedAdminPassword,
	})
	if status != http.StatusOK || !env.Success {
		t.Fatalf("admin login: status %d, env %+v", status, env)
	}
	var login struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &login)
	admin := login.Token

	// Department and employee setup.
	status, env = call(t, client, http.MethodPost, base+"/departments", admin, map[string]any{
		"name": "Engineering " + suffix,
	})
	if status != http.StatusCreated {
		t.Fatalf("create department: status %d, env %+v", status, env)
	}
	var dept struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &dept)

	status, env = call(t, client, http.MethodPost, base+"/employees", admin, map[string]any{
		"firstName":    "Jane",
		"lastName":     "Doe",
		"email":        "jane-" + suffix + "@example.com",
		"departmentId": dept.ID,
		"position":     "Engineer",
		"joinDate":     "2024-01-15",
		"salary":       4400,
	})
	if status != http.StatusCreated {
		t.Fatalf("create employee: status %d, env %+v", status, env)
	}
	var created struct {
		Employee struct {
			ID             string `json:"id"`
			EmployeeNumber string `json:"employeeId"`
		} `json:"employee"`
	}
	decodeData(t, env, &created)
	emp := created.Employee
	if emp.ID == "" || emp.EmployeeNumber == "" {
		t.Fatalf("expected an employee with an assigned number, got %+v", emp)
	}

	// Attendance: first check-in succeeds, the second for the same day conflicts.
	status, env = call(t, client, http.MethodPost, base+"/attendance/check-in", admin, map[string]any{
		"employeeId": emp.ID,
	})
	if status != http.StatusCreated {
		t.Fatalf("check-in: status %d, env %+v", status, env)
	}
	status, env = call(t, client, http.MethodPost, base+"/attendance/check-in", admin, map[string]any{
		"employeeId": emp.ID,
	})
	if status != http.StatusConflict {
		t.Fatalf("duplicate check-in: expected 409, got %d (%+v)", status, env)
	}

	status, env = call(t, client, http.MethodPost, base+"/attendance/check-out", admin, map[string]any{
		"employeeId": emp.ID,
	})
	if status != http.StatusOK || !env.Success {
		t.Fatalf("check-out: status %d, env %+v", status, env)
	}

	today := time.Now().UTC().Format("2006-01-02")
	status, env = call(t, client, http.MethodGet, base+"/attendance/stats?from="+today+"&to="+today, admin, nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("attendance stats: status %d, env %+v", status, env)
	}

	// Performance review with a known rating mix.
	status, env = call(t, client, http.MethodPost, base+"/performance", admin, map[string]any{
		"employeeId":  emp.ID,
		"periodStart": "2025-01-01",
		"periodEnd":   "2025-03-31",
		"ratings": map[string]int{
			"productivity":  5,
			"quality":       4,
			"jobKnowledge":  5,
			"communication": 4,
			"teamwork":      5,
			"initiative":    4,
		},
		"feedback": "Strong quarter",
	})
	if status != http.StatusCreated {
		t.Fatalf("create review: status %d, env %+v", status, env)
	}
	var review struct {
		ID            string  `json:"id"`
		OverallRating float64 `json:"overallRating"`
	}
	decodeData(t, env, &review)
	if review.OverallRating != 4.5 {
		t.Fatalf("overall rating: expected 4.5, got %v", review.OverallRating)
	}

	// Only the reviewed employee may acknowledge; the admin is rejected.
	status, env = call(t, client, http.MethodPost, base+"/performance/"+review.ID+"/acknowledge", admin, map[string]any{
		"comments": "noted",
	})
	if status != http.StatusForbidden {
		t.Fatalf("acknowledge by non-employee: expected 403, got %d (%+v)", status, env)
	}

	// A freshly registered user with no employee link is rejected as well.
	status, env = call(t, client, http.MethodPost, base+"/auth/register", "", map[string]any{
		"name":     "Third Party",
		"email":    "third-" + suffix + "@example.com",
		"password": "Password123",
	})
	if status != http.StatusCreated {
		t.Fatalf("register bystander: status %d, env %+v", status, env)
	}
	decodeData(t, env, &login)

	status, env = call(t, client, http.MethodPost, base+"/performance/"+review.ID+"/acknowledge", login.Token, map[string]any{
		"comments": "not mine",
	})
	if status != http.StatusForbidden {
		t.Fatalf("acknowledge by bystander: expected 403, got %d (%+v)", status, env)
	}

	// Jane logs in with the default credentials issued at hire and
	// acknowledges her own review. A second acknowledgement conflicts.
	status, env = call(t, client, http.MethodPost, base+"/auth/login", "", map[string]any{
		"email":    "jane-" + suffix + "@example.com",
		"password": cfg.DefaultPassword,
	})
	if status != http.StatusOK {
		t.Fatalf("employee login: status %d, env %+v", status, env)
	}
	decodeData(t, env, &login)

	status, env = call(t, client, http.MethodPost, base+"/performance/"+review.ID+"/acknowledge", login.Token, map[string]any{
		"comments": "thanks",
	})
	if status != http.StatusOK {
		t.Fatalf("acknowledge by employee: status %d, env %+v", status, env)
	}
	var acked struct {
		Acknowledged bool   `json:"acknowledged"`
		Status       string `json:"status"`
	}
	decodeData(t, env, &acked)
	if !acked.Acknowledged || acked.Status != "acknowledged" {
		t.Fatalf("acknowledge state: %+v", acked)
	}

	status, env = call(t, client, http.MethodPost, base+"/performance/"+review.ID+"/acknowledge", login.Token, map[string]any{})
	if status != http.StatusConflict {
		t.Fatalf("second acknowledge: expected 409, got %d (%+v)", status, env)
	}

	// Teams: membership against a missing team names the team, not the
	// employee, and a project update without a status keeps the stored one.
	status, env = call(t, client, http.MethodPost, base+"/teams", admin, map[string]any{
		"name":         "Platform " + suffix,
		"departmentId": dept.ID,
	})
	if status != http.StatusCreated {
		t.Fatalf("create team: status %d, env %+v", status, env)
	}
	var team struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &team)

	status, env = call(t, client, http.MethodPost, base+"/teams/"+team.ID+"/members", admin, map[string]any{
		"employeeId": emp.ID,
	})
	if status != http.StatusOK {
		t.Fatalf("add member: status %d, env %+v", status, env)
	}

	status, env = call(t, client, http.MethodPost, base+"/teams/00000000-0000-0000-0000-000000000000/members", admin, map[string]any{
		"employeeId": emp.ID,
	})
	if status != http.StatusNotFound || env.Error == nil || env.Error.Message != "team not found" {
		t.Fatalf("add member to missing team: status %d, env %+v", status, env)
	}

	status, env = call(t, client, http.MethodPost, base+"/teams/"+team.ID+"/projects", admin, map[string]any{
		"name":   "Apollo",
		"status": "in-progress",
	})
	if status != http.StatusCreated {
		t.Fatalf("create project: status %d, env %+v", status, env)
	}
	var project struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &project)

	status, env = call(t, client, http.MethodPut, base+"/teams/"+team.ID+"/projects/"+project.ID, admin, map[string]any{
		"name": "Apollo",
	})
	if status != http.StatusOK {
		t.Fatalf("update project: status %d, env %+v", status, env)
	}

	status, env = call(t, client, http.MethodGet, base+"/teams/"+team.ID, admin, nil)
	if status != http.StatusOK {
		t.Fatalf("get team: status %d, env %+v", status, env)
	}
	var teamDetail struct {
		Projects []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"projects"`
	}
	decodeData(t, env, &teamDetail)
	if len(teamDetail.Projects) != 1 || teamDetail.Projects[0].Status != "in-progress" {
		t.Fatalf("project status after update: %+v", teamDetail.Projects)
	}

	// An employee whose account authored reviews for someone else cannot be
	// deleted until those reviews are gone.
	status, env = call(t, client, http.MethodPost, base+"/employees", admin, map[string]any{
		"firstName":    "Bob",
		"lastName":     "Reviewer",
		"email":        "bob-" + suffix + "@example.com",
		"departmentId": dept.ID,
		"joinDate":     "2024-02-01",
	})
	if status != http.StatusCreated {
		t.Fatalf("create second employee: status %d, env %+v", status, env)
	}
	var bobCreated struct {
		Employee struct {
			ID string `json:"id"`
		} `json:"employee"`
	}
	decodeData(t, env, &bobCreated)

	status, env = call(t, client, http.MethodPost, base+"/auth/login", "", map[string]any{
		"email":    "bob-" + suffix + "@example.com",
		"password": cfg.DefaultPassword,
	})
	if status != http.StatusOK {
		t.Fatalf("second employee login: status %d, env %+v", status, env)
	}
	decodeData(t, env, &login)

	status, env = call(t, client, http.MethodPost, base+"/performance", login.Token, map[string]any{
		"employeeId":  emp.ID,
		"periodStart": "2025-04-01",
		"periodEnd":   "2025-06-30",
		"ratings": map[string]int{
			"productivity":  3,
			"quality":       3,
			"jobKnowledge":  3,
			"communication": 3,
			"teamwork":      3,
			"initiative":    3,
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("peer review: status %d, env %+v", status, env)
	}

	status, env = call(t, client, http.MethodDelete, base+"/employees/"+bobCreated.Employee.ID, admin, nil)
	if status != http.StatusConflict {
		t.Fatalf("delete reviewer: expected 409, got %d (%+v)", status, env)
	}

	status, env = call(t, client, http.MethodDelete, base+"/employees/"+emp.ID, admin, nil)
	if status != http.StatusOK {
		t.Fatalf("delete reviewed employee: status %d, env %+v", status, env)
	}

	status, env = call(t, client, http.MethodDelete, base+"/employees/"+bobCreated.Employee.ID, admin, nil)
	if status != http.StatusOK {
		t.Fatalf("delete reviewer after cleanup: status %d, env %+v", status, env)
	}
}
