package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reportColumns = `
    r.id, r.name, r.report_type, r.parameters, r.generated_data, r.status,
    COALESCE(r.error, ''), r.recurring, COALESCE(r.frequency, ''),
    r.generated_at, COALESCE(r.created_by::text, ''), COALESCE(u.name, ''),
    r.created_at, r.updated_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func scanReport(row pgx.Row) (Report, error) {
	var rep Report
	var paramsJSON, dataJSON []byte
	err := row.Scan(
		&rep.ID, &rep.Name, &rep.Type, &paramsJSON, &dataJSON, &rep.Status,
		&rep.Error, &rep.Recurring, &rep.Frequency,
		&rep.GeneratedAt, &rep.CreatedBy, &rep.CreatorName,
		&rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		return Report{}, err
	}
	if len(paramsJSON) > 0 {
		if err := json.Unmarshal(paramsJSON, &rep.Parameters); err != nil {
			return Report{}, err
		}
	}
	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &rep.GeneratedData); err != nil {
			return Report{}, err
		}
	}
	return rep, nil
}

func (s *Store) Get(ctx context.Context, reportID string) (Report, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+reportColumns+`
    FROM reports r
    LEFT JOIN users u ON r.created_by = u.id
    WHERE r.id = $1
  `, reportID)
	rep, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	return rep, err
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Report, int, error) {
	where := " FROM reports r LEFT JOIN users u ON r.created_by = u.id WHERE 1=1"
	args := []any{}
	if filter.Type != "" {
		where += fmt.Sprintf(" AND r.report_type = $%d", len(args)+1)
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND r.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if filter.CreatedBy != "" {
		where += fmt.Sprintf(" AND r.created_by = $%d", len(args)+1)
		args = append(args, filter.CreatedBy)
	}
	if filter.Recurring != nil {
		where += fmt.Sprintf(" AND r.recurring = $%d", len(args)+1)
		args = append(args, *filter.Recurring)
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + reportColumns + where +
		fmt.Sprintf(" ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		reports = append(reports, rep)
	}
	return reports, total, rows.Err()
}

func (s *Store) Create(ctx context.Context, rep Report) (Report, error) {
	paramsJSON, err := json.Marshal(rep.Parameters)
	if err != nil {
		return Report{}, err
	}
	var createdBy any
	if rep.CreatedBy != "" {
		createdBy = rep.CreatedBy
	}
	var frequency any
	if rep.Frequency != "" {
		frequency = rep.Frequency
	}

	row := s.DB.QueryRow(ctx, `
    INSERT INTO reports (name, report_type, parameters, status, recurring, frequency, created_by)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id, created_at, updated_at
  `, rep.Name, rep.Type, paramsJSON, StatusPending, rep.Recurring, frequency, createdBy)

	created := rep
	created.Status = StatusPending
	if err := row.Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Report{}, ErrNotFound
		}
		return Report{}, err
	}
	return created, nil
}

func (s *Store) Update(ctx context.Context, reportID string, rep Report) error {
	paramsJSON, err := json.Marshal(rep.Parameters)
	if err != nil {
		return err
	}
	var frequency any
	if rep.Frequency != "" {
		frequency = rep.Frequency
	}

	tag, err := s.DB.Exec(ctx, `
    UPDATE reports
    SET name = $2, report_type = $3, parameters = $4, recurring = $5, frequency = $6,
        updated_at = now()
    WHERE id = $1
  `, reportID, rep.Name, rep.Type, paramsJSON, rep.Recurring, frequency)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, reportID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM reports WHERE id = $1", reportID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) MarkGenerated(ctx context.Context, reportID string, payload any, at time.Time) error {
	dataJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE reports
    SET generated_data = $2, status = $3, error = NULL, generated_at = $4, updated_at = now()
    WHERE id = $1
  `, reportID, dataJSON, StatusGenerated, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) MarkFailed(ctx context.Context, reportID, reason string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE reports
    SET status = $2, error = $3, updated_at = now()
    WHERE id = $1
  `, reportID, StatusFailed, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecurringDue returns recurring reports whose last generation is older
// than their frequency window.
func (s *Store) ListRecurringDue(ctx context.Context, now time.Time) ([]Report, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+reportColumns+`
    FROM reports r
    LEFT JOIN users u ON r.created_by = u.id
    WHERE r.recurring = TRUE
      AND (r.generated_at IS NULL
        OR (r.frequency = 'daily' AND r.generated_at < $1::timestamptz - interval '1 day')
        OR (r.frequency = 'weekly' AND r.generated_at < $1::timestamptz - interval '7 days')
        OR (r.frequency = 'monthly' AND r.generated_at < $1::timestamptz - interval '1 month'))
    ORDER BY r.created_at
  `, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, rep)
	}
	return due, rows.Err()
}

// PayrollInputs counts attended days per employee over the window. Only
// present and late rows count as worked days.
func (s *Store) PayrollInputs(ctx context.Context, from, to time.Time, params Parameters) ([]PayrollInput, error) {
	query := `
    SELECT e.id::text, e.employee_number, e.first_name || ' ' || e.last_name,
           COALESCE(d.name, ''), COALESCE(e.salary, 0),
           COALESCE((
             SELECT COUNT(1) FROM attendance a
             WHERE a.employee_id = e.id
               AND a.att_date >= $1::date AND a.att_date <= $2::date
               AND a.status IN ('present', 'late')
           ), 0)
    FROM employees e
    LEFT JOIN departments d ON e.department_id = d.id
    WHERE e.status = 'active'`
	args := []any{from, to}
	if params.DepartmentID != "" {
		query += fmt.Sprintf(" AND e.department_id = $%d", len(args)+1)
		args = append(args, params.DepartmentID)
	}
	if len(params.EmployeeIDs) > 0 {
		query += fmt.Sprintf(" AND e.id = ANY($%d)", len(args)+1)
		args = append(args, params.EmployeeIDs)
	}
	query += " ORDER BY e.employee_number"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var inputs []PayrollInput
	for rows.Next() {
		var in PayrollInput
		if err := rows.Scan(&in.EmployeeID, &in.EmployeeNumber, &in.Name, &in.Department, &in.Salary, &in.WorkDays); err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, rows.Err()
}

// Directory lists employees for the employee report.
func (s *Store) Directory(ctx context.Context, params Parameters) ([]DirectoryEntry, error) {
	query := `
    SELECT e.id::text, e.employee_number, e.first_name || ' ' || e.last_name,
           e.email, COALESCE(e.position, ''), COALESCE(d.name, ''),
           e.status, COALESCE(e.salary, 0), COALESCE(to_char(e.join_date, 'YYYY-MM-DD'), '')
    FROM employees e
    LEFT JOIN departments d ON e.department_id = d.id
    WHERE 1=1`
	args := []any{}
	if params.DepartmentID != "" {
		query += fmt.Sprintf(" AND e.department_id = $%d", len(args)+1)
		args = append(args, params.DepartmentID)
	}
	if params.Status != "" {
		query += fmt.Sprintf(" AND e.status = $%d", len(args)+1)
		args = append(args, params.Status)
	}
	query += " ORDER BY e.employee_number"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []DirectoryEntry
	for rows.Next() {
		var entry DirectoryEntry
		if err := rows.Scan(&entry.EmployeeID, &entry.EmployeeNumber, &entry.Name, &entry.Email,
			&entry.Position, &entry.Department, &entry.Status, &entry.Salary, &entry.JoinDate); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// DepartmentSummaries aggregates headcount, budgets and salary totals.
func (s *Store) DepartmentSummaries(ctx context.Context) ([]DepartmentSummary, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT d.id::text, d.name, COALESCE(d.budget, 0),
           COUNT(e.id), COALESCE(SUM(e.salary), 0)
    FROM departments d
    LEFT JOIN employees e ON e.department_id = d.id AND e.status = 'active'
    GROUP BY d.id, d.name, d.budget
    ORDER BY d.name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []DepartmentSummary
	for rows.Next() {
		var sum DepartmentSummary
		if err := rows.Scan(&sum.DepartmentID, &sum.Name, &sum.Budget, &sum.Headcount, &sum.SalaryTotal); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// RecordCounts sizes the main tables for custom reports.
func (s *Store) RecordCounts(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{}
	tables := []string{"employees", "departments", "teams", "attendance", "performance_reviews"}
	for _, table := range tables {
		var n int
		if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM "+table).Scan(&n); err != nil {
			return nil, err
		}
		counts[table] = n
	}
	return counts, nil
}
