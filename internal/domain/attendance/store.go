package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recordColumns = `
    a.id, a.employee_id::text, e.employee_number, e.first_name || ' ' || e.last_name,
    a.att_date, a.check_in, a.check_out, a.status, a.work_hours, COALESCE(a.notes, ''),
    a.created_at, a.updated_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.EmployeeNumber, &rec.EmployeeName,
		&rec.Date, &rec.CheckIn, &rec.CheckOut, &rec.Status, &rec.WorkHours, &rec.Notes,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

func (s *Store) Get(ctx context.Context, recordID string) (Record, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+recordColumns+`
    FROM attendance a
    JOIN employees e ON a.employee_id = e.id
    WHERE a.id = $1
  `, recordID)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// FindByEmployeeAndDate returns the single record for an employee on a
// calendar day, if any.
func (s *Store) FindByEmployeeAndDate(ctx context.Context, employeeID string, day time.Time) (Record, bool, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+recordColumns+`
    FROM attendance a
    JOIN employees e ON a.employee_id = e.id
    WHERE a.employee_id = $1 AND a.att_date = $2
  `, employeeID, day)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Record, int, error) {
	where := ` FROM attendance a
    JOIN employees e ON a.employee_id = e.id WHERE 1=1`
	args := []any{}
	if filter.EmployeeID != "" {
		where += fmt.Sprintf(" AND a.employee_id = $%d", len(args)+1)
		args = append(args, filter.EmployeeID)
	}
	if filter.DepartmentID != "" {
		where += fmt.Sprintf(" AND e.department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND a.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if !filter.From.IsZero() {
		where += fmt.Sprintf(" AND a.att_date >= $%d", len(args)+1)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		where += fmt.Sprintf(" AND a.att_date <= $%d", len(args)+1)
		args = append(args, filter.To)
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + recordColumns + where +
		fmt.Sprintf(" ORDER BY a.att_date DESC, e.employee_number LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func (s *Store) Create(ctx context.Context, rec Record) (Record, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO attendance (employee_id, att_date, check_in, check_out, status, work_hours, notes)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id, created_at, updated_at
  `, rec.EmployeeID, rec.Date, rec.CheckIn, rec.CheckOut, rec.Status, rec.WorkHours, rec.Notes)

	created := rec
	err := row.Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Record{}, ErrDuplicateDay
			case "23503":
				return Record{}, ErrNotFound
			}
		}
		return Record{}, err
	}
	return created, nil
}

func (s *Store) SetCheckIn(ctx context.Context, recordID string, at time.Time, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE attendance
    SET check_in = $2, status = $3, updated_at = now()
    WHERE id = $1
  `, recordID, at, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCheckOut stamps the check-out and derived work hours only when no
// check-out exists yet, so a second call never overwrites the first.
func (s *Store) SetCheckOut(ctx context.Context, recordID string, at time.Time, workHours float64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE attendance
    SET check_out = $2, work_hours = $3, updated_at = now()
    WHERE id = $1 AND check_out IS NULL
  `, recordID, at, workHours)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyCheckedOut
	}
	return nil
}

func (s *Store) Update(ctx context.Context, recordID string, rec Record) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE attendance
    SET att_date = $2, check_in = $3, check_out = $4, status = $5, work_hours = $6, notes = $7, updated_at = now()
    WHERE id = $1
  `, recordID, rec.Date, rec.CheckIn, rec.CheckOut, rec.Status, rec.WorkHours, rec.Notes)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateDay
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, recordID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM attendance WHERE id = $1", recordID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates a date window by status and by department, and totals
// work hours over records that actually accrued time.
func (s *Store) Stats(ctx context.Context, from, to time.Time) (Stats, error) {
	stats := Stats{From: from, To: to, ByStatus: []StatusCount{}, ByDepartment: []DepartmentCount{}}

	rows, err := s.DB.Query(ctx, `
    SELECT status, COUNT(1)
    FROM attendance
    WHERE att_date >= $1 AND att_date <= $2
    GROUP BY status
    ORDER BY status
  `, from, to)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return Stats{}, err
		}
		stats.ByStatus = append(stats.ByStatus, sc)
		stats.TotalRecords += sc.Count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	deptRows, err := s.DB.Query(ctx, `
    SELECT d.id::text, d.name, COUNT(1)
    FROM attendance a
    JOIN employees e ON a.employee_id = e.id
    JOIN departments d ON e.department_id = d.id
    WHERE a.att_date >= $1 AND a.att_date <= $2
    GROUP BY d.id, d.name
    ORDER BY d.name
  `, from, to)
	if err != nil {
		return Stats{}, err
	}
	defer deptRows.Close()
	for deptRows.Next() {
		var dc DepartmentCount
		if err := deptRows.Scan(&dc.DepartmentID, &dc.DepartmentName, &dc.Count); err != nil {
			return Stats{}, err
		}
		stats.ByDepartment = append(stats.ByDepartment, dc)
	}
	if err := deptRows.Err(); err != nil {
		return Stats{}, err
	}

	err = s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(work_hours), 0), COALESCE(AVG(work_hours), 0)
    FROM attendance
    WHERE att_date >= $1 AND att_date <= $2 AND work_hours > 0
  `, from, to).Scan(&stats.TotalWorkHours, &stats.AvgWorkHours)
	if err != nil {
		return Stats{}, err
	}

	return stats, nil
}
