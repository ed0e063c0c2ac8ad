package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func scanDepartment(row pgx.Row) (Department, error) {
	var dep Department
	err := row.Scan(
		&dep.ID, &dep.Name, &dep.Description, &dep.ManagerID,
		&dep.Budget, &dep.Location, &dep.EmployeeCount, &dep.CreatedAt,
	)
	return dep, err
}

const departmentColumns = `
    d.id, d.name, COALESCE(d.description, ''), COALESCE(d.manager_id::text, ''),
    d.budget, COALESCE(d.location, ''),
    (SELECT COUNT(1) FROM employees e WHERE e.department_id = d.id) AS employee_count,
    d.created_at`

func (s *Store) GetDepartment(ctx context.Context, departmentID string) (Department, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments d WHERE d.id = $1`, departmentID)
	dep, err := scanDepartment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Department{}, ErrDepartmentNotFound
	}
	return dep, err
}

func (s *Store) ListDepartments(ctx context.Context, limit, offset int) ([]Department, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM departments").Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT `+departmentColumns+`
    FROM departments d
    ORDER BY d.name
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		dep, err := scanDepartment(rows)
		if err != nil {
			return nil, 0, err
		}
		departments = append(departments, dep)
	}
	return departments, total, rows.Err()
}

func (s *Store) CreateDepartment(ctx context.Context, dep Department) (Department, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name, description, manager_id, budget, location)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id, created_at
  `, dep.Name, dep.Description, nullIfEmpty(dep.ManagerID), dep.Budget, dep.Location)

	created := dep
	err := row.Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Department{}, ErrDepartmentNameTaken
			case "23503":
				return Department{}, ErrEmployeeNotFound
			}
		}
		return Department{}, err
	}
	return created, nil
}

func (s *Store) UpdateDepartment(ctx context.Context, departmentID string, dep Department) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE departments
    SET name = $2, description = $3, manager_id = $4, budget = $5, location = $6
    WHERE id = $1
  `, departmentID, dep.Name, dep.Description, nullIfEmpty(dep.ManagerID), dep.Budget, dep.Location)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrDepartmentNameTaken
			case "23503":
				return ErrEmployeeNotFound
			}
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}

// DeleteDepartment refuses to remove a department while employees still
// reference it.
func (s *Store) DeleteDepartment(ctx context.Context, departmentID string) error {
	var employeeCount int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE department_id = $1", departmentID).Scan(&employeeCount)
	if err != nil {
		return err
	}
	if employeeCount > 0 {
		return ErrDepartmentNotEmpty
	}

	tag, err := s.DB.Exec(ctx, "DELETE FROM departments WHERE id = $1", departmentID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrDepartmentNotEmpty
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
