package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"erm/internal/domain/activity"
	"erm/internal/domain/auth"
)

const employeeColumns = `
    e.id, e.employee_number, COALESCE(e.user_id::text, ''),
    e.first_name, e.last_name, e.email, COALESCE(e.phone, ''),
    e.department_id::text, COALESCE(d.name, ''),
    COALESCE(e.position, ''), e.join_date, e.status, e.salary,
    COALESCE(e.address, ''),
    COALESCE(e.emergency_name, ''), COALESCE(e.emergency_relationship, ''), COALESCE(e.emergency_phone, ''),
    e.created_at, e.updated_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(
		&emp.ID, &emp.EmployeeNumber, &emp.UserID,
		&emp.FirstName, &emp.LastName, &emp.Email, &emp.Phone,
		&emp.DepartmentID, &emp.DepartmentName,
		&emp.Position, &emp.JoinDate, &emp.Status, &emp.Salary,
		&emp.Address,
		&emp.EmergencyName, &emp.EmergencyRelationship, &emp.EmergencyPhone,
		&emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    LEFT JOIN departments d ON e.department_id = d.id
    WHERE e.id = $1
  `, employeeID)
	emp, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) GetEmployeeByNumber(ctx context.Context, number string) (Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    LEFT JOIN departments d ON e.department_id = d.id
    WHERE upper(e.employee_number) = upper($1)
  `, number)
	emp, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) GetEmployeeByUserID(ctx context.Context, userID string) (Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees e
    LEFT JOIN departments d ON e.department_id = d.id
    WHERE e.user_id = $1
  `, userID)
	emp, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

// ResolveEmployee accepts either an internal id or a public EMPnnnn code.
func (s *Store) ResolveEmployee(ctx context.Context, ref string) (Employee, error) {
	if IsEmployeeNumber(ref) {
		return s.GetEmployeeByNumber(ctx, ref)
	}
	return s.GetEmployee(ctx, ref)
}

func (s *Store) ListEmployees(ctx context.Context, filter EmployeeFilter, limit, offset int) ([]Employee, int, error) {
	where := " FROM employees e LEFT JOIN departments d ON e.department_id = d.id WHERE 1=1"
	args := []any{}
	if filter.DepartmentID != "" {
		where += fmt.Sprintf(" AND e.department_id = $%d", len(args)+1)
		args = append(args, filter.DepartmentID)
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND e.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		pos := len(args) + 1
		where += fmt.Sprintf(" AND (e.first_name ILIKE $%d OR e.last_name ILIKE $%d OR e.email ILIKE $%d OR e.employee_number ILIKE $%d)", pos, pos, pos, pos)
		args = append(args, "%"+filter.Search+"%")
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + employeeColumns + where +
		fmt.Sprintf(" ORDER BY e.employee_number LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, emp)
	}
	return employees, total, rows.Err()
}

// CreateEmployee allocates an employee number, creates the linked user
// account, the employee row, and the activity entry inside one transaction.
func (s *Store) CreateEmployee(ctx context.Context, input CreateEmployeeInput) (Employee, auth.User, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Employee{}, auth.User{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var deptName string
	err = tx.QueryRow(ctx, "SELECT name FROM departments WHERE id = $1", input.DepartmentID).Scan(&deptName)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, auth.User{}, ErrDepartmentNotFound
	}
	if err != nil {
		return Employee{}, auth.User{}, err
	}

	var emailCount int
	err = tx.QueryRow(ctx, `
    SELECT (SELECT COUNT(1) FROM users WHERE lower(email) = lower($1)) +
           (SELECT COUNT(1) FROM employees WHERE lower(email) = lower($1))
  `, input.Email).Scan(&emailCount)
	if err != nil {
		return Employee{}, auth.User{}, err
	}
	if emailCount > 0 {
		return Employee{}, auth.User{}, ErrEmailTaken
	}

	var seq int64
	if err := tx.QueryRow(ctx, "SELECT nextval('employee_number_seq')").Scan(&seq); err != nil {
		return Employee{}, auth.User{}, err
	}
	number := FormatEmployeeNumber(seq)

	var user auth.User
	err = tx.QueryRow(ctx, `
    INSERT INTO users (name, email, password_hash, role, phone, address, emergency_name, emergency_relationship, emergency_phone)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    RETURNING id, name, email, role, status, created_at, updated_at
  `, input.FirstName+" "+input.LastName, input.Email, input.PasswordHash, auth.RoleEmployee,
		input.Phone, input.Address, input.EmergencyName, input.EmergencyRelationship, input.EmergencyPhone,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.Status, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return Employee{}, auth.User{}, err
	}

	status := input.Status
	if status == "" {
		status = EmployeeStatusActive
	}

	var emp Employee
	err = tx.QueryRow(ctx, `
    INSERT INTO employees (employee_number, user_id, first_name, last_name, email, phone, department_id, position, join_date, status, salary, address, emergency_name, emergency_relationship, emergency_phone)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
    RETURNING id, created_at, updated_at
  `, number, user.ID, input.FirstName, input.LastName, input.Email, input.Phone,
		input.DepartmentID, input.Position, input.JoinDate, status, input.Salary, input.Address,
		input.EmergencyName, input.EmergencyRelationship, input.EmergencyPhone,
	).Scan(&emp.ID, &emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Employee{}, auth.User{}, ErrEmailTaken
		}
		return Employee{}, auth.User{}, err
	}

	if _, err := tx.Exec(ctx, "UPDATE users SET employee_id = $2 WHERE id = $1", user.ID, emp.ID); err != nil {
		return Employee{}, auth.User{}, err
	}
	user.EmployeeID = emp.ID

	metadata, _ := json.Marshal(map[string]string{"employeeNumber": number, "department": deptName})
	err = activity.RecordTx(ctx, tx, activity.Entry{
		Type:        activity.TypeEmployeeCreated,
		ActorUserID: input.ActorUserID,
		Subject:     input.FirstName + " " + input.LastName,
		Description: "employee created in " + deptName,
		RelatedTo:   &activity.RelatedRef{Kind: activity.KindEmployee, ID: emp.ID},
		Metadata:    metadata,
		RequestID:   input.RequestID,
		IP:          input.IP,
	})
	if err != nil {
		return Employee{}, auth.User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Employee{}, auth.User{}, err
	}

	emp.EmployeeNumber = number
	emp.UserID = user.ID
	emp.FirstName = input.FirstName
	emp.LastName = input.LastName
	emp.Email = input.Email
	emp.Phone = input.Phone
	emp.DepartmentID = input.DepartmentID
	emp.DepartmentName = deptName
	emp.Position = input.Position
	emp.JoinDate = input.JoinDate
	emp.Status = status
	emp.Salary = input.Salary
	emp.Address = input.Address
	emp.EmergencyName = input.EmergencyName
	emp.EmergencyRelationship = input.EmergencyRelationship
	emp.EmergencyPhone = input.EmergencyPhone
	return emp, user, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, employeeID string, emp Employee) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET first_name = $2, last_name = $3, email = $4, phone = $5,
        department_id = $6, position = $7, join_date = $8, status = $9,
        salary = $10, address = $11,
        emergency_name = $12, emergency_relationship = $13, emergency_phone = $14,
        updated_at = now()
    WHERE id = $1
  `, employeeID, emp.FirstName, emp.LastName, emp.Email, emp.Phone,
		emp.DepartmentID, emp.Position, emp.JoinDate, emp.Status,
		emp.Salary, emp.Address,
		emp.EmergencyName, emp.EmergencyRelationship, emp.EmergencyPhone)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrEmailTaken
			case "23503":
				return ErrDepartmentNotFound
			}
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// DeleteEmployee removes the employee, its linked user account, and records
// the deletion, all inside one transaction. Attendance and performance
// history is removed by the FK cascade.
func (s *Store) DeleteEmployee(ctx context.Context, employeeID, actorUserID, requestID, ip string) (Employee, error) {
	emp, err := s.GetEmployee(ctx, employeeID)
	if err != nil {
		return Employee{}, err
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Employee{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = activity.RecordTx(ctx, tx, activity.Entry{
		Type:        activity.TypeEmployeeDeleted,
		ActorUserID: actorUserID,
		Subject:     emp.FirstName + " " + emp.LastName,
		Description: "employee deleted from " + emp.DepartmentName,
		RelatedTo:   &activity.RelatedRef{Kind: activity.KindEmployee, ID: emp.ID},
		RequestID:   requestID,
		IP:          ip,
	})
	if err != nil {
		return Employee{}, err
	}

	if _, err := tx.Exec(ctx, "DELETE FROM employees WHERE id = $1", emp.ID); err != nil {
		return Employee{}, err
	}
	if emp.UserID != "" {
		if _, err := tx.Exec(ctx, "DELETE FROM users WHERE id = $1", emp.UserID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				// Reviews authored for other employees still point at this
				// user; they have to be reassigned or removed first.
				return Employee{}, ErrEmployeeIsReviewer
			}
			return Employee{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Employee{}, err
	}
	return emp, nil
}
