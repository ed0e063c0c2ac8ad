package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `
    id, name, email, role,
    COALESCE(phone, ''), COALESCE(address, ''),
    COALESCE(emergency_name, ''), COALESCE(emergency_relationship, ''), COALESCE(emergency_phone, ''),
    COALESCE(employee_id::text, ''),
    mfa_enabled, status, last_login_at, created_at, updated_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type UserFilter struct {
	Role   string
	Status string
	Search string
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Role,
		&u.Phone, &u.Address,
		&u.EmergencyName, &u.EmergencyRelationship, &u.EmergencyPhone,
		&u.EmployeeID,
		&u.MFAEnabled, &u.Status, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash, role string) (User, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO users (name, email, password_hash, role)
    VALUES ($1, $2, $3, $4)
    RETURNING `+userColumns, name, email, passwordHash, role)

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (User, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return user, err
}

func (s *Store) FindCredentialsByEmail(ctx context.Context, email string) (Credentials, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+userColumns+`, password_hash, COALESCE(mfa_secret, '')
    FROM users
    WHERE lower(email) = lower($1)
  `, email)

	var creds Credentials
	err := row.Scan(
		&creds.User.ID, &creds.User.Name, &creds.User.Email, &creds.User.Role,
		&creds.User.Phone, &creds.User.Address,
		&creds.User.EmergencyName, &creds.User.EmergencyRelationship, &creds.User.EmergencyPhone,
		&creds.User.EmployeeID,
		&creds.User.MFAEnabled, &creds.User.Status, &creds.User.LastLoginAt, &creds.User.CreatedAt, &creds.User.UpdatedAt,
		&creds.PasswordHash, &creds.MFASecret,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credentials{}, ErrUserNotFound
	}
	return creds, err
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE lower(email) = lower($1)", email).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListUsers(ctx context.Context, filter UserFilter, limit, offset int) ([]User, int, error) {
	where := " FROM users WHERE 1=1"
	args := []any{}
	if filter.Role != "" {
		where += fmt.Sprintf(" AND role = $%d", len(args)+1)
		args = append(args, filter.Role)
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+filter.Search+"%")
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + userColumns + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

func (s *Store) UpdateUser(ctx context.Context, userID string, user User) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users
    SET name = $2, role = $3, status = $4, phone = $5, address = $6,
        emergency_name = $7, emergency_relationship = $8, emergency_phone = $9,
        updated_at = now()
    WHERE id = $1
  `, userID, user.Name, user.Role, user.Status, user.Phone, user.Address,
		user.EmergencyName, user.EmergencyRelationship, user.EmergencyPhone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login_at = now() WHERE id = $1", userID)
	return err
}

func (s *Store) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1", userID, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) SetMFASecret(ctx context.Context, userID, secret string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET mfa_secret = $2, updated_at = now() WHERE id = $1", userID, secret)
	return err
}

func (s *Store) MFASecret(ctx context.Context, userID string) (string, error) {
	var secret string
	err := s.DB.QueryRow(ctx, "SELECT COALESCE(mfa_secret, '') FROM users WHERE id = $1", userID).Scan(&secret)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	return secret, err
}

func (s *Store) SetMFAEnabled(ctx context.Context, userID string, enabled bool) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET mfa_enabled = $2, updated_at = now() WHERE id = $1", userID, enabled)
	return err
}

func (s *Store) CreatePasswordReset(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO password_resets (user_id, token_hash, expires_at)
    VALUES ($1, $2, $3)
  `, userID, tokenHash, expires)
	return err
}

func (s *Store) PasswordResetUserID(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, `
    SELECT user_id::text
    FROM password_resets
    WHERE token_hash = $1 AND used_at IS NULL AND expires_at > now()
  `, tokenHash).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrResetTokenInvalid
	}
	return userID, err
}

func (s *Store) MarkPasswordResetUsed(ctx context.Context, tokenHash string) error {
	_, err := s.DB.Exec(ctx, "UPDATE password_resets SET used_at = now() WHERE token_hash = $1", tokenHash)
	return err
}
