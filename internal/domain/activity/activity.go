package activity

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

// Event kinds recorded by the mutating flows.
const (
	TypeUserRegistered     = "user.registered"
	TypeUserLogin          = "user.login"
	TypeUserLogout         = "user.logout"
	TypeUserUpdated        = "user.updated"
	TypeUserDeleted        = "user.deleted"
	TypeEmployeeCreated    = "employee.created"
	TypeEmployeeUpdated    = "employee.updated"
	TypeEmployeeDeleted    = "employee.deleted"
	TypeDepartmentCreated  = "department.created"
	TypeDepartmentUpdated  = "department.updated"
	TypeDepartmentDeleted  = "department.deleted"
	TypeTeamCreated        = "team.created"
	TypeTeamUpdated        = "team.updated"
	TypeTeamDeleted        = "team.deleted"
	TypeAttendanceCheckIn  = "attendance.check_in"
	TypeAttendanceCheckOut = "attendance.check_out"
	TypeAttendanceMarked   = "attendance.marked"
	TypeReviewCreated      = "performance.review_created"
	TypeReviewAcknowledged = "performance.review_acknowledged"
	TypeReportGenerated    = "report.generated"
)

// Related entity kinds, a closed set so consumers can switch exhaustively.
const (
	KindEmployee    = "employee"
	KindDepartment  = "department"
	KindTeam        = "team"
	KindAttendance  = "attendance"
	KindPerformance = "performance"
	KindReport      = "report"
	KindUser        = "user"
)

var ErrNotFound = errors.New("activity not found")

type RelatedRef struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type Entry struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	ActorUserID string          `json:"actorUserId,omitempty"`
	Subject     string          `json:"subject"`
	Description string          `json:"description,omitempty"`
	RelatedTo   *RelatedRef     `json:"relatedTo,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	RequestID   string          `json:"requestId,omitempty"`
	IP          string          `json:"ip,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type Filter struct {
	Type        string
	ActorUser   string
	RelatedKind string
}

// Execer is satisfied by both *pgxpool.Pool and pgx.Tx so entries can be
// appended inside multi-step transactions.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, entry Entry) error {
	return RecordTx(ctx, s.DB, entry)
}

func RecordTx(ctx context.Context, db Execer, entry Entry) error {
	var relatedKind, relatedID any
	if entry.RelatedTo != nil {
		relatedKind = entry.RelatedTo.Kind
		relatedID = entry.RelatedTo.ID
	}
	var actor any
	if entry.ActorUserID != "" {
		actor = entry.ActorUserID
	}
	var metadata []byte
	if len(entry.Metadata) > 0 {
		metadata = entry.Metadata
	}

	_, err := db.Exec(ctx, `
    INSERT INTO activities (activity_type, actor_user_id, subject, description, related_kind, related_id, metadata, request_id, ip)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
  `, entry.Type, actor, entry.Subject, entry.Description, relatedKind, relatedID, metadata, entry.RequestID, entry.IP)
	return err
}

func (s *Service) Get(ctx context.Context, id string) (Entry, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, activity_type, COALESCE(actor_user_id::text, ''), subject, COALESCE(description, ''),
           COALESCE(related_kind, ''), COALESCE(related_id::text, ''), metadata,
           COALESCE(request_id, ''), COALESCE(ip, ''), created_at
    FROM activities
    WHERE id = $1
  `, id)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return entry, err
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, error) {
	query, args := buildBaseQuery(`
    SELECT id, activity_type, COALESCE(actor_user_id::text, ''), subject, COALESCE(description, ''),
           COALESCE(related_kind, ''), COALESCE(related_id::text, ''), metadata,
           COALESCE(request_id, ''), COALESCE(ip, ''), created_at`, filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func scanEntry(row pgx.Row) (Entry, error) {
	var entry Entry
	var relatedKind, relatedID string
	err := row.Scan(
		&entry.ID, &entry.Type, &entry.ActorUserID, &entry.Subject, &entry.Description,
		&relatedKind, &relatedID, &entry.Metadata,
		&entry.RequestID, &entry.IP, &entry.CreatedAt,
	)
	if err != nil {
		return Entry{}, err
	}
	if relatedKind != "" {
		entry.RelatedTo = &RelatedRef{Kind: relatedKind, ID: relatedID}
	}
	return entry, nil
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM activities WHERE 1=1"
	args := []any{}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND activity_type = $%d", len(args)+1)
		args = append(args, filter.Type)
	}
	if filter.ActorUser != "" {
		query += fmt.Sprintf(" AND actor_user_id::text = $%d", len(args)+1)
		args = append(args, filter.ActorUser)
	}
	if filter.RelatedKind != "" {
		query += fmt.Sprintf(" AND related_kind = $%d", len(args)+1)
		args = append(args, filter.RelatedKind)
	}
	return query, args
}
