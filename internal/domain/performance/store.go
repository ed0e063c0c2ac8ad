package performance

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

const reviewColumns = `
    r.id, r.employee_id::text, e.first_name || ' ' || e.last_name,
    r.reviewer_id::text, COALESCE(u.name, ''),
    r.period_start, r.period_end,
    r.productivity, r.quality, r.job_knowledge, r.communication, r.teamwork, r.initiative,
    r.overall_rating, COALESCE(r.feedback, ''), r.goals, r.status,
    r.acknowledged, r.acknowledged_at, COALESCE(r.comments, ''),
    r.created_at, r.updated_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func scanReview(row pgx.Row) (Review, error) {
	var rev Review
	var goalsJSON []byte
	err := row.Scan(
		&rev.ID, &rev.EmployeeID, &rev.EmployeeName,
		&rev.ReviewerID, &rev.ReviewerName,
		&rev.PeriodStart, &rev.PeriodEnd,
		&rev.Ratings.Productivity, &rev.Ratings.Quality, &rev.Ratings.JobKnowledge,
		&rev.Ratings.Communication, &rev.Ratings.Teamwork, &rev.Ratings.Initiative,
		&rev.OverallRating, &rev.Feedback, &goalsJSON, &rev.Status,
		&rev.Acknowledged, &rev.AcknowledgedAt, &rev.Comments,
		&rev.CreatedAt, &rev.UpdatedAt,
	)
	if err != nil {
		return Review{}, err
	}
	rev.Goals = []Goal{}
	if len(goalsJSON) > 0 {
		if err := json.Unmarshal(goalsJSON, &rev.Goals); err != nil {
			return Review{}, err
		}
	}
	return rev, nil
}

func (s *Store) Get(ctx context.Context, reviewID string) (Review, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+reviewColumns+`
    FROM performance_reviews r
    JOIN employees e ON r.employee_id = e.id
    LEFT JOIN users u ON r.reviewer_id = u.id
    WHERE r.id = $1
  `, reviewID)
	rev, err := scanReview(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Review{}, ErrNotFound
	}
	return rev, err
}

// EmployeeUserID returns the user account linked to the reviewed employee.
func (s *Store) EmployeeUserID(ctx context.Context, reviewID string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(e.user_id::text, '')
    FROM performance_reviews r
    JOIN employees e ON r.employee_id = e.id
    WHERE r.id = $1
  `, reviewID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return userID, err
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Review, int, error) {
	where := ` FROM performance_reviews r
    JOIN employees e ON r.employee_id = e.id
    LEFT JOIN users u ON r.reviewer_id = u.id WHERE 1=1`
	args := []any{}
	if filter.EmployeeID != "" {
		where += fmt.Sprintf(" AND r.employee_id = $%d", len(args)+1)
		args = append(args, filter.EmployeeID)
	}
	if filter.ReviewerID != "" {
		where += fmt.Sprintf(" AND r.reviewer_id = $%d", len(args)+1)
		args = append(args, filter.ReviewerID)
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND r.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if !filter.From.IsZero() {
		where += fmt.Sprintf(" AND r.period_end >= $%d", len(args)+1)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		where += fmt.Sprintf(" AND r.period_start <= $%d", len(args)+1)
		args = append(args, filter.To)
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1)"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + reviewColumns + where +
		fmt.Sprintf(" ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, total, rows.Err()
}

func (s *Store) Create(ctx context.Context, rev Review) (Review, error) {
	goalsJSON, err := json.Marshal(rev.Goals)
	if err != nil {
		return Review{}, err
	}

	row := s.DB.QueryRow(ctx, `
    INSERT INTO performance_reviews
      (employee_id, reviewer_id, period_start, period_end,
       productivity, quality, job_knowledge, communication, teamwork, initiative,
       overall_rating, feedback, goals, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
    RETURNING id, created_at, updated_at
  `, rev.EmployeeID, rev.ReviewerID, rev.PeriodStart, rev.PeriodEnd,
		rev.Ratings.Productivity, rev.Ratings.Quality, rev.Ratings.JobKnowledge,
		rev.Ratings.Communication, rev.Ratings.Teamwork, rev.Ratings.Initiative,
		rev.OverallRating, rev.Feedback, goalsJSON, rev.Status)

	created := rev
	if err := row.Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Review{}, ErrNotFound
		}
		return Review{}, err
	}
	return created, nil
}

func (s *Store) Update(ctx context.Context, reviewID string, rev Review) error {
	goalsJSON, err := json.Marshal(rev.Goals)
	if err != nil {
		return err
	}

	tag, err := s.DB.Exec(ctx, `
    UPDATE performance_reviews
    SET period_start = $2, period_end = $3,
        productivity = $4, quality = $5, job_knowledge = $6,
        communication = $7, teamwork = $8, initiative = $9,
        overall_rating = $10, feedback = $11, goals = $12, status = $13,
        updated_at = now()
    WHERE id = $1
  `, reviewID, rev.PeriodStart, rev.PeriodEnd,
		rev.Ratings.Productivity, rev.Ratings.Quality, rev.Ratings.JobKnowledge,
		rev.Ratings.Communication, rev.Ratings.Teamwork, rev.Ratings.Initiative,
		rev.OverallRating, rev.Feedback, goalsJSON, rev.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, reviewID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM performance_reviews WHERE id = $1", reviewID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Acknowledge flips a review to acknowledged exactly once.
func (s *Store) Acknowledge(ctx context.Context, reviewID, comments string, at time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE performance_reviews
    SET status = $2, acknowledged = TRUE, acknowledged_at = $3, comments = $4, updated_at = now()
    WHERE id = $1 AND acknowledged = FALSE
  `, reviewID, StatusAcknowledged, at, comments)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyAcknowledged
	}
	return nil
}

// Stats aggregates reviews whose period overlaps the window.
func (s *Store) Stats(ctx context.Context, from, to time.Time) (Stats, error) {
	stats := Stats{From: from, To: to, ByDepartment: []DepartmentAverage{}, TopPerformers: []TopPerformer{}, GoalStatuses: []GoalStatusCount{}}

	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COALESCE(AVG(productivity), 0), COALESCE(AVG(quality), 0), COALESCE(AVG(job_knowledge), 0),
           COALESCE(AVG(communication), 0), COALESCE(AVG(teamwork), 0), COALESCE(AVG(initiative), 0),
           COALESCE(AVG(overall_rating), 0)
    FROM performance_reviews
    WHERE period_end >= $1 AND period_start <= $2
  `, from, to).Scan(
		&stats.TotalReviews,
		&stats.Averages.Productivity, &stats.Averages.Quality, &stats.Averages.JobKnowledge,
		&stats.Averages.Communication, &stats.Averages.Teamwork, &stats.Averages.Initiative,
		&stats.AvgOverall,
	)
	if err != nil {
		return Stats{}, err
	}

	deptRows, err := s.DB.Query(ctx, `
    SELECT d.id::text, d.name, AVG(r.overall_rating), COUNT(1)
    FROM performance_reviews r
    JOIN employees e ON r.employee_id = e.id
    JOIN departments d ON e.department_id = d.id
    WHERE r.period_end >= $1 AND r.period_start <= $2
    GROUP BY d.id, d.name
    ORDER BY d.name
  `, from, to)
	if err != nil {
		return Stats{}, err
	}
	defer deptRows.Close()
	for deptRows.Next() {
		var da DepartmentAverage
		if err := deptRows.Scan(&da.DepartmentID, &da.DepartmentName, &da.AvgOverall, &da.ReviewCount); err != nil {
			return Stats{}, err
		}
		stats.ByDepartment = append(stats.ByDepartment, da)
	}
	if err := deptRows.Err(); err != nil {
		return Stats{}, err
	}

	topRows, err := s.DB.Query(ctx, `
    SELECT e.id::text, e.first_name || ' ' || e.last_name, e.employee_number, AVG(r.overall_rating) AS avg_overall
    FROM performance_reviews r
    JOIN employees e ON r.employee_id = e.id
    WHERE r.period_end >= $1 AND r.period_start <= $2
    GROUP BY e.id, e.first_name, e.last_name, e.employee_number
    ORDER BY avg_overall DESC
    LIMIT 5
  `, from, to)
	if err != nil {
		return Stats{}, err
	}
	defer topRows.Close()
	for topRows.Next() {
		var tp TopPerformer
		if err := topRows.Scan(&tp.EmployeeID, &tp.EmployeeName, &tp.EmployeeNumber, &tp.AvgOverall); err != nil {
			return Stats{}, err
		}
		stats.TopPerformers = append(stats.TopPerformers, tp)
	}
	if err := topRows.Err(); err != nil {
		return Stats{}, err
	}

	goalRows, err := s.DB.Query(ctx, `
    SELECT goal->>'status' AS status, COUNT(1)
    FROM performance_reviews r, jsonb_array_elements(r.goals) AS goal
    WHERE r.period_end >= $1 AND r.period_start <= $2
    GROUP BY goal->>'status'
    ORDER BY status
  `, from, to)
	if err != nil {
		return Stats{}, err
	}
	defer goalRows.Close()
	for goalRows.Next() {
		var gs GoalStatusCount
		if err := goalRows.Scan(&gs.Status, &gs.Count); err != nil {
			return Stats{}, err
		}
		stats.GoalStatuses = append(stats.GoalStatuses, gs)
	}
	return stats, goalRows.Err()
}
