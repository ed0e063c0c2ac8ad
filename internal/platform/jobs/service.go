package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const JobRecurringReports = "recurring_reports"

type Service struct {
	DB    *pgxpool.Pool
	queue chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool) *Service {
	return &Service{
		DB:    db,
		queue: make(chan job, 128),
	}
}

// Start spins up the worker and, when interval is positive, the recurring
// report scheduler. Both stop when ctx is cancelled.
func (s *Service) Start(ctx context.Context, interval time.Duration, generateRecurring func(context.Context, time.Time) (int, error)) {
	go s.worker(ctx)
	if interval > 0 && generateRecurring != nil {
		go s.scheduleRecurringReports(ctx, interval, generateRecurring)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1, $2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	result, err := j.Run(ctx)
	status := "completed"
	errText := ""
	if err != nil {
		status = "failed"
		errText = err.Error()
	}
	resultJSON, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		slog.Warn("job result marshal failed", "err", marshalErr)
		resultJSON = []byte("{}")
	}
	if runID != "" {
		var errVal any
		if errText != "" {
			errVal = errText
		}
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, result = $2, error = $3, finished_at = now()
      WHERE id = $4
    `, status, resultJSON, errVal, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return result, err
}

func (s *Service) scheduleRecurringReports(ctx context.Context, interval time.Duration, generate func(context.Context, time.Time) (int, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobRecurringReports, func(jobCtx context.Context) (any, error) {
				n, err := generate(jobCtx, time.Now().UTC())
				return map[string]int{"generated": n}, err
			})
		}
	}
}
