package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"erm/internal/domain/activity"
	"erm/internal/domain/attendance"
	"erm/internal/domain/performance"
)

type attendanceStats interface {
	StatsWindow(ctx context.Context, from, to, now time.Time) (attendance.Stats, error)
}

type performanceStats interface {
	StatsWindow(ctx context.Context, from, to time.Time) (performance.Stats, error)
}

type activityRecorder interface {
	Record(ctx context.Context, entry activity.Entry) error
}

// Service owns report lifecycle and the per-type generators.
type Service struct {
	Store       StoreAPI
	Attendance  attendanceStats
	Performance performanceStats
	Activity    activityRecorder
	Logger      *slog.Logger
}

func NewService(store StoreAPI, att attendanceStats, perf performanceStats, act activityRecorder, logger *slog.Logger) *Service {
	return &Service{Store: store, Attendance: att, Performance: perf, Activity: act, Logger: logger}
}

func (s *Service) Get(ctx context.Context, reportID string) (Report, error) {
	return s.Store.Get(ctx, reportID)
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Report, int, error) {
	return s.Store.List(ctx, filter, limit, offset)
}

func (s *Service) Create(ctx context.Context, rep Report) (Report, error) {
	if !ValidType(rep.Type) {
		return Report{}, ErrUnknownType
	}
	if rep.Recurring && !ValidFrequency(rep.Frequency) {
		return Report{}, ErrInvalidFrequency
	}
	if !rep.Recurring {
		rep.Frequency = ""
	}
	return s.Store.Create(ctx, rep)
}

func (s *Service) Update(ctx context.Context, reportID string, rep Report) (Report, error) {
	if !ValidType(rep.Type) {
		return Report{}, ErrUnknownType
	}
	if rep.Recurring && !ValidFrequency(rep.Frequency) {
		return Report{}, ErrInvalidFrequency
	}
	if !rep.Recurring {
		rep.Frequency = ""
	}
	if err := s.Store.Update(ctx, reportID, rep); err != nil {
		return Report{}, err
	}
	return s.Store.Get(ctx, reportID)
}

func (s *Service) Delete(ctx context.Context, reportID string) error {
	return s.Store.Delete(ctx, reportID)
}

// Generate runs the generator for the report's type and stores the outcome.
// A failed run is recorded on the report rather than returned as a 5xx.
func (s *Service) Generate(ctx context.Context, reportID, actorUserID, requestID string) (Report, error) {
	rep, err := s.Store.Get(ctx, reportID)
	if err != nil {
		return Report{}, err
	}

	payload, genErr := s.buildPayload(ctx, rep)
	if genErr != nil {
		if err := s.Store.MarkFailed(ctx, reportID, genErr.Error()); err != nil {
			return Report{}, err
		}
		if s.Logger != nil {
			s.Logger.Warn("report generation failed", "reportId", reportID, "type", rep.Type, "error", genErr)
		}
		return s.Store.Get(ctx, reportID)
	}

	if err := s.Store.MarkGenerated(ctx, reportID, payload, time.Now().UTC()); err != nil {
		return Report{}, err
	}

	if s.Activity != nil {
		meta, _ := json.Marshal(map[string]string{"reportType": rep.Type, "reportName": rep.Name})
		if err := s.Activity.Record(ctx, activity.Entry{
			Type:        activity.TypeReportGenerated,
			ActorUserID: actorUserID,
			Subject:     "Report generated",
			Description: fmt.Sprintf("%s report %q generated", rep.Type, rep.Name),
			RelatedTo:   &activity.RelatedRef{Kind: activity.KindReport, ID: rep.ID},
			Metadata:    meta,
			RequestID:   requestID,
		}); err != nil && s.Logger != nil {
			s.Logger.Warn("activity record failed", "error", err)
		}
	}

	return s.Store.Get(ctx, reportID)
}

func (s *Service) buildPayload(ctx context.Context, rep Report) (any, error) {
	now := time.Now().UTC()
	from, to := ReportWindow(rep.Parameters, now)
	window := fmt.Sprintf("%s to %s", from.Format("2006-01-02"), to.Format("2006-01-02"))

	switch rep.Type {
	case TypeAttendance:
		stats, err := s.Attendance.StatsWindow(ctx, from, to, now)
		if err != nil {
			return nil, err
		}
		return AttendancePayload{Window: window, Summary: stats}, nil

	case TypePerformance:
		stats, err := s.Performance.StatsWindow(ctx, from, to)
		if err != nil {
			return nil, err
		}
		return PerformancePayload{Window: window, Summary: stats}, nil

	case TypeEmployee:
		entries, err := s.Store.Directory(ctx, rep.Parameters)
		if err != nil {
			return nil, err
		}
		payload := EmployeePayload{
			Total:        len(entries),
			ByStatus:     map[string]int{},
			ByDepartment: map[string][]DirectoryEntry{},
		}
		for _, entry := range entries {
			payload.ByStatus[entry.Status]++
			dept := entry.Department
			if dept == "" {
				dept = "unassigned"
			}
			payload.ByDepartment[dept] = append(payload.ByDepartment[dept], entry)
		}
		return payload, nil

	case TypeDepartment:
		summaries, err := s.Store.DepartmentSummaries(ctx)
		if err != nil {
			return nil, err
		}
		payload := DepartmentPayload{Departments: summaries}
		for _, sum := range summaries {
			payload.TotalBudget += sum.Budget
			payload.TotalStaff += sum.Headcount
		}
		return payload, nil

	case TypePayroll:
		inputs, err := s.Store.PayrollInputs(ctx, from, to, rep.Parameters)
		if err != nil {
			return nil, err
		}
		return BuildPayroll(window, inputs), nil

	case TypeCustom:
		counts, err := s.Store.RecordCounts(ctx)
		if err != nil {
			return nil, err
		}
		return CustomPayload{Parameters: rep.Parameters, RecordCount: counts}, nil

	default:
		return nil, ErrUnknownType
	}
}

// GenerateRecurring runs every due recurring report and reports how many
// succeeded. Used by the background scheduler.
func (s *Service) GenerateRecurring(ctx context.Context, now time.Time) (int, error) {
	due, err := s.Store.ListRecurringDue(ctx, now)
	if err != nil {
		return 0, err
	}
	generated := 0
	for _, rep := range due {
		result, err := s.Generate(ctx, rep.ID, "", "")
		if err != nil {
			if s.Logger != nil {
				s.Logger.Error("recurring report failed", "reportId", rep.ID, "error", err)
			}
			continue
		}
		if result.Status == StatusGenerated {
			generated++
		}
	}
	return generated, nil
}
