package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hourbook/billing/internal/core/billing"
	"github.com/hourbook/billing/internal/core/domain"
	"github.com/hourbook/billing/internal/core/ports"
)

const (
	defaultRecentLogs = 10
	maxRecentLogs     = 100
	// maxBoundAttempts bounds the re-read loop of an interval edit that keeps
	// racing other writers.
	maxBoundAttempts = 3
)

type TimeLogService struct {
	logs     ports.TimeLogRepository
	projects ports.ProjectRepository
	logger   zerolog.Logger
	now      func() time.Time
}

func NewTimeLogService(logs ports.TimeLogRepository, projects ports.ProjectRepository, logger zerolog.Logger) *TimeLogService {
	return &TimeLogService{
		logs:     logs,
		projects: projects,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateTimeLog records a new interval of work. Client, rate and rate type
// fall back to the project record; a fixed-rate project always forces the
// sentinel rate. Hours are derived from the interval.
func (s *TimeLogService) CreateTimeLog(ctx context.Context, in ports.CreateTimeLogInput) (*domain.TimeLog, error) {
	project := strings.TrimSpace(in.Project)
	if project == "" {
		return nil, domain.NewValidationError("project", "is required")
	}
	if err := domain.ValidateInterval(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	proj, err := s.projects.FindByName(ctx, project)
	if err != nil && !errors.Is(err, domain.ErrProjectNotFound) {
		return nil, domain.Persistence("find project", err)
	}

	client := strings.TrimSpace(in.Client)
	if client == "" && proj != nil {
		client = proj.Client
	}
	if client == "" {
		client = domain.ClientFromProjectName(project)
	}
	if client == "" {
		return nil, domain.NewValidationError("client", "is required when the project is unknown")
	}

	rate, rateType, err := resolveRate(in, proj)
	if err != nil {
		return nil, err
	}

	now := s.now()
	log := &domain.TimeLog{
		ID:          uuid.NewString(),
		Project:     project,
		Client:      client,
		StartTime:   in.StartTime.UTC(),
		EndTime:     in.EndTime.UTC(),
		Hours:       domain.HoursBetween(in.StartTime, in.EndTime),
		Rate:        rate,
		RateType:    rateType,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.logs.Create(ctx, log); err != nil {
		s.logger.Error().Err(err).Str("project", project).Msg("failed to create time log")
		return nil, domain.Persistence("create time log", err)
	}

	s.logger.Info().
		Str("time_log_id", log.ID).
		Str("project", project).
		Float64("hours", log.Hours).
		Msg("time log created")
	return log, nil
}

func resolveRate(in ports.CreateTimeLogInput, proj *domain.Project) (float64, domain.RateType, error) {
	if proj != nil && proj.RateType == domain.RateFixed {
		return domain.FixedRateSentinel, domain.RateFixed, nil
	}

	rateType := in.RateType
	if rateType == "" && proj != nil {
		rateType = proj.RateType
	}
	if rateType == "" {
		rateType = domain.RateHourly
	}
	if !rateType.Valid() {
		return 0, "", domain.NewValidationError("rate_type", "must be hourly or fixed")
	}
	if rateType == domain.RateFixed {
		return domain.FixedRateSentinel, domain.RateFixed, nil
	}

	switch {
	case in.Rate != nil:
		if *in.Rate < 0 {
			return 0, "", domain.NewValidationError("rate", "must not be negative")
		}
		return *in.Rate, rateType, nil
	case proj != nil:
		return proj.Rate, rateType, nil
	default:
		return 0, "", domain.NewValidationError("rate", "is required when the project is unknown")
	}
}

func (s *TimeLogService) GetTimeLog(ctx context.Context, id string) (*domain.TimeLog, error) {
	log, err := s.logs.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("find time log", err)
	}
	return log, nil
}

// UpdateTimeLog applies a field-level edit. When either bound changes, hours
// are recomputed from the resulting interval and written together with both
// bounds, conditional on the interval that was read.
func (s *TimeLogService) UpdateTimeLog(ctx context.Context, id string, patch domain.TimeLogPatch) (*domain.TimeLog, error) {
	patch.Hours = nil
	if patch.Empty() {
		return nil, domain.NewValidationError("", "nothing to update")
	}
	if patch.Project != nil {
		p := strings.TrimSpace(*patch.Project)
		if p == "" {
			return nil, domain.NewValidationError("project", "must not be empty")
		}
		patch.Project = &p
	}
	if patch.Client != nil {
		c := strings.TrimSpace(*patch.Client)
		if c == "" {
			return nil, domain.NewValidationError("client", "must not be empty")
		}
		patch.Client = &c
	}

	for attempt := 0; attempt < maxBoundAttempts; attempt++ {
		existing, err := s.logs.FindByID(ctx, id)
		if err != nil {
			return nil, domain.Persistence("find time log", err)
		}

		write := patch
		if err := normalizeRatePatch(&write, existing); err != nil {
			return nil, err
		}

		if patch.StartTime == nil && patch.EndTime == nil {
			if err := s.logs.Update(ctx, id, write); err != nil {
				return nil, domain.Persistence("update time log", err)
			}
			return s.updated(ctx, id)
		}

		start, end := existing.StartTime, existing.EndTime
		if patch.StartTime != nil {
			start = patch.StartTime.UTC()
		}
		if patch.EndTime != nil {
			end = patch.EndTime.UTC()
		}
		if err := domain.ValidateInterval(start, end); err != nil {
			return nil, err
		}
		hours := domain.HoursBetween(start, end)
		write.StartTime, write.EndTime, write.Hours = &start, &end, &hours

		ok, err := s.logs.UpdateIfBounds(ctx, id, existing.StartTime, existing.EndTime, write)
		if err != nil {
			return nil, domain.Persistence("update time log", err)
		}
		if ok {
			return s.updated(ctx, id)
		}
		s.logger.Debug().Str("time_log_id", id).Int("attempt", attempt+1).Msg("interval moved during edit, retrying")
	}
	return nil, domain.ErrConflict
}

func (s *TimeLogService) updated(ctx context.Context, id string) (*domain.TimeLog, error) {
	updated, err := s.logs.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("find time log", err)
	}
	s.logger.Info().Str("time_log_id", id).Msg("time log updated")
	return updated, nil
}

// normalizeRatePatch keeps rate and rate type consistent: fixed-rate logs
// carry only the sentinel rate, and a log leaving fixed-rate billing needs a
// real rate.
func normalizeRatePatch(patch *domain.TimeLogPatch, existing *domain.TimeLog) error {
	if patch.RateType != nil {
		if !patch.RateType.Valid() {
			return domain.NewValidationError("rate_type", "must be hourly or fixed")
		}
		if *patch.RateType == domain.RateFixed {
			sentinel := domain.FixedRateSentinel
			patch.Rate = &sentinel
			return nil
		}
		if patch.Rate == nil && existing.HasSentinelRate() {
			return domain.NewValidationError("rate", "is required when switching to hourly")
		}
	}
	if patch.Rate == nil {
		return nil
	}
	if *patch.Rate < 0 {
		return domain.NewValidationError("rate", "must not be negative")
	}
	if patch.RateType == nil && (existing.RateType == domain.RateFixed || existing.HasSentinelRate()) {
		return domain.NewValidationError("rate", "cannot be set on a fixed-rate log without rate_type hourly")
	}
	return nil
}

// DeleteTimeLog removes an unbilled log. Billed logs are referenced by an
// invoice and cannot be deleted.
func (s *TimeLogService) DeleteTimeLog(ctx context.Context, id string) error {
	existing, err := s.logs.FindByID(ctx, id)
	if err != nil {
		return domain.Persistence("find time log", err)
	}
	if existing.Invoiced {
		return domain.ErrAlreadyInvoiced
	}
	if err := s.logs.Delete(ctx, id); err != nil {
		return domain.Persistence("delete time log", err)
	}
	s.logger.Info().Str("time_log_id", id).Msg("time log deleted")
	return nil
}

// UnbilledLogsForProject returns the project's unbilled logs, oldest first.
func (s *TimeLogService) UnbilledLogsForProject(ctx context.Context, project string) ([]*domain.TimeLog, error) {
	if strings.TrimSpace(project) == "" {
		return nil, domain.NewValidationError("project", "is required")
	}
	invoiced := false
	logs, err := s.logs.Find(ctx, ports.TimeLogFilter{
		Project:  project,
		Invoiced: &invoiced,
		SortBy:   ports.SortByStartTime,
	})
	if err != nil {
		return nil, domain.Persistence("find unbilled logs", err)
	}
	return logs, nil
}

// ProjectLogs returns every log of the project, newest first.
func (s *TimeLogService) ProjectLogs(ctx context.Context, project string) ([]*domain.TimeLog, error) {
	if strings.TrimSpace(project) == "" {
		return nil, domain.NewValidationError("project", "is required")
	}
	logs, err := s.logs.Find(ctx, ports.TimeLogFilter{
		Project:  project,
		SortBy:   ports.SortByStartTime,
		SortDesc: true,
	})
	if err != nil {
		return nil, domain.Persistence("find project logs", err)
	}
	return logs, nil
}

// RecentLogs returns the most recently finished logs.
func (s *TimeLogService) RecentLogs(ctx context.Context, limit int) ([]*domain.TimeLog, error) {
	if limit <= 0 {
		limit = defaultRecentLogs
	}
	if limit > maxRecentLogs {
		limit = maxRecentLogs
	}
	logs, err := s.logs.Find(ctx, ports.TimeLogFilter{
		SortBy:   ports.SortByEndTime,
		SortDesc: true,
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, domain.Persistence("find recent logs", err)
	}
	return logs, nil
}

func (s *TimeLogService) ProjectStats(ctx context.Context) ([]billing.ProjectStat, error) {
	logs, err := s.logs.Find(ctx, ports.TimeLogFilter{})
	if err != nil {
		return nil, domain.Persistence("find time logs", err)
	}
	return billing.ProjectStats(logs), nil
}
