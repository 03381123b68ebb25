package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hourbook/billing/internal/core/billing"
	"github.com/hourbook/billing/internal/core/domain"
	"github.com/hourbook/billing/internal/core/ports"
)

type ProjectService struct {
	projects ports.ProjectRepository
	logs     ports.TimeLogRepository
	logger   zerolog.Logger
	now      func() time.Time
}

func NewProjectService(projects ports.ProjectRepository, logs ports.TimeLogRepository, logger zerolog.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		logs:     logs,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProjectService) CreateProject(ctx context.Context, in ports.CreateProjectInput) (*domain.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	client := strings.TrimSpace(in.Client)
	if client == "" {
		client = domain.ClientFromProjectName(name)
	}
	if client == "" {
		return nil, domain.NewValidationError("client", "is required")
	}

	rateType := in.RateType
	if rateType == "" {
		rateType = domain.RateHourly
	}
	if !rateType.Valid() {
		return nil, domain.NewValidationError("rate_type", "must be hourly or fixed")
	}
	if in.Rate < 0 {
		return nil, domain.NewValidationError("rate", "must not be negative")
	}

	fields, err := in.CustomFields.Normalize()
	if err != nil {
		return nil, err
	}

	existing, err := s.projects.FindByName(ctx, name)
	if err != nil && !errors.Is(err, domain.ErrProjectNotFound) {
		return nil, domain.Persistence("find project", err)
	}
	if existing != nil {
		return nil, domain.NewValidationError("name", fmt.Sprintf("project %q already exists", name))
	}

	now := s.now()
	p := &domain.Project{
		ID:           uuid.NewString(),
		Client:       client,
		Name:         name,
		Rate:         in.Rate,
		RateType:     rateType,
		CustomFields: fields,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, domain.Persistence("create project", err)
	}

	s.logger.Info().Str("project_id", p.ID).Str("project", name).Str("rate_type", string(rateType)).Msg("project created")
	return p, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch) (*ports.ProjectUpdateResult, error) {
	current, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Persistence("find project", err)
	}
	return s.update(ctx, current, patch)
}

func (s *ProjectService) UpdateProjectByName(ctx context.Context, name string, patch domain.ProjectPatch) (*ports.ProjectUpdateResult, error) {
	current, err := s.projects.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, domain.Persistence("find project", err)
	}
	return s.update(ctx, current, patch)
}

// update moves the logs of a renamed project before writing the project, so
// the project keeps its old name until every step before it succeeded and a
// retry of the same patch resumes the cascade. A switch to fixed-rate billing
// stamps the logs with the sentinel rate after the project write.
func (s *ProjectService) update(ctx context.Context, current *domain.Project, patch domain.ProjectPatch) (*ports.ProjectUpdateResult, error) {
	if err := s.validatePatch(ctx, current, &patch); err != nil {
		return nil, err
	}

	result := &ports.ProjectUpdateResult{}
	name := current.Name

	if patch.Name != nil && *patch.Name != current.Name {
		renamed, err := s.logs.UpdateByProject(ctx, current.Name, domain.TimeLogPatch{Project: patch.Name})
		if err != nil {
			return nil, domain.Persistence("rename project logs", err)
		}
		result.LogsRenamed = renamed
		name = *patch.Name
	}

	if err := s.projects.Update(ctx, current.ID, patch); err != nil {
		return nil, domain.Persistence("update project", err)
	}
	if name != current.Name {
		s.logger.Info().Str("from", current.Name).Str("to", name).Int64("logs", result.LogsRenamed).Msg("project renamed")
	}

	if patch.RateType != nil && *patch.RateType == domain.RateFixed {
		cascaded, err := s.CascadeFixedRate(ctx, name)
		if err != nil {
			return nil, err
		}
		result.LogsRateCascaded = cascaded
	}

	updated, err := s.projects.FindByID(ctx, current.ID)
	if err != nil {
		return nil, domain.Persistence("find project", err)
	}
	result.Project = updated
	return result, nil
}

func (s *ProjectService) validatePatch(ctx context.Context, current *domain.Project, patch *domain.ProjectPatch) error {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return domain.NewValidationError("name", "must not be empty")
		}
		patch.Name = &name
		if name != current.Name {
			other, err := s.projects.FindByName(ctx, name)
			if err != nil && !errors.Is(err, domain.ErrProjectNotFound) {
				return domain.Persistence("find project", err)
			}
			if other != nil {
				return domain.NewValidationError("name", fmt.Sprintf("project %q already exists", name))
			}
		}
	}
	if patch.Client != nil {
		client := strings.TrimSpace(*patch.Client)
		if client == "" {
			return domain.NewValidationError("client", "must not be empty")
		}
		patch.Client = &client
	}
	if patch.RateType != nil && !patch.RateType.Valid() {
		return domain.NewValidationError("rate_type", "must be hourly or fixed")
	}
	if patch.Rate != nil && *patch.Rate < 0 {
		return domain.NewValidationError("rate", "must not be negative")
	}
	fields, err := patch.SetFields.Normalize()
	if err != nil {
		return err
	}
	patch.SetFields = fields
	for _, f := range patch.UnsetFields {
		if strings.TrimSpace(f) == "" {
			return domain.NewValidationError("unset_fields", "field name must not be empty")
		}
	}

	if patch.Name == nil && patch.Client == nil && patch.Rate == nil && patch.RateType == nil &&
		len(patch.SetFields) == 0 && len(patch.UnsetFields) == 0 {
		return domain.NewValidationError("", "nothing to update")
	}
	return nil
}

// CascadeFixedRate stamps every log of project with the fixed-rate sentinel.
// Running it twice leaves the logs unchanged.
func (s *ProjectService) CascadeFixedRate(ctx context.Context, project string) (int64, error) {
	project = strings.TrimSpace(project)
	if project == "" {
		return 0, domain.NewValidationError("project", "is required")
	}
	n, err := s.logs.UpdateByProject(ctx, project, domain.FixedRatePatch())
	if err != nil {
		return 0, domain.Persistence("cascade fixed rate", err)
	}
	s.logger.Info().Str("project", project).Int64("logs", n).Msg("fixed rate cascaded")
	return n, nil
}

// ListProjects returns every project with its logged hours and earnings.
// Earnings of a fixed-rate project are its flat fee.
func (s *ProjectService) ListProjects(ctx context.Context) ([]domain.ProjectWithTotals, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, domain.Persistence("list projects", err)
	}
	logs, err := s.logs.Find(ctx, ports.TimeLogFilter{})
	if err != nil {
		return nil, domain.Persistence("find time logs", err)
	}
	hours := billing.TotalHoursByProject(logs)

	out := make([]domain.ProjectWithTotals, 0, len(projects))
	for _, p := range projects {
		h := hours[p.Name]
		earnings := billing.Amount(h, p.Rate)
		if p.RateType == domain.RateFixed {
			earnings = billing.RoundCents(p.Rate)
		}
		out = append(out, domain.ProjectWithTotals{
			Project:       *p,
			TotalHours:    h,
			TotalEarnings: earnings,
		})
	}
	return out, nil
}
