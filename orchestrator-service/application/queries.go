package application

import (
	"context"
	"strings"

	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
	"github.com/draftea/saga-orchestrator/shared/models"
	"github.com/pkg/errors"
)

// OrchestrationDetail is a topology with the workers registered per step
type OrchestrationDetail struct {
	Template *domain.OrchestrationTemplate
	Workers  map[string][]*domain.WorkerRegistration
}

// Covered reports whether the step has at least one worker
func (d *OrchestrationDetail) Covered(stepName string) bool {
	return len(d.Workers[stepName]) > 0
}

// TemplatePage is one page of templates
type TemplatePage struct {
	Items []*domain.OrchestrationTemplate
	Total int
	Page  models.Page
}

// RunPage is one page of runs
type RunPage struct {
	Items []*domain.OrchestrationRun
	Total int
	Page  models.Page
}

// Queries serves the read side of the HTTP API
type Queries struct {
	topologyRepository     domain.TopologyRepository
	runRepository          domain.RunRepository
	registrationRepository domain.RegistrationAuditRepository
}

// NewQueries creates the read side use cases
func NewQueries(
	topologyRepository domain.TopologyRepository,
	runRepository domain.RunRepository,
	registrationRepository domain.RegistrationAuditRepository,
) *Queries {
	return &Queries{
		topologyRepository:     topologyRepository,
		runRepository:          runRepository,
		registrationRepository: registrationRepository,
	}
}

// ListOrchestrations returns one page of templates
func (q *Queries) ListOrchestrations(ctx context.Context, filter domain.TemplateFilter) (*TemplatePage, error) {
	if err := validateRange(filter.From != nil && filter.To != nil && filter.To.Before(*filter.From)); err != nil {
		return nil, err
	}
	if filter.Status != "" {
		switch filter.Status {
		case domain.RegistrationStatusPending, domain.RegistrationStatusSuccess, domain.RegistrationStatusFailed:
		default:
			return nil, errors.Wrapf(domain.ErrInvalidQuery, "unknown status %q", filter.Status)
		}
	}
	if filter.ExecutionType != "" && !filter.ExecutionType.IsValid() {
		return nil, errors.Wrapf(domain.ErrInvalidQuery, "unknown execution type %q", filter.ExecutionType)
	}
	filter.Page = filter.Page.Normalize()

	templates, total, err := q.topologyRepository.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orchestrations")
	}

	return &TemplatePage{Items: templates, Total: total, Page: filter.Page}, nil
}

// GetOrchestration returns the topology and its workers
func (q *Queries) GetOrchestration(ctx context.Context, name string) (*OrchestrationDetail, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.Wrap(domain.ErrInvalidQuery, "orchestration name is required")
	}

	template, err := q.topologyRepository.FindByName(ctx, name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find orchestration")
	}
	if template == nil {
		return nil, errors.Wrapf(domain.ErrOrchestrationNotFound, "orchestration %s", name)
	}

	workers, err := q.topologyRepository.FindWorkers(ctx, name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find workers")
	}

	detail := &OrchestrationDetail{
		Template: template,
		Workers:  make(map[string][]*domain.WorkerRegistration, len(template.Steps)),
	}
	for _, w := range workers {
		detail.Workers[w.StepName] = append(detail.Workers[w.StepName], w)
	}

	return detail, nil
}

// ListRegistrationHistory returns the registration attempts of an orchestration, newest first
func (q *Queries) ListRegistrationHistory(ctx context.Context, name string, page models.Page) ([]*domain.RegistrationAudit, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.Wrap(domain.ErrInvalidQuery, "orchestration name is required")
	}

	history, err := q.registrationRepository.FindByOrchestration(ctx, name, page.Normalize())
	if err != nil {
		return nil, errors.Wrap(err, "failed to find registration history")
	}
	return history, nil
}

// ListExecutions returns one page of runs
func (q *Queries) ListExecutions(ctx context.Context, filter domain.RunFilter) (*RunPage, error) {
	if err := validateRange(filter.From != nil && filter.To != nil && filter.To.Before(*filter.From)); err != nil {
		return nil, err
	}
	filter.Page = filter.Page.Normalize()

	runs, total, err := q.runRepository.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list executions")
	}

	return &RunPage{Items: runs, Total: total, Page: filter.Page}, nil
}

// GetExecution returns a run with its steps
func (q *Queries) GetExecution(ctx context.Context, flowID models.ID) (*domain.OrchestrationRun, error) {
	if flowID.IsZero() {
		return nil, errors.Wrap(domain.ErrInvalidQuery, "flow ID is required")
	}

	run, err := q.runRepository.FindByID(ctx, flowID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find run")
	}
	if run == nil {
		return nil, errors.Wrapf(domain.ErrRunNotFound, "flow %s", flowID)
	}
	return run, nil
}

func validateRange(inverted bool) error {
	if inverted {
		return errors.Wrap(domain.ErrInvalidQuery, "to must not be before from")
	}
	return nil
}
