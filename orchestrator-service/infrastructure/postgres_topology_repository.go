package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
	"github.com/draftea/saga-orchestrator/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// PostgresTopologyRepository implements TopologyRepository using PostgreSQL
type PostgresTopologyRepository struct {
	db *sqlx.DB
	// ext is the transaction when the repository is bound to one
	ext  sqlx.ExtContext
	inTx bool
}

// NewPostgresTopologyRepository creates a new PostgresTopologyRepository
func NewPostgresTopologyRepository(db *sqlx.DB) *PostgresTopologyRepository {
	return &PostgresTopologyRepository{db: db, ext: db}
}

// postgresTemplate represents an orchestration template in database
type postgresTemplate struct {
	Name             string    `db:"name"`
	ExecutionType    string    `db:"execution_type"`
	InitiatorService string    `db:"initiator_service"`
	Status           string    `db:"status"`
	FailureReason    string    `db:"failure_reason"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// postgresStepTemplate represents a step template in database
type postgresStepTemplate struct {
	OrchestrationName string    `db:"orchestration_name"`
	Sequence          int       `db:"sequence"`
	StepName          string    `db:"step_name"`
	ObjectType        string    `db:"object_type"`
	DoTopic           string    `db:"do_topic"`
	UndoTopic         string    `db:"undo_topic"`
	TopicName         string    `db:"topic_name"`
	MaxRetries        int       `db:"max_retries"`
	CreatedAt         time.Time `db:"created_at"`
}

// postgresWorker represents a worker registration in database
type postgresWorker struct {
	OrchestrationName string    `db:"orchestration_name"`
	StepName          string    `db:"step_name"`
	ServiceName       string    `db:"service_name"`
	TopicName         string    `db:"topic_name"`
	CreatedAt         time.Time `db:"created_at"`
}

const templateColumns = `name, execution_type, initiator_service, status, failure_reason, created_at, updated_at`

const stepColumns = `orchestration_name, sequence, step_name, object_type, do_topic, undo_topic,
		topic_name, max_retries, created_at`

// RunInTx runs fn with a repository bound to a single transaction. Nested
// calls reuse the outer transaction.
func (r *PostgresTopologyRepository) RunInTx(ctx context.Context, fn func(repo domain.TopologyRepository) error) error {
	if r.inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := fn(&PostgresTopologyRepository{db: r.db, ext: tx, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// FindByName finds a template with its steps. Inside a transaction the
// template row is locked so registrations of one orchestration serialize.
func (r *PostgresTopologyRepository) FindByName(ctx context.Context, name string) (*domain.OrchestrationTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM orchestration_templates WHERE name = $1`
	if r.inTx {
		query += ` FOR UPDATE`
	}

	var pgTemplate postgresTemplate
	err := sqlx.GetContext(ctx, r.ext, &pgTemplate, query, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find orchestration template")
	}

	templates, err := r.withSteps(ctx, []postgresTemplate{pgTemplate})
	if err != nil {
		return nil, err
	}
	return templates[0], nil
}

// FindByStatuses finds templates in any of the statuses
func (r *PostgresTopologyRepository) FindByStatuses(ctx context.Context, statuses ...domain.RegistrationStatus) ([]*domain.OrchestrationTemplate, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	query := `SELECT ` + templateColumns + ` FROM orchestration_templates WHERE status = ANY($1) ORDER BY name`

	var pgTemplates []postgresTemplate
	if err := sqlx.SelectContext(ctx, r.ext, &pgTemplates, query, pq.Array(values)); err != nil {
		return nil, errors.Wrap(err, "failed to find orchestration templates by status")
	}

	return r.withSteps(ctx, pgTemplates)
}

// List returns one page of templates and the total number of matches
func (r *PostgresTopologyRepository) List(ctx context.Context, filter domain.TemplateFilter) ([]*domain.OrchestrationTemplate, int, error) {
	where := newWhereClause()
	if filter.Name != "" {
		where.add("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Status != "" {
		where.add("status = ?", string(filter.Status))
	}
	if filter.ExecutionType != "" {
		where.add("execution_type = ?", string(filter.ExecutionType))
	}
	if filter.From != nil {
		where.add("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		where.add("created_at <= ?", *filter.To)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM orchestration_templates` + where.String()
	if err := sqlx.GetContext(ctx, r.ext, &total, countQuery, where.args...); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count orchestration templates")
	}

	paging, args := where.paged("created_at DESC, name", filter.Page.Normalize())
	query := `SELECT ` + templateColumns + ` FROM orchestration_templates` + where.String() + paging

	var pgTemplates []postgresTemplate
	if err := sqlx.SelectContext(ctx, r.ext, &pgTemplates, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "failed to list orchestration templates")
	}

	templates, err := r.withSteps(ctx, pgTemplates)
	if err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

// Save inserts or redefines a template. Steps are written by ReplaceSteps.
func (r *PostgresTopologyRepository) Save(ctx context.Context, template *domain.OrchestrationTemplate) error {
	query := `
		INSERT INTO orchestration_templates (
			name, execution_type, initiator_service, status, failure_reason, created_at, updated_at
		) VALUES (
			:name, :execution_type, :initiator_service, :status, :failure_reason, :created_at, :updated_at
		)
		ON CONFLICT (name) DO UPDATE SET
			execution_type = EXCLUDED.execution_type,
			initiator_service = EXCLUDED.initiator_service,
			status = EXCLUDED.status,
			failure_reason = EXCLUDED.failure_reason,
			updated_at = EXCLUDED.updated_at`

	if _, err := sqlx.NamedExecContext(ctx, r.ext, query, toPostgresTemplate(template)); err != nil {
		return errors.Wrap(err, "failed to save orchestration template")
	}
	return nil
}

// UpdateStatus writes the registration status and failure reason
func (r *PostgresTopologyRepository) UpdateStatus(ctx context.Context, template *domain.OrchestrationTemplate) error {
	query := `
		UPDATE orchestration_templates
		SET status = :status, failure_reason = :failure_reason, updated_at = :updated_at
		WHERE name = :name`

	if _, err := sqlx.NamedExecContext(ctx, r.ext, query, toPostgresTemplate(template)); err != nil {
		return errors.Wrap(err, "failed to update orchestration status")
	}
	return nil
}

// ReplaceSteps replaces the step set of a template and drops worker
// registrations of steps that no longer exist
func (r *PostgresTopologyRepository) ReplaceSteps(ctx context.Context, name string, steps []*domain.StepTemplate) error {
	if _, err := r.ext.ExecContext(ctx, `DELETE FROM orchestration_step_templates WHERE orchestration_name = $1`, name); err != nil {
		return errors.Wrap(err, "failed to delete step templates")
	}

	query := `
		INSERT INTO orchestration_step_templates (
			orchestration_name, sequence, step_name, object_type, do_topic, undo_topic,
			topic_name, max_retries, created_at
		) VALUES (
			:orchestration_name, :sequence, :step_name, :object_type, :do_topic, :undo_topic,
			:topic_name, :max_retries, :created_at
		)`

	names := make([]string, len(steps))
	for i, step := range steps {
		names[i] = step.StepName
		if _, err := sqlx.NamedExecContext(ctx, r.ext, query, toPostgresStep(step)); err != nil {
			return errors.Wrapf(err, "failed to insert step template %s", step.StepName)
		}
	}

	if _, err := r.ext.ExecContext(ctx,
		`DELETE FROM worker_registrations WHERE orchestration_name = $1 AND NOT (step_name = ANY($2))`,
		name, pq.Array(names)); err != nil {
		return errors.Wrap(err, "failed to delete stale worker registrations")
	}

	return nil
}

// FindWorkers returns every worker registration of the orchestration
func (r *PostgresTopologyRepository) FindWorkers(ctx context.Context, name string) ([]*domain.WorkerRegistration, error) {
	query := `
		SELECT orchestration_name, step_name, service_name, topic_name, created_at
		FROM worker_registrations
		WHERE orchestration_name = $1
		ORDER BY step_name, service_name`

	var pgWorkers []postgresWorker
	if err := sqlx.SelectContext(ctx, r.ext, &pgWorkers, query, name); err != nil {
		return nil, errors.Wrap(err, "failed to find worker registrations")
	}

	workers := make([]*domain.WorkerRegistration, len(pgWorkers))
	for i, w := range pgWorkers {
		workers[i] = &domain.WorkerRegistration{
			OrchestrationName: w.OrchestrationName,
			StepName:          w.StepName,
			ServiceName:       w.ServiceName,
			TopicName:         w.TopicName,
			CreatedAt:         w.CreatedAt,
		}
	}
	return workers, nil
}

// DeleteWorkerRegistrations removes the registrations of one service for the given steps
func (r *PostgresTopologyRepository) DeleteWorkerRegistrations(ctx context.Context, name, serviceName string, stepNames []string) error {
	if len(stepNames) == 0 {
		return nil
	}

	query := `
		DELETE FROM worker_registrations
		WHERE orchestration_name = $1 AND service_name = $2 AND step_name = ANY($3)`

	if _, err := r.ext.ExecContext(ctx, query, name, serviceName, pq.Array(stepNames)); err != nil {
		return errors.Wrap(err, "failed to delete worker registrations")
	}
	return nil
}

// SaveWorkerRegistration inserts a worker registration
func (r *PostgresTopologyRepository) SaveWorkerRegistration(ctx context.Context, registration *domain.WorkerRegistration) error {
	query := `
		INSERT INTO worker_registrations (
			orchestration_name, step_name, service_name, topic_name, created_at
		) VALUES (
			:orchestration_name, :step_name, :service_name, :topic_name, :created_at
		)
		ON CONFLICT (orchestration_name, step_name, service_name) DO NOTHING`

	pgWorker := &postgresWorker{
		OrchestrationName: registration.OrchestrationName,
		StepName:          registration.StepName,
		ServiceName:       registration.ServiceName,
		TopicName:         registration.TopicName,
		CreatedAt:         registration.CreatedAt,
	}
	if _, err := sqlx.NamedExecContext(ctx, r.ext, query, pgWorker); err != nil {
		return errors.Wrap(err, "failed to save worker registration")
	}
	return nil
}

// withSteps loads the steps of the templates in a single query
func (r *PostgresTopologyRepository) withSteps(ctx context.Context, pgTemplates []postgresTemplate) ([]*domain.OrchestrationTemplate, error) {
	if len(pgTemplates) == 0 {
		return []*domain.OrchestrationTemplate{}, nil
	}

	names := make([]string, len(pgTemplates))
	for i, t := range pgTemplates {
		names[i] = t.Name
	}

	query := `SELECT ` + stepColumns + ` FROM orchestration_step_templates
		WHERE orchestration_name = ANY($1)
		ORDER BY orchestration_name, sequence`

	var pgSteps []postgresStepTemplate
	if err := sqlx.SelectContext(ctx, r.ext, &pgSteps, query, pq.Array(names)); err != nil {
		return nil, errors.Wrap(err, "failed to find step templates")
	}

	steps := make(map[string][]*domain.StepTemplate, len(pgTemplates))
	for _, s := range pgSteps {
		steps[s.OrchestrationName] = append(steps[s.OrchestrationName], &domain.StepTemplate{
			OrchestrationName: s.OrchestrationName,
			Sequence:          s.Sequence,
			StepName:          s.StepName,
			ObjectType:        s.ObjectType,
			DoTopic:           s.DoTopic,
			UndoTopic:         s.UndoTopic,
			TopicName:         s.TopicName,
			MaxRetries:        s.MaxRetries,
			CreatedAt:         s.CreatedAt,
		})
	}

	templates := make([]*domain.OrchestrationTemplate, len(pgTemplates))
	for i, t := range pgTemplates {
		templates[i] = &domain.OrchestrationTemplate{
			Name:             t.Name,
			ExecutionType:    domain.ExecutionType(t.ExecutionType),
			InitiatorService: t.InitiatorService,
			Status:           domain.RegistrationStatus(t.Status),
			FailureReason:    t.FailureReason,
			Timestamps:       models.Timestamps{CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt},
			Steps:            steps[t.Name],
		}
	}
	return templates, nil
}

func toPostgresTemplate(template *domain.OrchestrationTemplate) *postgresTemplate {
	return &postgresTemplate{
		Name:             template.Name,
		ExecutionType:    string(template.ExecutionType),
		InitiatorService: template.InitiatorService,
		Status:           string(template.Status),
		FailureReason:    template.FailureReason,
		CreatedAt:        template.Timestamps.CreatedAt,
		UpdatedAt:        template.Timestamps.UpdatedAt,
	}
}

func toPostgresStep(step *domain.StepTemplate) *postgresStepTemplate {
	return &postgresStepTemplate{
		OrchestrationName: step.OrchestrationName,
		Sequence:          step.Sequence,
		StepName:          step.StepName,
		ObjectType:        step.ObjectType,
		DoTopic:           step.DoTopic,
		UndoTopic:         step.UndoTopic,
		TopicName:         step.TopicName,
		MaxRetries:        step.MaxRetries,
		CreatedAt:         step.CreatedAt,
	}
}
