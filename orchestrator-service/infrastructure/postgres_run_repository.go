package infrastructure

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
	"github.com/draftea/saga-orchestrator/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// PostgresRunRepository implements RunRepository using PostgreSQL
type PostgresRunRepository struct {
	db *sqlx.DB
}

// NewPostgresRunRepository creates a new PostgresRunRepository
func NewPostgresRunRepository(db *sqlx.DB) *PostgresRunRepository {
	return &PostgresRunRepository{db: db}
}

// postgresRun represents a run in database
type postgresRun struct {
	FlowID            string     `db:"flow_id"`
	OrchestrationName string     `db:"orchestration_name"`
	ExecutionType     string     `db:"execution_type"`
	Status            string     `db:"status"`
	Payload           []byte     `db:"payload"`
	StartedAt         time.Time  `db:"started_at"`
	CompletedAt       *time.Time `db:"completed_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

// postgresStepRun represents a step of a run in database
type postgresStepRun struct {
	FlowID        string     `db:"flow_id"`
	StepName      string     `db:"step_name"`
	Sequence      int        `db:"sequence"`
	ObjectType    string     `db:"object_type"`
	Status        string     `db:"status"`
	WorkerService string     `db:"worker_service"`
	RetryCount    int        `db:"retry_count"`
	MaxRetries    int        `db:"max_retries"`
	Attempt       int        `db:"attempt"`
	DoTopic       string     `db:"do_topic"`
	UndoTopic     string     `db:"undo_topic"`
	StartedAt     *time.Time `db:"started_at"`
	CompletedAt   *time.Time `db:"completed_at"`
	LastRetriedAt *time.Time `db:"last_retried_at"`
	UndoneAt      *time.Time `db:"undone_at"`
	ErrorMessage  string     `db:"error_message"`
}

const runColumns = `flow_id, orchestration_name, execution_type, status, payload, started_at, completed_at, updated_at`

const stepRunColumns = `flow_id, step_name, sequence, object_type, status, worker_service, retry_count,
		max_retries, attempt, do_topic, undo_topic, started_at, completed_at, last_retried_at,
		undone_at, error_message`

// Create inserts a new run with its steps
func (r *PostgresRunRepository) Create(ctx context.Context, run *domain.OrchestrationRun) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orchestration_runs (
			flow_id, orchestration_name, execution_type, status, payload, started_at, completed_at, updated_at
		) VALUES (
			:flow_id, :orchestration_name, :execution_type, :status, :payload, :started_at, :completed_at, :updated_at
		)
		ON CONFLICT (flow_id) DO NOTHING`

	result, err := tx.NamedExecContext(ctx, query, toPostgresRun(run))
	if err != nil {
		return errors.Wrap(err, "failed to insert run")
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if inserted == 0 {
		return errors.Wrapf(domain.ErrRunAlreadyExists, "flow %s", run.FlowID)
	}

	if err := r.insertSteps(ctx, tx, run); err != nil {
		return err
	}

	return tx.Commit()
}

// FindByID finds a run with its steps
func (r *PostgresRunRepository) FindByID(ctx context.Context, flowID models.ID) (*domain.OrchestrationRun, error) {
	query := `SELECT ` + runColumns + ` FROM orchestration_runs WHERE flow_id = $1`

	var pgRun postgresRun
	err := r.db.GetContext(ctx, &pgRun, query, flowID.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find run")
	}

	runs, err := r.withSteps(ctx, r.db, []postgresRun{pgRun})
	if err != nil {
		return nil, err
	}
	return runs[0], nil
}

// Update locks the run row, applies fn and writes the run back in the same
// transaction. Nothing is written when fn fails.
func (r *PostgresRunRepository) Update(ctx context.Context, flowID models.ID, fn func(run *domain.OrchestrationRun) error) (*domain.OrchestrationRun, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	// Lock run
	var pgRun postgresRun
	err = tx.GetContext(ctx, &pgRun, `SELECT `+runColumns+` FROM orchestration_runs WHERE flow_id = $1 FOR UPDATE`, flowID.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.Wrapf(domain.ErrRunNotFound, "flow %s", flowID)
		}
		return nil, errors.Wrap(err, "failed to lock run")
	}

	runs, err := r.withSteps(ctx, tx, []postgresRun{pgRun})
	if err != nil {
		return nil, err
	}
	run := runs[0]

	if err := fn(run); err != nil {
		return nil, err
	}

	query := `
		UPDATE orchestration_runs
		SET execution_type = :execution_type, status = :status, payload = :payload,
			started_at = :started_at, completed_at = :completed_at, updated_at = :updated_at
		WHERE flow_id = :flow_id`

	if _, err := tx.NamedExecContext(ctx, query, toPostgresRun(run)); err != nil {
		return nil, errors.Wrap(err, "failed to update run")
	}

	// Steps are rewritten as a whole, a restarted run gains its steps here
	if _, err := tx.ExecContext(ctx, `DELETE FROM orchestration_step_runs WHERE flow_id = $1`, flowID.String()); err != nil {
		return nil, errors.Wrap(err, "failed to delete step runs")
	}
	if err := r.insertSteps(ctx, tx, run); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit run")
	}
	return run, nil
}

// List returns one page of runs, newest first, and the total number of matches
func (r *PostgresRunRepository) List(ctx context.Context, filter domain.RunFilter) ([]*domain.OrchestrationRun, int, error) {
	where := newWhereClause()
	if filter.OrchestrationName != "" {
		where.add("orchestration_name = ?", filter.OrchestrationName)
	}
	if filter.Status != "" {
		where.add("status = ?", string(filter.Status))
	}
	if filter.From != nil {
		where.add("started_at >= ?", *filter.From)
	}
	if filter.To != nil {
		where.add("started_at <= ?", *filter.To)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM orchestration_runs`+where.String(), where.args...); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count runs")
	}

	paging, args := where.paged("started_at DESC, flow_id", filter.Page.Normalize())

	var pgRuns []postgresRun
	if err := r.db.SelectContext(ctx, &pgRuns, `SELECT `+runColumns+` FROM orchestration_runs`+where.String()+paging, args...); err != nil {
		return nil, 0, errors.Wrap(err, "failed to list runs")
	}

	runs, err := r.withSteps(ctx, r.db, pgRuns)
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

func (r *PostgresRunRepository) insertSteps(ctx context.Context, tx *sqlx.Tx, run *domain.OrchestrationRun) error {
	query := `
		INSERT INTO orchestration_step_runs (
			flow_id, step_name, sequence, object_type, status, worker_service, retry_count,
			max_retries, attempt, do_topic, undo_topic, started_at, completed_at, last_retried_at,
			undone_at, error_message
		) VALUES (
			:flow_id, :step_name, :sequence, :object_type, :status, :worker_service, :retry_count,
			:max_retries, :attempt, :do_topic, :undo_topic, :started_at, :completed_at, :last_retried_at,
			:undone_at, :error_message
		)`

	for _, step := range run.Steps {
		if _, err := tx.NamedExecContext(ctx, query, toPostgresStepRun(run.FlowID, step)); err != nil {
			return errors.Wrapf(err, "failed to insert step run %s", step.StepName)
		}
	}
	return nil
}

// withSteps loads the steps of the runs in a single query
func (r *PostgresRunRepository) withSteps(ctx context.Context, q sqlx.QueryerContext, pgRuns []postgresRun) ([]*domain.OrchestrationRun, error) {
	if len(pgRuns) == 0 {
		return []*domain.OrchestrationRun{}, nil
	}

	ids := make([]string, len(pgRuns))
	for i, run := range pgRuns {
		ids[i] = run.FlowID
	}

	query := `SELECT ` + stepRunColumns + ` FROM orchestration_step_runs
		WHERE flow_id = ANY($1)
		ORDER BY flow_id, sequence`

	var pgSteps []postgresStepRun
	if err := sqlx.SelectContext(ctx, q, &pgSteps, query, pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "failed to find step runs")
	}

	steps := make(map[string][]*domain.StepRun, len(pgRuns))
	for _, s := range pgSteps {
		steps[s.FlowID] = append(steps[s.FlowID], &domain.StepRun{
			FlowID:        models.ID(s.FlowID),
			StepName:      s.StepName,
			Sequence:      s.Sequence,
			ObjectType:    s.ObjectType,
			Status:        domain.StepStatus(s.Status),
			WorkerService: s.WorkerService,
			RetryCount:    s.RetryCount,
			MaxRetries:    s.MaxRetries,
			Attempt:       s.Attempt,
			DoTopic:       s.DoTopic,
			UndoTopic:     s.UndoTopic,
			StartedAt:     s.StartedAt,
			CompletedAt:   s.CompletedAt,
			LastRetriedAt: s.LastRetriedAt,
			UndoneAt:      s.UndoneAt,
			ErrorMessage:  s.ErrorMessage,
		})
	}

	runs := make([]*domain.OrchestrationRun, len(pgRuns))
	for i, pgRun := range pgRuns {
		var payload json.RawMessage
		if len(pgRun.Payload) > 0 {
			payload = append(json.RawMessage{}, pgRun.Payload...)
		}
		runs[i] = &domain.OrchestrationRun{
			FlowID:            models.ID(pgRun.FlowID),
			OrchestrationName: pgRun.OrchestrationName,
			ExecutionType:     domain.ExecutionType(pgRun.ExecutionType),
			Status:            domain.RunStatus(pgRun.Status),
			Payload:           payload,
			StartedAt:         pgRun.StartedAt,
			CompletedAt:       pgRun.CompletedAt,
			UpdatedAt:         pgRun.UpdatedAt,
			Steps:             steps[pgRun.FlowID],
		}
	}
	return runs, nil
}

func toPostgresRun(run *domain.OrchestrationRun) *postgresRun {
	var payload []byte
	if len(run.Payload) > 0 {
		payload = []byte(run.Payload)
	}
	return &postgresRun{
		FlowID:            run.FlowID.String(),
		OrchestrationName: run.OrchestrationName,
		ExecutionType:     string(run.ExecutionType),
		Status:            string(run.Status),
		Payload:           payload,
		StartedAt:         run.StartedAt,
		CompletedAt:       run.CompletedAt,
		UpdatedAt:         run.UpdatedAt,
	}
}

func toPostgresStepRun(flowID models.ID, step *domain.StepRun) *postgresStepRun {
	return &postgresStepRun{
		FlowID:        flowID.String(),
		StepName:      step.StepName,
		Sequence:      step.Sequence,
		ObjectType:    step.ObjectType,
		Status:        string(step.Status),
		WorkerService: step.WorkerService,
		RetryCount:    step.RetryCount,
		MaxRetries:    step.MaxRetries,
		Attempt:       step.Attempt,
		DoTopic:       step.DoTopic,
		UndoTopic:     step.UndoTopic,
		StartedAt:     step.StartedAt,
		CompletedAt:   step.CompletedAt,
		LastRetriedAt: step.LastRetriedAt,
		UndoneAt:      step.UndoneAt,
		ErrorMessage:  step.ErrorMessage,
	}
}
