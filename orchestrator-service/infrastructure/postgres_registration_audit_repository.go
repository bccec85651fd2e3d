package infrastructure

import (
	"context"
	"encoding/json"
	"time"

	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
	"github.com/draftea/saga-orchestrator/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// PostgresRegistrationAuditRepository stores registration history in PostgreSQL
type PostgresRegistrationAuditRepository struct {
	db *sqlx.DB
}

// NewPostgresRegistrationAuditRepository creates a new PostgresRegistrationAuditRepository
func NewPostgresRegistrationAuditRepository(db *sqlx.DB) *PostgresRegistrationAuditRepository {
	return &PostgresRegistrationAuditRepository{db: db}
}

// postgresRegistrationAudit represents a registration attempt in database
type postgresRegistrationAudit struct {
	ID                string    `db:"id"`
	OrchestrationName string    `db:"orchestration_name"`
	Role              string    `db:"role"`
	ServiceName       string    `db:"service_name"`
	Status            string    `db:"status"`
	SubmittedSteps    []byte    `db:"submitted_steps"`
	FailedSteps       []byte    `db:"failed_steps"`
	Reason            string    `db:"reason"`
	CreatedAt         time.Time `db:"created_at"`
}

// Save appends a registration attempt
func (r *PostgresRegistrationAuditRepository) Save(ctx context.Context, audit *domain.RegistrationAudit) error {
	submitted, err := marshalNames(audit.SubmittedSteps)
	if err != nil {
		return errors.Wrap(err, "failed to marshal submitted steps")
	}
	failed, err := marshalNames(audit.FailedSteps)
	if err != nil {
		return errors.Wrap(err, "failed to marshal failed steps")
	}

	query := `
		INSERT INTO registration_audits (
			id, orchestration_name, role, service_name, status,
			submitted_steps, failed_steps, reason, created_at
		) VALUES (
			:id, :orchestration_name, :role, :service_name, :status,
			:submitted_steps, :failed_steps, :reason, :created_at
		)`

	_, err = r.db.NamedExecContext(ctx, query, &postgresRegistrationAudit{
		ID:                audit.ID.String(),
		OrchestrationName: audit.OrchestrationName,
		Role:              string(audit.Role),
		ServiceName:       audit.ServiceName,
		Status:            string(audit.Status),
		SubmittedSteps:    submitted,
		FailedSteps:       failed,
		Reason:            audit.Reason,
		CreatedAt:         audit.CreatedAt,
	})
	if err != nil {
		return errors.Wrap(err, "failed to insert registration audit")
	}
	return nil
}

// FindByOrchestration returns one page of registration attempts, newest first
func (r *PostgresRegistrationAuditRepository) FindByOrchestration(ctx context.Context, name string, page models.Page) ([]*domain.RegistrationAudit, error) {
	where := newWhereClause()
	where.add("orchestration_name = ?", name)
	paging, args := where.paged("created_at DESC, seq DESC", page.Normalize())

	query := `
		SELECT id, orchestration_name, role, service_name, status,
			   submitted_steps, failed_steps, reason, created_at
		FROM registration_audits` + where.String() + paging

	var rows []postgresRegistrationAudit
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to find registration audits")
	}

	audits := make([]*domain.RegistrationAudit, len(rows))
	for i, row := range rows {
		audit := &domain.RegistrationAudit{
			ID:                models.ID(row.ID),
			OrchestrationName: row.OrchestrationName,
			Role:              domain.RegistrationRole(row.Role),
			ServiceName:       row.ServiceName,
			Status:            domain.RegistrationStatus(row.Status),
			Reason:            row.Reason,
			CreatedAt:         row.CreatedAt,
		}
		if err := json.Unmarshal(row.SubmittedSteps, &audit.SubmittedSteps); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal submitted steps")
		}
		if err := json.Unmarshal(row.FailedSteps, &audit.FailedSteps); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal failed steps")
		}
		audits[i] = audit
	}
	return audits, nil
}

func marshalNames(names []string) ([]byte, error) {
	if names == nil {
		names = []string{}
	}
	return json.Marshal(names)
}
