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

// PostgresAuditRepository implements AuditRepository using an append-only PostgreSQL table
type PostgresAuditRepository struct {
	db *sqlx.DB
}

// NewPostgresAuditRepository creates a new PostgresAuditRepository
func NewPostgresAuditRepository(db *sqlx.DB) *PostgresAuditRepository {
	return &PostgresAuditRepository{db: db}
}

// postgresAuditEvent represents an audit event in database
type postgresAuditEvent struct {
	ID                string    `db:"id"`
	FlowID            string    `db:"flow_id"`
	OrchestrationName string    `db:"orchestration_name"`
	EntityType        string    `db:"entity_type"`
	StepName          string    `db:"step_name"`
	EventType         string    `db:"event_type"`
	Status            string    `db:"status"`
	Timestamp         time.Time `db:"timestamp"`
	Reason            string    `db:"reason"`
	Details           []byte    `db:"details"`
	OperationType     string    `db:"operation_type"`
	DurationMs        int64     `db:"duration_ms"`
	RetryCount        int       `db:"retry_count"`
}

// Save appends an audit event
func (r *PostgresAuditRepository) Save(ctx context.Context, event *domain.AuditEvent) error {
	pgEvent, err := toPostgresAuditEvent(event)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO audit_events (
			id, flow_id, orchestration_name, entity_type, step_name, event_type, status,
			timestamp, reason, details, operation_type, duration_ms, retry_count
		) VALUES (
			:id, :flow_id, :orchestration_name, :entity_type, :step_name, :event_type, :status,
			:timestamp, :reason, :details, :operation_type, :duration_ms, :retry_count
		)`

	if _, err := r.db.NamedExecContext(ctx, query, pgEvent); err != nil {
		return errors.Wrap(err, "failed to insert audit event")
	}
	return nil
}

// FindByFlowID returns the audit events of a run in insertion order within equal timestamps
func (r *PostgresAuditRepository) FindByFlowID(ctx context.Context, flowID models.ID, filter domain.TimelineFilter) ([]*domain.AuditEvent, error) {
	where := newWhereClause()
	where.add("flow_id = ?", flowID.String())
	if filter.EventType != "" {
		where.add("event_type = ?", string(filter.EventType))
	}
	if filter.Status != "" {
		where.add("status = ?", filter.Status)
	}
	if filter.From != nil {
		where.add("timestamp >= ?", *filter.From)
	}
	if filter.To != nil {
		where.add("timestamp <= ?", *filter.To)
	}

	query := `
		SELECT id, flow_id, orchestration_name, entity_type, step_name, event_type, status,
			   timestamp, reason, details, operation_type, duration_ms, retry_count
		FROM audit_events` + where.String() + `
		ORDER BY timestamp ASC, seq ASC`

	var pgEvents []postgresAuditEvent
	if err := r.db.SelectContext(ctx, &pgEvents, query, where.args...); err != nil {
		return nil, errors.Wrap(err, "failed to find audit events")
	}

	auditEvents := make([]*domain.AuditEvent, len(pgEvents))
	for i := range pgEvents {
		event, err := toDomainAuditEvent(&pgEvents[i])
		if err != nil {
			return nil, err
		}
		auditEvents[i] = event
	}
	return auditEvents, nil
}

func toPostgresAuditEvent(event *domain.AuditEvent) (*postgresAuditEvent, error) {
	var details []byte
	if len(event.Details) > 0 {
		var err error
		details, err = json.Marshal(event.Details)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal audit details")
		}
	}

	id := event.ID
	if id.IsZero() {
		id = models.GenerateUUID()
	}

	return &postgresAuditEvent{
		ID:                id.String(),
		FlowID:            event.FlowID.String(),
		OrchestrationName: event.OrchestrationName,
		EntityType:        string(event.EntityType),
		StepName:          event.StepName,
		EventType:         string(event.EventType),
		Status:            event.Status,
		Timestamp:         event.Timestamp,
		Reason:            event.Reason,
		Details:           details,
		OperationType:     string(event.OperationType),
		DurationMs:        event.DurationMs,
		RetryCount:        event.RetryCount,
	}, nil
}

func toDomainAuditEvent(pgEvent *postgresAuditEvent) (*domain.AuditEvent, error) {
	var details map[string]interface{}
	if len(pgEvent.Details) > 0 {
		if err := json.Unmarshal(pgEvent.Details, &details); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal audit details")
		}
	}

	return &domain.AuditEvent{
		ID:                models.ID(pgEvent.ID),
		FlowID:            models.ID(pgEvent.FlowID),
		OrchestrationName: pgEvent.OrchestrationName,
		EntityType:        domain.EntityType(pgEvent.EntityType),
		StepName:          pgEvent.StepName,
		EventType:         domain.AuditEventType(pgEvent.EventType),
		Status:            pgEvent.Status,
		Timestamp:         pgEvent.Timestamp,
		Reason:            pgEvent.Reason,
		Details:           details,
		OperationType:     domain.Action(pgEvent.OperationType),
		DurationMs:        pgEvent.DurationMs,
		RetryCount:        pgEvent.RetryCount,
	}, nil
}
