package application

import (
	"context"
	"time"

	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
	"github.com/draftea/saga-orchestrator/shared/models"
	"github.com/draftea/saga-orchestrator/shared/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AuditService writes lifecycle audit events. Writes are best-effort: a failed
// write is logged and counted but never reported to the caller.
type AuditService struct {
	repository domain.AuditRepository
	log        *zap.Logger
	now        func() time.Time
}

// NewAuditService creates a new AuditService
func NewAuditService(repository domain.AuditRepository, log *zap.Logger) *AuditService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditService{
		repository: repository,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Record writes one audit event per transition of the run
func (s *AuditService) Record(ctx context.Context, run *domain.OrchestrationRun, transitions []domain.Transition) {
	for _, t := range transitions {
		switch t.Type {
		case domain.AuditOrchestrationStarted:
			s.OrchestrationStarted(ctx, run, t)
		case domain.AuditOrchestrationNotRegistered:
			s.OrchestrationNotRegistered(ctx, run, t)
		case domain.AuditOrchestrationCompleted:
			s.OrchestrationCompleted(ctx, run, t)
		case domain.AuditOrchestrationFailed:
			s.OrchestrationFailed(ctx, run, t)
		case domain.AuditStepStarted:
			s.StepStarted(ctx, run, t)
		case domain.AuditStepSuccess:
			s.StepSucceeded(ctx, run, t)
		case domain.AuditStepFailed:
			s.StepFailed(ctx, run, t)
		case domain.AuditRetryTriggered:
			s.RetryTriggered(ctx, run, t)
		case domain.AuditRollbackTriggered:
			s.RollbackTriggered(ctx, run, t)
		case domain.AuditRollbackStarted:
			s.RollbackStarted(ctx, run, t)
		case domain.AuditRollbackCompleted:
			s.RollbackCompleted(ctx, run, t)
		case domain.AuditUndoStarted:
			s.UndoStarted(ctx, run, t)
		case domain.AuditUndoCompleted:
			s.UndoCompleted(ctx, run, t)
		case domain.AuditUndoFailed:
			s.UndoFailed(ctx, run, t)
		default:
			s.log.Warn("unknown audit event type", zap.String("event_type", string(t.Type)))
		}
	}
}

func (s *AuditService) OrchestrationStarted(ctx context.Context, run *domain.OrchestrationRun, t domain.Transition) {
	s.save(ctx, s.orchestrationEvent(run, t, domain.RunStatusInProgress))
}

func (s *AuditService) OrchestrationNotRegistered(ctx context.Context, run *domain.OrchestrationRun, t domain.Transition) {
	s.save(ctx, s.orchestrationEvent(run, t, domain.RunStatusNotRegistered))
}

func (s *AuditService) OrchestrationCompleted(ctx context.Context, run *domain.OrchestrationRun, t domain.Transition) {
	s.save(ctx, s.orchestrationEvent(run, t, domain.RunStatusCompleted))
}

func (s *AuditService) OrchestrationFailed(ctx context.Context, run *domain.OrchestrationRun, t domain.Transition) {
	s.save(ctx, s.orchestrationEvent(run, t, domain.RunStatusFailed))
}

func (s *AuditService) StepStarted(ctx context.Context, run *domain.OrchestrationRun, t domain.Transition) {
	s.save(ctx, s.stepEvent(run, t, domain.ActionDo, domain.StepStatusInProgress))
}

func (s *AuditService) StepSucceeded(ctx context.Context, run *domain.OrchestrationRun, t domain.Transition) {
	s.save(ctx, s.stepEvent(run, t, domain.ActionDo, domain.StepStatusDoSuccess))
}

// StepFailed keeps the status of the transition, FAILED for vetoed and late
// failures and RETRY_EXHAUSTED once retries ran out
func (s *AuditService) StepFailed(ctx context.Context, run *domain.OrchestrationRun, t domain.Transition) {
	status := domain.StepStatus(t.Status)
	if status == "" {
		status = domain.StepStatusFailed
	}
	s.save(ctx, s.stepEvent(run, t, domain.ActionDo, status))
}

func (s *AuditService) RetryTriggered(ctx context.Context, run *domain.OrchestrationRun, t domain.Transition) {
	op := t.Operation
	if op == "" {
		op = domain.ActionDo
	}
	status := domain.StepStatusInProgress
	if op == domain.ActionUndo {
		status = domain.StepStatusUndoing
	}
	s.save(ctx, s.stepEvent(run, t, op, status))
}

func (s *AuditService) RollbackTriggered(ctx context.Context, run *domain.OrchestrationRun, t domain.Transition) {
	event := s.orchestrationEvent(run, t, domain.RunStatusFailed)
	event.StepName = t.StepName
	event.OperationType = domain.ActionUndo
	s.save(ctx, event)
}

func (s *AuditService) RollbackStarted(ctx context.Context, run *domain.OrchestrationRun, t domain.Transition) {
	event := s.orchestrationEvent(run, t, domain.RunStatusUndoing)
	event.OperationType = domain.ActionUndo
	s.save(ctx, event)
}

// RollbackCompleted is also written when there was nothing to compensate, in
// which case the run stays FAILED
func (s *AuditService) RollbackCompleted(ctx context.Context, run *domain.OrchestrationRun, t domain.Transition) {
	status := domain.RunStatus(t.Status)
	if status == "" {
		status = domain.RunStatusUndone
	}
	event := s.orchestrationEvent(run, t, status)
	event.OperationType = domain.ActionUndo
	s.save(ctx, event)
}

func (s *AuditService) UndoStarted(ctx context.Context, run *domain.OrchestrationRun, t domain.Transition) {
	s.save(ctx, s.stepEvent(run, t, domain.ActionUndo, domain.StepStatusUndoing))
}

func (s *AuditService) UndoCompleted(ctx context.Context, run *domain.OrchestrationRun, t domain.Transition) {
	s.save(ctx, s.stepEvent(run, t, domain.ActionUndo, domain.StepStatusUndoSuccess))
}

func (s *AuditService) UndoFailed(ctx context.Context, run *domain.OrchestrationRun, t domain.Transition) {
	s.save(ctx, s.stepEvent(run, t, domain.ActionUndo, domain.StepStatusUndoFail))
}

// StepIgnored records a response dropped because it did not match the step's
// current state or attempt
func (s *AuditService) StepIgnored(ctx context.Context, flowID models.ID, resp domain.StepResponse, reason string) {
	op := resp.Action
	if op == domain.ActionFailStep {
		op = domain.ActionDo
	}
	s.save(ctx, &domain.AuditEvent{
		ID:                models.GenerateUUID(),
		FlowID:            flowID,
		OrchestrationName: resp.OrchestrationName,
		EntityType:        domain.EntityStep,
		StepName:          resp.StepName,
		EventType:         domain.AuditStepResponseIgnored,
		Status:            responseStatus(resp),
		Timestamp:         s.now(),
		Reason:            reason,
		Details: map[string]interface{}{
			"action":        string(resp.Action),
			"attempt":       resp.Attempt,
			"workerService": resp.WorkerService,
		},
		OperationType: op,
	})
}

func (s *AuditService) orchestrationEvent(run *domain.OrchestrationRun, t domain.Transition, status domain.RunStatus) *domain.AuditEvent {
	return &domain.AuditEvent{
		ID:                models.GenerateUUID(),
		FlowID:            run.FlowID,
		OrchestrationName: run.OrchestrationName,
		EntityType:        domain.EntityOrchestration,
		EventType:         t.Type,
		Status:            string(status),
		Timestamp:         s.timestamp(t),
		Reason:            t.Reason,
		Details:           t.Details,
		OperationType:     domain.ActionDo,
		DurationMs:        t.Duration.Milliseconds(),
	}
}

func (s *AuditService) stepEvent(run *domain.OrchestrationRun, t domain.Transition, op domain.Action, status domain.StepStatus) *domain.AuditEvent {
	return &domain.AuditEvent{
		ID:                models.GenerateUUID(),
		FlowID:            run.FlowID,
		OrchestrationName: run.OrchestrationName,
		EntityType:        domain.EntityStep,
		StepName:          t.StepName,
		EventType:         t.Type,
		Status:            string(status),
		Timestamp:         s.timestamp(t),
		Reason:            t.Reason,
		Details:           t.Details,
		OperationType:     op,
		DurationMs:        t.Duration.Milliseconds(),
		RetryCount:        t.RetryCount,
	}
}

func (s *AuditService) timestamp(t domain.Transition) time.Time {
	if t.At.IsZero() {
		return s.now()
	}
	return t.At
}

func (s *AuditService) save(ctx context.Context, event *domain.AuditEvent) {
	if err := s.repository.Save(ctx, event); err != nil {
		s.log.Error("failed to write audit event",
			zap.String("flow_id", event.FlowID.String()),
			zap.String("event_type", string(event.EventType)),
			zap.String("step_name", event.StepName),
			zap.Error(err),
		)
		telemetry.RecordCounter(ctx, metricAuditWriteFailures, "Audit events that could not be written", 1,
			attribute.String("event_type", string(event.EventType)),
		)
	}
}

func responseStatus(resp domain.StepResponse) string {
	if resp.Success {
		return domain.ResponseStatusSuccess
	}
	return domain.ResponseStatusFailure
}
