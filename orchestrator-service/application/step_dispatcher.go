package application

import (
	"context"
	"strconv"
	"time"

	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
	"github.com/draftea/saga-orchestrator/shared/events"
	"github.com/draftea/saga-orchestrator/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// StepDispatcher turns committed run changes into audit events and step messages
type StepDispatcher struct {
	runRepository domain.RunRepository
	gateway       domain.MessageGateway
	audit         *AuditService
	retryBackoff  time.Duration
	log           *zap.Logger
	now           func() time.Time
	wait          func(ctx context.Context, d time.Duration) error
}

// NewStepDispatcher creates a new StepDispatcher. retryBackoff is the fixed
// delay applied before a retry is published.
func NewStepDispatcher(
	runRepository domain.RunRepository,
	gateway domain.MessageGateway,
	audit *AuditService,
	retryBackoff time.Duration,
	log *zap.Logger,
) *StepDispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &StepDispatcher{
		runRepository: runRepository,
		gateway:       gateway,
		audit:         audit,
		retryBackoff:  retryBackoff,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
		wait:          wait,
	}
}

// RetryBackoff returns the delay applied before retries
func (d *StepDispatcher) RetryBackoff() time.Duration {
	return d.retryBackoff
}

// Flush audits the pending transitions of a committed run and publishes its
// pending dispatches. A dispatch the gateway rejects is fed back to the run as
// a failed response for the same attempt, so it follows the retry path.
func (d *StepDispatcher) Flush(ctx context.Context, run *domain.OrchestrationRun) {
	transitions := run.Transitions()
	dispatches := run.Dispatches()
	run.ClearPending()

	d.audit.Record(ctx, run, transitions)
	recordTransitionMetrics(ctx, run, transitions)

	for _, dispatch := range dispatches {
		err := d.publish(ctx, dispatch)
		if err == nil {
			continue
		}

		d.log.Error("failed to dispatch step",
			zap.String("flow_id", dispatch.FlowID.String()),
			zap.String("step_name", dispatch.StepName),
			zap.String("action", string(dispatch.Action)),
			zap.Int("attempt", dispatch.Attempt),
			zap.Error(err),
		)
		telemetry.RecordCounter(ctx, metricDispatchFailures, "Step messages that could not be published", 1,
			attribute.String("orchestration", dispatch.OrchestrationName),
			attribute.String("action", string(dispatch.Action)),
		)

		d.feedback(ctx, dispatch, err)
	}
}

func (d *StepDispatcher) feedback(ctx context.Context, dispatch domain.Dispatch, cause error) {
	updated, err := d.runRepository.Update(ctx, dispatch.FlowID, func(run *domain.OrchestrationRun) error {
		return run.HandleResponse(dispatch.FailureResponse(cause), d.retryBackoff, d.now())
	})
	if err != nil {
		if errors.Is(err, domain.ErrStaleResponse) {
			d.log.Debug("dispatch failure superseded", zap.String("flow_id", dispatch.FlowID.String()), zap.Error(err))
			return
		}
		d.log.Error("failed to record dispatch failure",
			zap.String("flow_id", dispatch.FlowID.String()),
			zap.String("step_name", dispatch.StepName),
			zap.Error(err),
		)
		return
	}

	d.Flush(ctx, updated)
}

func (d *StepDispatcher) publish(ctx context.Context, dispatch domain.Dispatch) error {
	if dispatch.Delay > 0 {
		if err := d.wait(ctx, dispatch.Delay); err != nil {
			return errors.Wrap(err, "retry backoff interrupted")
		}
	}

	eventType := dispatch.ObjectType
	if eventType == "" {
		eventType = domain.EventTypeStepDispatch
	}

	event := events.NewEventWithTopic(dispatch.FlowID, events.Topic(dispatch.Topic), domain.EventTypeStepDispatch, dispatch.Payload).
		WithCorrelationID(dispatch.FlowID).
		WithMetadata(domain.HeaderFlowID, dispatch.FlowID.String()).
		WithMetadata(domain.HeaderStepName, dispatch.StepName).
		WithMetadata(domain.HeaderAction, string(dispatch.Action)).
		WithMetadata(domain.HeaderEventType, eventType).
		WithMetadata(domain.HeaderSequence, strconv.Itoa(dispatch.Sequence)).
		WithMetadata(domain.HeaderAttempt, strconv.Itoa(dispatch.Attempt)).
		WithMetadata(domain.HeaderOrchestrationName, dispatch.OrchestrationName)

	if err := d.gateway.Publish(ctx, event); err != nil {
		return errors.Wrapf(err, "failed to publish %s of step %s", dispatch.Action, dispatch.StepName)
	}

	d.log.Debug("step dispatched",
		zap.String("flow_id", dispatch.FlowID.String()),
		zap.String("step_name", dispatch.StepName),
		zap.String("topic", dispatch.Topic),
		zap.String("action", string(dispatch.Action)),
		zap.Int("attempt", dispatch.Attempt),
	)
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
