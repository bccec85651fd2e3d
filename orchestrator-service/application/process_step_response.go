package application

import (
	"context"
	"strings"
	"time"

	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
	"github.com/draftea/saga-orchestrator/shared/models"
	"github.com/draftea/saga-orchestrator/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ProcessStepResponseCommand represents a worker response for one step of a run
type ProcessStepResponseCommand struct {
	FlowID   models.ID
	Response domain.StepResponse
}

// ProcessStepResponse use case drives the run state machine with worker responses
type ProcessStepResponse struct {
	runRepository domain.RunRepository
	dispatcher    *StepDispatcher
	audit         *AuditService
	log           *zap.Logger
	now           func() time.Time
}

// NewProcessStepResponse creates a new ProcessStepResponse use case
func NewProcessStepResponse(
	runRepository domain.RunRepository,
	dispatcher *StepDispatcher,
	audit *AuditService,
	log *zap.Logger,
) *ProcessStepResponse {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProcessStepResponse{
		runRepository: runRepository,
		dispatcher:    dispatcher,
		audit:         audit,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Execute applies the response under the run lock, then audits and dispatches
// whatever the run decided. Stale responses are recorded and dropped.
func (uc *ProcessStepResponse) Execute(ctx context.Context, cmd *ProcessStepResponseCommand) error {
	if err := uc.validateCommand(cmd); err != nil {
		return errors.Wrap(err, "invalid command")
	}

	resp := cmd.Response
	log := uc.log.With(
		zap.String("flow_id", cmd.FlowID.String()),
		zap.String("step_name", resp.StepName),
		zap.String("action", string(resp.Action)),
		zap.Int("attempt", resp.Attempt),
	)

	run, err := uc.runRepository.Update(ctx, cmd.FlowID, func(run *domain.OrchestrationRun) error {
		if resp.OrchestrationName == "" {
			resp.OrchestrationName = run.OrchestrationName
		}
		return run.HandleResponse(resp, uc.dispatcher.RetryBackoff(), uc.now())
	})
	if err != nil {
		if errors.Is(err, domain.ErrStaleResponse) {
			log.Info("ignoring stale step response", zap.Error(err))
			uc.audit.StepIgnored(ctx, cmd.FlowID, resp, err.Error())
			telemetry.RecordCounter(ctx, metricStepResponsesIgnored, "Step responses dropped by fencing", 1,
				attribute.String("orchestration", resp.OrchestrationName))
			return nil
		}
		return errors.Wrap(err, "failed to apply step response")
	}

	log.Info("step response applied",
		zap.Bool("success", resp.Success),
		zap.String("run_status", string(run.Status)),
	)

	uc.dispatcher.Flush(ctx, run)
	return nil
}

func (uc *ProcessStepResponse) validateCommand(cmd *ProcessStepResponseCommand) error {
	if cmd == nil {
		return errors.New("command is required")
	}

	if cmd.FlowID.IsZero() {
		return errors.New("flow ID is required")
	}

	if strings.TrimSpace(cmd.Response.StepName) == "" {
		return errors.New("step name is required")
	}

	switch cmd.Response.Action {
	case domain.ActionDo, domain.ActionUndo, domain.ActionFailStep:
	default:
		return errors.Errorf("unknown action %q", cmd.Response.Action)
	}

	return nil
}
