package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
	"github.com/draftea/saga-orchestrator/shared/models"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// StartOrchestrationCommand represents the command to start a run
type StartOrchestrationCommand struct {
	FlowID            string          `json:"flowId,omitempty"`
	OrchestrationName string          `json:"orchestrationName"`
	Payload           json.RawMessage `json:"payload,omitempty"`
}

// StartOrchestrationResponse represents the run after the start request
type StartOrchestrationResponse struct {
	FlowID  models.ID        `json:"flowId"`
	Status  domain.RunStatus `json:"status"`
	Started bool             `json:"started"`
}

// StartOrchestration use case creates a run and dispatches its first steps
type StartOrchestration struct {
	topologyRepository domain.TopologyRepository
	runRepository      domain.RunRepository
	dispatcher         *StepDispatcher
	log                *zap.Logger
	now                func() time.Time
}

// NewStartOrchestration creates a new StartOrchestration use case
func NewStartOrchestration(
	topologyRepository domain.TopologyRepository,
	runRepository domain.RunRepository,
	dispatcher *StepDispatcher,
	log *zap.Logger,
) *StartOrchestration {
	if log == nil {
		log = zap.NewNop()
	}
	return &StartOrchestration{
		topologyRepository: topologyRepository,
		runRepository:      runRepository,
		dispatcher:         dispatcher,
		log:                log,
		now:                func() time.Time { return time.Now().UTC() },
	}
}

// Execute starts the run. Repeated requests for a run that already left
// NOT_REGISTERED are no-ops so redelivered start messages are harmless.
func (uc *StartOrchestration) Execute(ctx context.Context, cmd *StartOrchestrationCommand) (*StartOrchestrationResponse, error) {
	if err := uc.validateCommand(cmd); err != nil {
		return nil, errors.Wrap(err, "invalid command")
	}

	flowID := models.IDOrGenerate(cmd.FlowID)
	log := uc.log.With(zap.String("flow_id", flowID.String()), zap.String("orchestration", cmd.OrchestrationName))

	// Look for an earlier start of the same flow
	existing, err := uc.runRepository.FindByID(ctx, flowID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find run")
	}

	if existing != nil && existing.Status != domain.RunStatusNotRegistered {
		log.Info("run already started, ignoring start request", zap.String("status", string(existing.Status)))
		return &StartOrchestrationResponse{FlowID: flowID, Status: existing.Status}, nil
	}

	// A parked run keeps the orchestration it was first requested for
	name := cmd.OrchestrationName
	if existing != nil {
		name = existing.OrchestrationName
	}

	template, err := uc.topologyRepository.FindByName(ctx, name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find orchestration")
	}

	var run *domain.OrchestrationRun
	if existing != nil {
		run, err = uc.runRepository.Update(ctx, flowID, func(r *domain.OrchestrationRun) error {
			return r.Restart(template, cmd.Payload, uc.now())
		})
		if errors.Is(err, domain.ErrInvalidTransition) {
			// another delivery started the run in the meantime
			log.Info("run started concurrently, ignoring start request")
			return &StartOrchestrationResponse{FlowID: flowID, Status: domain.RunStatusInProgress}, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to restart run")
		}
	} else {
		run = domain.NewRun(flowID, name, template, cmd.Payload, uc.now())
		if err := uc.runRepository.Create(ctx, run); err != nil {
			if errors.Is(err, domain.ErrRunAlreadyExists) {
				log.Info("run created concurrently, ignoring start request")
				return &StartOrchestrationResponse{FlowID: flowID, Status: run.Status}, nil
			}
			return nil, errors.Wrap(err, "failed to create run")
		}
	}

	started := run.Status != domain.RunStatusNotRegistered
	if started {
		log.Info("orchestration run started", zap.Int("steps", len(run.Steps)))
	} else {
		log.Warn("orchestration is not registered, run parked")
	}

	uc.dispatcher.Flush(ctx, run)

	return &StartOrchestrationResponse{
		FlowID:  flowID,
		Status:  run.Status,
		Started: started,
	}, nil
}

func (uc *StartOrchestration) validateCommand(cmd *StartOrchestrationCommand) error {
	if cmd == nil {
		return errors.New("command is required")
	}

	if strings.TrimSpace(cmd.OrchestrationName) == "" {
		return errors.New("orchestration name is required")
	}

	if len(cmd.Payload) > 0 && !json.Valid(cmd.Payload) {
		return errors.New("payload must be valid JSON")
	}

	return nil
}
