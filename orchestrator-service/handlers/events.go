package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/draftea/saga-orchestrator/orchestrator-service/application"
	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
	"github.com/draftea/saga-orchestrator/shared/events"
	"github.com/draftea/saga-orchestrator/shared/infrastructure"
	"github.com/draftea/saga-orchestrator/shared/models"
	"github.com/draftea/saga-orchestrator/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrNoRoute is logged for events on a topic nobody handles
var ErrNoRoute = errors.New("no handler for topic")

const metricUnroutedMessages = "orchestrator_unrouted_messages_total"

type messageHandler func(ctx context.Context, event *events.Event) error

// MessageRouter dispatches inbound broker events by topic. Processing failures
// are logged and swallowed so the message is acknowledged.
type MessageRouter struct {
	routes map[events.Topic]messageHandler
	dedupe domain.MessageDeduplicator
	log    *zap.Logger

	registerOrchestration *application.RegisterOrchestration
	startOrchestration    *application.StartOrchestration
	processStepResponse   *application.ProcessStepResponse
}

// NewMessageRouter creates the router with one route per inbound topic
func NewMessageRouter(
	registerOrchestration *application.RegisterOrchestration,
	startOrchestration *application.StartOrchestration,
	processStepResponse *application.ProcessStepResponse,
	dedupe domain.MessageDeduplicator,
	log *zap.Logger,
) *MessageRouter {
	if log == nil {
		log = zap.NewNop()
	}
	router := &MessageRouter{
		dedupe:                dedupe,
		log:                   log,
		registerOrchestration: registerOrchestration,
		startOrchestration:    startOrchestration,
		processStepResponse:   processStepResponse,
	}
	router.routes = map[events.Topic]messageHandler{
		domain.TopicRegistration:   router.handleRegistration,
		domain.TopicExecutionStart: router.handleExecutionStart,
		domain.TopicStepResponse:   router.handleStepResponse,
	}
	return router
}

// Topics returns the topics the router consumes
func (r *MessageRouter) Topics() []events.Topic {
	return []events.Topic{domain.TopicRegistration, domain.TopicExecutionStart, domain.TopicStepResponse}
}

// Handle implements the events.EventHandler interface
func (r *MessageRouter) Handle(ctx context.Context, event *events.Event) error {
	handle, ok := r.routes[event.Topic]
	if !ok {
		r.log.Error("message discarded",
			zap.String("event_id", event.ID.String()),
			zap.Error(errors.Wrapf(ErrNoRoute, "topic %q", event.Topic)),
		)
		telemetry.RecordCounter(ctx, metricUnroutedMessages, "Inbound messages on a topic with no handler", 1,
			attribute.String("topic", event.Topic.String()))
		return nil
	}

	log := r.log.With(
		zap.String("topic", event.Topic.String()),
		zap.String("event_id", event.ID.String()),
	)

	if r.dedupe != nil {
		messageID := event.Metadata.Value(infrastructure.SQSMessageIDKey)
		first, err := r.dedupe.FirstDelivery(ctx, messageID)
		if err != nil {
			log.Warn("dedupe check failed, processing message", zap.Error(err))
		}
		if !first {
			log.Info("duplicate message skipped", zap.String("message_id", messageID))
			return nil
		}
	}

	if err := handle(ctx, event); err != nil {
		log.Error("message discarded", zap.Error(err))
	}
	return nil
}

// HandlerID returns the unique identifier for this event handler
func (r *MessageRouter) HandlerID() string {
	return "orchestrator-message-router"
}

func (r *MessageRouter) handleRegistration(ctx context.Context, event *events.Event) error {
	var registration domain.Registration
	if err := event.UnmarshalPayload(&registration); err != nil {
		return errors.Wrap(err, "malformed registration")
	}

	serviceName := event.Metadata.Value(domain.HeaderServiceName)
	result, err := r.registerOrchestration.Execute(ctx, &application.RegistrationCommand{
		Registration: registration,
		ServiceName:  serviceName,
	})
	if err != nil {
		return err
	}

	r.log.Info("registration message processed",
		zap.String("orchestration", result.OrchestrationName),
		zap.String("service", serviceName),
		zap.String("status", string(result.Status)),
	)
	return nil
}

func (r *MessageRouter) handleExecutionStart(ctx context.Context, event *events.Event) error {
	var start domain.ExecutionStart
	if err := event.UnmarshalPayload(&start); err != nil {
		return errors.Wrap(err, "malformed execution start")
	}
	if start.FlowID == "" {
		start.FlowID = event.Metadata.Value(domain.HeaderFlowID)
	}
	if start.OrchestrationName == "" {
		start.OrchestrationName = event.Metadata.Value(domain.HeaderOrchestrationName)
	}

	_, err := r.startOrchestration.Execute(ctx, &application.StartOrchestrationCommand{
		FlowID:            start.FlowID,
		OrchestrationName: start.OrchestrationName,
		Payload:           start.Payload,
	})
	return err
}

func (r *MessageRouter) handleStepResponse(ctx context.Context, event *events.Event) error {
	cmd, err := parseStepResponse(event.Metadata)
	if err != nil {
		return errors.Wrap(err, "malformed step response")
	}
	return r.processStepResponse.Execute(ctx, cmd)
}

// parseStepResponse reads a worker response from the message headers
func parseStepResponse(headers events.Metadata) (*application.ProcessStepResponseCommand, error) {
	flowID := strings.TrimSpace(headers.Value(domain.HeaderFlowID))
	if flowID == "" {
		return nil, errors.Errorf("%s header is required", domain.HeaderFlowID)
	}

	action, err := domain.ParseAction(headers.Value(domain.HeaderAction))
	if err != nil {
		return nil, err
	}

	var success bool
	switch strings.ToUpper(strings.TrimSpace(headers.Value(domain.HeaderStatus))) {
	case domain.ResponseStatusSuccess:
		success = true
	case domain.ResponseStatusFailure:
	default:
		if action != domain.ActionFailStep {
			return nil, errors.Errorf("%s header must be %s or %s", domain.HeaderStatus, domain.ResponseStatusSuccess, domain.ResponseStatusFailure)
		}
	}

	var attempt int
	if raw := strings.TrimSpace(headers.Value(domain.HeaderAttempt)); raw != "" {
		attempt, err = strconv.Atoi(raw)
		if err != nil || attempt < 0 {
			return nil, errors.Errorf("invalid %s header %q", domain.HeaderAttempt, raw)
		}
	}

	return &application.ProcessStepResponseCommand{
		FlowID: models.ID(flowID),
		Response: domain.StepResponse{
			OrchestrationName: headers.Value(domain.HeaderOrchestrationName),
			StepName:          strings.TrimSpace(headers.Value(domain.HeaderStepName)),
			Action:            action,
			Success:           success,
			Attempt:           attempt,
			WorkerService:     headers.Value(domain.HeaderServiceName),
			Error:             headers.Value(domain.HeaderError),
		},
	}, nil
}
