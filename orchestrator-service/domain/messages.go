package domain

import (
	"context"
	"encoding/json"

	"github.com/draftea/saga-orchestrator/shared/events"
)

// Message headers exchanged with workers
const (
	HeaderFlowID            = "flowId"
	HeaderStepName          = "stepName"
	HeaderAction            = "action"
	HeaderEventType         = "eventType"
	HeaderSequence          = "seq"
	HeaderAttempt           = "attempt"
	HeaderOrchestrationName = "orchestrationName"
	HeaderServiceName       = "serviceName"
	HeaderStatus            = "status"
	HeaderError             = "error"
)

// Values of the status header on step responses
const (
	ResponseStatusSuccess = "SUCCESS"
	ResponseStatusFailure = "FAILURE"
)

// Fixed topics of the orchestrator
const (
	TopicRegistration       events.Topic = "orchestrator-registration"
	TopicExecutionStart     events.Topic = "orchestrator-execution-start"
	TopicStepResponse       events.Topic = "orchestrator-step-response"
	TopicRegistrationStatus events.Topic = "orchestrator-registration-status"
)

// Event types of outbound messages
const (
	EventTypeStepDispatch       = "ORCHESTRATION_STEP"
	EventTypeRegistrationStatus = "REGISTRATION_STATUS"
)

// MessageGateway is the broker as seen by the engine. Events carry their topic.
type MessageGateway interface {
	TopicExists(ctx context.Context, name string) (bool, error)
	// CreateTopic is idempotent
	CreateTopic(ctx context.Context, name string) error
	Publish(ctx context.Context, evts ...*events.Event) error
}

// MessageDeduplicator detects redelivered broker messages
type MessageDeduplicator interface {
	// FirstDelivery reports whether the message id was not seen before
	FirstDelivery(ctx context.Context, messageID string) (bool, error)
}

// ExecutionStart is the body of an execution start message
type ExecutionStart struct {
	FlowID            string          `json:"flowId,omitempty"`
	OrchestrationName string          `json:"orchestrationName"`
	Payload           json.RawMessage `json:"payload,omitempty"`
}
