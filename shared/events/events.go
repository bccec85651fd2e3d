package events

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	"github.com/draftea/saga-orchestrator/shared/models"
	"github.com/pkg/errors"
)

// EnvelopeVersion is stamped on every event this service creates
const EnvelopeVersion = "1.0"

var (
	ErrInvalidTopic    = errors.New("invalid topic")
	ErrInvalidPayload  = errors.New("invalid payload")
	ErrInvalidReceiver = errors.New("receiver should be a pointer")
)

// Topic is the logical broker topic an event is published to
type Topic string

// Validate rejects the empty topic
func (t Topic) Validate() error {
	if t == "" {
		return ErrInvalidTopic
	}
	return nil
}

func (t Topic) String() string {
	return string(t)
}

// Metadata carries the message headers
type Metadata map[string]string

// Value returns the header or an empty string
func (m Metadata) Value(key string) string {
	return m[key]
}

// Set is a no-op on nil metadata
func (m Metadata) Set(key string, value string) {
	if m == nil {
		return
	}
	m[key] = value
}

func (m Metadata) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Event is the envelope of every message crossing the broker. Data is any
// JSON-marshalable value; raw JSON is passed through untouched.
type Event struct {
	ID            models.ID   `json:"id"`
	AggregateID   models.ID   `json:"aggregate_id"`
	Topic         Topic       `json:"topic"`
	EventType     string      `json:"event_type"`
	Version       string      `json:"version"`
	Data          interface{} `json:"data"`
	Metadata      Metadata    `json:"metadata"`
	Timestamp     time.Time   `json:"timestamp"`
	CorrelationID models.ID   `json:"correlation_id,omitempty"`
}

// EventHandler handles inbound events
type EventHandler interface {
	Handle(ctx context.Context, event *Event) error
}

// NewEventWithTopic creates an event addressed to topic. The aggregate is the
// flow or orchestration the event belongs to.
func NewEventWithTopic(aggregateID models.ID, topic Topic, eventType string, data interface{}) *Event {
	return &Event{
		ID:          models.GenerateUUID(),
		AggregateID: aggregateID,
		Topic:       topic,
		EventType:   eventType,
		Version:     EnvelopeVersion,
		Data:        data,
		Metadata:    Metadata{},
		Timestamp:   time.Now().UTC(),
	}
}

func (e *Event) WithCorrelationID(correlationID models.ID) *Event {
	e.CorrelationID = correlationID
	return e
}

// WithMetadata sets a header
func (e *Event) WithMetadata(key string, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = Metadata{}
	}
	e.Metadata[key] = value
	return e
}

// FromJSON decodes an envelope read from the broker
func FromJSON(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, errors.Wrap(err, "failed to decode event")
	}
	if err := event.Topic.Validate(); err != nil {
		return nil, err
	}
	if event.Metadata == nil {
		event.Metadata = Metadata{}
	}
	return &event, nil
}

// MarshalPayload returns Data as JSON
func (e *Event) MarshalPayload() (json.RawMessage, error) {
	switch data := e.Data.(type) {
	case nil:
		return json.RawMessage("null"), nil
	case json.RawMessage:
		return data, nil
	case []byte:
		return data, nil
	default:
		return json.Marshal(data)
	}
}

// UnmarshalPayload decodes Data into v, which must be a pointer
func (e *Event) UnmarshalPayload(v interface{}) error {
	if reflect.ValueOf(v).Kind() != reflect.Ptr {
		return ErrInvalidReceiver
	}

	raw, err := e.MarshalPayload()
	if err != nil {
		return errors.Wrap(err, "failed to encode payload")
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrap(ErrInvalidPayload, err.Error())
	}
	return nil
}
