package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepPayload struct {
	StepName string `json:"stepName"`
	Attempt  int    `json:"attempt"`
}

func TestTopic_Validate(t *testing.T) {
	assert.ErrorIs(t, Topic("").Validate(), ErrInvalidTopic)
	assert.NoError(t, Topic("orchestrator-step-response").Validate())
}

func TestMetadata(t *testing.T) {
	var empty Metadata
	empty.Set("a", "b")
	assert.Nil(t, empty)
	assert.Equal(t, "", empty.Value("a"))

	headers := Metadata{}
	headers.Set("flowId", "f-1")
	assert.True(t, headers.Has("flowId"))
	assert.False(t, headers.Has("attempt"))
	assert.Equal(t, "f-1", headers.Value("flowId"))
}

func TestNewEventWithTopic(t *testing.T) {
	event := NewEventWithTopic("flow-1", "tenantCreation.createRealm.do", "ORCHESTRATION_STEP", nil).
		WithMetadata("flowId", "flow-1").
		WithCorrelationID("flow-1")

	assert.False(t, event.ID.IsZero())
	assert.Equal(t, EnvelopeVersion, event.Version)
	assert.Equal(t, "flow-1", event.Metadata.Value("flowId"))
	assert.Equal(t, "flow-1", event.CorrelationID.String())

	var bare Event
	bare.WithMetadata("k", "v")
	assert.Equal(t, "v", bare.Metadata.Value("k"))
}

func TestMarshalPayload(t *testing.T) {
	tests := []struct {
		name     string
		data     interface{}
		expected string
	}{
		{name: "nil", data: nil, expected: `null`},
		{name: "raw json", data: json.RawMessage(`{"tenant":"acme"}`), expected: `{"tenant":"acme"}`},
		{name: "bytes", data: []byte(`[1,2]`), expected: `[1,2]`},
		{name: "struct", data: stepPayload{StepName: "createRealm", Attempt: 2}, expected: `{"stepName":"createRealm","attempt":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := (&Event{Data: tt.data}).MarshalPayload()

			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(raw))
		})
	}
}

func TestFromJSON(t *testing.T) {
	decoded, err := FromJSON([]byte(`{"id":"e-1","topic":"t","data":{"stepName":"x","attempt":3}}`))
	require.NoError(t, err)
	assert.NotNil(t, decoded.Metadata)

	var payload stepPayload
	require.NoError(t, decoded.UnmarshalPayload(&payload))
	assert.Equal(t, stepPayload{StepName: "x", Attempt: 3}, payload)

	assert.ErrorIs(t, decoded.UnmarshalPayload(payload), ErrInvalidReceiver)

	bad := &Event{Data: []byte(`"text"`)}
	assert.ErrorIs(t, bad.UnmarshalPayload(&payload), ErrInvalidPayload)

	_, err = FromJSON([]byte(`{"id":"e-1"}`))
	assert.ErrorIs(t, err, ErrInvalidTopic)

	_, err = FromJSON([]byte(`{`))
	assert.Error(t, err)
}
