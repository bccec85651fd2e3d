package infrastructure

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/draftea/saga-orchestrator/shared/events"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	mu        sync.Mutex
	pending   []types.Message
	deleted   []string
	extended  []string
	delivered chan struct{}
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	msgs := f.pending
	f.pending = nil
	f.mu.Unlock()
	if len(msgs) == 0 {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return &sqs.ReceiveMessageOutput{Messages: msgs}, nil
}

func (f *fakeSQS) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	f.mu.Unlock()
	f.delivered <- struct{}{}
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeSQS) ChangeMessageVisibility(_ context.Context, in *sqs.ChangeMessageVisibilityInput, _ ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error) {
	f.mu.Lock()
	f.extended = append(f.extended, aws.ToString(in.ReceiptHandle))
	f.mu.Unlock()
	f.delivered <- struct{}{}
	return &sqs.ChangeMessageVisibilityOutput{}, nil
}

type handlerFunc func(ctx context.Context, event *events.Event) error

func (f handlerFunc) Handle(ctx context.Context, event *events.Event) error {
	return f(ctx, event)
}

func eventBody(t *testing.T, topic string) string {
	t.Helper()
	event := events.NewEventWithTopic("flow-1", events.Topic(topic), "STEP_RESPONSE", map[string]string{"k": "v"}).
		WithMetadata("flowId", "flow-1")
	b, err := json.Marshal(event)
	require.NoError(t, err)
	return string(b)
}

func TestDecodeMessage(t *testing.T) {
	raw := eventBody(t, "orchestrator-step-response")
	envelope, err := json.Marshal(snsEnvelope{Type: "Notification", Message: raw})
	require.NoError(t, err)

	tests := []struct {
		name    string
		body    *string
		wantErr bool
	}{
		{name: "raw delivery", body: aws.String(raw)},
		{name: "sns envelope", body: aws.String(string(envelope))},
		{name: "empty body", body: nil, wantErr: true},
		{name: "not json", body: aws.String("{nope"), wantErr: true},
		{name: "missing topic", body: aws.String(`{"id":"x"}`), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := decodeMessage(types.Message{
				MessageId:     aws.String("m-1"),
				ReceiptHandle: aws.String("rh-1"),
				Body:          tt.body,
				MessageAttributes: map[string]types.MessageAttributeValue{
					"stepName": {DataType: aws.String("String"), StringValue: aws.String("createRealm")},
					"flowId":   {DataType: aws.String("String"), StringValue: aws.String("ignored")},
				},
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, events.Topic("orchestrator-step-response"), event.Topic)
			assert.Equal(t, "m-1", event.Metadata.Value(SQSMessageIDKey))
			assert.Equal(t, "rh-1", event.Metadata.Value(SQSReceiptHandleKey))
			assert.Equal(t, "createRealm", event.Metadata.Value("stepName"))
			// body headers win over transport attributes
			assert.Equal(t, "flow-1", event.Metadata.Value("flowId"))
		})
	}
}

func TestSQSEventSubscriber_SettlesMessages(t *testing.T) {
	client := &fakeSQS{
		delivered: make(chan struct{}, 10),
		pending: []types.Message{
			{MessageId: aws.String("ok"), ReceiptHandle: aws.String("rh-ok"), Body: aws.String(eventBody(t, "good"))},
			{MessageId: aws.String("bad"), ReceiptHandle: aws.String("rh-bad"), Body: aws.String(eventBody(t, "failing"))},
			{MessageId: aws.String("panic"), ReceiptHandle: aws.String("rh-panic"), Body: aws.String(eventBody(t, "panicking"))},
			{MessageId: aws.String("junk"), ReceiptHandle: aws.String("rh-junk"), Body: aws.String("junk")},
		},
	}

	handler := handlerFunc(func(_ context.Context, event *events.Event) error {
		switch event.Topic {
		case "failing":
			return errors.New("boom")
		case "panicking":
			panic("unexpected")
		}
		return nil
	})

	subscriber := NewSQSEventSubscriber(client, "queue", handler, nil,
		WithWorkers(2), WithWaitTimeSeconds(0), WithSleepTimeAfterEmptyReceive(10*time.Millisecond))
	require.NoError(t, subscriber.Start(context.Background()))

	for i := 0; i < 4; i++ {
		select {
		case <-client.delivered:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for messages to settle")
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, subscriber.Stop(stopCtx))

	client.mu.Lock()
	defer client.mu.Unlock()
	assert.ElementsMatch(t, []string{"rh-ok", "rh-junk"}, client.deleted)
	assert.ElementsMatch(t, []string{"rh-bad", "rh-panic"}, client.extended)
}

func TestSQSEventSubscriber_StopWaitsForRunningHandler(t *testing.T) {
	client := &fakeSQS{
		delivered: make(chan struct{}, 10),
		pending: []types.Message{
			{MessageId: aws.String("slow"), ReceiptHandle: aws.String("rh-slow"), Body: aws.String(eventBody(t, "slow"))},
		},
	}

	started := make(chan struct{})
	release := make(chan struct{})
	handlerErr := make(chan error, 1)
	handler := handlerFunc(func(ctx context.Context, _ *events.Event) error {
		close(started)
		<-release
		handlerErr <- ctx.Err()
		return nil
	})

	subscriber := NewSQSEventSubscriber(client, "queue", handler, nil,
		WithWorkers(1), WithWaitTimeSeconds(0), WithSleepTimeAfterEmptyReceive(10*time.Millisecond))
	require.NoError(t, subscriber.Start(context.Background()))

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the handler to start")
	}

	stopped := make(chan error, 1)
	go func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		stopped <- subscriber.Stop(stopCtx)
	}()

	select {
	case <-stopped:
		t.Fatal("stop returned while a handler was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-stopped)
	assert.NoError(t, <-handlerErr, "handler context must survive stop")
}

func TestSQSEventSubscriber_StartWithoutHandler(t *testing.T) {
	subscriber := NewSQSEventSubscriber(&fakeSQS{}, "queue", nil, nil)
	assert.Error(t, subscriber.Start(context.Background()))
}
