package infrastructure

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/draftea/saga-orchestrator/shared/events"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	SQSMessageIDKey     = "sqs_message_id"
	SQSReceiptHandleKey = "sqs_receipt_handle"
)

// SQSAPI is the subset of the SQS client used by the subscriber
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	ChangeMessageVisibility(ctx context.Context, params *sqs.ChangeMessageVisibilityInput, optFns ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error)
}

type sqsMessage struct {
	Message types.Message
	Event   *events.Event
	Err     error
}

// snsEnvelope is the body SQS receives from an SNS subscription without raw delivery
type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// SQSEventSubscriber polls an SQS queue and hands decoded events to a handler
type SQSEventSubscriber struct {
	mux     sync.Mutex
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	running atomic.Bool
	options *sqsSubscriberOptions

	inboundMessages  chan *sqsMessage
	outboundMessages chan *sqsMessage

	client   SQSAPI
	queueURL string
	handler  events.EventHandler
	log      *zap.Logger
}

type sqsSubscriberOptions struct {
	workers                        int32
	readers                        int32
	cleaners                       int32
	maxNumberOfMessages            int32
	waitTimeSeconds                int32
	visibilityTimeout              int32
	sleepTimeAfterEmptyReceive     time.Duration
	sleepTimeAfterError            time.Duration
	ack                            bool
	extendVisibilityTimeoutOnError bool
	receiveCountRange              int32
	visibilityTimeoutOffset        int32
	maxVisibilityTimeout           int32
}

type SQSSubscriberOption func(*sqsSubscriberOptions)

func WithWorkers(workers int32) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		o.workers = workers
	}
}

func WithReaders(readers int32) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		o.readers = readers
	}
}

func WithVisibilityTimeout(timeout int32) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		o.visibilityTimeout = timeout
	}
}

func WithWaitTimeSeconds(seconds int32) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		o.waitTimeSeconds = seconds
	}
}

func WithSleepTimeAfterEmptyReceive(d time.Duration) SQSSubscriberOption {
	return func(o *sqsSubscriberOptions) {
		o.sleepTimeAfterEmptyReceive = d
	}
}

// NewSQSEventSubscriber creates a new SQS event subscriber
func NewSQSEventSubscriber(
	client SQSAPI,
	queueURL string,
	handler events.EventHandler,
	log *zap.Logger,
	opts ...SQSSubscriberOption,
) *SQSEventSubscriber {
	options := &sqsSubscriberOptions{
		workers:                        30,
		readers:                        1,
		cleaners:                       2,
		maxNumberOfMessages:            5,
		waitTimeSeconds:                15,
		visibilityTimeout:              30,
		sleepTimeAfterEmptyReceive:     time.Second,
		sleepTimeAfterError:            20 * time.Second,
		ack:                            true,
		extendVisibilityTimeoutOnError: true,
		receiveCountRange:              3,
		visibilityTimeoutOffset:        30,
		maxVisibilityTimeout:           900,
	}

	for _, opt := range opts {
		opt(options)
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &SQSEventSubscriber{
		client:   client,
		queueURL: queueURL,
		handler:  handler,
		options:  options,
		log:      log.With(zap.String("queue_url", queueURL)),
	}
}

// Start launches the reader, worker and cleaner goroutines
func (s *SQSEventSubscriber) Start(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if s.running.Load() {
		return nil
	}

	if s.handler == nil {
		return errors.New("no handler configured")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.inboundMessages = make(chan *sqsMessage, 10)
	s.outboundMessages = make(chan *sqsMessage, 10)

	s.spawn(int(s.options.workers), func() { s.startWorker(ctx) })
	s.spawn(int(s.options.readers), func() { s.startReader(ctx) })
	s.spawn(int(s.options.cleaners), func() { s.startCleaner(ctx) })

	s.running.Store(true)
	s.log.Info("sqs subscriber started", zap.Int32("workers", s.options.workers))

	return nil
}

// Stop cancels the pollers and waits for running handlers to return. Handlers
// are not cancelled by Stop, but a message finished during shutdown may miss
// its acknowledgement and be redelivered.
func (s *SQSEventSubscriber) Stop(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	if !s.running.Load() {
		return nil
	}

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "timed out waiting for sqs subscriber to stop")
	}

	s.cancel = nil
	s.running.Store(false)
	s.log.Info("sqs subscriber stopped")

	return nil
}

func (s *SQSEventSubscriber) spawn(n int, fn func()) {
	for i := 0; i < n; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			fn()
		}()
	}
}

func (s *SQSEventSubscriber) startWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case message := <-s.inboundMessages:
			s.handle(ctx, message)
		}
	}
}

func (s *SQSEventSubscriber) startReader(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := s.read(ctx); err != nil && ctx.Err() == nil {
			s.log.Error("failed to read from sqs", zap.Error(err))
			sleep(ctx, s.options.sleepTimeAfterError)
		}
	}
}

func (s *SQSEventSubscriber) startCleaner(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case message := <-s.outboundMessages:
			if err := s.clean(ctx, message); err != nil {
				s.log.Warn("failed to settle sqs message",
					zap.String("message_id", aws.ToString(message.Message.MessageId)),
					zap.Error(err),
				)
			}
		}
	}
}

func (s *SQSEventSubscriber) read(ctx context.Context) error {
	output, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(s.queueURL),
		MaxNumberOfMessages: s.options.maxNumberOfMessages,
		WaitTimeSeconds:     s.options.waitTimeSeconds,
		VisibilityTimeout:   s.options.visibilityTimeout,
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameApproximateReceiveCount,
		},
		MessageAttributeNames: []string{"All"},
	})
	if err != nil {
		return errors.Wrap(err, "failed to receive message from SQS")
	}

	if len(output.Messages) == 0 {
		sleep(ctx, s.options.sleepTimeAfterEmptyReceive)
		return nil
	}

	for _, message := range output.Messages {
		event, err := decodeMessage(message)
		if err != nil {
			// undecodable messages can never succeed, drop them instead of redelivering forever
			s.log.Error("discarding malformed sqs message",
				zap.String("message_id", aws.ToString(message.MessageId)),
				zap.Error(err),
			)
			if delErr := s.delete(ctx, message); delErr != nil {
				s.log.Warn("failed to delete malformed message", zap.Error(delErr))
			}
			continue
		}

		select {
		case s.inboundMessages <- &sqsMessage{Message: message, Event: event}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

func (s *SQSEventSubscriber) handle(ctx context.Context, message *sqsMessage) {
	// a started handler finishes its transaction even when the subscriber stops
	message.Err = s.safeHandle(context.WithoutCancel(ctx), message.Event)

	select {
	case s.outboundMessages <- message:
	case <-ctx.Done():
	}
}

// safeHandle converts handler panics into errors so one bad message cannot stop a worker
func (s *SQSEventSubscriber) safeHandle(ctx context.Context, event *events.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("event handler panicked",
				zap.String("topic", event.Topic.String()),
				zap.String("event_id", event.ID.String()),
				zap.Any("panic", r),
			)
			err = errors.Errorf("handler panic: %v", r)
		}
	}()

	return s.handler.Handle(ctx, event)
}

func (s *SQSEventSubscriber) clean(ctx context.Context, message *sqsMessage) error {
	if message.Err != nil {
		if s.options.extendVisibilityTimeoutOnError {
			return s.backoff(ctx, message)
		}
		return nil
	}

	if s.options.ack {
		return s.delete(ctx, message.Message)
	}

	return nil
}

func (s *SQSEventSubscriber) backoff(ctx context.Context, message *sqsMessage) error {
	receiveCount, err := strconv.Atoi(message.Message.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)])
	if err != nil {
		receiveCount = 1
	}

	visibilityTimeout := s.options.visibilityTimeout
	visibilityTimeout += (int32(receiveCount) / s.options.receiveCountRange) * s.options.visibilityTimeoutOffset

	if visibilityTimeout > s.options.maxVisibilityTimeout {
		visibilityTimeout = s.options.maxVisibilityTimeout
	}

	_, err = s.client.ChangeMessageVisibility(ctx, &sqs.ChangeMessageVisibilityInput{
		QueueUrl:          aws.String(s.queueURL),
		ReceiptHandle:     message.Message.ReceiptHandle,
		VisibilityTimeout: visibilityTimeout,
	})
	if err != nil {
		return errors.Wrap(err, "failed to extend visibility timeout")
	}

	return nil
}

func (s *SQSEventSubscriber) delete(ctx context.Context, message types.Message) error {
	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete message from SQS")
	}
	return nil
}

// decodeMessage decodes an event body, unwrapping the SNS notification envelope
// when the subscription does not use raw message delivery.
func decodeMessage(message types.Message) (*events.Event, error) {
	if message.Body == nil {
		return nil, errors.New("empty message body")
	}

	body := []byte(*message.Body)

	var envelope snsEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Type == "Notification" && envelope.Message != "" {
		body = []byte(envelope.Message)
	}

	event, err := events.FromJSON(body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode event")
	}

	event.Metadata.Set(SQSMessageIDKey, aws.ToString(message.MessageId))
	if message.ReceiptHandle != nil {
		event.Metadata.Set(SQSReceiptHandleKey, *message.ReceiptHandle)
	}

	for k, v := range message.MessageAttributes {
		if v.StringValue != nil && !event.Metadata.Has(k) {
			event.Metadata.Set(k, *v.StringValue)
		}
	}

	return event, nil
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
