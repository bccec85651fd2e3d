package infrastructure

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/draftea/saga-orchestrator/shared/events"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	maxBatchSize = 10
	// SNS rejects messages carrying more than ten attributes
	maxMessageAttributes = 10
	topicAttributeKey    = "topic"
)

// SNSAPI is the subset of the SNS client used by the gateway
type SNSAPI interface {
	CreateTopic(ctx context.Context, params *sns.CreateTopicInput, optFns ...func(*sns.Options)) (*sns.CreateTopicOutput, error)
	GetTopicAttributes(ctx context.Context, params *sns.GetTopicAttributesInput, optFns ...func(*sns.Options)) (*sns.GetTopicAttributesOutput, error)
	PublishBatch(ctx context.Context, params *sns.PublishBatchInput, optFns ...func(*sns.Options)) (*sns.PublishBatchOutput, error)
}

// SNSTopicGateway creates SNS topics by name and publishes events to the
// topic named by each event.
type SNSTopicGateway struct {
	client    SNSAPI
	arnPrefix string
	log       *zap.Logger

	mu   sync.RWMutex
	arns map[string]string
}

// NewSNSTopicGateway creates a gateway. arnPrefix is the "arn:aws:sns:<region>:<account>:"
// prefix used to address topics that were not created by this process.
func NewSNSTopicGateway(client SNSAPI, arnPrefix string, log *zap.Logger) *SNSTopicGateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &SNSTopicGateway{
		client:    client,
		arnPrefix: arnPrefix,
		log:       log,
		arns:      make(map[string]string),
	}
}

// TopicExists reports whether the named topic exists
func (g *SNSTopicGateway) TopicExists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, events.ErrInvalidTopic
	}

	_, err := g.client.GetTopicAttributes(ctx, &sns.GetTopicAttributesInput{
		TopicArn: aws.String(g.topicArn(name)),
	})
	if err != nil {
		var notFound *types.NotFoundException
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to get attributes of topic %s", name)
	}

	return true, nil
}

// CreateTopic creates the named topic. SNS topic creation is idempotent.
func (g *SNSTopicGateway) CreateTopic(ctx context.Context, name string) error {
	if name == "" {
		return events.ErrInvalidTopic
	}

	out, err := g.client.CreateTopic(ctx, &sns.CreateTopicInput{
		Name: aws.String(name),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to create topic %s", name)
	}

	if out.TopicArn != nil {
		g.mu.Lock()
		g.arns[name] = *out.TopicArn
		g.mu.Unlock()
	}

	g.log.Debug("topic ready", zap.String("topic", name))
	return nil
}

// Publish publishes events grouped by their topic
func (g *SNSTopicGateway) Publish(ctx context.Context, evts ...*events.Event) error {
	if len(evts) == 0 {
		return nil
	}

	byTopic := make(map[events.Topic][]*events.Event)
	for _, event := range evts {
		if event == nil || event.Topic == "" {
			return events.ErrInvalidTopic
		}
		byTopic[event.Topic] = append(byTopic[event.Topic], event)
	}

	gr, ctx := errgroup.WithContext(ctx)

	for topic, topicEvents := range byTopic {
		arn := g.topicArn(topic.String())
		for _, eventBatch := range splitToChunks(topicEvents, maxBatchSize) {
			gr.Go(func() error {
				return g.batchPublish(ctx, arn, eventBatch)
			})
		}
	}

	return gr.Wait()
}

func (g *SNSTopicGateway) batchPublish(ctx context.Context, topicArn string, evts []*events.Event) error {
	requests := make([]types.PublishBatchRequestEntry, len(evts))

	for i, event := range evts {
		msgJSON, err := json.Marshal(event)
		if err != nil {
			return errors.Wrap(err, "failed to marshal message")
		}

		requests[i] = types.PublishBatchRequestEntry{
			Id:                aws.String(event.ID.String()),
			Message:           aws.String(string(msgJSON)),
			MessageAttributes: messageAttributes(event),
		}
	}

	res, err := g.client.PublishBatch(ctx, &sns.PublishBatchInput{
		TopicArn:                   aws.String(topicArn),
		PublishBatchRequestEntries: requests,
	})
	if err != nil {
		return errors.Wrap(err, "failed to publish batch to SNS")
	}

	if len(res.Failed) > 0 {
		for _, entry := range res.Failed {
			g.log.Warn("sns batch entry rejected",
				zap.String("topic_arn", topicArn),
				zap.String("entry_id", aws.ToString(entry.Id)),
				zap.String("code", aws.ToString(entry.Code)),
				zap.String("message", aws.ToString(entry.Message)),
			)
		}
		return errors.Errorf("%d of %d messages rejected by SNS", len(res.Failed), len(evts))
	}

	return nil
}

func (g *SNSTopicGateway) topicArn(name string) string {
	g.mu.RLock()
	arn, ok := g.arns[name]
	g.mu.RUnlock()
	if ok {
		return arn
	}
	return g.arnPrefix + name
}

// messageAttributes copies headers into SNS attributes so subscriptions can
// filter on them. The full header map always travels in the message body.
func messageAttributes(event *events.Event) map[string]types.MessageAttributeValue {
	attrs := map[string]types.MessageAttributeValue{
		topicAttributeKey: {
			DataType:    aws.String("String"),
			StringValue: aws.String(event.Topic.String()),
		},
	}

	for k, v := range event.Metadata {
		if len(attrs) >= maxMessageAttributes {
			break
		}
		if k == SQSMessageIDKey || k == SQSReceiptHandleKey || v == "" {
			continue
		}
		attrs[k] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}

	return attrs
}

// splitToChunks splits slice into chunks of specified size
func splitToChunks[T any](slice []T, chunkSize int) [][]T {
	var chunks [][]T
	for i := 0; i < len(slice); i += chunkSize {
		end := i + chunkSize
		if end > len(slice) {
			end = len(slice)
		}
		chunks = append(chunks, slice[i:end])
	}
	return chunks
}
