package infrastructure

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/pkg/errors"
)

// AWSOptions selects the region, credentials and optional endpoint overrides
// (LocalStack) used to build the broker clients.
type AWSOptions struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	EndpointSNS     string
	EndpointSQS     string
}

// NewAWSClients loads the default AWS config and builds SNS and SQS clients
func NewAWSClients(ctx context.Context, opts AWSOptions) (*sns.Client, *sqs.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load AWS config")
	}

	snsClient := sns.NewFromConfig(cfg, func(o *sns.Options) {
		if opts.EndpointSNS != "" {
			o.BaseEndpoint = aws.String(opts.EndpointSNS)
		}
	})

	sqsClient := sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		if opts.EndpointSQS != "" {
			o.BaseEndpoint = aws.String(opts.EndpointSQS)
		}
	})

	return snsClient, sqsClient, nil
}
