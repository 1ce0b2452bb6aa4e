// Package sqs implements the Publish Adapter capability set over an
// SQS-style queue, adapted from the same AWS SDK v2 client-construction
// convention as pkg/storage/s3.
package sqs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/mozilla-services/antenna/pkg/publish"
)

// Config holds configuration for the SQS publish adapter.
type Config struct {
	QueueURL string
	Region   string
	Endpoint string
}

// Publisher is an SQS-backed implementation of publish.Adapter.
type Publisher struct {
	client   *sqs.Client
	queueURL string
}

// New creates a new adapter with an existing client.
func New(client *sqs.Client, cfg Config) *Publisher {
	return &Publisher{client: client, queueURL: cfg.QueueURL}
}

// NewFromConfig creates a new adapter, building an SQS client from cfg.
func NewFromConfig(ctx context.Context, cfg Config) (*Publisher, error) {
	if cfg.QueueURL == "" {
		return nil, publish.ErrNotConfigured
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var sqsOpts []func(*sqs.Options)
	if cfg.Endpoint != "" {
		sqsOpts = append(sqsOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	client := sqs.NewFromConfig(awsCfg, sqsOpts...)
	return New(client, cfg), nil
}

// Name identifies the adapter for logging and metrics.
func (p *Publisher) Name() string { return "sqs" }

// Publish sends id as the raw message body, with no envelope, per §4.5.
func (p *Publisher) Publish(ctx context.Context, id string) publish.Outcome {
	_, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(id),
	})
	if err != nil {
		return classify(err)
	}
	return publish.OK
}

// Verify proves publish capability by sending and not caring about the
// delivered message; SQS has no way to retract a sent message, so unlike
// the storage adapters' Verify, this leaves a single small message in the
// queue. Operators point Verify at a dedicated verification queue that
// downstream readers ignore.
func (p *Publisher) Verify(ctx context.Context) error {
	if outcome := p.Publish(ctx, "verify-probe"); outcome != publish.OK {
		return fmt.Errorf("sqs verify: publish did not succeed")
	}
	return nil
}

// classify maps an AWS SDK error to a publish.Outcome using the same
// fault-based heuristic as pkg/storage/s3.
func classify(err error) publish.Outcome {
	if err == nil {
		return publish.OK
	}
	var apiErr interface{ ErrorFault() aws.ErrorFault }
	if errors.As(err, &apiErr) && apiErr.ErrorFault() == aws.FaultServer {
		return publish.TransientError
	}
	msg := err.Error()
	if strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "RequestError") ||
		strings.Contains(msg, "ServiceUnavailable") ||
		strings.Contains(msg, "ThrottlingException") {
		return publish.TransientError
	}
	return publish.PermanentError
}

var _ publish.Adapter = (*Publisher)(nil)
