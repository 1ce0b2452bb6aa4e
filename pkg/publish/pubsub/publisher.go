// Package pubsub implements the Publish Adapter capability set over a
// Pub/Sub-style topic, the Google Cloud sibling of pkg/storage/gcs.
package pubsub

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/mozilla-services/antenna/pkg/publish"
	"google.golang.org/api/googleapi"
)

// Config holds configuration for the Pub/Sub publish adapter.
type Config struct {
	ProjectID string
	TopicID   string
}

// Publisher is a Pub/Sub-backed implementation of publish.Adapter.
type Publisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// New creates a new adapter with an existing client and topic handle.
func New(client *pubsub.Client, topic *pubsub.Topic) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// NewFromConfig creates a new adapter, building a Pub/Sub client with
// application-default credentials.
func NewFromConfig(ctx context.Context, cfg Config) (*Publisher, error) {
	if cfg.ProjectID == "" || cfg.TopicID == "" {
		return nil, publish.ErrNotConfigured
	}
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("new pubsub client: %w", err)
	}
	return New(client, client.Topic(cfg.TopicID)), nil
}

// Name identifies the adapter for logging and metrics.
func (p *Publisher) Name() string { return "pubsub" }

// Publish sends id as the message body, with no envelope and no ordering
// key required, per §4.5.
func (p *Publisher) Publish(ctx context.Context, id string) publish.Outcome {
	result := p.topic.Publish(ctx, &pubsub.Message{Data: []byte(id)})
	if _, err := result.Get(ctx); err != nil {
		return classify(err)
	}
	return publish.OK
}

// Verify proves publish capability by sending a probe message. Pub/Sub has
// no way to retract a published message; operators point Verify at a
// dedicated verification topic that downstream subscribers ignore.
func (p *Publisher) Verify(ctx context.Context) error {
	if outcome := p.Publish(ctx, "verify-probe"); outcome != publish.OK {
		return fmt.Errorf("pubsub verify: publish did not succeed")
	}
	return nil
}

// classify maps a Pub/Sub client error to a publish.Outcome: 5xx and
// resource-exhausted responses are retryable, everything else permanent.
func classify(err error) publish.Outcome {
	if err == nil {
		return publish.OK
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return publish.TransientError
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code >= 500 && apiErr.Code < 600 {
			return publish.TransientError
		}
		if apiErr.Code == 429 {
			return publish.TransientError
		}
	}
	return publish.PermanentError
}

var _ publish.Adapter = (*Publisher)(nil)
