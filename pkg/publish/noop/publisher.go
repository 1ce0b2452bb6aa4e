// Package noop implements a Publish Adapter that discards every identifier,
// for local development without any configured backend.
package noop

import (
	"context"

	"github.com/mozilla-services/antenna/pkg/publish"
)

// Publisher discards everything handed to it.
type Publisher struct{}

// New returns a no-op publish adapter.
func New() *Publisher { return &Publisher{} }

// Name identifies the adapter for logging and metrics.
func (p *Publisher) Name() string { return "noop" }

// Publish always reports success without sending anything.
func (p *Publisher) Publish(context.Context, string) publish.Outcome {
	return publish.OK
}

// Verify always succeeds.
func (p *Publisher) Verify(context.Context) error { return nil }

var _ publish.Adapter = (*Publisher)(nil)
