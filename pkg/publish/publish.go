// Package publish defines the Publish Adapter capability set from
// spec.md §4.5: announce an accepted crash identifier to a downstream
// queue or topic, with no envelope beyond the identifier itself.
package publish

import (
	"context"
	"errors"
	"time"

	"github.com/mozilla-services/antenna/pkg/storage"
)

// Outcome reuses storage's three-way result, since the Crash-Mover applies
// the same retry discipline to both adapters.
type Outcome = storage.Outcome

const (
	OK             = storage.OK
	TransientError = storage.TransientError
	PermanentError = storage.PermanentError
)

// DefaultDeadline is the default per-call publish deadline from §4.5.
const DefaultDeadline = 5 * time.Second

// ErrNotConfigured is returned by adapter constructors when required
// configuration is missing.
var ErrNotConfigured = errors.New("publish: adapter not configured")

// Adapter is the capability set every publish backend implements.
type Adapter interface {
	// Name identifies the adapter for logging and metrics.
	Name() string
	// Publish sends id, as ASCII bytes with no envelope, to the
	// downstream queue or topic. Must complete within the configured
	// deadline or be counted as TransientError.
	Publish(ctx context.Context, id string) Outcome
	// Verify proves publish capability once at startup.
	Verify(ctx context.Context) error
}
