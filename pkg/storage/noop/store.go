// Package noop implements a Storage Adapter that discards every crash,
// for local development without any configured backend.
package noop

import (
	"context"

	"github.com/mozilla-services/antenna/pkg/crashreport"
	"github.com/mozilla-services/antenna/pkg/storage"
)

// Store discards everything handed to it.
type Store struct{}

// New returns a no-op storage adapter.
func New() *Store { return &Store{} }

// Name identifies the adapter for logging and metrics.
func (s *Store) Name() string { return "noop" }

// Save always reports success without writing anything.
func (s *Store) Save(context.Context, *crashreport.Report) storage.Outcome {
	return storage.OK
}

// Verify always succeeds.
func (s *Store) Verify(context.Context) error { return nil }

var _ storage.Adapter = (*Store)(nil)
