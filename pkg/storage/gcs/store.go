// Package gcs implements the Storage Adapter capability set over a
// GCS-compatible object store.
package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	gstore "github.com/mozilla-services/antenna/pkg/storage"
	"google.golang.org/api/googleapi"

	"github.com/mozilla-services/antenna/pkg/crashreport"
)

// Config holds configuration for the GCS storage adapter.
type Config struct {
	Bucket          string
	VerifyKeyPrefix string
}

// Store is a GCS-backed implementation of storage.Adapter. Its client is
// supplied to New, or built by NewFromConfig, before first use.
type Store struct {
	bucket string
	cfg    Config
	client *storage.Client
}

// New creates a new adapter with an existing client.
func New(client *storage.Client, cfg Config) *Store {
	return &Store{client: client, bucket: cfg.Bucket, cfg: cfg}
}

// NewFromConfig creates a new adapter, building a GCS client with
// application-default credentials.
func NewFromConfig(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, gstore.ErrNotConfigured
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("new gcs client: %w", err)
	}
	return New(client, cfg), nil
}

// Name identifies the adapter for logging and metrics.
func (s *Store) Name() string { return "gcs" }

func (s *Store) putObject(ctx context.Context, key string, body []byte) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// Save writes the three canonical objects for a crash per §4.4.
func (s *Store) Save(ctx context.Context, report *crashreport.Report) gstore.Outcome {
	rawKey, idxKey := gstore.ObjectKeys(report.ID)

	annotationsJSON, err := json.Marshal(report.Annotations)
	if err != nil {
		return gstore.PermanentError
	}
	if err := s.putObject(ctx, rawKey, annotationsJSON); err != nil {
		return classify(err)
	}

	index := make(map[string]*string, len(report.Dumps))
	for name := range report.Dumps {
		if fn, ok := report.OriginalFilenames[name]; ok && fn != "" {
			v := fn
			index[name] = &v
		} else {
			index[name] = nil
		}
	}
	indexJSON, err := json.Marshal(index)
	if err != nil {
		return gstore.PermanentError
	}
	if err := s.putObject(ctx, idxKey, indexJSON); err != nil {
		return classify(err)
	}

	for name, data := range report.Dumps {
		key := gstore.DumpKey(report.ID, name)
		if err := s.putObject(ctx, key, data); err != nil {
			return classify(err)
		}
	}

	return gstore.OK
}

// Verify proves write capability by writing and deleting a probe object.
func (s *Store) Verify(ctx context.Context) error {
	key := s.cfg.VerifyKeyPrefix
	if key == "" {
		key = "v1/verify/probe"
	}
	if err := s.putObject(ctx, key, []byte("ok")); err != nil {
		return fmt.Errorf("gcs verify put: %w", err)
	}
	if err := s.client.Bucket(s.bucket).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("gcs verify cleanup: %w", err)
	}
	return nil
}

// classify maps a GCS client error to a storage.Outcome. googleapi errors
// carry an HTTP status; 5xx and io timeouts are retryable, everything else
// is treated as permanent.
func classify(err error) gstore.Outcome {
	if err == nil {
		return gstore.OK
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, context.DeadlineExceeded) {
		return gstore.TransientError
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code >= 500 && apiErr.Code < 600 {
			return gstore.TransientError
		}
		if apiErr.Code == 429 {
			return gstore.TransientError
		}
	}
	return gstore.PermanentError
}

var _ gstore.Adapter = (*Store)(nil)
