// Package s3 implements the Storage Adapter capability set over an
// S3-compatible object store, adapted from the teacher's S3 block store.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mozilla-services/antenna/pkg/crashreport"
	"github.com/mozilla-services/antenna/pkg/storage"
)

// Config holds configuration for the S3 storage adapter.
type Config struct {
	Bucket         string
	Region         string
	Endpoint       string
	ForcePathStyle bool
	// VerifyKeyPrefix is where Verify writes and removes its probe object.
	VerifyKeyPrefix string
}

// Store is an S3-backed implementation of storage.Adapter.
type Store struct {
	client *s3.Client
	bucket string
	cfg    Config
}

// New creates a new adapter with an existing client.
func New(client *s3.Client, cfg Config) *Store {
	return &Store{client: client, bucket: cfg.Bucket, cfg: cfg}
}

// NewFromConfig creates a new adapter, building an S3 client from cfg.
func NewFromConfig(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, storage.ErrNotConfigured
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return New(client, cfg), nil
}

// Name identifies the adapter for logging and metrics.
func (s *Store) Name() string { return "s3" }

func (s *Store) putObject(ctx context.Context, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	return err
}

// Save writes the three canonical objects for a crash: raw annotations,
// the dump-name index, and each dump, per §4.4's object layout.
func (s *Store) Save(ctx context.Context, report *crashreport.Report) storage.Outcome {
	rawKey, idxKey := storage.ObjectKeys(report.ID)

	annotationsJSON, err := json.Marshal(report.Annotations)
	if err != nil {
		return storage.PermanentError
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
		return storage.PermanentError
	}
	if err := s.putObject(ctx, idxKey, indexJSON); err != nil {
		return classify(err)
	}

	for name, data := range report.Dumps {
		key := storage.DumpKey(report.ID, name)
		if err := s.putObject(ctx, key, data); err != nil {
			return classify(err)
		}
	}

	return storage.OK
}

// Verify proves write capability by writing and then deleting a probe
// object, without leaving garbage behind, per §4.4.
func (s *Store) Verify(ctx context.Context) error {
	key := s.cfg.VerifyKeyPrefix + "verify-probe"
	if key == "verify-probe" {
		key = "v1/verify/probe"
	}

	if err := s.putObject(ctx, key, []byte("ok")); err != nil {
		return fmt.Errorf("s3 verify put: %w", err)
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 verify cleanup: %w", err)
	}
	return nil
}

// classify maps an AWS SDK error to a storage.Outcome: 5xx, timeouts, and
// connection resets are retryable; anything else is treated as permanent
// since retrying would not change the outcome (bad credentials, missing
// bucket, malformed request).
func classify(err error) storage.Outcome {
	if err == nil {
		return storage.OK
	}
	var apiErr interface{ ErrorFault() aws.ErrorFault }
	if errors.As(err, &apiErr) && apiErr.ErrorFault() == aws.FaultServer {
		return storage.TransientError
	}
	msg := err.Error()
	if strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "RequestError") ||
		strings.Contains(msg, "InternalError") ||
		strings.Contains(msg, "ServiceUnavailable") ||
		strings.Contains(msg, "SlowDown") {
		return storage.TransientError
	}
	return storage.PermanentError
}

var _ storage.Adapter = (*Store)(nil)
