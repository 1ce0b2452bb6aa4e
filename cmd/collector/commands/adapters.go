package commands

import (
	"context"
	"fmt"

	"github.com/mozilla-services/antenna/pkg/config"
	"github.com/mozilla-services/antenna/pkg/publish"
	noopPublish "github.com/mozilla-services/antenna/pkg/publish/noop"
	"github.com/mozilla-services/antenna/pkg/publish/pubsub"
	"github.com/mozilla-services/antenna/pkg/publish/sqs"
	"github.com/mozilla-services/antenna/pkg/storage"
	"github.com/mozilla-services/antenna/pkg/storage/fs"
	"github.com/mozilla-services/antenna/pkg/storage/gcs"
	noopStorage "github.com/mozilla-services/antenna/pkg/storage/noop"
	"github.com/mozilla-services/antenna/pkg/storage/s3"
)

// newStorageAdapter builds the configured Storage Adapter, per
// CRASHMOVER_CRASHSTORAGE_CLASS.
func newStorageAdapter(ctx context.Context, cfg config.CrashStorageConfig) (storage.Adapter, error) {
	switch cfg.Class {
	case "s3":
		return s3.NewFromConfig(ctx, s3.Config{
			Bucket:          cfg.BucketName,
			Region:          cfg.Region,
			Endpoint:        cfg.EndpointURL,
			ForcePathStyle:  cfg.EndpointURL != "",
			VerifyKeyPrefix: cfg.VerifyKeyPrefix,
		})
	case "gcs":
		return gcs.NewFromConfig(ctx, gcs.Config{
			Bucket:          cfg.BucketName,
			VerifyKeyPrefix: cfg.VerifyKeyPrefix,
		})
	case "fs":
		return fs.New(fs.Config{RootDir: cfg.RootDir})
	case "noop", "":
		return noopStorage.New(), nil
	default:
		return nil, fmt.Errorf("unknown crashstorage class %q", cfg.Class)
	}
}

// newPublishAdapter builds the configured Publish Adapter, per
// CRASHMOVER_CRASHPUBLISH_CLASS.
func newPublishAdapter(ctx context.Context, cfg config.CrashPublishConfig) (publish.Adapter, error) {
	switch cfg.Class {
	case "sqs":
		return sqs.NewFromConfig(ctx, sqs.Config{
			QueueURL: cfg.QueueName,
			Region:   cfg.Region,
			Endpoint: cfg.EndpointURL,
		})
	case "pubsub":
		return pubsub.NewFromConfig(ctx, pubsub.Config{
			ProjectID: cfg.ProjectID,
			TopicID:   cfg.TopicName,
		})
	case "noop", "":
		return noopPublish.New(), nil
	default:
		return nil, fmt.Errorf("unknown crashpublish class %q", cfg.Class)
	}
}
