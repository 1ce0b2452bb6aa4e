package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks cfg against its struct `validate` tags, surfacing every
// failing field's constraint in the error text (the caller wraps
// this as a fatal configuration error, §7 exit code 4).
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w", err)
	}
	return crossFieldChecks(cfg)
}

// crossFieldChecks covers constraints validator tags can't express: the
// storage/publish adapter selection must carry the fields that adapter
// actually needs.
func crossFieldChecks(cfg *Config) error {
	switch cfg.Storage.Class {
	case "s3":
		if cfg.Storage.BucketName == "" {
			return fmt.Errorf("crashstorage class s3 requires bucket_name")
		}
	case "gcs":
		if cfg.Storage.BucketName == "" {
			return fmt.Errorf("crashstorage class gcs requires bucket_name")
		}
	case "fs":
		if cfg.Storage.RootDir == "" {
			return fmt.Errorf("crashstorage class fs requires root_dir")
		}
	}

	switch cfg.Publish.Class {
	case "sqs":
		if cfg.Publish.QueueName == "" {
			return fmt.Errorf("crashpublish class sqs requires queue_name")
		}
	case "pubsub":
		if cfg.Publish.ProjectID == "" || cfg.Publish.TopicName == "" {
			return fmt.Errorf("crashpublish class pubsub requires project_id and topic_name")
		}
	}
	return nil
}
