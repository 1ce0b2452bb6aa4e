package verifier

import (
	"context"
	"errors"
	"testing"

	"github.com/mozilla-services/antenna/pkg/crashreport"
	"github.com/mozilla-services/antenna/pkg/publish"
	"github.com/mozilla-services/antenna/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	name string
	err  error
}

func (f *fakeStore) Name() string { return f.name }
func (f *fakeStore) Save(context.Context, *crashreport.Report) storage.Outcome {
	return storage.OK
}
func (f *fakeStore) Verify(context.Context) error { return f.err }

type fakePublisher struct {
	name string
	err  error
}

func (f *fakePublisher) Name() string                                { return f.name }
func (f *fakePublisher) Publish(context.Context, string) publish.Outcome { return publish.OK }
func (f *fakePublisher) Verify(context.Context) error                { return f.err }

func TestVerifySucceedsWhenBothAdaptersOK(t *testing.T) {
	results, err := Verify(context.Background(), &fakeStore{name: "fs"}, &fakePublisher{name: "noop"})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestVerifyFailsOnStorageError(t *testing.T) {
	_, err := Verify(context.Background(), &fakeStore{name: "s3", err: errors.New("credentials revoked")}, &fakePublisher{name: "sqs"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3")
}

func TestVerifyFailsOnPublishError(t *testing.T) {
	_, err := Verify(context.Background(), &fakeStore{name: "s3"}, &fakePublisher{name: "sqs", err: errors.New("queue not found")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqs")
}
