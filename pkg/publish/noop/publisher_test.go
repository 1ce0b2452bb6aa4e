package noop

import (
	"context"
	"testing"

	"github.com/mozilla-services/antenna/pkg/publish"
	"github.com/stretchr/testify/assert"
)

func TestPublishAlwaysOK(t *testing.T) {
	p := New()
	assert.Equal(t, publish.OK, p.Publish(context.Background(), "some-id"))
}

func TestVerifyAlwaysSucceeds(t *testing.T) {
	p := New()
	assert.NoError(t, p.Verify(context.Background()))
}
