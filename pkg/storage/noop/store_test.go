package noop

import (
	"context"
	"testing"
	"time"

	"github.com/mozilla-services/antenna/pkg/crashreport"
	"github.com/mozilla-services/antenna/pkg/storage"
	"github.com/stretchr/testify/assert"
)

func TestSaveAlwaysOK(t *testing.T) {
	s := New()
	report := crashreport.New(time.Now())
	assert.Equal(t, storage.OK, s.Save(context.Background(), report))
}

func TestVerifyAlwaysSucceeds(t *testing.T) {
	s := New()
	assert.NoError(t, s.Verify(context.Background()))
}
