package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mozilla-services/antenna/pkg/crashreport"
	"github.com/mozilla-services/antenna/pkg/publish"
	"github.com/mozilla-services/antenna/pkg/storage"
)

type fakeStore struct{ err error }

func (f *fakeStore) Name() string { return "fake-store" }
func (f *fakeStore) Save(context.Context, *crashreport.Report) storage.Outcome {
	return storage.OK
}
func (f *fakeStore) Verify(context.Context) error { return f.err }

type fakePublisher struct{ err error }

func (f *fakePublisher) Name() string { return "fake-publish" }
func (f *fakePublisher) Publish(context.Context, string) publish.Outcome {
	return publish.OK
}
func (f *fakePublisher) Verify(context.Context) error { return f.err }

func TestLBHeartbeatAlwaysOK(t *testing.T) {
	h := NewHealthHandler(&fakeStore{}, &fakePublisher{}, VersionInfo{})
	w := httptest.NewRecorder()
	h.LBHeartbeat(w, httptest.NewRequest(http.MethodGet, "/__lbheartbeat__", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHeartbeatOKWhenAdaptersHealthy(t *testing.T) {
	h := NewHealthHandler(&fakeStore{}, &fakePublisher{}, VersionInfo{})
	w := httptest.NewRecorder()
	h.Heartbeat(w, httptest.NewRequest(http.MethodGet, "/__heartbeat__", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHeartbeatFailsWhenStorageUnhealthy(t *testing.T) {
	h := NewHealthHandler(&fakeStore{err: errors.New("bucket gone")}, &fakePublisher{}, VersionInfo{})
	w := httptest.NewRecorder()
	h.Heartbeat(w, httptest.NewRequest(http.MethodGet, "/__heartbeat__", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "bucket gone")
}

func TestHeartbeatFailsWhenUnconfigured(t *testing.T) {
	h := NewHealthHandler(nil, nil, VersionInfo{})
	w := httptest.NewRecorder()
	h.Heartbeat(w, httptest.NewRequest(http.MethodGet, "/__heartbeat__", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestVersionReturnsConfiguredInfo(t *testing.T) {
	h := NewHealthHandler(&fakeStore{}, &fakePublisher{}, VersionInfo{Commit: "abc123", Version: "1.2.3"})
	w := httptest.NewRecorder()
	h.Version(w, httptest.NewRequest(http.MethodGet, "/__version__", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "abc123")
}

func TestBrokenReturns500(t *testing.T) {
	h := NewHealthHandler(&fakeStore{}, &fakePublisher{}, VersionInfo{})
	w := httptest.NewRecorder()
	h.Broken(w, httptest.NewRequest(http.MethodGet, "/__broken__", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
