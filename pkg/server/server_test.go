package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mozilla-services/antenna/pkg/mover"
	"github.com/mozilla-services/antenna/pkg/publish/noop"
	noopstore "github.com/mozilla-services/antenna/pkg/storage/noop"
)

func newTestMover() *mover.Mover {
	return mover.New(mover.DefaultConfig(), noopstore.New(), noop.New(), nil)
}

func TestServeShutsDownCleanlyOnContextCancel(t *testing.T) {
	mv := newTestMover()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	s := New("127.0.0.1:0", handler, mv, 2*time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after shutdown")
	}
}

func TestServerServesConfiguredHandler(t *testing.T) {
	mv := newTestMover()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	s := New("127.0.0.1:0", handler, mv, time.Second)
	ts := httptest.NewServer(s.HTTP.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}
