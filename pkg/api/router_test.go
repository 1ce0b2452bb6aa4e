package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mozilla-services/antenna/pkg/api/handlers"
	"github.com/mozilla-services/antenna/pkg/mover"
	"github.com/mozilla-services/antenna/pkg/parser"
	"github.com/mozilla-services/antenna/pkg/storage/noop"
	noopPub "github.com/mozilla-services/antenna/pkg/publish/noop"
	"github.com/mozilla-services/antenna/pkg/throttler"
)

func TestRouterServesHealthAndSubmit(t *testing.T) {
	mv := mover.New(mover.DefaultConfig(), noop.New(), noopPub.New(), nil)
	mv.Start(t.Context())
	defer func() { _ = mv.Shutdown(t.Context()) }()

	th := throttler.New(throttler.DefaultRules())
	submit := handlers.NewSubmitHandler(th, mv, parser.Options{MaxAnnotationValueSize: 1024, MaxBodySize: 1024}, nil)
	health := handlers.NewHealthHandler(noop.New(), noopPub.New(), handlers.VersionInfo{Version: "test"})

	r := NewRouter(submit, health, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/__lbheartbeat__", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/__version__", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/submit", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
