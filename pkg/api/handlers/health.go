package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mozilla-services/antenna/pkg/publish"
	"github.com/mozilla-services/antenna/pkg/storage"
)

// HealthCheckTimeout bounds how long the heartbeat probe waits on the
// storage and publish adapters before reporting unhealthy, per §4.8.
const HealthCheckTimeout = 5 * time.Second

// VersionInfo is the payload served at GET /__version__, read once at
// startup from a version.json file shipped next to the binary; fields the
// file does not set keep their build-time values.
type VersionInfo struct {
	Commit  string `json:"commit"`
	Version string `json:"version"`
	Source  string `json:"source"`
	Build   string `json:"build"`
}

// HealthHandler implements the four probe endpoints from §4.8.
type HealthHandler struct {
	Store   storage.Adapter
	Publish publish.Adapter
	Version VersionInfo
}

// NewHealthHandler builds a HealthHandler. store/pub may be nil before
// the process has finished wiring adapters, in which case Heartbeat
// reports unhealthy rather than panicking.
func NewHealthHandler(store storage.Adapter, pub publish.Adapter, version VersionInfo) *HealthHandler {
	return &HealthHandler{Store: store, Publish: pub, Version: version}
}

// LBHeartbeat handles GET /__lbheartbeat__: an unconditional 200 with an
// empty body, used by the load balancer to decide whether to route
// traffic to this replica at all.
func (h *HealthHandler) LBHeartbeat(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

type checkResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type heartbeatResponse struct {
	Checks map[string]checkResult `json:"checks"`
}

// Heartbeat handles GET /__heartbeat__: exercises the Storage and
// Publish adapters' Verify methods and reports per-check status. A 200
// means every configured dependency answered; a 500 means at least one
// did not, per §4.9's startup-verification contract reused here for
// ongoing liveness.
func (h *HealthHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), HealthCheckTimeout)
	defer cancel()

	checks := map[string]checkResult{}
	healthy := true

	if h.Store == nil {
		checks["storage"] = checkResult{Status: "unhealthy", Error: "not configured"}
		healthy = false
	} else if err := h.Store.Verify(ctx); err != nil {
		checks[h.Store.Name()] = checkResult{Status: "unhealthy", Error: err.Error()}
		healthy = false
	} else {
		checks[h.Store.Name()] = checkResult{Status: "healthy"}
	}

	if h.Publish == nil {
		checks["publish"] = checkResult{Status: "unhealthy", Error: "not configured"}
		healthy = false
	} else if err := h.Publish.Verify(ctx); err != nil {
		checks[h.Publish.Name()] = checkResult{Status: "unhealthy", Error: err.Error()}
		healthy = false
	} else {
		checks[h.Publish.Name()] = checkResult{Status: "healthy"}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, heartbeatResponse{Checks: checks})
}

// Version handles GET /__version__: the build identity recorded at
// startup.
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Version)
}

// Broken handles GET /__broken__: deliberately returns a 500 so
// operators can verify error-reporting wiring (Sentry, alerting) end to
// end. Per spec.md §4.8 this endpoint should be kept behind basic auth
// or network policy at the edge; the collector itself applies no access
// control (see Non-goals).
func (h *HealthHandler) Broken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusInternalServerError, checkResult{Status: "broken", Error: "deliberately broken for testing"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
