// Package handlers implements the collector's HTTP endpoints: the Submit
// Handler (§4.7) and the health probes (§4.8).
package handlers

import (
	"net/http"
	"time"

	"github.com/mozilla-services/antenna/internal/logger"
	"github.com/mozilla-services/antenna/pkg/crashreport"
	"github.com/mozilla-services/antenna/pkg/idgen"
	"github.com/mozilla-services/antenna/pkg/mover"
	"github.com/mozilla-services/antenna/pkg/parser"
	"github.com/mozilla-services/antenna/pkg/throttler"
)

// SubmitMetrics is the subset of the Prometheus collector the Submit
// Handler reports to; nil-safe like every other metrics interface here.
type SubmitMetrics interface {
	SubmitResult(result string)
	ThrottleVerdict(rule, verdict string)
	ParserFailure(reason string)
	PayloadSize(n int64)
}

// SubmitHandler implements POST /submit end to end up to hand-off, per
// §4.7.
type SubmitHandler struct {
	Throttler      *throttler.Throttler
	Mover          *mover.Mover
	ParserOptions  parser.Options
	Metrics        SubmitMetrics
	// Now is overridable in tests for deterministic IDs.
	Now func() time.Time
}

// NewSubmitHandler builds a SubmitHandler with a real wall clock.
func NewSubmitHandler(th *throttler.Throttler, mv *mover.Mover, opts parser.Options, metrics SubmitMetrics) *SubmitHandler {
	return &SubmitHandler{Throttler: th, Mover: mv, ParserOptions: opts, Metrics: metrics, Now: time.Now}
}

// ServeHTTP implements the Submit Handler contract.
func (h *SubmitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	now := h.Now()
	if h.Metrics != nil {
		h.Metrics.PayloadSize(r.ContentLength)
	}

	report := crashreport.New(now)
	if err := parser.Parse(r, report, h.ParserOptions); err != nil {
		perr, _ := err.(*parser.Error)
		reason := "unknown"
		if perr != nil {
			reason = string(perr.Reason)
		}
		if h.Metrics != nil {
			h.Metrics.ParserFailure(reason)
			h.Metrics.SubmitResult("parse_error")
		}
		logger.WarnCtx(r.Context(), "submit parse failed", logger.Reason(reason))
		w.Header().Set("X-Collector-Reason", reason)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(reason + "\n"))
		return
	}

	decision := h.Throttler.Evaluate(report.Annotations)
	report.Verdict = string(decision.Verdict)
	report.RuleName = decision.RuleName
	if h.Metrics != nil {
		h.Metrics.ThrottleVerdict(decision.RuleName, string(decision.Verdict))
	}

	if decision.Verdict == throttler.Reject {
		if h.Metrics != nil {
			h.Metrics.SubmitResult("rejected")
		}
		writePlain(w, http.StatusOK, "Discarded=1\n")
		return
	}

	// FAKEACCEPT looks like ACCEPT to the client (a normal CrashID
	// response) but the mover discards it immediately without saving or
	// publishing, per §4.6 step 2.
	acceptLike := decision.Verdict == throttler.Accept || decision.Verdict == throttler.FakeAccept
	verdictDigit := idgen.VerdictDigit(acceptLike)

	var id string
	if candidate, ok := report.Annotations[crashreport.AnnotationUUID]; ok {
		if adopted, ok := idgen.Adopt(candidate, now, verdictDigit); ok {
			id = adopted
		}
	}
	if id == "" {
		id = idgen.Generate(now, verdictDigit)
	}
	report.ID = id
	report.Annotate()

	if !h.Mover.Enqueue(r.Context(), report) {
		if h.Metrics != nil {
			h.Metrics.SubmitResult("queue_full")
		}
		writePlain(w, http.StatusServiceUnavailable, "Discarded=1\n")
		return
	}

	if h.Metrics != nil {
		h.Metrics.SubmitResult("accepted")
	}
	writePlain(w, http.StatusOK, "CrashID=bp-"+report.ID+"\n")
}

func writePlain(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
