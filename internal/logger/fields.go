package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the collector.
// Use these keys consistently across all log statements for log aggregation
// and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// HTTP Request
	// ========================================================================
	KeyRequestID  = "request_id"  // chi request ID
	KeyMethod     = "method"      // HTTP method
	KeyPath       = "path"        // HTTP request path
	KeyStatus     = "status"      // HTTP response status code
	KeyBytes      = "bytes"       // response body size
	KeyClientIP   = "client_ip"   // client IP address
	KeyReason     = "reason"      // parser/validation failure reason

	// ========================================================================
	// Crash Report
	// ========================================================================
	KeyCrashID      = "crash_id"      // assigned 37-char crash identifier
	KeyVerdict      = "verdict"       // throttler verdict
	KeyRuleName     = "rule_name"     // matched throttler rule
	KeyPercentage   = "percentage"    // sampled-verdict acceptance percentage
	KeyPayloadKind  = "payload_kind"  // multipart | json
	KeyPayloadSize  = "payload_size"  // raw request body size in bytes
	KeyDumpName     = "dump_name"     // dump/part name
	KeyDumpCount    = "dump_count"    // number of dumps in a crash
	KeyAnnotation   = "annotation"    // annotation name
	KeyChecksum     = "checksum"      // SHA-256 hex digest

	// ========================================================================
	// Hand-off Queue & Crash-Mover
	// ========================================================================
	KeyQueueDepth   = "queue_depth"   // current hand-off queue occupancy
	KeyQueueCap     = "queue_cap"     // hand-off queue capacity
	KeyWorkerID     = "worker_id"     // crash-mover worker index
	KeyAttempt      = "attempt"       // retry attempt number
	KeyMaxAttempts  = "max_attempts"  // maximum retry attempts
	KeyBackoff      = "backoff_ms"    // backoff delay before this attempt
	KeyState        = "state"         // crash-mover state machine state

	// ========================================================================
	// Adapters
	// ========================================================================
	KeyAdapter    = "adapter"    // adapter class: s3, gcs, sqs, pubsub, ...
	KeyBucket     = "bucket"     // object store bucket name
	KeyObjectKey  = "object_key" // object store key
	KeyTopic      = "topic"      // publish topic/queue name
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }

// RequestID returns a slog.Attr for the HTTP request ID
func RequestID(id string) slog.Attr { return slog.String(KeyRequestID, id) }

// Method returns a slog.Attr for the HTTP method
func Method(m string) slog.Attr { return slog.String(KeyMethod, m) }

// Path returns a slog.Attr for the HTTP request path
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }

// Status returns a slog.Attr for the HTTP response status code
func Status(code int) slog.Attr { return slog.Int(KeyStatus, code) }

// Bytes returns a slog.Attr for a byte count
func Bytes(n int) slog.Attr { return slog.Int(KeyBytes, n) }

// ClientIP returns a slog.Attr for the client IP address
func ClientIP(addr string) slog.Attr { return slog.String(KeyClientIP, addr) }

// Reason returns a slog.Attr for a parser/validation failure reason
func Reason(reason string) slog.Attr { return slog.String(KeyReason, reason) }

// CrashID returns a slog.Attr for the assigned crash identifier
func CrashID(id string) slog.Attr { return slog.String(KeyCrashID, id) }

// Verdict returns a slog.Attr for a throttler verdict
func Verdict(v string) slog.Attr { return slog.String(KeyVerdict, v) }

// RuleName returns a slog.Attr for the matched throttler rule
func RuleName(name string) slog.Attr { return slog.String(KeyRuleName, name) }

// Percentage returns a slog.Attr for a sampled-verdict acceptance percentage
func Percentage(p float64) slog.Attr { return slog.Float64(KeyPercentage, p) }

// PayloadKind returns a slog.Attr for the payload shape (multipart|json)
func PayloadKind(kind string) slog.Attr { return slog.String(KeyPayloadKind, kind) }

// PayloadSize returns a slog.Attr for the raw request body size
func PayloadSize(n int64) slog.Attr { return slog.Int64(KeyPayloadSize, n) }

// DumpName returns a slog.Attr for a dump/part name
func DumpName(name string) slog.Attr { return slog.String(KeyDumpName, name) }

// DumpCount returns a slog.Attr for the number of dumps in a crash
func DumpCount(n int) slog.Attr { return slog.Int(KeyDumpCount, n) }

// Annotation returns a slog.Attr for an annotation name
func Annotation(name string) slog.Attr { return slog.String(KeyAnnotation, name) }

// Checksum returns a slog.Attr for a SHA-256 hex digest
func Checksum(sum string) slog.Attr { return slog.String(KeyChecksum, sum) }

// QueueDepth returns a slog.Attr for the current hand-off queue occupancy
func QueueDepth(n int) slog.Attr { return slog.Int(KeyQueueDepth, n) }

// QueueCap returns a slog.Attr for the hand-off queue capacity
func QueueCap(n int) slog.Attr { return slog.Int(KeyQueueCap, n) }

// WorkerID returns a slog.Attr for the crash-mover worker index
func WorkerID(n int) slog.Attr { return slog.Int(KeyWorkerID, n) }

// Attempt returns a slog.Attr for the retry attempt number
func Attempt(n int) slog.Attr { return slog.Int(KeyAttempt, n) }

// MaxAttempts returns a slog.Attr for the maximum retry attempts
func MaxAttempts(n int) slog.Attr { return slog.Int(KeyMaxAttempts, n) }

// Backoff returns a slog.Attr for the backoff delay in milliseconds
func Backoff(ms int64) slog.Attr { return slog.Int64(KeyBackoff, ms) }

// State returns a slog.Attr for the crash-mover state machine state
func State(s string) slog.Attr { return slog.String(KeyState, s) }

// Adapter returns a slog.Attr for an adapter class name
func Adapter(class string) slog.Attr { return slog.String(KeyAdapter, class) }

// Bucket returns a slog.Attr for an object store bucket name
func Bucket(name string) slog.Attr { return slog.String(KeyBucket, name) }

// ObjectKey returns a slog.Attr for an object store key
func ObjectKey(key string) slog.Attr { return slog.String(KeyObjectKey, key) }

// Topic returns a slog.Attr for a publish topic/queue name
func Topic(name string) slog.Attr { return slog.String(KeyTopic, name) }

// DurationMs returns a slog.Attr for a duration in milliseconds
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric/short error code
func ErrorCode(code string) slog.Attr { return slog.String(KeyErrorCode, code) }
