// Package parser decodes an HTTP submission body into a crashreport.Report,
// per spec.md §4.3: multipart/form-data, optionally gzip-wrapped, carrying
// either plain form-field annotations or a single JSON-encoded "extra"
// field, plus named binary dump parts.
package parser

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mozilla-services/antenna/pkg/crashreport"
)

// Reason is one of the fixed parser failure-mode strings from §4.3, always
// reported via the X-Collector-Reason response header on a 400.
type Reason string

const (
	ReasonNoContentLength Reason = "no_content_length"
	ReasonBadContentType  Reason = "bad_content_type"
	ReasonBadBoundary     Reason = "bad_boundary"
	ReasonBadGzip         Reason = "bad_gzip"
	ReasonNoAnnotations   Reason = "no_annotations"
	ReasonTooLarge        Reason = "too_large"
)

// Error wraps a parser failure with its reason code.
type Error struct {
	Reason Reason
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// annotationNamePattern is the reserved alphabet for annotation names, §4.3.
var annotationNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// dumpNamePattern is the reserved alphabet for dump names, §3.
var dumpNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// jsonExtraFieldName is the form-field name carrying the JSON-extra shape.
const jsonExtraFieldName = "extra"

// Options bounds parser behavior; all fields must be positive.
type Options struct {
	// MaxAnnotationValueSize is the maximum byte length of a single
	// annotation value before it is truncated and noted.
	MaxAnnotationValueSize int
	// MaxBodySize is the collector's own cap on decompressed body size,
	// enforced in addition to any front-proxy limit (§6).
	MaxBodySize int64
}

// Parse decodes req's body into report, mutating report in place with
// annotations, dumps, payload_kind and payload_compressed. report must
// already be allocated via crashreport.New.
func Parse(req *http.Request, report *crashreport.Report, opts Options) error {
	if req.ContentLength < 0 {
		return &Error{Reason: ReasonNoContentLength}
	}

	mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return &Error{Reason: ReasonBadContentType, Detail: err2str(err)}
	}
	boundary, ok := params["boundary"]
	if !ok || boundary == "" {
		return &Error{Reason: ReasonBadBoundary}
	}

	body := io.Reader(req.Body)
	if isGzipEncoding(req.Header.Get("Content-Encoding")) {
		report.PayloadCompressed = true
		gz, err := gzip.NewReader(body)
		if err != nil {
			return &Error{Reason: ReasonBadGzip, Detail: err.Error()}
		}
		defer gz.Close()
		body = gz
	}
	body = io.LimitReader(body, opts.MaxBodySize+1)

	limited := &countingReader{r: body}
	mr := multipart.NewReader(limited, boundary)

	report.PayloadKind = crashreport.PayloadKindMultipart
	sawAnnotation := false

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if limited.n > opts.MaxBodySize {
				return &Error{Reason: ReasonTooLarge}
			}
			return &Error{Reason: ReasonBadBoundary, Detail: err.Error()}
		}

		name := part.FormName()
		filename := part.FileName()

		if filename != "" && isOctetStream(part.Header.Get("Content-Type")) {
			data, err := io.ReadAll(part)
			part.Close()
			if err != nil {
				if limited.n > opts.MaxBodySize {
					return &Error{Reason: ReasonTooLarge}
				}
				return &Error{Reason: ReasonBadBoundary, Detail: err.Error()}
			}
			addDump(report, name, filename, data)
			continue
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			if limited.n > opts.MaxBodySize {
				return &Error{Reason: ReasonTooLarge}
			}
			return &Error{Reason: ReasonBadBoundary, Detail: err.Error()}
		}

		if name == jsonExtraFieldName {
			if parseJSONExtra(report, data, opts) {
				report.PayloadKind = crashreport.PayloadKindJSON
				sawAnnotation = true
			}
			continue
		}

		addAnnotation(report, name, data, opts)
		sawAnnotation = true
	}

	if limited.n > opts.MaxBodySize {
		return &Error{Reason: ReasonTooLarge}
	}
	if !sawAnnotation {
		return &Error{Reason: ReasonNoAnnotations}
	}
	return nil
}

func parseJSONExtra(report *crashreport.Report, data []byte, opts Options) bool {
	var extra map[string]any
	if err := json.Unmarshal(data, &extra); err != nil {
		report.AddNote("bad_json_extra")
		return false
	}
	any := false
	for k, v := range extra {
		s := fmt.Sprintf("%v", v)
		addAnnotation(report, k, []byte(s), opts)
		any = true
	}
	return any
}

func addAnnotation(report *crashreport.Report, name string, raw []byte, opts Options) {
	if !annotationNamePattern.MatchString(name) {
		report.AddNote("dropped_annotation:" + name)
		return
	}
	value := sanitizeValue(raw)
	if opts.MaxAnnotationValueSize > 0 && len(value) > opts.MaxAnnotationValueSize {
		value = value[:opts.MaxAnnotationValueSize]
		report.AddNote("truncated:" + name)
	}
	report.Annotations[name] = value
}

func addDump(report *crashreport.Report, name, filename string, data []byte) {
	if !dumpNamePattern.MatchString(name) {
		report.AddNote("dropped_dump:" + name)
		return
	}
	report.Dumps[name] = data
	report.OriginalFilenames[name] = filename
}

// sanitizeValue strips NUL bytes and replaces invalid UTF-8 sequences with
// U+FFFD, per §4.3.
func sanitizeValue(raw []byte) string {
	cleaned := bytes.ReplaceAll(raw, []byte{0}, nil)
	if utf8.Valid(cleaned) {
		return string(cleaned)
	}
	return strings.ToValidUTF8(string(cleaned), string(utf8.RuneError))
}

func isOctetStream(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType == ""
	}
	return mediaType == "application/octet-stream" || mediaType == ""
}

func isGzipEncoding(encoding string) bool {
	encoding = strings.ToLower(strings.TrimSpace(encoding))
	return encoding == "gzip" || encoding == "x-gzip"
}

func err2str(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// countingReader tracks bytes read so the caller can distinguish a
// too-large body from a genuinely malformed multipart stream after the
// underlying LimitReader has truncated it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
