// Package storage defines the Storage Adapter capability set from
// spec.md §4.4: save the three canonical objects for a crash, and verify
// write capability once at startup. Concrete adapters (s3, gcs, fs, noop)
// live in subpackages.
package storage

import (
	"context"
	"errors"

	"github.com/mozilla-services/antenna/pkg/crashreport"
)

// Outcome is the result of a save or verify call.
type Outcome int

const (
	OK Outcome = iota
	TransientError
	PermanentError
)

// Adapter is the capability set every storage backend implements.
type Adapter interface {
	// Name identifies the adapter for logging and metrics.
	Name() string
	// Save writes the raw-crash annotations object, the dump-name index,
	// and every dump, per the object layout in §4.4. All objects must
	// succeed for Save to return OK; on partial failure the
	// already-written objects are left in place since object stores are
	// treated as key-overwrite and a retry re-writes idempotently.
	Save(ctx context.Context, report *crashreport.Report) Outcome
	// Verify proves write capability without leaving garbage; issued
	// once at startup by pkg/verifier.
	Verify(ctx context.Context) error
}

// ErrNotConfigured is returned by adapter constructors when required
// configuration is missing.
var ErrNotConfigured = errors.New("storage: adapter not configured")

// ObjectKeys computes the raw-crash and dump-index object paths for a
// crash, per the layout table in §4.4; DumpKey gives each dump's path. id must already be a well-formed identifier
// (idgen.Valid); dateFromID returns the YYYYMMDD path component.
func ObjectKeys(id string) (rawCrash, dumpIndex string) {
	entropy := id
	if len(id) >= 3 {
		entropy = id[:3]
	}
	date := dateFromID(id)
	rawCrash = "v2/raw_crash/" + entropy + "/" + date + "/" + id
	dumpIndex = "v1/dump_names/" + id
	return rawCrash, dumpIndex
}

// DumpKey returns the object path for a single named dump, rewriting the
// well-known primary minidump name to "dump" as required by §4.4.
func DumpKey(id, dumpName string) string {
	stored := dumpName
	if dumpName == crashreport.PrimaryDumpName {
		stored = "dump"
	}
	return "v1/" + stored + "/" + id
}

// dateFromID extracts the YYMMDD date digits from a 37-char id and expands
// the two-digit year to four digits, assuming the 2000s century (the
// collector has no submissions predating it).
func dateFromID(id string) string {
	if len(id) < 7 {
		return "00000000"
	}
	datePart := id[len(id)-7 : len(id)-1] // YYMMDD
	return "20" + datePart
}
