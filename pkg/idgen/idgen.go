// Package idgen produces and validates the 37-character crash identifier
// described in spec.md §4.1: 8-4-4-4-6 lower-case hex of random bytes,
// followed by a collector-assigned YYMMDD date and a single verdict digit.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"
)

// Verdict digits encoded into the final character of an ID.
const (
	DigitAccept = '0' // ACCEPT: save + publish
	DigitDefer  = '1' // DEFER: save only
)

// shapePattern matches the full 37-character identifier, per P1.
var shapePattern = regexp.MustCompile(
	`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{6}[0-9]{2}(0[1-9]|1[0-2])(0[1-9]|[12][0-9]|3[01])[01]$`,
)

// Valid reports whether id has the 37-character shape described by P1,
// without regard to which date or verdict digit it encodes.
func Valid(id string) bool {
	return shapePattern.MatchString(id)
}

// randomHexLen is the number of hex characters in the 8-4-4-4-6 random
// prefix (26 hex digits = 13 bytes of entropy).
const randomHexLen = 26

// Generate produces a fresh identifier for receivedAt, with verdictDigit
// ('0' for ACCEPT, '1' for DEFER) as its final character. No collision
// check is performed, matching spec.md §4.1.
func Generate(receivedAt time.Time, verdictDigit byte) string {
	var buf [randomHexLen / 2]byte
	// crypto/rand.Read never returns a non-nil error on any platform Go
	// supports for a fixed-size buffer; a panic here indicates a broken
	// entropy source, which is not a condition we can recover from safely.
	if _, err := rand.Read(buf[:]); err != nil {
		panic(fmt.Sprintf("idgen: crypto/rand unavailable: %v", err))
	}
	hexStr := hex.EncodeToString(buf[:])

	date := receivedAt.UTC().Format("060102")
	return fmt.Sprintf(
		"%s-%s-%s-%s-%s%s%c",
		hexStr[0:8], hexStr[8:12], hexStr[12:16], hexStr[16:20], hexStr[20:26],
		date, verdictDigit,
	)
}

// Adopt returns candidate, with its date and verdict digits rewritten to
// the collector's authoritative values, if candidate already has the
// correct 37-character shape (i.e. the client supplied a usable uuid
// annotation). The client can never dictate the date or verdict digit: per
// §4.1 "The date digits and verdict digit are always overwritten to the
// collector's values". If candidate does not parse as that shape, Adopt
// returns ("", false) and the caller should fall back to Generate.
func Adopt(candidate string, receivedAt time.Time, verdictDigit byte) (string, bool) {
	if !Valid(candidate) {
		return "", false
	}
	date := receivedAt.UTC().Format("060102")
	rewritten := candidate[:len(candidate)-7] + date + string(verdictDigit)
	return rewritten, true
}

// VerdictDigit maps an ACCEPT/DEFER outcome to its encoded digit. REJECT
// and CONTINUE never reach ID assignment; the Submit Handler passes
// accept=true for FAKEACCEPT, so it is encoded like ACCEPT.
func VerdictDigit(accept bool) byte {
	if accept {
		return DigitAccept
	}
	return DigitDefer
}
