package idgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateMatchesShape(t *testing.T) {
	when := time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC)
	id := Generate(when, DigitAccept)

	assert.True(t, Valid(id), "generated id %q must match the P1 shape", id)
	assert.Equal(t, byte('0'), id[len(id)-1])
	assert.Contains(t, id, "260731")
}

func TestGenerateDeferEncodesDigit(t *testing.T) {
	when := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	id := Generate(when, DigitDefer)
	assert.True(t, Valid(id))
	assert.Equal(t, byte('1'), id[len(id)-1])
}

func TestGenerateIsUniqueAcrossCalls(t *testing.T) {
	when := time.Now()
	a := Generate(when, DigitAccept)
	b := Generate(when, DigitAccept)
	assert.NotEqual(t, a, b)
}

func TestValidRejectsWrongShapes(t *testing.T) {
	cases := []string{
		"",
		"not-a-uuid",
		"de305d54-75b4-431b-adb2-eb6b9e5460132607310",  // last hex group too long
		"de305d54-75b4-431b-adb2-eb6b9e54601326073129", // invalid month
		"GE305d54-75b4-431b-adb2-eb6b9e546013260731260", // uppercase
	}
	for _, c := range cases {
		assert.False(t, Valid(c), "expected %q to be invalid", c)
	}
}

func TestAdoptRewritesDateAndVerdict(t *testing.T) {
	when := time.Now()
	original := Generate(when.Add(-48*time.Hour), DigitDefer)

	adopted, ok := Adopt(original, when, DigitAccept)
	assert.True(t, ok)
	assert.True(t, Valid(adopted))
	assert.Equal(t, byte('0'), adopted[len(adopted)-1])
	// Random prefix is preserved; only date+verdict are rewritten.
	assert.Equal(t, original[:len(original)-7], adopted[:len(adopted)-7])
	assert.NotEqual(t, original, adopted)
}

func TestAdoptRejectsMalformedCandidate(t *testing.T) {
	_, ok := Adopt("client-supplied-garbage", time.Now(), DigitAccept)
	assert.False(t, ok)
}

func TestVerdictDigit(t *testing.T) {
	assert.Equal(t, byte('0'), VerdictDigit(true))
	assert.Equal(t, byte('1'), VerdictDigit(false))
}
