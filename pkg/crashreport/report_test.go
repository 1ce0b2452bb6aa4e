package crashreport

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotateAddsCollectorFields(t *testing.T) {
	r := New(time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC))
	r.ID = "de305d54-75b4-431b-adb2-eb6b9e546013260731260"
	r.PayloadKind = PayloadKindMultipart
	r.Dumps[PrimaryDumpName] = []byte("ABC")

	r.Annotate()

	assert.Equal(t, r.ID, r.Annotations[AnnotationUUID])
	assert.Equal(t, TypeTagBreakpad, r.Annotations[AnnotationTypeTag])
	assert.Equal(t, "multipart", r.Annotations[AnnotationPayload])
	assert.Equal(t, "0", r.Annotations[AnnotationPayloadCompress])
	assert.NotEmpty(t, r.Annotations[AnnotationSubmittedTS])
	assert.NotEmpty(t, r.Annotations[AnnotationTimestamp])

	checksums := r.Dumps.Checksums()
	wantSha := checksums[PrimaryDumpName]
	assert.Equal(t, wantSha, r.Annotations[AnnotationMinidumpSha256])

	var stored map[string]string
	require.NoError(t, json.Unmarshal([]byte(r.Annotations[AnnotationDumpChecksums]), &stored))
	assert.Equal(t, wantSha, stored[PrimaryDumpName])
}

func TestAnnotateWithoutMinidumpIsEmpty(t *testing.T) {
	r := New(time.Now())
	r.ID = "x"
	r.Annotate()
	assert.Equal(t, "", r.Annotations[AnnotationMinidumpSha256])
}

func TestChecksumsMatchDumpBytes(t *testing.T) {
	d := Dumps{"upload_file_minidump": []byte("hello")}
	sums := d.Checksums()
	require.Contains(t, sums, "upload_file_minidump")
	assert.Len(t, sums["upload_file_minidump"], 64)
}

func TestAnnotationsCloneIsIndependent(t *testing.T) {
	a := Annotations{"ProductName": "Firefox"}
	b := a.Clone()
	b["ProductName"] = "Thunderbird"
	assert.Equal(t, "Firefox", a["ProductName"])
}
