package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mozilla-services/antenna/pkg/crashreport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWritesCanonicalObjects(t *testing.T) {
	dir := t.TempDir()
	store, err := New(Config{RootDir: dir})
	require.NoError(t, err)

	report := crashreport.New(time.Now())
	report.ID = "de305d54-75b4-431b-adb2-eb6b9e2607310"
	report.Annotations["ProductName"] = "Firefox"
	report.Dumps["upload_file_minidump"] = []byte("dumpdata")
	report.OriginalFilenames["upload_file_minidump"] = "minidump.dmp"

	outcome := store.Save(context.Background(), report)
	assert.Equal(t, 0, int(outcome))

	rawKey, idxKey := "v2/raw_crash/de3/20260731/"+report.ID, "v1/dump_names/"+report.ID
	rawData, err := os.ReadFile(filepath.Join(dir, rawKey))
	require.NoError(t, err)
	var ann map[string]string
	require.NoError(t, json.Unmarshal(rawData, &ann))
	assert.Equal(t, "Firefox", ann["ProductName"])

	idxData, err := os.ReadFile(filepath.Join(dir, idxKey))
	require.NoError(t, err)
	var idx map[string]*string
	require.NoError(t, json.Unmarshal(idxData, &idx))
	require.Contains(t, idx, "upload_file_minidump")
	assert.Equal(t, "minidump.dmp", *idx["upload_file_minidump"])

	dumpData, err := os.ReadFile(filepath.Join(dir, "v1/dump/"+report.ID))
	require.NoError(t, err)
	assert.Equal(t, []byte("dumpdata"), dumpData)
}

func TestVerifyLeavesNoGarbage(t *testing.T) {
	dir := t.TempDir()
	store, err := New(Config{RootDir: dir})
	require.NoError(t, err)

	require.NoError(t, store.Verify(context.Background()))

	_, err = os.Stat(filepath.Join(dir, "verify-probe"))
	assert.True(t, os.IsNotExist(err))
}

func TestNewRequiresRootDir(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
