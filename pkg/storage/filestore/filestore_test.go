package filestore_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"quotescraper/internal/quote"
	"quotescraper/pkg/storage/filestore"

	"github.com/stretchr/testify/require"
)

var timestampRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)

// go test -v --run TestWriteRecordRoundTrip
func TestWriteRecordRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "price.json")
	store := filestore.New()

	rec := quote.BuildRecord(quote.Fields{Symbol: "MALEE", Price: 36.5, Change: 0.25, PercentChange: 0.69}, time.Now)
	require.NoError(t, store.WriteRecord(path, rec))

	got, err := store.ReadRecord(path)
	require.NoError(t, err)
	require.Equal(t, rec, got)
	require.Regexp(t, timestampRe, got.Timestamp)
}

// go test -v --run TestWriteRecordLayout
func TestWriteRecordLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "price.json")
	rec := quote.Record{Symbol: "มาลี", Price: 36.5, Change: -0.25, PercentChange: -0.68, Timestamp: "2025-03-05 06:30:15"}

	require.NoError(t, filestore.New().WriteRecord(path, rec))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "{\n" +
		"    \"symbol\": \"มาลี\",\n" +
		"    \"price\": 36.5,\n" +
		"    \"change\": -0.25,\n" +
		"    \"percent_change\": -0.68,\n" +
		"    \"timestamp\": \"2025-03-05 06:30:15\"\n" +
		"}\n"
	require.Equal(t, want, string(data))
}

// go test -v --run TestWriteRecordOverwrites
func TestWriteRecordOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "price.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"stale": true, "padding": "xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"}`), 0644))

	rec := quote.Record{Symbol: "MALEE", Price: 1, Timestamp: "2025-01-01 00:00:00"}
	require.NoError(t, filestore.New().WriteRecord(path, rec))

	var got map[string]any
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &got))
	require.NotContains(t, got, "stale")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

// go test -v --run TestWriteFailure
func TestWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := filestore.New().WriteRecord(filepath.Join(blocker, "price.json"), quote.Record{})
	require.ErrorIs(t, err, filestore.ErrIOFailure)

	err = filestore.New().WriteScreenshot(filepath.Join(blocker, "shot.png"), []byte{0x89, 'P', 'N', 'G'})
	require.ErrorIs(t, err, filestore.ErrIOFailure)

	_, err = filestore.New().ReadRecord(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, filestore.ErrIOFailure)
}
