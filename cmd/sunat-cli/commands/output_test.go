package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"sunatscraper/lib/archive"
	"sunatscraper/lib/scrapers/sunat/extract"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string {
	return &s
}

var sampleRecord = extract.Record{
	RUC:    ptr("20100070970"),
	Name:   ptr("SUPERMERCADOS PERUANOS SOCIEDAD ANONIMA"),
	Status: ptr("ACTIVO"),
}

func TestRenderRecordsTable(t *testing.T) {
	var out bytes.Buffer
	err := renderRecords(&out, []extract.Record{sampleRecord, {}}, false)
	require.NoError(t, err)

	text := out.String()
	require.Contains(t, text, "20100070970")
	require.Contains(t, text, "ACTIVO")
	// missing fields are dashed, records that were not found are skipped
	require.Contains(t, text, " - ")
	require.Equal(t, 1, bytes.Count(out.Bytes(), []byte("20100070970")))
}

func TestRenderRecordsJSON(t *testing.T) {
	var out bytes.Buffer
	err := renderRecords(&out, []extract.Record{sampleRecord}, true)
	require.NoError(t, err)

	var decoded []extract.Record
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Empty(t, cmp.Diff([]extract.Record{sampleRecord}, decoded))
}

func TestRenderResults(t *testing.T) {
	var out bytes.Buffer
	err := renderResults(&out, []extract.SearchResult{
		{RUC: "10406412345", Name: ptr("PEREZ GOMEZ JUAN"), Location: ptr("LIMA - LIMA - MIRAFLORES")},
	}, false)
	require.NoError(t, err)
	require.Contains(t, out.String(), "10406412345")
	require.Contains(t, out.String(), "LIMA - LIMA - MIRAFLORES")
}

func TestPrintRecordsNotFound(t *testing.T) {
	err := printRecords(context.Background(), extract.Record{})
	require.ErrorIs(t, err, errNotFound)
	require.ErrorIs(t, printResults(nil), errNotFound)
}

func TestArchiveRecords(t *testing.T) {
	dbPath = filepath.Join(t.TempDir(), "records.db")
	t.Cleanup(func() { dbPath = "" })

	ctx := context.Background()
	require.NoError(t, archiveRecords(ctx, []extract.Record{sampleRecord}))

	db, err := archive.Open(ctx, dbPath)
	require.NoError(t, err)
	defer db.Close()
	entry, err := db.Get(ctx, "20100070970")
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(sampleRecord, entry.Record))
}

func TestNewSolverRequiresOne(t *testing.T) {
	if _, err := newSolver(); err == nil {
		t.Skip("tesseract is compiled in")
	}
	manualCaptcha = true
	t.Cleanup(func() { manualCaptcha = false })
	solver, err := newSolver()
	require.NoError(t, err)
	require.NotNil(t, solver)
}
