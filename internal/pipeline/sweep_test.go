package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adit301104/DrData/internal"
	"github.com/adit301104/DrData/internal/storage"
	"github.com/adit301104/DrData/internal/summarizer"
)

type checkpointProbe struct {
	exportPath string
	seen       int
	inner      Annotator
}

func (p *checkpointProbe) AnnotateAll(ctx context.Context, records []internal.DoctorRecord) []internal.DoctorRecord {
	if snapshot, err := ReadRecordsFromXLSX(p.exportPath); err == nil {
		p.seen = len(snapshot)
	}
	return p.inner.AnnotateAll(ctx, records)
}

type cancellingAnnotator struct {
	cancel context.CancelFunc
}

func (a cancellingAnnotator) AnnotateAll(ctx context.Context, records []internal.DoctorRecord) []internal.DoctorRecord {
	a.cancel()
	return summarizer.NewAnnotator(nil, nil).AnnotateAll(ctx, records)
}

func newTestSweeper(t *testing.T, fetcher *fakeFetcher, annotator Annotator, areas []string) (*Sweeper, *storage.DB, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	opts := SweepOptions{
		Areas:           areas,
		Specialties:     []string{"cardiology"},
		ExportPath:      filepath.Join(dir, "healthcare_doctors.xlsx"),
		MetadataPath:    filepath.Join(dir, "scraping_metadata.json"),
		CheckpointEvery: 1,
	}
	return NewSweeper(newTestBatch(fetcher), annotator, db, opts, nil), db, dir
}

func TestSweepDedupesAnnotatesAndExports(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://www.practo.com/pune/baner/cardiology": listingPage,
		"https://www.practo.com/pune/aundh/cardiology": listingPage,
	}}
	sweeper, db, dir := newTestSweeper(t, fetcher, nil, []string{"baner", "aundh"})
	probe := &checkpointProbe{exportPath: filepath.Join(dir, "healthcare_doctors.xlsx"), inner: summarizer.NewAnnotator(nil, nil)}
	sweeper.annotator = probe

	res, err := sweeper.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, probe.seen)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 2, res.DuplicatesRemoved)
	assert.Equal(t, "baner", res.Records[0].Area)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 22, res.FailedURLs)
	assert.Equal(t, map[string]int{"Practo": 2}, res.Stats.Sources)

	exported, err := ReadRecordsFromXLSX(res.ExportPath)
	require.NoError(t, err)
	assert.Len(t, exported, 2)

	blob, err := os.ReadFile(res.MetadataPath)
	require.NoError(t, err)
	var meta Metadata
	require.NoError(t, json.Unmarshal(blob, &meta))
	assert.Equal(t, 2, meta.TotalDoctors)
	assert.Equal(t, 2, meta.DuplicatesRemoved)
	assert.Equal(t, []string{"baner", "aundh"}, meta.Areas)

	runs, err := db.ListRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, internal.RunSuccess, runs[0].Status)
	assert.Equal(t, res.TraceID, runs[0].TraceID)
	assert.Equal(t, 2, runs[0].Counts.TotalRecords)

	stats, err := db.RunAttemptStats(res.TraceID)
	require.NoError(t, err)
	assert.Equal(t, internal.AttemptStats{Attempts: 24, OK: 2, Failed: 22, Records: 4}, stats)

	last, err := db.GetMetadata(LastSuccessKey)
	require.NoError(t, err)
	assert.NotNil(t, last)
}

func TestSweepContinuesPastFailingPairs(t *testing.T) {
	fetcher := &fakeFetcher{}
	sweeper, _, _ := newTestSweeper(t, fetcher, summarizer.NewAnnotator(nil, nil), []string{"baner", "aundh", "wakad"})

	res, err := sweeper.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, 36, res.FailedURLs)
	assert.Len(t, fetcher.calls, 36)

	exported, err := ReadRecordsFromXLSX(res.ExportPath)
	require.NoError(t, err)
	assert.Empty(t, exported)
}

func TestSweepCancelledMarksRunFailed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sweeper, db, _ := newTestSweeper(t, &fakeFetcher{}, nil, []string{"baner"})
	_, err := sweeper.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	runs, err := db.ListRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, internal.RunFailed, runs[0].Status)
	require.NotNil(t, runs[0].ErrorMessage)
}

func TestSweepInterruptedDuringAnnotationSkipsExport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &fakeFetcher{pages: map[string]string{
		"https://www.practo.com/pune/baner/cardiology": listingPage,
		"https://www.practo.com/pune/aundh/cardiology": listingPage,
	}}
	sweeper, db, _ := newTestSweeper(t, fetcher, cancellingAnnotator{cancel: cancel}, []string{"baner", "aundh"})

	res, err := sweeper.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	// Only the pre-dedupe checkpoint is on disk.
	exported, err := ReadRecordsFromXLSX(res.ExportPath)
	require.NoError(t, err)
	assert.Len(t, exported, 4)
	_, err = os.Stat(res.MetadataPath)
	assert.True(t, os.IsNotExist(err))

	runs, err := db.ListRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, internal.RunFailed, runs[0].Status)
	assert.Nil(t, runs[0].ExportPath)

	last, err := db.GetMetadata(LastSuccessKey)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestRunBatchExportsSinglePair(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://www.practo.com/pune/wakad/dermatology": listingPage,
	}}
	sweeper, _, _ := newTestSweeper(t, fetcher, summarizer.NewAnnotator(nil, nil), []string{"baner", "aundh"})

	res, err := sweeper.RunBatch(context.Background(), "wakad", "dermatology")
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "Dermatology", res.Records[0].Specialty)
	assert.Len(t, fetcher.calls, 12)
	assert.NotEmpty(t, res.Records[0].Summary.Pros)
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, SortedKeys(map[string]int{"a": 1, "b": 3, "c": 1}))
}
