package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adit301104/DrData/internal"
)

func TestExportAndReadBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "healthcare_doctors.xlsx")
	rec := internal.DoctorRecord{
		Name:              "Dr. Asha Kulkarni",
		Specialty:         "Cardiology",
		ClinicOrHospital:  "Heart Care Clinic",
		Address:           "12, Baner Road, Pune - 411045",
		YearsOfExperience: 15,
		Phone:             "+91 9876543210",
		Email:             "asha.kulkarni@gmail.com",
		Rating:            4.6,
		ReviewsCount:      120,
		Summary:           internal.Summary{Pros: "Kind", Cons: "Busy", Recommendation: "Visit"},
		Source:            "Practo",
		Area:              "baner",
	}

	require.NoError(t, ExportRecordsToXLSX([]internal.DoctorRecord{rec}, path))
	require.NoError(t, ExportRecordsToXLSX([]internal.DoctorRecord{rec, rec}, path))

	got, err := ReadRecordsFromXLSX(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rec, got[0])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExportEmptyWritesHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, ExportRecordsToXLSX(nil, path))

	got, err := ReadRecordsFromXLSX(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseSummaryCell(t *testing.T) {
	s := ParseSummaryCell("PROS: a | CONS: b | RECOMMENDATION: c")
	assert.Equal(t, internal.Summary{Pros: "a", Cons: "b", Recommendation: "c"}, s)
	assert.Equal(t, internal.Summary{}, ParseSummaryCell(""))
}

func TestWriteMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraping_metadata.json")
	meta := Metadata{TotalDoctors: 2, ScrapingDate: "2026-10-19T10:00:00Z", SuccessCount: 3, FailedURLs: 21,
		DuplicatesRemoved: 1, Areas: []string{"baner"}, Specialties: []string{"cardiology"}, ExportFile: "x.xlsx"}
	require.NoError(t, WriteMetadata(meta, path))

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(blob, &raw))
	for _, key := range []string{"total_doctors", "scraping_date", "success_count", "failed_urls", "duplicates_removed", "areas", "specialties", "export_file"} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, float64(21), raw["failed_urls"])
}
