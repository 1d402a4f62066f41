package pipeline

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/adit301104/DrData/internal"
)

var ExportHeaders = []string{
	"Name", "Specialty", "Clinic/Hospital", "Address", "Years of Experience", "Contact Number",
	"Email", "Rating", "Reviews Count", "Summary", "Source", "Area",
}

// Metadata is written next to the export.
type Metadata struct {
	TotalDoctors      int      `json:"total_doctors"`
	ScrapingDate      string   `json:"scraping_date"`
	SuccessCount      int      `json:"success_count"`
	FailedURLs        int      `json:"failed_urls"`
	DuplicatesRemoved int      `json:"duplicates_removed"`
	Areas             []string `json:"areas"`
	Specialties       []string `json:"specialties"`
	ExportFile        string   `json:"export_file"`
}

// ExportRecordsToXLSX replaces outputPath with a fresh workbook. Readers never see a partial file.
func ExportRecordsToXLSX(records []internal.DoctorRecord, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range ExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range records {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, rec.Name)
		set(2, rec.Specialty)
		set(3, rec.ClinicOrHospital)
		set(4, rec.Address)
		set(5, rec.YearsOfExperience)
		set(6, rec.Phone)
		set(7, rec.Email)
		set(8, rec.Rating)
		set(9, rec.ReviewsCount)
		set(10, rec.Summary.String())
		set(11, rec.Source)
		set(12, rec.Area)
	}

	return writeFileAtomic(outputPath, func(w io.Writer) error {
		return f.Write(w)
	})
}

// ReadRecordsFromXLSX loads a workbook written by ExportRecordsToXLSX. Columns are found by header.
func ReadRecordsFromXLSX(path string) ([]internal.DoctorRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, eris.Wrapf(err, "read rows %s", path)
	}
	if len(rows) == 0 {
		return []internal.DoctorRecord{}, nil
	}

	idx := map[string]int{}
	for i, h := range rows[0] {
		idx[strings.TrimSpace(h)] = i
	}
	if _, ok := idx["Name"]; !ok {
		return nil, eris.Errorf("%s has no Name column", path)
	}
	cell := func(row []string, header string) string {
		i, ok := idx[header]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]internal.DoctorRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := cell(row, "Name")
		if name == "" {
			continue
		}
		exp, _ := strconv.Atoi(cell(row, "Years of Experience"))
		rating, _ := strconv.ParseFloat(cell(row, "Rating"), 64)
		reviews, _ := strconv.Atoi(cell(row, "Reviews Count"))
		out = append(out, internal.DoctorRecord{
			Name:              name,
			Specialty:         cell(row, "Specialty"),
			ClinicOrHospital:  cell(row, "Clinic/Hospital"),
			Address:           cell(row, "Address"),
			YearsOfExperience: exp,
			Phone:             cell(row, "Contact Number"),
			Email:             cell(row, "Email"),
			Rating:            rating,
			ReviewsCount:      reviews,
			Summary:           ParseSummaryCell(cell(row, "Summary")),
			Source:            cell(row, "Source"),
			Area:              cell(row, "Area"),
		})
	}
	return out, nil
}

// ParseSummaryCell reverses Summary.String.
func ParseSummaryCell(value string) internal.Summary {
	var s internal.Summary
	for _, part := range strings.Split(value, " | ") {
		switch {
		case strings.HasPrefix(part, "PROS: "):
			s.Pros = strings.TrimPrefix(part, "PROS: ")
		case strings.HasPrefix(part, "CONS: "):
			s.Cons = strings.TrimPrefix(part, "CONS: ")
		case strings.HasPrefix(part, "RECOMMENDATION: "):
			s.Recommendation = strings.TrimPrefix(part, "RECOMMENDATION: ")
		}
	}
	return s
}

func WriteMetadata(meta Metadata, outputPath string) error {
	blob, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encode metadata")
	}
	return writeFileAtomic(outputPath, func(w io.Writer) error {
		_, err := w.Write(blob)
		return err
	})
}

func writeFileAtomic(outputPath string, write func(io.Writer) error) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outputPath)+".*.tmp")
	if err != nil {
		return eris.Wrap(err, "create temp file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return eris.Wrapf(err, "write %s", outputPath)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return eris.Wrapf(err, "chmod %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "close %s", tmpPath)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		return eris.Wrapf(err, "rename to %s", outputPath)
	}
	return nil
}
