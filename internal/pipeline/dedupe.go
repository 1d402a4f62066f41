package pipeline

import "github.com/adit301104/DrData/internal"

// Dedupe keeps the first record for every name and reports how many were dropped.
func Dedupe(records []internal.DoctorRecord) ([]internal.DoctorRecord, int) {
	seen := make(map[string]struct{}, len(records))
	out := make([]internal.DoctorRecord, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.Name]; ok {
			continue
		}
		seen[rec.Name] = struct{}{}
		out = append(out, rec)
	}
	return out, len(records) - len(out)
}
