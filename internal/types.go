package internal

import "fmt"

type Summary struct {
	Pros           string `json:"pros"`
	Cons           string `json:"cons"`
	Recommendation string `json:"recommendation"`
}

func (s Summary) String() string {
	return fmt.Sprintf("PROS: %s | CONS: %s | RECOMMENDATION: %s", s.Pros, s.Cons, s.Recommendation)
}

// Fragments is the raw text found for one listing. Nil means the field was not found.
type Fragments struct {
	Name       *string
	Clinic     *string
	Address    *string
	Phone      *string
	Rating     *string
	Experience *string
	Reviews    *string
	Specialty  *string
	Area       *string
}

type DoctorRecord struct {
	Name              string  `json:"name"`
	Specialty         string  `json:"specialty"`
	ClinicOrHospital  string  `json:"clinic_or_hospital"`
	Address           string  `json:"address"`
	YearsOfExperience int     `json:"years_of_experience"`
	Phone             string  `json:"phone"`
	Email             string  `json:"email"`
	Rating            float64 `json:"rating"`
	ReviewsCount      int     `json:"reviews_count"`
	Summary           Summary `json:"summary"`
	Source            string  `json:"source"`
	Area              string  `json:"area"`
}

type FetchAttempt struct {
	TraceID   string
	URL       string
	Provider  string
	Area      string
	Specialty string
	OK        bool
	Records   int
	Error     string
}

type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
)

type RunCounts struct {
	TotalRecords      int `json:"total_records"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	SuccessCount      int `json:"success_count"`
	FailedURLs        int `json:"failed_urls"`
}

type RunRow struct {
	ID           int
	TraceID      string
	StartedAt    string
	FinishedAt   *string
	Status       RunStatus
	Counts       RunCounts
	ExportPath   *string
	ErrorMessage *string
}

type AttemptStats struct {
	Attempts int
	OK       int
	Failed   int
	Records  int
}
