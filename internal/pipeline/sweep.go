package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/adit301104/DrData/internal"
	"github.com/adit301104/DrData/internal/logging"
)

// Ledger records sweep bookkeeping. storage.DB implements it.
type Ledger interface {
	StartRun(traceID string) error
	FinishRun(traceID string, status internal.RunStatus, counts internal.RunCounts, exportPath, errorMessage *string) error
	InsertFetchAttempt(a internal.FetchAttempt) error
	SetMetadata(key, value string) error
}

type Annotator interface {
	AnnotateAll(ctx context.Context, records []internal.DoctorRecord) []internal.DoctorRecord
}

const LastSuccessKey = "sweep.last_success"

type SweepOptions struct {
	Areas           []string
	Specialties     []string
	ExportPath      string
	MetadataPath    string
	CheckpointEvery int
}

type Distribution struct {
	Sources     map[string]int
	Specialties map[string]int
	Areas       map[string]int
}

type SweepResult struct {
	TraceID           string
	Records           []internal.DoctorRecord
	DuplicatesRemoved int
	SuccessCount      int
	FailedURLs        int
	ExportPath        string
	MetadataPath      string
	FinishedAt        time.Time
	Stats             Distribution
}

type pair struct {
	area      string
	specialty string
}

// Sweeper owns the records and counters of one sweep. It is not safe for concurrent use.
type Sweeper struct {
	batch     *BatchNormalizer
	annotator Annotator
	ledger    Ledger
	opts      SweepOptions
	logger    *zap.Logger
	now       func() time.Time

	records      []internal.DoctorRecord
	successCount int
	failedURLs   int
}

// NewSweeper wires the stages together. annotator and ledger may be nil.
func NewSweeper(batch *BatchNormalizer, annotator Annotator, ledger Ledger, opts SweepOptions, logger *zap.Logger) *Sweeper {
	if opts.CheckpointEvery <= 0 {
		opts.CheckpointEvery = 3
	}
	return &Sweeper{
		batch:     batch,
		annotator: annotator,
		ledger:    ledger,
		opts:      opts,
		logger:    logging.OrNop(logger),
		now:       time.Now,
	}
}

// Run sweeps every configured area and specialty.
func (s *Sweeper) Run(ctx context.Context) (SweepResult, error) {
	pairs := make([]pair, 0, len(s.opts.Areas)*len(s.opts.Specialties))
	for _, area := range s.opts.Areas {
		for _, specialty := range s.opts.Specialties {
			pairs = append(pairs, pair{area: area, specialty: specialty})
		}
	}
	return s.run(ctx, pairs, s.opts.Areas, s.opts.Specialties)
}

// RunBatch sweeps a single pair and exports it like a full sweep.
func (s *Sweeper) RunBatch(ctx context.Context, area, specialty string) (SweepResult, error) {
	return s.run(ctx, []pair{{area: area, specialty: specialty}}, []string{area}, []string{specialty})
}

func (s *Sweeper) run(ctx context.Context, pairs []pair, areas, specialties []string) (SweepResult, error) {
	s.records = []internal.DoctorRecord{}
	s.successCount = 0
	s.failedURLs = 0

	traceID := uuid.NewString()
	logger := s.logger.With(zap.String("trace_id", traceID))
	if s.ledger != nil {
		if err := s.ledger.StartRun(traceID); err != nil {
			return SweepResult{}, err
		}
	}

	result, err := s.collect(ctx, logger, traceID, pairs, areas, specialties)
	if err != nil {
		s.finishRun(logger, traceID, internal.RunFailed, result, err)
		return result, err
	}
	s.finishRun(logger, traceID, internal.RunSuccess, result, nil)
	return result, nil
}

func (s *Sweeper) collect(ctx context.Context, logger *zap.Logger, traceID string, pairs []pair, areas, specialties []string) (SweepResult, error) {
	result := SweepResult{TraceID: traceID, ExportPath: s.opts.ExportPath, MetadataPath: s.opts.MetadataPath}

	for i, p := range pairs {
		logger.Info("sweep progress", zap.Int("current", i+1), zap.Int("total", len(pairs)),
			zap.String("area", p.area), zap.String("specialty", p.specialty))

		batch, err := s.batch.NormalizeBatch(ctx, p.area, p.specialty)
		s.recordAttempts(logger, traceID, batch.Attempts)
		s.records = append(s.records, batch.Records...)
		s.failedURLs += batch.Failed
		s.successCount += len(batch.Attempts) - batch.Failed
		if err != nil {
			result.SuccessCount, result.FailedURLs = s.successCount, s.failedURLs
			return result, eris.Wrapf(err, "sweep %s/%s", p.area, p.specialty)
		}
		logger.Info("batch collected", zap.Int("records", len(batch.Records)), zap.Int("total", len(s.records)))

		if (i+1)%s.opts.CheckpointEvery == 0 && s.opts.ExportPath != "" {
			if err := ExportRecordsToXLSX(s.records, s.opts.ExportPath); err != nil {
				logger.Warn("checkpoint failed", zap.Error(err))
			} else {
				logger.Info("checkpoint saved", zap.Int("records", len(s.records)))
			}
		}
	}

	records, dropped := Dedupe(s.records)
	logger.Info("duplicates removed", zap.Int("dropped", dropped), zap.Int("remaining", len(records)))

	if s.annotator != nil {
		records = s.annotator.AnnotateAll(ctx, records)
	}
	if err := ctx.Err(); err != nil {
		result.SuccessCount, result.FailedURLs = s.successCount, s.failedURLs
		return result, eris.Wrap(err, "sweep interrupted before export")
	}

	result.Records = records
	result.DuplicatesRemoved = dropped
	result.SuccessCount = s.successCount
	result.FailedURLs = s.failedURLs
	result.FinishedAt = s.now()
	result.Stats = Distribute(records)

	if s.opts.ExportPath != "" {
		if err := ExportRecordsToXLSX(records, s.opts.ExportPath); err != nil {
			return result, err
		}
		logger.Info("export written", zap.String("path", s.opts.ExportPath), zap.Int("records", len(records)))
	}
	if s.opts.MetadataPath != "" {
		meta := Metadata{
			TotalDoctors:      len(records),
			ScrapingDate:      result.FinishedAt.Format(time.RFC3339),
			SuccessCount:      result.SuccessCount,
			FailedURLs:        result.FailedURLs,
			DuplicatesRemoved: dropped,
			Areas:             areas,
			Specialties:       specialties,
			ExportFile:        s.opts.ExportPath,
		}
		if err := WriteMetadata(meta, s.opts.MetadataPath); err != nil {
			return result, err
		}
	}

	logDistribution(logger, result.Stats)
	return result, nil
}

func (s *Sweeper) recordAttempts(logger *zap.Logger, traceID string, attempts []internal.FetchAttempt) {
	if s.ledger == nil {
		return
	}
	for _, a := range attempts {
		a.TraceID = traceID
		if err := s.ledger.InsertFetchAttempt(a); err != nil {
			logger.Warn("ledger insert failed", zap.String("url", a.URL), zap.Error(err))
		}
	}
}

func (s *Sweeper) finishRun(logger *zap.Logger, traceID string, status internal.RunStatus, result SweepResult, runErr error) {
	if s.ledger == nil {
		return
	}
	counts := internal.RunCounts{
		TotalRecords:      len(result.Records),
		DuplicatesRemoved: result.DuplicatesRemoved,
		SuccessCount:      result.SuccessCount,
		FailedURLs:        result.FailedURLs,
	}
	var exportPath, errMsg *string
	if status == internal.RunSuccess && result.ExportPath != "" {
		exportPath = &result.ExportPath
	}
	if runErr != nil {
		msg := runErr.Error()
		errMsg = &msg
	}
	if err := s.ledger.FinishRun(traceID, status, counts, exportPath, errMsg); err != nil {
		logger.Warn("ledger finish failed", zap.Error(err))
	}
	if status == internal.RunSuccess {
		if err := s.ledger.SetMetadata(LastSuccessKey, result.FinishedAt.Format(time.RFC3339)); err != nil {
			logger.Warn("ledger metadata failed", zap.Error(err))
		}
	}
}

func Distribute(records []internal.DoctorRecord) Distribution {
	d := Distribution{Sources: map[string]int{}, Specialties: map[string]int{}, Areas: map[string]int{}}
	for _, rec := range records {
		d.Sources[rec.Source]++
		d.Specialties[rec.Specialty]++
		d.Areas[rec.Area]++
	}
	return d
}

// SortedKeys returns map keys by descending count, then name.
func SortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func logDistribution(logger *zap.Logger, d Distribution) {
	logger.Info("records by source", zap.Any("counts", d.Sources))
	logger.Info("records by specialty", zap.Any("counts", d.Specialties))
	logger.Info("records by area", zap.Any("counts", d.Areas))
}
