package pipeline

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"github.com/adit301104/DrData/internal/config"
	"github.com/adit301104/DrData/internal/fetch"
	"github.com/adit301104/DrData/internal/logging"
	"github.com/adit301104/DrData/internal/summarizer"
)

// NewAnnotatorFromConfig returns an annotator that only calls the remote service when a key is set.
func NewAnnotatorFromConfig(cfg config.Config, logger *zap.Logger) *summarizer.Annotator {
	logger = logging.OrNop(logger)
	if !cfg.AIEnabled {
		logger.Info("summary service disabled, using rule-based summaries")
		return summarizer.NewAnnotator(nil, logger)
	}
	if err := cfg.Require("GROQ_API_KEY", cfg.AIAPIKey); err != nil {
		logger.Warn("summary service enabled without a key, using rule-based summaries", zap.Error(err))
		return summarizer.NewAnnotator(nil, logger)
	}
	return summarizer.NewAnnotator(summarizer.NewClient(cfg), logger)
}

// NewSweeperFromConfig builds the full stack. The returned func releases the fetcher.
func NewSweeperFromConfig(cfg config.Config, ledger Ledger, logger *zap.Logger) (*Sweeper, func(), error) {
	fetcher, closeFetcher, err := fetch.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	synth := NewSynthesizer(gofakeit.New(0), cfg.City, cfg.State)
	batch := NewBatchNormalizer(fetcher, synth, BatchOptions{
		City:         cfg.City,
		RequestDelay: time.Duration(cfg.RequestDelayMs) * time.Millisecond,
		MaxListings:  cfg.MaxListingsPerPage,
	}, logger)

	sweeper := NewSweeper(batch, NewAnnotatorFromConfig(cfg, logger), ledger, SweepOptions{
		Areas:           cfg.Areas,
		Specialties:     cfg.Specialties,
		ExportPath:      cfg.ExportPath(),
		MetadataPath:    cfg.MetadataPath(),
		CheckpointEvery: cfg.CheckpointEvery,
	}, logger)
	return sweeper, closeFetcher, nil
}
