package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/adit301104/DrData/internal/config"
	"github.com/adit301104/DrData/internal/logging"
	"github.com/adit301104/DrData/internal/pipeline"
	"github.com/adit301104/DrData/internal/storage"
	"github.com/adit301104/DrData/internal/util"
)

type successDocument struct {
	Status           string   `json:"status"`
	TotalDoctors     int      `json:"total_doctors"`
	Filename         string   `json:"filename"`
	LogFile          string   `json:"log_file,omitempty"`
	Timestamp        string   `json:"timestamp"`
	AreasCovered     []string `json:"areas_covered"`
	SpecialtiesDone  []string `json:"specialties_done"`
	DataSources      []string `json:"data_sources"`
	DoctorInfoFields []string `json:"doctor_info_fields"`
}

type failureDocument struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	LogFile      string `json:"log_file,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// stdout carries exactly one JSON document; everything else goes to stderr or the log file.
func main() {
	doc, code := safeRun(run)
	_ = json.NewEncoder(os.Stdout).Encode(doc)
	os.Exit(code)
}

func safeRun(fn func() (any, int)) (doc any, code int) {
	defer func() {
		if r := recover(); r != nil {
			doc, code = failure(fmt.Errorf("panic: %v", r), ""), 1
		}
	}()
	return fn()
}

func run() (any, int) {
	cfg, err := config.Load()
	if err != nil {
		return failure(err, ""), 1
	}
	if strings.TrimSpace(cfg.LogFile) == "" {
		cfg.LogFile = filepath.Join(cfg.OutputDir, "logs", "doctor_scraping_"+time.Now().Format("20060102_150405")+".log")
	}

	logger, err := logging.New(cfg)
	if err != nil {
		return failure(err, cfg.LogFile), 1
	}
	defer logger.Sync()

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open ledger failed", zap.Error(err))
		return failure(err, cfg.LogFile), 1
	}
	defer db.Close()

	sweeper, closeFetcher, err := pipeline.NewSweeperFromConfig(cfg, db, logger)
	if err != nil {
		logger.Error("build sweeper failed", zap.Error(err))
		return failure(err, cfg.LogFile), 1
	}
	defer closeFetcher()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting doctor data sweep", zap.Strings("areas", cfg.Areas), zap.Strings("specialties", cfg.Specialties))
	res, err := sweeper.Run(ctx)
	if err != nil {
		logger.Error("sweep failed", zap.Error(err))
		return failure(err, cfg.LogFile), 1
	}

	doc := success(res, cfg)
	logger.Info("sweep completed", zap.Int("total_doctors", doc.TotalDoctors), zap.String("filename", doc.Filename))
	return doc, 0
}

func success(res pipeline.SweepResult, cfg config.Config) successDocument {
	areas := make([]string, 0, len(cfg.Areas))
	for _, a := range cfg.Areas {
		areas = append(areas, util.TitleCase(a))
	}
	specialties := make([]string, 0, len(cfg.Specialties))
	for _, s := range cfg.Specialties {
		specialties = append(specialties, util.TitleCase(s))
	}
	return successDocument{
		Status:           "success",
		TotalDoctors:     len(res.Records),
		Filename:         filepath.Base(res.ExportPath),
		LogFile:          cfg.LogFile,
		Timestamp:        res.FinishedAt.Format(time.RFC3339),
		AreasCovered:     areas,
		SpecialtiesDone:  specialties,
		DataSources:      pipeline.SortedKeys(res.Stats.Sources),
		DoctorInfoFields: pipeline.ExportHeaders,
	}
}

func failure(err error, logFile string) failureDocument {
	return failureDocument{
		Status:       "failed",
		ErrorMessage: err.Error(),
		LogFile:      logFile,
		Timestamp:    time.Now().Format(time.RFC3339),
	}
}
