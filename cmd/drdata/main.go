package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/adit301104/DrData/internal/config"
	"github.com/adit301104/DrData/internal/logging"
	"github.com/adit301104/DrData/internal/pipeline"
	"github.com/adit301104/DrData/internal/scheduler"
	"github.com/adit301104/DrData/internal/storage"
	"github.com/adit301104/DrData/internal/util"
)

var errUsage = errors.New("unknown or missing command")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	cancel()
	if errors.Is(err, errUsage) {
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run executes one command. Every resource it opens is released before it returns.
func run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	cmd := args[0]
	switch cmd {
	case "sweep":
		sweeper, closeFetcher, err := pipeline.NewSweeperFromConfig(cfg, db, logger)
		if err != nil {
			return err
		}
		defer closeFetcher()
		res, err := sweeper.Run(ctx)
		if err != nil {
			return err
		}
		printResult(res)
	case "batch":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		area := fs.String("area", "", "area slug, e.g. baner")
		specialty := fs.String("specialty", "", "specialty slug, e.g. cardiology")
		out := fs.String("out", "", "output xlsx path")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if strings.TrimSpace(*area) == "" || strings.TrimSpace(*specialty) == "" {
			return fmt.Errorf("--area and --specialty are required")
		}
		if strings.TrimSpace(*out) != "" {
			cfg.OutputDir = filepath.Dir(*out)
			cfg.ExportFile = filepath.Base(*out)
		}
		sweeper, closeFetcher, err := pipeline.NewSweeperFromConfig(cfg, db, logger)
		if err != nil {
			return err
		}
		defer closeFetcher()
		res, err := sweeper.RunBatch(ctx, strings.ToLower(*area), strings.ToLower(*specialty))
		if err != nil {
			return err
		}
		printResult(res)
	case "annotate":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		in := fs.String("in", cfg.ExportPath(), "input xlsx path")
		out := fs.String("out", "", "output xlsx path (defaults to --in)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if strings.TrimSpace(*out) == "" {
			*out = *in
		}
		records, err := pipeline.ReadRecordsFromXLSX(*in)
		if err != nil {
			return err
		}
		annotated := pipeline.NewAnnotatorFromConfig(cfg, logger).AnnotateAll(ctx, records)
		if err := pipeline.ExportRecordsToXLSX(annotated, *out); err != nil {
			return err
		}
		fmt.Printf("annotated %d records to %s\n", len(annotated), *out)
	case "runs":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		limit := fs.Int("limit", 10, "number of runs")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		runs, err := db.ListRuns(*limit)
		if err != nil {
			return err
		}
		for _, r := range runs {
			stats, err := db.RunAttemptStats(r.TraceID)
			if err != nil {
				return err
			}
			fmt.Printf("%s status=%s started=%s finished=%s records=%d duplicates=%d attempts=%d ok=%d failed=%d",
				r.TraceID, r.Status, r.StartedAt, util.Deref(r.FinishedAt), r.Counts.TotalRecords,
				r.Counts.DuplicatesRemoved, stats.Attempts, stats.OK, stats.Failed)
			if r.ErrorMessage != nil {
				fmt.Printf(" error=%q", *r.ErrorMessage)
			}
			fmt.Println()
		}
	case "watch":
		sweeper, closeFetcher, err := pipeline.NewSweeperFromConfig(cfg, db, logger)
		if err != nil {
			return err
		}
		defer closeFetcher()
		svc := scheduler.NewService(sweeper, time.Duration(cfg.SweepIntervalHours)*time.Hour, logger)
		return svc.Run(ctx)
	default:
		return errUsage
	}
	return nil
}

func printResult(res pipeline.SweepResult) {
	fmt.Printf("sweep done trace=%s records=%d duplicates_removed=%d success=%d failed_urls=%d export=%s\n",
		res.TraceID, len(res.Records), res.DuplicatesRemoved, res.SuccessCount, res.FailedURLs, res.ExportPath)
	printCounts("by source", res.Stats.Sources)
	printCounts("by specialty", res.Stats.Specialties)
	printCounts("by area", res.Stats.Areas)
}

func printCounts(title string, counts map[string]int) {
	fmt.Println(title + ":")
	for _, k := range pipeline.SortedKeys(counts) {
		fmt.Printf("  %-20s %d\n", k, counts[k])
	}
}

func usage() {
	fmt.Println("usage: drdata <command>")
	fmt.Println("commands:")
	fmt.Println("  sweep")
	fmt.Println("  batch --area=baner --specialty=cardiology [--out=./out/baner.xlsx]")
	fmt.Println("  annotate --in=healthcare_doctors.xlsx [--out=annotated.xlsx]")
	fmt.Println("  runs [--limit=10]")
	fmt.Println("  watch")
}
