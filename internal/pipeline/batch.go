package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/adit301104/DrData/internal"
	"github.com/adit301104/DrData/internal/fetch"
	"github.com/adit301104/DrData/internal/logging"
	"github.com/adit301104/DrData/internal/util"
)

// Provider is an upstream directory site and its listing URL templates.
type Provider struct {
	Name      string
	Match     string
	Templates []string
}

var Providers = []Provider{
	{Name: "Practo", Match: "practo", Templates: []string{
		"https://www.practo.com/{city}/{area}/{specialty}",
		"https://www.practo.com/{city}/{specialty}",
		"https://www.practo.com/{city}/{area}",
	}},
	{Name: "JustDial", Match: "justdial", Templates: []string{
		"https://www.justdial.com/{city}/{specialty}-doctors-in-{area}",
		"https://www.justdial.com/{city}/{area}-{specialty}",
		"https://www.justdial.com/{city}/{specialty}-doctors",
	}},
	{Name: "1mg", Match: "1mg", Templates: []string{
		"https://www.1mg.com/doctors/{city}/{area}",
		"https://www.1mg.com/doctors/{city}/{specialty}",
	}},
	{Name: "Lybrate", Match: "lybrate", Templates: []string{
		"https://www.lybrate.com/{city}/{specialty}-doctors",
		"https://www.lybrate.com/{city}/{area}/{specialty}-doctors",
	}},
	{Name: "Apollo", Match: "apollo", Templates: []string{
		"https://www.apollohospitals.com/doctors/{city}/{area}",
		"https://www.apollohospitals.com/doctors/{city}/{specialty}",
	}},
}

// SourceFromURL maps a URL to its provider name, or "Unknown".
func SourceFromURL(url string) string {
	lower := strings.ToLower(url)
	for _, p := range Providers {
		if strings.Contains(lower, p.Match) {
			return p.Name
		}
	}
	return "Unknown"
}

type Candidate struct {
	Provider string
	URL      string
}

type BatchOptions struct {
	City         string
	RequestDelay time.Duration
	MaxListings  int
}

type BatchResult struct {
	Records  []internal.DoctorRecord
	Attempts []internal.FetchAttempt
	Failed   int
}

// BatchNormalizer collects the records for one (area, specialty) pair across all provider URLs.
type BatchNormalizer struct {
	fetcher     fetch.Fetcher
	synth       *Synthesizer
	limiter     *rate.Limiter
	city        string
	maxListings int
	logger      *zap.Logger
}

func NewBatchNormalizer(fetcher fetch.Fetcher, synth *Synthesizer, opts BatchOptions, logger *zap.Logger) *BatchNormalizer {
	limit := rate.Inf
	if opts.RequestDelay > 0 {
		limit = rate.Every(opts.RequestDelay)
	}
	city := strings.ToLower(strings.TrimSpace(opts.City))
	if city == "" {
		city = "pune"
	}
	return &BatchNormalizer{
		fetcher:     fetcher,
		synth:       synth,
		limiter:     rate.NewLimiter(limit, 1),
		city:        city,
		maxListings: opts.MaxListings,
		logger:      logging.OrNop(logger),
	}
}

func (b *BatchNormalizer) CandidateURLs(area, specialty string) []Candidate {
	repl := strings.NewReplacer("{city}", b.city, "{area}", area, "{specialty}", specialty)
	out := []Candidate{}
	for _, p := range Providers {
		for _, tpl := range p.Templates {
			out = append(out, Candidate{Provider: p.Name, URL: repl.Replace(tpl)})
		}
	}
	return out
}

// NormalizeBatch walks every candidate URL once. Fetch failures are counted and skipped; the only
// error returned is context cancellation.
func (b *BatchNormalizer) NormalizeBatch(ctx context.Context, area, specialty string) (BatchResult, error) {
	result := BatchResult{Records: []internal.DoctorRecord{}}
	specialtyLabel := util.TitleCase(specialty)

	for _, c := range b.CandidateURLs(area, specialty) {
		if err := b.limiter.Wait(ctx); err != nil {
			return result, err
		}

		attempt := internal.FetchAttempt{URL: c.URL, Provider: c.Provider, Area: area, Specialty: specialty}
		html, err := b.fetcher.Fetch(ctx, c.URL)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			b.logger.Warn("fetch failed", zap.String("url", c.URL), zap.Error(err))
			attempt.Error = err.Error()
			result.Attempts = append(result.Attempts, attempt)
			result.Failed++
			continue
		}

		page := b.recordsFromPage(html, c.URL, area, specialtyLabel)
		attempt.OK = true
		attempt.Records = len(page)
		result.Attempts = append(result.Attempts, attempt)
		result.Records = append(result.Records, page...)
		b.logger.Info("page extracted", zap.String("url", c.URL), zap.Int("records", len(page)))
	}
	return result, nil
}

func (b *BatchNormalizer) recordsFromPage(html, url, area, specialtyLabel string) []internal.DoctorRecord {
	out := []internal.DoctorRecord{}
	source := SourceFromURL(url)
	for _, frag := range ExtractPage(html, b.city, b.maxListings) {
		frag.Specialty = util.StringPtr(specialtyLabel)
		frag.Area = util.StringPtr(area)
		rec, ok := b.synth.Synthesize(frag)
		if !ok {
			continue
		}
		rec.Source = source
		rec.Specialty = specialtyLabel
		rec.Area = area
		rec.Address = b.synth.RepairAddress(rec.Address, area)
		out = append(out, rec)
	}
	return out
}
