package summarizer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/adit301104/DrData/internal"
	"github.com/adit301104/DrData/internal/logging"
)

const progressEvery = 10

// Annotator replaces record summaries. Without a client every record gets the fallback tier.
type Annotator struct {
	client Completer
	logger *zap.Logger
}

func NewAnnotator(client Completer, logger *zap.Logger) *Annotator {
	return &Annotator{client: client, logger: logging.OrNop(logger)}
}

func BuildPrompt(rec internal.DoctorRecord) string {
	return fmt.Sprintf(`Analyze this doctor profile and provide pros, cons, and recommendation:

Doctor: %s
Specialty: %s
Experience: %d years
Rating: %.1f
Clinic: %s

Provide response in this exact format:
PROS: [list 2-3 key strengths]
CONS: [list 1-2 concerns or limitations]
RECOMMENDATION: [brief recommendation with reasoning]
`, rec.Name, rec.Specialty, rec.YearsOfExperience, rec.Rating, rec.ClinicOrHospital)
}

// Annotate makes one attempt per record and never fails.
func (a *Annotator) Annotate(ctx context.Context, rec internal.DoctorRecord) internal.DoctorRecord {
	if a.client == nil {
		rec.Summary = Fallback(rec.Rating, rec.YearsOfExperience)
		return rec
	}

	content, err := a.client.Complete(ctx, BuildPrompt(rec))
	if err != nil {
		a.logger.Warn("summary request failed, using fallback", zap.String("name", rec.Name), zap.Error(err))
		rec.Summary = Fallback(rec.Rating, rec.YearsOfExperience)
		return rec
	}
	rec.Summary = ParseResponse(content)
	return rec
}

func (a *Annotator) AnnotateAll(ctx context.Context, records []internal.DoctorRecord) []internal.DoctorRecord {
	out := make([]internal.DoctorRecord, 0, len(records))
	for i, rec := range records {
		out = append(out, a.Annotate(ctx, rec))
		if (i+1)%progressEvery == 0 {
			a.logger.Info("annotation progress", zap.Int("done", i+1), zap.Int("total", len(records)))
		}
	}
	return out
}
