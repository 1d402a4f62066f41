package summarizer

import (
	"strings"

	"github.com/adit301104/DrData/internal"
)

const (
	DefaultPros           = "Qualified medical professional"
	DefaultCons           = "No major concerns identified"
	DefaultRecommendation = "Consult for your medical needs"
)

// ParseResponse reads PROS:, CONS: and RECOMMENDATION: lines. Labels are case-sensitive and must
// start the line; a later line with the same label wins.
func ParseResponse(content string) internal.Summary {
	var out internal.Summary
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "PROS:"):
			out.Pros = strings.TrimSpace(strings.TrimPrefix(line, "PROS:"))
		case strings.HasPrefix(line, "CONS:"):
			out.Cons = strings.TrimSpace(strings.TrimPrefix(line, "CONS:"))
		case strings.HasPrefix(line, "RECOMMENDATION:"):
			out.Recommendation = strings.TrimSpace(strings.TrimPrefix(line, "RECOMMENDATION:"))
		}
	}

	if out.Pros == "" {
		out.Pros = DefaultPros
	}
	if out.Cons == "" {
		out.Cons = DefaultCons
	}
	if out.Recommendation == "" {
		out.Recommendation = DefaultRecommendation
	}
	return out
}
