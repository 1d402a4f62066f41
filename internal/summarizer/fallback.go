package summarizer

import "github.com/adit301104/DrData/internal"

var (
	highlyRecommended = internal.Summary{
		Pros:           "Highly rated with good experience",
		Cons:           "No significant concerns",
		Recommendation: "Highly recommended specialist",
	}
	recommended = internal.Summary{
		Pros:           "Good patient satisfaction",
		Cons:           "Standard consultation fees",
		Recommendation: "Recommended for consultation",
	}
	considerOthers = internal.Summary{
		Pros:           "Available for consultation",
		Cons:           "Limited patient feedback",
		Recommendation: "Consider with other options",
	}
)

// Fallback derives a summary from rating and experience alone.
func Fallback(rating float64, experience int) internal.Summary {
	switch {
	case rating >= 4.5 && experience >= 10:
		return highlyRecommended
	case rating >= 4.0:
		return recommended
	default:
		return considerOthers
	}
}
