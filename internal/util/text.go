package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	reSpaces    = regexp.MustCompile(`\s+`)
	reNonLetter = regexp.MustCompile(`[^a-z\s]`)
	reHonorific = regexp.MustCompile(`(?i)^(dr|doctor)\b\.?\s*`)
)

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// TitleCase turns a slug such as "general-medicine" into "General Medicine".
func TitleCase(input string) string {
	s := NormalizeSpaces(strings.ReplaceAll(input, "-", " "))
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ToLower(s))
}

// StripHonorific removes a leading "Dr", "Dr." or "Doctor" word.
func StripHonorific(name string) string {
	return strings.TrimSpace(reHonorific.ReplaceAllString(strings.TrimSpace(name), ""))
}

// NameTokens returns the lower-cased letter-only words of a name without its honorific.
func NameTokens(name string) []string {
	s := strings.ToLower(StripHonorific(NormalizeSpaces(name)))
	s = reNonLetter.ReplaceAllString(s, "")
	return strings.Fields(s)
}

func DigitsOnly(input string) string {
	out := strings.Builder{}
	for _, r := range input {
		if r >= '0' && r <= '9' {
			out.WriteRune(r)
		}
	}
	return out.String()
}

func ContainsAny(input string, needles ...string) bool {
	lower := strings.ToLower(input)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

func StringPtr(s string) *string {
	return &s
}

func Deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
