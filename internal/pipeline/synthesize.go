package pipeline

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/adit301104/DrData/internal"
	"github.com/adit301104/DrData/internal/config"
	"github.com/adit301104/DrData/internal/summarizer"
	"github.com/adit301104/DrData/internal/util"
)

var emailDomains = []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com"}

// Synthesizer turns fragments into complete records, inventing whatever is missing.
type Synthesizer struct {
	faker *gofakeit.Faker
	city  string
	state string
}

// NewSynthesizer uses faker for every random choice. A nil faker gets a randomly seeded one.
func NewSynthesizer(faker *gofakeit.Faker, city, state string) *Synthesizer {
	if faker == nil {
		faker = gofakeit.New(0)
	}
	if strings.TrimSpace(city) == "" {
		city = "pune"
	}
	if strings.TrimSpace(state) == "" {
		state = "Maharashtra"
	}
	return &Synthesizer{faker: faker, city: util.TitleCase(city), state: state}
}

// Synthesize returns false when no usable name was found.
func (s *Synthesizer) Synthesize(frag internal.Fragments) (internal.DoctorRecord, bool) {
	name := CanonicalName(util.Deref(frag.Name))
	if name == "" {
		return internal.DoctorRecord{}, false
	}

	rating := s.rating(util.Deref(frag.Rating))
	experience := s.experience(util.Deref(frag.Experience))
	area := strings.TrimSpace(util.Deref(frag.Area))

	clinic := util.NormalizeSpaces(util.Deref(frag.Clinic))
	if clinic == "" {
		clinic = name + " Clinic"
	}

	return internal.DoctorRecord{
		Name:              name,
		Specialty:         s.specialty(util.Deref(frag.Specialty)),
		ClinicOrHospital:  clinic,
		Address:           s.RepairAddress(util.Deref(frag.Address), area),
		YearsOfExperience: experience,
		Phone:             s.phone(util.Deref(frag.Phone)),
		Email:             s.email(name),
		Rating:            rating,
		ReviewsCount:      s.reviews(util.Deref(frag.Reviews)),
		Summary:           summarizer.Fallback(rating, experience),
		Source:            "Unknown",
		Area:              area,
	}, true
}

// CanonicalName collapses whitespace and makes the name start with "Dr. ".
// It returns "" when nothing but an honorific is left.
func CanonicalName(raw string) string {
	name := util.NormalizeSpaces(raw)
	bare := util.StripHonorific(name)
	if bare == "" {
		return ""
	}
	return "Dr. " + bare
}

func (s *Synthesizer) phone(raw string) string {
	digits := util.DigitsOnly(raw)
	if len(digits) >= 10 {
		return "+91 " + digits[len(digits)-10:]
	}
	b := strings.Builder{}
	b.WriteString(fmt.Sprint(s.faker.Number(6, 9)))
	for i := 0; i < 9; i++ {
		b.WriteString(fmt.Sprint(s.faker.Number(0, 9)))
	}
	return "+91 " + b.String()
}

func (s *Synthesizer) rating(raw string) float64 {
	if v, ok := util.FirstFloat(raw); ok {
		return util.Round1(util.ClampFloat(v, 0, 5))
	}
	return util.Round1(s.faker.Float64Range(3.5, 4.8))
}

func (s *Synthesizer) experience(raw string) int {
	if v, ok := util.FirstInt(raw); ok {
		return util.ClampInt(v, 0, 40)
	}
	return s.faker.Number(5, 25)
}

func (s *Synthesizer) reviews(raw string) int {
	if v, ok := util.FirstInt(raw); ok && v > 0 {
		return v
	}
	return s.faker.Number(15, 250)
}

func (s *Synthesizer) specialty(raw string) string {
	if v := util.TitleCase(raw); v != "" {
		return v
	}
	return util.TitleCase(s.faker.RandomString(config.DefaultSpecialties))
}

func (s *Synthesizer) email(name string) string {
	tokens := util.NameTokens(name)
	if len(tokens) >= 2 {
		return fmt.Sprintf("%s.%s@%s", tokens[0], tokens[len(tokens)-1], s.faker.RandomString(emailDomains))
	}
	t := "doctor"
	if len(tokens) == 1 {
		t = tokens[0]
	}
	patterns := []string{"dr.%s@gmail.com", "%s.doctor@yahoo.com", "%s@clinic.com"}
	return fmt.Sprintf(s.faker.RandomString(patterns), t)
}
