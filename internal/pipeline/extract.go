package pipeline

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/adit301104/DrData/internal"
	"github.com/adit301104/DrData/internal/util"
)

// FieldSelectors holds the ordered candidate selectors for each field of a listing.
type FieldSelectors struct {
	Name       []string
	Clinic     []string
	Address    []string
	Phone      []string
	Rating     []string
	Experience []string
	Reviews    []string
}

var DefaultSelectors = FieldSelectors{
	Name: []string{
		"h3", ".fn", ".jcn a", ".resultbox h3", "[data-jcard] h3", ".store-name", ".jcard h3",
		".doctor-name", ".doc-name", "h2", ".result h3", ".listing h3", "a[title]",
	},
	Clinic: []string{
		".clinic-name", ".hospital-name", ".practice-name", ".store-name", ".result .store-name", ".listing .clinic",
	},
	Address: []string{
		".adr", ".mrehover", ".resultbox .adr", ".store-address", ".address", ".locality", ".result .adr", ".listing .address",
	},
	Phone: []string{
		".tel", ".phone", ".resultbox .tel", "[data-phone]", ".contact-number", ".result .tel", ".listing .phone",
	},
	Rating: []string{
		".rating", ".star-rating", ".jd-rating", ".result .rating", ".listing .rating",
	},
	Experience: []string{
		".experience", ".doc-exp", ".years-of-experience",
	},
	Reviews: []string{
		".reviews", ".review-count", ".votes", ".patient-stories",
	},
}

// CardSelectors are tried in order; the first that matches anything defines the listings.
var CardSelectors = []string{
	".store-details", ".jcn", ".resultbox", ".jcard", "[data-jcard]",
	".doctor-card", ".doc-card", ".listing-item", ".profile-card", ".provider-card",
	".result", ".listing",
}

var (
	rePhone      = regexp.MustCompile(`\+?\d[\d -]{8,14}\d`)
	reRating     = regexp.MustCompile(`(?i)(?:^|[^\d.])(\d\.\d|\d)\s*(?:/\s*5\b|stars?\b)|\brating[: ]+(\d\.\d|\d)\b`)
	reExperience = regexp.MustCompile(`(?i)(\d{1,2})\+?\s*(?:years?|yrs?)`)
	reReviews    = regexp.MustCompile(`(?i)(\d[\d,]*)\s*(?:reviews?|ratings|votes|patient stories)`)
	reDoctorWord = regexp.MustCompile(`(?i)\b(dr|doctor)\b`)
)

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true, "dd": true, "div": true,
	"dl": true, "dt": true, "footer": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "ol": true, "p": true, "section": true,
	"table": true, "td": true, "th": true, "tr": true, "ul": true,
}

// FirstText returns the trimmed text of the first candidate selector that yields non-blank text.
func FirstText(sel *goquery.Selection, candidates []string) (string, bool) {
	if sel == nil || sel.Length() == 0 {
		return "", false
	}
	for _, c := range candidates {
		found := sel.Find(c)
		if found.Length() == 0 {
			continue
		}
		text := util.NormalizeSpaces(found.First().Text())
		if text != "" {
			return text, true
		}
	}
	return "", false
}

// DiscoverListings returns the listing elements of a page, capped at limit when limit > 0.
func DiscoverListings(doc *goquery.Document, limit int) []*goquery.Selection {
	if doc == nil {
		return nil
	}
	var found *goquery.Selection
	for _, c := range CardSelectors {
		s := doc.Find(c)
		if s.Length() > 0 {
			found = s
			break
		}
	}
	if found == nil {
		found = doc.Find("body *").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(ownText(s), "Dr.")
		})
	}

	out := make([]*goquery.Selection, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		if limit > 0 && len(out) >= limit {
			return
		}
		out = append(out, s)
	})
	return out
}

// ExtractFragments pulls raw field text out of one listing. city joins the address keywords.
func ExtractFragments(listing *goquery.Selection, selectors FieldSelectors, city string) internal.Fragments {
	var frag internal.Fragments
	if listing == nil || listing.Length() == 0 {
		return frag
	}

	pick := func(candidates []string) *string {
		if v, ok := FirstText(listing, candidates); ok {
			return util.StringPtr(v)
		}
		return nil
	}

	frag.Name = pick(selectors.Name)
	frag.Clinic = pick(selectors.Clinic)
	frag.Address = pick(selectors.Address)
	frag.Phone = pick(selectors.Phone)
	frag.Rating = pick(selectors.Rating)
	frag.Experience = pick(selectors.Experience)
	frag.Reviews = pick(selectors.Reviews)

	lines := blockLines(listing)
	if frag.Name == nil {
		if name := nameFromLines(lines); name != "" {
			frag.Name = util.StringPtr(name)
		}
	}
	if frag.Clinic == nil {
		if clinic := firstLineWith(lines, frag.Name, "clinic", "hospital", "centre", "center", "medical"); clinic != "" {
			frag.Clinic = util.StringPtr(clinic)
		}
	}
	if frag.Address == nil {
		needles := []string{"road", "street", "nagar", " rd"}
		if c := strings.ToLower(strings.TrimSpace(city)); c != "" {
			needles = append(needles, c)
		}
		if addr := firstLineWith(lines, frag.Name, needles...); addr != "" {
			frag.Address = util.StringPtr(addr)
		}
	}

	// Selector hits without usable digits ("Show Number", "Top rated") fall through to the patterns.
	fullText := strings.Join(lines, "\n")
	if frag.Phone == nil || len(util.DigitsOnly(*frag.Phone)) < 10 {
		if m := rePhone.FindString(fullText); m != "" && len(util.DigitsOnly(m)) >= 10 {
			frag.Phone = util.StringPtr(m)
		}
	}
	if _, ok := util.FirstFloat(util.Deref(frag.Rating)); !ok {
		if m := reRating.FindStringSubmatch(fullText); m != nil {
			frag.Rating = util.StringPtr(firstNonEmpty(m[1:]...))
		}
	}
	if frag.Experience == nil {
		if m := reExperience.FindStringSubmatch(fullText); m != nil {
			frag.Experience = util.StringPtr(m[1])
		}
	}
	if frag.Reviews == nil {
		if m := reReviews.FindStringSubmatch(fullText); m != nil {
			frag.Reviews = util.StringPtr(m[1])
		}
	}
	return frag
}

// ExtractPage parses a page and returns fragments for every listing that has a name.
func ExtractPage(html, city string, maxListings int) []internal.Fragments {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	out := []internal.Fragments{}
	for _, listing := range DiscoverListings(doc, maxListings) {
		frag := ExtractFragments(listing, DefaultSelectors, city)
		if frag.Name == nil {
			continue
		}
		out = append(out, frag)
	}
	return out
}

func nameFromLines(lines []string) string {
	for _, l := range lines {
		n := len([]rune(l))
		if n > 5 && n < 80 && reDoctorWord.MatchString(l) {
			return l
		}
	}
	return ""
}

func firstLineWith(lines []string, skip *string, needles ...string) string {
	for _, l := range lines {
		if skip != nil && l == *skip {
			continue
		}
		if util.ContainsAny(l, needles...) {
			return l
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func ownText(s *goquery.Selection) string {
	b := strings.Builder{}
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		}
	})
	return b.String()
}

// blockLines flattens the listing text into lines, breaking at block elements.
func blockLines(sel *goquery.Selection) []string {
	var lines []string
	cur := strings.Builder{}
	flush := func() {
		if line := util.NormalizeSpaces(cur.String()); line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}

	var walk func(s *goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			name := goquery.NodeName(c)
			switch {
			case name == "#text":
				cur.WriteString(c.Text())
			case name == "script" || name == "style" || name == "#comment":
			case blockTags[name]:
				flush()
				walk(c)
				flush()
			default:
				cur.WriteString(" ")
				walk(c)
				cur.WriteString(" ")
			}
		})
	}
	walk(sel)
	flush()
	return lines
}
