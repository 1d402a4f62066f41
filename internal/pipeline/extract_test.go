package pipeline

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPage = `<html><body>
<div class="doctor-card">
  <h3>dr  Asha   Kulkarni</h3>
  <p class="clinic-name">Heart Care Clinic</p>
  <p class="address">12, Baner Road, Pune</p>
  <p>Call +91 98765 43210</p>
  <p>4.6 stars | 120 reviews</p>
  <p>15 years experience</p>
</div>
<div class="doctor-card"><span>Nurse desk</span></div>
<div class="doctor-card"><h3>Doctor Ravi Patil</h3></div>
</body></html>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestFirstTextSkipsBlankCandidates(t *testing.T) {
	doc := mustDoc(t, `<div><h3>   </h3><h2> Dr.  X </h2><h4>later</h4>`)
	text, ok := FirstText(doc.Selection, []string{".missing", "h3", "h2", "h4"})
	require.True(t, ok)
	assert.Equal(t, "Dr. X", text)

	_, ok = FirstText(doc.Selection, []string{".missing", "h3"})
	assert.False(t, ok)
}

func TestFirstTextNilSelection(t *testing.T) {
	_, ok := FirstText(nil, []string{"h3"})
	assert.False(t, ok)
	assert.Nil(t, DiscoverListings(nil, 10))
}

func TestDiscoverListingsUsesFirstMatchingCardSelector(t *testing.T) {
	listings := DiscoverListings(mustDoc(t, listingPage), 0)
	assert.Len(t, listings, 3)

	capped := DiscoverListings(mustDoc(t, listingPage), 2)
	assert.Len(t, capped, 2)
}

func TestDiscoverListingsFallsBackToDoctorText(t *testing.T) {
	doc := mustDoc(t, `<html><body><section><p>Meet Dr. Meera Joshi, Aundh</p><p>opening hours</p></section></body></html>`)
	listings := DiscoverListings(doc, 0)
	require.Len(t, listings, 1)
	assert.Contains(t, listings[0].Text(), "Meera Joshi")
}

func TestExtractFragmentsSelectorsAndPatterns(t *testing.T) {
	listings := DiscoverListings(mustDoc(t, listingPage), 0)
	frag := ExtractFragments(listings[0], DefaultSelectors, "pune")

	require.NotNil(t, frag.Name)
	assert.Equal(t, "dr Asha Kulkarni", *frag.Name)
	require.NotNil(t, frag.Clinic)
	assert.Equal(t, "Heart Care Clinic", *frag.Clinic)
	require.NotNil(t, frag.Address)
	assert.Equal(t, "12, Baner Road, Pune", *frag.Address)
	require.NotNil(t, frag.Phone)
	assert.Equal(t, "+91 98765 43210", *frag.Phone)
	require.NotNil(t, frag.Rating)
	assert.Equal(t, "4.6", *frag.Rating)
	require.NotNil(t, frag.Experience)
	assert.Equal(t, "15", *frag.Experience)
	require.NotNil(t, frag.Reviews)
	assert.Equal(t, "120", *frag.Reviews)
}

func TestExtractFragmentsLineHeuristics(t *testing.T) {
	doc := mustDoc(t, `<div class="listing"><div>Dr. Neha Shah</div><div>Sunrise Medical Centre</div><div>45 FC Road, Shivaji Nagar</div></div>`)
	frag := ExtractFragments(DiscoverListings(doc, 0)[0], DefaultSelectors, "pune")

	require.NotNil(t, frag.Name)
	assert.Equal(t, "Dr. Neha Shah", *frag.Name)
	require.NotNil(t, frag.Clinic)
	assert.Equal(t, "Sunrise Medical Centre", *frag.Clinic)
	require.NotNil(t, frag.Address)
	assert.Equal(t, "45 FC Road, Shivaji Nagar", *frag.Address)
	assert.Nil(t, frag.Phone)
	assert.Nil(t, frag.Rating)
}

func TestExtractFragmentsPatternsOverrideUnusableSelectorText(t *testing.T) {
	doc := mustDoc(t, `<div class="doctor-card"><h3>Dr. Asha Kulkarni</h3>
<span class="phone">Show Number</span><p>Call 9876543210</p>
<span class="rating">Top rated</span><p>4.7 stars</p></div>`)
	frag := ExtractFragments(DiscoverListings(doc, 0)[0], DefaultSelectors, "pune")

	require.NotNil(t, frag.Phone)
	assert.Equal(t, "9876543210", *frag.Phone)
	require.NotNil(t, frag.Rating)
	assert.Equal(t, "4.7", *frag.Rating)
}

func TestExtractFragmentsKeepsSelectorTextWhenPatternsMiss(t *testing.T) {
	doc := mustDoc(t, `<div class="doctor-card"><h3>Dr. Asha Kulkarni</h3><span class="phone">Show Number</span><span class="rating">Top rated</span></div>`)
	frag := ExtractFragments(DiscoverListings(doc, 0)[0], DefaultSelectors, "pune")

	require.NotNil(t, frag.Phone)
	assert.Equal(t, "Show Number", *frag.Phone)
	require.NotNil(t, frag.Rating)
	assert.Equal(t, "Top rated", *frag.Rating)
}

func TestExtractFragmentsAddressUsesConfiguredCity(t *testing.T) {
	html := `<div class="listing"><div>Dr. Neha Shah</div><div>Opp. Market, Thane West</div></div>`

	frag := ExtractFragments(DiscoverListings(mustDoc(t, html), 0)[0], DefaultSelectors, "Thane")
	require.NotNil(t, frag.Address)
	assert.Equal(t, "Opp. Market, Thane West", *frag.Address)

	frag = ExtractFragments(DiscoverListings(mustDoc(t, html), 0)[0], DefaultSelectors, "pune")
	assert.Nil(t, frag.Address)
}

func TestExtractPageDropsListingsWithoutName(t *testing.T) {
	frags := ExtractPage(listingPage, "pune", 0)
	require.Len(t, frags, 2)
	assert.Equal(t, "Doctor Ravi Patil", *frags[1].Name)
	assert.Nil(t, frags[1].Clinic)
}

func TestExtractPageMalformedInput(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Empty(t, ExtractPage(`<div><h3>unterminated`, "pune", 10))
		assert.Empty(t, ExtractPage(``, "pune", 10))
	})
}
