package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/adit301104/DrData/internal/util"
)

const defaultArea = "pune-city"

var rePin = regexp.MustCompile(`\b\d{6}\b`)

var areaPins = map[string]string{
	"aundh":         "411007",
	"baner":         "411045",
	"wakad":         "411057",
	"kothrud":       "411029",
	"viman-nagar":   "411014",
	"hadapsar":      "411028",
	"pune-city":     "411001",
	"camp":          "411001",
	"koregaon-park": "411001",
	"deccan":        "411004",
}

// PinForArea returns the postal code for an area slug, falling back to the city centre.
func PinForArea(area string) string {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(area), " ", "-"))
	if pin, ok := areaPins[key]; ok {
		return pin
	}
	return areaPins[defaultArea]
}

func HasPin(address string) bool {
	return rePin.MatchString(address)
}

// RepairAddress makes sure an address carries a six digit postal code. Addresses that already
// have one are returned unchanged.
func (s *Synthesizer) RepairAddress(address, area string) string {
	address = util.NormalizeSpaces(address)
	if HasPin(address) {
		return address
	}
	if strings.TrimSpace(area) == "" {
		area = defaultArea
	}
	pin := PinForArea(area)
	if len([]rune(address)) < 10 {
		return fmt.Sprintf("%d, %s, %s, %s - %s", s.faker.Number(1, 999), util.TitleCase(area), s.city, s.state, pin)
	}
	return address + " - " + pin
}
