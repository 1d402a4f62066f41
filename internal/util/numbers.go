package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	decimalPattern = regexp.MustCompile(`\d+\.?\d*`)
	integerPattern = regexp.MustCompile(`\d+`)
)

// FirstFloat returns the first decimal number in the input.
func FirstFloat(input string) (float64, bool) {
	m := decimalPattern.FindString(strings.ReplaceAll(input, ",", ""))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(m, "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FirstInt returns the first run of digits in the input. Thousands separators are ignored.
func FirstInt(input string) (int, bool) {
	m := integerPattern.FindString(strings.ReplaceAll(input, ",", ""))
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return v, true
}

func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func ClampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
