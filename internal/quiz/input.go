package quiz

import (
	"math"
	"strconv"
	"strings"
)

// inputEpsilon absorbs binary floating point error so that an authored
// tolerance of 0.1 accepts 2.4 against 2.3.
const inputEpsilon = 1e-9

// inputMatches compares a typed response against an input question. When both
// sides parse as numbers the comparison is |got-want| <= tolerance; otherwise
// it falls back to case-insensitive comparison of the trimmed strings.
func inputMatches(p Input, text string) bool {
	want, wantOK := parseNumber(p.CorrectAnswer, p.Unit)
	got, gotOK := parseNumber(text, p.Unit)
	if wantOK && gotOK {
		tol := 0.0
		if p.Tolerance != nil {
			tol = *p.Tolerance
		}
		return math.Abs(got-want) <= tol+inputEpsilon
	}
	return strings.EqualFold(strings.TrimSpace(text), strings.TrimSpace(p.CorrectAnswer))
}

// parseNumber parses s as a finite decimal number. A trailing unit label that
// matches unit (case-insensitive) is ignored, so "31 mL" reads as 31 when the
// question's unit is "mL".
func parseNumber(s, unit string) (float64, bool) {
	s = strings.TrimSpace(s)
	if unit != "" && len(s) > len(unit) && strings.EqualFold(s[len(s)-len(unit):], unit) {
		s = strings.TrimSpace(s[:len(s)-len(unit)])
	}
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
