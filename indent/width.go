package indent

import (
	"math"
	"strings"

	"golang.org/x/text/width"
)

// DefaultFontSize is assumed when the caller does not know the
// paragraph's font size, in points.
const DefaultFontSize = 10.0

// Width estimation sums a fixed em-width per character class and then
// applies a per-font correction factor. The em table deliberately
// underestimates proportional metrics; the correction factor compensates
// so wrapped lines land under the body text rather than the marker.
const (
	emDigit     = 0.6
	emWide      = 1.0 // CJK syllables, ideographs, circled numbers
	emNarrowDot = 0.35
	emParen     = 0.4
	emPunct     = 0.5
	emSpace     = 0.5
	emLetter    = 0.6
)

// defaultFontFactor compensates for proportional-metric underestimation
// when the font is unknown.
const defaultFontFactor = 1.3

// koreanFontFactors holds distinct correction constants for known Korean
// font families.
var koreanFontFactors = map[string]float64{
	"함초롬바탕":  1.32,
	"함초롬돋움":  1.30,
	"바탕":     1.30,
	"돋움":     1.28,
	"굴림":     1.28,
	"맑은 고딕":  1.25,
	"나눔고딕":   1.27,
	"나눔명조":   1.29,
	"휴먼명조":   1.30,
}

// latinFonts are proportional Latin faces whose digit/letter advance the
// em table already models well; no correction is applied.
var latinFonts = map[string]bool{
	"arial":           true,
	"helvetica":       true,
	"times new roman": true,
	"calibri":         true,
	"cambria":         true,
	"georgia":         true,
	"verdana":         true,
	"courier new":     true,
}

// fontFactor returns the correction factor for a font name.
func fontFactor(fontName string) float64 {
	if fontName == "" {
		return defaultFontFactor
	}
	if f, ok := koreanFontFactors[fontName]; ok {
		return f
	}
	if latinFonts[strings.ToLower(fontName)] {
		return 1.0
	}
	return defaultFontFactor
}

// charWidthEm returns the em width of a single rune by character class.
func charWidthEm(r rune) float64 {
	switch {
	case r >= '0' && r <= '9':
		return emDigit
	case r == ' ' || r == '\t':
		return emSpace
	case r == '　': // ideographic space
		return emWide
	case r == '.' || r == ',':
		return emNarrowDot
	case r == '(' || r == ')':
		return emParen
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth, width.EastAsianAmbiguous:
		// Hangul syllables, ideographs, and circled numbers all render
		// full-width in Korean faces.
		return emWide
	}
	if r < 128 && !isASCIILetter(r) {
		return emPunct
	}
	return emLetter
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// CalculateMarkerWidth estimates the visual width of a marker string in
// points at the given font size. fontName may be empty. The result
// scales linearly in font size by construction.
func CalculateMarkerWidth(marker string, fontSizePt float64, fontName string) float64 {
	if fontSizePt <= 0 {
		fontSizePt = DefaultFontSize
	}
	var em float64
	for _, r := range marker {
		em += charWidthEm(r)
	}
	return em * fontSizePt * fontFactor(fontName)
}

// CalculateHangingIndent composes marker detection and width estimation:
// it returns the indent in points that aligns wrapped lines under the
// body text of the detected marker, or 0 when the text carries no marker.
func CalculateHangingIndent(text string, fontSizePt float64, fontName string) float64 {
	m, ok := DetectMarker(text)
	if !ok {
		return 0
	}
	return CalculateMarkerWidth(m.Text, fontSizePt, fontName)
}

// ToHWPUnit converts points to the document format's fixed-point unit
// (points × 100). Exact for values with at most two decimal digits.
func ToHWPUnit(pt float64) int {
	return int(math.Round(pt * 100))
}

// FromHWPUnit converts the fixed-point unit back to points.
func FromHWPUnit(u int) float64 {
	return float64(u) / 100
}
