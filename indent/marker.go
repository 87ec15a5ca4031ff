package indent

import "regexp"

// MarkerType classifies the leading list/legal marker of a paragraph.
type MarkerType int

const (
	MarkerNone MarkerType = iota
	MarkerArticle
	MarkerCircled
	MarkerParenthesized
	MarkerNumbered
	MarkerKoreanSyllable
	MarkerAlphabetic
	MarkerRoman
	MarkerBullet
)

func (mt MarkerType) String() string {
	switch mt {
	case MarkerArticle:
		return "article"
	case MarkerCircled:
		return "circled"
	case MarkerParenthesized:
		return "parenthesized"
	case MarkerNumbered:
		return "numbered"
	case MarkerKoreanSyllable:
		return "korean"
	case MarkerAlphabetic:
		return "alphabetic"
	case MarkerRoman:
		return "roman"
	case MarkerBullet:
		return "bullet"
	default:
		return "none"
	}
}

// Marker is a detected paragraph-leading marker. Text includes any
// leading whitespace and the required trailing space, so its width is
// the full visual offset of the body text.
type Marker struct {
	Text          string
	Type          MarkerType
	LeadingSpaces int // rune count of whitespace before the marker
}

// Patterns are tried in order: longest/most-specific first, so
// "제1조의2 " wins over "제1조 ". Every pattern requires a trailing
// space and captures leading ASCII or ideographic whitespace.
var markerPatterns = []struct {
	re  *regexp.Regexp
	typ MarkerType
}{
	{regexp.MustCompile(`^([ \t\x{3000}]*)(제\d+조의\d+ )`), MarkerArticle},
	{regexp.MustCompile(`^([ \t\x{3000}]*)(제\d+조 )`), MarkerArticle},
	{regexp.MustCompile(`^([ \t\x{3000}]*)(제\d+항 )`), MarkerArticle},
	{regexp.MustCompile(`^([ \t\x{3000}]*)(\d+호 )`), MarkerArticle},
	{regexp.MustCompile(`^([ \t\x{3000}]*)(\d+목 )`), MarkerArticle},
	{regexp.MustCompile(`^([ \t\x{3000}]*)([\x{2460}-\x{2473}\x{3260}-\x{327B}] )`), MarkerCircled},
	{regexp.MustCompile(`^([ \t\x{3000}]*)(\(\d+\) )`), MarkerParenthesized},
	{regexp.MustCompile(`^([ \t\x{3000}]*)(\([가-힣]\) )`), MarkerParenthesized},
	{regexp.MustCompile(`^([ \t\x{3000}]*)(\d+\) )`), MarkerParenthesized},
	{regexp.MustCompile(`^([ \t\x{3000}]*)(\d+\. )`), MarkerNumbered},
	{regexp.MustCompile(`^([ \t\x{3000}]*)([가-힣]\. )`), MarkerKoreanSyllable},
	{regexp.MustCompile(`^([ \t\x{3000}]*)([가-힣]\) )`), MarkerKoreanSyllable},
	{regexp.MustCompile(`^([ \t\x{3000}]*)([A-Za-z][.)] )`), MarkerAlphabetic},
	{regexp.MustCompile(`^([ \t\x{3000}]*)([ivxlcIVXLC]{2,6}[.)] )`), MarkerRoman},
	{regexp.MustCompile(`^([ \t\x{3000}]*)([\x{2022}\x{00B7}\x{25E6}\x{25AA}\x{2023}\x{2219}\x{25CB}\x{25CF}\x{25A0}\x{25A1}\x{2013}\x{2014}\-\*] )`), MarkerBullet},
}

// DetectMarker finds the leading list or legal marker of the paragraph
// text. Returns (Marker, true) or (Marker{}, false) when nothing
// matches. A trailing space after the marker is required; without it the
// text is treated as body content, not a marker.
func DetectMarker(text string) (Marker, bool) {
	for _, p := range markerPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		leading := m[1]
		return Marker{
			Text:          leading + m[2],
			Type:          p.typ,
			LeadingSpaces: len([]rune(leading)),
		}, true
	}
	return Marker{}, false
}
