package rag

import (
	"github.com/hanedit/hanedit/indent"
	"github.com/hanedit/hanedit/model"
)

// TOCEntry is one heading candidate found in document order.
type TOCEntry struct {
	// Level is the heading depth derived from the marker class:
	// 1 for legal articles and numbered items, 2 for Korean-syllable
	// and parenthesized markers, 3 for circled numbers and bullets.
	Level int `json:"level"`

	// Text is the paragraph text including its marker.
	Text string `json:"text"`

	// Marker is the detected marker class.
	Marker indent.MarkerType `json:"marker"`

	Section int `json:"section"`
	Element int `json:"element"`
}

// markerLevel classifies a marker type into a heading depth.
func markerLevel(mt indent.MarkerType) int {
	switch mt {
	case indent.MarkerArticle, indent.MarkerNumbered:
		return 1
	case indent.MarkerKoreanSyllable, indent.MarkerParenthesized, indent.MarkerAlphabetic, indent.MarkerRoman:
		return 2
	default:
		return 3
	}
}

// ExtractTOC walks the document's paragraphs and returns a flat ordered
// list of marker-led entries. Paragraphs without a leading marker are
// not headings and do not appear.
func ExtractTOC(pkg *model.Package) []TOCEntry {
	var toc []TOCEntry
	for si, sec := range pkg.Sections {
		for ei, el := range sec.Elements {
			p, ok := el.(*model.Paragraph)
			if !ok {
				continue
			}
			text := p.GetText()
			marker, found := indent.DetectMarker(text)
			if !found {
				continue
			}
			toc = append(toc, TOCEntry{
				Level:   markerLevel(marker.Type),
				Text:    text,
				Marker:  marker.Type,
				Section: si,
				Element: ei,
			})
		}
	}
	return toc
}
