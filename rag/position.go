package rag

import (
	"strings"

	"github.com/hanedit/hanedit/indent"
	"github.com/hanedit/hanedit/model"
)

// PositionKind classifies a position-index entry.
type PositionKind string

const (
	PositionHeading   PositionKind = "heading"
	PositionParagraph PositionKind = "paragraph"
	PositionTable     PositionKind = "table"
	PositionImage     PositionKind = "image"
	PositionShape     PositionKind = "shape"
)

// previewRunes is the length of a position entry's text preview.
const previewRunes = 40

// Position is one entry of the flat document map: element coordinates,
// a short preview, and for tables the grid size.
type Position struct {
	Kind    PositionKind `json:"kind"`
	Section int          `json:"section"`
	Element int          `json:"element"`
	Preview string       `json:"preview"`

	// Rows and Cols are set for table entries only.
	Rows int `json:"rows,omitempty"`
	Cols int `json:"cols,omitempty"`
}

// BuildPositionIndex emits one entry per element in document order.
// Marker-led paragraphs are headings; paragraphs carrying picture
// content are images.
func BuildPositionIndex(pkg *model.Package) []Position {
	var positions []Position
	for si, sec := range pkg.Sections {
		for ei, el := range sec.Elements {
			pos := Position{Section: si, Element: ei}
			switch e := el.(type) {
			case *model.Paragraph:
				text := e.GetText()
				pos.Preview = preview(text)
				switch {
				case hasPicture(e):
					pos.Kind = PositionImage
				case markerLed(text):
					pos.Kind = PositionHeading
				default:
					pos.Kind = PositionParagraph
				}
			case *model.Table:
				pos.Kind = PositionTable
				pos.Preview = preview(e.GetText())
				pos.Rows = e.RowCount()
				pos.Cols = e.ColCount()
			case *model.Shape:
				pos.Kind = PositionShape
			default:
				continue
			}
			positions = append(positions, pos)
		}
	}
	return positions
}

func markerLed(text string) bool {
	_, found := indent.DetectMarker(text)
	return found
}

func hasPicture(p *model.Paragraph) bool {
	for _, r := range p.Runs {
		if strings.Contains(r.RawContent, "<hp:pic") {
			return true
		}
	}
	return false
}

func preview(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "…"
}
