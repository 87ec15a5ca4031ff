package model

import "strings"

// ElementType identifies the kind of a root-level section element.
type ElementType int

const (
	ElementTypeUnknown ElementType = iota
	ElementTypeParagraph
	ElementTypeTable
	ElementTypeShape
)

func (et ElementType) String() string {
	switch et {
	case ElementTypeParagraph:
		return "Paragraph"
	case ElementTypeTable:
		return "Table"
	case ElementTypeShape:
		return "Shape"
	default:
		return "Unknown"
	}
}

// Element is the interface for root-level section content. Elements are
// addressed by their 0-based position in Section.Elements, which reflects
// document order and is recomputed after every insert or delete.
type Element interface {
	Type() ElementType

	// Span returns the element's byte offsets [start, end) into the
	// section source it was parsed from. Synthetic elements created by
	// edits return (-1, -1).
	Span() (start, end int)

	// Modified reports whether the element differs from its source span
	// and must be re-rendered at serialization time.
	Modified() bool

	// GetText returns the element's flattened text content.
	GetText() string
}

// Run is a contiguous span of paragraph text sharing one character
// property reference. Empty runs are legal and contribute no text.
type Run struct {
	Text       string
	CharPrID   int
	RawContent string // verbatim inner XML for runs carrying non-text content
}

// Paragraph is an ordered list of runs plus property references into the
// style registry. Property links are integer ids, never pointers, so
// definitions can be shared across arbitrarily many paragraphs.
type Paragraph struct {
	Runs     []Run
	ParaPrID int
	StyleID  int

	// ChildTables are root tables whose XML lies inside this paragraph's
	// span (the wrapped-table irregularity). They appear in the section
	// element list in their own right; the serializer renders them
	// through this paragraph's span to keep the copy single.
	ChildTables []*Table

	Start, End int
	Dirty      bool
}

func (p *Paragraph) Type() ElementType { return ElementTypeParagraph }
func (p *Paragraph) Span() (int, int)  { return p.Start, p.End }
func (p *Paragraph) Modified() bool    { return p.Dirty }

// GetText returns the concatenated run text in display order.
func (p *Paragraph) GetText() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// SetText replaces the text of the paragraph's first text run and drops
// the remaining text runs. Control runs (non-text content such as
// section settings) survive in place.
func (p *Paragraph) SetText(text string) {
	var kept []Run
	charPr := 0
	for _, r := range p.Runs {
		if r.RawContent != "" && r.Text == "" {
			kept = append(kept, r)
			continue
		}
		if charPr == 0 {
			charPr = r.CharPrID
		}
	}
	kept = append(kept, Run{Text: text, CharPrID: charPr})
	p.Runs = kept
	p.Dirty = true
}

// SetTextPreservingRuns changes the paragraph's content while keeping the
// existing run boundaries and character properties. Text is distributed
// across runs proportionally to their current lengths; leftover text goes
// to the last run.
func (p *Paragraph) SetTextPreservingRuns(text string) {
	var textRuns []int
	total := 0
	for i, r := range p.Runs {
		if r.RawContent != "" && r.Text == "" {
			continue
		}
		textRuns = append(textRuns, i)
		total += len(r.Text)
	}
	if len(textRuns) <= 1 || total == 0 {
		p.SetText(text)
		return
	}
	remaining := text
	for n, i := range textRuns {
		if n == len(textRuns)-1 {
			p.Runs[i].Text = remaining
			break
		}
		share := len(p.Runs[i].Text) * len(text) / total
		if share > len(remaining) {
			share = len(remaining)
		}
		// Never split in the middle of a multi-byte rune.
		for share > 0 && share < len(remaining) && !isRuneStart(remaining[share]) {
			share--
		}
		p.Runs[i].Text = remaining[:share]
		remaining = remaining[share:]
	}
	p.Dirty = true
}

// AppendText appends to the last run, creating one if needed.
func (p *Paragraph) AppendText(text string) {
	if len(p.Runs) == 0 {
		p.Runs = []Run{{Text: text}}
	} else {
		p.Runs[len(p.Runs)-1].Text += text
	}
	p.Dirty = true
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// ShapeKind distinguishes the drawing-object tags recognized at the root
// of a section. Shape content is opaque passthrough.
type ShapeKind string

const (
	ShapeLine    ShapeKind = "line"
	ShapeRect    ShapeKind = "rect"
	ShapeEllipse ShapeKind = "ellipse"
	ShapeArc     ShapeKind = "arc"
	ShapePolygon ShapeKind = "polygon"
	ShapeCurve   ShapeKind = "curve"
	ShapePicture ShapeKind = "picture"
)

// Shape is a root-level drawing object carried verbatim. Its XML is never
// rewritten unless the element is synthetic.
type Shape struct {
	Kind   ShapeKind
	RawXML string

	Start, End int
	Dirty      bool
}

func (s *Shape) Type() ElementType { return ElementTypeShape }
func (s *Shape) Span() (int, int)  { return s.Start, s.End }
func (s *Shape) Modified() bool    { return s.Dirty }
func (s *Shape) GetText() string   { return "" }
