package model

import (
	"fmt"
	"strings"
)

// SourceSpan is a byte range [Start, End) into a section's source XML.
type SourceSpan struct {
	Start, End int
}

// Metadata holds package-level document metadata.
type Metadata struct {
	Title    string
	Author   string
	Subject  string
	Keywords []string
	Creator  string
}

// Section is one top-level content stream of a package: an ordered
// sequence of elements over the section's source XML.
type Section struct {
	Index int

	// Source is the cleaned raw XML this section was parsed from. It is
	// immutable; edits mark elements dirty and record removed spans, and
	// the serializer reconciles both against Source.
	Source string

	Elements []Element

	// Removed are source spans of deleted elements, skipped when the
	// serializer copies inter-element text.
	Removed []SourceSpan

	// Header and footer text owned by the section.
	HeaderText string
	FooterText string

	// HeaderDirty/FooterDirty mark header or footer text changed by an
	// edit.
	HeaderDirty bool
	FooterDirty bool
}

// ElementAt returns the element at index i.
func (s *Section) ElementAt(i int) (Element, error) {
	if i < 0 || i >= len(s.Elements) {
		return nil, fmt.Errorf("element index %d out of range [0,%d): %w", i, len(s.Elements), ErrNotFound)
	}
	return s.Elements[i], nil
}

// ParagraphAt returns the paragraph at element index i, failing when the
// index is out of range or addresses a different element type.
func (s *Section) ParagraphAt(i int) (*Paragraph, error) {
	el, err := s.ElementAt(i)
	if err != nil {
		return nil, err
	}
	p, ok := el.(*Paragraph)
	if !ok {
		return nil, fmt.Errorf("element %d is a %s, not a paragraph: %w", i, el.Type(), ErrNotFound)
	}
	return p, nil
}

// TableAt returns the table at element index i.
func (s *Section) TableAt(i int) (*Table, error) {
	el, err := s.ElementAt(i)
	if err != nil {
		return nil, err
	}
	t, ok := el.(*Table)
	if !ok {
		return nil, fmt.Errorf("element %d is a %s, not a table: %w", i, el.Type(), ErrNotFound)
	}
	return t, nil
}

// InsertElement inserts el after element index after; after == -1
// prepends. Later indices shift up by one.
func (s *Section) InsertElement(after int, el Element) error {
	if after < -1 || after >= len(s.Elements) {
		return fmt.Errorf("insert position %d out of range [-1,%d): %w", after, len(s.Elements), ErrNotFound)
	}
	at := after + 1
	s.Elements = append(s.Elements, nil)
	copy(s.Elements[at+1:], s.Elements[at:])
	s.Elements[at] = el
	return nil
}

// DeleteElement removes the element at index i and compacts the index
// space: every element previously at an index greater than i shifts down
// by one. The element's full source span, including any tables nested
// inside it, is recorded for exclusion at serialization.
func (s *Section) DeleteElement(i int) error {
	if i < 0 || i >= len(s.Elements) {
		return fmt.Errorf("element index %d out of range [0,%d): %w", i, len(s.Elements), ErrNotFound)
	}
	if start, end := s.Elements[i].Span(); start >= 0 {
		s.Removed = append(s.Removed, SourceSpan{Start: start, End: end})
	}
	s.Elements = append(s.Elements[:i], s.Elements[i+1:]...)
	return nil
}

// Text returns the section's flattened text, elements joined by newlines.
func (s *Section) Text() string {
	var parts []string
	for _, el := range s.Elements {
		if t := el.GetText(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// PendingCellIndent is a hanging-indent request for a table-cell
// paragraph that may not exist in the tree yet: multi-line cell text
// produces more on-disk paragraphs than the model tracks until the text
// is re-chunked on write. Validation of the paragraph index is deferred
// to serialization; the property id is resolved eagerly so batches
// deduplicate. Structural edits remap the coordinates or drop requests
// whose cell is removed; a request still unmatched at serialization
// fails the write.
type PendingCellIndent struct {
	Section   int
	Element   int // table element index within the section
	Row, Col  int
	Paragraph int // paragraph index within the cell after chunking
	ParaPrID  int // resolved property definition id
}

// Package is the root owned object: sections, the style registry, binary
// attachments, and metadata. A Package has no global state and shares
// nothing with other packages.
type Package struct {
	Sections []*Section
	Styles   *StyleRegistry
	Metadata Metadata

	// BinData maps attachment names (under the package's binary folder)
	// to their bytes.
	BinData map[string][]byte

	// Parts carries every archive entry the model does not interpret
	// (manifest, version info, settings), re-emitted verbatim on save.
	Parts map[string][]byte

	// HeaderXML is the raw property/header part; new style definitions
	// are appended into it at serialization.
	HeaderXML string

	// LoadedParaProps and LoadedCharProps are the registry sizes right
	// after load; definitions past them are new and must be written into
	// the header on save.
	LoadedParaProps int
	LoadedCharProps int

	// PendingIndents are queued table-cell hanging-indent requests
	// resolved during serialization.
	PendingIndents []PendingCellIndent
}

// NewPackage returns an empty package with one empty section and a
// seeded style registry.
func NewPackage() *Package {
	return &Package{
		Sections: []*Section{{Index: 0}},
		Styles:   NewStyleRegistry(),
		BinData:  make(map[string][]byte),
		Parts:    make(map[string][]byte),
	}
}

// Section returns the section at index i.
func (p *Package) Section(i int) (*Section, error) {
	if i < 0 || i >= len(p.Sections) {
		return nil, fmt.Errorf("section index %d out of range [0,%d): %w", i, len(p.Sections), ErrNotFound)
	}
	return p.Sections[i], nil
}

// Text returns the whole document's flattened text in document order.
func (p *Package) Text() string {
	var parts []string
	for _, s := range p.Sections {
		if t := s.Text(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}
