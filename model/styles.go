package model

// ParaProps is one paragraph property definition: alignment and the
// margin/indent values that make up a hanging indent. Values are stored
// in HWP units (points × 100) so structural equality is exact.
type ParaProps struct {
	Align           string // left, right, center, both
	MarginLeft      int    // HWP units
	MarginRight     int    // HWP units
	FirstLineIndent int    // HWP units, negative for hanging indent
	LineSpacing     int    // percent, 0 means format default

	// RawXML carries the verbatim definition for properties loaded from
	// the package header that this model does not interpret. Definitions
	// with RawXML are re-emitted byte-exact.
	RawXML string
}

// CharProps is one character property definition.
type CharProps struct {
	FontName string
	Size     int // HWP units (points × 100)
	Bold     bool
	Italic   bool

	RawXML string
}

// StyleRegistry is the deduplicating, append-only store of property
// definitions. Ids are monotonically increasing and never recycled;
// paragraphs reference definitions by id, a weak link that never owns.
type StyleRegistry struct {
	paraProps []ParaProps
	charProps []CharProps
	dirty     bool
}

// NewStyleRegistry returns a registry seeded with a base (id 0) paragraph
// and character definition, the no-formatting defaults new documents use.
func NewStyleRegistry() *StyleRegistry {
	return &StyleRegistry{
		paraProps: []ParaProps{{}},
		charProps: []CharProps{{}},
	}
}

// LoadParaProps appends a definition parsed from the package header,
// preserving on-disk id order. Returns the assigned id.
func (r *StyleRegistry) LoadParaProps(p ParaProps) int {
	r.paraProps = append(r.paraProps, p)
	return len(r.paraProps) - 1
}

// LoadCharProps appends a character definition from the package header.
func (r *StyleRegistry) LoadCharProps(c CharProps) int {
	r.charProps = append(r.charProps, c)
	return len(r.charProps) - 1
}

// key returns the structural-equality key: all interpreted fields, with
// the verbatim XML carrier blanked so a definition loaded from disk
// deduplicates against an equivalent in-memory request.
func (p ParaProps) key() ParaProps {
	p.RawXML = ""
	return p
}

func (c CharProps) key() CharProps {
	c.RawXML = ""
	return c
}

// ResolveParaProps returns the id of an existing structurally-equal
// definition, or allocates a new one. Calling it twice with equal input
// always yields the same id, which keeps batch edits idempotent in the
// saved output.
func (r *StyleRegistry) ResolveParaProps(p ParaProps) int {
	k := p.key()
	for i, existing := range r.paraProps {
		if existing.key() == k {
			return i
		}
	}
	r.paraProps = append(r.paraProps, p)
	r.dirty = true
	return len(r.paraProps) - 1
}

// ResolveCharProps is ResolveParaProps for character definitions.
func (r *StyleRegistry) ResolveCharProps(c CharProps) int {
	k := c.key()
	for i, existing := range r.charProps {
		if existing.key() == k {
			return i
		}
	}
	r.charProps = append(r.charProps, c)
	r.dirty = true
	return len(r.charProps) - 1
}

// ParaProps returns the definition for id, and whether it exists.
func (r *StyleRegistry) ParaPropsByID(id int) (ParaProps, bool) {
	if id < 0 || id >= len(r.paraProps) {
		return ParaProps{}, false
	}
	return r.paraProps[id], true
}

// CharPropsByID returns the character definition for id.
func (r *StyleRegistry) CharPropsByID(id int) (CharProps, bool) {
	if id < 0 || id >= len(r.charProps) {
		return CharProps{}, false
	}
	return r.charProps[id], true
}

// ParaPropsCount returns the number of paragraph definitions.
func (r *StyleRegistry) ParaPropsCount() int { return len(r.paraProps) }

// CharPropsCount returns the number of character definitions.
func (r *StyleRegistry) CharPropsCount() int { return len(r.charProps) }

// Dirty reports whether definitions were added since load; the
// serializer uses it to decide whether the header part must be rewritten.
func (r *StyleRegistry) Dirty() bool { return r.dirty }

// AddedParaProps returns the definitions appended after the first n,
// in id order. The serializer emits these into the header part.
func (r *StyleRegistry) AddedParaProps(n int) []ParaProps {
	if n < 0 || n > len(r.paraProps) {
		return nil
	}
	return r.paraProps[n:]
}

// AddedCharProps is AddedParaProps for character definitions.
func (r *StyleRegistry) AddedCharProps(n int) []CharProps {
	if n < 0 || n > len(r.charProps) {
		return nil
	}
	return r.charProps[n:]
}
