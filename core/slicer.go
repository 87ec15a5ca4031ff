package core

import "strings"

// Span is a byte range [Start, End) in a raw XML string covering one
// balanced element, boundary tags included.
type Span struct {
	Start, End int
}

// Len returns the span length in bytes.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether other lies fully inside s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// ContainsOffset reports whether the byte offset lies inside s.
func (s Span) ContainsOffset(off int) bool {
	return s.Start <= off && off < s.End
}

// tagToken is one recognized tag occurrence during a scan.
type tagToken struct {
	start, end int // byte range of the tag itself, '<' through '>'
	name       string
	closing    bool
	selfClose  bool
}

// nextToken scans src from i for the next tag token of any name.
// Quoted attribute values may contain '>' and are skipped correctly.
func nextToken(src string, i int) (tagToken, bool) {
	for i < len(src) {
		lt := strings.IndexByte(src[i:], '<')
		if lt < 0 {
			return tagToken{}, false
		}
		start := i + lt
		j := start + 1
		if j >= len(src) {
			return tagToken{}, false
		}
		// Skip comments, processing instructions, CDATA, doctypes.
		if src[j] == '!' || src[j] == '?' {
			end := skipSpecial(src, start)
			if end < 0 {
				return tagToken{}, false
			}
			i = end
			continue
		}
		tok := tagToken{start: start}
		if src[j] == '/' {
			tok.closing = true
			j++
		}
		nameStart := j
		for j < len(src) && !isNameEnd(src[j]) {
			j++
		}
		tok.name = src[nameStart:j]
		// Advance to the closing '>' of this tag, honoring quotes.
		var quote byte
		for j < len(src) {
			c := src[j]
			if quote != 0 {
				if c == quote {
					quote = 0
				}
			} else if c == '"' || c == '\'' {
				quote = c
			} else if c == '>' {
				break
			}
			j++
		}
		if j >= len(src) {
			return tagToken{}, false
		}
		if j > start && src[j-1] == '/' {
			tok.selfClose = true
		}
		tok.end = j + 1
		if tok.name == "" {
			i = tok.end
			continue
		}
		return tok, true
	}
	return tagToken{}, false
}

func isNameEnd(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '>', '/':
		return true
	}
	return false
}

// skipSpecial advances past a comment, PI, CDATA section, or doctype
// starting at '<'. Returns the offset just past it, or -1 when unclosed.
func skipSpecial(src string, start int) int {
	switch {
	case strings.HasPrefix(src[start:], "<!--"):
		end := strings.Index(src[start:], "-->")
		if end < 0 {
			return -1
		}
		return start + end + 3
	case strings.HasPrefix(src[start:], "<![CDATA["):
		end := strings.Index(src[start:], "]]>")
		if end < 0 {
			return -1
		}
		return start + end + 3
	default:
		end := strings.IndexByte(src[start:], '>')
		if end < 0 {
			return -1
		}
		return start + end + 1
	}
}

// Slice returns every top-level, depth-balanced span of the named tag in
// src, in document order. Nested occurrences of the same tag (tables
// inside table cells) are contained in their outer span, never reported
// separately. Spans never overlap. Unbalanced trailing opens are dropped.
func Slice(src, tag string) []Span {
	var spans []Span
	depth := 0
	spanStart := 0
	for i := 0; i < len(src); {
		tok, ok := nextToken(src, i)
		if !ok {
			break
		}
		i = tok.end
		if tok.name != tag {
			continue
		}
		switch {
		case tok.selfClose:
			if depth == 0 {
				spans = append(spans, Span{Start: tok.start, End: tok.end})
			}
		case tok.closing:
			if depth > 0 {
				depth--
				if depth == 0 {
					spans = append(spans, Span{Start: spanStart, End: tok.end})
				}
			}
		default:
			if depth == 0 {
				spanStart = tok.start
			}
			depth++
		}
	}
	return spans
}

// Inner returns the content range of a span produced by Slice for tag:
// everything between the open tag's '>' and the matching close tag.
// Self-closing spans yield an empty range at the span end.
func Inner(src string, sp Span, tag string) Span {
	tok, ok := nextToken(src, sp.Start)
	if !ok || tok.start != sp.Start {
		return Span{Start: sp.End, End: sp.End}
	}
	if tok.selfClose {
		return Span{Start: sp.End, End: sp.End}
	}
	closeLen := len(tag) + 3 // "</" + tag + ">"
	if sp.End-closeLen < tok.end {
		return Span{Start: sp.End, End: sp.End}
	}
	return Span{Start: tok.end, End: sp.End - closeLen}
}

// OpenTag returns the byte range of the span's opening tag.
func OpenTag(src string, sp Span) Span {
	tok, ok := nextToken(src, sp.Start)
	if !ok {
		return Span{Start: sp.Start, End: sp.Start}
	}
	return Span{Start: tok.start, End: tok.end}
}

// Attr extracts the value of a named attribute from the tag opening at
// the start of sp. Returns "" when absent.
func Attr(src string, sp Span, name string) string {
	open := OpenTag(src, sp)
	tag := src[open.Start:open.End]
	for i := 0; i < len(tag); {
		idx := strings.Index(tag[i:], name)
		if idx < 0 {
			return ""
		}
		at := i + idx
		i = at + len(name)
		// Require a word boundary before and '=' after.
		if at > 0 && !isAttrBoundary(tag[at-1]) {
			continue
		}
		j := at + len(name)
		for j < len(tag) && (tag[j] == ' ' || tag[j] == '\t') {
			j++
		}
		if j >= len(tag) || tag[j] != '=' {
			continue
		}
		j++
		for j < len(tag) && (tag[j] == ' ' || tag[j] == '\t') {
			j++
		}
		if j >= len(tag) || (tag[j] != '"' && tag[j] != '\'') {
			continue
		}
		quote := tag[j]
		j++
		end := strings.IndexByte(tag[j:], quote)
		if end < 0 {
			return ""
		}
		return tag[j : j+end]
	}
	return ""
}

func isAttrBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '"', '\'':
		return true
	}
	return false
}
