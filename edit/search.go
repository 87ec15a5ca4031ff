package edit

import (
	"fmt"
	"strings"

	"github.com/hanedit/hanedit/model"
)

// Match locates one occurrence of a search query. Row and Col are -1 for
// matches outside a table; for cell matches they address the owning cell.
type Match struct {
	Section int
	Element int
	Row     int
	Col     int
	Offset  int // rune offset within the element or cell text
	Snippet string
}

// snippetRadius is the number of runes of context kept on each side of a
// match in its snippet.
const snippetRadius = 20

// SearchText finds every occurrence of query in document order, walking
// paragraph text and table cells. An empty query matches nothing.
func (s *Session) SearchText(query string) []Match {
	if query == "" {
		return nil
	}
	var matches []Match
	for si, sec := range s.pkg.Sections {
		for ei, el := range sec.Elements {
			switch e := el.(type) {
			case *model.Paragraph:
				for _, off := range findAll(e.GetText(), query) {
					matches = append(matches, Match{
						Section: si, Element: ei, Row: -1, Col: -1,
						Offset:  off,
						Snippet: snippet(e.GetText(), off, len([]rune(query))),
					})
				}
			case *model.Table:
				matches = append(matches, s.searchTable(si, ei, e, query)...)
			}
		}
	}
	return matches
}

func (s *Session) searchTable(si, ei int, tbl *model.Table, query string) []Match {
	var matches []Match
	for _, row := range tbl.Rows {
		for _, cell := range row.Cells {
			text := cell.GetText()
			for _, off := range findAll(text, query) {
				matches = append(matches, Match{
					Section: si, Element: ei,
					Row: cell.RowAddr, Col: cell.ColAddr,
					Offset:  off,
					Snippet: snippet(text, off, len([]rune(query))),
				})
			}
		}
	}
	return matches
}

// ReplaceText replaces every occurrence of old with new across the
// document and returns the number of replacements. Paragraph run
// boundaries are preserved where possible.
func (s *Session) ReplaceText(old, new string) (int, error) {
	if old == "" {
		return 0, fmt.Errorf("empty search text: %w", model.ErrInvalidArgument)
	}
	total := s.countOccurrences(old)
	if total == 0 {
		return 0, nil
	}
	s.checkpoint()
	for _, sec := range s.pkg.Sections {
		for _, el := range sec.Elements {
			switch e := el.(type) {
			case *model.Paragraph:
				if text := e.GetText(); strings.Contains(text, old) {
					e.SetTextPreservingRuns(strings.ReplaceAll(text, old, new))
				}
			case *model.Table:
				if replaceInTable(e, old, new) {
					e.Dirty = true
				}
			}
		}
	}
	return total, nil
}

func replaceInTable(tbl *model.Table, old, new string) bool {
	changed := false
	for _, row := range tbl.Rows {
		for _, cell := range row.Cells {
			for _, el := range cell.Content {
				switch e := el.(type) {
				case *model.Paragraph:
					if text := e.GetText(); strings.Contains(text, old) {
						e.SetTextPreservingRuns(strings.ReplaceAll(text, old, new))
						changed = true
					}
				case *model.Table:
					if replaceInTable(e, old, new) {
						changed = true
					}
				}
			}
		}
	}
	return changed
}

// ReplaceTextInCell replaces occurrences of old within one cell only.
func (s *Session) ReplaceTextInCell(section, i, row, col int, old, new string) (int, error) {
	if old == "" {
		return 0, fmt.Errorf("empty search text: %w", model.ErrInvalidArgument)
	}
	_, tbl, err := s.table(section, i)
	if err != nil {
		return 0, err
	}
	cell := tbl.OwnerAt(row, col)
	if cell == nil {
		return 0, fmt.Errorf("cell (%d,%d) outside %dx%d grid: %w", row, col, len(tbl.Rows), tbl.Cols, model.ErrNotFound)
	}
	count := strings.Count(cell.GetText(), old)
	if count == 0 {
		return 0, nil
	}
	s.checkpoint()
	for _, el := range cell.Content {
		if p, ok := el.(*model.Paragraph); ok {
			if text := p.GetText(); strings.Contains(text, old) {
				p.SetTextPreservingRuns(strings.ReplaceAll(text, old, new))
			}
		}
	}
	tbl.Dirty = true
	return count, nil
}

func (s *Session) countOccurrences(needle string) int {
	total := 0
	for _, sec := range s.pkg.Sections {
		for _, el := range sec.Elements {
			switch e := el.(type) {
			case *model.Paragraph:
				total += strings.Count(e.GetText(), needle)
			case *model.Table:
				total += strings.Count(e.GetText(), needle)
			}
		}
	}
	return total
}

// findAll returns the rune offsets of every non-overlapping occurrence.
func findAll(text, query string) []int {
	var offs []int
	byteOff := 0
	for {
		i := strings.Index(text[byteOff:], query)
		if i < 0 {
			return offs
		}
		byteOff += i
		offs = append(offs, len([]rune(text[:byteOff])))
		byteOff += len(query)
	}
}

// snippet returns the text around a match, trimmed to snippetRadius
// runes of context on each side.
func snippet(text string, runeOff, matchLen int) string {
	runes := []rune(text)
	start := runeOff - snippetRadius
	if start < 0 {
		start = 0
	}
	end := runeOff + matchLen + snippetRadius
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start:end])
}
