// Package rag provides the reading-index subsystem for large-document
// exploration: overlapping text chunks addressed back to their source
// elements, BM25 relevance search over the chunk set, table-of-contents
// extraction from leading markers, and a flat position index. All four
// views are computed lazily and cached together; one Invalidate call
// drops them as a unit.
package rag

import (
	"fmt"
	"strings"

	"github.com/hanedit/hanedit/model"
)

// Chunk is one window of the flattened document text, tagged with the
// coordinates of the element its start falls in.
type Chunk struct {
	// Index is the chunk's position in the chunk sequence.
	Index int `json:"index"`

	// Text is the window's content, including the overlap copied from
	// the previous chunk's tail.
	Text string `json:"text"`

	// Section and Element locate the source element containing Start.
	Section int `json:"section"`
	Element int `json:"element"`

	// Start and End are rune offsets into the flattened document text.
	Start int `json:"start"`
	End   int `json:"end"`
}

// ChunkerConfig holds chunking parameters.
type ChunkerConfig struct {
	// Size is the window length in runes.
	Size int

	// Overlap is the number of trailing runes of each chunk repeated at
	// the start of the next one.
	Overlap int
}

// DefaultChunkerConfig returns the standard window geometry.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		Size:    4500,
		Overlap: 500,
	}
}

// segment maps a run of flattened text back to its source element.
type segment struct {
	section, element int
	start            int // rune offset in the flattened text
}

// flatten renders the document to plain text, paragraphs and tables
// joined by newlines in document order, and records where each element's
// contribution starts.
func flatten(pkg *model.Package) (string, []segment) {
	var sb strings.Builder
	var segs []segment
	off := 0
	for si, sec := range pkg.Sections {
		for ei, el := range sec.Elements {
			text := el.GetText()
			if text == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteString("\n")
				off++
			}
			segs = append(segs, segment{section: si, element: ei, start: off})
			sb.WriteString(text)
			off += len([]rune(text))
		}
	}
	return sb.String(), segs
}

// locate returns the segment containing the given rune offset.
func locate(segs []segment, off int) segment {
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i].start <= off {
			return segs[i]
		}
	}
	if len(segs) > 0 {
		return segs[0]
	}
	return segment{}
}

// Chunks splits the document into overlapping windows. Every chunk after
// the first begins cfg.Overlap runes before the previous chunk's end, so
// consecutive windows tile the text with shared context at the seams.
func Chunks(pkg *model.Package, cfg ChunkerConfig) ([]Chunk, error) {
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("chunk size %d must be positive: %w", cfg.Size, model.ErrInvalidArgument)
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		return nil, fmt.Errorf("overlap %d must be in [0,%d): %w", cfg.Overlap, cfg.Size, model.ErrInvalidArgument)
	}

	text, segs := flatten(pkg)
	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	var chunks []Chunk
	start := 0
	for {
		end := start + cfg.Size
		if end > len(runes) {
			end = len(runes)
		}
		seg := locate(segs, start)
		chunks = append(chunks, Chunk{
			Index:   len(chunks),
			Text:    string(runes[start:end]),
			Section: seg.section,
			Element: seg.element,
			Start:   start,
			End:     end,
		})
		if end == len(runes) {
			return chunks, nil
		}
		start = end - cfg.Overlap
	}
}
