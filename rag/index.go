package rag

import (
	"github.com/hanedit/hanedit/model"
)

// Index caches the four reading-index views over one package. Views are
// computed on first use and served from cache until Invalidate; edits to
// the package do not invalidate automatically, the caller decides when
// the index should reflect them.
type Index struct {
	pkg *model.Package
	cfg ChunkerConfig

	chunks    []Chunk
	chunksSet bool

	toc    []TOCEntry
	tocSet bool

	positions    []Position
	positionsSet bool
}

// NewIndex creates an index over pkg with the given chunk geometry.
func NewIndex(pkg *model.Package, cfg ChunkerConfig) *Index {
	return &Index{pkg: pkg, cfg: cfg}
}

// Chunks returns the cached chunk set, computing it on first use.
func (ix *Index) Chunks() ([]Chunk, error) {
	if !ix.chunksSet {
		chunks, err := Chunks(ix.pkg, ix.cfg)
		if err != nil {
			return nil, err
		}
		ix.chunks = chunks
		ix.chunksSet = true
	}
	return ix.chunks, nil
}

// Search scores the cached chunks against query.
func (ix *Index) Search(query string, cfg SearchConfig) ([]SearchResult, error) {
	chunks, err := ix.Chunks()
	if err != nil {
		return nil, err
	}
	return Search(chunks, query, cfg)
}

// TOC returns the cached table of contents.
func (ix *Index) TOC() []TOCEntry {
	if !ix.tocSet {
		ix.toc = ExtractTOC(ix.pkg)
		ix.tocSet = true
	}
	return ix.toc
}

// Positions returns the cached position index.
func (ix *Index) Positions() []Position {
	if !ix.positionsSet {
		ix.positions = BuildPositionIndex(ix.pkg)
		ix.positionsSet = true
	}
	return ix.positions
}

// Invalidate drops every cached view; the next accessors recompute from
// the current document state.
func (ix *Index) Invalidate() {
	ix.chunks = nil
	ix.chunksSet = false
	ix.toc = nil
	ix.tocSet = false
	ix.positions = nil
	ix.positionsSet = false
}
