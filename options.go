package hanedit

import "github.com/hanedit/hanedit/rag"

// EditorOptions holds configuration for an Editor.
type EditorOptions struct {
	// Chunking geometry for the reading index.
	chunkSize    int
	chunkOverlap int

	// Backup keeps a .bak copy of the previous file on save.
	backup bool

	// Font used by marker-width estimation when none is known.
	fontName   string
	fontSizePt float64
}

// defaultOptions returns the default editor options.
func defaultOptions() EditorOptions {
	chunking := rag.DefaultChunkerConfig()
	return EditorOptions{
		chunkSize:    chunking.Size,
		chunkOverlap: chunking.Overlap,
		backup:       false,
		fontName:     "",
		fontSizePt:   0, // 0 means the calculator's default size
	}
}

// clone creates a copy of EditorOptions.
func (o EditorOptions) clone() EditorOptions {
	return EditorOptions{
		chunkSize:    o.chunkSize,
		chunkOverlap: o.chunkOverlap,
		backup:       o.backup,
		fontName:     o.fontName,
		fontSizePt:   o.fontSizePt,
	}
}

func (o EditorOptions) chunkerConfig() rag.ChunkerConfig {
	return rag.ChunkerConfig{Size: o.chunkSize, Overlap: o.chunkOverlap}
}
