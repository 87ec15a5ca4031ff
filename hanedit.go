// Package hanedit provides a programmatic editor for zipped-XML word
// processor packages: structural edits over paragraphs, tables and
// styles, a reading index for large-document exploration, and a
// verified atomic save pipeline.
//
// Basic usage:
//
//	ed, err := hanedit.Open("contract.hwpx")
//	if err != nil {
//	    // handle error
//	}
//	defer ed.Close()
//	if err := ed.UpdateParagraph(0, 2, "개정된 조문"); err != nil {
//	    // handle error
//	}
//	if err := ed.Save(); err != nil {
//	    // handle error
//	}
//
// Fluent configuration:
//
//	ed := hanedit.Must(hanedit.Open("doc.hwpx")).
//	    Backup().
//	    Chunking(2000, 200)
package hanedit

import (
	"fmt"

	"github.com/hanedit/hanedit/edit"
	"github.com/hanedit/hanedit/format"
	"github.com/hanedit/hanedit/hwpx"
	"github.com/hanedit/hanedit/model"
	"github.com/hanedit/hanedit/rag"
)

// Open reads a package file into an Editor.
func Open(filename string) (*Editor, error) {
	if format.Detect(filename) == format.HWP {
		return nil, fmt.Errorf("%s is a legacy binary document, not a zipped-XML package: %w",
			filename, model.ErrInvalidArgument)
	}
	pkg, err := hwpx.Open(filename)
	if err != nil {
		return nil, err
	}
	ed := newEditor(pkg)
	ed.path = filename
	return ed, nil
}

// OpenBytes parses package bytes into an Editor. The Editor has no file
// path until SaveAs.
func OpenBytes(data []byte) (*Editor, error) {
	if format.DetectFromMagic(data) == format.HWP {
		return nil, fmt.Errorf("legacy binary document, not a zipped-XML package: %w",
			model.ErrInvalidArgument)
	}
	pkg, err := hwpx.OpenBytes(data)
	if err != nil {
		return nil, err
	}
	return newEditor(pkg), nil
}

// New creates an Editor over an empty in-memory document with one blank
// section.
func New() *Editor {
	return newEditor(hwpx.New())
}

func newEditor(pkg *model.Package) *Editor {
	opts := defaultOptions()
	return &Editor{
		pkg:     pkg,
		session: edit.NewSession(pkg),
		index:   rag.NewIndex(pkg, opts.chunkerConfig()),
		options: opts,
	}
}

// Must wraps a call returning (*Editor, error) and panics on error. It
// is intended for scripts and tests where error handling would be
// cumbersome.
//
//	ed := hanedit.Must(hanedit.Open("document.hwpx"))
func Must(ed *Editor, err error) *Editor {
	if err != nil {
		panic(err)
	}
	return ed
}
