// Package edit implements the structural mutation API over a document
// package: paragraph and table CRUD, cell merge/split, hanging indents,
// search and replace, and linear undo/redo.
package edit

import (
	"github.com/hanedit/hanedit/model"
)

// Session wraps a package with edit history. All mutating methods
// validate their inputs before touching the tree, so a failed call
// leaves the document and the history unchanged.
type Session struct {
	pkg     *model.Package
	history history
}

// NewSession starts an edit session over pkg.
func NewSession(pkg *model.Package) *Session {
	return &Session{pkg: pkg}
}

// Package returns the underlying document.
func (s *Session) Package() *model.Package {
	return s.pkg
}

func (s *Session) section(i int) (*model.Section, error) {
	return s.pkg.Section(i)
}

// table resolves a table element, without mutating on failure.
func (s *Session) table(section, element int) (*model.Section, *model.Table, error) {
	sec, err := s.section(section)
	if err != nil {
		return nil, nil, err
	}
	tbl, err := sec.TableAt(element)
	if err != nil {
		return nil, nil, err
	}
	return sec, tbl, nil
}

// SetHeaderText replaces the section's running header text.
func (s *Session) SetHeaderText(section int, text string) error {
	sec, err := s.section(section)
	if err != nil {
		return err
	}
	s.checkpoint()
	sec.HeaderText = text
	sec.HeaderDirty = true
	return nil
}

// SetFooterText replaces the section's running footer text.
func (s *Session) SetFooterText(section int, text string) error {
	sec, err := s.section(section)
	if err != nil {
		return err
	}
	s.checkpoint()
	sec.FooterText = text
	sec.FooterDirty = true
	return nil
}
