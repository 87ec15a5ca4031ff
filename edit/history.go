package edit

import "github.com/hanedit/hanedit/model"

// maxHistoryDepth bounds the undo stack; the oldest snapshot is dropped
// when a new edit would exceed it.
const maxHistoryDepth = 100

// snapshot is the undoable state of a package: the section trees and the
// pending cell-indent queue. The style registry is append-only and ids
// never move, so restored elements keep valid property references
// without the registry itself being rolled back.
type snapshot struct {
	sections []*model.Section
	pending  []model.PendingCellIndent
}

type history struct {
	undo []snapshot
	redo []snapshot
}

func capture(pkg *model.Package) snapshot {
	snap := snapshot{
		sections: make([]*model.Section, len(pkg.Sections)),
		pending:  append([]model.PendingCellIndent(nil), pkg.PendingIndents...),
	}
	for i, sec := range pkg.Sections {
		dup := &model.Section{
			Index:       sec.Index,
			Source:      sec.Source,
			Removed:     append([]model.SourceSpan(nil), sec.Removed...),
			HeaderText:  sec.HeaderText,
			FooterText:  sec.FooterText,
			HeaderDirty: sec.HeaderDirty,
			FooterDirty: sec.FooterDirty,
		}
		cloned := make(map[model.Element]model.Element, len(sec.Elements))
		for _, el := range sec.Elements {
			c := model.CloneElement(el)
			cloned[el] = c
			dup.Elements = append(dup.Elements, c)
		}
		// Re-link wrapped tables to their cloned counterparts.
		for _, el := range dup.Elements {
			p, ok := el.(*model.Paragraph)
			if !ok {
				continue
			}
			for j, t := range p.ChildTables {
				if ct, ok := cloned[t].(*model.Table); ok {
					p.ChildTables[j] = ct
				}
			}
		}
		snap.sections[i] = dup
	}
	return snap
}

func restore(pkg *model.Package, snap snapshot) {
	pkg.Sections = snap.sections
	pkg.PendingIndents = snap.pending
}

// checkpoint records the current state as an undo point and clears the
// redo tail; every mutating operation calls it after validation.
func (s *Session) checkpoint() {
	s.history.undo = append(s.history.undo, capture(s.pkg))
	if len(s.history.undo) > maxHistoryDepth {
		s.history.undo = s.history.undo[1:]
	}
	s.history.redo = nil
}

// Undo reverts the most recent edit. It reports false when there is
// nothing to undo.
func (s *Session) Undo() bool {
	if len(s.history.undo) == 0 {
		return false
	}
	last := s.history.undo[len(s.history.undo)-1]
	s.history.undo = s.history.undo[:len(s.history.undo)-1]
	s.history.redo = append(s.history.redo, capture(s.pkg))
	restore(s.pkg, last)
	return true
}

// Redo re-applies the most recently undone edit. It reports false when
// there is nothing to redo.
func (s *Session) Redo() bool {
	if len(s.history.redo) == 0 {
		return false
	}
	last := s.history.redo[len(s.history.redo)-1]
	s.history.redo = s.history.redo[:len(s.history.redo)-1]
	s.history.undo = append(s.history.undo, capture(s.pkg))
	restore(s.pkg, last)
	return true
}
