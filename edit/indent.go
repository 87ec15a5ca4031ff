package edit

import (
	"fmt"

	"github.com/hanedit/hanedit/indent"
	"github.com/hanedit/hanedit/model"
)

// SetHangingIndent applies a hanging indent of indentPt points to the
// paragraph at element index i: wrapped lines align under the text by a
// negative first-line indent paired with an equal left margin. The
// property definition is resolved through the registry, so equal values
// across paragraphs share one definition.
func (s *Session) SetHangingIndent(section, i int, indentPt float64) error {
	sec, err := s.section(section)
	if err != nil {
		return err
	}
	para, err := sec.ParagraphAt(i)
	if err != nil {
		return err
	}
	if indentPt <= 0 {
		return fmt.Errorf("indent %vpt must be positive: %w", indentPt, model.ErrInvalidArgument)
	}
	s.checkpoint()
	para.ParaPrID = s.resolveIndentProps(para.ParaPrID, indentPt)
	para.Dirty = true
	return nil
}

// SetHangingIndentAuto detects a leading marker in the paragraph's text
// and applies the indent its width occupies. Paragraphs without a marker
// are left unchanged and report false.
func (s *Session) SetHangingIndentAuto(section, i int, fontSizePt float64, fontName string) (bool, error) {
	sec, err := s.section(section)
	if err != nil {
		return false, err
	}
	para, err := sec.ParagraphAt(i)
	if err != nil {
		return false, err
	}
	width := indent.CalculateHangingIndent(para.GetText(), fontSizePt, fontName)
	if width <= 0 {
		return false, nil
	}
	s.checkpoint()
	para.ParaPrID = s.resolveIndentProps(para.ParaPrID, width)
	para.Dirty = true
	return true, nil
}

// GetHangingIndent returns the paragraph's hanging indent in points, 0
// when the paragraph has none.
func (s *Session) GetHangingIndent(section, i int) (float64, error) {
	sec, err := s.section(section)
	if err != nil {
		return 0, err
	}
	para, err := sec.ParagraphAt(i)
	if err != nil {
		return 0, err
	}
	return s.indentOf(para.ParaPrID), nil
}

// RemoveHangingIndent resets the paragraph's indent fields to zero; a
// paragraph whose remaining properties match the base definition goes
// back to referencing it.
func (s *Session) RemoveHangingIndent(section, i int) error {
	sec, err := s.section(section)
	if err != nil {
		return err
	}
	para, err := sec.ParagraphAt(i)
	if err != nil {
		return err
	}
	s.checkpoint()
	para.ParaPrID = s.resolveClearedProps(para.ParaPrID)
	para.Dirty = true
	return nil
}

// SetCellHangingIndent queues a hanging indent for paragraph index
// paragraph of cell (row, col). The paragraph index is not validated
// against the current tree: multi-line cell text only becomes separate
// paragraphs at serialization, so existence is checked then. The
// property id is resolved now so a batch of equal requests shares one
// definition.
func (s *Session) SetCellHangingIndent(section, i, row, col, paragraph int, indentPt float64) error {
	_, tbl, err := s.table(section, i)
	if err != nil {
		return err
	}
	if tbl.OwnerAt(row, col) == nil {
		return fmt.Errorf("cell (%d,%d) outside %dx%d grid: %w", row, col, len(tbl.Rows), tbl.Cols, model.ErrNotFound)
	}
	if indentPt <= 0 {
		return fmt.Errorf("indent %vpt must be positive: %w", indentPt, model.ErrInvalidArgument)
	}
	if paragraph < 0 {
		return fmt.Errorf("paragraph index %d must be non-negative: %w", paragraph, model.ErrInvalidArgument)
	}
	s.checkpoint()
	s.queueCellIndent(section, i, row, col, paragraph, s.resolveIndentProps(0, indentPt))
	tbl.Dirty = true
	return nil
}

// GetCellHangingIndent returns the queued or applied indent of a cell
// paragraph in points.
func (s *Session) GetCellHangingIndent(section, i, row, col, paragraph int) (float64, error) {
	_, tbl, err := s.table(section, i)
	if err != nil {
		return 0, err
	}
	cell := tbl.OwnerAt(row, col)
	if cell == nil {
		return 0, fmt.Errorf("cell (%d,%d) outside %dx%d grid: %w", row, col, len(tbl.Rows), tbl.Cols, model.ErrNotFound)
	}
	// The most recent queued request wins over the tree state.
	for j := len(s.pkg.PendingIndents) - 1; j >= 0; j-- {
		pi := s.pkg.PendingIndents[j]
		if pi.Section == section && pi.Element == i && pi.Row == cell.RowAddr && pi.Col == cell.ColAddr && pi.Paragraph == paragraph {
			return s.indentOf(pi.ParaPrID), nil
		}
	}
	paras := cell.Paragraphs()
	if paragraph >= 0 && paragraph < len(paras) {
		return s.indentOf(paras[paragraph].ParaPrID), nil
	}
	return 0, nil
}

// RemoveCellHangingIndent queues a reset of the cell paragraph's indent.
func (s *Session) RemoveCellHangingIndent(section, i, row, col, paragraph int) error {
	_, tbl, err := s.table(section, i)
	if err != nil {
		return err
	}
	cell := tbl.OwnerAt(row, col)
	if cell == nil {
		return fmt.Errorf("cell (%d,%d) outside %dx%d grid: %w", row, col, len(tbl.Rows), tbl.Cols, model.ErrNotFound)
	}
	s.checkpoint()
	s.queueCellIndent(section, i, row, col, paragraph, s.resolveClearedProps(0))
	tbl.Dirty = true
	return nil
}

func (s *Session) queueCellIndent(section, element, row, col, paragraph, paraPrID int) {
	s.pkg.PendingIndents = append(s.pkg.PendingIndents, model.PendingCellIndent{
		Section:   section,
		Element:   element,
		Row:       row,
		Col:       col,
		Paragraph: paragraph,
		ParaPrID:  paraPrID,
	})
}

// shiftPendingElements follows an element insert or delete at index at
// in section: queued cell indents addressing later elements shift by
// delta, and a delete drops those addressing the removed element.
func (s *Session) shiftPendingElements(section, at, delta int) {
	kept := s.pkg.PendingIndents[:0]
	for _, pi := range s.pkg.PendingIndents {
		if pi.Section == section {
			if delta < 0 && pi.Element == at {
				continue
			}
			if pi.Element >= at {
				pi.Element += delta
			}
		}
		kept = append(kept, pi)
	}
	s.pkg.PendingIndents = kept
}

// shiftPendingRows follows a row insert or delete at index at in the
// table at element index element; a delete drops pendings on the
// removed row.
func (s *Session) shiftPendingRows(section, element, at, delta int) {
	kept := s.pkg.PendingIndents[:0]
	for _, pi := range s.pkg.PendingIndents {
		if pi.Section == section && pi.Element == element {
			if delta < 0 && pi.Row == at {
				continue
			}
			if pi.Row >= at {
				pi.Row += delta
			}
		}
		kept = append(kept, pi)
	}
	s.pkg.PendingIndents = kept
}

// shiftPendingCols is shiftPendingRows for columns.
func (s *Session) shiftPendingCols(section, element, at, delta int) {
	kept := s.pkg.PendingIndents[:0]
	for _, pi := range s.pkg.PendingIndents {
		if pi.Section == section && pi.Element == element {
			if delta < 0 && pi.Col == at {
				continue
			}
			if pi.Col >= at {
				pi.Col += delta
			}
		}
		kept = append(kept, pi)
	}
	s.pkg.PendingIndents = kept
}

// resolveIndentProps derives the hanging-indent property set from the
// paragraph's current definition and resolves it to an id.
func (s *Session) resolveIndentProps(currentID int, indentPt float64) int {
	props, _ := s.pkg.Styles.ParaPropsByID(currentID)
	props.RawXML = ""
	props.MarginLeft = indent.ToHWPUnit(indentPt)
	props.FirstLineIndent = -indent.ToHWPUnit(indentPt)
	return s.pkg.Styles.ResolveParaProps(props)
}

// resolveClearedProps is resolveIndentProps with zeroed indent fields.
func (s *Session) resolveClearedProps(currentID int) int {
	props, _ := s.pkg.Styles.ParaPropsByID(currentID)
	props.RawXML = ""
	props.MarginLeft = 0
	props.FirstLineIndent = 0
	return s.pkg.Styles.ResolveParaProps(props)
}

func (s *Session) indentOf(paraPrID int) float64 {
	props, ok := s.pkg.Styles.ParaPropsByID(paraPrID)
	if !ok || props.FirstLineIndent >= 0 {
		return 0
	}
	return indent.FromHWPUnit(-props.FirstLineIndent)
}
