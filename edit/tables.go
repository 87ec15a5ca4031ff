package edit

import (
	"fmt"

	"github.com/hanedit/hanedit/model"
)

// InsertTable inserts a rows x cols table after element index after;
// after == -1 prepends. Cells start with one empty paragraph each.
// Returns the new table's element index.
func (s *Session) InsertTable(section, after, rows, cols int) (int, error) {
	sec, err := s.section(section)
	if err != nil {
		return 0, err
	}
	if rows < 1 || cols < 1 {
		return 0, fmt.Errorf("table size %dx%d must be at least 1x1: %w", rows, cols, model.ErrInvalidArgument)
	}
	if after < -1 || after >= len(sec.Elements) {
		return 0, fmt.Errorf("insert position %d out of range [-1,%d): %w", after, len(sec.Elements), model.ErrNotFound)
	}
	s.checkpoint()
	tbl := model.NewTable(rows, cols)
	tbl.Shell = true // tables sit inside a paragraph in this dialect
	tbl.Dirty = true
	if err := sec.InsertElement(after, tbl); err != nil {
		return 0, err
	}
	s.shiftPendingElements(section, after+1, 1)
	return after + 1, nil
}

// DeleteTable removes the table at element index i, and detaches it from
// its wrapping paragraph when the table is wrapped.
func (s *Session) DeleteTable(section, i int) error {
	sec, err := s.section(section)
	if err != nil {
		return err
	}
	tbl, err := sec.TableAt(i)
	if err != nil {
		return err
	}
	s.checkpoint()
	return s.deleteTableElement(sec, tbl, i)
}

func (s *Session) deleteTableElement(sec *model.Section, tbl *model.Table, i int) error {
	if tbl.Wrapped {
		for _, el := range sec.Elements {
			p, ok := el.(*model.Paragraph)
			if !ok {
				continue
			}
			for j, child := range p.ChildTables {
				if child == tbl {
					p.ChildTables = append(p.ChildTables[:j], p.ChildTables[j+1:]...)
					break
				}
			}
		}
	}
	if err := sec.DeleteElement(i); err != nil {
		return err
	}
	s.shiftPendingElements(sec.Index, i, -1)
	return nil
}

// GetCellText returns the text of cell (row, col) of the table at
// element index i. The cell may be a covered position of a merge; the
// owning cell's text is returned.
func (s *Session) GetCellText(section, i, row, col int) (string, error) {
	_, tbl, err := s.table(section, i)
	if err != nil {
		return "", err
	}
	cell := tbl.OwnerAt(row, col)
	if cell == nil {
		return "", fmt.Errorf("cell (%d,%d) outside %dx%d grid: %w", row, col, len(tbl.Rows), tbl.Cols, model.ErrNotFound)
	}
	return cell.GetText(), nil
}

// SetCellText replaces the content of cell (row, col) with a single
// paragraph. Newlines in text become separate paragraphs on disk.
func (s *Session) SetCellText(section, i, row, col int, text string) error {
	_, tbl, err := s.table(section, i)
	if err != nil {
		return err
	}
	cell := tbl.OwnerAt(row, col)
	if cell == nil {
		return fmt.Errorf("cell (%d,%d) outside %dx%d grid: %w", row, col, len(tbl.Rows), tbl.Cols, model.ErrNotFound)
	}
	s.checkpoint()
	cell.SetText(text)
	tbl.Dirty = true
	return nil
}

// MergeCells merges the rectangle (startRow, startCol) to (endRow,
// endCol) into one cell. Only the master (top-left) cell's content
// survives; the other covered cells' content is discarded.
func (s *Session) MergeCells(section, i, startRow, startCol, endRow, endCol int) error {
	_, tbl, err := s.table(section, i)
	if err != nil {
		return err
	}
	s.checkpoint()
	if err := tbl.MergeCells(startRow, startCol, endRow, endCol); err != nil {
		s.rollback()
		return err
	}
	tbl.Dirty = true
	return nil
}

// SplitCell splits the merged cell owning (row, col) back into single
// cells. Restored positions start empty; content is not redistributed.
func (s *Session) SplitCell(section, i, row, col int) error {
	_, tbl, err := s.table(section, i)
	if err != nil {
		return err
	}
	s.checkpoint()
	if err := tbl.SplitCell(row, col); err != nil {
		s.rollback()
		return err
	}
	tbl.Dirty = true
	return nil
}

// InsertRow inserts an empty row after row index after; after == -1
// prepends. Merges spanning the boundary grow by one row.
func (s *Session) InsertRow(section, i, after int) error {
	_, tbl, err := s.table(section, i)
	if err != nil {
		return err
	}
	if after < -1 || after >= len(tbl.Rows) {
		return fmt.Errorf("insert position %d out of range [-1,%d): %w", after, len(tbl.Rows), model.ErrNotFound)
	}
	s.checkpoint()
	if err := tbl.InsertRow(after + 1); err != nil {
		s.rollback()
		return err
	}
	s.shiftPendingRows(section, i, after+1, 1)
	tbl.Dirty = true
	return nil
}

// DeleteRow removes row index row. Deleting the sole remaining row
// deletes the table element itself.
func (s *Session) DeleteRow(section, i, row int) error {
	sec, tbl, err := s.table(section, i)
	if err != nil {
		return err
	}
	if len(tbl.Rows) == 1 {
		if row != 0 {
			return fmt.Errorf("row %d out of range [0,1): %w", row, model.ErrNotFound)
		}
		s.checkpoint()
		return s.deleteTableElement(sec, tbl, i)
	}
	s.checkpoint()
	if err := tbl.DeleteRow(row); err != nil {
		s.rollback()
		return err
	}
	s.shiftPendingRows(section, i, row, -1)
	tbl.Dirty = true
	return nil
}

// InsertColumn inserts an empty column after column index after;
// after == -1 prepends.
func (s *Session) InsertColumn(section, i, after int) error {
	_, tbl, err := s.table(section, i)
	if err != nil {
		return err
	}
	if after < -1 || after >= tbl.Cols {
		return fmt.Errorf("insert position %d out of range [-1,%d): %w", after, tbl.Cols, model.ErrNotFound)
	}
	s.checkpoint()
	if err := tbl.InsertColumn(after + 1); err != nil {
		s.rollback()
		return err
	}
	s.shiftPendingCols(section, i, after+1, 1)
	tbl.Dirty = true
	return nil
}

// DeleteColumn removes column index col. Deleting the sole remaining
// column deletes the table element itself.
func (s *Session) DeleteColumn(section, i, col int) error {
	sec, tbl, err := s.table(section, i)
	if err != nil {
		return err
	}
	if tbl.Cols == 1 {
		if col != 0 {
			return fmt.Errorf("column %d out of range [0,1): %w", col, model.ErrNotFound)
		}
		s.checkpoint()
		return s.deleteTableElement(sec, tbl, i)
	}
	s.checkpoint()
	if err := tbl.DeleteColumn(col); err != nil {
		s.rollback()
		return err
	}
	s.shiftPendingCols(section, i, col, -1)
	tbl.Dirty = true
	return nil
}

// rollback drops the last checkpoint after a validation failure inside
// the model layer, so failed operations leave no undo entry.
func (s *Session) rollback() {
	if n := len(s.history.undo); n > 0 {
		s.history.undo = s.history.undo[:n-1]
	}
}
