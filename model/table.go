package model

import (
	"fmt"
	"strings"
)

// Cell is one owner record in a table grid. Merge semantics: for every
// covered (row, col) exactly one cell record exists, the one whose
// RowAddr/ColAddr equals the top-left covered position; the other covered
// positions have no record at all.
type Cell struct {
	RowAddr, ColAddr int
	RowSpan, ColSpan int

	// Content is an ordered sequence of paragraphs and nested tables.
	Content []Element
}

// GetText joins the cell's paragraph and nested-table text with newlines.
func (c *Cell) GetText() string {
	var parts []string
	for _, el := range c.Content {
		if t := el.GetText(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// SetText replaces the cell content with a single paragraph.
func (c *Cell) SetText(text string) {
	c.Content = []Element{&Paragraph{
		Runs:  []Run{{Text: text}},
		Start: -1, End: -1,
		Dirty: true,
	}}
}

// Paragraphs returns the cell's paragraphs in document order, skipping
// nested tables.
func (c *Cell) Paragraphs() []*Paragraph {
	var ps []*Paragraph
	for _, el := range c.Content {
		if p, ok := el.(*Paragraph); ok {
			ps = append(ps, p)
		}
	}
	return ps
}

func (c *Cell) clone() *Cell {
	dup := &Cell{
		RowAddr: c.RowAddr, ColAddr: c.ColAddr,
		RowSpan: c.RowSpan, ColSpan: c.ColSpan,
	}
	for _, el := range c.Content {
		dup.Content = append(dup.Content, CloneElement(el))
	}
	return dup
}

// Row holds the owner cell records whose RowAddr is this row, ordered by
// ColAddr.
type Row struct {
	Cells []*Cell
}

// Table is a rectangular grid of cells addressed by (row, col).
type Table struct {
	Rows []*Row
	Cols int // grid width in columns

	// Wrapped marks a table whose source span lies inside a root
	// paragraph's span; the serializer emits it through that paragraph.
	Wrapped bool

	// Shell marks a table that absorbed an otherwise empty wrapping
	// paragraph: its span covers the paragraph shell, and regeneration
	// must re-emit that shell around the table markup.
	Shell bool

	Start, End int
	Dirty      bool
}

func (t *Table) Type() ElementType { return ElementTypeTable }
func (t *Table) Span() (int, int)  { return t.Start, t.End }
func (t *Table) Modified() bool    { return t.Dirty }

// GetText returns a tab-separated plain text rendering, one line per row.
func (t *Table) GetText() string {
	var sb strings.Builder
	for i, row := range t.Rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		for j, cell := range row.Cells {
			if j > 0 {
				sb.WriteString("\t")
			}
			sb.WriteString(strings.ReplaceAll(cell.GetText(), "\n", " "))
		}
	}
	return sb.String()
}

// NewTable creates a rows×cols table of unmerged cells, each holding one
// empty paragraph.
func NewTable(rows, cols int) *Table {
	t := &Table{Cols: cols, Start: -1, End: -1, Dirty: true}
	for r := 0; r < rows; r++ {
		row := &Row{}
		for c := 0; c < cols; c++ {
			cell := &Cell{RowAddr: r, ColAddr: c, RowSpan: 1, ColSpan: 1}
			cell.SetText("")
			row.Cells = append(row.Cells, cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// RowCount returns the number of grid rows.
func (t *Table) RowCount() int { return len(t.Rows) }

// ColCount returns the grid width in columns.
func (t *Table) ColCount() int { return t.Cols }

// OwnerAt returns the cell record covering (row, col), or nil when the
// position is outside the grid. For merged positions this is the master
// cell, which may be addressed at a smaller row/col.
func (t *Table) OwnerAt(row, col int) *Cell {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= t.Cols {
		return nil
	}
	for r := row; r >= 0; r-- {
		for _, cell := range t.Rows[r].Cells {
			if cell.RowAddr <= row && row < cell.RowAddr+cell.RowSpan &&
				cell.ColAddr <= col && col < cell.ColAddr+cell.ColSpan {
				return cell
			}
		}
	}
	return nil
}

// CellAt returns the owner record addressed exactly at (row, col), or nil
// when that position is covered by a merge or outside the grid.
func (t *Table) CellAt(row, col int) *Cell {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	for _, cell := range t.Rows[row].Cells {
		if cell.ColAddr == col {
			return cell
		}
	}
	return nil
}

// MergeCells merges the rectangular range into the top-left cell, which
// becomes the master. The other covered cells' records are removed and
// their content is discarded; master content wins. The range must lie
// inside the grid, span more than one cell, and contain no cell already
// part of a merge.
func (t *Table) MergeCells(startRow, startCol, endRow, endCol int) error {
	if startRow > endRow || startCol > endCol {
		return fmt.Errorf("inverted merge range (%d,%d)-(%d,%d): %w",
			startRow, startCol, endRow, endCol, ErrInvalidArgument)
	}
	if startRow < 0 || endRow >= len(t.Rows) || startCol < 0 || endCol >= t.Cols {
		return fmt.Errorf("merge range (%d,%d)-(%d,%d) outside %dx%d grid: %w",
			startRow, startCol, endRow, endCol, len(t.Rows), t.Cols, ErrNotFound)
	}
	if startRow == endRow && startCol == endCol {
		return fmt.Errorf("merge range contains a single cell: %w", ErrInvalidArgument)
	}
	// Every position in the range must be owned by an unmerged cell.
	for r := startRow; r <= endRow; r++ {
		for c := startCol; c <= endCol; c++ {
			owner := t.OwnerAt(r, c)
			if owner == nil {
				return fmt.Errorf("no cell covers (%d,%d): %w", r, c, ErrCorrupt)
			}
			if owner.RowSpan > 1 || owner.ColSpan > 1 {
				return fmt.Errorf("merge range overlaps existing merge at (%d,%d): %w",
					owner.RowAddr, owner.ColAddr, ErrInvalidArgument)
			}
		}
	}

	master := t.CellAt(startRow, startCol)
	if master == nil {
		return fmt.Errorf("no cell record at (%d,%d): %w", startRow, startCol, ErrCorrupt)
	}
	for r := startRow; r <= endRow; r++ {
		row := t.Rows[r]
		kept := row.Cells[:0]
		for _, cell := range row.Cells {
			if cell != master &&
				cell.RowAddr >= startRow && cell.RowAddr <= endRow &&
				cell.ColAddr >= startCol && cell.ColAddr <= endCol {
				continue
			}
			kept = append(kept, cell)
		}
		row.Cells = kept
	}
	master.RowSpan = endRow - startRow + 1
	master.ColSpan = endCol - startCol + 1
	t.Dirty = true
	return nil
}

// SplitCell is the structural inverse of MergeCells for grid shape: it
// restores one empty cell record per covered position and clears the
// spans on the target. The target must currently be merged. Content is
// not redistributed; the original cell keeps its content.
func (t *Table) SplitCell(row, col int) error {
	cell := t.CellAt(row, col)
	if cell == nil {
		return fmt.Errorf("no cell record at (%d,%d): %w", row, col, ErrNotFound)
	}
	if cell.RowSpan <= 1 && cell.ColSpan <= 1 {
		return fmt.Errorf("cell (%d,%d) is not merged: %w", row, col, ErrInvalidArgument)
	}
	rowSpan, colSpan := cell.RowSpan, cell.ColSpan
	cell.RowSpan, cell.ColSpan = 1, 1
	for r := row; r < row+rowSpan; r++ {
		for c := col; c < col+colSpan; c++ {
			if r == row && c == col {
				continue
			}
			restored := &Cell{RowAddr: r, ColAddr: c, RowSpan: 1, ColSpan: 1}
			restored.SetText("")
			t.insertCellSorted(r, restored)
		}
	}
	t.Dirty = true
	return nil
}

// insertCellSorted places a cell record into row r keeping ColAddr order.
func (t *Table) insertCellSorted(r int, cell *Cell) {
	row := t.Rows[r]
	at := len(row.Cells)
	for i, existing := range row.Cells {
		if existing.ColAddr > cell.ColAddr {
			at = i
			break
		}
	}
	row.Cells = append(row.Cells, nil)
	copy(row.Cells[at+1:], row.Cells[at:])
	row.Cells[at] = cell
}

// InsertRow inserts a new grid row before index at (at == RowCount
// appends). Vertical merges crossing the boundary grow by one row; other
// columns receive fresh empty cells.
func (t *Table) InsertRow(at int) error {
	if at < 0 || at > len(t.Rows) {
		return fmt.Errorf("row index %d out of range [0,%d]: %w", at, len(t.Rows), ErrNotFound)
	}
	for _, row := range t.Rows {
		for _, cell := range row.Cells {
			if cell.RowAddr >= at {
				cell.RowAddr++
			} else if cell.RowAddr+cell.RowSpan > at {
				cell.RowSpan++
			}
		}
	}
	newRow := &Row{}
	for c := 0; c < t.Cols; c++ {
		// Skip columns covered by a merge that now spans the new row.
		covered := false
		for _, row := range t.Rows {
			for _, cell := range row.Cells {
				if cell.RowAddr < at && at < cell.RowAddr+cell.RowSpan &&
					cell.ColAddr <= c && c < cell.ColAddr+cell.ColSpan {
					covered = true
				}
			}
		}
		if covered {
			continue
		}
		cell := &Cell{RowAddr: at, ColAddr: c, RowSpan: 1, ColSpan: 1}
		cell.SetText("")
		newRow.Cells = append(newRow.Cells, cell)
	}
	t.Rows = append(t.Rows, nil)
	copy(t.Rows[at+1:], t.Rows[at:])
	t.Rows[at] = newRow
	t.Dirty = true
	return nil
}

// DeleteRow removes grid row at. Owner cells in the row with RowSpan > 1
// are re-homed to the next row; vertical merges crossing the row shrink
// by one. Deleting the sole row is rejected; the caller cascades to
// deleting the table instead.
func (t *Table) DeleteRow(at int) error {
	if at < 0 || at >= len(t.Rows) {
		return fmt.Errorf("row index %d out of range [0,%d): %w", at, len(t.Rows), ErrNotFound)
	}
	if len(t.Rows) == 1 {
		return fmt.Errorf("cannot delete the only row: %w", ErrInvalidArgument)
	}
	// Re-home spanning owners from the deleted row into the next row.
	for _, cell := range t.Rows[at].Cells {
		if cell.RowSpan > 1 {
			cell.RowAddr = at + 1
			cell.RowSpan--
			t.insertCellSorted(at+1, cell)
		}
	}
	// Shrink merges crossing the row from above, shift later rows up.
	for r, row := range t.Rows {
		if r == at {
			continue
		}
		for _, cell := range row.Cells {
			if cell.RowAddr < at && cell.RowAddr+cell.RowSpan > at {
				cell.RowSpan--
			} else if cell.RowAddr > at {
				cell.RowAddr--
			}
		}
	}
	t.Rows = append(t.Rows[:at], t.Rows[at+1:]...)
	t.Dirty = true
	return nil
}

// InsertColumn inserts a grid column before index at (at == ColCount
// appends). Horizontal merges crossing the boundary widen by one.
func (t *Table) InsertColumn(at int) error {
	if at < 0 || at > t.Cols {
		return fmt.Errorf("column index %d out of range [0,%d]: %w", at, t.Cols, ErrNotFound)
	}
	for r, row := range t.Rows {
		covered := false
		for _, cell := range row.Cells {
			if cell.ColAddr >= at {
				cell.ColAddr++
			} else if cell.ColAddr+cell.ColSpan > at {
				cell.ColSpan++
				covered = true
			}
		}
		// Rows fully covered at this column by a vertical merge from
		// above get no record either.
		if !covered && t.coveredFromAbove(r, at) {
			covered = true
		}
		if !covered {
			cell := &Cell{RowAddr: r, ColAddr: at, RowSpan: 1, ColSpan: 1}
			cell.SetText("")
			t.insertCellSorted(r, cell)
		}
	}
	t.Cols++
	t.Dirty = true
	return nil
}

// coveredFromAbove reports whether (row, col) is covered by a vertical
// merge owned in an earlier row after ColAddr adjustment.
func (t *Table) coveredFromAbove(row, col int) bool {
	for r := 0; r < row; r++ {
		for _, cell := range t.Rows[r].Cells {
			if cell.RowAddr+cell.RowSpan > row &&
				cell.ColAddr <= col && col < cell.ColAddr+cell.ColSpan {
				return true
			}
		}
	}
	return false
}

// DeleteColumn removes grid column at. Owner cells there with ColSpan > 1
// are re-homed one column right; horizontal merges crossing the column
// shrink by one. Deleting the sole column is rejected; the caller
// cascades to deleting the table.
func (t *Table) DeleteColumn(at int) error {
	if at < 0 || at >= t.Cols {
		return fmt.Errorf("column index %d out of range [0,%d): %w", at, t.Cols, ErrNotFound)
	}
	if t.Cols == 1 {
		return fmt.Errorf("cannot delete the only column: %w", ErrInvalidArgument)
	}
	for _, row := range t.Rows {
		kept := row.Cells[:0]
		for _, cell := range row.Cells {
			switch {
			case cell.ColAddr == at && cell.ColSpan > 1:
				cell.ColAddr = at + 1
				cell.ColSpan--
				kept = append(kept, cell)
			case cell.ColAddr == at:
				continue // dropped with the column
			case cell.ColAddr < at && cell.ColAddr+cell.ColSpan > at:
				cell.ColSpan--
				kept = append(kept, cell)
			default:
				kept = append(kept, cell)
			}
			// fallthrough for later shift below
		}
		row.Cells = kept
		for _, cell := range row.Cells {
			if cell.ColAddr > at {
				cell.ColAddr--
			}
		}
	}
	t.Cols--
	t.Dirty = true
	return nil
}

// CloneElement deep-copies an element; used by the undo log.
func CloneElement(el Element) Element {
	switch e := el.(type) {
	case *Paragraph:
		dup := *e
		dup.Runs = append([]Run(nil), e.Runs...)
		dup.ChildTables = append([]*Table(nil), e.ChildTables...)
		return &dup
	case *Shape:
		dup := *e
		return &dup
	case *Table:
		dup := &Table{Cols: e.Cols, Wrapped: e.Wrapped, Shell: e.Shell, Start: e.Start, End: e.End, Dirty: e.Dirty}
		for _, row := range e.Rows {
			nr := &Row{}
			for _, cell := range row.Cells {
				nr.Cells = append(nr.Cells, cell.clone())
			}
			dup.Rows = append(dup.Rows, nr)
		}
		return dup
	default:
		return el
	}
}
