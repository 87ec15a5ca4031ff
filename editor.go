package hanedit

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/hanedit/hanedit/core"
	"github.com/hanedit/hanedit/edit"
	"github.com/hanedit/hanedit/hwpx"
	"github.com/hanedit/hanedit/model"
	"github.com/hanedit/hanedit/rag"
)

// Editor is the command surface over one open document. An Editor owns
// its document exclusively and shares no state with other editors; the
// caller is responsible for not using it from multiple goroutines
// concurrently.
type Editor struct {
	pkg     *model.Package
	session *edit.Session
	index   *rag.Index
	options EditorOptions

	path     string
	closed   bool
	warnings []Warning
}

var errClosed = fmt.Errorf("editor is closed: %w", model.ErrInvalidArgument)

// Backup configures Save to keep the previous file contents under
// path + ".bak". Returns the Editor for chaining.
func (e *Editor) Backup() *Editor {
	e.options.backup = true
	return e
}

// Chunking sets the reading-index window geometry. Returns the Editor
// for chaining; takes effect on the next index rebuild.
func (e *Editor) Chunking(size, overlap int) *Editor {
	e.options.chunkSize = size
	e.options.chunkOverlap = overlap
	e.index = rag.NewIndex(e.pkg, e.options.chunkerConfig())
	return e
}

// Font sets the font assumed by marker-width estimation. Returns the
// Editor for chaining.
func (e *Editor) Font(name string, sizePt float64) *Editor {
	e.options.fontName = name
	e.options.fontSizePt = sizePt
	return e
}

// Warnings returns the non-fatal issues accumulated so far.
func (e *Editor) Warnings() []Warning {
	return e.warnings
}

// Close releases the editor. Mutating and saving calls on a closed
// editor fail with ErrInvalidArgument; read accessors keep serving the
// in-memory document. Close itself is idempotent.
func (e *Editor) Close() error {
	e.closed = true
	return nil
}

func (e *Editor) check() error {
	if e.closed {
		return errClosed
	}
	return nil
}

// Save writes the document back to the file it was opened from, through
// the verified atomic pipeline. Editors without a path (OpenBytes, New)
// need SaveAs first.
func (e *Editor) Save() error {
	if err := e.check(); err != nil {
		return err
	}
	if e.path == "" {
		return fmt.Errorf("no file path; use SaveAs: %w", model.ErrInvalidArgument)
	}
	return hwpx.Save(e.pkg, e.path, hwpx.SaveOptions{Backup: e.options.backup})
}

// SaveAs writes the document to path and makes it the editor's file.
func (e *Editor) SaveAs(path string) error {
	if err := e.check(); err != nil {
		return err
	}
	if err := hwpx.Save(e.pkg, path, hwpx.SaveOptions{Backup: e.options.backup}); err != nil {
		return err
	}
	e.path = path
	return nil
}

// Bytes serializes the document to package bytes without touching disk.
func (e *Editor) Bytes() ([]byte, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := hwpx.Write(e.pkg, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Text returns the document's flattened text in document order.
func (e *Editor) Text() string {
	return e.pkg.Text()
}

// ElementCount returns the number of root elements in the section.
func (e *Editor) ElementCount(section int) (int, error) {
	sec, err := e.pkg.Section(section)
	if err != nil {
		return 0, err
	}
	return len(sec.Elements), nil
}

// SectionCount returns the number of sections in the document.
func (e *Editor) SectionCount() int {
	return len(e.pkg.Sections)
}

// Metadata returns the document's manifest metadata.
func (e *Editor) Metadata() model.Metadata {
	return e.pkg.Metadata
}

// GetParagraph returns the text of the paragraph at element index i.
func (e *Editor) GetParagraph(section, i int) (string, error) {
	return e.session.GetParagraphText(section, i)
}

// InsertParagraph inserts a paragraph after element index after
// (-1 prepends) and returns its element index.
func (e *Editor) InsertParagraph(section, after int, text string) (int, error) {
	if err := e.check(); err != nil {
		return 0, err
	}
	return e.session.InsertParagraph(section, after, text)
}

// DeleteParagraph removes the paragraph at element index i, together
// with any tables wrapped inside its span.
func (e *Editor) DeleteParagraph(section, i int) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.session.DeleteParagraph(section, i)
}

// UpdateParagraph replaces the paragraph's text, keeping control runs.
func (e *Editor) UpdateParagraph(section, i int, text string) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.session.UpdateParagraph(section, i, text, false)
}

// UpdateParagraphPreservingRuns replaces the paragraph's text while
// keeping its run boundaries and character properties, for multi-run
// paragraphs whose formatting must survive the edit.
func (e *Editor) UpdateParagraphPreservingRuns(section, i int, text string) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.session.UpdateParagraph(section, i, text, true)
}

// AppendParagraphText appends text to the paragraph's last text run.
func (e *Editor) AppendParagraphText(section, i int, text string) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.session.AppendParagraphText(section, i, text)
}

// GetTable returns the table at element index i.
func (e *Editor) GetTable(section, i int) (*model.Table, error) {
	sec, err := e.pkg.Section(section)
	if err != nil {
		return nil, err
	}
	return sec.TableAt(i)
}

// InsertTable inserts a rows x cols table after element index after and
// returns its element index.
func (e *Editor) InsertTable(section, after, rows, cols int) (int, error) {
	if err := e.check(); err != nil {
		return 0, err
	}
	return e.session.InsertTable(section, after, rows, cols)
}

// DeleteTable removes the table at element index i.
func (e *Editor) DeleteTable(section, i int) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.session.DeleteTable(section, i)
}

// InsertRow inserts an empty row after row index after (-1 prepends).
func (e *Editor) InsertRow(section, table, after int) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.session.InsertRow(section, table, after)
}

// DeleteRow removes a row; deleting the sole row removes the table.
func (e *Editor) DeleteRow(section, table, row int) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.session.DeleteRow(section, table, row)
}

// InsertColumn inserts an empty column after column index after
// (-1 prepends).
func (e *Editor) InsertColumn(section, table, after int) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.session.InsertColumn(section, table, after)
}

// DeleteColumn removes a column; deleting the sole column removes the
// table.
func (e *Editor) DeleteColumn(section, table, col int) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.session.DeleteColumn(section, table, col)
}

// GetCell returns the text of cell (row, col); for positions covered by
// a merge this is the owning cell's text.
func (e *Editor) GetCell(section, table, row, col int) (string, error) {
	return e.session.GetCellText(section, table, row, col)
}

// SetCellText replaces the cell's content. Newlines produce separate
// paragraphs in the saved output.
func (e *Editor) SetCellText(section, table, row, col int, text string) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.session.SetCellText(section, table, row, col, text)
}

// MergeCells merges the rectangle into its top-left cell. Only the
// top-left cell's content survives.
func (e *Editor) MergeCells(section, table, startRow, startCol, endRow, endCol int) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.session.MergeCells(section, table, startRow, startCol, endRow, endCol)
}

// SplitCell splits the merged cell owning (row, col) back into single
// cells; restored cells start empty.
func (e *Editor) SplitCell(section, table, row, col int) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.session.SplitCell(section, table, row, col)
}

// SetHangingIndent applies a hanging indent of indentPt points to the
// paragraph at element index i.
func (e *Editor) SetHangingIndent(section, i int, indentPt float64) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.session.SetHangingIndent(section, i, indentPt)
}

// SetHangingIndentAuto derives the indent from the paragraph's leading
// marker and the configured font; it reports whether a marker was found.
func (e *Editor) SetHangingIndentAuto(section, i int) (bool, error) {
	if err := e.check(); err != nil {
		return false, err
	}
	return e.session.SetHangingIndentAuto(section, i, e.options.fontSizePt, e.options.fontName)
}

// GetHangingIndent returns the paragraph's hanging indent in points.
func (e *Editor) GetHangingIndent(section, i int) (float64, error) {
	return e.session.GetHangingIndent(section, i)
}

// RemoveHangingIndent resets the paragraph's indent to none.
func (e *Editor) RemoveHangingIndent(section, i int) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.session.RemoveHangingIndent(section, i)
}

// SetCellHangingIndent queues a hanging indent for a cell paragraph.
// The paragraph index is validated at save time, when multi-line cell
// text has been split into its final paragraphs.
func (e *Editor) SetCellHangingIndent(section, table, row, col, paragraph int, indentPt float64) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.session.SetCellHangingIndent(section, table, row, col, paragraph, indentPt)
}

// GetCellHangingIndent returns the queued or applied indent of a cell
// paragraph in points.
func (e *Editor) GetCellHangingIndent(section, table, row, col, paragraph int) (float64, error) {
	return e.session.GetCellHangingIndent(section, table, row, col, paragraph)
}

// RemoveCellHangingIndent queues a reset of a cell paragraph's indent.
func (e *Editor) RemoveCellHangingIndent(section, table, row, col, paragraph int) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.session.RemoveCellHangingIndent(section, table, row, col, paragraph)
}

// SearchText finds every occurrence of query in document order.
func (e *Editor) SearchText(query string) []edit.Match {
	return e.session.SearchText(query)
}

// ReplaceText replaces all occurrences across the document and returns
// the replacement count.
func (e *Editor) ReplaceText(old, new string) (int, error) {
	if err := e.check(); err != nil {
		return 0, err
	}
	return e.session.ReplaceText(old, new)
}

// ReplaceTextInCell replaces occurrences inside one cell only.
func (e *Editor) ReplaceTextInCell(section, table, row, col int, old, new string) (int, error) {
	if err := e.check(); err != nil {
		return 0, err
	}
	return e.session.ReplaceTextInCell(section, table, row, col, old, new)
}

// InsertImage stores the image as a binary attachment and appends a
// picture paragraph to the section, sized from the decoded dimensions.
func (e *Editor) InsertImage(section int, name string, data []byte) error {
	if err := e.check(); err != nil {
		return err
	}
	return hwpx.AddImage(e.pkg, section, name, data)
}

// InsertImageInCell inserts an image into cell (row, col) of a table.
func (e *Editor) InsertImageInCell(section, table, row, col int, name string, data []byte) error {
	if err := e.check(); err != nil {
		return err
	}
	return hwpx.AddImageInCell(e.pkg, section, table, row, col, name, data)
}

// HeaderText returns the section's running header text.
func (e *Editor) HeaderText(section int) (string, error) {
	sec, err := e.pkg.Section(section)
	if err != nil {
		return "", err
	}
	return sec.HeaderText, nil
}

// FooterText returns the section's running footer text.
func (e *Editor) FooterText(section int) (string, error) {
	sec, err := e.pkg.Section(section)
	if err != nil {
		return "", err
	}
	return sec.FooterText, nil
}

// SetHeaderText replaces the section's running header text.
func (e *Editor) SetHeaderText(section int, text string) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.session.SetHeaderText(section, text)
}

// SetFooterText replaces the section's running footer text.
func (e *Editor) SetFooterText(section int, text string) error {
	if err := e.check(); err != nil {
		return err
	}
	return e.session.SetFooterText(section, text)
}

// Chunks returns the reading index's chunk set, cached until
// InvalidateIndex.
func (e *Editor) Chunks() ([]rag.Chunk, error) {
	return e.index.Chunks()
}

// SearchChunks scores the cached chunks against query.
func (e *Editor) SearchChunks(query string, topK int, minScore float64) ([]rag.SearchResult, error) {
	return e.index.Search(query, rag.SearchConfig{TopK: topK, MinScore: minScore})
}

// TOC returns the marker-derived table of contents.
func (e *Editor) TOC() []rag.TOCEntry {
	return e.index.TOC()
}

// PositionIndex returns the flat per-element document map.
func (e *Editor) PositionIndex() []rag.Position {
	return e.index.Positions()
}

// InvalidateIndex drops every cached reading-index view. Edits do not
// invalidate automatically; call this when the index should reflect
// them.
func (e *Editor) InvalidateIndex() {
	e.index.Invalidate()
}

// Undo reverts the most recent edit; false when there is none.
func (e *Editor) Undo() bool {
	if e.closed {
		return false
	}
	return e.session.Undo()
}

// Redo re-applies the most recently undone edit; false when there is
// none.
func (e *Editor) Redo() bool {
	if e.closed {
		return false
	}
	return e.session.Redo()
}

// AnalyzeXML reports the open/close counts of every container tag in
// the section's source, without modifying anything.
func (e *Editor) AnalyzeXML(section int) ([]core.TagBalance, error) {
	sec, err := e.pkg.Section(section)
	if err != nil {
		return nil, err
	}
	return core.Analyze(sec.Source, hwpx.ContainerTags), nil
}

// RepairXML rebalances the section's container tags and reparses the
// section from the repaired source. Elements are rebuilt; prior element
// indices may no longer be valid. It reports whether anything changed.
func (e *Editor) RepairXML(section int) (bool, error) {
	if err := e.check(); err != nil {
		return false, err
	}
	sec, err := e.pkg.Section(section)
	if err != nil {
		return false, err
	}
	result := core.Repair(sec.Source, hwpx.ContainerTags)
	if !result.Changed {
		return false, nil
	}
	repaired, err := hwpx.ParseSection(result.XML)
	if err != nil {
		return false, fmt.Errorf("reparsing repaired section: %w", err)
	}
	repaired.Index = sec.Index
	e.pkg.Sections[section] = repaired
	e.noteRepair(result)
	return true, nil
}

func (e *Editor) noteRepair(result core.RepairResult) {
	for i := 0; i < result.RemovedOrphans; i++ {
		e.warnings = append(e.warnings, Warning{
			Code:    WarnRepairDroppedTag,
			Message: "dropped an orphan close tag",
		})
	}
	for i := 0; i < result.AddedClosers; i++ {
		e.warnings = append(e.warnings, Warning{
			Code:    WarnRepairAddedCloser,
			Message: "inserted a missing close tag",
		})
	}
}

// RepairBytes rebalances the container tags of every section part in
// raw package bytes, for files OpenBytes rejects with ErrCorrupt. It
// returns the repaired bytes and one warning per applied fix; input
// that is not a zip archive fails with ErrCorrupt.
func RepairBytes(data []byte) ([]byte, []Warning, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("opening archive: %v: %w", err, model.ErrCorrupt)
	}

	var warnings []Warning
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("opening %s: %v: %w", f.Name, err, model.ErrIO)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %v: %w", f.Name, err, model.ErrIO)
		}

		if hwpx.IsSectionPart(f.Name) {
			result := core.Repair(string(content), hwpx.ContainerTags)
			if result.Changed {
				content = []byte(result.XML)
				for i := 0; i < result.RemovedOrphans; i++ {
					warnings = append(warnings, Warning{
						Code:    WarnRepairDroppedTag,
						Message: fmt.Sprintf("%s: dropped an orphan close tag", f.Name),
					})
				}
				for i := 0; i < result.AddedClosers; i++ {
					warnings = append(warnings, Warning{
						Code:    WarnRepairAddedCloser,
						Message: fmt.Sprintf("%s: inserted a missing close tag", f.Name),
					})
				}
			}
		}

		header := &zip.FileHeader{Name: f.Name, Method: f.Method}
		w, err := zw.CreateHeader(header)
		if err != nil {
			return nil, nil, fmt.Errorf("creating %s: %v: %w", f.Name, err, model.ErrIO)
		}
		if _, err := w.Write(content); err != nil {
			return nil, nil, fmt.Errorf("writing %s: %v: %w", f.Name, err, model.ErrIO)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, nil, fmt.Errorf("closing archive: %v: %w", err, model.ErrIO)
	}
	return buf.Bytes(), warnings, nil
}
