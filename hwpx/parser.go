package hwpx

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hanedit/hanedit/core"
	"github.com/hanedit/hanedit/model"
)

// ParseSection builds a section's element tree from its raw XML. The
// cleaning pass strips comment and field markup first, so element
// offsets address content only; container-tag imbalance fails with
// ErrCorrupt instead of producing a skewed tree.
func ParseSection(raw string) (*model.Section, error) {
	cleaned := core.StripComments(raw)
	cleaned = core.StripTags(cleaned, nonContentTags...)

	if !core.Balanced(cleaned, ContainerTags) {
		return nil, fmt.Errorf("unbalanced container tags: %w", model.ErrCorrupt)
	}

	sec := &model.Section{Source: cleaned}

	headerSpans := core.Slice(cleaned, TagHeader)
	footerSpans := core.Slice(cleaned, TagFooter)
	if len(headerSpans) > 0 {
		sec.HeaderText = spanText(cleaned, headerSpans[0])
	}
	if len(footerSpans) > 0 {
		sec.FooterText = spanText(cleaned, footerSpans[0])
	}

	excluded := append(append([]core.Span(nil), headerSpans...), footerSpans...)
	sec.Elements = parseElements(cleaned, core.Span{Start: 0, End: len(cleaned)}, excluded)
	return sec, nil
}

// sliceIn runs the slicer over a region of src, returning absolute spans.
func sliceIn(src string, region core.Span, tag string) []core.Span {
	spans := core.Slice(src[region.Start:region.End], tag)
	for i := range spans {
		spans[i].Start += region.Start
		spans[i].End += region.Start
	}
	return spans
}

// parseElements extracts the ordered root elements of a region. Tables
// are extracted first to obtain exclusion ranges; a paragraph is a root
// element only if its start offset falls outside every table range.
// A paragraph whose span contains a table (the wrapped-table
// irregularity) is split into its pre-table text and the table itself.
func parseElements(src string, region core.Span, excluded []core.Span) []model.Element {
	tableSpans := sliceIn(src, region, TagTable)
	paraSpans := sliceIn(src, region, TagParagraph)

	insideAny := func(off int, spans []core.Span) bool {
		for _, sp := range spans {
			if sp.ContainsOffset(off) {
				return true
			}
		}
		return false
	}

	var elements []model.Element
	claimed := make([]bool, len(tableSpans))

	for _, pSpan := range paraSpans {
		if insideAny(pSpan.Start, tableSpans) || insideAny(pSpan.Start, excluded) {
			continue
		}

		var contained []int
		for i, tSpan := range tableSpans {
			if pSpan.Contains(tSpan) {
				contained = append(contained, i)
				claimed[i] = true
			}
		}

		if len(contained) == 0 {
			elements = append(elements, parseParagraph(src, pSpan, nil))
			continue
		}

		// Wrapped table(s): split the paragraph into its own text and
		// the tables, provided the paragraph still has text content.
		var tblSpans []core.Span
		for _, i := range contained {
			tblSpans = append(tblSpans, tableSpans[i])
		}
		para := parseParagraph(src, pSpan, tblSpans)

		if para.GetText() != "" {
			for _, i := range contained {
				tbl := parseTable(src, tableSpans[i])
				tbl.Wrapped = true
				para.ChildTables = append(para.ChildTables, tbl)
				elements = append(elements, tbl)
			}
			elements = append(elements, para)
		} else {
			// The paragraph contributes no element; the tables take
			// over its full span so deletion and re-rendering cover
			// the wrapping shell.
			for n, i := range contained {
				tbl := parseTable(src, tableSpans[i])
				tbl.Shell = true
				if n == 0 {
					tbl.Start = pSpan.Start
				}
				if n == len(contained)-1 {
					tbl.End = pSpan.End
				}
				elements = append(elements, tbl)
			}
		}
	}

	// Tables not claimed by any paragraph stand alone at the root.
	for i, tSpan := range tableSpans {
		if claimed[i] || insideAny(tSpan.Start, excluded) {
			continue
		}
		elements = append(elements, parseTable(src, tSpan))
	}

	// Shapes are matched by type-specific tags and merged in by offset.
	for tag, kind := range shapeTags {
		for _, sSpan := range sliceIn(src, region, tag) {
			if insideAny(sSpan.Start, tableSpans) || insideAny(sSpan.Start, paraSpans) ||
				insideAny(sSpan.Start, excluded) {
				continue
			}
			elements = append(elements, &model.Shape{
				Kind:   kind,
				RawXML: src[sSpan.Start:sSpan.End],
				Start:  sSpan.Start,
				End:    sSpan.End,
			})
		}
	}

	sort.SliceStable(elements, func(i, j int) bool {
		si, _ := elements[i].Span()
		sj, _ := elements[j].Span()
		return si < sj
	})
	return elements
}

// parseParagraph builds a paragraph from its span. excludedTables are
// contained table spans whose content must not leak into run text.
func parseParagraph(src string, sp core.Span, excludedTables []core.Span) *model.Paragraph {
	para := &model.Paragraph{
		ParaPrID: atoiOr0(core.Attr(src, sp, "paraPrIDRef")),
		StyleID:  atoiOr0(core.Attr(src, sp, "styleIDRef")),
		Start:    sp.Start,
		End:      sp.End,
	}

	inner := core.Inner(src, sp, TagParagraph)
	for _, rSpan := range sliceIn(src, inner, TagRun) {
		para.Runs = append(para.Runs, parseRun(src, rSpan, excludedTables))
	}
	return para
}

// parseRun extracts a run's text and character-property reference. Runs
// carrying non-text machinery (section settings, controls, pictures)
// keep their inner XML verbatim so edits never drop it.
func parseRun(src string, sp core.Span, excludedTables []core.Span) model.Run {
	run := model.Run{
		CharPrID: atoiOr0(core.Attr(src, sp, "charPrIDRef")),
	}

	inner := core.Inner(src, sp, TagRun)
	textSpans := sliceIn(src, inner, TagText)

	var sb strings.Builder
	for _, tSpan := range textSpans {
		insideTable := false
		for _, ex := range excludedTables {
			if ex.ContainsOffset(tSpan.Start) {
				insideTable = true
				break
			}
		}
		if insideTable {
			continue
		}
		tInner := core.Inner(src, tSpan, TagText)
		sb.WriteString(xmlUnescape(src[tInner.Start:tInner.End]))
	}
	run.Text = sb.String()

	// Anything in the run besides hp:t elements is opaque content.
	// Contained root tables are modeled separately and never opaque.
	covered := append(append([]core.Span(nil), textSpans...), excludedTables...)
	if hasMarkupOutside(src, inner, covered) {
		run.RawContent = src[inner.Start:inner.End]
	}
	return run
}

// hasMarkupOutside reports whether the region contains any tag outside
// the given spans.
func hasMarkupOutside(src string, region core.Span, spans []core.Span) bool {
	for i := region.Start; i < region.End; i++ {
		if src[i] != '<' {
			continue
		}
		covered := false
		for _, sp := range spans {
			if sp.ContainsOffset(i) {
				covered = true
				break
			}
		}
		if !covered {
			return true
		}
	}
	return false
}

// parseTable resolves a table span into a grid: rows, owner cells with
// address and span attributes, and recursively parsed cell content.
func parseTable(src string, sp core.Span) *model.Table {
	tbl := &model.Table{
		Cols:  atoiOr0(core.Attr(src, sp, "colCnt")),
		Start: sp.Start,
		End:   sp.End,
	}

	inner := core.Inner(src, sp, TagTable)
	for r, rowSpan := range sliceIn(src, inner, TagRow) {
		row := &model.Row{}
		rowInner := core.Inner(src, rowSpan, TagRow)
		seq := 0
		for _, cellSpan := range sliceIn(src, rowInner, TagCell) {
			cell := parseCell(src, cellSpan, r, seq)
			seq = cell.ColAddr + cell.ColSpan
			row.Cells = append(row.Cells, cell)
		}
		tbl.Rows = append(tbl.Rows, row)
	}

	if tbl.Cols == 0 {
		for _, row := range tbl.Rows {
			width := 0
			for _, cell := range row.Cells {
				if end := cell.ColAddr + cell.ColSpan; end > width {
					width = end
				}
			}
			if width > tbl.Cols {
				tbl.Cols = width
			}
		}
	}
	return tbl
}

// parseCell reads one owner cell record. Address and span come from the
// cell's hp:cellAddr/hp:cellSpan children; absent ones default to the
// sequential position and span 1.
func parseCell(src string, sp core.Span, rowIdx, seqCol int) *model.Cell {
	cell := &model.Cell{
		RowAddr: rowIdx,
		ColAddr: seqCol,
		RowSpan: 1,
		ColSpan: 1,
	}

	inner := core.Inner(src, sp, TagCell)
	if addrs := sliceIn(src, inner, TagCellAddr); len(addrs) > 0 {
		cell.ColAddr = atoiOr0(core.Attr(src, addrs[0], "colAddr"))
		cell.RowAddr = atoiOr0(core.Attr(src, addrs[0], "rowAddr"))
	}
	if spans := sliceIn(src, inner, TagCellSpan); len(spans) > 0 {
		if v := atoiOr0(core.Attr(src, spans[0], "colSpan")); v > 0 {
			cell.ColSpan = v
		}
		if v := atoiOr0(core.Attr(src, spans[0], "rowSpan")); v > 0 {
			cell.RowSpan = v
		}
	}

	// Cell content lives under hp:subList: paragraphs and nested tables
	// at arbitrary depth, resolved by the same root algorithm.
	if subLists := sliceIn(src, inner, TagSubList); len(subLists) > 0 {
		subInner := core.Inner(src, subLists[0], TagSubList)
		cell.Content = parseElements(src, subInner, nil)
	}
	return cell
}

// spanText flattens the paragraph text inside a span.
func spanText(src string, sp core.Span) string {
	var parts []string
	for _, tSpan := range sliceIn(src, sp, TagText) {
		tInner := core.Inner(src, tSpan, TagText)
		parts = append(parts, xmlUnescape(src[tInner.Start:tInner.End]))
	}
	return strings.Join(parts, "\n")
}

var unescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

func xmlUnescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return unescaper.Replace(s)
}
