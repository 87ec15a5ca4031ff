package hwpx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hanedit/hanedit/core"
	"github.com/hanedit/hanedit/model"
)

// maxTextChunk is the rune budget of one hp:t element. Long run text is
// split at word boundaries into consecutive hp:t siblings so no single
// text node grows unbounded.
const maxTextChunk = 500

// RenderSection serializes a section back to XML. Elements unchanged
// since parse are copied verbatim from the source, so an untouched
// document round-trips byte-exact; dirty and synthetic elements are
// regenerated. pendings are the cell hanging-indent requests targeting
// this section.
func RenderSection(sec *model.Section, pendings []model.PendingCellIndent) string {
	out, _ := renderSection(sec, pendings)
	return out
}

// renderSection is RenderSection plus the queued cell indents that
// addressed no on-disk paragraph. The save pipeline turns those into
// errors; render-only callers may ignore them.
func renderSection(sec *model.Section, pendings []model.PendingCellIndent) (string, []model.PendingCellIndent) {
	r := &sectionRenderer{sec: sec, src: sec.Source}
	for _, pi := range pendings {
		if r.pendings == nil {
			r.pendings = make(map[int][]model.PendingCellIndent)
		}
		r.pendings[pi.Element] = append(r.pendings[pi.Element], pi)
	}
	out := r.render()

	if sec.HeaderDirty {
		out = replaceEnclosedText(out, TagHeader, sec.HeaderText)
	}
	if sec.FooterDirty {
		out = replaceEnclosedText(out, TagFooter, sec.FooterText)
	}
	return out, r.unapplied
}

type sectionRenderer struct {
	sec      *model.Section
	src      string
	pendings map[int][]model.PendingCellIndent
	removed  []model.SourceSpan

	// unapplied collects queued cell indents whose cell or paragraph no
	// longer exists by render time.
	unapplied []model.PendingCellIndent
}

func (r *sectionRenderer) render() string {
	r.removed = append([]model.SourceSpan(nil), r.sec.Removed...)
	sort.Slice(r.removed, func(i, j int) bool { return r.removed[i].Start < r.removed[j].Start })

	var sb strings.Builder
	cursor := 0
	for i, el := range r.sec.Elements {
		if t, ok := el.(*model.Table); ok && t.Wrapped {
			continue // emitted through its wrapping paragraph
		}
		start, end := el.Span()
		if start < 0 {
			// Synthetic element. If nothing source-backed precedes it the
			// section preamble (declaration and open tag) must come first.
			if body := r.bodyStart(); cursor < body {
				r.copyRange(&sb, cursor, body)
				cursor = body
			}
			r.renderElement(&sb, el, i)
			continue
		}
		r.copyRange(&sb, cursor, start)
		if el.Modified() || r.needsRender(el, i) {
			r.renderElement(&sb, el, i)
		} else {
			r.copyRange(&sb, start, end)
		}
		cursor = end
	}
	r.copyRange(&sb, cursor, len(r.src))
	return sb.String()
}

// bodyStart returns the offset just past the section root's open tag.
func (r *sectionRenderer) bodyStart() int {
	spans := core.Slice(r.src, TagSection)
	if len(spans) == 0 {
		return 0
	}
	return core.Inner(r.src, spans[0], TagSection).Start
}

// needsRender reports whether a clean element still requires regeneration,
// which happens when a wrapping paragraph carries a dirty child table or a
// table has queued cell indents.
func (r *sectionRenderer) needsRender(el model.Element, idx int) bool {
	switch e := el.(type) {
	case *model.Paragraph:
		for _, t := range e.ChildTables {
			if t.Dirty {
				return true
			}
		}
		// A deleted child table leaves a removed span inside the
		// paragraph; gap-aware copying handles it.
		return false
	case *model.Table:
		return len(r.pendings[idx]) > 0
	}
	return false
}

// copyRange emits src[from:to) minus any removed spans inside it.
func (r *sectionRenderer) copyRange(sb *strings.Builder, from, to int) {
	for _, rm := range r.removed {
		if rm.End <= from || rm.Start >= to {
			continue
		}
		if rm.Start > from {
			sb.WriteString(r.src[from:rm.Start])
		}
		if rm.End > from {
			from = rm.End
		}
	}
	if from < to {
		sb.WriteString(r.src[from:to])
	}
}

func (r *sectionRenderer) renderElement(sb *strings.Builder, el model.Element, idx int) {
	switch e := el.(type) {
	case *model.Paragraph:
		if len(e.ChildTables) > 0 {
			r.renderWrappingParagraph(sb, e)
		} else {
			r.renderParagraph(sb, e, -1, nil)
		}
	case *model.Table:
		r.renderTable(sb, e, r.pendings[idx])
	case *model.Shape:
		sb.WriteString(e.RawXML)
	}
}

// renderWrappingParagraph emits a paragraph whose span encloses root
// tables. A clean paragraph is copied from the source with each live
// child table spliced in at its original position; a dirty one is
// regenerated with the tables re-homed into trailing runs.
func (r *sectionRenderer) renderWrappingParagraph(sb *strings.Builder, p *model.Paragraph) {
	if p.Dirty || p.Start < 0 {
		r.renderParagraph(sb, p, -1, nil)
		return
	}
	children := append([]*model.Table(nil), p.ChildTables...)
	sort.Slice(children, func(i, j int) bool { return children[i].Start < children[j].Start })

	cursor := p.Start
	for _, t := range children {
		r.copyRange(sb, cursor, t.Start)
		tIdx := r.elementIndex(t)
		if t.Dirty || len(r.pendings[tIdx]) > 0 {
			r.renderTable(sb, t, r.pendings[tIdx])
		} else {
			r.copyRange(sb, t.Start, t.End)
		}
		cursor = t.End
	}
	r.copyRange(sb, cursor, p.End)
}

func (r *sectionRenderer) elementIndex(el model.Element) int {
	for i, e := range r.sec.Elements {
		if e == el {
			return i
		}
	}
	return -1
}

// renderParagraph regenerates paragraph markup from the model. When
// paraPrOverride is non-negative it replaces the paragraph's property
// reference; onlyText restricts output to the given text instead of the
// paragraph's own (used for newline splitting in cells).
func (r *sectionRenderer) renderParagraph(sb *strings.Builder, p *model.Paragraph, paraPrOverride int, onlyText *string) {
	paraPr := p.ParaPrID
	if paraPrOverride >= 0 {
		paraPr = paraPrOverride
	}
	fmt.Fprintf(sb, `<hp:p paraPrIDRef="%d" styleIDRef="%d">`, paraPr, p.StyleID)

	if onlyText != nil {
		charPr := 0
		if len(p.Runs) > 0 {
			charPr = p.Runs[0].CharPrID
		}
		renderTextRun(sb, *onlyText, charPr)
	} else {
		wrote := false
		for _, run := range p.Runs {
			if run.RawContent != "" && run.Text == "" {
				fmt.Fprintf(sb, `<hp:run charPrIDRef="%d">`, run.CharPrID)
				sb.WriteString(run.RawContent)
				sb.WriteString(`</hp:run>`)
				wrote = true
				continue
			}
			renderTextRun(sb, run.Text, run.CharPrID)
			wrote = true
		}
		if !wrote {
			renderTextRun(sb, "", 0)
		}
		// Dirty wrapping paragraphs re-home their tables into runs.
		for _, t := range p.ChildTables {
			tIdx := r.elementIndex(t)
			fmt.Fprintf(sb, `<hp:run charPrIDRef="0">`)
			r.renderTable(sb, t, r.pendings[tIdx])
			sb.WriteString(`</hp:run>`)
		}
	}
	sb.WriteString(`</hp:p>`)
}

// renderTextRun emits one run, chunking long text across hp:t siblings.
func renderTextRun(sb *strings.Builder, text string, charPr int) {
	fmt.Fprintf(sb, `<hp:run charPrIDRef="%d">`, charPr)
	for _, chunk := range chunkText(text, maxTextChunk) {
		sb.WriteString(`<hp:t>`)
		sb.WriteString(xmlEscape(chunk))
		sb.WriteString(`</hp:t>`)
	}
	sb.WriteString(`</hp:run>`)
}

func (r *sectionRenderer) renderTable(sb *strings.Builder, t *model.Table, pendings []model.PendingCellIndent) {
	if t.Shell {
		sb.WriteString(`<hp:p paraPrIDRef="0" styleIDRef="0"><hp:run charPrIDRef="0">`)
	}
	matched := make([]bool, len(pendings))
	fmt.Fprintf(sb, `<hp:tbl rowCnt="%d" colCnt="%d">`, len(t.Rows), t.Cols)
	for _, row := range t.Rows {
		sb.WriteString(`<hp:tr>`)
		for _, cell := range row.Cells {
			var overrides map[int]int
			for k, pi := range pendings {
				if pi.Row == cell.RowAddr && pi.Col == cell.ColAddr {
					matched[k] = true
					if overrides == nil {
						overrides = make(map[int]int)
					}
					overrides[pi.Paragraph] = pi.ParaPrID
				}
			}
			emitted := r.renderCell(sb, cell, overrides)
			for _, pi := range pendings {
				if pi.Row == cell.RowAddr && pi.Col == cell.ColAddr && pi.Paragraph >= emitted {
					r.unapplied = append(r.unapplied, pi)
				}
			}
		}
		sb.WriteString(`</hp:tr>`)
	}
	sb.WriteString(`</hp:tbl>`)
	for k, pi := range pendings {
		if !matched[k] {
			r.unapplied = append(r.unapplied, pi)
		}
	}
	if t.Shell {
		sb.WriteString(`</hp:run></hp:p>`)
	}
}

// renderCell emits one owner cell and returns the number of on-disk
// paragraphs written. Text-only paragraph text containing newlines is
// split into one hp:p per line, so on-disk paragraph indices count those
// splits; overrides map such indices to paragraph property ids. A
// paragraph carrying raw-content runs (pictures, controls) is never
// split and keeps its runs; an override addressing it rewrites only the
// property reference.
func (r *sectionRenderer) renderCell(sb *strings.Builder, cell *model.Cell, overrides map[int]int) int {
	sb.WriteString(`<hp:tc>`)
	fmt.Fprintf(sb, `<hp:cellAddr colAddr="%d" rowAddr="%d"/>`, cell.ColAddr, cell.RowAddr)
	fmt.Fprintf(sb, `<hp:cellSpan colSpan="%d" rowSpan="%d"/>`, cell.ColSpan, cell.RowSpan)
	sb.WriteString(`<hp:subList>`)

	paraIdx := 0
	wrote := false
	for _, el := range cell.Content {
		switch e := el.(type) {
		case *model.Paragraph:
			if hasRawRuns(e) {
				override := -1
				if id, ok := overrides[paraIdx]; ok {
					override = id
				}
				r.renderParagraph(sb, e, override, nil)
				paraIdx++
				wrote = true
				continue
			}
			lines := strings.Split(e.GetText(), "\n")
			if len(lines) == 1 && len(overrides) == 0 {
				r.renderParagraph(sb, e, -1, nil)
				paraIdx++
			} else {
				for _, line := range lines {
					override := -1
					if id, ok := overrides[paraIdx]; ok {
						override = id
					}
					text := line
					r.renderParagraph(sb, e, override, &text)
					paraIdx++
				}
			}
			wrote = true
		case *model.Table:
			r.renderTable(sb, e, nil)
			wrote = true
		}
	}
	if !wrote {
		override := -1
		if id, ok := overrides[0]; ok {
			override = id
		}
		r.renderParagraph(sb, &model.Paragraph{Runs: []model.Run{{}}}, override, nil)
		paraIdx++
	}
	sb.WriteString(`</hp:subList></hp:tc>`)
	return paraIdx
}

// hasRawRuns reports whether any of the paragraph's runs carries
// verbatim inner markup.
func hasRawRuns(p *model.Paragraph) bool {
	for _, run := range p.Runs {
		if run.RawContent != "" {
			return true
		}
	}
	return false
}

// replaceEnclosedText rewrites the text of the first tag span in xml:
// the first hp:t inside it receives the new text, any others are
// emptied. Used for header and footer text updates.
func replaceEnclosedText(xmlSrc, tag, text string) string {
	spans := core.Slice(xmlSrc, tag)
	if len(spans) == 0 {
		return xmlSrc
	}
	sp := spans[0]
	region := xmlSrc[sp.Start:sp.End]

	tSpans := core.Slice(region, TagText)
	if len(tSpans) == 0 {
		return xmlSrc
	}
	var sb strings.Builder
	cursor := 0
	for i, t := range tSpans {
		inner := core.Inner(region, t, TagText)
		sb.WriteString(region[cursor:inner.Start])
		if i == 0 {
			sb.WriteString(xmlEscape(text))
		}
		cursor = inner.End
	}
	sb.WriteString(region[cursor:])
	return xmlSrc[:sp.Start] + sb.String() + xmlSrc[sp.End:]
}

// chunkText splits text into chunks of at most limit runes, preferring a
// break after the last space inside the window. Empty text yields one
// empty chunk so the run keeps an hp:t element.
func chunkText(text string, limit int) []string {
	if text == "" {
		return []string{""}
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= limit {
			chunks = append(chunks, string(runes))
			break
		}
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == ' ' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	return chunks
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func xmlEscape(s string) string {
	return escaper.Replace(s)
}

// RenderHeader returns the header part with any style definitions added
// since load appended into the property lists, item counts updated.
func RenderHeader(pkg *model.Package) string {
	if !pkg.Styles.Dirty() {
		return pkg.HeaderXML
	}
	out := pkg.HeaderXML

	if added := pkg.Styles.AddedParaProps(pkg.LoadedParaProps); len(added) > 0 {
		var sb strings.Builder
		for i, p := range added {
			id := pkg.LoadedParaProps + i
			fmt.Fprintf(&sb,
				`<hh:paraPr id="%d" align="%s" marginLeft="%d" marginRight="%d" firstLineIndent="%d" lineSpacing="%d"/>`,
				id, paraAlign(p.Align), p.MarginLeft, p.MarginRight, p.FirstLineIndent, p.LineSpacing)
		}
		out = appendToList(out, tagParaPrList, sb.String(), pkg.Styles.ParaPropsCount())
	}
	if added := pkg.Styles.AddedCharProps(pkg.LoadedCharProps); len(added) > 0 {
		var sb strings.Builder
		for i, c := range added {
			id := pkg.LoadedCharProps + i
			fmt.Fprintf(&sb, `<hh:charPr id="%d" height="%d" fontRef="%s"`, id, c.Size, xmlEscape(c.FontName))
			if c.Bold {
				sb.WriteString(` bold="1"`)
			}
			if c.Italic {
				sb.WriteString(` italic="1"`)
			}
			sb.WriteString(`/>`)
		}
		out = appendToList(out, tagCharPrList, sb.String(), pkg.Styles.CharPropsCount())
	}
	return out
}

func paraAlign(align string) string {
	if align == "" {
		return "both"
	}
	return align
}

// appendToList inserts defs just before the list's close tag and rewrites
// its itemCnt attribute. A header without the list is left unchanged.
func appendToList(src, listTag, defs string, count int) string {
	spans := core.Slice(src, listTag)
	if len(spans) == 0 {
		return src
	}
	inner := core.Inner(src, spans[0], listTag)
	out := src[:inner.End] + defs + src[inner.End:]

	// Rewrite itemCnt inside the open tag.
	openEnd := inner.Start
	open := out[spans[0].Start:openEnd]
	if i := strings.Index(open, `itemCnt="`); i >= 0 {
		j := strings.Index(open[i+len(`itemCnt="`):], `"`)
		if j >= 0 {
			open = open[:i] + fmt.Sprintf(`itemCnt="%d`, count) + open[i+len(`itemCnt="`)+j:]
			out = out[:spans[0].Start] + open + out[openEnd:]
		}
	}
	return out
}

// Write serializes the package to w as a zip archive. The mimetype entry
// comes first and uncompressed, per container convention.
func Write(pkg *model.Package, w io.Writer) error {
	pendings := pendingsBySection(pkg)

	zw := zip.NewWriter(w)

	mime := pkg.Parts[PartMimetype]
	if mime == nil {
		mime = []byte(mimetypeValue)
	}
	mw, err := zw.CreateHeader(&zip.FileHeader{Name: PartMimetype, Method: zip.Store})
	if err != nil {
		return fmt.Errorf("writing mimetype: %v: %w", err, model.ErrIO)
	}
	if _, err := mw.Write(mime); err != nil {
		return fmt.Errorf("writing mimetype: %v: %w", err, model.ErrIO)
	}

	writePart := func(name string, data []byte) error {
		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("creating %s: %v: %w", name, err, model.ErrIO)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("writing %s: %v: %w", name, err, model.ErrIO)
		}
		return nil
	}

	if err := writePart(PartHeader, []byte(RenderHeader(pkg))); err != nil {
		return err
	}
	for _, sec := range pkg.Sections {
		rendered, unapplied := renderSection(sec, pendings[sec.Index])
		if len(unapplied) > 0 {
			return unappliedIndentError(unapplied[0])
		}
		if err := writePart(sectionPart(sec.Index), []byte(rendered)); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(pkg.Parts))
	for name := range pkg.Parts {
		if name == PartMimetype {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writePart(name, pkg.Parts[name]); err != nil {
			return err
		}
	}

	binNames := make([]string, 0, len(pkg.BinData))
	for name := range pkg.BinData {
		binNames = append(binNames, name)
	}
	sort.Strings(binNames)
	for _, name := range binNames {
		if err := writePart(BinDataDir+name, pkg.BinData[name]); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing archive: %v: %w", err, model.ErrIO)
	}
	return nil
}

func unappliedIndentError(pi model.PendingCellIndent) error {
	return fmt.Errorf("queued cell indent for paragraph %d of cell (%d,%d) in element %d of section %d: no such paragraph: %w",
		pi.Paragraph, pi.Row, pi.Col, pi.Element, pi.Section, model.ErrNotFound)
}

func pendingsBySection(pkg *model.Package) map[int][]model.PendingCellIndent {
	if len(pkg.PendingIndents) == 0 {
		return nil
	}
	m := make(map[int][]model.PendingCellIndent)
	for _, pi := range pkg.PendingIndents {
		m[pi.Section] = append(m[pi.Section], pi)
	}
	return m
}

// SaveOptions controls the save pipeline.
type SaveOptions struct {
	// Backup writes the previous file contents to path + ".bak" before
	// replacing it.
	Backup bool
}

// Save writes the package to path atomically: serialize to a temp file in
// the same directory, verify every rendered section still has balanced
// container tags and that every queued cell indent found its paragraph,
// then rename over the target. A verification failure leaves the target
// untouched.
func Save(pkg *model.Package, path string, opts SaveOptions) error {
	pendings := pendingsBySection(pkg)
	for _, sec := range pkg.Sections {
		rendered, unapplied := renderSection(sec, pendings[sec.Index])
		if len(unapplied) > 0 {
			return unappliedIndentError(unapplied[0])
		}
		if !core.Balanced(rendered, ContainerTags) {
			return fmt.Errorf("section %d renders unbalanced XML: %w", sec.Index, model.ErrCorrupt)
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp file: %v: %w", err, model.ErrIO)
	}
	tmpName := tmp.Name()
	if err := Write(pkg, tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %v: %w", err, model.ErrIO)
	}

	if opts.Backup {
		if prev, err := os.ReadFile(path); err == nil {
			if err := os.WriteFile(path+".bak", prev, 0o644); err != nil {
				os.Remove(tmpName)
				return fmt.Errorf("writing backup: %v: %w", err, model.ErrIO)
			}
		}
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %v: %w", path, err, model.ErrIO)
	}
	return nil
}
