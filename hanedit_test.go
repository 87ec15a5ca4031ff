package hanedit

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hanedit/hanedit/hwpx"
	"github.com/hanedit/hanedit/model"
)

const testHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<hh:head xmlns:hh="http://www.hancom.co.kr/hwpml/2011/head" version="1.0">
<hh:refList>
<hh:paraPrList itemCnt="1">
<hh:paraPr id="0" align="both"/>
</hh:paraPrList>
<hh:charPrList itemCnt="1">
<hh:charPr id="0" height="1000" fontRef="함초롬바탕"/>
</hh:charPrList>
</hh:refList>
</hh:head>
`

const testManifest = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<opf:package xmlns:opf="http://www.idpf.org/2007/opf/">
<opf:metadata>
<opf:title>표준계약서</opf:title>
<opf:creator>김철수</opf:creator>
</opf:metadata>
</opf:package>
`

const testSection = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<hs:sec xmlns:hs="http://www.hancom.co.kr/hwpml/2011/section" xmlns:hp="http://www.hancom.co.kr/hwpml/2011/paragraph">
<hp:p paraPrIDRef="0" styleIDRef="0"><hp:run charPrIDRef="0"><hp:t>제1조 목적</hp:t></hp:run></hp:p>
<hp:p paraPrIDRef="0" styleIDRef="0"><hp:run charPrIDRef="0"><hp:t>이 계약은 당사자 간의 권리 의무를 정한다.</hp:t></hp:run></hp:p>
<hp:p paraPrIDRef="0" styleIDRef="0"><hp:run charPrIDRef="0"><hp:t>제2조 정의</hp:t></hp:run></hp:p>
</hs:sec>
`

// buildDoc assembles a package archive, applying overrides to the
// default parts. An empty override removes the part.
func buildDoc(t *testing.T, overrides map[string]string) []byte {
	t.Helper()
	entries := map[string]string{
		hwpx.PartMimetype:       "application/hwp+zip",
		hwpx.PartManifest:       testManifest,
		hwpx.PartHeader:         testHeader,
		"Contents/section0.xml": testSection,
	}
	for name, content := range overrides {
		if content == "" {
			delete(entries, name)
			continue
		}
		entries[name] = content
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}
	return buf.Bytes()
}

func openEditor(t *testing.T) *Editor {
	t.Helper()
	ed, err := OpenBytes(buildDoc(t, nil))
	if err != nil {
		t.Fatalf("OpenBytes() error = %v", err)
	}
	return ed
}

func TestOpenEditSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contract.hwpx")
	original := buildDoc(t, nil)
	if err := os.WriteFile(path, original, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	ed, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	ed.Backup()

	if got := ed.Metadata().Title; got != "표준계약서" {
		t.Errorf("title = %q", got)
	}
	if n, err := ed.ElementCount(0); err != nil || n != 3 {
		t.Fatalf("ElementCount = %d, %v, want 3", n, err)
	}

	if err := ed.UpdateParagraph(0, 1, "이 계약은 개정되었다."); err != nil {
		t.Fatalf("UpdateParagraph error = %v", err)
	}
	if err := ed.Save(); err != nil {
		t.Fatalf("Save error = %v", err)
	}
	if err := ed.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}

	backup, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("reading backup: %v", err)
	}
	if !bytes.Equal(backup, original) {
		t.Error("backup should hold the pre-save bytes")
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopening saved file: %v", err)
	}
	text, err := reopened.GetParagraph(0, 1)
	if err != nil {
		t.Fatalf("GetParagraph error = %v", err)
	}
	if text != "이 계약은 개정되었다." {
		t.Errorf("paragraph 1 after reopen = %q", text)
	}
	if !strings.Contains(reopened.Text(), "제1조 목적") {
		t.Error("untouched paragraph should survive the round trip")
	}
}

func TestNewDocumentWorkflow(t *testing.T) {
	ed := New()

	idx, err := ed.InsertParagraph(0, -1, "제1조 총칙")
	if err != nil {
		t.Fatalf("InsertParagraph error = %v", err)
	}
	if idx != 0 {
		t.Fatalf("inserted paragraph index = %d, want 0", idx)
	}
	tblIdx, err := ed.InsertTable(0, idx, 2, 3)
	if err != nil {
		t.Fatalf("InsertTable error = %v", err)
	}
	if err := ed.SetCellText(0, tblIdx, 0, 0, "항목"); err != nil {
		t.Fatalf("SetCellText error = %v", err)
	}

	data, err := ed.Bytes()
	if err != nil {
		t.Fatalf("Bytes error = %v", err)
	}
	back, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("reopening serialized document: %v", err)
	}
	if n, _ := back.ElementCount(0); n != 2 {
		t.Fatalf("elements after reopen = %d, want 2", n)
	}
	cell, err := back.GetCell(0, tblIdx, 0, 0)
	if err != nil {
		t.Fatalf("GetCell error = %v", err)
	}
	if cell != "항목" {
		t.Errorf("cell text = %q", cell)
	}
}

func TestSaveAs(t *testing.T) {
	ed := openEditor(t)
	if err := ed.Save(); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("Save without path = %v, want ErrInvalidArgument", err)
	}

	path := filepath.Join(t.TempDir(), "copy.hwpx")
	if err := ed.SaveAs(path); err != nil {
		t.Fatalf("SaveAs error = %v", err)
	}
	// The path sticks; a plain Save now succeeds.
	if err := ed.Save(); err != nil {
		t.Errorf("Save after SaveAs error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
}

func TestOpenRejectsLegacyBinary(t *testing.T) {
	magic := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 64)...)
	if _, err := OpenBytes(magic); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("OpenBytes(compound file) = %v, want ErrInvalidArgument", err)
	}

	path := filepath.Join(t.TempDir(), "old.hwp")
	if err := os.WriteFile(path, magic, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := Open(path); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("Open(.hwp) = %v, want ErrInvalidArgument", err)
	}
}

func TestMust(t *testing.T) {
	ed := Must(OpenBytes(buildDoc(t, nil)))
	if ed == nil {
		t.Fatal("Must returned nil editor")
	}

	defer func() {
		if recover() == nil {
			t.Error("Must should panic on error")
		}
	}()
	Must(OpenBytes([]byte("not a document")))
}

func TestClosedEditor(t *testing.T) {
	ed := openEditor(t)
	if err := ed.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	if err := ed.Close(); err != nil {
		t.Errorf("second Close error = %v", err)
	}

	if err := ed.UpdateParagraph(0, 0, "x"); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("edit after Close = %v, want ErrInvalidArgument", err)
	}
	if _, err := ed.InsertParagraph(0, -1, "x"); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("insert after Close = %v, want ErrInvalidArgument", err)
	}
	if ed.Undo() {
		t.Error("Undo on a closed editor should report false")
	}
	// Reads keep working on the in-memory document.
	if got := ed.Text(); !strings.Contains(got, "제1조") {
		t.Errorf("Text after Close = %q", got)
	}
}

func TestUndoRedoFacade(t *testing.T) {
	ed := openEditor(t)

	if err := ed.UpdateParagraph(0, 0, "제1조 개정목적"); err != nil {
		t.Fatalf("UpdateParagraph error = %v", err)
	}
	if !ed.Undo() {
		t.Fatal("Undo should report true")
	}
	if got, _ := ed.GetParagraph(0, 0); got != "제1조 목적" {
		t.Errorf("after undo = %q", got)
	}
	if !ed.Redo() {
		t.Fatal("Redo should report true")
	}
	if got, _ := ed.GetParagraph(0, 0); got != "제1조 개정목적" {
		t.Errorf("after redo = %q", got)
	}
	if ed.Redo() {
		t.Error("second Redo should report false")
	}
}

func TestSearchAndReplaceFacade(t *testing.T) {
	ed := openEditor(t)

	matches := ed.SearchText("제1조")
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	if matches[0].Section != 0 || matches[0].Element != 0 {
		t.Errorf("match at (%d,%d)", matches[0].Section, matches[0].Element)
	}

	n, err := ed.ReplaceText("계약", "협약")
	if err != nil {
		t.Fatalf("ReplaceText error = %v", err)
	}
	if n != 1 {
		t.Errorf("replacements = %d, want 1", n)
	}
	if got, _ := ed.GetParagraph(0, 1); !strings.Contains(got, "협약") {
		t.Errorf("paragraph after replace = %q", got)
	}
}

func TestReadingIndexFacade(t *testing.T) {
	ed := openEditor(t)

	chunks, err := ed.Chunks()
	if err != nil {
		t.Fatalf("Chunks error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1 for a small document", len(chunks))
	}

	results, err := ed.SearchChunks("권리 의무", 5, 0)
	if err != nil {
		t.Fatalf("SearchChunks error = %v", err)
	}
	if len(results) != 1 || results[0].Score <= 0 {
		t.Fatalf("search results = %+v", results)
	}

	toc := ed.TOC()
	if len(toc) != 2 {
		t.Fatalf("toc entries = %d, want 2", len(toc))
	}
	if toc[0].Text != "제1조 목적" || toc[0].Level != 1 {
		t.Errorf("toc[0] = %+v", toc[0])
	}
	if toc[1].Text != "제2조 정의" {
		t.Errorf("toc[1] = %+v", toc[1])
	}

	positions := ed.PositionIndex()
	if len(positions) != 3 {
		t.Fatalf("positions = %d, want 3", len(positions))
	}

	// The cache holds across edits until invalidated.
	if _, err := ed.InsertParagraph(0, 2, "제3조 효력"); err != nil {
		t.Fatalf("InsertParagraph error = %v", err)
	}
	if got := len(ed.TOC()); got != 2 {
		t.Errorf("toc before invalidate = %d, want cached 2", got)
	}
	ed.InvalidateIndex()
	if got := len(ed.TOC()); got != 3 {
		t.Errorf("toc after invalidate = %d, want 3", got)
	}
}

func TestChunkingOption(t *testing.T) {
	ed := openEditor(t).Chunking(10, 2)
	chunks, err := ed.Chunks()
	if err != nil {
		t.Fatalf("Chunks error = %v", err)
	}
	if len(chunks) < 2 {
		t.Errorf("chunks = %d, want several with a 10-rune window", len(chunks))
	}
}

func TestAnalyzeXML(t *testing.T) {
	ed := openEditor(t)
	balances, err := ed.AnalyzeXML(0)
	if err != nil {
		t.Fatalf("AnalyzeXML error = %v", err)
	}
	for _, tb := range balances {
		if !tb.Balanced() {
			t.Errorf("tag %s unbalanced: %d open, %d close", tb.Tag, tb.Open, tb.Close)
		}
	}

	changed, err := ed.RepairXML(0)
	if err != nil {
		t.Fatalf("RepairXML error = %v", err)
	}
	if changed {
		t.Error("RepairXML on a clean section should report no change")
	}
	if _, err := ed.AnalyzeXML(9); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("AnalyzeXML(9) = %v, want ErrNotFound", err)
	}
}

func TestRepairBytes(t *testing.T) {
	// Drop one run closer and add a stray one after the paragraph.
	broken := strings.Replace(testSection,
		"권리 의무를 정한다.</hp:t></hp:run></hp:p>",
		"권리 의무를 정한다.</hp:t></hp:p></hp:run>", 1)
	if broken == testSection {
		t.Fatal("fixture rewrite did not apply")
	}
	data := buildDoc(t, map[string]string{"Contents/section0.xml": broken})

	if _, err := OpenBytes(data); !errors.Is(err, model.ErrCorrupt) {
		t.Fatalf("OpenBytes on broken input = %v, want ErrCorrupt", err)
	}

	repaired, warnings, err := RepairBytes(data)
	if err != nil {
		t.Fatalf("RepairBytes error = %v", err)
	}
	if len(warnings) != 2 {
		t.Fatalf("warnings = %v, want one dropped tag and one added closer", warnings)
	}
	codes := map[string]bool{}
	for _, w := range warnings {
		codes[w.Code] = true
	}
	if !codes[WarnRepairDroppedTag] || !codes[WarnRepairAddedCloser] {
		t.Errorf("warning codes = %v", warnings)
	}

	ed, err := OpenBytes(repaired)
	if err != nil {
		t.Fatalf("OpenBytes after repair = %v", err)
	}
	if got, _ := ed.GetParagraph(0, 1); !strings.Contains(got, "권리 의무") {
		t.Errorf("repaired paragraph = %q", got)
	}

	if _, _, err := RepairBytes([]byte("junk")); !errors.Is(err, model.ErrCorrupt) {
		t.Errorf("RepairBytes on junk = %v, want ErrCorrupt", err)
	}
}

func TestFormatWarnings(t *testing.T) {
	if got := FormatWarnings(nil); got != "" {
		t.Errorf("FormatWarnings(nil) = %q", got)
	}
	got := FormatWarnings([]Warning{
		{Code: WarnRepairAddedCloser, Message: "inserted a missing close tag"},
		{Code: WarnMetadataMissing, Message: "manifest has no title"},
	})
	want := "[repair-added-closer] inserted a missing close tag\n[metadata-missing] manifest has no title"
	if got != want {
		t.Errorf("FormatWarnings = %q, want %q", got, want)
	}
}

func TestHangingIndentFacade(t *testing.T) {
	ed := openEditor(t)
	if err := ed.SetHangingIndent(0, 0, 12); err != nil {
		t.Fatalf("SetHangingIndent error = %v", err)
	}
	got, err := ed.GetHangingIndent(0, 0)
	if err != nil {
		t.Fatalf("GetHangingIndent error = %v", err)
	}
	if got != 12 {
		t.Errorf("indent = %v, want 12", got)
	}

	applied, err := ed.SetHangingIndentAuto(0, 2)
	if err != nil {
		t.Fatalf("SetHangingIndentAuto error = %v", err)
	}
	if !applied {
		t.Error("paragraph with a 제N조 marker should get an automatic indent")
	}
	if err := ed.RemoveHangingIndent(0, 0); err != nil {
		t.Fatalf("RemoveHangingIndent error = %v", err)
	}
	if got, _ := ed.GetHangingIndent(0, 0); got != 0 {
		t.Errorf("indent after remove = %v", got)
	}
}
