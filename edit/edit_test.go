package edit

import (
	"errors"
	"testing"

	"github.com/hanedit/hanedit/model"
)

// testDoc builds a package with three paragraphs and a 2x2 table.
func testDoc(t *testing.T) (*Session, *model.Section) {
	t.Helper()
	pkg := model.NewPackage()
	s := NewSession(pkg)
	sec := pkg.Sections[0]

	for i, text := range []string{"제1조 목적", "이 법은 기본 사항을 정한다.", "제2조 정의"} {
		if _, err := s.InsertParagraph(0, i-1, text); err != nil {
			t.Fatalf("InsertParagraph(%d) error = %v", i, err)
		}
	}
	if _, err := s.InsertTable(0, 2, 2, 2); err != nil {
		t.Fatalf("InsertTable error = %v", err)
	}
	// Fixture setup is not part of the history under test.
	s.history = history{}
	return s, sec
}

func TestParagraphCRUD(t *testing.T) {
	s, sec := testDoc(t)

	got, err := s.GetParagraphText(0, 2)
	if err != nil || got != "제2조 정의" {
		t.Fatalf("GetParagraphText(2) = %q, %v", got, err)
	}

	if err := s.UpdateParagraph(0, 1, "개정된 조문", false); err != nil {
		t.Fatalf("UpdateParagraph error = %v", err)
	}
	if got, _ := s.GetParagraphText(0, 1); got != "개정된 조문" {
		t.Errorf("after update: %q", got)
	}

	if err := s.AppendParagraphText(0, 1, " 추가"); err != nil {
		t.Fatalf("AppendParagraphText error = %v", err)
	}
	if got, _ := s.GetParagraphText(0, 1); got != "개정된 조문 추가" {
		t.Errorf("after append: %q", got)
	}

	// Delete shifts later indices down.
	if err := s.DeleteParagraph(0, 0); err != nil {
		t.Fatalf("DeleteParagraph error = %v", err)
	}
	if got, _ := s.GetParagraphText(0, 1); got != "제2조 정의" {
		t.Errorf("index not recomputed after delete: %q", got)
	}
	if len(sec.Elements) != 3 {
		t.Errorf("elements = %d, want 3", len(sec.Elements))
	}

	// Wrong-type and out-of-range indices fail without mutating.
	if _, err := s.GetParagraphText(0, 2); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("table addressed as paragraph: %v", err)
	}
	if err := s.UpdateParagraph(0, 99, "x", false); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("out-of-range update: %v", err)
	}
	if _, err := s.InsertParagraph(0, 99, "x"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("out-of-range insert: %v", err)
	}
}

func TestUpdateParagraph_Idempotent(t *testing.T) {
	s, _ := testDoc(t)

	for _, text := range []string{"중간값 1", "중간값 2", "최종값"} {
		if err := s.UpdateParagraph(0, 0, text, false); err != nil {
			t.Fatalf("UpdateParagraph error = %v", err)
		}
	}
	p, _ := s.pkg.Sections[0].ParagraphAt(0)
	if got := p.GetText(); got != "최종값" {
		t.Errorf("text = %q, want only the final value", got)
	}
	textRuns := 0
	for _, r := range p.Runs {
		if r.Text != "" {
			textRuns++
		}
	}
	if textRuns != 1 {
		t.Errorf("repeated updates accumulated %d text runs, want 1", textRuns)
	}
}

func TestTableOps(t *testing.T) {
	s, sec := testDoc(t)

	if err := s.SetCellText(0, 3, 0, 1, "값"); err != nil {
		t.Fatalf("SetCellText error = %v", err)
	}
	if got, _ := s.GetCellText(0, 3, 0, 1); got != "값" {
		t.Errorf("cell text = %q", got)
	}

	if err := s.InsertRow(0, 3, 0); err != nil {
		t.Fatalf("InsertRow error = %v", err)
	}
	if err := s.InsertColumn(0, 3, -1); err != nil {
		t.Fatalf("InsertColumn error = %v", err)
	}
	tbl, _ := sec.TableAt(3)
	if tbl.RowCount() != 3 || tbl.ColCount() != 3 {
		t.Fatalf("grid = %dx%d, want 3x3", tbl.RowCount(), tbl.ColCount())
	}
	// The prepended column shifted the edited cell right.
	if got, _ := s.GetCellText(0, 3, 0, 2); got != "값" {
		t.Errorf("cell text after column insert = %q", got)
	}

	if err := s.DeleteRow(0, 3, 1); err != nil {
		t.Fatalf("DeleteRow error = %v", err)
	}
	if err := s.DeleteColumn(0, 3, 0); err != nil {
		t.Fatalf("DeleteColumn error = %v", err)
	}
	if tbl.RowCount() != 2 || tbl.ColCount() != 2 {
		t.Errorf("grid = %dx%d, want 2x2", tbl.RowCount(), tbl.ColCount())
	}
}

func TestMergeSplit(t *testing.T) {
	s, sec := testDoc(t)

	if err := s.MergeCells(0, 3, 0, 0, 1, 1); err != nil {
		t.Fatalf("MergeCells error = %v", err)
	}
	tbl, _ := sec.TableAt(3)
	master := tbl.CellAt(0, 0)
	if master == nil || master.RowSpan != 2 || master.ColSpan != 2 {
		t.Fatalf("master spans = %+v", master)
	}

	// Inverted and overlapping ranges fail without mutation.
	if err := s.MergeCells(0, 3, 1, 1, 0, 0); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("inverted range: %v", err)
	}
	if err := s.MergeCells(0, 3, 0, 0, 0, 1); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("overlapping range: %v", err)
	}

	if err := s.SplitCell(0, 3, 0, 0); err != nil {
		t.Fatalf("SplitCell error = %v", err)
	}
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			if tbl.CellAt(r, c) == nil {
				t.Errorf("cell (%d,%d) missing after split", r, c)
			}
		}
	}
	if err := s.SplitCell(0, 3, 0, 0); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("split of unmerged cell: %v", err)
	}
}

func TestDeleteSoleRow_RemovesTable(t *testing.T) {
	s, sec := testDoc(t)

	if err := s.DeleteRow(0, 3, 0); err != nil {
		t.Fatalf("DeleteRow error = %v", err)
	}
	if err := s.DeleteRow(0, 3, 0); err != nil {
		t.Fatalf("DeleteRow on sole row error = %v", err)
	}
	if len(sec.Elements) != 3 {
		t.Errorf("elements = %d, want table gone", len(sec.Elements))
	}
	if _, err := sec.TableAt(3); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("table still addressable: %v", err)
	}
}

func TestHangingIndentScenario(t *testing.T) {
	s, _ := testDoc(t)

	p, _ := s.pkg.Sections[0].ParagraphAt(0)
	if p.ParaPrID != 0 {
		t.Fatalf("base property id = %d, want 0", p.ParaPrID)
	}

	if err := s.SetHangingIndent(0, 0, 15); err != nil {
		t.Fatalf("SetHangingIndent error = %v", err)
	}
	if p.ParaPrID == 0 {
		t.Error("property reference did not change")
	}
	if got, _ := s.GetHangingIndent(0, 0); got != 15 {
		t.Errorf("GetHangingIndent = %v, want 15", got)
	}

	if err := s.RemoveHangingIndent(0, 0); err != nil {
		t.Fatalf("RemoveHangingIndent error = %v", err)
	}
	if p.ParaPrID != 0 {
		t.Errorf("property reference = %d, want base id 0", p.ParaPrID)
	}
	if got, _ := s.GetHangingIndent(0, 0); got != 0 {
		t.Errorf("GetHangingIndent after remove = %v, want 0", got)
	}

	if err := s.SetHangingIndent(0, 0, -3); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("non-positive indent: %v", err)
	}
}

func TestHangingIndent_StyleDedup(t *testing.T) {
	s, _ := testDoc(t)
	before := s.pkg.Styles.ParaPropsCount()

	// The same value over several paragraphs allocates one definition.
	for i := 0; i < 3; i++ {
		if err := s.SetHangingIndent(0, i, 12); err != nil {
			t.Fatalf("SetHangingIndent(%d) error = %v", i, err)
		}
	}
	if got := s.pkg.Styles.ParaPropsCount(); got != before+1 {
		t.Errorf("definitions = %d, want %d", got, before+1)
	}
	p0, _ := s.pkg.Sections[0].ParagraphAt(0)
	p2, _ := s.pkg.Sections[0].ParagraphAt(2)
	if p0.ParaPrID != p2.ParaPrID {
		t.Error("equal indents reference different definitions")
	}

	// Distinct values allocate distinct definitions.
	if err := s.SetHangingIndent(0, 1, 24); err != nil {
		t.Fatalf("SetHangingIndent error = %v", err)
	}
	if got := s.pkg.Styles.ParaPropsCount(); got != before+2 {
		t.Errorf("definitions = %d, want %d", got, before+2)
	}
}

func TestCellHangingIndent_Pending(t *testing.T) {
	s, _ := testDoc(t)
	before := s.pkg.Styles.ParaPropsCount()

	// Paragraph index 2 does not exist in the tree yet; the request is
	// queued, not rejected.
	if err := s.SetCellText(0, 3, 0, 0, "첫 줄\n둘째 줄\n셋째 줄"); err != nil {
		t.Fatalf("SetCellText error = %v", err)
	}
	for _, col := range []int{0, 1} {
		if err := s.SetCellHangingIndent(0, 3, 0, col, 0, 18); err != nil {
			t.Fatalf("SetCellHangingIndent(col %d) error = %v", col, err)
		}
	}
	if got := len(s.pkg.PendingIndents); got != 2 {
		t.Fatalf("pending requests = %d, want 2", got)
	}
	// Batch requests with one value share one definition, resolved now.
	if got := s.pkg.Styles.ParaPropsCount(); got != before+1 {
		t.Errorf("definitions = %d, want %d", got, before+1)
	}
	if s.pkg.PendingIndents[0].ParaPrID != s.pkg.PendingIndents[1].ParaPrID {
		t.Error("batch requests resolved to different definitions")
	}

	if got, err := s.GetCellHangingIndent(0, 3, 0, 0, 0); err != nil || got != 18 {
		t.Errorf("GetCellHangingIndent = %v, %v, want 18", got, err)
	}

	if err := s.SetCellHangingIndent(0, 3, 9, 9, 0, 18); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("out-of-grid cell: %v", err)
	}
	if err := s.SetCellHangingIndent(0, 3, 0, 0, 0, 0); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("zero indent: %v", err)
	}
}

func TestCellHangingIndent_PendingFollowsEdits(t *testing.T) {
	s, _ := testDoc(t)

	if err := s.SetCellHangingIndent(0, 3, 1, 1, 0, 18); err != nil {
		t.Fatalf("SetCellHangingIndent error = %v", err)
	}

	// Structural edits before the owner cell move the queued request
	// along with it.
	if err := s.DeleteParagraph(0, 0); err != nil {
		t.Fatalf("DeleteParagraph error = %v", err)
	}
	if _, err := s.InsertParagraph(0, -1, "서문"); err != nil {
		t.Fatalf("InsertParagraph error = %v", err)
	}
	if err := s.InsertRow(0, 3, -1); err != nil {
		t.Fatalf("InsertRow error = %v", err)
	}
	if err := s.InsertColumn(0, 3, 0); err != nil {
		t.Fatalf("InsertColumn error = %v", err)
	}
	if got := len(s.pkg.PendingIndents); got != 1 {
		t.Fatalf("pending requests = %d, want 1", got)
	}
	pi := s.pkg.PendingIndents[0]
	if pi.Element != 3 || pi.Row != 2 || pi.Col != 2 {
		t.Fatalf("request coordinates = (%d,%d,%d), want (3,2,2)", pi.Element, pi.Row, pi.Col)
	}

	// Deleting the row the cell sits in drops the request.
	if err := s.DeleteRow(0, 3, 2); err != nil {
		t.Fatalf("DeleteRow error = %v", err)
	}
	if got := len(s.pkg.PendingIndents); got != 0 {
		t.Fatalf("pending requests after row delete = %d, want 0", got)
	}

	if err := s.SetCellHangingIndent(0, 3, 0, 0, 0, 18); err != nil {
		t.Fatalf("SetCellHangingIndent error = %v", err)
	}
	if err := s.DeleteTable(0, 3); err != nil {
		t.Fatalf("DeleteTable error = %v", err)
	}
	if got := len(s.pkg.PendingIndents); got != 0 {
		t.Fatalf("pending requests after table delete = %d, want 0", got)
	}
}

func TestSearchReplace(t *testing.T) {
	s, _ := testDoc(t)
	if err := s.SetCellText(0, 3, 1, 1, "제1조 참조"); err != nil {
		t.Fatalf("SetCellText error = %v", err)
	}

	matches := s.SearchText("제1조")
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want paragraph and cell", len(matches))
	}
	if matches[0].Row != -1 || matches[1].Row != 1 || matches[1].Col != 1 {
		t.Errorf("match coordinates = %+v", matches)
	}

	n, err := s.ReplaceText("제1조", "제9조")
	if err != nil || n != 2 {
		t.Fatalf("ReplaceText = %d, %v, want 2", n, err)
	}
	if got, _ := s.GetParagraphText(0, 0); got != "제9조 목적" {
		t.Errorf("paragraph after replace: %q", got)
	}
	if got, _ := s.GetCellText(0, 3, 1, 1); got != "제9조 참조" {
		t.Errorf("cell after replace: %q", got)
	}
	if len(s.SearchText("제1조")) != 0 {
		t.Error("old text still found after replace")
	}

	// Cell-scoped replacement leaves the rest untouched.
	n, err = s.ReplaceTextInCell(0, 3, 1, 1, "제9조", "제5조")
	if err != nil || n != 1 {
		t.Fatalf("ReplaceTextInCell = %d, %v, want 1", n, err)
	}
	if got, _ := s.GetParagraphText(0, 0); got != "제9조 목적" {
		t.Errorf("paragraph mutated by cell-scoped replace: %q", got)
	}
}

func TestUndoRedo(t *testing.T) {
	s, _ := testDoc(t)

	if s.Undo() {
		t.Error("Undo with empty history reported success")
	}

	if err := s.UpdateParagraph(0, 0, "첫 수정", false); err != nil {
		t.Fatalf("UpdateParagraph error = %v", err)
	}
	if err := s.UpdateParagraph(0, 0, "둘째 수정", false); err != nil {
		t.Fatalf("UpdateParagraph error = %v", err)
	}

	if !s.Undo() {
		t.Fatal("Undo reported failure")
	}
	if got, _ := s.GetParagraphText(0, 0); got != "첫 수정" {
		t.Errorf("after undo: %q", got)
	}
	if !s.Undo() {
		t.Fatal("second Undo reported failure")
	}
	if got, _ := s.GetParagraphText(0, 0); got != "제1조 목적" {
		t.Errorf("after second undo: %q", got)
	}

	if !s.Redo() {
		t.Fatal("Redo reported failure")
	}
	if got, _ := s.GetParagraphText(0, 0); got != "첫 수정" {
		t.Errorf("after redo: %q", got)
	}

	// A new edit truncates the redo tail.
	if err := s.UpdateParagraph(0, 0, "새 가지", false); err != nil {
		t.Fatalf("UpdateParagraph error = %v", err)
	}
	if s.Redo() {
		t.Error("Redo after a new edit reported success")
	}

	// Failed operations leave no undo entry.
	depth := len(s.history.undo)
	if err := s.UpdateParagraph(0, 99, "x", false); err == nil {
		t.Fatal("out-of-range update succeeded")
	}
	if err := s.MergeCells(0, 3, 1, 1, 0, 0); err == nil {
		t.Fatal("inverted merge succeeded")
	}
	if len(s.history.undo) != depth {
		t.Errorf("failed operations changed history depth: %d -> %d", depth, len(s.history.undo))
	}
}

func TestHeaderFooterText(t *testing.T) {
	s, sec := testDoc(t)

	if err := s.SetHeaderText(0, "머리말"); err != nil {
		t.Fatalf("SetHeaderText error = %v", err)
	}
	if err := s.SetFooterText(0, "꼬리말"); err != nil {
		t.Fatalf("SetFooterText error = %v", err)
	}
	if sec.HeaderText != "머리말" || !sec.HeaderDirty {
		t.Errorf("header = %q dirty=%v", sec.HeaderText, sec.HeaderDirty)
	}
	if sec.FooterText != "꼬리말" || !sec.FooterDirty {
		t.Errorf("footer = %q dirty=%v", sec.FooterText, sec.FooterDirty)
	}
	if err := s.SetHeaderText(9, "x"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("bad section: %v", err)
	}
}
