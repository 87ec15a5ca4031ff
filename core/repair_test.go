package core

import "testing"

var testTags = []string{"hp:tbl", "hp:tr", "hp:tc", "hp:p", "hp:run"}

func TestAnalyze(t *testing.T) {
	src := `<hp:p><hp:run>x</hp:run></hp:p></hp:p>`
	counts := Analyze(src, testTags)

	byTag := make(map[string]TagBalance)
	for _, tb := range counts {
		byTag[tb.Tag] = tb
	}
	if tb := byTag["hp:p"]; tb.Open != 1 || tb.Close != 2 {
		t.Errorf("hp:p = %d/%d, want 1/2", tb.Open, tb.Close)
	}
	if tb := byTag["hp:run"]; !tb.Balanced() {
		t.Errorf("hp:run unbalanced: %+v", tb)
	}
	if Balanced(src, testTags) {
		t.Error("Balanced returned true for imbalanced input")
	}
}

func TestRepair_RemovesOrphanClose(t *testing.T) {
	src := `<hp:p><hp:run>x</hp:run></hp:p></hp:tr>`
	res := Repair(src, testTags)

	if res.RemovedOrphans != 1 {
		t.Errorf("removed %d orphans, want 1", res.RemovedOrphans)
	}
	if !Balanced(res.XML, testTags) {
		t.Errorf("repaired XML still unbalanced: %q", res.XML)
	}
	if res.XML != `<hp:p><hp:run>x</hp:run></hp:p>` {
		t.Errorf("unexpected output: %q", res.XML)
	}
}

func TestRepair_ClosesUnclosedOpens(t *testing.T) {
	src := `<hp:tbl><hp:tr><hp:tc>cell`
	res := Repair(src, testTags)

	if res.AddedClosers != 3 {
		t.Errorf("added %d closers, want 3", res.AddedClosers)
	}
	if !Balanced(res.XML, testTags) {
		t.Errorf("repaired XML still unbalanced: %q", res.XML)
	}
	if res.XML != `<hp:tbl><hp:tr><hp:tc>cell</hp:tc></hp:tr></hp:tbl>` {
		t.Errorf("unexpected output: %q", res.XML)
	}
}

func TestRepair_RebalancesRowCellStructure(t *testing.T) {
	// The row closes while its cell is still open; the cell's closer
	// must be inserted before the row's.
	src := `<hp:tbl><hp:tr><hp:tc>cell</hp:tr></hp:tbl>`
	res := Repair(src, testTags)

	if !Balanced(res.XML, testTags) {
		t.Errorf("repaired XML still unbalanced: %q", res.XML)
	}
	if res.XML != `<hp:tbl><hp:tr><hp:tc>cell</hp:tc></hp:tr></hp:tbl>` {
		t.Errorf("unexpected output: %q", res.XML)
	}
}

func TestRepair_CleanInputUnchanged(t *testing.T) {
	src := `<hp:p><hp:run><hp:t>fine</hp:t></hp:run></hp:p>`
	res := Repair(src, testTags)

	if res.Changed {
		t.Errorf("clean input reported changed: %+v", res)
	}
	if res.XML != src {
		t.Errorf("clean input rewritten: %q", res.XML)
	}
}

func TestRepair_SelfClosingTags(t *testing.T) {
	src := `<hp:p/><hp:tbl><hp:tr/></hp:tbl>`
	res := Repair(src, testTags)
	if res.Changed {
		t.Errorf("self-closing tags misdiagnosed: %+v", res)
	}
}
