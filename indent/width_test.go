package indent

import (
	"math"
	"testing"
)

func TestCalculateMarkerWidth_ScalesLinearly(t *testing.T) {
	markers := []string{"제1조 ", "가. ", "(1) ", "① "}
	for _, marker := range markers {
		w10 := CalculateMarkerWidth(marker, 10, "")
		w20 := CalculateMarkerWidth(marker, 20, "")
		if math.Abs(w20-2*w10) > 1e-9 {
			t.Errorf("%q: width(20pt)=%v is not twice width(10pt)=%v", marker, w20, w10)
		}
	}
}

func TestCalculateMarkerWidth_CharClasses(t *testing.T) {
	// "제1조 " = wide(1.0) + digit(0.6) + wide(1.0) + space(0.5) = 3.1em
	// at 10pt with the default correction factor 1.3.
	want := 3.1 * 10 * 1.3
	got := CalculateMarkerWidth("제1조 ", 10, "")
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("width = %v, want %v", got, want)
	}
}

func TestCalculateMarkerWidth_FontFactors(t *testing.T) {
	base := CalculateMarkerWidth("1. ", 10, "arial")
	korean := CalculateMarkerWidth("1. ", 10, "맑은 고딕")
	unknown := CalculateMarkerWidth("1. ", 10, "SomeFont")

	// Latin-only fonts carry no correction.
	wantBase := (emDigit + emNarrowDot + emSpace) * 10
	if math.Abs(base-wantBase) > 1e-9 {
		t.Errorf("latin width = %v, want %v", base, wantBase)
	}
	if korean <= base {
		t.Errorf("korean font width %v not greater than latin %v", korean, base)
	}
	if math.Abs(unknown-wantBase*defaultFontFactor) > 1e-9 {
		t.Errorf("unknown font width = %v, want %v", unknown, wantBase*defaultFontFactor)
	}
}

func TestCalculateHangingIndent(t *testing.T) {
	if got := CalculateHangingIndent("본문만 있는 문단", 10, ""); got != 0 {
		t.Errorf("no-marker indent = %v, want 0", got)
	}
	if got := CalculateHangingIndent("제1조 내용", 10, ""); got <= 0 {
		t.Errorf("marker indent = %v, want > 0", got)
	}
}

func TestCalculateHangingIndent_DefaultFontSize(t *testing.T) {
	explicit := CalculateHangingIndent("가. 내용", DefaultFontSize, "")
	defaulted := CalculateHangingIndent("가. 내용", 0, "")
	if explicit != defaulted {
		t.Errorf("zero font size: got %v, want %v", defaulted, explicit)
	}
}

func TestHWPUnitConversion(t *testing.T) {
	tests := []struct {
		pt   float64
		want int
	}{
		{15, 1500},
		{12.5, 1250},
		{0.01, 1},
		{0, 0},
	}
	for _, tc := range tests {
		if got := ToHWPUnit(tc.pt); got != tc.want {
			t.Errorf("ToHWPUnit(%v) = %d, want %d", tc.pt, got, tc.want)
		}
	}
	if got := FromHWPUnit(1500); got != 15 {
		t.Errorf("FromHWPUnit(1500) = %v, want 15", got)
	}
}
