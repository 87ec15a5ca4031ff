package format

import (
	"archive/zip"
	"bytes"
	"testing"
)

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{HWPX, "HWPX"},
		{HWP, "HWP"},
		{XML, "XML"},
		{Unknown, "Unknown"},
		{Format(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFormat_Extension(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{HWPX, ".hwpx"},
		{HWP, ".hwp"},
		{XML, ".xml"},
		{Unknown, ""},
	}

	for _, tt := range tests {
		if got := tt.format.Extension(); got != tt.want {
			t.Errorf("Format(%d).Extension() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"document.hwpx", HWPX},
		{"document.HWPX", HWPX},
		{"legacy.hwp", HWP},
		{"section0.xml", XML},
		{"notes.txt", Unknown},
		{"noextension", Unknown},
	}

	for _, tt := range tests {
		if got := Detect(tt.filename); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestDetectFromMagic(t *testing.T) {
	compound := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00, 0x00}

	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"compound file", compound, HWP},
		{"xml declaration", []byte(`<?xml version="1.0"?><hs:sec/>`), XML},
		{"xml with leading whitespace", []byte("\n  <hs:sec/>"), XML},
		{"zip needs inspection", []byte{0x50, 0x4B, 0x03, 0x04, 0, 0, 0, 0}, Unknown},
		{"too short", []byte{0x50, 0x4B}, Unknown},
		{"plain text", []byte("hello world"), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFromMagic(tt.data); got != tt.want {
				t.Errorf("DetectFromMagic() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFromBytes(t *testing.T) {
	zipWith := func(entries map[string]string) []byte {
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
			t.Fatalf("closing zip: %v", err)
		}
		return buf.Bytes()
	}

	pkg := zipWith(map[string]string{
		"mimetype":             "application/hwp+zip",
		"Contents/content.hpf": "<opf:package/>",
	})
	if got := DetectFromBytes(pkg); got != HWPX {
		t.Errorf("package with mimetype = %v, want HWPX", got)
	}

	manifestOnly := zipWith(map[string]string{
		"Contents/content.hpf": "<opf:package/>",
	})
	if got := DetectFromBytes(manifestOnly); got != HWPX {
		t.Errorf("package with manifest only = %v, want HWPX", got)
	}

	otherZip := zipWith(map[string]string{"readme.txt": "hello"})
	if got := DetectFromBytes(otherZip); got != Unknown {
		t.Errorf("unrelated zip = %v, want Unknown", got)
	}

	if got := DetectFromBytes([]byte("plain text")); got != Unknown {
		t.Errorf("plain text = %v, want Unknown", got)
	}
}
