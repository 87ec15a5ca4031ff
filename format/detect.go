// Package format provides document file format detection.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a recognized document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// HWPX indicates a zipped-XML word processor package.
	HWPX
	// HWP indicates a legacy binary (compound file) document.
	HWP
	// XML indicates a bare XML document, such as an unpacked section.
	XML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case HWPX:
		return "HWPX"
	case HWP:
		return "HWP"
	case XML:
		return "XML"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case HWPX:
		return ".hwpx"
	case HWP:
		return ".hwp"
	case XML:
		return ".xml"
	default:
		return ""
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hwpx":
		return HWPX
	case ".hwp":
		return HWP
	case ".xml":
		return XML
	default:
		return Unknown
	}
}

// DetectFromMagic checks magic bytes to determine format. Zip archives
// need entry inspection to classify; use DetectFromBytes for those.
func DetectFromMagic(data []byte) Format {
	if len(data) < 8 {
		return Unknown
	}

	// Compound file magic: D0 CF 11 E0 A1 B1 1A E1
	if bytes.HasPrefix(data, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}) {
		return HWP
	}

	// Zip magic: PK\x03\x04. Could be a package or any other archive.
	if data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04 {
		return Unknown
	}

	if looksLikeXML(data) {
		return XML
	}
	return Unknown
}

func looksLikeXML(data []byte) bool {
	start := 0
	for start < len(data) && (data[start] == ' ' || data[start] == '\t' || data[start] == '\n' || data[start] == '\r') {
		start++
	}
	return start < len(data) && data[start] == '<'
}

// DetectFromBytes inspects content to determine format, opening zip
// archives to distinguish document packages from other zip files. A
// package is recognized by its mimetype entry or its content manifest.
func DetectFromBytes(data []byte) Format {
	if f := DetectFromMagic(data); f != Unknown {
		return f
	}
	if len(data) < 4 || data[0] != 0x50 || data[1] != 0x4B {
		return Unknown
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Unknown
	}
	hasManifest := false
	for _, f := range zr.File {
		switch f.Name {
		case "mimetype":
			rc, err := f.Open()
			if err != nil {
				continue
			}
			mt, _ := io.ReadAll(io.LimitReader(rc, 64))
			rc.Close()
			if strings.TrimSpace(string(mt)) == "application/hwp+zip" {
				return HWPX
			}
		case "Contents/content.hpf":
			hasManifest = true
		}
	}
	if hasManifest {
		return HWPX
	}
	return Unknown
}
