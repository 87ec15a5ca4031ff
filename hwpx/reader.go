// Package hwpx reads and writes the zipped-XML package container and
// translates between its section XML and the document model.
package hwpx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/hanedit/hanedit/core"
	"github.com/hanedit/hanedit/model"
)

// Open reads a package from a file path.
func Open(filename string) (*model.Package, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v: %w", filename, err, model.ErrIO)
	}
	return OpenBytes(data)
}

// OpenBytes parses package bytes into a document model. Section XML with
// unbalanced container tags fails with ErrCorrupt; the caller can run
// the repair engine on the raw bytes and retry.
func OpenBytes(data []byte) (*model.Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening archive: %v: %w", err, model.ErrCorrupt)
	}

	entries := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %v: %w", f.Name, err, model.ErrIO)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %v: %w", f.Name, err, model.ErrIO)
		}
		entries[f.Name] = content
	}

	for _, required := range []string{PartManifest, PartHeader, sectionPart(0)} {
		if _, ok := entries[required]; !ok {
			return nil, fmt.Errorf("missing required file %s: %w", required, model.ErrCorrupt)
		}
	}

	pkg := &model.Package{
		Styles:  &model.StyleRegistry{},
		BinData: make(map[string][]byte),
		Parts:   make(map[string][]byte),
	}

	pkg.HeaderXML = string(entries[PartHeader])
	if err := parseHeaderStyles(pkg.HeaderXML, pkg.Styles); err != nil {
		return nil, fmt.Errorf("parsing header styles: %w", err)
	}
	pkg.LoadedParaProps = pkg.Styles.ParaPropsCount()
	pkg.LoadedCharProps = pkg.Styles.CharPropsCount()

	pkg.Metadata = parseManifestMetadata(entries[PartManifest])

	for n := 0; ; n++ {
		raw, ok := entries[sectionPart(n)]
		if !ok {
			break
		}
		sec, err := ParseSection(string(raw))
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", n, err)
		}
		sec.Index = n
		pkg.Sections = append(pkg.Sections, sec)
	}

	for name, content := range entries {
		switch {
		case strings.HasPrefix(name, BinDataDir):
			pkg.BinData[strings.TrimPrefix(name, BinDataDir)] = content
		case name == PartHeader || IsSectionPart(name):
			// Modeled parts, not passthrough.
		default:
			pkg.Parts[name] = content
		}
	}

	return pkg, nil
}

func sectionPart(n int) string {
	return fmt.Sprintf(sectionPartFmt, n)
}

// IsSectionPart reports whether a package part name is a section body,
// Contents/sectionN.xml for a non-negative N.
func IsSectionPart(name string) bool {
	if !strings.HasPrefix(name, "Contents/section") || !strings.HasSuffix(name, ".xml") {
		return false
	}
	num := strings.TrimSuffix(strings.TrimPrefix(name, "Contents/section"), ".xml")
	_, err := strconv.Atoi(num)
	return err == nil
}

// manifestXML is the subset of the content manifest carrying document
// metadata, in Dublin Core terms.
type manifestXML struct {
	XMLName xml.Name `xml:"package"`
	Title   string   `xml:"metadata>title"`
	Creator string   `xml:"metadata>creator"`
	Subject string   `xml:"metadata>subject"`
	Keyword string   `xml:"metadata>keyword"`
}

// parseManifestMetadata extracts document metadata from the manifest.
// The decoder tolerates declared non-UTF-8 encodings. Metadata is
// optional; failures leave it empty rather than failing the load.
func parseManifestMetadata(data []byte) model.Metadata {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	var m manifestXML
	if err := dec.Decode(&m); err != nil {
		return model.Metadata{}
	}
	meta := model.Metadata{
		Title:   m.Title,
		Author:  m.Creator,
		Subject: m.Subject,
	}
	if m.Keyword != "" {
		for _, kw := range strings.Split(m.Keyword, ",") {
			meta.Keywords = append(meta.Keywords, strings.TrimSpace(kw))
		}
	}
	return meta
}

// parseHeaderStyles loads paragraph and character property definitions
// from the header part, preserving on-disk id order.
func parseHeaderStyles(src string, reg *model.StyleRegistry) error {
	for _, sp := range core.Slice(src, tagParaPr) {
		props := model.ParaProps{
			Align:           core.Attr(src, sp, "align"),
			MarginLeft:      atoiOr0(core.Attr(src, sp, "marginLeft")),
			MarginRight:     atoiOr0(core.Attr(src, sp, "marginRight")),
			FirstLineIndent: atoiOr0(core.Attr(src, sp, "firstLineIndent")),
			LineSpacing:     atoiOr0(core.Attr(src, sp, "lineSpacing")),
			RawXML:          src[sp.Start:sp.End],
		}
		reg.LoadParaProps(props)
	}
	for _, sp := range core.Slice(src, tagCharPr) {
		props := model.CharProps{
			FontName: core.Attr(src, sp, "fontRef"),
			Size:     atoiOr0(core.Attr(src, sp, "height")),
			Bold:     core.Attr(src, sp, "bold") == "1",
			Italic:   core.Attr(src, sp, "italic") == "1",
			RawXML:   src[sp.Start:sp.End],
		}
		reg.LoadCharProps(props)
	}
	if reg.ParaPropsCount() == 0 {
		reg.LoadParaProps(model.ParaProps{})
	}
	if reg.CharPropsCount() == 0 {
		reg.LoadCharProps(model.CharProps{})
	}
	return nil
}

func atoiOr0(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// New creates an empty in-memory package with one blank section and the
// minimal required parts, ready for editing and saving.
func New() *model.Package {
	pkg := model.NewPackage()
	pkg.HeaderXML = minimalHeaderXML
	pkg.Styles = &model.StyleRegistry{}
	parseHeaderStyles(pkg.HeaderXML, pkg.Styles)
	pkg.LoadedParaProps = pkg.Styles.ParaPropsCount()
	pkg.LoadedCharProps = pkg.Styles.CharPropsCount()
	pkg.Parts[PartMimetype] = []byte(mimetypeValue)
	pkg.Parts[PartManifest] = []byte(minimalManifestXML)
	pkg.Parts[PartVersion] = []byte(minimalVersionXML)
	pkg.Sections[0].Source = emptySectionXML
	return pkg
}

const minimalHeaderXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
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

const minimalManifestXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<opf:package xmlns:opf="http://www.idpf.org/2007/opf/" xmlns:dc="http://purl.org/dc/elements/1.1/">
<opf:metadata>
<opf:title/>
</opf:metadata>
<opf:manifest>
<opf:item id="header" href="Contents/header.xml" media-type="application/xml"/>
<opf:item id="section0" href="Contents/section0.xml" media-type="application/xml"/>
</opf:manifest>
</opf:package>
`

const minimalVersionXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<hv:HCFVersion xmlns:hv="http://www.hancom.co.kr/hwpml/2011/version" major="5" minor="1"/>
`

const emptySectionXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<hs:sec xmlns:hs="http://www.hancom.co.kr/hwpml/2011/section" xmlns:hp="http://www.hancom.co.kr/hwpml/2011/paragraph">
</hs:sec>
`
