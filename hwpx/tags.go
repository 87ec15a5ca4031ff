package hwpx

import "github.com/hanedit/hanedit/model"

// Archive entry names the container requires.
const (
	PartMimetype = "mimetype"
	PartManifest = "Contents/content.hpf"
	PartHeader   = "Contents/header.xml"
	PartVersion  = "version.xml"

	// SectionPart formats the content part name for section n.
	sectionPartFmt = "Contents/section%d.xml"

	// BinDataDir is the folder for embedded binary attachments.
	BinDataDir = "BinData/"

	mimetypeValue = "application/hwp+zip"
)

// Section content tags.
const (
	TagSection   = "hs:sec"
	TagParagraph = "hp:p"
	TagRun       = "hp:run"
	TagText      = "hp:t"
	TagTable     = "hp:tbl"
	TagRow       = "hp:tr"
	TagCell      = "hp:tc"
	TagSubList   = "hp:subList"
	TagCellAddr  = "hp:cellAddr"
	TagCellSpan  = "hp:cellSpan"
	TagHeader    = "hp:header"
	TagFooter    = "hp:footer"
)

// ContainerTags are the structural tags the repair engine balances.
var ContainerTags = []string{
	TagTable, TagRow, TagCell, TagSubList, TagParagraph, TagRun,
}

// nonContentTags carry annotations (comment anchors, field markers)
// that the cleaning pass strips before structural parsing.
var nonContentTags = []string{
	"hp:memogroup",
	"hp:fieldBegin",
	"hp:fieldEnd",
}

// shapeTags maps root-level drawing-object tags to their kinds.
var shapeTags = map[string]model.ShapeKind{
	"hp:line":    model.ShapeLine,
	"hp:rect":    model.ShapeRect,
	"hp:ellipse": model.ShapeEllipse,
	"hp:arc":     model.ShapeArc,
	"hp:polygon": model.ShapePolygon,
	"hp:curve":   model.ShapeCurve,
	"hp:pic":     model.ShapePicture,
}

// Header (property part) tags.
const (
	tagParaPrList = "hh:paraPrList"
	tagCharPrList = "hh:charPrList"
	tagParaPr     = "hh:paraPr"
	tagCharPr     = "hh:charPr"
)
