// Package core provides the low-level XML substrate the editor is built
// on: the tag-balanced slicer that locates matching open/close spans of a
// named element in raw XML (tolerant of self-nesting, e.g. tables inside
// table cells), the cleaning pass that strips non-content markup before
// parsing, and the repair engine that detects and fixes tag imbalance
// without building a tree.
//
// Nothing here assumes single-level nesting, and nothing here interprets
// the document model; it operates purely on byte offsets into raw XML
// text.
package core
