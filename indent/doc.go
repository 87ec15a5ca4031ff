// Package indent detects leading list and legal-article markers in
// paragraph text and estimates the visual width they occupy, to derive
// hanging-indent values automatically.
//
// Detection matches the most specific pattern first ("제1조의2 " before
// "제1조 ") and requires a trailing space after the marker. Width
// estimation is a coarse heuristic: a fixed em-width table per character
// class, scaled by font size and a per-font correction factor. It makes
// no attempt at real font metrics.
package indent
