// Package model defines the in-memory document model: packages, sections,
// elements (paragraphs, tables, shapes), and the deduplicating style
// registry.
//
// Elements are addressed by (section index, element index) with element
// indices reflecting document order; any insert or delete in a section
// recomputes the index space. Elements parsed from a package keep their
// byte span into the immutable section source, so an unmodified document
// round-trips byte-exact; edits mark elements dirty for re-rendering.
package model
