package hanedit

import (
	"fmt"
	"strings"
)

// Warning is a non-fatal issue reported alongside a successful result,
// such as markup dropped during repair or metadata that could not be
// read. Warnings never abort an operation.
type Warning struct {
	// Code identifies the warning class, stable across releases.
	Code string

	// Message is the human-readable description.
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}

// Warning codes.
const (
	WarnRepairDroppedTag  = "repair-dropped-tag"
	WarnRepairAddedCloser = "repair-added-closer"
	WarnMetadataMissing   = "metadata-missing"
)

// FormatWarnings renders a warning list as one line per warning, for
// logging.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
