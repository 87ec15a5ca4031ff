package core

import "strings"

// StripTags removes every balanced span of the named tags from src,
// including self-closing occurrences. Used to clear non-content markup
// (comment anchors, field markers, margin notes) before structural
// parsing, so element offsets address content only.
func StripTags(src string, tags ...string) string {
	var removed []Span
	for _, tag := range tags {
		removed = append(removed, Slice(src, tag)...)
	}
	if len(removed) == 0 {
		return src
	}
	return cutSpans(src, removed)
}

// StripComments removes XML comments and processing instructions,
// keeping any XML declaration at offset 0.
func StripComments(src string) string {
	var removed []Span
	for i := 0; i < len(src); {
		lt := strings.IndexByte(src[i:], '<')
		if lt < 0 {
			break
		}
		start := i + lt
		if strings.HasPrefix(src[start:], "<!--") {
			end := skipSpecial(src, start)
			if end < 0 {
				break
			}
			removed = append(removed, Span{Start: start, End: end})
			i = end
			continue
		}
		if strings.HasPrefix(src[start:], "<?") && start > 0 {
			end := skipSpecial(src, start)
			if end < 0 {
				break
			}
			removed = append(removed, Span{Start: start, End: end})
			i = end
			continue
		}
		i = start + 1
	}
	if len(removed) == 0 {
		return src
	}
	return cutSpans(src, removed)
}

// cutSpans returns src with the given spans removed. Spans may arrive
// unsorted but must not partially overlap.
func cutSpans(src string, spans []Span) string {
	sorted := append([]Span(nil), spans...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Start < sorted[j-1].Start; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	var sb strings.Builder
	sb.Grow(len(src))
	cursor := 0
	for _, sp := range sorted {
		if sp.Start < cursor {
			continue // contained in an already-removed span
		}
		sb.WriteString(src[cursor:sp.Start])
		cursor = sp.End
	}
	sb.WriteString(src[cursor:])
	return sb.String()
}
