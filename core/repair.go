package core

import "strings"

// TagBalance is the open/close count for one container tag.
type TagBalance struct {
	Tag   string
	Open  int
	Close int
}

// Balanced reports whether opens and closes match.
func (tb TagBalance) Balanced() bool { return tb.Open == tb.Close }

// Analyze counts open and close occurrences of each given container tag
// in raw XML, without building a tree. Self-closing tags count as both.
func Analyze(src string, tags []string) []TagBalance {
	known := make(map[string]int, len(tags))
	result := make([]TagBalance, len(tags))
	for i, t := range tags {
		known[t] = i
		result[i].Tag = t
	}
	for i := 0; i < len(src); {
		tok, ok := nextToken(src, i)
		if !ok {
			break
		}
		i = tok.end
		idx, isKnown := known[tok.name]
		if !isKnown {
			continue
		}
		switch {
		case tok.selfClose:
			result[idx].Open++
			result[idx].Close++
		case tok.closing:
			result[idx].Close++
		default:
			result[idx].Open++
		}
	}
	return result
}

// Balanced reports whether every given container tag is balanced in src.
func Balanced(src string, tags []string) bool {
	for _, tb := range Analyze(src, tags) {
		if !tb.Balanced() {
			return false
		}
	}
	return true
}

// RepairResult describes the outcome of a structural repair.
type RepairResult struct {
	XML            string
	RemovedOrphans int // closing tags dropped for lack of an opener
	AddedClosers   int // closing tags inserted for unclosed opens
	Changed        bool
}

// Repair re-balances the given container tags in raw XML without
// building an element tree. It is the recovery path for input that is
// malformed before any edit is attempted.
//
// Two fixes are applied: a closing tag with no matching opener within
// its ancestor scope is removed, and an open tag whose close never
// arrives (or arrives outside its scope) has a closer inserted where the
// enclosing scope ends. Content outside the known tags is untouched.
func Repair(src string, tags []string) RepairResult {
	known := make(map[string]bool, len(tags))
	for _, t := range tags {
		known[t] = true
	}

	type frame struct{ name string }
	var stack []frame
	var sb strings.Builder
	sb.Grow(len(src))
	res := RepairResult{}

	cursor := 0
	for i := 0; i < len(src); {
		tok, ok := nextToken(src, i)
		if !ok {
			break
		}
		i = tok.end
		if !known[tok.name] {
			continue
		}
		switch {
		case tok.selfClose:
			// Always balanced on its own.
		case !tok.closing:
			stack = append(stack, frame{name: tok.name})
		default:
			// Find the matching opener in the current ancestor scope.
			match := -1
			for j := len(stack) - 1; j >= 0; j-- {
				if stack[j].name == tok.name {
					match = j
					break
				}
			}
			if match < 0 {
				// Orphan close: drop the tag.
				sb.WriteString(src[cursor:tok.start])
				cursor = tok.end
				res.RemovedOrphans++
				res.Changed = true
				continue
			}
			if match < len(stack)-1 {
				// Opens above the match never closed inside their
				// scope; close them here, innermost first.
				sb.WriteString(src[cursor:tok.start])
				cursor = tok.start
				for j := len(stack) - 1; j > match; j-- {
					sb.WriteString("</" + stack[j].name + ">")
					res.AddedClosers++
					res.Changed = true
				}
			}
			stack = stack[:match]
		}
	}
	sb.WriteString(src[cursor:])

	// Close anything still open, innermost first.
	for j := len(stack) - 1; j >= 0; j-- {
		sb.WriteString("</" + stack[j].name + ">")
		res.AddedClosers++
		res.Changed = true
	}

	res.XML = sb.String()
	return res
}
