package rag

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/hanedit/hanedit/model"
)

// BM25 parameters; standard values for short prose chunks.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// SearchConfig holds relevance-search parameters.
type SearchConfig struct {
	// TopK caps the number of results returned.
	TopK int

	// MinScore drops results scoring below it.
	MinScore float64
}

// DefaultSearchConfig returns the standard search parameters.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		TopK:     5,
		MinScore: 0.0,
	}
}

// SearchResult is one scored chunk.
type SearchResult struct {
	Chunk Chunk `json:"chunk"`

	// Score is the BM25 relevance score against the query.
	Score float64 `json:"score"`

	// Matched lists the query terms found in the chunk.
	Matched []string `json:"matched"`

	// Snippet is the text around the first matched term.
	Snippet string `json:"snippet"`
}

// searchSnippetRadius is the rune context kept around the first match.
const searchSnippetRadius = 60

var foldCaser = cases.Fold()

// tokenize splits text into case-folded terms on non-letter/digit runes.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, foldCaser.String(f))
	}
	return terms
}

// Search scores the chunks against query with BM25 term weighting and
// returns at most cfg.TopK results at or above cfg.MinScore, best first.
func Search(chunks []Chunk, query string, cfg SearchConfig) ([]SearchResult, error) {
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("topK %d must be positive: %w", cfg.TopK, model.ErrInvalidArgument)
	}
	queryTerms := tokenize(query)
	if len(queryTerms) == 0 {
		return nil, nil
	}

	docs := make([]map[string]int, len(chunks))
	totalLen := 0
	df := make(map[string]int)
	for i, c := range chunks {
		freq := make(map[string]int)
		for _, term := range tokenize(c.Text) {
			freq[term]++
		}
		docs[i] = freq
		for term := range freq {
			df[term]++
		}
		totalLen += len([]rune(c.Text))
	}
	if len(chunks) == 0 {
		return nil, nil
	}
	avgLen := float64(totalLen) / float64(len(chunks))

	var results []SearchResult
	for i, c := range chunks {
		docLen := float64(len([]rune(c.Text)))
		score := 0.0
		var matched []string
		for _, term := range queryTerms {
			tf := docs[i][term]
			if tf == 0 {
				continue
			}
			matched = append(matched, term)
			idf := math.Log(1 + (float64(len(chunks))-float64(df[term])+0.5)/(float64(df[term])+0.5))
			norm := float64(tf) * (bm25K1 + 1) / (float64(tf) + bm25K1*(1-bm25B+bm25B*docLen/avgLen))
			score += idf * norm
		}
		if len(matched) == 0 || score < cfg.MinScore {
			continue
		}
		results = append(results, SearchResult{
			Chunk:   c,
			Score:   score,
			Matched: dedupTerms(matched),
			Snippet: matchSnippet(c.Text, matched[0]),
		})
	}

	sort.SliceStable(results, func(a, b int) bool { return results[a].Score > results[b].Score })
	if len(results) > cfg.TopK {
		results = results[:cfg.TopK]
	}
	return results, nil
}

func dedupTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	var out []string
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// matchSnippet returns the text around the first occurrence of term,
// located case-insensitively via folded comparison.
func matchSnippet(text, term string) string {
	folded := foldCaser.String(text)
	idx := strings.Index(folded, term)
	if idx < 0 {
		idx = 0
	}
	runeOff := len([]rune(text[:clampByteOffset(text, idx)]))
	runes := []rune(text)
	start := runeOff - searchSnippetRadius
	if start < 0 {
		start = 0
	}
	end := runeOff + len([]rune(term)) + searchSnippetRadius
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start:end])
}

// clampByteOffset pulls an offset derived from folded text back to the
// nearest rune boundary of the original. Folding can change byte counts
// for some scripts; the snippet only needs an approximate anchor.
func clampByteOffset(text string, off int) int {
	if off > len(text) {
		off = len(text)
	}
	for off > 0 && off < len(text) && (text[off]&0xC0) == 0x80 {
		off--
	}
	return off
}
