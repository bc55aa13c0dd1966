// Package lexical provides the keyword side of hybrid search: a
// tokenizer with stop-word filtering and light stemming, the persisted
// term-frequency map, and the relevance scorer used for lexical ranking.
package lexical

import "strings"

// titleWeight is how many content occurrences one title occurrence is
// worth in the term map.
const titleWeight = 3

// Stop words filtered out during tokenisation.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// Tokenize splits text into normalised terms: lowercased, punctuation
// trimmed, stop words removed, suffixes lightly stemmed.
func Tokenize(text string) []string {
	words := strings.Fields(text)
	terms := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned == "" || stopWords[cleaned] {
			continue
		}
		terms = append(terms, stem(cleaned))
	}

	return terms
}

// stem strips common English suffixes so that singular and plural forms
// match. Deliberately conservative, not a full stemmer.
func stem(term string) string {
	term = strings.TrimSuffix(term, "'s")
	switch {
	case len(term) > 4 && strings.HasSuffix(term, "ies"):
		return term[:len(term)-3] + "y"
	case len(term) > 4 && (strings.HasSuffix(term, "sses") ||
		strings.HasSuffix(term, "shes") || strings.HasSuffix(term, "ches") ||
		strings.HasSuffix(term, "xes") || strings.HasSuffix(term, "zes")):
		return term[:len(term)-2]
	case len(term) > 3 && strings.HasSuffix(term, "s") && !strings.HasSuffix(term, "ss"):
		return term[:len(term)-1]
	}
	return term
}

// Terms builds the term frequency map persisted with an index entry.
// Title occurrences count more than content occurrences.
func Terms(title, content string) map[string]int {
	terms := make(map[string]int)
	for _, t := range Tokenize(title) {
		terms[t] += titleWeight
	}
	for _, t := range Tokenize(content) {
		terms[t]++
	}
	return terms
}

// Rank scores query text against a term map. Each distinct query term
// contributes a saturating tf/(tf+1) share, so the result is bounded to
// [0,1) and zero exactly when nothing matches.
func Rank(query string, terms map[string]int) float64 {
	tokens := Tokenize(query)
	if len(tokens) == 0 || len(terms) == 0 {
		return 0
	}

	seen := make(map[string]bool, len(tokens))
	var score float64
	var distinct int
	for _, tok := range tokens {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		distinct++
		if tf := terms[tok]; tf > 0 {
			score += float64(tf) / float64(tf+1)
		}
	}

	return score / float64(distinct)
}
