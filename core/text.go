package core

import (
	"strings"
	"unicode"
)

// Stop words to filter out when tokenizing for the keyword index
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// Tokenize lowercases text, splits on any non-alphanumeric rune, and
// removes stop words. Splitting on punctuation rather than trimming it
// means "budget.xlsx" indexes as both "budget" and "xlsx". Both the
// inverted index and the query side use this so index terms and query
// terms always agree.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	filtered := make([]string, 0, len(words))
	for _, word := range words {
		if !stopWords[word] {
			filtered = append(filtered, word)
		}
	}
	return filtered
}

// TermFrequencies counts tokenized term occurrences in text.
func TermFrequencies(text string) map[string]int {
	counts := make(map[string]int)
	for _, term := range Tokenize(text) {
		counts[term]++
	}
	return counts
}

// ContainsAllWords checks if all query words (after filtering) appear in
// the document. Used for verbatim match boosts.
func ContainsAllWords(document, query string) bool {
	queryWords := Tokenize(query)
	if len(queryWords) == 0 {
		return false
	}

	docWords := Tokenize(document)
	docWordSet := make(map[string]bool, len(docWords))
	for _, word := range docWords {
		docWordSet[word] = true
	}

	for _, qWord := range queryWords {
		if !docWordSet[qWord] {
			return false
		}
	}

	return true
}
