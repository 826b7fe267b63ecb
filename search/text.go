package search

import "strings"

// Words too common to signal a verbatim match. Generated documents are
// prose, so "data for USA" should not match every query containing "for".
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "be": {}, "is": {}, "are": {},
	"was": {}, "to": {}, "of": {}, "and": {}, "in": {}, "that": {},
	"have": {}, "it": {}, "for": {}, "not": {}, "on": {}, "with": {},
	"as": {}, "you": {}, "do": {}, "at": {}, "this": {}, "but": {},
	"by": {}, "from": {}, "data": {}, "covering": {}, "records": {},
}

const wordTrimCutset = ".,!?;:'\"-()[]{}"

// significantWords lowercases text, strips surrounding punctuation, and
// drops stop words.
func significantWords(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		word := strings.ToLower(strings.Trim(field, wordTrimCutset))
		if word == "" {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		words = append(words, word)
	}
	return words
}

// containsAllQueryWords reports whether every significant query word
// appears in the document. A query with no significant words never counts
// as a verbatim hit.
func containsAllQueryWords(document, query string) bool {
	queryWords := significantWords(query)
	if len(queryWords) == 0 {
		return false
	}

	present := make(map[string]struct{})
	for _, word := range significantWords(document) {
		present[word] = struct{}{}
	}

	for _, word := range queryWords {
		if _, ok := present[word]; !ok {
			return false
		}
	}
	return true
}
