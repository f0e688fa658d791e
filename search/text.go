package search

import "strings"

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "be": {}, "is": {}, "are": {},
	"was": {}, "to": {}, "of": {}, "and": {}, "in": {}, "that": {},
	"have": {}, "it": {}, "for": {}, "not": {}, "on": {}, "with": {},
	"as": {}, "you": {}, "do": {}, "at": {}, "this": {}, "but": {},
	"by": {}, "from": {}, "what": {}, "how": {}, "does": {}, "can": {},
}

// keywords lowercases text, trims surrounding punctuation from each word
// and drops stop words.
func keywords(text string) []string {
	words := strings.Fields(text)
	out := make([]string, 0, len(words))
	for _, word := range words {
		w := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if w == "" {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// containsAllKeywords reports whether every keyword of query occurs as a
// word of document. A query with no keywords matches nothing.
func containsAllKeywords(document, query string) bool {
	want := keywords(query)
	if len(want) == 0 {
		return false
	}

	have := make(map[string]struct{})
	for _, w := range keywords(document) {
		have[w] = struct{}{}
	}
	for _, w := range want {
		if _, ok := have[w]; !ok {
			return false
		}
	}
	return true
}
