package casedoc

import (
	"strings"
	"unicode"
)

// stopWords are common English words that carry no ranking signal, plus the
// filler of natural-language questions.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"that": true, "the": true, "to": true, "was": true, "were": true, "will": true,
	"with": true, "this": true, "but": true, "they": true, "have": true,
	"had": true, "what": true, "when": true, "where": true, "who": true, "which": true,
	"why": true, "how": true, "all": true, "any": true, "both": true, "each": true,
	"few": true, "more": true, "most": true, "other": true, "some": true, "such": true,
	"no": true, "nor": true, "not": true, "only": true, "own": true, "same": true,
	"so": true, "than": true, "too": true, "very": true, "can": true, "did": true,
	"do": true, "does": true, "doing": true, "done": true, "down": true, "up": true,
	"about": true, "into": true, "their": true, "there": true, "these": true,
	"those": true, "been": true, "being": true, "would": true, "could": true,
	"should": true, "our": true, "your": true, "you": true, "she": true, "his": true,
	"her": true, "them": true, "then": true, "also": true, "tell": true, "show": true,
	"find": true, "please": true, "give": true, "list": true,
}

// IsStopWord reports whether a lowercase word is a stop word.
func IsStopWord(word string) bool {
	return stopWords[word]
}

// Tokenize lowercases text, splits it on anything other than letters and
// digits, and drops stop words and words of two characters or fewer.
// Repeated words are kept.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	words := fields[:0]
	for _, f := range fields {
		if len(f) <= 2 || stopWords[f] {
			continue
		}
		words = append(words, f)
	}
	return words
}
