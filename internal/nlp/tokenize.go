// Package nlp provides the small text toolkit used by heuristic scoring:
// a word tokenizer, an English stemmer and an AFINN-style sentiment lexicon.
package nlp

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// Tokenize lower-cases text and splits it into words made of letters, digits
// and inner apostrophes. Punctuation is dropped.
func Tokenize(text string) []string {
	text = lower.String(text)
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Sentences splits text on terminal punctuation and returns the non-empty parts.
func Sentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Stem returns the Snowball (Porter2) stem of a lower-case English word.
func Stem(word string) string {
	return english.Stem(word, false)
}

// StemSet tokenizes text and returns the set of stems of words longer than
// minLen runes.
func StemSet(text string, minLen int) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokenize(text) {
		if len([]rune(tok)) <= minLen || IsStopWord(tok) {
			continue
		}
		set[Stem(tok)] = struct{}{}
	}
	return set
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "into": {},
	"is": {}, "it": {}, "its": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {},
	"their": {}, "then": {}, "there": {}, "these": {}, "they": {}, "this": {}, "to": {},
	"was": {}, "were": {}, "which": {}, "will": {}, "with": {}, "what": {}, "when": {},
	"where": {}, "who": {}, "why": {}, "how": {}, "can": {}, "you": {}, "your": {},
}

// IsStopWord reports whether a lower-case token is a common English function word.
func IsStopWord(tok string) bool {
	_, ok := stopWords[tok]
	return ok
}
