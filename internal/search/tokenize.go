package search

import (
	"slices"
	"strings"
	"unicode"
)

// Tokenize splits text into index terms. Latin-script words are always
// indexed, lower-cased; when languages include "zh", runs of Han characters
// are indexed as unigrams and bigrams.
func Tokenize(text string, languages []string) []string {
	cjk := slices.Contains(languages, "zh")

	var terms []string
	var word []rune
	var han []rune
	flushWord := func() {
		if len(word) > 1 {
			terms = append(terms, strings.ToLower(string(word)))
		}
		word = word[:0]
	}
	flushHan := func() {
		for i := range han {
			terms = append(terms, string(han[i]))
			if i+1 < len(han) {
				terms = append(terms, string(han[i:i+2]))
			}
		}
		han = han[:0]
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			flushWord()
			if cjk {
				han = append(han, r)
			}
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flushHan()
			word = append(word, r)
		default:
			flushWord()
			flushHan()
		}
	}
	flushWord()
	flushHan()
	return terms
}
