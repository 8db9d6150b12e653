// Package lang classifies and normalizes words for a configured language.
//
// The co-occurrence scores stored in the data files are language-neutral;
// the dampening rules that downweight numbers and function words are not.
// Everything here is a pure function of the word string and a language tag.
package lang

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// English articles carry almost no co-occurrence signal.
var enStopWords = map[string]struct{}{
	"the": {},
	"a":   {},
	"an":  {},
}

// IsNumericWord reports whether the word consists only of digits,
// hyphens and periods ("42", "3.14", "1999-2020").
func IsNumericWord(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if r != '-' && r != '.' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// IsStopWord reports whether the word should be downweighted as a
// function word for the given language. Digit-containing tokens are
// stop words in every language. English adds the articles; Japanese
// adds pure-hiragana tokens, pure date-kanji tokens, and tokens that
// contain Latin letters (those carry their signal in their own entry).
func IsStopWord(language, word string) bool {
	for _, r := range word {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	switch language {
	case "en":
		if _, ok := enStopWords[word]; ok {
			return true
		}
	case "ja":
		if isPureHiragana(word) || isPureDateKanji(word) || containsLatin(word) {
			return true
		}
	}
	return false
}

func isPureHiragana(word string) bool {
	for _, r := range word {
		if r != 'ー' && !unicode.In(r, unicode.Hiragana) {
			return false
		}
	}
	return true
}

func isPureDateKanji(word string) bool {
	for _, r := range word {
		if r != '年' && r != '月' && r != '日' {
			return false
		}
	}
	return true
}

func containsLatin(word string) bool {
	for _, r := range word {
		if unicode.In(r, unicode.Latin) {
			return true
		}
	}
	return false
}

var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// RemoveDiacritic strips combining marks from the text ("café" → "cafe").
// On a transform failure the input is returned unchanged.
func RemoveDiacritic(text string) string {
	out, _, err := transform.String(diacriticStripper, text)
	if err != nil {
		return text
	}
	return out
}

// NormalizeText lowercases the text and strips diacritics. This is the
// normalization applied to whole phrases before store lookups.
func NormalizeText(text string) string {
	return RemoveDiacritic(strings.ToLower(text))
}

// Tokenize splits text into normalized words. Tokens are runs of
// letters, digits and inner hyphens, lowercased and diacritic-stripped.
// The language tag is accepted for symmetry with the classification
// functions; CJK text segments into the unbroken runs between
// punctuation and whitespace.
func Tokenize(language, text string) []string {
	var tokens []string
	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		word := strings.Trim(current.String(), "-")
		current.Reset()
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	for _, r := range NormalizeText(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}
