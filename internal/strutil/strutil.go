// Package strutil holds the pure string heuristics behind location
// matching: unicode folding, significant-word tokenization, fuzzy word
// equality and street-address detection. Everything here is deterministic
// and ASCII-case-normalized.
package strutil

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/samber/lo"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldMarks decomposes accented runes and drops the combining marks, so
// "Jirón" and "Jiron" normalize identically.
var foldMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// stopWords are tokens that carry no identity: articles, prepositions and
// generic venue nouns. Two unrelated hotels share the word "hotel"; that
// must never count as a significant overlap.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "near": {},
	"los": {}, "las": {}, "del": {}, "der": {}, "les": {}, "une": {},
	"von": {}, "van": {}, "dos": {}, "das": {},
	"hotel": {}, "hostel": {}, "inn": {}, "resort": {}, "suites": {},
	"lodge": {}, "apartments": {}, "apartment": {},
	"airport": {}, "international": {}, "terminal": {}, "station": {},
	"central": {}, "city": {}, "center": {}, "centre": {}, "plaza": {},
	"restaurant": {}, "cafe": {}, "bar": {},
}

var (
	houseNumberRe   = regexp.MustCompile(`^\s*\d+[a-z]?\b`)
	parentheticalRe = regexp.MustCompile(`\s*\([^)]*\)`)
	trailingAbbrRe  = regexp.MustCompile(`,?\s+[A-Z]{2}$`)
	nonAlnumRe      = regexp.MustCompile(`[^a-z0-9]+`)
	spaceRe         = regexp.MustCompile(`\s+`)
)

// streetSuffixes mark a name as a street address when they follow a
// leading house number.
var streetSuffixes = map[string]struct{}{
	"street": {}, "st": {}, "avenue": {}, "ave": {}, "av": {},
	"road": {}, "rd": {}, "boulevard": {}, "blvd": {}, "lane": {}, "ln": {},
	"drive": {}, "dr": {}, "way": {}, "court": {}, "ct": {}, "place": {}, "pl": {},
	"calle": {}, "avenida": {}, "carrera": {}, "jiron": {}, "rue": {}, "strasse": {},
}

// Normalize lowercases, folds accents and collapses whitespace.
func Normalize(s string) string {
	folded, _, err := transform.String(foldMarks, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	return spaceRe.ReplaceAllString(folded, " ")
}

// Tokens splits a name into normalized significant words: stop words and
// tokens shorter than three characters are dropped, duplicates removed.
func Tokens(s string) []string {
	raw := nonAlnumRe.Split(Normalize(s), -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) < 3 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return lo.Uniq(tokens)
}

// WordsEqual reports fuzzy equality between two normalized tokens. The
// allowed edit distance scales with token length so that short tokens
// (street numbers, codes) only match exactly.
func WordsEqual(a, b string) bool {
	if a == b {
		return true
	}
	shorter := len(a)
	if len(b) < shorter {
		shorter = len(b)
	}
	var maxDist int
	switch {
	case shorter < 4:
		return false
	case shorter < 7:
		maxDist = 1
	default:
		maxDist = 2
	}
	return levenshtein.ComputeDistance(a, b) <= maxDist
}

// SharedSignificantWord reports whether the two names share at least one
// significant word under fuzzy equality.
func SharedSignificantWord(a, b string) bool {
	ta, tb := Tokens(a), Tokens(b)
	for _, w := range ta {
		for _, v := range tb {
			if WordsEqual(w, v) {
				return true
			}
		}
	}
	return false
}

// LooksLikeStreetAddress reports whether a name starts with a house number
// and contains a street-suffix token ("515 Main St", "221b Baker Street").
func LooksLikeStreetAddress(s string) bool {
	n := Normalize(s)
	if !houseNumberRe.MatchString(n) {
		return false
	}
	for _, tok := range nonAlnumRe.Split(n, -1) {
		if _, ok := streetSuffixes[tok]; ok {
			return true
		}
	}
	return false
}

// NormalizeCity prepares a city string for comparison: parenthetical codes
// ("New York (JFK)") and trailing two-letter state or country abbreviations
// ("Austin TX", "Lima, PE") are stripped before folding.
func NormalizeCity(s string) string {
	s = parentheticalRe.ReplaceAllString(s, "")
	trimmed := trailingAbbrRe.ReplaceAllString(strings.TrimSpace(s), "")
	if trimmed != "" {
		s = trimmed
	}
	return Normalize(s)
}
