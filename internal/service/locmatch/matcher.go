package locmatch

import (
	"regexp"
	"strings"

	"tripweaver/internal/domain"
	"tripweaver/internal/geoutil"
	"tripweaver/internal/strutil"
)

// Rule names the cascade step that decided a match. They show up in logs
// and in tests, not in API responses.
type Rule string

const (
	RuleCode      Rule = "code"
	RuleName      Rule = "name"
	RuleCodeOnly  Rule = "code-presence"
	RuleAddress   Rule = "street-address"
	RuleWord      Rule = "shared-word"
	RuleSubstring Rule = "substring"
	RuleNoSignal  Rule = "no-signal"
)

// Match is the full result of comparing two locations. Coordinates only
// ever raise the confidence of a positive match; they never decide one.
type Match struct {
	Same       bool
	Rule       Rule
	Confidence domain.Confidence
}

const (
	// DefaultCoordinateRadiusMeters is how close two coordinate pairs must
	// be to corroborate a heuristic match.
	DefaultCoordinateRadiusMeters = 250.0

	// substringMinLen is the shortest normalized name that may match by
	// containment alone.
	substringMinLen = 9
)

var iataRe = regexp.MustCompile(`^[A-Za-z]{3}$`)

type MatcherOption func(*Matcher)

func WithCoordinateRadius(meters float64) MatcherOption {
	return func(m *Matcher) {
		m.coordinateRadius = meters
	}
}

// Matcher decides whether two described locations are the same place. The
// decision is an ordered cascade; the first applicable rule wins and later
// rules are never consulted.
type Matcher struct {
	coordinateRadius float64
}

func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{coordinateRadius: DefaultCoordinateRadiusMeters}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SameLocation reports whether a and b describe the same place.
func (m *Matcher) SameLocation(a, b *domain.Location) bool {
	return m.Match(a, b).Same
}

// Match runs the cascade:
//
//  1. both carry codes: the codes decide, nothing else is consulted
//  2. equal normalized names decide
//  3. a code on exactly one side marks a distinct, disambiguated place
//  4. a street-address name requires same city plus a shared significant
//     word; same city alone is not enough
//  5. shared significant word, or substring containment for long names
func (m *Matcher) Match(a, b *domain.Location) Match {
	if a == nil || b == nil {
		return Match{Same: false, Rule: RuleNoSignal, Confidence: domain.ConfidenceLow}
	}

	if a.Code != "" && b.Code != "" {
		same := strings.EqualFold(a.Code, b.Code)
		return Match{Same: same, Rule: RuleCode, Confidence: domain.ConfidenceHigh}
	}

	if strutil.Normalize(a.Name) != "" && strutil.Normalize(a.Name) == strutil.Normalize(b.Name) {
		return Match{Same: true, Rule: RuleName, Confidence: domain.ConfidenceHigh}
	}

	if (a.Code != "") != (b.Code != "") {
		return Match{Same: false, Rule: RuleCodeOnly, Confidence: domain.ConfidenceHigh}
	}

	if strutil.LooksLikeStreetAddress(a.Name) || strutil.LooksLikeStreetAddress(b.Name) {
		same := m.SameCity(a, b) && strutil.SharedSignificantWord(a.Name, b.Name)
		return m.corroborate(a, b, Match{Same: same, Rule: RuleAddress, Confidence: domain.ConfidenceMedium})
	}

	if strutil.SharedSignificantWord(a.Name, b.Name) {
		return m.corroborate(a, b, Match{Same: true, Rule: RuleWord, Confidence: domain.ConfidenceMedium})
	}
	if containsName(a.Name, b.Name) {
		return m.corroborate(a, b, Match{Same: true, Rule: RuleSubstring, Confidence: domain.ConfidenceMedium})
	}
	return Match{Same: false, Rule: RuleNoSignal, Confidence: domain.ConfidenceLow}
}

// SameCity reports whether both locations carry a city and the normalized
// cities are equal.
func (m *Matcher) SameCity(a, b *domain.Location) bool {
	if a == nil || b == nil {
		return false
	}
	ca, cb := strutil.NormalizeCity(a.City()), strutil.NormalizeCity(b.City())
	return ca != "" && ca == cb
}

// corroborate raises the confidence of a positive heuristic match when
// both sides carry coordinates within the configured radius.
func (m *Matcher) corroborate(a, b *domain.Location, match Match) Match {
	if !match.Same || a.Coordinates == nil || b.Coordinates == nil {
		return match
	}
	d := geoutil.DistanceMeters(a.Coordinates.Lat, a.Coordinates.Lng, b.Coordinates.Lat, b.Coordinates.Lng)
	if d <= m.coordinateRadius {
		match.Confidence = domain.ConfidenceHigh
	}
	return match
}

// containsName reports substring containment between normalized names,
// provided the contained name is long enough to be meaningful.
func containsName(a, b string) bool {
	na, nb := strutil.Normalize(a), strutil.Normalize(b)
	if len(na) < len(nb) {
		na, nb = nb, na
	}
	if len(nb) < substringMinLen {
		return false
	}
	return strings.Contains(na, nb)
}

// LooksLikeAirport reports whether a location is airport-like: an IATA
// style three-letter code, or a name mentioning an airport.
func LooksLikeAirport(l *domain.Location) bool {
	if l == nil {
		return false
	}
	if l.Code != "" && iataRe.MatchString(l.Code) {
		return true
	}
	name := strutil.Normalize(l.Name)
	return strings.Contains(name, "airport") || strings.Contains(name, "aeropuerto")
}
