// Package rules holds the pure heuristic tables of the engine as ordered,
// first-match rule lists. Keeping them as data makes each table testable
// on its own and keeps control flow out of the heuristics.
package rules

import (
	"regexp"

	"tripweaver/internal/domain"
)

// DurationRule maps a text pattern to a standard activity duration.
type DurationRule struct {
	Label      string
	Minutes    int
	Confidence domain.Confidence

	pattern *regexp.Regexp
}

func (r DurationRule) Matches(text string) bool {
	return r.pattern.MatchString(text)
}

func rule(label string, minutes int, conf domain.Confidence, expr string) DurationRule {
	return DurationRule{
		Label:      label,
		Minutes:    minutes,
		Confidence: conf,
		pattern:    regexp.MustCompile(`(?i)\b(?:` + expr + `)\b`),
	}
}

// DurationRules is evaluated in order, most specific pattern first. The
// first match wins.
var DurationRules = []DurationRule{
	rule("breakfast", 60, domain.ConfidenceHigh, `breakfast`),
	rule("lunch", 90, domain.ConfidenceHigh, `lunch`),
	rule("dinner", 120, domain.ConfidenceHigh, `dinner`),
	rule("movie", 120, domain.ConfidenceHigh, `movie|cinema`),
	rule("concert", 150, domain.ConfidenceHigh, `concert|broadway`),
	rule("opera", 180, domain.ConfidenceHigh, `opera`),
	rule("tour", 180, domain.ConfidenceMedium, `tour`),
	rule("museum", 120, domain.ConfidenceMedium, `museum|museo|musee|gallery`),
	rule("spa", 120, domain.ConfidenceMedium, `spa|massage`),
	rule("meeting", 60, domain.ConfidenceMedium, `meeting|call|appointment`),
	rule("golf", 240, domain.ConfidenceMedium, `golf`),
}

// DefaultDurationMinutes applies when no pattern matches.
const DefaultDurationMinutes = 120

// MatchDuration returns the first rule whose pattern matches the text.
func MatchDuration(text string) (DurationRule, bool) {
	for _, r := range DurationRules {
		if r.Matches(text) {
			return r, true
		}
	}
	return DurationRule{}, false
}
