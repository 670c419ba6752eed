package inference

import (
	"fmt"
	"time"

	"tripweaver/internal/domain"
	"tripweaver/internal/rules"
)

// InferredDuration is the outcome of the duration heuristic. Low
// confidence is metadata, never an error.
type InferredDuration struct {
	Minutes    int               `json:"minutes"`
	Confidence domain.Confidence `json:"confidence"`
	Reason     string            `json:"reason"`
}

// Inferencer assigns standard durations to segments whose authors supplied
// a start instant but no meaningful end. It is pure and deterministic.
type Inferencer struct{}

func NewInferencer() *Inferencer {
	return &Inferencer{}
}

// ActivityDuration matches the segment's name, description and category
// against the ordered duration table.
func (i *Inferencer) ActivityDuration(seg *domain.Segment) InferredDuration {
	if r, ok := rules.MatchDuration(seg.SearchText()); ok {
		return InferredDuration{
			Minutes:    r.Minutes,
			Confidence: r.Confidence,
			Reason:     fmt.Sprintf("standard %s duration", r.Label),
		}
	}
	return InferredDuration{
		Minutes:    rules.DefaultDurationMinutes,
		Confidence: domain.ConfidenceLow,
		Reason:     "no duration pattern matched, default applied",
	}
}

// EffectiveEnd resolves the instant the segment actually releases the
// traveler. A segment whose end is missing or not meaningfully distinct
// from its start gets start plus the inferred duration; the second return
// reports whether inference was used.
func (i *Inferencer) EffectiveEnd(seg *domain.Segment) (time.Time, bool) {
	if !seg.EndTime.IsZero() && seg.EndTime.After(seg.StartTime) {
		return seg.EndTime, false
	}
	d := i.ActivityDuration(seg)
	return seg.StartTime.Add(time.Duration(d.Minutes) * time.Minute), true
}
