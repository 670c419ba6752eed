package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation wraps every malformed-input failure. Malformed
	// segments surface immediately and are never silently corrected.
	ErrValidation = errors.New("validation failed")

	ErrNotFound = errors.New("not found")
)

// CycleError rejects an edge or ordering operation that would close a
// dependency cycle. The graph is left unchanged.
type CycleError struct {
	FromID string
	ToID   string
}

func (e *CycleError) Error() string {
	if e.FromID == "" && e.ToID == "" {
		return "dependency cycle detected"
	}
	return fmt.Sprintf("dependency %s -> %s would create a cycle", e.FromID, e.ToID)
}

// BoundsError rejects a time shift that would push a segment outside the
// itinerary date range. Nothing is moved.
type BoundsError struct {
	SegmentID string
	Start     time.Time
	End       time.Time
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("shifting segment %s to %s..%s leaves the itinerary date range",
		e.SegmentID, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

type WarningCode string

const (
	WarnTightSchedule WarningCode = "TIGHT_SCHEDULE"
	WarnConflict      WarningCode = "CONFLICT"
)

// Warning annotates a non-fatal finding. The operation it accompanies
// still succeeds.
type Warning struct {
	Code      WarningCode `json:"code" yaml:"code"`
	SegmentID string      `json:"segmentId,omitempty" yaml:"segmentId,omitempty"`
	Message   string      `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	if w.SegmentID == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Code, w.SegmentID, w.Message)
}
