package domain

import (
	"fmt"
	"time"
)

// Itinerary is the snapshot the engine operates on. The engine never
// mutates it; callers replace the segment collection with engine output.
type Itinerary struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Segments  []Segment  `json:"segments" yaml:"segments"`
}

// HasBounds reports whether the itinerary carries a date range.
func (it *Itinerary) HasBounds() bool {
	return it.StartDate != nil && it.EndDate != nil
}

// WithinBounds reports whether the given range fits the itinerary's date
// range. Always true when no range is set.
func (it *Itinerary) WithinBounds(start, end time.Time) bool {
	if it.StartDate != nil && start.Before(*it.StartDate) {
		return false
	}
	if it.EndDate != nil && end.After(*it.EndDate) {
		return false
	}
	return true
}

func (it *Itinerary) Validate() error {
	if it.StartDate != nil && it.EndDate != nil && it.EndDate.Before(*it.StartDate) {
		return fmt.Errorf("%w: itinerary %s date range is inverted", ErrValidation, it.ID)
	}
	seen := make(map[string]struct{}, len(it.Segments))
	for i := range it.Segments {
		seg := &it.Segments[i]
		if err := seg.Validate(); err != nil {
			return err
		}
		if _, dup := seen[seg.ID]; dup {
			return fmt.Errorf("%w: duplicate segment id %s", ErrValidation, seg.ID)
		}
		seen[seg.ID] = struct{}{}
		end := seg.EndTime
		if end.IsZero() {
			end = seg.StartTime
		}
		if !it.WithinBounds(seg.StartTime, end) {
			return fmt.Errorf("%w: segment %s falls outside the itinerary date range", ErrValidation, seg.ID)
		}
	}
	return nil
}

// Segment returns the segment with the given id, or nil.
func (it *Itinerary) Segment(id string) *Segment {
	for i := range it.Segments {
		if it.Segments[i].ID == id {
			return &it.Segments[i]
		}
	}
	return nil
}
