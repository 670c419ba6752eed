package kafka

import (
	"time"

	"tripweaver/internal/domain"
)

const (
	EventTypeRevised = "itinerary_revised"
	EventTypeFilled  = "itinerary_filled"
	EventTypeShifted = "itinerary_shifted"
)

// RevisionEvent announces that an itinerary snapshot changed. The event
// carries the full snapshot so consumers need no storage access.
type RevisionEvent struct {
	Type        string            `json:"type"`
	ItineraryID string            `json:"itineraryId"`
	Revision    int64             `json:"revision"`
	Itinerary   *domain.Itinerary `json:"itinerary"`
	OccurredAt  time.Time         `json:"occurredAt"`
}

// FilledEvent carries the merged collection produced by a fill run.
type FilledEvent struct {
	Type        string           `json:"type"`
	ItineraryID string           `json:"itineraryId"`
	Revision    int64            `json:"revision,omitempty"`
	Segments    []domain.Segment `json:"segments"`
	FilledIDs   []string         `json:"filledIds"`
	Warnings    []domain.Warning `json:"warnings,omitempty"`
	OccurredAt  time.Time        `json:"occurredAt"`
}

// ShiftedEvent reports a cascading shift and the segments it moved.
type ShiftedEvent struct {
	Type        string           `json:"type"`
	ItineraryID string           `json:"itineraryId"`
	MovedIDs    []string         `json:"movedIds"`
	Segments    []domain.Segment `json:"segments"`
	OccurredAt  time.Time        `json:"occurredAt"`
}
