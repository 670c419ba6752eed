package domain

import (
	"fmt"
	"time"
)

type SegmentType string

const (
	SegmentFlight   SegmentType = "FLIGHT"
	SegmentHotel    SegmentType = "HOTEL"
	SegmentMeeting  SegmentType = "MEETING"
	SegmentActivity SegmentType = "ACTIVITY"
	SegmentTransfer SegmentType = "TRANSFER"
	SegmentCustom   SegmentType = "CUSTOM"
)

// Background types may coexist in time with anything else: a hotel booking
// spans nights without occupying the traveler.
func (t SegmentType) Background() bool {
	return t == SegmentHotel || t == SegmentMeeting
}

// Exclusive types occupy the traveler: one conveyance at a time.
func (t SegmentType) Exclusive() bool {
	return t == SegmentFlight || t == SegmentTransfer
}

// SingleLocation reports whether the type carries one location instead of
// an origin/destination pair.
func (t SegmentType) SingleLocation() bool {
	switch t {
	case SegmentHotel, SegmentMeeting, SegmentActivity, SegmentCustom:
		return true
	}
	return false
}

func (t SegmentType) Valid() bool {
	switch t {
	case SegmentFlight, SegmentHotel, SegmentMeeting, SegmentActivity, SegmentTransfer, SegmentCustom:
		return true
	}
	return false
}

type SegmentStatus string

const (
	StatusPlanned   SegmentStatus = "PLANNED"
	StatusConfirmed SegmentStatus = "CONFIRMED"
	StatusCancelled SegmentStatus = "CANCELLED"
	StatusProposed  SegmentStatus = "PROPOSED"
)

type TransferType string

const (
	TransferTaxi    TransferType = "TAXI"
	TransferShuttle TransferType = "SHUTTLE"
	TransferPrivate TransferType = "PRIVATE"
	TransferTrain   TransferType = "TRAIN"
	TransferWalk    TransferType = "WALK"
)

// Segment is a tagged variant over Type. FLIGHT uses Origin/Destination,
// TRANSFER uses PickupLocation/DropoffLocation, every other type uses the
// single Location field. The StartLocation/EndLocation accessors are the
// only place that switches on the tag.
type Segment struct {
	ID          string        `json:"id" yaml:"id"`
	Type        SegmentType   `json:"type" yaml:"type"`
	Name        string        `json:"name,omitempty" yaml:"name,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string        `json:"category,omitempty" yaml:"category,omitempty"`
	StartTime   time.Time     `json:"startDatetime" yaml:"startDatetime"`
	EndTime     time.Time     `json:"endDatetime" yaml:"endDatetime"`
	Status      SegmentStatus `json:"status,omitempty" yaml:"status,omitempty"`
	DependsOn   []string      `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`

	Origin          *Location `json:"origin,omitempty" yaml:"origin,omitempty"`
	Destination     *Location `json:"destination,omitempty" yaml:"destination,omitempty"`
	PickupLocation  *Location `json:"pickupLocation,omitempty" yaml:"pickupLocation,omitempty"`
	DropoffLocation *Location `json:"dropoffLocation,omitempty" yaml:"dropoffLocation,omitempty"`
	Location        *Location `json:"location,omitempty" yaml:"location,omitempty"`

	TransferType   TransferType `json:"transferType,omitempty" yaml:"transferType,omitempty"`
	Inferred       bool         `json:"inferred,omitempty" yaml:"inferred,omitempty"`
	InferredReason string       `json:"inferredReason,omitempty" yaml:"inferredReason,omitempty"`
	TightSchedule  bool         `json:"tightSchedule,omitempty" yaml:"tightSchedule,omitempty"`
}

// StartLocation returns where the segment begins, or nil when the field for
// its type was never filled in.
func (s *Segment) StartLocation() *Location {
	switch s.Type {
	case SegmentFlight:
		return s.Origin
	case SegmentTransfer:
		return s.PickupLocation
	case SegmentHotel, SegmentMeeting, SegmentActivity, SegmentCustom:
		return s.Location
	}
	return nil
}

// EndLocation returns where the segment leaves the traveler.
func (s *Segment) EndLocation() *Location {
	switch s.Type {
	case SegmentFlight:
		return s.Destination
	case SegmentTransfer:
		return s.DropoffLocation
	case SegmentHotel, SegmentMeeting, SegmentActivity, SegmentCustom:
		return s.Location
	}
	return nil
}

// SearchText is the text the duration heuristics match against.
func (s *Segment) SearchText() string {
	text := s.Name
	if s.Description != "" {
		text += " " + s.Description
	}
	if s.Category != "" {
		text += " " + s.Category
	}
	return text
}

func (s *Segment) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Clone returns a deep copy, nil for nil.
func (s *Segment) Clone() *Segment {
	if s == nil {
		return nil
	}
	out := *s
	if s.DependsOn != nil {
		out.DependsOn = append([]string(nil), s.DependsOn...)
	}
	out.Origin = s.Origin.Clone()
	out.Destination = s.Destination.Clone()
	out.PickupLocation = s.PickupLocation.Clone()
	out.DropoffLocation = s.DropoffLocation.Clone()
	out.Location = s.Location.Clone()
	return &out
}

// Overlaps reports whether the two time ranges intersect. Touching
// endpoints do not count as overlap.
func (s *Segment) Overlaps(other *Segment) bool {
	return s.StartTime.Before(other.EndTime) && other.StartTime.Before(s.EndTime)
}

func (s *Segment) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: segment id is empty", ErrValidation)
	}
	if !s.Type.Valid() {
		return fmt.Errorf("%w: segment %s has unknown type %q", ErrValidation, s.ID, s.Type)
	}
	if s.StartTime.IsZero() {
		return fmt.Errorf("%w: segment %s has no start datetime", ErrValidation, s.ID)
	}
	if !s.EndTime.IsZero() && s.EndTime.Before(s.StartTime) {
		return fmt.Errorf("%w: segment %s ends before it starts", ErrValidation, s.ID)
	}
	for _, loc := range []*Location{s.Origin, s.Destination, s.PickupLocation, s.DropoffLocation, s.Location} {
		if loc != nil {
			if err := loc.Validate(); err != nil {
				return fmt.Errorf("segment %s: %w", s.ID, err)
			}
		}
	}
	return nil
}
