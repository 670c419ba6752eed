package continuity

import (
	"time"

	"tripweaver/internal/domain"
	"tripweaver/internal/service/locmatch"
	"tripweaver/internal/strutil"
)

const (
	// Overnight window: an evening end followed by a next-day start inside
	// these hours means the traveler slept rather than traveled.
	defaultOvernightEndHour   = 18
	defaultOvernightStartHour = 14

	// A gap longer than this on the same calendar day is treated like an
	// overnight-style rest block.
	defaultOvernightSameDayGap = 8 * time.Hour
)

type ClassifierOption func(*Classifier)

func WithOvernightHours(endHour, startHour int) ClassifierOption {
	return func(c *Classifier) {
		c.overnightEndHour = endHour
		c.overnightStartHour = startHour
	}
}

func WithOvernightSameDayGap(d time.Duration) ClassifierOption {
	return func(c *Classifier) {
		c.overnightSameDayGap = d
	}
}

// Classifier categorizes a detected discontinuity between two adjacent
// segments.
type Classifier struct {
	matcher *locmatch.Matcher

	overnightEndHour    int
	overnightStartHour  int
	overnightSameDayGap time.Duration
}

func NewClassifier(matcher *locmatch.Matcher, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		matcher:             matcher,
		overnightEndHour:    defaultOvernightEndHour,
		overnightStartHour:  defaultOvernightStartHour,
		overnightSameDayGap: defaultOvernightSameDayGap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OvernightGap reports whether the span between end and start looks like a
// night (or a rest block long enough to count as one): either the
// boundary crosses a calendar day with an evening end and a next-day
// morning start, or the same day holds a gap longer than the configured
// rest block.
func (c *Classifier) OvernightGap(end, start time.Time) bool {
	if !start.After(end) {
		return false
	}
	if sameDay(end, start) {
		return start.Sub(end) > c.overnightSameDayGap
	}
	return end.Hour() >= c.overnightEndHour && start.Hour() < c.overnightStartHour
}

// ClassifyInput carries everything the classification order consults. The
// analyzer derives these from the segment pair.
type ClassifyInput struct {
	From            *domain.Location
	To              *domain.Location
	Window          time.Duration
	Overnight       bool
	AirportAdjacent bool
	HotelToHotel    bool
}

// Classify decides what a discontinuity is, in a fixed order:
//
//  1. no window or same place: NONE
//  2. overnight, not airport-adjacent, not hotel-to-hotel, and the cities
//     are not known to differ: SKIP_OVERNIGHT, the traveler is presumed
//     at lodging and nothing is synthesized
//  3. airport-adjacent: AIRPORT_TRANSFER
//  4. cities not known to differ: LOCAL_TRANSFER
//  5. otherwise: TRAVEL_DAY
//
// An overnight span between cities that are known to differ is a real
// missing leg, not a night at the hotel, so it falls through to
// TRAVEL_DAY. When no city data exists the overnight skip applies; the
// alternative is inventing an overnight-long conveyance.
func (c *Classifier) Classify(in ClassifyInput) domain.GapClassification {
	if in.Window <= 0 || c.matcher.SameLocation(in.From, in.To) {
		return domain.GapNone
	}
	differentCities := knownDifferentCities(in.From, in.To)
	if in.Overnight && !in.AirportAdjacent && !in.HotelToHotel && !differentCities {
		return domain.GapSkipOvernight
	}
	if in.AirportAdjacent {
		return domain.GapAirportTransfer
	}
	if !differentCities {
		return domain.GapLocalTransfer
	}
	return domain.GapTravelDay
}

// AirportSegment reports whether a segment touches an airport: any flight,
// or a transfer whose pickup or dropoff is airport-like.
func AirportSegment(seg *domain.Segment) bool {
	if seg == nil {
		return false
	}
	switch seg.Type {
	case domain.SegmentFlight:
		return true
	case domain.SegmentTransfer:
		return locmatch.LooksLikeAirport(seg.PickupLocation) || locmatch.LooksLikeAirport(seg.DropoffLocation)
	}
	return false
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// knownDifferentCities is true only when both sides carry a city and the
// normalized cities differ. Missing city data never counts as different.
func knownDifferentCities(a, b *domain.Location) bool {
	ca, cb := strutil.NormalizeCity(a.City()), strutil.NormalizeCity(b.City())
	return ca != "" && cb != "" && ca != cb
}
