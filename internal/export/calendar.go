// Package export renders itineraries into interchange formats.
package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"tripweaver/internal/domain"
	"tripweaver/internal/geoutil"
	"tripweaver/internal/service/continuity"
	"tripweaver/internal/service/inference"
)

const productID = "-//tripweaver//itinerary//EN"

// Calendar renders an itinerary as an iCalendar document. Times are
// emitted in UTC; a segment without an end gets its typical duration.
func Calendar(it *domain.Itinerary) ([]byte, error) {
	if it == nil {
		return nil, fmt.Errorf("%w: nil itinerary", domain.ErrValidation)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	if it.Name != "" {
		cal.SetXWRCalName(it.Name)
	}

	inf := inference.NewInferencer()
	stamp := time.Now().UTC()

	for _, seg := range continuity.SortedByStart(it.Segments) {
		end, _ := inf.EffectiveEnd(&seg)

		event := cal.AddEvent(fmt.Sprintf("%s@tripweaver", seg.ID))
		event.SetDtStampTime(stamp)
		event.SetStartAt(seg.StartTime.UTC())
		event.SetEndAt(end.UTC())
		event.SetSummary(summary(&seg))
		event.SetStatus(objectStatus(seg.Status))

		if loc := displayLocation(&seg); loc != "" {
			event.SetLocation(loc)
		}
		if desc := description(&seg); desc != "" {
			event.SetDescription(desc)
		}
		if start := seg.StartLocation(); start != nil && start.Coordinates != nil {
			event.SetGeo(start.Coordinates.Lat, start.Coordinates.Lng)
		}
		if tz := timezoneName(&seg); tz != "" {
			event.SetProperty(ics.ComponentProperty("X-TIMEZONE"), tz)
		}
		if seg.Inferred {
			event.SetProperty(ics.ComponentProperty("X-INFERRED"), "TRUE")
		}
	}

	return []byte(cal.Serialize()), nil
}

func summary(seg *domain.Segment) string {
	if seg.Name != "" {
		return seg.Name
	}
	return string(seg.Type)
}

func description(seg *domain.Segment) string {
	if seg.Inferred && seg.InferredReason != "" {
		if seg.Description != "" {
			return seg.Description + " (" + seg.InferredReason + ")"
		}
		return seg.InferredReason
	}
	return seg.Description
}

func displayLocation(seg *domain.Segment) string {
	start, end := seg.StartLocation(), seg.EndLocation()
	switch {
	case start == nil && end == nil:
		return ""
	case start == nil:
		return end.Name
	case end == nil || start.Name == end.Name:
		return start.Name
	default:
		return start.Name + " -> " + end.Name
	}
}

// timezoneName prefers the explicit location timezone and falls back to a
// coordinate lookup.
func timezoneName(seg *domain.Segment) string {
	loc := seg.StartLocation()
	if loc == nil {
		return ""
	}
	if loc.Timezone != "" {
		return loc.Timezone
	}
	if loc.Coordinates != nil {
		return geoutil.TimezoneFor(loc.Coordinates.Lat, loc.Coordinates.Lng)
	}
	return ""
}

func objectStatus(status domain.SegmentStatus) ics.ObjectStatus {
	switch status {
	case domain.StatusCancelled:
		return ics.ObjectStatusCancelled
	case domain.StatusProposed:
		return ics.ObjectStatusTentative
	default:
		return ics.ObjectStatusConfirmed
	}
}
