package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripweaver/internal/domain"
)

func TestCalendarRendersSegments(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	it := &domain.Itinerary{
		ID:   "trip-1",
		Name: "Peru Trip",
		Segments: []domain.Segment{
			{
				ID:        "f1",
				Type:      domain.SegmentFlight,
				Name:      "Flight to Lima",
				StartTime: day.Add(9 * time.Hour),
				EndTime:   day.Add(17 * time.Hour),
				Status:    domain.StatusConfirmed,
				Origin: &domain.Location{
					Name:        "JFK Airport",
					Code:        "JFK",
					Coordinates: &domain.Coordinates{Lat: 40.6413, Lng: -73.7781},
				},
				Destination: &domain.Location{
					Name:     "Jorge Chavez Airport",
					Code:     "LIM",
					Timezone: "America/Lima",
				},
			},
			{
				ID:             "t1",
				Type:           domain.SegmentTransfer,
				Name:           "Transfer to hotel",
				StartTime:      day.Add(17*time.Hour + 20*time.Minute),
				EndTime:        day.Add(18 * time.Hour),
				Status:         domain.StatusProposed,
				Inferred:       true,
				InferredReason: "gap detected between Flight to Lima and Hotel Miraflores",
				PickupLocation: &domain.Location{Name: "Jorge Chavez Airport", Timezone: "America/Lima"},
				DropoffLocation: &domain.Location{
					Name: "Hotel Miraflores",
				},
			},
			{
				ID:        "d1",
				Type:      domain.SegmentActivity,
				Name:      "Dinner at Central",
				StartTime: day.Add(19 * time.Hour),
				Status:    domain.StatusConfirmed,
				Location:  &domain.Location{Name: "Central", Timezone: "America/Lima"},
			},
		},
	}

	data, err := Calendar(it)
	require.NoError(t, err)

	ical := string(data)
	assert.Contains(t, ical, "BEGIN:VCALENDAR")
	assert.Contains(t, ical, "METHOD:PUBLISH")
	assert.Contains(t, ical, "X-WR-CALNAME:Peru Trip")
	assert.Equal(t, 3, strings.Count(ical, "BEGIN:VEVENT"))

	assert.Contains(t, ical, "UID:f1@tripweaver")
	assert.Contains(t, ical, "DTSTART:20240501T090000Z")
	assert.Contains(t, ical, "SUMMARY:Flight to Lima")
	assert.Contains(t, ical, "STATUS:CONFIRMED")
	assert.Contains(t, ical, "LOCATION:JFK Airport -> Jorge Chavez Airport")
	assert.Contains(t, ical, "GEO:40.6413;-73.7781")

	assert.Contains(t, ical, "STATUS:TENTATIVE")
	assert.Contains(t, ical, "X-INFERRED:TRUE")
	assert.Contains(t, ical, "X-TIMEZONE:America/Lima")
}

func TestCalendarInfersOpenEnds(t *testing.T) {
	start := time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC)

	it := &domain.Itinerary{
		ID: "trip-2",
		Segments: []domain.Segment{
			{
				ID:        "d1",
				Type:      domain.SegmentActivity,
				Name:      "Dinner reservation",
				StartTime: start,
				Status:    domain.StatusConfirmed,
			},
		},
	}

	data, err := Calendar(it)
	require.NoError(t, err)

	// Dinner runs two hours when no end is given.
	assert.Contains(t, string(data), "DTEND:20240501T210000Z")
}

func TestCalendarRejectsNil(t *testing.T) {
	_, err := Calendar(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
