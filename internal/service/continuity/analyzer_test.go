package continuity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripweaver/internal/domain"
	"tripweaver/internal/service/inference"
	"tripweaver/internal/service/locmatch"
)

func newAnalyzer() *Analyzer {
	matcher := locmatch.NewMatcher()
	return NewAnalyzer(matcher, inference.NewInferencer(), NewClassifier(matcher))
}

func activity(id, name, city string, start, end time.Time) domain.Segment {
	return domain.Segment{
		ID:        id,
		Type:      domain.SegmentActivity,
		Name:      name,
		StartTime: start,
		EndTime:   end,
		Location:  inCity(name, city),
	}
}

func TestDetectGapsOvernightIsSilent(t *testing.T) {
	a := newAnalyzer()

	segments := []domain.Segment{
		activity("dinner", "Dinner at Maido", "Lima", day(1, 19, 0), day(1, 21, 0)),
		activity("lunch", "Lunch at Isolina", "Lima", day(2, 12, 0), day(2, 13, 30)),
	}

	assert.Empty(t, a.DetectGaps(segments))
}

func TestDetectGapsOvernightNextToFlight(t *testing.T) {
	a := newAnalyzer()

	segments := []domain.Segment{
		activity("dinner", "Dinner at Maido", "Lima", day(1, 19, 0), day(1, 21, 0)),
		{
			ID:          "flight",
			Type:        domain.SegmentFlight,
			Name:        "LA2043 to Cusco",
			StartTime:   day(2, 12, 0),
			EndTime:     day(2, 13, 25),
			Origin:      &domain.Location{Name: "Jorge Chavez International", Code: "LIM"},
			Destination: &domain.Location{Name: "Alejandro Velasco Astete", Code: "CUZ"},
		},
	}

	gaps := a.DetectGaps(segments)
	require.Len(t, gaps, 1, "the same overnight delta next to a flight is a real transfer")
	assert.Equal(t, domain.GapAirportTransfer, gaps[0].Classification)
	assert.Equal(t, "dinner", gaps[0].BeforeSegmentID)
	assert.Equal(t, "flight", gaps[0].AfterSegmentID)
}

func TestDetectGapsSameDayClassifications(t *testing.T) {
	a := newAnalyzer()

	t.Run("nine hours between cities is a travel day", func(t *testing.T) {
		segments := []domain.Segment{
			activity("morning", "Surf lesson", "Lima", day(1, 7, 0), day(1, 8, 0)),
			activity("evening", "Planetarium show", "Cusco", day(1, 17, 0), day(1, 18, 30)),
		}
		gaps := a.DetectGaps(segments)
		require.Len(t, gaps, 1)
		assert.Equal(t, domain.GapTravelDay, gaps[0].Classification)
		assert.Equal(t, 9*60, gaps[0].AvailableWindowMinutes)
	})

	t.Run("three hours in one city is a local transfer", func(t *testing.T) {
		segments := []domain.Segment{
			activity("morning", "Surf lesson", "Lima", day(1, 9, 0), day(1, 10, 0)),
			activity("midday", "Ceviche tasting", "Lima", day(1, 13, 0), day(1, 14, 0)),
		}
		gaps := a.DetectGaps(segments)
		require.Len(t, gaps, 1)
		assert.Equal(t, domain.GapLocalTransfer, gaps[0].Classification)
		assert.Equal(t, 3*60, gaps[0].AvailableWindowMinutes)
	})
}

func TestDetectGapsMatchingBoundariesProduceNothing(t *testing.T) {
	a := newAnalyzer()

	hotel := inCity("Hotel L'Esplanade", "Lima")
	segments := []domain.Segment{
		{
			ID: "checkin", Type: domain.SegmentHotel, Name: "Hotel L'Esplanade",
			StartTime: day(1, 15, 0), EndTime: day(2, 11, 0), Location: hotel,
		},
		{
			ID: "breakfast", Type: domain.SegmentActivity, Name: "Breakfast at L'Esplanade rooftop",
			StartTime: day(2, 8, 0), EndTime: day(2, 9, 0),
			Location: inCity("L'Esplanade rooftop", "Lima"),
		},
	}

	assert.Empty(t, a.DetectGaps(segments), "shared significant word means same place")
}

func TestDetectGapsUsesEffectiveEnd(t *testing.T) {
	a := newAnalyzer()

	// Dinner carries no end time; its standard 120 minutes make the real
	// window 19:00+2h -> 22:30, i.e. 90 minutes.
	segments := []domain.Segment{
		{
			ID: "dinner", Type: domain.SegmentActivity, Name: "Dinner at Maido",
			StartTime: day(1, 19, 0),
			Location:  inCity("Restaurant Maido", "Lima"),
		},
		activity("show", "Circo de los Hermanos", "Lima", day(1, 22, 30), day(1, 23, 30)),
	}

	gaps := a.DetectGaps(segments)
	require.Len(t, gaps, 1)
	assert.Equal(t, 90, gaps[0].AvailableWindowMinutes)
	assert.True(t, gaps[0].Inferred, "window was measured against an inferred end")
}

func TestDetectGapsSkipsMissingLocations(t *testing.T) {
	a := newAnalyzer()

	segments := []domain.Segment{
		{ID: "a", Type: domain.SegmentActivity, Name: "Packing", StartTime: day(1, 9, 0), EndTime: day(1, 10, 0)},
		activity("b", "Ceviche tasting", "Lima", day(1, 13, 0), day(1, 14, 0)),
	}

	assert.Empty(t, a.DetectGaps(segments))
}

func TestDetectGapsOverlappingSegments(t *testing.T) {
	a := newAnalyzer()

	segments := []domain.Segment{
		activity("a", "Surf lesson", "Lima", day(1, 9, 0), day(1, 12, 0)),
		activity("b", "Ceviche tasting", "Lima", day(1, 11, 0), day(1, 13, 0)),
	}

	assert.Empty(t, a.DetectGaps(segments), "a non-positive window is never a gap")
}

func TestSortedByStart(t *testing.T) {
	segments := []domain.Segment{
		activity("late", "Planetarium show", "Lima", day(1, 20, 0), day(1, 21, 0)),
		activity("tie-first", "Surf lesson", "Lima", day(1, 9, 0), day(1, 10, 0)),
		activity("tie-second", "Ceviche tasting", "Lima", day(1, 9, 0), day(1, 10, 30)),
		activity("early", "Sunrise hike", "Lima", day(1, 5, 0), day(1, 7, 0)),
	}

	sorted := SortedByStart(segments)

	ids := make([]string, len(sorted))
	for i, s := range sorted {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"early", "tie-first", "tie-second", "late"}, ids)

	assert.Equal(t, "late", segments[0].ID, "input order is untouched")
}
