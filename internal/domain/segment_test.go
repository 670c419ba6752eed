package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(day, hour, min int) time.Time {
	return time.Date(2026, time.March, day, hour, min, 0, 0, time.UTC)
}

func TestSegmentLocationAccessors(t *testing.T) {
	origin := &Location{Name: "Lima Airport", Code: "LIM"}
	dest := &Location{Name: "Cusco Airport", Code: "CUZ"}
	pickup := &Location{Name: "Hotel Andes"}
	dropoff := &Location{Name: "Plaza de Armas"}
	single := &Location{Name: "Museo Larco"}

	testCases := []struct {
		name      string
		segment   Segment
		wantStart *Location
		wantEnd   *Location
	}{
		{
			name:      "flight uses origin and destination",
			segment:   Segment{Type: SegmentFlight, Origin: origin, Destination: dest},
			wantStart: origin,
			wantEnd:   dest,
		},
		{
			name:      "transfer uses pickup and dropoff",
			segment:   Segment{Type: SegmentTransfer, PickupLocation: pickup, DropoffLocation: dropoff},
			wantStart: pickup,
			wantEnd:   dropoff,
		},
		{
			name:      "activity is stationary",
			segment:   Segment{Type: SegmentActivity, Location: single},
			wantStart: single,
			wantEnd:   single,
		},
		{
			name:      "hotel is stationary",
			segment:   Segment{Type: SegmentHotel, Location: single},
			wantStart: single,
			wantEnd:   single,
		},
		{
			name:      "custom is stationary",
			segment:   Segment{Type: SegmentCustom, Location: single},
			wantStart: single,
			wantEnd:   single,
		},
		{
			name:      "missing fields yield nil",
			segment:   Segment{Type: SegmentFlight},
			wantStart: nil,
			wantEnd:   nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantStart, tc.segment.StartLocation())
			assert.Equal(t, tc.wantEnd, tc.segment.EndLocation())
		})
	}
}

func TestSegmentValidate(t *testing.T) {
	valid := Segment{
		ID:        "seg-1",
		Type:      SegmentActivity,
		Name:      "City tour",
		StartTime: ts(1, 10, 0),
		EndTime:   ts(1, 12, 0),
		Location:  &Location{Name: "Old Town"},
	}
	require.NoError(t, valid.Validate())

	testCases := []struct {
		name   string
		mutate func(s *Segment)
	}{
		{"empty id", func(s *Segment) { s.ID = "" }},
		{"unknown type", func(s *Segment) { s.Type = "CRUISE" }},
		{"zero start", func(s *Segment) { s.StartTime = time.Time{} }},
		{"end before start", func(s *Segment) { s.EndTime = s.StartTime.Add(-time.Hour) }},
		{"location without name", func(s *Segment) { s.Location = &Location{} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := valid
			tc.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestSegmentValidateAllowsOpenEnd(t *testing.T) {
	s := Segment{
		ID:        "seg-open",
		Type:      SegmentActivity,
		StartTime: ts(1, 19, 0),
		Location:  &Location{Name: "Teatro Municipal"},
	}
	require.NoError(t, s.Validate(), "zero end means the duration is inferred later")

	s.EndTime = s.StartTime
	require.NoError(t, s.Validate(), "end equal to start means the duration is inferred later")
}

func TestSegmentOverlaps(t *testing.T) {
	a := Segment{StartTime: ts(1, 10, 0), EndTime: ts(1, 12, 0)}

	testCases := []struct {
		name string
		b    Segment
		want bool
	}{
		{"clear overlap", Segment{StartTime: ts(1, 11, 0), EndTime: ts(1, 13, 0)}, true},
		{"contained", Segment{StartTime: ts(1, 10, 30), EndTime: ts(1, 11, 30)}, true},
		{"touching endpoints", Segment{StartTime: ts(1, 12, 0), EndTime: ts(1, 13, 0)}, false},
		{"disjoint", Segment{StartTime: ts(1, 14, 0), EndTime: ts(1, 15, 0)}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, a.Overlaps(&tc.b))
			assert.Equal(t, tc.want, tc.b.Overlaps(&a))
		})
	}
}

func TestSegmentTypeCategories(t *testing.T) {
	assert.True(t, SegmentFlight.Exclusive())
	assert.True(t, SegmentTransfer.Exclusive())
	assert.False(t, SegmentHotel.Exclusive())

	assert.True(t, SegmentHotel.Background())
	assert.True(t, SegmentMeeting.Background())
	assert.False(t, SegmentActivity.Background())

	assert.True(t, SegmentActivity.SingleLocation())
	assert.True(t, SegmentCustom.SingleLocation())
	assert.False(t, SegmentFlight.SingleLocation())
	assert.False(t, SegmentTransfer.SingleLocation())
}

func TestItineraryValidate(t *testing.T) {
	start := ts(1, 0, 0)
	end := ts(10, 0, 0)

	it := Itinerary{
		ID:        "trip-1",
		StartDate: &start,
		EndDate:   &end,
		Segments: []Segment{
			{ID: "a", Type: SegmentActivity, StartTime: ts(2, 10, 0), EndTime: ts(2, 12, 0), Location: &Location{Name: "Old Town"}},
			{ID: "b", Type: SegmentActivity, StartTime: ts(3, 10, 0), EndTime: ts(3, 12, 0), Location: &Location{Name: "Harbor"}},
		},
	}
	require.NoError(t, it.Validate())

	t.Run("segment outside range", func(t *testing.T) {
		bad := it
		bad.Segments = append([]Segment(nil), it.Segments...)
		bad.Segments[1].StartTime = ts(11, 10, 0)
		bad.Segments[1].EndTime = ts(11, 12, 0)
		err := bad.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("duplicate segment ids", func(t *testing.T) {
		bad := it
		bad.Segments = append([]Segment(nil), it.Segments...)
		bad.Segments[1].ID = "a"
		err := bad.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("no bounds set", func(t *testing.T) {
		unbounded := Itinerary{ID: "trip-2", Segments: it.Segments}
		require.NoError(t, unbounded.Validate())
		assert.False(t, unbounded.HasBounds())
	})
}

func TestGapClassificationActionable(t *testing.T) {
	assert.False(t, GapNone.Actionable())
	assert.False(t, GapSkipOvernight.Actionable())
	assert.True(t, GapLocalTransfer.Actionable())
	assert.True(t, GapAirportTransfer.Actionable())
	assert.True(t, GapTravelDay.Actionable())
}
