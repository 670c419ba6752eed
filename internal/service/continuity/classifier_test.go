package continuity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tripweaver/internal/domain"
	"tripweaver/internal/service/locmatch"
)

func day(d, hour, min int) time.Time {
	return time.Date(2026, time.April, d, hour, min, 0, 0, time.UTC)
}

func inCity(name, city string) *domain.Location {
	return &domain.Location{Name: name, Address: &domain.Address{City: city}}
}

func TestOvernightGap(t *testing.T) {
	c := NewClassifier(locmatch.NewMatcher())

	testCases := []struct {
		name  string
		end   time.Time
		start time.Time
		want  bool
	}{
		{"evening to next morning", day(1, 21, 0), day(2, 12, 0), true},
		{"evening to next early afternoon", day(1, 19, 0), day(2, 13, 59), true},
		{"afternoon end is not overnight", day(1, 17, 0), day(2, 12, 0), false},
		{"late next-day start is not overnight", day(1, 21, 0), day(2, 15, 0), false},
		{"same day long rest block", day(1, 8, 0), day(1, 17, 0), true},
		{"same day exactly eight hours", day(1, 8, 0), day(1, 16, 0), false},
		{"same day short gap", day(1, 9, 0), day(1, 12, 0), false},
		{"start not after end", day(2, 12, 0), day(1, 21, 0), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.OvernightGap(tc.end, tc.start))
		})
	}
}

func TestOvernightGapCustomHours(t *testing.T) {
	c := NewClassifier(locmatch.NewMatcher(), WithOvernightHours(20, 10), WithOvernightSameDayGap(6*time.Hour))

	assert.False(t, c.OvernightGap(day(1, 19, 0), day(2, 9, 0)), "end before custom evening hour")
	assert.True(t, c.OvernightGap(day(1, 20, 30), day(2, 9, 0)))
	assert.True(t, c.OvernightGap(day(1, 8, 0), day(1, 15, 0)), "seven hours beats the custom rest block")
}

func TestClassify(t *testing.T) {
	c := NewClassifier(locmatch.NewMatcher())

	lima := inCity("Museo Larco", "Lima")
	limaAcross := inCity("Parque Kennedy", "Lima")
	cusco := inCity("Plaza de Armas del Cusco", "Cusco")

	testCases := []struct {
		name string
		in   ClassifyInput
		want domain.GapClassification
	}{
		{
			name: "no window",
			in:   ClassifyInput{From: lima, To: cusco, Window: 0},
			want: domain.GapNone,
		},
		{
			name: "same place",
			in:   ClassifyInput{From: lima, To: inCity("Museo Larco", "Lima"), Window: time.Hour},
			want: domain.GapNone,
		},
		{
			name: "overnight in the same city is skipped",
			in:   ClassifyInput{From: lima, To: limaAcross, Window: 15 * time.Hour, Overnight: true},
			want: domain.GapSkipOvernight,
		},
		{
			name: "overnight with unknown cities is skipped",
			in: ClassifyInput{
				From:      &domain.Location{Name: "Restaurant Maido"},
				To:        &domain.Location{Name: "Morning yoga studio"},
				Window:    14 * time.Hour,
				Overnight: true,
			},
			want: domain.GapSkipOvernight,
		},
		{
			name: "overnight next to an airport segment is still a transfer",
			in:   ClassifyInput{From: lima, To: limaAcross, Window: 15 * time.Hour, Overnight: true, AirportAdjacent: true},
			want: domain.GapAirportTransfer,
		},
		{
			name: "overnight hotel to hotel is a real move",
			in:   ClassifyInput{From: lima, To: limaAcross, Window: 15 * time.Hour, Overnight: true, HotelToHotel: true},
			want: domain.GapLocalTransfer,
		},
		{
			name: "overnight between different cities is a missing leg",
			in:   ClassifyInput{From: lima, To: cusco, Window: 15 * time.Hour, Overnight: true},
			want: domain.GapTravelDay,
		},
		{
			name: "airport adjacency",
			in:   ClassifyInput{From: lima, To: limaAcross, Window: 3 * time.Hour, AirportAdjacent: true},
			want: domain.GapAirportTransfer,
		},
		{
			name: "same city short gap",
			in:   ClassifyInput{From: lima, To: limaAcross, Window: 3 * time.Hour},
			want: domain.GapLocalTransfer,
		},
		{
			name: "unknown cities short gap stays local",
			in: ClassifyInput{
				From:   &domain.Location{Name: "Restaurant Maido"},
				To:     &domain.Location{Name: "Parque Kennedy"},
				Window: 2 * time.Hour,
			},
			want: domain.GapLocalTransfer,
		},
		{
			name: "different cities",
			in:   ClassifyInput{From: lima, To: cusco, Window: 9 * time.Hour},
			want: domain.GapTravelDay,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Classify(tc.in))
		})
	}
}

func TestAirportSegment(t *testing.T) {
	testCases := []struct {
		name string
		seg  *domain.Segment
		want bool
	}{
		{
			name: "flight",
			seg:  &domain.Segment{Type: domain.SegmentFlight},
			want: true,
		},
		{
			name: "transfer to an airport",
			seg: &domain.Segment{
				Type:            domain.SegmentTransfer,
				PickupLocation:  &domain.Location{Name: "Hotel L'Esplanade"},
				DropoffLocation: &domain.Location{Name: "Jorge Chavez", Code: "LIM"},
			},
			want: true,
		},
		{
			name: "transfer with airport in the name",
			seg: &domain.Segment{
				Type:           domain.SegmentTransfer,
				PickupLocation: &domain.Location{Name: "Lima Airport arrivals"},
			},
			want: true,
		},
		{
			name: "city taxi",
			seg: &domain.Segment{
				Type:            domain.SegmentTransfer,
				PickupLocation:  &domain.Location{Name: "Hotel L'Esplanade"},
				DropoffLocation: &domain.Location{Name: "Museo Larco"},
			},
			want: false,
		},
		{
			name: "activity",
			seg:  &domain.Segment{Type: domain.SegmentActivity, Location: &domain.Location{Name: "Lima Airport tour"}},
			want: false,
		},
		{
			name: "nil",
			seg:  nil,
			want: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AirportSegment(tc.seg))
		})
	}
}
