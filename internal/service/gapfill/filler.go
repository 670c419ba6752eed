package gapfill

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tripweaver/internal/domain"
	"tripweaver/internal/service/continuity"
	"tripweaver/internal/service/inference"
	"tripweaver/internal/service/locmatch"
)

// EnrichmentProvider supplies a realistic connecting segment for a gap,
// typically backed by an external search API. A nil segment with a nil
// error means the provider has nothing to offer.
type EnrichmentProvider interface {
	Search(ctx context.Context, gap domain.Gap) (*domain.Segment, error)
}

const (
	// DefaultLocalBuffer pads a placeholder transfer away from an ordinary
	// neighbor segment.
	DefaultLocalBuffer = 5 * time.Minute

	// DefaultAirportBuffer pads against an airport-side neighbor, covering
	// egress and check-in overhead.
	DefaultAirportBuffer = 20 * time.Minute

	// DefaultWalkingWindow is the gap width under which two stationary
	// neighbors are assumed to be within walking distance.
	DefaultWalkingWindow = 15 * time.Minute

	// DefaultTightThreshold is the transfer duration under which the
	// schedule is flagged for review.
	DefaultTightThreshold = 10 * time.Minute

	// DefaultEnrichTimeout bounds a single provider call.
	DefaultEnrichTimeout = 3 * time.Second
)

type FillerOption func(*Filler)

func WithProvider(p EnrichmentProvider) FillerOption {
	return func(f *Filler) { f.provider = p }
}

func WithBuffers(local, airport time.Duration) FillerOption {
	return func(f *Filler) {
		f.localBuffer = local
		f.airportBuffer = airport
	}
}

func WithWalkingWindow(d time.Duration) FillerOption {
	return func(f *Filler) { f.walkingWindow = d }
}

func WithTightThreshold(d time.Duration) FillerOption {
	return func(f *Filler) { f.tightThreshold = d }
}

func WithEnrichTimeout(d time.Duration) FillerOption {
	return func(f *Filler) { f.enrichTimeout = d }
}

// Result is the outcome of one fill pass.
type Result struct {
	// Segments is the merged collection in chronological order.
	Segments []domain.Segment
	// Filled lists only the inserted segments.
	Filled []domain.Segment
	// Warnings carries non-fatal findings such as tight schedules.
	Warnings []domain.Warning
}

// Filler synthesizes connecting transfers for actionable gaps. It never
// mutates its input; callers replace their collection with Result.Segments.
type Filler struct {
	matcher    *locmatch.Matcher
	inferencer *inference.Inferencer
	analyzer   *continuity.Analyzer
	provider   EnrichmentProvider

	localBuffer    time.Duration
	airportBuffer  time.Duration
	walkingWindow  time.Duration
	tightThreshold time.Duration
	enrichTimeout  time.Duration
}

func NewFiller(matcher *locmatch.Matcher, inferencer *inference.Inferencer, analyzer *continuity.Analyzer, opts ...FillerOption) *Filler {
	f := &Filler{
		matcher:        matcher,
		inferencer:     inferencer,
		analyzer:       analyzer,
		localBuffer:    DefaultLocalBuffer,
		airportBuffer:  DefaultAirportBuffer,
		walkingWindow:  DefaultWalkingWindow,
		tightThreshold: DefaultTightThreshold,
		enrichTimeout:  DefaultEnrichTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fill detects and fills gaps one at a time, strictly in chronological
// order, re-running detection after every insertion because a fill changes
// the adjacency its neighbors are evaluated under. Boundaries that decline
// a fill (duplicate cover, walking distance) are remembered and not
// retried.
func (f *Filler) Fill(ctx context.Context, segments []domain.Segment) (*Result, error) {
	working := continuity.SortedByStart(segments)
	declined := make(map[string]struct{})

	res := &Result{}
	for {
		gap := f.nextGap(working, declined)
		if gap == nil {
			break
		}
		declined[boundaryKey(gap)] = struct{}{}

		seg, ok, err := f.fillOne(ctx, working, gap)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		working = continuity.SortedByStart(append(working, *seg))
		res.Filled = append(res.Filled, *seg)
		if seg.TightSchedule {
			res.Warnings = append(res.Warnings, domain.Warning{
				Code:      domain.WarnTightSchedule,
				SegmentID: seg.ID,
				Message:   fmt.Sprintf("only %d minutes to get from %q to %q", int(seg.Duration().Minutes()), seg.PickupLocation.Name, seg.DropoffLocation.Name),
			})
		}
	}

	res.Segments = working
	return res, nil
}

func (f *Filler) nextGap(working []domain.Segment, declined map[string]struct{}) *domain.Gap {
	gaps := f.analyzer.DetectGaps(working)
	for i := range gaps {
		if _, done := declined[boundaryKey(&gaps[i])]; !done {
			return &gaps[i]
		}
	}
	return nil
}

func (f *Filler) fillOne(ctx context.Context, working []domain.Segment, gap *domain.Gap) (*domain.Segment, bool, error) {
	prev := segmentByID(working, gap.BeforeSegmentID)
	next := segmentByID(working, gap.AfterSegmentID)
	if prev == nil || next == nil {
		return nil, false, fmt.Errorf("%w: gap references unknown segment", domain.ErrValidation)
	}

	if f.coveredByExistingTransfer(working, gap, prev, next) {
		return nil, false, nil
	}
	if walkable(prev, next) && time.Duration(gap.AvailableWindowMinutes)*time.Minute < f.walkingWindow {
		return nil, false, nil
	}

	prevEnd, _ := f.inferencer.EffectiveEnd(prev)
	start, end := f.schedule(gap, prev, next, prevEnd)

	seg := f.enrich(ctx, gap, prevEnd, next.StartTime, start, end)
	if seg == nil {
		seg = f.placeholder(gap, start, end)
	}

	f.stamp(seg, gap, prev)
	return seg, true, nil
}

// coveredByExistingTransfer is the de-duplication rule: an existing
// transfer that already rides the gap's route anywhere between the pair's
// start instants means the boundary is covered and nothing new is
// synthesized. Same-route transfers on other days stay untouched.
func (f *Filler) coveredByExistingTransfer(working []domain.Segment, gap *domain.Gap, prev, next *domain.Segment) bool {
	for i := range working {
		t := &working[i]
		if t.Type != domain.SegmentTransfer || t.ID == prev.ID || t.ID == next.ID {
			continue
		}
		end := t.EndTime
		if end.IsZero() {
			end, _ = f.inferencer.EffectiveEnd(t)
		}
		if !t.StartTime.Before(next.StartTime) || !end.After(prev.StartTime) {
			continue
		}
		if f.matcher.SameLocation(t.PickupLocation, gap.FromLocation) && f.matcher.SameLocation(t.DropoffLocation, gap.ToLocation) {
			return true
		}
	}
	return false
}

// enrich asks the provider for a realistic segment, bounded by the
// configured timeout. Any failure or timeout falls back to nil so the
// caller synthesizes a placeholder; enrichment trouble is never an error.
func (f *Filler) enrich(ctx context.Context, gap *domain.Gap, prevEnd, nextStart, fallbackStart, fallbackEnd time.Time) *domain.Segment {
	if f.provider == nil {
		return nil
	}
	cctx, cancel := context.WithTimeout(ctx, f.enrichTimeout)
	defer cancel()

	found, err := f.provider.Search(cctx, *gap)
	if err != nil || found == nil {
		return nil
	}

	seg := *found
	// The gap's endpoints are authoritative; a provider that disagrees on
	// them would break idempotence of the fill pass.
	if !f.matcher.SameLocation(seg.PickupLocation, gap.FromLocation) {
		seg.PickupLocation = gap.FromLocation
	}
	if !f.matcher.SameLocation(seg.DropoffLocation, gap.ToLocation) {
		seg.DropoffLocation = gap.ToLocation
	}
	if seg.StartTime.Before(prevEnd) || seg.EndTime.After(nextStart) || !seg.EndTime.After(seg.StartTime) {
		quoted := seg.EndTime.Sub(seg.StartTime)
		seg.StartTime, seg.EndTime = fallbackStart, fallbackEnd
		// A quote that knows the leg's duration but not the window is
		// anchored at the window start.
		if quoted > 0 && fallbackStart.Add(quoted).Before(fallbackEnd) {
			seg.EndTime = fallbackStart.Add(quoted)
		}
	}
	seg.InferredReason = fmt.Sprintf("suggested by enrichment for the gap between %q and %q", gap.FromLocation.Name, gap.ToLocation.Name)
	return &seg
}

func (f *Filler) placeholder(gap *domain.Gap, start, end time.Time) *domain.Segment {
	return &domain.Segment{
		Type:            domain.SegmentTransfer,
		Name:            fmt.Sprintf("Transfer from %s to %s", gap.FromLocation.Name, gap.ToLocation.Name),
		StartTime:       start,
		EndTime:         end,
		PickupLocation:  gap.FromLocation,
		DropoffLocation: gap.ToLocation,
		TransferType:    transferTypeFor(gap.Classification),
		InferredReason: fmt.Sprintf("no transportation between %q and %q; placeholder fills a %d minute window",
			gap.FromLocation.Name, gap.ToLocation.Name, gap.AvailableWindowMinutes),
	}
}

// schedule pads the transfer away from its neighbors: a small buffer on an
// ordinary side, a larger one on an airport side (egress, bags, check-in).
// When the buffers do not fit the window the transfer spans the full
// window instead of inverting.
func (f *Filler) schedule(gap *domain.Gap, prev, next *domain.Segment, prevEnd time.Time) (time.Time, time.Time) {
	startBuffer := f.localBuffer
	if locmatch.LooksLikeAirport(gap.FromLocation) || continuity.AirportSegment(prev) {
		startBuffer = f.airportBuffer
	}
	endBuffer := f.localBuffer
	if locmatch.LooksLikeAirport(gap.ToLocation) || continuity.AirportSegment(next) {
		endBuffer = f.airportBuffer
	}

	start := prevEnd.Add(startBuffer)
	end := next.StartTime.Add(-endBuffer)
	if !end.After(start) {
		return prevEnd, next.StartTime
	}
	return start, end
}

// stamp applies the invariants every synthesized segment carries.
func (f *Filler) stamp(seg *domain.Segment, gap *domain.Gap, prev *domain.Segment) {
	seg.Type = domain.SegmentTransfer
	if seg.ID == "" {
		seg.ID = uuid.NewString()
	}
	if seg.Status == "" {
		seg.Status = domain.StatusProposed
	}
	if seg.TransferType == "" {
		seg.TransferType = transferTypeFor(gap.Classification)
	}
	seg.Inferred = true
	seg.DependsOn = []string{prev.ID}
	if seg.Duration() < f.tightThreshold {
		seg.TightSchedule = true
	}
}

func transferTypeFor(c domain.GapClassification) domain.TransferType {
	switch c {
	case domain.GapAirportTransfer:
		return domain.TransferShuttle
	case domain.GapTravelDay:
		return domain.TransferPrivate
	default:
		return domain.TransferTaxi
	}
}

// walkable reports whether both neighbors are stationary venue types a
// traveler strolls between.
func walkable(prev, next *domain.Segment) bool {
	return stationaryVenue(prev.Type) && stationaryVenue(next.Type)
}

func stationaryVenue(t domain.SegmentType) bool {
	return t == domain.SegmentHotel || t == domain.SegmentActivity || t == domain.SegmentMeeting
}

func segmentByID(segments []domain.Segment, id string) *domain.Segment {
	for i := range segments {
		if segments[i].ID == id {
			return &segments[i]
		}
	}
	return nil
}

func boundaryKey(gap *domain.Gap) string {
	return gap.BeforeSegmentID + "|" + gap.AfterSegmentID
}
