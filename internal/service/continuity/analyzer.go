package continuity

import (
	"sort"

	"tripweaver/internal/domain"
	"tripweaver/internal/service/inference"
	"tripweaver/internal/service/locmatch"
)

// Analyzer walks a chronologically sorted segment sequence and produces
// the list of unresolved location gaps. It never mutates its input.
type Analyzer struct {
	matcher    *locmatch.Matcher
	inferencer *inference.Inferencer
	classifier *Classifier
}

func NewAnalyzer(matcher *locmatch.Matcher, inferencer *inference.Inferencer, classifier *Classifier) *Analyzer {
	return &Analyzer{
		matcher:    matcher,
		inferencer: inferencer,
		classifier: classifier,
	}
}

// SortedByStart returns a copy sorted by start time. The sort is stable:
// segments sharing a start instant keep their original relative order, so
// the walk is reproducible for identical input.
func SortedByStart(segments []domain.Segment) []domain.Segment {
	sorted := make([]domain.Segment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})
	return sorted
}

// DetectGaps finds every actionable discontinuity between adjacent
// segments. Pairs whose boundary locations are missing or already match
// produce nothing; classifications of NONE and SKIP_OVERNIGHT are
// swallowed here because no connecting segment is wanted for them.
func (a *Analyzer) DetectGaps(segments []domain.Segment) []domain.Gap {
	sorted := SortedByStart(segments)

	var gaps []domain.Gap
	for i := 0; i+1 < len(sorted); i++ {
		prev, next := &sorted[i], &sorted[i+1]

		from := prev.EndLocation()
		to := next.StartLocation()
		if from == nil || to == nil {
			continue
		}
		if a.matcher.SameLocation(from, to) {
			continue
		}

		effEnd, inferred := a.inferencer.EffectiveEnd(prev)
		window := next.StartTime.Sub(effEnd)

		classification := a.classifier.Classify(ClassifyInput{
			From:            from,
			To:              to,
			Window:          window,
			Overnight:       a.classifier.OvernightGap(effEnd, next.StartTime),
			AirportAdjacent: AirportSegment(prev) || AirportSegment(next),
			HotelToHotel:    prev.Type == domain.SegmentHotel && next.Type == domain.SegmentHotel,
		})
		if !classification.Actionable() {
			continue
		}

		gaps = append(gaps, domain.Gap{
			BeforeSegmentID:        prev.ID,
			AfterSegmentID:         next.ID,
			FromLocation:           from,
			ToLocation:             to,
			AvailableWindowMinutes: int(window.Minutes()),
			Classification:         classification,
			Inferred:               inferred,
		})
	}
	return gaps
}
