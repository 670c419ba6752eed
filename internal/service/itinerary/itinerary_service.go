package itinerary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tripweaver/internal/domain"
	"tripweaver/internal/export"
	"tripweaver/internal/kafka"
	"tripweaver/internal/service/continuity"
	"tripweaver/internal/service/depgraph"
	"tripweaver/internal/service/gapfill"
)

type ItineraryUseCase interface {
	DetectGaps(ctx context.Context, it *domain.Itinerary) ([]domain.Gap, error)
	FillGaps(ctx context.Context, it *domain.Itinerary) (*FillReport, error)
	Validate(ctx context.Context, it *domain.Itinerary) (*ValidationReport, error)
	ShiftSegment(ctx context.Context, it *domain.Itinerary, segmentID string, delta time.Duration) (*ShiftReport, error)
	Export(ctx context.Context, it *domain.Itinerary) ([]byte, error)
}

// Locks serializes fill runs per itinerary across replicas. The engine
// itself is pure; the lock protects the caller's read-compute-replace.
type Locks interface {
	AcquireFillLock(ctx context.Context, itineraryID string, ttl time.Duration) (bool, error)
	ReleaseFillLock(ctx context.Context, itineraryID string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// ErrFillInProgress reports that another replica is currently filling the
// same itinerary.
var ErrFillInProgress = errors.New("fill already in progress")

// FillReport is the consistent snapshot a fill run returns: the merged
// chronological collection plus everything a caller needs for review.
type FillReport struct {
	ItineraryID string              `json:"itineraryId"`
	Segments    []domain.Segment    `json:"segments"`
	Filled      []domain.Segment    `json:"filled"`
	Warnings    []domain.Warning    `json:"warnings,omitempty"`
	Conflicts   []depgraph.Conflict `json:"conflicts,omitempty"`
}

// ValidationReport summarizes structural health: hard problems, exclusive
// overlaps and a dependency-respecting order when one exists.
type ValidationReport struct {
	Valid     bool                `json:"valid"`
	Problems  []string            `json:"problems,omitempty"`
	Conflicts []depgraph.Conflict `json:"conflicts,omitempty"`
	Order     []string            `json:"order,omitempty"`
}

// ShiftReport lists the segments a cascading shift moved, with the full
// collection re-sorted.
type ShiftReport struct {
	ItineraryID string           `json:"itineraryId"`
	Moved       []string         `json:"moved"`
	Segments    []domain.Segment `json:"segments"`
}

type ItineraryServiceOption func(*ItineraryService)

func WithLocks(locks Locks, ttl time.Duration) ItineraryServiceOption {
	return func(s *ItineraryService) {
		s.locks = locks
		s.lockTTL = ttl
	}
}

func WithProducer(producer Producer, topic string) ItineraryServiceOption {
	return func(s *ItineraryService) {
		s.producer = producer
		s.itineraryTopic = topic
	}
}

func WithNotificationsTopic(topic string) ItineraryServiceOption {
	return func(s *ItineraryService) {
		s.notificationsTopic = topic
	}
}

func WithGraphOptions(opts ...depgraph.Option) ItineraryServiceOption {
	return func(s *ItineraryService) {
		s.graphOpts = opts
	}
}

func WithLogger(logger zerolog.Logger) ItineraryServiceOption {
	return func(s *ItineraryService) {
		s.log = logger
	}
}

// ItineraryService runs the continuity engine over itinerary snapshots.
// It holds no state of its own: every method takes a snapshot and returns
// a new collection, leaving persistence to the caller.
type ItineraryService struct {
	analyzer *continuity.Analyzer
	filler   *gapfill.Filler

	locks    Locks
	producer Producer

	itineraryTopic     string
	notificationsTopic string
	lockTTL            time.Duration
	graphOpts          []depgraph.Option
	log                zerolog.Logger
}

func NewItineraryService(analyzer *continuity.Analyzer, filler *gapfill.Filler, opts ...ItineraryServiceOption) *ItineraryService {
	service := &ItineraryService{
		analyzer: analyzer,
		filler:   filler,
		lockTTL:  30 * time.Second,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// DetectGaps returns the unresolved gaps for a review-only caller. The
// snapshot is not modified.
func (s *ItineraryService) DetectGaps(ctx context.Context, it *domain.Itinerary) ([]domain.Gap, error) {
	if err := it.Validate(); err != nil {
		return nil, err
	}
	return s.analyzer.DetectGaps(it.Segments), nil
}

// FillGaps resolves every actionable gap and returns the merged snapshot
// together with the inserted segments, warnings and remaining conflicts.
func (s *ItineraryService) FillGaps(ctx context.Context, it *domain.Itinerary) (*FillReport, error) {
	if err := it.Validate(); err != nil {
		return nil, err
	}

	if s.locks != nil {
		ok, err := s.locks.AcquireFillLock(ctx, it.ID, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire fill lock: %w", err)
		}
		if !ok {
			return nil, ErrFillInProgress
		}
		defer func() {
			if err := s.locks.ReleaseFillLock(ctx, it.ID); err != nil {
				s.log.Warn().Err(err).Str("itinerary_id", it.ID).Msg("release fill lock")
			}
		}()
	}

	res, err := s.filler.Fill(ctx, it.Segments)
	if err != nil {
		return nil, err
	}

	graph, err := depgraph.New(res.Segments, s.graphOpts...)
	if err != nil {
		return nil, err
	}
	if _, err := graph.TopologicalOrder(); err != nil {
		return nil, err
	}

	report := &FillReport{
		ItineraryID: it.ID,
		Segments:    res.Segments,
		Filled:      res.Filled,
		Warnings:    res.Warnings,
		Conflicts:   graph.DetectConflicts(),
	}
	s.publishFilled(ctx, it, report)
	return report, nil
}

// Validate reports structural problems without changing anything: input
// validation failures, dependency cycles and exclusive-overlap conflicts.
func (s *ItineraryService) Validate(ctx context.Context, it *domain.Itinerary) (*ValidationReport, error) {
	report := &ValidationReport{}

	if err := it.Validate(); err != nil {
		report.Problems = append(report.Problems, err.Error())
		return report, nil
	}

	graph, err := depgraph.New(it.Segments, s.graphOpts...)
	if err != nil {
		report.Problems = append(report.Problems, err.Error())
		return report, nil
	}

	order, err := graph.TopologicalOrder()
	if err != nil {
		report.Problems = append(report.Problems, err.Error())
	} else {
		report.Order = make([]string, 0, len(order))
		for _, seg := range order {
			report.Order = append(report.Order, seg.ID)
		}
	}

	report.Conflicts = graph.DetectConflicts()
	report.Valid = len(report.Problems) == 0 && len(report.Conflicts) == 0
	return report, nil
}

// ShiftSegment moves a segment and its dependents by delta, honoring the
// itinerary date range. A shift that would leave the range aborts without
// touching anything.
func (s *ItineraryService) ShiftSegment(ctx context.Context, it *domain.Itinerary, segmentID string, delta time.Duration) (*ShiftReport, error) {
	if err := it.Validate(); err != nil {
		return nil, err
	}

	graph, err := depgraph.New(it.Segments, s.graphOpts...)
	if err != nil {
		return nil, err
	}

	moved, err := graph.ShiftSegment(segmentID, delta, depgraph.DateBounds{Start: it.StartDate, End: it.EndDate})
	if err != nil {
		return nil, err
	}

	report := &ShiftReport{
		ItineraryID: it.ID,
		Moved:       moved,
		Segments:    continuity.SortedByStart(graph.Segments()),
	}
	s.publishShifted(ctx, it, report)
	return report, nil
}

// Export renders the itinerary as an iCalendar document.
func (s *ItineraryService) Export(ctx context.Context, it *domain.Itinerary) ([]byte, error) {
	if err := it.Validate(); err != nil {
		return nil, err
	}
	return export.Calendar(it)
}

func (s *ItineraryService) publishFilled(ctx context.Context, it *domain.Itinerary, report *FillReport) {
	if s.producer == nil || s.itineraryTopic == "" {
		return
	}
	filledIDs := make([]string, 0, len(report.Filled))
	for _, seg := range report.Filled {
		filledIDs = append(filledIDs, seg.ID)
	}
	event := kafka.FilledEvent{
		Type:        kafka.EventTypeFilled,
		ItineraryID: it.ID,
		Segments:    report.Segments,
		FilledIDs:   filledIDs,
		Warnings:    report.Warnings,
		OccurredAt:  time.Now().UTC(),
	}
	s.publish(ctx, it.ID, event)
}

func (s *ItineraryService) publishShifted(ctx context.Context, it *domain.Itinerary, report *ShiftReport) {
	if s.producer == nil || s.itineraryTopic == "" {
		return
	}
	event := kafka.ShiftedEvent{
		Type:        kafka.EventTypeShifted,
		ItineraryID: it.ID,
		MovedIDs:    report.Moved,
		Segments:    report.Segments,
		OccurredAt:  time.Now().UTC(),
	}
	s.publish(ctx, it.ID, event)
}

func (s *ItineraryService) publish(ctx context.Context, key string, event interface{}) {
	if err := s.producer.Publish(ctx, s.itineraryTopic, key, event); err != nil {
		s.log.Warn().Err(err).Str("itinerary_id", key).Msg("publish itinerary event")
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			s.log.Warn().Err(err).Str("itinerary_id", key).Msg("publish notification event")
		}
	}
}

var _ ItineraryUseCase = (*ItineraryService)(nil)
