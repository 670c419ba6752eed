package domain

type GapClassification string

const (
	GapNone            GapClassification = "NONE"
	GapSkipOvernight   GapClassification = "SKIP_OVERNIGHT"
	GapLocalTransfer   GapClassification = "LOCAL_TRANSFER"
	GapAirportTransfer GapClassification = "AIRPORT_TRANSFER"
	GapTravelDay       GapClassification = "TRAVEL_DAY"
)

// Actionable reports whether the classification calls for a connecting
// segment. NONE means no discontinuity, SKIP_OVERNIGHT means the traveler
// is presumed at lodging overnight and nothing should be synthesized.
func (c GapClassification) Actionable() bool {
	switch c {
	case GapLocalTransfer, GapAirportTransfer, GapTravelDay:
		return true
	}
	return false
}

// Gap is a location discontinuity between two chronologically adjacent
// segments. It is produced transiently by continuity analysis and never
// persisted on its own. Inferred marks gaps whose window was measured
// against an inferred effective end rather than an explicit one.
type Gap struct {
	BeforeSegmentID        string            `json:"beforeSegmentId" yaml:"beforeSegmentId"`
	AfterSegmentID         string            `json:"afterSegmentId" yaml:"afterSegmentId"`
	FromLocation           *Location         `json:"fromLocation" yaml:"fromLocation"`
	ToLocation             *Location         `json:"toLocation" yaml:"toLocation"`
	AvailableWindowMinutes int               `json:"availableWindowMinutes" yaml:"availableWindowMinutes"`
	Classification         GapClassification `json:"classification" yaml:"classification"`
	Inferred               bool              `json:"inferred" yaml:"inferred"`
}
