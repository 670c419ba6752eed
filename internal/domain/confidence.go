package domain

// Confidence grades a heuristic result. Low confidence is never an error;
// it is metadata the caller may surface for review.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)
