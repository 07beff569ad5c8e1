package evaluation

import "time"

// QueryClass mirrors the autocomplete classifier's branches so golden
// queries can be grouped by the source plan they exercise.
type QueryClass string

const (
	ClassZipCandidate QueryClass = "zip_candidate" // e.g., "981", "98101"
	ClassNumeric      QueryClass = "numeric"       // e.g., "1105 Spring"
	ClassAlpha        QueryClass = "alpha"         // e.g., "Seattle", "WA"
)

// ValidClasses returns all valid query class values.
func ValidClasses() []QueryClass {
	return []QueryClass{ClassZipCandidate, ClassNumeric, ClassAlpha}
}

// IsValid checks if the class value is one of the defined constants.
func (c QueryClass) IsValid() bool {
	switch c {
	case ClassZipCandidate, ClassNumeric, ClassAlpha:
		return true
	}
	return false
}

// GoldenQuery represents a labeled test query with expected outcomes.
type GoldenQuery struct {
	ID             string     `json:"id"`
	Query          string     `json:"query"`
	Class          QueryClass `json:"class"`
	ExpectedValues []string   `json:"expected_values"`
	ExpectedFirst  string     `json:"expected_first_kind,omitempty"`
	Difficulty     string     `json:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single query.
type EvalResult struct {
	QueryID         string
	Query           string
	Class           QueryClass
	RecallAt10      float64
	MRRAt10         float64
	ResultCount     int
	RetrievedValues []string
	Violations      []string
	Latency         time.Duration
}

// EvalSummary holds aggregate metrics across all golden queries.
type EvalSummary struct {
	TotalQueries    int
	AvgRecallAt10   float64
	AvgMRRAt10      float64
	AvgLatency      time.Duration
	QueriesWithHits int // queries that returned at least 1 result
	Violations      int
	ByClass         map[QueryClass]*ClassSummary
}

// ClassSummary holds metrics grouped by query class.
type ClassSummary struct {
	Count         int
	AvgRecallAt10 float64
	AvgMRRAt10    float64
}
