package core

import "time"

type Connectivity string

const (
	ConnectivityOK      Connectivity = "ok"
	ConnectivityFailed  Connectivity = "failed"
	ConnectivitySkipped Connectivity = "skipped"
)

// Score is a 0-100 value. Valid is false when the scope had no scorable
// checks, which renders as "n/a" rather than 0.
type Score struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

func NewScore(v float64) Score { return Score{Value: v, Valid: true} }

type Verdict string

const (
	VerdictHealthy     Verdict = "HEALTHY"
	VerdictDegraded    Verdict = "DEGRADED"
	VerdictUnhealthy   Verdict = "UNHEALTHY"
	VerdictUnreachable Verdict = "UNREACHABLE"
)

type TargetReport struct {
	TargetID     string             `json:"target_id"`
	Connectivity Connectivity       `json:"connectivity"`
	ConnectError string             `json:"connect_error,omitempty"`
	Outcomes     []CheckOutcome     `json:"outcomes"`
	Categories   map[Category]Score `json:"categories"`
	Score        Score              `json:"score"`
	Verdict      Verdict            `json:"verdict"`
	Passed       int                `json:"passed"`
	Failed       int                `json:"failed"`
	Errors       int                `json:"errors"`
	Skipped      int                `json:"skipped"`
}

type RunReport struct {
	ID          string         `json:"id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Targets     []TargetReport `json:"targets"`
	Score       Score          `json:"score"`
	Partial     bool           `json:"partial"`
}

// ConnectivityFailures counts targets that could not be reached at all.
func (r *RunReport) ConnectivityFailures() int {
	n := 0
	for _, t := range r.Targets {
		if t.Connectivity == ConnectivityFailed {
			n++
		}
	}
	return n
}

// CheckFailures counts logical FAIL outcomes across reachable targets.
// Unreachable targets are infrastructure failures, not rule failures, and are
// excluded from this tally.
func (r *RunReport) CheckFailures() int {
	n := 0
	for _, t := range r.Targets {
		if t.Connectivity != ConnectivityOK {
			continue
		}
		n += t.Failed
	}
	return n
}
