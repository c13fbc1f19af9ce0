// Package report turns raw check outcomes into scored reports. Everything in
// here is pure: no I/O, no clock reads, same inputs same output.
package report

import (
	"fmt"
	"time"

	"github.com/dbguardian/dbguardian/internal/checks"
	"github.com/dbguardian/dbguardian/internal/core"
)

// BuildTarget folds one target's outcomes into its report. Outcomes must
// already be in registry order; this function preserves their order verbatim.
//
// Scores are Σ(weight·PASS)/Σ(weight) on a 0-100 scale over non-SKIPPED
// outcomes. ERROR and WARN contribute zero to the numerator but stay in the
// denominator, so they depress the score without being counted as rule
// failures. A scope with no scorable outcomes gets an invalid ("n/a") score.
//
// An outcome referencing a check id the registry does not know violates an
// internal invariant and is reported as an error, not folded into the score.
func BuildTarget(targetID string, connectivity core.Connectivity, connectErr string, outcomes []core.CheckOutcome, reg *checks.Registry) (core.TargetReport, error) {
	tr := core.TargetReport{
		TargetID:     targetID,
		Connectivity: connectivity,
		ConnectError: connectErr,
		Outcomes:     outcomes,
		Categories:   map[core.Category]core.Score{},
	}

	if connectivity != core.ConnectivityOK {
		tr.Score = core.NewScore(0)
		if connectivity == core.ConnectivityFailed {
			tr.Verdict = core.VerdictUnreachable
		}
		return tr, nil
	}

	type tally struct{ earned, possible float64 }
	total := tally{}
	byCategory := map[core.Category]*tally{}

	for _, o := range outcomes {
		c, ok := reg.Get(o.CheckID)
		if !ok {
			return core.TargetReport{}, fmt.Errorf("scoring: outcome for unknown check %q on target %q", o.CheckID, targetID)
		}

		switch o.Status {
		case core.StatusSkipped:
			tr.Skipped++
			continue
		case core.StatusPass:
			tr.Passed++
		case core.StatusFail, core.StatusWarn:
			if o.Status == core.StatusFail {
				tr.Failed++
			}
		case core.StatusError:
			tr.Errors++
		default:
			return core.TargetReport{}, fmt.Errorf("scoring: unknown outcome status %q for check %q", o.Status, o.CheckID)
		}

		w := c.Weight()
		total.possible += w
		ct := byCategory[o.Category]
		if ct == nil {
			ct = &tally{}
			byCategory[o.Category] = ct
		}
		ct.possible += w
		if o.Status == core.StatusPass {
			total.earned += w
			ct.earned += w
		}
	}

	tr.Score = scoreOf(total.earned, total.possible)
	for cat, t := range byCategory {
		tr.Categories[cat] = scoreOf(t.earned, t.possible)
	}
	tr.Verdict = verdictOf(tr)
	return tr, nil
}

func scoreOf(earned, possible float64) core.Score {
	if possible <= 0 {
		return core.Score{}
	}
	return core.NewScore(earned / possible * 100)
}

func verdictOf(tr core.TargetReport) core.Verdict {
	scored := tr.Passed + tr.Failed + tr.Errors
	switch {
	case tr.Failed == 0 && tr.Errors == 0:
		return core.VerdictHealthy
	case tr.Failed+tr.Errors <= scored/2:
		return core.VerdictDegraded
	default:
		return core.VerdictUnhealthy
	}
}

// BuildRun assembles the final report. Target reports keep the inventory order
// of targets. The aggregate score is the weighted mean over reachable targets
// with a valid score; target weight defaults to 1.
func BuildRun(id string, generatedAt time.Time, targets []core.Target, reports []core.TargetReport, partial bool) *core.RunReport {
	weights := make(map[string]float64, len(targets))
	for _, t := range targets {
		w := t.Weight
		if w <= 0 {
			w = 1
		}
		weights[t.ID] = w
	}

	var sum, weight float64
	for _, tr := range reports {
		if tr.Connectivity != core.ConnectivityOK || !tr.Score.Valid {
			continue
		}
		w := weights[tr.TargetID]
		if w <= 0 {
			w = 1
		}
		sum += tr.Score.Value * w
		weight += w
	}

	run := &core.RunReport{
		ID:          id,
		GeneratedAt: generatedAt,
		Targets:     reports,
		Partial:     partial,
	}
	if weight > 0 {
		run.Score = core.NewScore(sum / weight)
	}
	return run
}
