package report

import "github.com/dbguardian/dbguardian/internal/core"

// Exit codes of one run. Fatal configuration errors (ExitConfigError) are
// decided by the caller before a report exists.
const (
	ExitOK           = 0
	ExitCheckFailure = 1
	ExitConnFailure  = 2
	ExitConfigError  = 3
)

// ExitCode derives the process exit code from a completed run. Connectivity
// failures dominate check failures; a score below the pass threshold without
// explicit FAIL outcomes (errors or warnings dragging it down) still refuses
// the clean exit.
func ExitCode(run *core.RunReport, passThreshold float64) int {
	if run.ConnectivityFailures() > 0 {
		return ExitConnFailure
	}
	if run.CheckFailures() > 0 {
		return ExitCheckFailure
	}
	if run.Score.Valid && run.Score.Value < passThreshold {
		return ExitCheckFailure
	}
	return ExitOK
}
