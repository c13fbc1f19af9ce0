package pool

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

type Reason string

const (
	ReasonAuth          Reason = "auth"
	ReasonNetwork       Reason = "network"
	ReasonTimeout       Reason = "timeout"
	ReasonPoolExhausted Reason = "pool_exhausted"
)

// ConnectionError is a per-target connection failure. It never aborts a run;
// the orchestrator folds it into the target's report.
type ConnectionError struct {
	TargetID string
	Reason   Reason
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("target %s: connection failed (%s): %v", e.TargetID, e.Reason, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// classify maps a raw borrow error onto the connection failure taxonomy.
// saturated tells whether the pool was at its max when the wait gave up, which
// distinguishes backpressure from a slow connect.
func classify(targetID string, err error, saturated bool) *ConnectionError {
	reason := ReasonNetwork

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		if saturated {
			reason = ReasonPoolExhausted
		} else {
			reason = ReasonTimeout
		}
	case errors.As(err, &netErr) && netErr.Timeout():
		reason = ReasonTimeout
	case isAuthError(err):
		reason = ReasonAuth
	}

	return &ConnectionError{TargetID: targetID, Reason: reason, Err: err}
}

func isAuthError(err error) bool {
	msg := strings.ToUpper(err.Error())
	// ORA-01017: invalid username/password, ORA-01031: insufficient privileges,
	// ORA-28000: account locked.
	for _, code := range []string{"ORA-01017", "ORA-01031", "ORA-28000", "INVALID USERNAME"} {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return false
}
