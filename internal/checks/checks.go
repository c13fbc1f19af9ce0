package checks

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dbguardian/dbguardian/internal/core"
)

// Querier is the slice of a borrowed session a check is allowed to use. The
// pool's Session satisfies it; tests substitute fakes.
type Querier interface {
	// Scalar runs a query expected to yield at most one row with one column.
	// A missing row is returned as an invalid NullString, not an error.
	Scalar(ctx context.Context, query string) (sql.NullString, error)
	// Select runs a query and scans all rows into dest (a pointer to a slice
	// of structs with db tags).
	Select(ctx context.Context, dest any, query string) error
}

// Result is what a check reports when it managed to run. Infrastructure
// failures are returned as errors instead and never encoded in Status.
type Result struct {
	Status   core.Status
	Actual   string
	Expected string
	Message  string
}

// Check is one diagnostic evaluated against a session with resolved
// parameters. Implementations are stateless: the same value is reused across
// targets and concurrent runs.
type Check interface {
	ID() string
	Name() string
	Category() core.Category
	Weight() float64
	Description() string
	Evaluate(ctx context.Context, q Querier, params map[string]any) (Result, error)
}

type meta struct {
	id          string
	name        string
	category    core.Category
	weight      float64
	description string
}

func (m meta) ID() string              { return m.id }
func (m meta) Name() string            { return m.name }
func (m meta) Category() core.Category { return m.category }
func (m meta) Weight() float64         { return m.weight }
func (m meta) Description() string     { return m.description }

// normalizeBool maps the boolean spellings Oracle views use (YES/NO, Y/N,
// TRUE/FALSE, ON/OFF, 1/0) onto TRUE/FALSE. Unrecognized values pass through
// upper-cased.
func normalizeBool(v string) string {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "YES", "TRUE", "Y", "1", "ON":
		return "TRUE"
	case "NO", "FALSE", "N", "0", "OFF", "NONE", "":
		return "FALSE"
	default:
		return strings.ToUpper(strings.TrimSpace(v))
	}
}
