package checks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/dbguardian/dbguardian/internal/core"
)

// CountCheck runs a COUNT-style query and validates the number of matching
// rows against a minimum or maximum from the rules. A minimum of zero turns it
// into a pure existence report that always passes.
type CountCheck struct {
	meta
	Query    string
	Compare  Comparison // CompareMinimum or CompareMaximum
	ParamKey string
	// Subject names what is being counted, used in result rendering
	// ("12 enabled jobs").
	Subject string
}

func (c CountCheck) Evaluate(ctx context.Context, q Querier, params map[string]any) (Result, error) {
	threshold, ok := params[c.ParamKey]
	if !ok {
		return Result{}, fmt.Errorf("check %s: missing parameter %q", c.id, c.ParamKey)
	}
	tv, err := cast.ToInt64E(threshold)
	if err != nil {
		return Result{}, fmt.Errorf("parameter %q: %w", c.ParamKey, err)
	}

	row, err := q.Scalar(ctx, c.Query)
	if err != nil {
		return Result{}, fmt.Errorf("query for %s: %w", c.id, err)
	}
	count := int64(0)
	if row.Valid && strings.TrimSpace(row.String) != "" {
		count, err = strconv.ParseInt(strings.TrimSpace(row.String), 10, 64)
		if err != nil {
			return Result{}, fmt.Errorf("check %s: non-numeric count %q", c.id, row.String)
		}
	}

	pass := count >= tv
	expected := fmt.Sprintf(">= %d", tv)
	if c.Compare == CompareMaximum {
		pass = count <= tv
		expected = fmt.Sprintf("<= %d", tv)
	}

	res := Result{
		Actual:   fmt.Sprintf("%d %s", count, c.Subject),
		Expected: expected,
	}
	if pass {
		res.Status = core.StatusPass
	} else {
		res.Status = core.StatusFail
		res.Message = c.description
	}
	return res, nil
}
