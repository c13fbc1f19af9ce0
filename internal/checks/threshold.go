package checks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/dbguardian/dbguardian/internal/core"
)

type Comparison string

const (
	CompareMinimum  Comparison = "minimum"
	CompareMaximum  Comparison = "maximum"
	CompareEquals   Comparison = "equals"
	CompareRequired Comparison = "required"
)

// ThresholdCheck fetches one scalar from a diagnostic view and validates it
// against a rule parameter: a numeric minimum/maximum, an exact value, or a
// plain "must be set" requirement.
type ThresholdCheck struct {
	meta
	Query    string
	Compare  Comparison
	ParamKey string
	// Transform converts the raw value before numeric comparison, e.g.
	// bytes to GB for sga_target.
	Transform func(float64) float64
	// Boolean normalizes YES/NO style spellings on both sides of an equals
	// comparison.
	Boolean bool
}

func (c ThresholdCheck) Evaluate(ctx context.Context, q Querier, params map[string]any) (Result, error) {
	threshold, hasThreshold := params[c.ParamKey]

	if c.Compare == CompareRequired {
		required, err := cast.ToBoolE(threshold)
		if hasThreshold && err != nil {
			return Result{}, fmt.Errorf("parameter %q: %w", c.ParamKey, err)
		}
		if !hasThreshold || !required {
			return Result{
				Status:   core.StatusPass,
				Actual:   "N/A",
				Expected: "Not Required",
				Message:  "check not required",
			}, nil
		}
	} else if !hasThreshold {
		return Result{}, fmt.Errorf("check %s: missing parameter %q", c.id, c.ParamKey)
	}

	row, err := q.Scalar(ctx, c.Query)
	if err != nil {
		return Result{}, fmt.Errorf("query for %s: %w", c.id, err)
	}

	if !row.Valid || strings.TrimSpace(row.String) == "" {
		return Result{
			Status:   core.StatusFail,
			Actual:   "NOT SET",
			Expected: c.expected(threshold),
			Message:  c.description,
		}, nil
	}
	actual := strings.TrimSpace(row.String)

	switch c.Compare {
	case CompareRequired:
		return Result{Status: core.StatusPass, Actual: actual, Expected: "Set/Enabled"}, nil

	case CompareEquals:
		want := cast.ToString(threshold)
		got := actual
		if c.Boolean {
			got = normalizeBool(got)
			want = normalizeBool(want)
		}
		status := core.StatusFail
		msg := c.description
		if strings.EqualFold(got, want) {
			status = core.StatusPass
			msg = ""
		}
		return Result{Status: status, Actual: actual, Expected: c.expected(threshold), Message: msg}, nil

	case CompareMinimum, CompareMaximum:
		av, convErr := strconv.ParseFloat(actual, 64)
		if convErr != nil {
			return Result{
				Status:   core.StatusFail,
				Actual:   actual,
				Expected: c.expected(threshold),
				Message:  fmt.Sprintf("non-numeric value %q", actual),
			}, nil
		}
		if c.Transform != nil {
			av = c.Transform(av)
		}
		tv, convErr := cast.ToFloat64E(threshold)
		if convErr != nil {
			return Result{}, fmt.Errorf("parameter %q: %w", c.ParamKey, convErr)
		}
		ok := av >= tv
		if c.Compare == CompareMaximum {
			ok = av <= tv
		}
		status := core.StatusFail
		msg := c.description
		if ok {
			status = core.StatusPass
			msg = ""
		}
		return Result{
			Status:   status,
			Actual:   strconv.FormatFloat(av, 'f', -1, 64),
			Expected: c.expected(threshold),
			Message:  msg,
		}, nil
	}

	return Result{}, fmt.Errorf("check %s: unknown comparison %q", c.id, c.Compare)
}

func (c ThresholdCheck) expected(threshold any) string {
	switch c.Compare {
	case CompareRequired:
		return "Set/Enabled"
	case CompareMinimum:
		return fmt.Sprintf(">= %v", threshold)
	case CompareMaximum:
		return fmt.Sprintf("<= %v", threshold)
	default:
		return cast.ToString(threshold)
	}
}
