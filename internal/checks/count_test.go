package checks

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dbguardian/dbguardian/internal/core"
)

const jobsQuery = "SELECT COUNT(*) FROM dba_scheduler_jobs WHERE enabled = 'TRUE'"

func jobsCheck() CountCheck {
	return CountCheck{
		meta:     meta{id: "jobs_enabled_min", weight: 1, category: core.CategoryObjects},
		Query:    jobsQuery,
		Compare:  CompareMinimum,
		ParamKey: "min",
		Subject:  "enabled jobs",
	}
}

func TestCountMinimum(t *testing.T) {
	for _, tc := range []struct {
		count string
		min   any
		want  core.Status
	}{
		{"5", 1, core.StatusPass},
		{"0", 1, core.StatusFail},
		{"0", 0, core.StatusPass},
		{"12", "10", core.StatusPass},
	} {
		q := &fakeQuerier{scalars: map[string]sql.NullString{jobsQuery: value(tc.count)}}
		res, err := jobsCheck().Evaluate(context.Background(), q, map[string]any{"min": tc.min})
		if err != nil {
			t.Fatalf("count=%s min=%v: unexpected error: %v", tc.count, tc.min, err)
		}
		if res.Status != tc.want {
			t.Errorf("count=%s min=%v: got %s, want %s", tc.count, tc.min, res.Status, tc.want)
		}
	}
}

func TestCount_MissingRowCountsAsZero(t *testing.T) {
	q := &fakeQuerier{scalars: map[string]sql.NullString{}}
	res, err := jobsCheck().Evaluate(context.Background(), q, map[string]any{"min": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != core.StatusFail || res.Actual != "0 enabled jobs" {
		t.Fatalf("got %+v", res)
	}
}

func TestCount_MissingParameter(t *testing.T) {
	if _, err := jobsCheck().Evaluate(context.Background(), &fakeQuerier{}, nil); err == nil {
		t.Fatalf("expected error for missing parameter")
	}
}
