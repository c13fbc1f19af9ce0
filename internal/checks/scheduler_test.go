package checks

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/dbguardian/dbguardian/internal/core"
)

func schedCheck() SchedulerCheck {
	return SchedulerCheck{meta: meta{
		id:       "scheduler_jobs_status",
		weight:   1,
		category: core.CategoryObjects,
	}}
}

func schedFake(jobs []schedulerJob) *fakeQuerier {
	return &fakeQuerier{rows: func(dest any, query string) error {
		out, ok := dest.(*[]schedulerJob)
		if !ok {
			return fmt.Errorf("unexpected dest type %T", dest)
		}
		*out = jobs
		return nil
	}}
}

func TestScheduler_AllEnabled(t *testing.T) {
	q := schedFake([]schedulerJob{
		{JobName: "STATS_JOB", Enabled: "TRUE"},
		{JobName: "AUDIT_PURGE_JOB", Enabled: "TRUE"},
	})
	res, err := schedCheck().Evaluate(context.Background(), q, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != core.StatusPass {
		t.Fatalf("got %s (%s)", res.Status, res.Message)
	}
}

func TestScheduler_CriticalDisabledFails(t *testing.T) {
	q := schedFake([]schedulerJob{
		{JobName: "STATS_JOB", Enabled: "TRUE"},
		{JobName: "AUDIT_PURGE_JOB", Enabled: "FALSE"},
	})
	res, err := schedCheck().Evaluate(context.Background(), q, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != core.StatusFail || !strings.Contains(res.Message, "AUDIT_PURGE_JOB") {
		t.Fatalf("got %s (%s)", res.Status, res.Message)
	}
}

func TestScheduler_NonCriticalDisabledWarns(t *testing.T) {
	q := schedFake([]schedulerJob{
		{JobName: "STATS_JOB", Enabled: "FALSE"},
		{JobName: "AUDIT_PURGE_JOB", Enabled: "TRUE"},
	})
	res, err := schedCheck().Evaluate(context.Background(), q, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != core.StatusWarn {
		t.Fatalf("got %s (%s)", res.Status, res.Message)
	}
	if res.Actual != "1 enabled, 1 disabled" {
		t.Fatalf("actual = %q", res.Actual)
	}
}

func TestScheduler_CustomCriticalPatterns(t *testing.T) {
	q := schedFake([]schedulerJob{
		{JobName: "NIGHTLY_STATS_JOB", Enabled: "FALSE"},
	})
	res, err := schedCheck().Evaluate(context.Background(), q, map[string]any{
		"critical_patterns": []string{"stats"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != core.StatusFail {
		t.Fatalf("got %s, want FAIL with stats marked critical", res.Status)
	}
}

func TestScheduler_NoJobsPasses(t *testing.T) {
	res, err := schedCheck().Evaluate(context.Background(), schedFake(nil), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != core.StatusPass || res.Actual != "0 jobs" {
		t.Fatalf("got %s (%s)", res.Status, res.Actual)
	}
}

func retentionCheck() JobClassRetentionCheck {
	return JobClassRetentionCheck{meta: meta{
		id:          "job_class_log_retention_days",
		weight:      1,
		category:    core.CategoryLogging,
		description: "all job classes should have log retention configured",
	}}
}

func jobClassFake(classes []jobClassRow) *fakeQuerier {
	return &fakeQuerier{rows: func(dest any, query string) error {
		out, ok := dest.(*[]jobClassRow)
		if !ok {
			return fmt.Errorf("unexpected dest type %T", dest)
		}
		*out = classes
		return nil
	}}
}

func TestJobClassRetention(t *testing.T) {
	retained := func(days string) sql.NullString {
		return sql.NullString{String: days, Valid: true}
	}

	t.Run("all configured", func(t *testing.T) {
		q := jobClassFake([]jobClassRow{
			{Name: "DEFAULT_JOB_CLASS", LogHistory: retained("30")},
			{Name: "BATCH_CLASS", LogHistory: retained("7")},
		})
		res, err := retentionCheck().Evaluate(context.Background(), q, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Status != core.StatusPass {
			t.Fatalf("got %s (%s)", res.Status, res.Actual)
		}
	})

	t.Run("unconfigured class fails", func(t *testing.T) {
		q := jobClassFake([]jobClassRow{
			{Name: "DEFAULT_JOB_CLASS", LogHistory: retained("30")},
			{Name: "BATCH_CLASS"},
		})
		res, err := retentionCheck().Evaluate(context.Background(), q, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Status != core.StatusFail || !strings.Contains(res.Actual, "BATCH_CLASS") {
			t.Fatalf("got %s (%s)", res.Status, res.Actual)
		}
	})

	t.Run("minimum from rules", func(t *testing.T) {
		q := jobClassFake([]jobClassRow{
			{Name: "BATCH_CLASS", LogHistory: retained("7")},
		})
		res, err := retentionCheck().Evaluate(context.Background(), q, map[string]any{"min_days": 30})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Status != core.StatusFail {
			t.Fatalf("7 days against min 30 should fail, got %s", res.Status)
		}
	})

	t.Run("no job classes passes", func(t *testing.T) {
		res, err := retentionCheck().Evaluate(context.Background(), jobClassFake(nil), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Status != core.StatusPass || res.Actual != "0 job classes" {
			t.Fatalf("got %s (%s)", res.Status, res.Actual)
		}
	})

	t.Run("non-numeric history counts as unconfigured", func(t *testing.T) {
		q := jobClassFake([]jobClassRow{
			{Name: "BATCH_CLASS", LogHistory: retained("NULL")},
		})
		res, err := retentionCheck().Evaluate(context.Background(), q, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Status != core.StatusFail {
			t.Fatalf("got %s", res.Status)
		}
	})
}

func TestScheduler_BooleanSpellings(t *testing.T) {
	q := schedFake([]schedulerJob{
		{JobName: "A_JOB", Enabled: "Y"},
		{JobName: "B_JOB", Enabled: "yes"},
		{JobName: "C_JOB", Enabled: "1"},
	})
	res, err := schedCheck().Evaluate(context.Background(), q, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != core.StatusPass {
		t.Fatalf("got %s, want PASS for Y/yes/1 spellings", res.Status)
	}
}
