package checks

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/dbguardian/dbguardian/internal/core"
)

// SchedulerCheck reports on dba_scheduler_jobs state. Disabled purge/cleanup
// jobs fail the check; other disabled jobs only degrade it to WARN. The
// "critical_patterns" parameter replaces the default purge/cleanup matching.
type SchedulerCheck struct {
	meta
}

type schedulerJob struct {
	JobName string `db:"JOB_NAME"`
	Enabled string `db:"ENABLED"`
}

func (c SchedulerCheck) Evaluate(ctx context.Context, q Querier, params map[string]any) (Result, error) {
	patterns := []string{"purge", "cleanup"}
	if raw, ok := params["critical_patterns"]; ok {
		parsed, err := cast.ToStringSliceE(raw)
		if err != nil {
			return Result{}, fmt.Errorf("parameter \"critical_patterns\": %w", err)
		}
		patterns = parsed
	}

	var jobs []schedulerJob
	if err := q.Select(ctx, &jobs, "SELECT job_name, enabled FROM dba_scheduler_jobs ORDER BY job_name"); err != nil {
		return Result{}, fmt.Errorf("query for %s: %w", c.id, err)
	}

	if len(jobs) == 0 {
		return Result{
			Status:   core.StatusPass,
			Actual:   "0 jobs",
			Expected: "N/A",
			Message:  "no scheduler jobs found",
		}, nil
	}

	var enabled, disabled, criticalDisabled []string
	for _, j := range jobs {
		if normalizeBool(j.Enabled) == "TRUE" {
			enabled = append(enabled, j.JobName)
			continue
		}
		disabled = append(disabled, j.JobName)
		lower := strings.ToLower(j.JobName)
		for _, p := range patterns {
			if strings.Contains(lower, strings.ToLower(p)) {
				criticalDisabled = append(criticalDisabled, j.JobName)
				break
			}
		}
	}

	res := Result{
		Actual:   fmt.Sprintf("%d enabled, %d disabled", len(enabled), len(disabled)),
		Expected: "all purge/cleanup jobs enabled",
	}
	switch {
	case len(criticalDisabled) > 0:
		res.Status = core.StatusFail
		res.Message = "critical job(s) disabled: " + strings.Join(criticalDisabled, ", ")
	case len(disabled) > 0:
		res.Status = core.StatusWarn
		res.Message = fmt.Sprintf("%d non-critical job(s) disabled", len(disabled))
	default:
		res.Status = core.StatusPass
		res.Message = fmt.Sprintf("all %d scheduler job(s) enabled", len(jobs))
	}
	return res, nil
}

// JobClassRetentionCheck verifies every scheduler job class keeps its logs for
// at least "min_days" days. A class with no log_history at all counts as
// unconfigured.
type JobClassRetentionCheck struct {
	meta
}

type jobClassRow struct {
	Name       string         `db:"JOB_CLASS_NAME"`
	LogHistory sql.NullString `db:"LOG_HISTORY"`
}

func (c JobClassRetentionCheck) Evaluate(ctx context.Context, q Querier, params map[string]any) (Result, error) {
	minDays := int64(1)
	if raw, ok := params["min_days"]; ok {
		v, err := cast.ToInt64E(raw)
		if err != nil {
			return Result{}, fmt.Errorf("parameter \"min_days\": %w", err)
		}
		minDays = v
	}

	var classes []jobClassRow
	if err := q.Select(ctx, &classes, "SELECT job_class_name, log_history FROM dba_scheduler_job_classes ORDER BY job_class_name"); err != nil {
		return Result{}, fmt.Errorf("query for %s: %w", c.id, err)
	}

	if len(classes) == 0 {
		return Result{
			Status:   core.StatusPass,
			Actual:   "0 job classes",
			Expected: "N/A",
			Message:  "no job classes found",
		}, nil
	}

	expected := fmt.Sprintf("log retention >= %d day(s) on all job classes", minDays)

	var unconfigured []string
	configured := 0
	for _, jc := range classes {
		days := int64(0)
		if jc.LogHistory.Valid {
			if v, err := strconv.ParseInt(strings.TrimSpace(jc.LogHistory.String), 10, 64); err == nil {
				days = v
			}
		}
		if days >= minDays {
			configured++
		} else {
			unconfigured = append(unconfigured, jc.Name)
		}
	}

	if len(unconfigured) == 0 {
		return Result{
			Status:   core.StatusPass,
			Actual:   fmt.Sprintf("all %d job class(es) configured", configured),
			Expected: expected,
		}, nil
	}
	return Result{
		Status:   core.StatusFail,
		Actual:   "no retention: " + strings.Join(unconfigured, ", "),
		Expected: expected,
		Message:  c.description,
	}, nil
}
