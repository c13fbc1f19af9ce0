package checks

import "github.com/dbguardian/dbguardian/internal/core"

const bytesPerGB = 1 << 30

// Builtin returns the full catalog of Oracle configuration checks in report
// order. Thresholds come from the resolved rules at evaluation time; the
// catalog only fixes queries, comparison semantics, and severity weights.
func Builtin() []Check {
	return []Check{
		ThresholdCheck{
			meta: meta{
				id: "sga_target_min_gb", name: "SGA_TARGET_MIN",
				category: core.CategoryMemory, weight: 3,
				description: "SGA_TARGET should be at least the configured minimum for optimal performance",
			},
			Query:     "SELECT value FROM v$parameter WHERE name = 'sga_target'",
			Compare:   CompareMinimum,
			ParamKey:  "min_gb",
			Transform: func(bytes float64) float64 { return bytes / bytesPerGB },
		},
		ThresholdCheck{
			meta: meta{
				id: "sga_max_size_required", name: "SGA_MAX_SIZE",
				category: core.CategoryMemory, weight: 2,
				description: "SGA_MAX_SIZE must be set",
			},
			Query:    "SELECT value FROM v$parameter WHERE name = 'sga_max_size' AND value != '0'",
			Compare:  CompareRequired,
			ParamKey: "required",
		},
		ThresholdCheck{
			meta: meta{
				id: "dism_enabled", name: "DISM_ENABLED",
				category: core.CategoryMemory, weight: 1,
				description: "SGA_TARGET should be equal to SGA_MAX_SIZE",
			},
			Query:    "SELECT CASE WHEN (SELECT TO_NUMBER(value) FROM v$parameter WHERE name = 'sga_target') = (SELECT TO_NUMBER(value) FROM v$parameter WHERE name = 'sga_max_size') THEN 'True' ELSE 'False' END FROM dual",
			Compare:  CompareEquals,
			ParamKey: "value",
			Boolean:  true,
		},
		ThresholdCheck{
			meta: meta{
				id: "pga_aggregate_target_required", name: "PGA_AGGREGATE_TARGET",
				category: core.CategoryMemory, weight: 2,
				description: "PGA_AGGREGATE_TARGET must be set",
			},
			Query:    "SELECT value FROM v$parameter WHERE name = 'pga_aggregate_target' AND value != '0'",
			Compare:  CompareRequired,
			ParamKey: "required",
		},
		ThresholdCheck{
			meta: meta{
				id: "pga_aggregate_limit_required", name: "PGA_AGGREGATE_LIMIT",
				category: core.CategoryMemory, weight: 2,
				description: "PGA_AGGREGATE_LIMIT must be set",
			},
			Query:    "SELECT value FROM v$parameter WHERE name = 'pga_aggregate_limit' AND value != '0'",
			Compare:  CompareRequired,
			ParamKey: "required",
		},
		ThresholdCheck{
			meta: meta{
				id: "memory_target_required", name: "MEMORY_TARGET",
				category: core.CategoryMemory, weight: 1,
				description: "MEMORY_TARGET must be set when automatic memory management is mandated",
			},
			Query:    "SELECT value FROM v$parameter WHERE name = 'memory_target' AND value != '0'",
			Compare:  CompareRequired,
			ParamKey: "required",
		},
		ThresholdCheck{
			meta: meta{
				id: "sessions_min", name: "SESSIONS_MIN",
				category: core.CategoryMemory, weight: 2,
				description: "SESSIONS should be at least the configured minimum",
			},
			Query:    "SELECT value FROM v$parameter WHERE name = 'sessions'",
			Compare:  CompareMinimum,
			ParamKey: "min",
		},
		ThresholdCheck{
			meta: meta{
				id: "processes_min", name: "PROCESSES_MIN",
				category: core.CategoryMemory, weight: 2,
				description: "PROCESSES should be at least the configured minimum",
			},
			Query:    "SELECT value FROM v$parameter WHERE name = 'processes'",
			Compare:  CompareMinimum,
			ParamKey: "min",
		},
		ThresholdCheck{
			meta: meta{
				id: "open_cursors_min", name: "OPEN_CURSORS_MIN",
				category: core.CategoryMemory, weight: 2,
				description: "OPEN_CURSORS should be at least the configured minimum",
			},
			Query:    "SELECT value FROM v$parameter WHERE name = 'open_cursors'",
			Compare:  CompareMinimum,
			ParamKey: "min",
		},
		ThresholdCheck{
			meta: meta{
				id: "db_files_min", name: "DB_FILES_MIN",
				category: core.CategoryMemory, weight: 1,
				description: "DB_FILES should be at least the configured minimum",
			},
			Query:    "SELECT value FROM v$parameter WHERE name = 'db_files'",
			Compare:  CompareMinimum,
			ParamKey: "min",
		},
		ThresholdCheck{
			meta: meta{
				id: "statistics_level", name: "STATISTICS_LEVEL",
				category: core.CategoryPerformance, weight: 2,
				description: "STATISTICS_LEVEL should match the mandated value",
			},
			Query:    "SELECT value FROM v$parameter WHERE name = 'statistics_level'",
			Compare:  CompareEquals,
			ParamKey: "value",
		},
		ThresholdCheck{
			meta: meta{
				id: "optimizer_mode", name: "OPTIMIZER_MODE",
				category: core.CategoryPerformance, weight: 1,
				description: "OPTIMIZER_MODE should match the mandated value",
			},
			Query:    "SELECT value FROM v$parameter WHERE name = 'optimizer_mode'",
			Compare:  CompareEquals,
			ParamKey: "value",
		},
		ThresholdCheck{
			meta: meta{
				id: "flashback_enabled", name: "FLASHBACK_ENABLED",
				category: core.CategoryFeature, weight: 2,
				description: "Flashback database should be enabled for recovery capabilities",
			},
			Query:    "SELECT flashback_on FROM v$database",
			Compare:  CompareEquals,
			ParamKey: "value",
			Boolean:  true,
		},
		ThresholdCheck{
			meta: meta{
				id: "force_logging_enabled", name: "FORCE_LOGGING",
				category: core.CategoryFeature, weight: 2,
				description: "Force logging should be enabled to guarantee redo generation",
			},
			Query:    "SELECT force_logging FROM v$database",
			Compare:  CompareEquals,
			ParamKey: "value",
			Boolean:  true,
		},
		ThresholdCheck{
			meta: meta{
				id: "archivelog_mode_enabled", name: "ARCHIVELOG_MODE",
				category: core.CategoryRecovery, weight: 3,
				description: "Database should run in ARCHIVELOG mode",
			},
			Query:    "SELECT log_mode FROM v$database",
			Compare:  CompareEquals,
			ParamKey: "value",
		},
		ThresholdCheck{
			meta: meta{
				id: "unified_auditing_enabled", name: "UNIFIED_AUDITING",
				category: core.CategorySecurity, weight: 3,
				description: "Unified auditing should be enabled",
			},
			Query:    "SELECT value FROM v$parameter WHERE name = 'audit_trail'",
			Compare:  CompareEquals,
			ParamKey: "value",
			Boolean:  true,
		},
		ThresholdCheck{
			meta: meta{
				id: "job_queue_processes_min", name: "JOB_QUEUE_PROCESSES",
				category: core.CategoryObjects, weight: 1,
				description: "JOB_QUEUE_PROCESSES should be at least the configured minimum",
			},
			Query:    "SELECT value FROM v$parameter WHERE name = 'job_queue_processes'",
			Compare:  CompareMinimum,
			ParamKey: "min",
		},
		ThresholdCheck{
			meta: meta{
				id: "open_dblinks_max", name: "OPEN_DBLINKS",
				category: core.CategoryObjects, weight: 1,
				description: "OPEN_LINKS should not exceed the configured maximum",
			},
			Query:    "SELECT value FROM v$parameter WHERE name = 'open_links'",
			Compare:  CompareMaximum,
			ParamKey: "max",
		},
		CountCheck{
			meta: meta{
				id: "jobs_enabled_min", name: "JOBS_ENABLED",
				category: core.CategoryObjects, weight: 1,
				description: "At least the configured number of scheduler jobs should be enabled",
			},
			Query:    "SELECT COUNT(*) FROM dba_scheduler_jobs WHERE enabled = 'TRUE'",
			Compare:  CompareMinimum,
			ParamKey: "min",
			Subject:  "enabled jobs",
		},
		SchedulerCheck{
			meta: meta{
				id: "scheduler_jobs_status", name: "SCHEDULER_JOBS_STATUS",
				category: core.CategoryObjects, weight: 2,
				description: "Purge and cleanup scheduler jobs must not be disabled",
			},
		},
		ThresholdCheck{
			meta: meta{
				id: "scheduler_log_retention_days", name: "SCHEDULER_LOG_RETENTION",
				category: core.CategoryLogging, weight: 1,
				description: "Scheduler logs should be retained for the audit trail",
			},
			Query:    "SELECT value FROM dba_scheduler_global_attribute WHERE attribute_name = 'log_history'",
			Compare:  CompareMinimum,
			ParamKey: "min_days",
		},
		JobClassRetentionCheck{
			meta: meta{
				id: "job_class_log_retention_days", name: "JOB_CLASS_LOG_RETENTION",
				category: core.CategoryLogging, weight: 1,
				description: "All job classes should have log retention configured",
			},
		},
		ProfileCheck{
			meta: meta{
				id: "password_validation_function", name: "PASSWORD_VALIDATION_FUNCTION",
				category: core.CategorySecurity, weight: 3,
				description: "Required profiles should use the specified password validation function",
			},
		},
	}
}

// DefaultRegistry builds the registry over the builtin catalog.
func DefaultRegistry() (*Registry, error) {
	return NewRegistry(Builtin()...)
}
