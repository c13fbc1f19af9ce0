package core

import "time"

type Status string

const (
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
	StatusWarn    Status = "WARN"
	StatusError   Status = "ERROR"
	StatusSkipped Status = "SKIPPED"
)

type Category string

const (
	CategoryMemory      Category = "Memory Configuration"
	CategoryFeature     Category = "Feature Configuration"
	CategoryObjects     Category = "Database Objects"
	CategorySecurity    Category = "Security & Auditing"
	CategoryRecovery    Category = "Backup & Recovery"
	CategoryPerformance Category = "Performance Tuning"
	CategoryLogging     Category = "Logging & Monitoring"
)

// CheckOutcome is the result of one check against one target. Status ERROR
// means the check itself could not run (infrastructure failure); FAIL means it
// ran and the measured value violated the rule. The two are never conflated.
type CheckOutcome struct {
	CheckID  string        `json:"check_id"`
	TargetID string        `json:"target_id"`
	Category Category      `json:"category"`
	Status   Status        `json:"status"`
	Actual   string        `json:"actual,omitempty"`
	Expected string        `json:"expected,omitempty"`
	Message  string        `json:"message,omitempty"`
	Override bool          `json:"override,omitempty"`
	Duration time.Duration `json:"duration"`
	Timestamp time.Time    `json:"timestamp"`
}
