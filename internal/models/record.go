// Package models defines the domain types for Ansuz.
package models

import "time"

// Record statuses. Free text in the documents; these are the recognised values.
const (
	StatusProposed   = "Proposed"
	StatusAccepted   = "Accepted"
	StatusDeprecated = "Deprecated"
	StatusSuperseded = "Superseded"
)

// DocumentRecord represents one parsed Architecture Decision Record.
type DocumentRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title,omitempty"`
	Status      string    `json:"status,omitempty"`
	DependsOn   []string  `json:"depends_on,omitempty"`
	DependedBy  []string  `json:"depended_by,omitempty"`
	ImpactScope []string  `json:"impact_scope,omitempty"`
	TechTags    []string  `json:"tech_tags,omitempty"`
	Path        string    `json:"path"`
	Body        string    `json:"-"`
	Checksum    string    `json:"checksum"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DocumentMeta is a lightweight representation returned by list operations.
type DocumentMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Edge is one directed dependency relationship: Source is depended on by Target.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Issue types emitted by the consistency analyzer and graph builder.
const (
	IssueMissingSource      = "MISSING_SOURCE_ADR"
	IssueMissingTarget      = "MISSING_TARGET_ADR"
	IssueVersionMismatch    = "VERSION_MISMATCH"
	IssuePolicyNotInherited = "POLICY_NOT_INHERITED"
	IssueThresholdTooLow    = "THRESHOLD_TOO_LOW"
	IssueConsistencyDrift   = "CONSISTENCY_DRIFT"
	IssueDanglingReference  = "DANGLING_REFERENCE"
	IssueValidationError    = "VALIDATION_ERROR"
)

// Issue is one detected problem. Transient output; never written back into a record.
type Issue struct {
	Type        string `json:"type"`
	SourceID    string `json:"source,omitempty"`
	TargetID    string `json:"target,omitempty"`
	ConfigKey   string `json:"config_key,omitempty"`
	SourceValue string `json:"source_value,omitempty"`
	TargetValue string `json:"target_value,omitempty"`
	Expected    string `json:"expected,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// Risk levels for impact analysis.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// ImpactEntry summarises the blast radius of one record.
type ImpactEntry struct {
	ADR              string   `json:"adr"`
	DirectDependents []string `json:"direct_dependents"`
	TotalAffected    []string `json:"total_affected"`
	ImpactScope      []string `json:"impact_scope"`
	Score            int      `json:"score"`
	RiskLevel        string   `json:"risk_level"`
}
