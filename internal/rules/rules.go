// Package rules defines linkage rules: declarative statements that a
// configuration value in one decision record must stay consistent with the
// value in one or more other records. Rule sets are plain YAML files so a new
// tracked key needs no code change; a compiled-in default set covers corpora
// without one.
package rules

import (
	"fmt"
	"os"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Sync policies.
const (
	PolicyExactMatch       = "exact-match"
	PolicyInheritStrict    = "inherit-strict"
	PolicyMinThreshold     = "min-threshold"
	PolicyConsistencyCheck = "consistency-check"
)

// LinkageRule couples a source record to target records for a set of
// configuration keys under one sync policy.
type LinkageRule struct {
	SourceID   string   `yaml:"source" json:"source"`
	TargetIDs  []string `yaml:"targets" json:"targets"`
	ConfigKeys []string `yaml:"config-keys" json:"config_keys"`
	SyncPolicy string   `yaml:"sync-policy" json:"sync_policy"`
}

// Validate checks one rule against the schema.
func (r LinkageRule) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SourceID, validation.Required),
		validation.Field(&r.TargetIDs, validation.Required, validation.Each(validation.Required)),
		validation.Field(&r.ConfigKeys, validation.Required, validation.Each(validation.Required)),
		validation.Field(&r.SyncPolicy, validation.Required, validation.In(
			PolicyExactMatch, PolicyInheritStrict, PolicyMinThreshold, PolicyConsistencyCheck)),
	)
}

// InheritPolicy configures the inherit-strict predicate for one key:
// the target value must not contain any of the disallowed substrings.
// Boolean values are handled separately (source "false" forces target "false").
type InheritPolicy struct {
	Disallowed []string `yaml:"disallowed" json:"disallowed"`
}

// Set is a complete rule configuration: the rules themselves, the per-key
// extraction regexes, and the inherit-strict predicates.
type Set struct {
	Rules      []LinkageRule            `yaml:"rules" json:"rules"`
	Extractors map[string]string        `yaml:"extractors" json:"extractors"`
	Inherit    map[string]InheritPolicy `yaml:"inherit" json:"inherit,omitempty"`

	compiled map[string]*regexp.Regexp
}

// Validate checks the whole set: every rule passes its schema, every config
// key referenced by a rule has an extractor, and every extractor compiles.
func (s *Set) Validate() error {
	for i, r := range s.Rules {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("rules: rule %d (%s): %w", i, r.SourceID, err)
		}
		for _, key := range r.ConfigKeys {
			if _, ok := s.Extractors[key]; !ok {
				return fmt.Errorf("rules: rule %d (%s): no extractor for config key %q", i, r.SourceID, key)
			}
		}
	}
	return s.compile()
}

func (s *Set) compile() error {
	s.compiled = make(map[string]*regexp.Regexp, len(s.Extractors))
	for key, pattern := range s.Extractors {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("rules: extractor %q: %w", key, err)
		}
		s.compiled[key] = re
	}
	return nil
}

// Load reads and validates a rule set from a YAML file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("rules: parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Default returns the compiled-in rule set used when no rules file is
// configured. It tracks the stack versions, Electron security flags, and the
// coverage floor across the core decision records.
func Default() *Set {
	s := &Set{
		Rules: []LinkageRule{
			{
				SourceID:   "ADR-0001",
				TargetIDs:  []string{"ADR-0003"},
				ConfigKeys: []string{"react-version", "typescript-version"},
				SyncPolicy: PolicyExactMatch,
			},
			{
				SourceID:   "ADR-0002",
				TargetIDs:  []string{"ADR-0004"},
				ConfigKeys: []string{"node-integration", "csp-policy"},
				SyncPolicy: PolicyInheritStrict,
			},
			{
				SourceID:   "ADR-0005",
				TargetIDs:  []string{"ADR-0003"},
				ConfigKeys: []string{"test-coverage"},
				SyncPolicy: PolicyMinThreshold,
			},
			{
				SourceID:   "ADR-0001",
				TargetIDs:  []string{"ADR-0002", "ADR-0004"},
				ConfigKeys: []string{"electron-version"},
				SyncPolicy: PolicyConsistencyCheck,
			},
		},
		Extractors: map[string]string{
			"react-version":      `React[^0-9]*v?([0-9][0-9.]*)`,
			"typescript-version": `TypeScript[^0-9]*v?([0-9][0-9.]*)`,
			"electron-version":   `Electron[^0-9]*v?([0-9][0-9.]*)`,
			"node-integration":   `nodeIntegration[^a-z]*(true|false)`,
			"csp-policy":         "`?default-src[^\\n`]*",
			"test-coverage":      `coverage[^0-9]*([0-9]+(?:\.[0-9]+)?)`,
		},
		Inherit: map[string]InheritPolicy{
			"csp-policy": {Disallowed: []string{"unsafe-eval", "unsafe-inline"}},
		},
	}
	if err := s.Validate(); err != nil {
		// Compiled-in data; a failure here is a programming error.
		panic(err)
	}
	return s
}
