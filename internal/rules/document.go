package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule is one entry of a rule document: whether a check runs and the scalar
// parameters it runs with. A nil Enabled inherits from the lower layer.
type Rule struct {
	Enabled *bool          `yaml:"enabled"`
	Params  map[string]any `yaml:"parameters"`
}

// Document maps check ID to rule. Two layers exist: the global defaults and
// the per-target overrides, merged by Resolve.
type Document map[string]Rule

type ruleFile struct {
	ValidationRules struct {
		Defaults  Document            `yaml:"defaults"`
		Overrides map[string]Document `yaml:"overrides"`
	} `yaml:"validation_rules"`
}

// Load reads a validation rules file. Any structural problem is a fatal
// configuration error: the run must not start on a half-parsed rule set.
func Load(path string) (Document, map[string]Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read rules file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (Document, map[string]Document, error) {
	var f ruleFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, nil, fmt.Errorf("parse rules file: %w", err)
	}
	if f.ValidationRules.Defaults == nil {
		return nil, nil, fmt.Errorf("rules file: missing validation_rules.defaults section")
	}
	overrides := f.ValidationRules.Overrides
	if overrides == nil {
		overrides = map[string]Document{}
	}
	return f.ValidationRules.Defaults, overrides, nil
}
