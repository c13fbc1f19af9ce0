package rules

import "fmt"

// ResolvedRule is the final state of one check for one target: an explicit
// enabled flag and a complete parameter set, no inherited leaves left.
type ResolvedRule struct {
	CheckID  string
	Enabled  bool
	Params   map[string]any
	Override bool
}

// ResolvedRuleSet is total over the known check IDs passed to Resolve: every
// ID has an entry, disabled ones included.
type ResolvedRuleSet struct {
	TargetID string
	Rules    map[string]ResolvedRule
}

func (rs ResolvedRuleSet) Rule(checkID string) (ResolvedRule, bool) {
	r, ok := rs.Rules[checkID]
	return r, ok
}

// EnabledCount reports how many checks the set declares enabled.
func (rs ResolvedRuleSet) EnabledCount() int {
	n := 0
	for _, r := range rs.Rules {
		if r.Enabled {
			n++
		}
	}
	return n
}

// Resolve deep-merges the target's override fragment over the global document,
// leaf keys from the override winning. The result is total over checkIDs: a
// check configured in neither layer resolves disabled. Override entries whose
// check ID is unknown are returned as warnings and otherwise ignored.
//
// Resolve is pure: same inputs produce value-equal output, and the returned
// parameter maps never alias the input documents.
func Resolve(global Document, overrides map[string]Document, targetID string, checkIDs []string) (ResolvedRuleSet, []string) {
	override := overrides[targetID]

	known := make(map[string]struct{}, len(checkIDs))
	for _, id := range checkIDs {
		known[id] = struct{}{}
	}

	var warnings []string
	for id := range override {
		if _, ok := known[id]; !ok {
			warnings = append(warnings, fmt.Sprintf("override for target %q references unknown check %q", targetID, id))
		}
	}

	resolved := ResolvedRuleSet{
		TargetID: targetID,
		Rules:    make(map[string]ResolvedRule, len(checkIDs)),
	}

	for _, id := range checkIDs {
		g, inGlobal := global[id]
		o, inOverride := override[id]

		r := ResolvedRule{
			CheckID:  id,
			Params:   map[string]any{},
			Override: inOverride,
		}

		switch {
		case inOverride && o.Enabled != nil:
			r.Enabled = *o.Enabled
		case inGlobal && g.Enabled != nil:
			r.Enabled = *g.Enabled
		default:
			// Presence in either layer enables a check by default; absence
			// from both resolves it disabled so it still surfaces as SKIPPED.
			r.Enabled = inGlobal || inOverride
		}

		for k, v := range g.Params {
			r.Params[k] = v
		}
		for k, v := range o.Params {
			r.Params[k] = v
		}

		resolved.Rules[id] = r
	}

	return resolved, warnings
}
