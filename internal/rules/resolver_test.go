package rules

import (
	"reflect"
	"strings"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestResolve_OverrideWinsPerLeaf(t *testing.T) {
	global := Document{
		"sga_target_min_gb": {Params: map[string]any{"min_gb": 2}},
		"sessions_min":      {Params: map[string]any{"min": 1000}},
	}
	overrides := map[string]Document{
		"FREE": {
			"sga_target_min_gb": {Params: map[string]any{"min_gb": 1}},
		},
	}
	ids := []string{"sga_target_min_gb", "sessions_min"}

	rs, warnings := Resolve(global, overrides, "FREE", ids)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	sga := rs.Rules["sga_target_min_gb"]
	if !sga.Enabled || !sga.Override {
		t.Fatalf("expected enabled overridden rule, got %+v", sga)
	}
	if sga.Params["min_gb"] != 1 {
		t.Fatalf("override should win: got min_gb=%v", sga.Params["min_gb"])
	}

	sessions := rs.Rules["sessions_min"]
	if sessions.Override {
		t.Fatalf("sessions_min has no override, got %+v", sessions)
	}
	if sessions.Params["min"] != 1000 {
		t.Fatalf("global should be inherited verbatim: got %+v", sessions.Params)
	}
}

func TestResolve_LeafInheritance(t *testing.T) {
	global := Document{
		"statistics_level": {
			Enabled: boolPtr(true),
			Params:  map[string]any{"value": "TYPICAL", "extra": "keep"},
		},
	}
	overrides := map[string]Document{
		"DEV": {
			// Only one leaf overridden; enabled and "extra" inherit.
			"statistics_level": {Params: map[string]any{"value": "ALL"}},
		},
	}

	rs, _ := Resolve(global, overrides, "DEV", []string{"statistics_level"})
	r := rs.Rules["statistics_level"]
	if !r.Enabled {
		t.Fatalf("enabled leaf should inherit from global")
	}
	if r.Params["value"] != "ALL" || r.Params["extra"] != "keep" {
		t.Fatalf("leaf merge wrong: %+v", r.Params)
	}
}

func TestResolve_IsTotalOverCheckIDs(t *testing.T) {
	global := Document{"a": {Params: map[string]any{"min": 1}}}
	ids := []string{"a", "b", "c"}

	rs, _ := Resolve(global, nil, "X", ids)
	if len(rs.Rules) != len(ids) {
		t.Fatalf("expected %d resolved rules, got %d", len(ids), len(rs.Rules))
	}
	for _, id := range []string{"b", "c"} {
		r, ok := rs.Rules[id]
		if !ok {
			t.Fatalf("missing resolved rule for %q", id)
		}
		if r.Enabled {
			t.Fatalf("check absent from both layers must resolve disabled: %+v", r)
		}
	}
}

func TestResolve_ExplicitDisable(t *testing.T) {
	global := Document{"flashback_enabled": {Params: map[string]any{"value": true}}}
	overrides := map[string]Document{
		"FREE": {"flashback_enabled": {Enabled: boolPtr(false)}},
	}

	rs, _ := Resolve(global, overrides, "FREE", []string{"flashback_enabled"})
	if rs.Rules["flashback_enabled"].Enabled {
		t.Fatalf("explicit enabled:false must win over global")
	}
	if rs.EnabledCount() != 0 {
		t.Fatalf("expected 0 enabled checks, got %d", rs.EnabledCount())
	}
}

func TestResolve_UnknownOverrideWarns(t *testing.T) {
	global := Document{"a": {}}
	overrides := map[string]Document{
		"X": {"no_such_check": {Params: map[string]any{"min": 1}}},
	}

	rs, warnings := Resolve(global, overrides, "X", []string{"a"})
	if len(warnings) != 1 || !strings.Contains(warnings[0], "no_such_check") {
		t.Fatalf("expected one warning about no_such_check, got %v", warnings)
	}
	if _, ok := rs.Rules["no_such_check"]; ok {
		t.Fatalf("unknown check must not leak into the resolved set")
	}
}

func TestResolve_Idempotent(t *testing.T) {
	global := Document{
		"a": {Enabled: boolPtr(true), Params: map[string]any{"min": 5}},
		"b": {Params: map[string]any{"value": "TRUE"}},
	}
	overrides := map[string]Document{
		"T": {"a": {Params: map[string]any{"min": 2}}},
	}
	ids := []string{"a", "b", "c"}

	first, _ := Resolve(global, overrides, "T", ids)
	second, _ := Resolve(global, overrides, "T", ids)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("resolve is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestResolve_DoesNotAliasInputs(t *testing.T) {
	global := Document{"a": {Params: map[string]any{"min": 5}}}

	rs, _ := Resolve(global, nil, "T", []string{"a"})
	rs.Rules["a"].Params["min"] = 99

	if global["a"].Params["min"] != 5 {
		t.Fatalf("resolved params alias the global document")
	}
}
