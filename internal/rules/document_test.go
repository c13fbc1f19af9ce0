package rules

import "testing"

func TestParse_ValidDocument(t *testing.T) {
	raw := []byte(`
validation_rules:
  defaults:
    sga_target_min_gb:
      enabled: true
      parameters:
        min_gb: 8
    flashback_enabled:
      parameters:
        value: true
  overrides:
    FREE:
      sga_target_min_gb:
        parameters:
          min_gb: 1
`)
	global, overrides, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(global) != 2 {
		t.Fatalf("expected 2 default rules, got %d", len(global))
	}
	r := global["sga_target_min_gb"]
	if r.Enabled == nil || !*r.Enabled {
		t.Fatalf("enabled flag not parsed: %+v", r)
	}
	if r.Params["min_gb"] != 8 {
		t.Fatalf("parameters not parsed: %+v", r.Params)
	}
	if overrides["FREE"]["sga_target_min_gb"].Params["min_gb"] != 1 {
		t.Fatalf("override not parsed: %+v", overrides)
	}
}

func TestParse_MissingDefaults(t *testing.T) {
	if _, _, err := Parse([]byte("validation_rules:\n  overrides: {}\n")); err == nil {
		t.Fatalf("expected error for missing defaults section")
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, _, err := Parse([]byte("validation_rules: [unclosed")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestParse_NoOverridesSection(t *testing.T) {
	global, overrides, err := Parse([]byte("validation_rules:\n  defaults:\n    a: {}\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(global) != 1 || overrides == nil {
		t.Fatalf("expected defaults and empty overrides, got %v / %v", global, overrides)
	}
}
