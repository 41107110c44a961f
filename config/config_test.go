package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	d := Default()

	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"approach_radius", d.ApproachRadius, 2.0},
		{"rise_radius", d.RiseRadius, 0.5},
		{"contact_epsilon", d.ContactEpsilon, 0.05},
		{"surface_backoff", d.SurfaceBackoff, 0.05},
		{"hysteresis", d.Hysteresis, 0.005},
		{"approach_turn_rate", d.ApproachTurnRate, 500},
		{"rise_turn_rate", d.RiseTurnRate, 1000},
		{"reset_turn_rate", d.ResetTurnRate, 500},
		{"weight_blend_secs", d.WeightBlendSecs, 5},
		{"reset_blend_secs", d.ResetBlendSecs, 10},
		{"approach_timeout", d.ApproachTimeout, 2},
		{"rise_min_secs", d.RiseMinSecs, 1},
		{"touch_hold", d.TouchHold, 0.5},
		{"reset_min_secs", d.ResetMinSecs, 2},
		{"approach_ik_weight", d.ApproachIKWeight, 0.5},
		{"approach_rotation_weight", d.ApproachRotationWeight, 0.75},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.got != c.want {
				t.Fatalf("got %v, want %v", c.got, c.want)
			}
		})
	}

	if err := d.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("approach_radius: 3.5\ntouch_hold: 1.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ApproachRadius != 3.5 {
		t.Fatalf("approach_radius = %v, want override 3.5", got.ApproachRadius)
	}
	if got.TouchHold != 1.0 {
		t.Fatalf("touch_hold = %v, want override 1.0", got.TouchHold)
	}
	// untouched keys keep their defaults
	if got.RiseRadius != 0.5 {
		t.Fatalf("rise_radius = %v, want default 0.5", got.RiseRadius)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("approach_radius: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for negative radius")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
