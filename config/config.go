// Package config provides tuning parameters for the reach controller.
// Defaults are embedded; a yaml file may override any subset of them.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Tuning holds every threshold, rate, and duration the controller reads.
type Tuning struct {
	// Distances, world units.
	ApproachRadius    float64 `yaml:"approach_radius"`     // root-to-surface distance that starts an approach
	RiseRadius        float64 `yaml:"rise_radius"`         // shoulder-to-surface distance that starts the rise
	ContactEpsilon    float64 `yaml:"contact_epsilon"`     // target-to-surface distance counted as contact
	SurfaceBackoff    float64 `yaml:"surface_backoff"`     // pull-back from the surface along the shoulder line
	Hysteresis        float64 `yaml:"hysteresis"`          // noise band over the closest-approach watermark
	ShoulderRefHeight float64 `yaml:"shoulder_ref_height"` // probe height for the closest-point query
	RestHeight        float64 `yaml:"rest_height"`         // baseline for the interaction height offset
	ArmReach          float64 `yaml:"arm_reach"`           // lateral growth of the detection volume

	// Angular rates, degrees per second.
	ApproachTurnRate float64 `yaml:"approach_turn_rate"`
	RiseTurnRate     float64 `yaml:"rise_turn_rate"`
	ResetTurnRate    float64 `yaml:"reset_turn_rate"`

	// Blend durations, seconds. Fractions elapsed/duration are fed unclamped
	// into saturating blends, so values plateau once elapsed passes these.
	WeightBlendSecs float64 `yaml:"weight_blend_secs"`
	ResetBlendSecs  float64 `yaml:"reset_blend_secs"`

	// State timings, seconds.
	ApproachTimeout float64 `yaml:"approach_timeout"`
	RiseMinSecs     float64 `yaml:"rise_min_secs"`
	TouchHold       float64 `yaml:"touch_hold"`
	ResetMinSecs    float64 `yaml:"reset_min_secs"`

	// Weight targets held during the approach.
	ApproachIKWeight       float64 `yaml:"approach_ik_weight"`
	ApproachRotationWeight float64 `yaml:"approach_rotation_weight"`
}

// Default returns the embedded baseline tuning.
func Default() *Tuning {
	var t Tuning
	if err := yaml.Unmarshal(defaultsYAML, &t); err != nil {
		panic("config: embedded defaults are invalid: " + err.Error())
	}
	return &t
}

// Load returns the defaults overlaid with the yaml file at path.
func Load(path string) (*Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	t := Default()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return t, nil
}

// Validate rejects values the controller cannot run with.
func (t *Tuning) Validate() error {
	positives := map[string]float64{
		"approach_radius":   t.ApproachRadius,
		"rise_radius":       t.RiseRadius,
		"contact_epsilon":   t.ContactEpsilon,
		"weight_blend_secs": t.WeightBlendSecs,
		"reset_blend_secs":  t.ResetBlendSecs,
	}
	for name, v := range positives {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, v)
		}
	}
	if t.Hysteresis < 0 {
		return fmt.Errorf("hysteresis must be non-negative, got %v", t.Hysteresis)
	}
	return nil
}
