package config

import "testing"

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load([]byte(`{"axes": {"x": {"step_pin": "gpio0", "dir_pin": "gpio1"}}}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Kinematics != "cartesian" {
		t.Errorf("expected default kinematics cartesian, got %q", cfg.Kinematics)
	}
	if cfg.DefaultVelocity != 50.0 || cfg.DefaultAccel != 500.0 {
		t.Errorf("unexpected default velocity/accel: %v/%v", cfg.DefaultVelocity, cfg.DefaultAccel)
	}
	if cfg.SquareCornerVelocity != 5.0 || cfg.ArcResolution != 1.0 {
		t.Errorf("unexpected default corner velocity/arc resolution: %v/%v", cfg.SquareCornerVelocity, cfg.ArcResolution)
	}
	if len(cfg.Groups) != 1 || cfg.Groups[0].AxisNames != "XYZ" {
		t.Errorf("expected default XYZ group, got %+v", cfg.Groups)
	}
	x := cfg.Axes["x"]
	if x.MaxVelocity != 300.0 || x.MaxAccel != 1000.0 || x.HomingVel != 5.0 || x.StepsPerMM != 80.0 {
		t.Errorf("unexpected per-axis defaults: %+v", x)
	}
}

func TestLoadPreservesExplicitValues(t *testing.T) {
	cfg, err := Load([]byte(`{"default_velocity": 120, "axes": {"z": {"max_velocity": 10}}}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultVelocity != 120 {
		t.Errorf("explicit default_velocity overwritten: %v", cfg.DefaultVelocity)
	}
	if cfg.Axes["z"].MaxVelocity != 10 {
		t.Errorf("explicit axis max_velocity overwritten: %v", cfg.Axes["z"].MaxVelocity)
	}
}

func TestLoadYAMLMatchesJSONShape(t *testing.T) {
	yamlDoc := []byte("kinematics: cartesian\naxes:\n  x:\n    step_pin: gpio0\n    dir_pin: gpio1\n    max_velocity: 200\n")
	cfg, err := LoadYAML(yamlDoc)
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if cfg.Axes["x"].MaxVelocity != 200 {
		t.Errorf("expected explicit yaml max_velocity 200, got %v", cfg.Axes["x"].MaxVelocity)
	}
	if cfg.Axes["x"].MaxAccel != 1000.0 {
		t.Errorf("expected defaulted max_accel 1000, got %v", cfg.Axes["x"].MaxAccel)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	if _, err := Load([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestDefaultCartesianConfig(t *testing.T) {
	cfg := DefaultCartesianConfig()
	for _, axis := range []string{"x", "y", "z", "e"} {
		if _, ok := cfg.Axes[axis]; !ok {
			t.Errorf("expected axis %q in default config", axis)
		}
	}
	if len(cfg.Endstops) != 3 {
		t.Errorf("expected 3 endstops (x,y,z), got %d", len(cfg.Endstops))
	}
}
