package vehicle

import (
	"math"
	"testing"

	"github.com/san-kum/drivesim/internal/input"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"zero max speed", func(c *Config) { c.MaxSpeedApprox = 0 }, false},
		{"negative force", func(c *Config) { c.MaxForce = -1 }, false},
		{"falloff above 1", func(c *Config) { c.SteerFalloff = 1.5 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSteeringDirection(t *testing.T) {
	cfg := DefaultConfig()
	m := NewMapper(&cfg)

	c := m.Update(input.Directives{Left: true}, 0)
	if c.Steering <= 0 {
		t.Errorf("left should steer positive, got %f", c.Steering)
	}

	m.Reset()
	c = m.Update(input.Directives{Right: true}, 0)
	if c.Steering >= 0 {
		t.Errorf("right should steer negative, got %f", c.Steering)
	}
}

func TestSteeringNeverExceedsEffectiveMax(t *testing.T) {
	cfg := DefaultConfig()
	m := NewMapper(&cfg)

	dirs := []input.Directives{
		{Left: true}, {Left: true}, {Right: true}, {}, {Left: true, Forward: true},
	}
	for step := 0; step < 500; step++ {
		d := dirs[step%len(dirs)]
		speed := float64(step%40) * 1.1 // sweep 0..43 m/s, past MaxSpeedApprox
		c := m.Update(d, speed)

		ratio := math.Min(speed/cfg.MaxSpeedApprox, 1)
		effectiveMax := cfg.MaxSteer * (1 - ratio*cfg.SteerFalloff)
		if math.Abs(c.Steering) > effectiveMax+1e-12 {
			t.Fatalf("step %d: |steer| %f exceeds effective max %f", step, c.Steering, effectiveMax)
		}
	}
}

func TestSteeringAuthorityShrinksWithSpeed(t *testing.T) {
	cfg := DefaultConfig()
	m := NewMapper(&cfg)

	var slow float64
	for i := 0; i < 200; i++ {
		slow = m.Update(input.Directives{Left: true}, 0).Steering
	}

	m.Reset()
	var fast float64
	for i := 0; i < 200; i++ {
		fast = m.Update(input.Directives{Left: true}, cfg.MaxSpeedApprox).Steering
	}

	if fast >= slow {
		t.Errorf("steering at top speed (%f) should be tighter than at rest (%f)", fast, slow)
	}
	want := cfg.MaxSteer * (1 - cfg.SteerFalloff)
	if math.Abs(fast-want) > 1e-6 {
		t.Errorf("converged steer at top speed = %f, want %f", fast, want)
	}
}

func TestSteeringReturnIsSlower(t *testing.T) {
	cfg := DefaultConfig()
	m := NewMapper(&cfg)

	// Converge toward full left, then measure one step of each rate.
	for i := 0; i < 200; i++ {
		m.Update(input.Directives{Left: true}, 0)
	}
	full := m.CurrentSteer()

	m.Update(input.Directives{}, 0)
	afterRelease := m.CurrentSteer()
	returnDelta := full - afterRelease

	m.Reset()
	m.Update(input.Directives{Left: true}, 0)
	attackDelta := m.CurrentSteer()

	if returnDelta <= 0 {
		t.Fatal("steering did not move back toward center")
	}
	// Attack covers SteerSpeed of the gap, return only SteerReturnSpeed.
	if attackDelta/cfg.MaxSteer <= returnDelta/full {
		t.Errorf("return (%f of range) should be slower than attack (%f)",
			returnDelta/full, attackDelta/cfg.MaxSteer)
	}
}

func TestEngineForceMapping(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name  string
		d     input.Directives
		speed float64
		want  float64
	}{
		{"forward", input.Directives{Forward: true}, 0, -cfg.MaxForce},
		{"backward", input.Directives{Backward: true}, 0, cfg.MaxForce * cfg.ReverseForceRatio},
		{"coast", input.Directives{}, 10, 0},
		{"forward wins over backward", input.Directives{Forward: true, Backward: true}, 0, -cfg.MaxForce},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMapper(&cfg)
			c := m.Update(tt.d, tt.speed)
			if math.Abs(c.EngineForce-tt.want) > 1e-9 {
				t.Errorf("engine force = %f, want %f", c.EngineForce, tt.want)
			}
		})
	}
}

func TestSpeedLimiterTaper(t *testing.T) {
	cfg := DefaultConfig()
	m := NewMapper(&cfg)

	// Below the taper threshold: full force.
	c := m.Update(input.Directives{Forward: true}, 0.69*cfg.MaxSpeedApprox)
	if c.EngineForce != -cfg.MaxForce {
		t.Errorf("force below taper start = %f, want %f", c.EngineForce, -cfg.MaxForce)
	}

	// Midway through the taper: half force.
	c = m.Update(input.Directives{Forward: true}, 0.85*cfg.MaxSpeedApprox)
	if math.Abs(c.EngineForce - -cfg.MaxForce/2) > 1e-9 {
		t.Errorf("force mid-taper = %f, want %f", c.EngineForce, -cfg.MaxForce/2)
	}

	// At and beyond the limit: zero, never positive.
	for _, s := range []float64{1.0, 1.2, 3.0} {
		c = m.Update(input.Directives{Forward: true}, s*cfg.MaxSpeedApprox)
		if c.EngineForce != 0 {
			t.Errorf("force at %.0f%% of max speed = %f, want 0", s*100, c.EngineForce)
		}
	}
}

func TestBrakeForce(t *testing.T) {
	cfg := DefaultConfig()
	m := NewMapper(&cfg)

	if c := m.Update(input.Directives{Brake: true}, 5); c.BrakeForce != cfg.BrakeForce {
		t.Errorf("brake force = %f, want %f", c.BrakeForce, cfg.BrakeForce)
	}
	if c := m.Update(input.Directives{}, 5); c.BrakeForce != 0 {
		t.Errorf("brake force = %f, want 0 when released", c.BrakeForce)
	}
}

func TestReverseNotTapered(t *testing.T) {
	cfg := DefaultConfig()
	m := NewMapper(&cfg)
	c := m.Update(input.Directives{Backward: true}, cfg.MaxSpeedApprox)
	if c.EngineForce != cfg.MaxForce*cfg.ReverseForceRatio {
		t.Errorf("reverse force = %f, limiter should only apply forward", c.EngineForce)
	}
}
