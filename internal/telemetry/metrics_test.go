package telemetry

import (
	"math"
	"testing"

	"github.com/san-kum/drivesim/internal/sim"
)

func TestTopSpeed(t *testing.T) {
	m := NewTopSpeed()
	for _, s := range []float64{3, 12, 7, 11} {
		m.Observe(sim.Sample{Speed: s})
	}
	if m.Value() != 12 {
		t.Errorf("top speed = %f, want 12", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Errorf("reset top speed = %f, want 0", m.Value())
	}
}

func TestAvgSpeedEmpty(t *testing.T) {
	if v := NewAvgSpeed().Value(); v != 0 {
		t.Errorf("empty average = %f, want 0", v)
	}
}

func TestAvgSpeed(t *testing.T) {
	m := NewAvgSpeed()
	for _, s := range []float64{10, 20, 30} {
		m.Observe(sim.Sample{Speed: s})
	}
	if m.Value() != 20 {
		t.Errorf("avg speed = %f, want 20", m.Value())
	}
}

func TestDistance(t *testing.T) {
	m := NewDistance()
	dt := 1.0 / 60.0
	for i := 1; i <= 600; i++ {
		m.Observe(sim.Sample{Time: float64(i) * dt, Speed: 10})
	}
	// First sample only anchors the clock; 599 integrated steps follow.
	want := 10 * dt * 599
	if math.Abs(m.Value()-want) > 1e-9 {
		t.Errorf("distance = %f, want %f", m.Value(), want)
	}
}

func TestUprightness(t *testing.T) {
	m := NewUprightness(0.85)
	for i := 0; i < 8; i++ {
		m.Observe(sim.Sample{UpDot: 1})
	}
	for i := 0; i < 2; i++ {
		m.Observe(sim.Sample{UpDot: 0.3})
	}
	if m.Value() != 0.8 {
		t.Errorf("uprightness = %f, want 0.8", m.Value())
	}
}

func TestUprightnessEmpty(t *testing.T) {
	if v := NewUprightness(0.85).Value(); v != 1.0 {
		t.Errorf("empty uprightness = %f, want 1.0", v)
	}
}

func TestStandardNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Standard(0.85) {
		if seen[m.Name()] {
			t.Errorf("duplicate metric name %q", m.Name())
		}
		seen[m.Name()] = true
	}
}
