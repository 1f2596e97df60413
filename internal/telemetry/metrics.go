// Package telemetry implements run metrics over per-step samples.
package telemetry

import "github.com/san-kum/drivesim/internal/sim"

type TopSpeed struct {
	max float64
}

func NewTopSpeed() *TopSpeed { return &TopSpeed{} }

func (m *TopSpeed) Name() string { return "top_speed" }
func (m *TopSpeed) Observe(s sim.Sample) {
	if s.Speed > m.max {
		m.max = s.Speed
	}
}
func (m *TopSpeed) Value() float64 { return m.max }
func (m *TopSpeed) Reset()         { m.max = 0 }

type AvgSpeed struct {
	sum     float64
	samples int
}

func NewAvgSpeed() *AvgSpeed { return &AvgSpeed{} }

func (m *AvgSpeed) Name() string { return "avg_speed" }
func (m *AvgSpeed) Observe(s sim.Sample) {
	m.sum += s.Speed
	m.samples++
}
func (m *AvgSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}
func (m *AvgSpeed) Reset() {
	m.sum = 0
	m.samples = 0
}

// Distance integrates speed over sample time deltas.
type Distance struct {
	total    float64
	lastTime float64
	first    bool
}

func NewDistance() *Distance { return &Distance{first: true} }

func (m *Distance) Name() string { return "distance" }
func (m *Distance) Observe(s sim.Sample) {
	if m.first {
		m.first = false
	} else if dt := s.Time - m.lastTime; dt > 0 {
		m.total += s.Speed * dt
	}
	m.lastTime = s.Time
}
func (m *Distance) Value() float64 { return m.total }
func (m *Distance) Reset() {
	m.total = 0
	m.lastTime = 0
	m.first = true
}

// Uprightness reports the fraction of samples spent above the given upDot
// threshold: 1.0 means the vehicle never tilted past it.
type Uprightness struct {
	threshold  float64
	violations int
	samples    int
}

func NewUprightness(threshold float64) *Uprightness {
	return &Uprightness{threshold: threshold}
}

func (m *Uprightness) Name() string { return "uprightness" }
func (m *Uprightness) Observe(s sim.Sample) {
	m.samples++
	if s.UpDot < m.threshold {
		m.violations++
	}
}
func (m *Uprightness) Value() float64 {
	if m.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(m.violations)/float64(m.samples)
}
func (m *Uprightness) Reset() {
	m.violations = 0
	m.samples = 0
}

// Standard returns the default metric set for a run.
func Standard(tiltThreshold float64) []sim.Metric {
	return []sim.Metric{
		NewTopSpeed(),
		NewAvgSpeed(),
		NewDistance(),
		NewUprightness(tiltThreshold),
	}
}
