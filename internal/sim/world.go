package sim

import (
	"github.com/san-kum/drivesim/internal/body"
	"github.com/san-kum/drivesim/internal/config"
	"github.com/san-kum/drivesim/internal/geom"
	"github.com/san-kum/drivesim/internal/input"
	"github.com/san-kum/drivesim/internal/npc"
	"github.com/san-kum/drivesim/internal/stability"
	"github.com/san-kum/drivesim/internal/vehicle"
)

// Sample is one fixed step's outcome, handed to metrics and observers.
type Sample struct {
	Time     float64
	Position geom.Vec3
	Velocity geom.Vec3
	Speed    float64
	UpDot    float64
	Controls vehicle.Controls
}

func (s Sample) IsValid() bool {
	return s.Position.IsValid() && s.Velocity.IsValid()
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample)
}

// World wires input, control mapping, the rigid body, stability correction
// and traffic into a single fixed update. It owns the per-step ordering:
// sample input, map controls, advance the solver, then correct. The
// corrector is the last writer of body state in a cycle.
type World struct {
	cfg       *config.Config
	body      body.Body
	source    input.Source
	mapper    *vehicle.Mapper
	corrector *stability.Corrector
	fleet     *npc.Fleet

	time      float64
	steps     int
	metrics   []Metric
	observers []Observer
	last      Sample
}

func NewWorld(cfg *config.Config, b body.Body, src input.Source) *World {
	return &World{
		cfg:       cfg,
		body:      b,
		source:    src,
		mapper:    vehicle.NewMapper(&cfg.Vehicle),
		corrector: stability.NewCorrector(&cfg.Stability),
		fleet:     npc.NewFleet(&cfg.Traffic),
	}
}

func (w *World) Body() body.Body                  { return w.body }
func (w *World) Corrector() *stability.Corrector { return w.corrector }
func (w *World) Fleet() *npc.Fleet               { return w.fleet }
func (w *World) Time() float64                   { return w.time }
func (w *World) Steps() int                      { return w.steps }

// Last returns the most recent sample.
func (w *World) Last() Sample { return w.last }

func (w *World) AddMetric(m Metric)     { w.metrics = append(w.metrics, m) }
func (w *World) AddObserver(o Observer) { w.observers = append(w.observers, o) }

// FixedUpdate runs one deterministic physics step. It is the scheduler's
// fixed callback and always receives the identical dt.
func (w *World) FixedUpdate(dt float64) {
	d := w.source.Sample()
	c := w.mapper.Update(d, w.body.Speed())
	w.body.SetControls(c.EngineForce, c.Steering, c.BrakeForce)

	w.body.Advance(dt)
	w.corrector.Apply(w.body)
	w.fleet.Step(dt)

	w.time += dt
	w.steps++
	w.last = Sample{
		Time:     w.time,
		Position: w.body.Position(),
		Velocity: w.body.Velocity(),
		Speed:    w.body.Speed(),
		UpDot:    w.corrector.UpDot(),
		Controls: c,
	}

	for _, m := range w.metrics {
		m.Observe(w.last)
	}
	for _, o := range w.observers {
		o.OnStep(w.last)
	}
}
