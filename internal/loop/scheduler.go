package loop

import "fmt"

// maxFrameDelta caps a single frame's wall-clock delta. Gaps beyond this
// (suspended tab, debugger pause) would otherwise flood the accumulator.
const maxFrameDelta = 0.25

type Config struct {
	// FixedDt is the physics step size in seconds.
	FixedDt float64 `yaml:"fixed_dt"`
	// MaxSubSteps bounds physics updates per frame tick. When the
	// accumulator holds more than MaxSubSteps*FixedDt, the excess stays
	// queued: temporal accuracy is sacrificed for a bounded tick cost.
	MaxSubSteps int `yaml:"max_sub_steps"`
}

func DefaultConfig() Config {
	return Config{FixedDt: 1.0 / 60.0, MaxSubSteps: 5}
}

func (c Config) Validate() error {
	if c.FixedDt <= 0 {
		return fmt.Errorf("fixed dt must be positive, got %f", c.FixedDt)
	}
	if c.MaxSubSteps < 1 {
		return fmt.Errorf("max sub steps must be at least 1, got %d", c.MaxSubSteps)
	}
	return nil
}

// Scheduler converts variable-rate frame ticks into a deterministic sequence
// of fixed-size physics updates plus exactly one frame update per tick. The
// fixed callback always receives the identical FixedDt, so physics behavior
// is independent of display refresh rate; the frame callback receives the
// interpolation alpha for rendering between physics states.
type Scheduler struct {
	cfg   *Config
	clock FrameClock
	fixed func(dt float64)
	frame func(dt, alpha float64)

	accumulator float64
	lastTime    float64
	running     bool
	pending     Handle
	hasPending  bool
}

// New builds a scheduler against the given frame clock. cfg is held by
// reference so tuning takes effect on the next tick. Either callback may be
// nil.
func New(cfg *Config, clock FrameClock, fixed func(dt float64), frame func(dt, alpha float64)) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{cfg: cfg, clock: clock, fixed: fixed, frame: frame}, nil
}

// Start resets the accumulator and requests the first tick. Calling Start on
// a running scheduler is a no-op.
func (s *Scheduler) Start() {
	if s.running {
		return
	}
	s.running = true
	s.accumulator = 0
	s.lastTime = 0
	s.schedule()
}

// Stop cancels the pending tick request. Idempotent. A tick already being
// delivered runs to completion; it observes running=false and does nothing.
func (s *Scheduler) Stop() {
	if !s.running {
		return
	}
	s.running = false
	if s.hasPending {
		s.clock.CancelTick(s.pending)
		s.hasPending = false
	}
}

func (s *Scheduler) Running() bool { return s.running }

// Accumulator reports unconsumed simulated time in seconds.
func (s *Scheduler) Accumulator() float64 { return s.accumulator }

// Tick is the frame-clock callback. nowMillis is a monotonic millisecond
// timestamp. The next tick is requested before any callback runs, so the
// loop survives slow callbacks.
//
// The first tick after Start only records the timestamp: it performs no
// simulation and no frame update, so the first observed dt is always a real
// frame delta rather than "time since Start".
func (s *Scheduler) Tick(nowMillis float64) {
	if !s.running {
		return
	}
	s.schedule()

	now := nowMillis / 1000
	if s.lastTime == 0 {
		s.lastTime = now
		return
	}

	dt := now - s.lastTime
	if dt < 0 {
		// Regressing host clock; never drive the accumulator negative.
		dt = 0
	}
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}
	s.lastTime = now
	s.accumulator += dt

	fixedDt := s.cfg.FixedDt
	maxSteps := s.cfg.MaxSubSteps
	if fixedDt <= 0 {
		if s.frame != nil {
			s.frame(dt, 0)
		}
		return
	}

	steps := 0
	for s.accumulator >= fixedDt && steps < maxSteps {
		if s.fixed != nil {
			s.fixed(fixedDt)
		}
		s.accumulator -= fixedDt
		steps++
	}

	// Alpha is the fraction of a physics step not yet simulated. It exceeds
	// 1 under sustained overload once sub-stepping is capped; the renderer
	// then extrapolates. Deliberately not clamped.
	alpha := s.accumulator / fixedDt
	if s.frame != nil {
		s.frame(dt, alpha)
	}
}

func (s *Scheduler) schedule() {
	s.pending = s.clock.RequestTick(s.Tick)
	s.hasPending = true
}
