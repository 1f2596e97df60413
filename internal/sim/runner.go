package sim

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/san-kum/drivesim/internal/loop"
	"github.com/san-kum/drivesim/internal/stability"
)

// Result collects a headless run's outcome.
type Result struct {
	Samples    []Sample
	Metrics    map[string]float64
	Stats      stability.Stats
	FixedSteps int
	Frames     int
}

// Runner drives a World through the scheduler against a manual frame clock
// at a simulated display refresh rate. Identical config and input scripts
// produce identical results.
type Runner struct {
	world *World
	log   zerolog.Logger
}

func NewRunner(world *World, log zerolog.Logger) *Runner {
	return &Runner{world: world, log: log}
}

func (r *Runner) Run(ctx context.Context) (*Result, error) {
	w := r.world
	cfg := w.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.FrameRate < 1 {
		return nil, fmt.Errorf("frame rate must be at least 1, got %d", cfg.FrameRate)
	}

	for _, m := range w.metrics {
		m.Reset()
	}

	result := &Result{Metrics: make(map[string]float64)}
	w.AddObserver(observerFunc(func(s Sample) {
		result.Samples = append(result.Samples, s)
	}))

	clock := loop.NewManualClock()
	scheduler, err := loop.New(&cfg.Loop, clock, w.FixedUpdate, func(dt, alpha float64) {
		result.Frames++
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().
		Float64("duration", cfg.Duration).
		Float64("fixed_dt", cfg.Loop.FixedDt).
		Int("frame_rate", cfg.FrameRate).
		Msg("starting run")

	scheduler.Start()
	defer scheduler.Stop()

	frameMs := 1000.0 / float64(cfg.FrameRate)
	frames := int(cfg.Duration*float64(cfg.FrameRate)) + 1 // +1 warm-up tick
	now := 1000.0

	for i := 0; i <= frames; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		clock.Fire(now)
		now += frameMs

		if s := w.Last(); w.Steps() > 0 && !s.IsValid() {
			err := &StepError{Step: w.Steps(), Time: s.Time, Wrapped: ErrUnstable}
			r.log.Error().Err(err).Msg("aborting run")
			return result, err
		}
	}

	result.FixedSteps = w.Steps()
	result.Stats = w.Corrector().Stats()
	for _, m := range w.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	r.log.Info().
		Int("fixed_steps", result.FixedSteps).
		Int("frames", result.Frames).
		Msg("run complete")

	return result, nil
}

type observerFunc func(Sample)

func (f observerFunc) OnStep(s Sample) { f(s) }
