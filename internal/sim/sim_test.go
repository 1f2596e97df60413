package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/san-kum/drivesim/internal/body"
	"github.com/san-kum/drivesim/internal/config"
	"github.com/san-kum/drivesim/internal/geom"
	"github.com/san-kum/drivesim/internal/input"
)

func testWorld(segments []input.Segment) *World {
	cfg := config.DefaultConfig()
	cfg.Duration = 5
	script := input.NewScript(segments, cfg.Loop.FixedDt)
	return NewWorld(cfg, body.NewRigidBody(cfg.Body), script)
}

func fullThrottle(seconds float64) []input.Segment {
	return []input.Segment{{Duration: seconds, Forward: true}}
}

func TestFixedUpdateOrdering(t *testing.T) {
	w := testWorld(fullThrottle(10))
	w.FixedUpdate(1.0 / 60.0)

	s := w.Last()
	if s.Time != 1.0/60.0 {
		t.Errorf("time = %f, want one fixed step", s.Time)
	}
	if s.Controls.EngineForce >= 0 {
		t.Errorf("forward directive should map to negative engine force, got %f", s.Controls.EngineForce)
	}
	if w.Steps() != 1 {
		t.Errorf("steps = %d, want 1", w.Steps())
	}
}

func TestWorldDeterminism(t *testing.T) {
	w1 := testWorld(fullThrottle(10))
	w2 := testWorld(fullThrottle(10))

	for i := 0; i < 600; i++ {
		w1.FixedUpdate(1.0 / 60.0)
		w2.FixedUpdate(1.0 / 60.0)
	}
	if w1.Last() != w2.Last() {
		t.Errorf("identical worlds diverged:\n%+v\n%+v", w1.Last(), w2.Last())
	}
}

func TestSpeedStaysUnderCap(t *testing.T) {
	w := testWorld(fullThrottle(60))
	speedCap := w.cfg.Stability.MaxVel
	for i := 0; i < 60*30; i++ {
		w.FixedUpdate(1.0 / 60.0)
		if s := w.Last().Speed; s > speedCap+1e-9 {
			t.Fatalf("step %d: speed %f exceeds cap %f", i, s, speedCap)
		}
	}
}

func TestRunnerProducesResult(t *testing.T) {
	w := testWorld(fullThrottle(10))
	r := NewRunner(w, zerolog.Nop())

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.FixedSteps == 0 {
		t.Error("run performed no fixed steps")
	}
	if result.Frames == 0 {
		t.Error("run performed no frame updates")
	}
	if len(result.Samples) != result.FixedSteps {
		t.Errorf("%d samples for %d fixed steps", len(result.Samples), result.FixedSteps)
	}
	// 5 s at 60 Hz with fixedDt=1/60: one step per frame after warm-up.
	want := int(w.cfg.Duration * 60)
	if math.Abs(float64(result.FixedSteps-want)) > 2 {
		t.Errorf("fixed steps = %d, want about %d", result.FixedSteps, want)
	}
}

func TestRunnerDeterministic(t *testing.T) {
	run := func() *Result {
		w := testWorld([]input.Segment{
			{Duration: 2, Forward: true},
			{Duration: 1, Forward: true, Left: true},
			{Duration: 2, Brake: true},
		})
		r := NewRunner(w, zerolog.Nop())
		result, err := r.Run(context.Background())
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return result
	}

	a, b := run(), run()
	if len(a.Samples) != len(b.Samples) {
		t.Fatalf("sample counts differ: %d vs %d", len(a.Samples), len(b.Samples))
	}
	last := len(a.Samples) - 1
	if a.Samples[last] != b.Samples[last] {
		t.Errorf("final samples differ:\n%+v\n%+v", a.Samples[last], b.Samples[last])
	}
}

func TestRunnerRejectsBadConfig(t *testing.T) {
	w := testWorld(fullThrottle(1))
	w.cfg.Duration = -1
	r := NewRunner(w, zerolog.Nop())
	if _, err := r.Run(context.Background()); err == nil {
		t.Error("expected error for negative duration")
	}
}

func TestRunnerCancellation(t *testing.T) {
	w := testWorld(fullThrottle(10))
	r := NewRunner(w, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// nanBody diverges after a set number of substeps.
type nanBody struct {
	*body.RigidBody
	steps int
}

func (b *nanBody) Advance(dt float64) {
	b.steps--
	if b.steps <= 0 {
		b.SetVelocity(geom.Vec3{X: math.NaN()})
		return
	}
	b.RigidBody.Advance(dt)
}

func TestRunnerAbortsOnDivergence(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Duration = 5
	script := input.NewScript(fullThrottle(10), cfg.Loop.FixedDt)
	w := NewWorld(cfg, &nanBody{RigidBody: body.NewRigidBody(cfg.Body), steps: 30}, script)
	r := NewRunner(w, zerolog.Nop())

	_, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected divergence error")
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected *StepError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrUnstable) {
		t.Errorf("wrapped error = %v, want ErrUnstable", stepErr.Unwrap())
	}
}
