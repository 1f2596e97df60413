package optim

import (
	"context"
	"fmt"
	"testing"

	"github.com/san-kum/drivesim/internal/config"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	gs, err := NewGridSearch(
		[]string{"a", "b"},
		[][]float64{{1, 2, 3}, {0, 1}},
	)
	if err != nil {
		t.Fatal(err)
	}

	evals := 0
	best, score, err := gs.Search(context.Background(), func(ctx context.Context, p map[string]float64) (float64, error) {
		evals++
		return (p["a"]-2)*(p["a"]-2) + p["b"], nil
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if evals != 6 {
		t.Errorf("evaluated %d combinations, want 6", evals)
	}
	if best["a"] != 2 || best["b"] != 0 {
		t.Errorf("best params = %v, want a=2 b=0", best)
	}
	if score != 0 {
		t.Errorf("best score = %f, want 0", score)
	}
}

func TestGridSearchSkipsFailedEvals(t *testing.T) {
	gs, err := NewGridSearch([]string{"a"}, [][]float64{{1, 2, 3}})
	if err != nil {
		t.Fatal(err)
	}

	best, _, err := gs.Search(context.Background(), func(ctx context.Context, p map[string]float64) (float64, error) {
		if p["a"] == 1 {
			return 0, fmt.Errorf("unstable")
		}
		return p["a"], nil
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if best["a"] != 2 {
		t.Errorf("best a = %f, want 2 (a=1 failed)", best["a"])
	}
}

func TestGridSearchAllEvalsFail(t *testing.T) {
	gs, err := NewGridSearch([]string{"a"}, [][]float64{{1}})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := gs.Search(context.Background(), func(ctx context.Context, p map[string]float64) (float64, error) {
		return 0, fmt.Errorf("boom")
	}); err == nil {
		t.Error("expected error when every evaluation fails")
	}
}

func TestGridSearchCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gs, err := NewGridSearch([]string{"a"}, [][]float64{{1, 2}})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := gs.Search(ctx, func(ctx context.Context, p map[string]float64) (float64, error) {
		return 0, nil
	}); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestNewGridSearchValidation(t *testing.T) {
	if _, err := NewGridSearch(nil, nil); err == nil {
		t.Error("empty search should be rejected")
	}
	if _, err := NewGridSearch([]string{"a"}, [][]float64{}); err == nil {
		t.Error("name/value mismatch should be rejected")
	}
	if _, err := NewGridSearch([]string{"a"}, [][]float64{{}}); err == nil {
		t.Error("empty value list should be rejected")
	}
}

func TestApply(t *testing.T) {
	cfg := config.DefaultConfig()
	err := Apply(cfg, map[string]float64{
		"vehicle.max_force":      4000,
		"body.lateral_grip":      2.5,
		"stability.tilt_damping": 0.9,
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.Vehicle.MaxForce != 4000 {
		t.Errorf("max_force = %f, want 4000", cfg.Vehicle.MaxForce)
	}
	if cfg.Body.LateralGrip != 2.5 {
		t.Errorf("lateral_grip = %f, want 2.5", cfg.Body.LateralGrip)
	}
	if cfg.Stability.TiltDamping != 0.9 {
		t.Errorf("tilt_damping = %f, want 0.9", cfg.Stability.TiltDamping)
	}
}

func TestApplyUnknownName(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := Apply(cfg, map[string]float64{"vehicle.warp_drive": 1}); err == nil {
		t.Error("unknown tunable should be rejected")
	}
}
