// Package optim searches tuning parameters by scoring headless runs over
// a value grid.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/drivesim/internal/config"
)

// Objective scores one parameter assignment. Lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	names  []string
	values [][]float64
}

func NewGridSearch(names []string, values [][]float64) (*GridSearch, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no parameters to search")
	}
	if len(names) != len(values) {
		return nil, fmt.Errorf("parameter names and value lists mismatch: %d vs %d", len(names), len(values))
	}
	for i, vs := range values {
		if len(vs) == 0 {
			return nil, fmt.Errorf("parameter %q has no candidate values", names[i])
		}
	}
	return &GridSearch{names: names, values: values}, nil
}

// Search evaluates every combination and returns the best assignment and
// its score. Combinations whose evaluation fails are skipped.
func (g *GridSearch) Search(ctx context.Context, eval Objective) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.walk(ctx, 0, make(map[string]float64), eval, &best, &bestParams); err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, fmt.Errorf("no parameter combination produced a score")
	}
	return bestParams, best, nil
}

func (g *GridSearch) walk(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.names) {
		score, err := eval(ctx, current)
		if err != nil {
			return nil
		}
		if score < *best {
			*best = score
			picked := make(map[string]float64, len(current))
			for k, v := range current {
				picked[k] = v
			}
			*bestParams = picked
		}
		return nil
	}

	for _, v := range g.values[depth] {
		current[g.names[depth]] = v
		if err := g.walk(ctx, depth+1, current, eval, best, bestParams); err != nil {
			return err
		}
	}
	delete(current, g.names[depth])
	return nil
}

// Apply writes named parameters onto a config. Names join the yaml section
// and field, e.g. "vehicle.max_force".
func Apply(cfg *config.Config, params map[string]float64) error {
	for name, v := range params {
		switch name {
		case "vehicle.max_force":
			cfg.Vehicle.MaxForce = v
		case "vehicle.max_steer":
			cfg.Vehicle.MaxSteer = v
		case "vehicle.steer_falloff":
			cfg.Vehicle.SteerFalloff = v
		case "vehicle.brake_force":
			cfg.Vehicle.BrakeForce = v
		case "stability.correction_strength":
			cfg.Stability.CorrectionStrength = v
		case "stability.tilt_damping":
			cfg.Stability.TiltDamping = v
		case "body.lateral_grip":
			cfg.Body.LateralGrip = v
		case "body.steer_response":
			cfg.Body.SteerResponse = v
		default:
			return fmt.Errorf("unknown tunable %q", name)
		}
	}
	return nil
}
