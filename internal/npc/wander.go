// Package npc drives ambient traffic vehicles on a kinematic wander loop.
// Each car runs an explicit finite-state machine; transitions are declared
// in a single table rather than spread across boolean flags.
package npc

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/drivesim/internal/geom"
)

type State int

const (
	StateCruise State = iota
	StateTurn
	StateWait
	StateRecover
)

func (s State) String() string {
	switch s {
	case StateCruise:
		return "cruise"
	case StateTurn:
		return "turn"
	case StateWait:
		return "wait"
	case StateRecover:
		return "recover"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Event int

const (
	EventTimerExpired Event = iota
	EventBlocked
	EventCleared
	EventStuck
)

func (e Event) String() string {
	switch e {
	case EventTimerExpired:
		return "timer_expired"
	case EventBlocked:
		return "blocked"
	case EventCleared:
		return "cleared"
	case EventStuck:
		return "stuck"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// transitions is the full wander state machine. Events missing from a
// state's row are ignored in that state.
var transitions = map[State]map[Event]State{
	StateCruise: {
		EventTimerExpired: StateTurn,
		EventBlocked:      StateWait,
	},
	StateTurn: {
		EventTimerExpired: StateCruise,
		EventBlocked:      StateWait,
	},
	StateWait: {
		EventCleared: StateCruise,
		EventStuck:   StateRecover,
	},
	StateRecover: {
		EventTimerExpired: StateCruise,
	},
}

// Next applies the transition table. It returns the current state unchanged
// for events the state does not react to.
func Next(s State, e Event) State {
	if row, ok := transitions[s]; ok {
		if next, ok := row[e]; ok {
			return next
		}
	}
	return s
}

type Config struct {
	Count        int     `yaml:"count"`
	CruiseSpeed  float64 `yaml:"cruise_speed"`
	TurnRate     float64 `yaml:"turn_rate"`
	BlockRadius  float64 `yaml:"block_radius"`
	WanderRadius float64 `yaml:"wander_radius"`
	Seed         int64   `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		Count:        6,
		CruiseSpeed:  8,
		TurnRate:     1.2,
		BlockRadius:  6,
		WanderRadius: 120,
		Seed:         1,
	}
}

// Car is one traffic vehicle. Cars are kinematic: they follow their heading
// at a smoothed speed and never touch the player's rigid body.
type Car struct {
	Pos     geom.Vec3
	Heading float64
	Speed   float64

	state      State
	timer      float64
	waitTime   float64
	turnTarget float64
}

func (c *Car) State() State { return c.state }

// Fleet advances all traffic cars once per fixed update.
type Fleet struct {
	Cars []Car
	cfg  *Config
	rng  *rand.Rand
}

func NewFleet(cfg *Config) *Fleet {
	rng := rand.New(rand.NewSource(cfg.Seed))
	cars := make([]Car, cfg.Count)
	for i := range cars {
		ang := rng.Float64() * 2 * math.Pi
		r := cfg.WanderRadius * (0.3 + 0.7*rng.Float64())
		cars[i] = Car{
			Pos:     geom.Vec3{X: r * math.Cos(ang), Z: r * math.Sin(ang)},
			Heading: rng.Float64() * 2 * math.Pi,
			state:   StateCruise,
			timer:   2 + rng.Float64()*6,
		}
	}
	return &Fleet{Cars: cars, cfg: cfg, rng: rng}
}

// Step advances every car by one fixed step.
func (f *Fleet) Step(dt float64) {
	for i := range f.Cars {
		f.stepCar(&f.Cars[i], dt)
	}
}

func (f *Fleet) stepCar(c *Car, dt float64) {
	cfg := f.cfg
	c.timer -= dt

	blocked := f.blockedAhead(c)

	switch c.state {
	case StateCruise:
		c.Speed = approach(c.Speed, cfg.CruiseSpeed, 4*dt)
		if blocked {
			f.fire(c, EventBlocked)
		} else if c.timer <= 0 {
			f.fire(c, EventTimerExpired)
		}

	case StateTurn:
		c.Speed = approach(c.Speed, cfg.CruiseSpeed*0.6, 4*dt)
		c.Heading = turnToward(c.Heading, c.turnTarget, cfg.TurnRate*dt)
		if blocked {
			f.fire(c, EventBlocked)
		} else if c.timer <= 0 || angDiff(c.Heading, c.turnTarget) == 0 {
			f.fire(c, EventTimerExpired)
		}

	case StateWait:
		c.Speed = approach(c.Speed, 0, 10*dt)
		c.waitTime += dt
		if !blocked {
			f.fire(c, EventCleared)
		} else if c.waitTime > 4 {
			f.fire(c, EventStuck)
		}

	case StateRecover:
		c.Speed = approach(c.Speed, -cfg.CruiseSpeed*0.4, 4*dt)
		if c.timer <= 0 {
			f.fire(c, EventTimerExpired)
		}
	}

	// Drift back toward the wander disc so cars never escape the scene.
	if c.Pos.Length() > cfg.WanderRadius && c.state == StateCruise {
		inward := math.Atan2(-c.Pos.X, -c.Pos.Z)
		c.Heading = turnToward(c.Heading, inward, cfg.TurnRate*dt)
	}

	c.Pos.X += math.Sin(c.Heading) * c.Speed * dt
	c.Pos.Z += math.Cos(c.Heading) * c.Speed * dt
}

// fire applies one event and performs the entry action of the new state.
func (f *Fleet) fire(c *Car, e Event) {
	next := Next(c.state, e)
	if next == c.state {
		return
	}
	c.state = next
	c.waitTime = 0

	switch next {
	case StateCruise:
		c.timer = 2 + f.rng.Float64()*6
	case StateTurn:
		c.timer = 1 + f.rng.Float64()*2
		c.turnTarget = c.Heading + (f.rng.Float64()-0.5)*math.Pi
	case StateRecover:
		c.timer = 1.5
	}
}

func (f *Fleet) blockedAhead(c *Car) bool {
	ahead := geom.Vec3{
		X: c.Pos.X + math.Sin(c.Heading)*f.cfg.BlockRadius,
		Z: c.Pos.Z + math.Cos(c.Heading)*f.cfg.BlockRadius,
	}
	for i := range f.Cars {
		o := &f.Cars[i]
		if o == c {
			continue
		}
		if o.Pos.Sub(ahead).Length() < f.cfg.BlockRadius*0.6 {
			return true
		}
	}
	return false
}

func approach(v, target, step float64) float64 {
	if math.Abs(target-v) <= step {
		return target
	}
	if target > v {
		return v + step
	}
	return v - step
}

func turnToward(h, target, step float64) float64 {
	d := angDiff(target, h)
	if math.Abs(d) <= step {
		return target
	}
	if d > 0 {
		return h + step
	}
	return h - step
}

// angDiff returns the signed smallest difference a-b in (-π, π].
func angDiff(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	}
	if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}
