// Package input collects driving directives from interactive and scripted
// sources. A Source is sampled exactly once per fixed update; the returned
// snapshot is immutable for that step.
package input

// Directives is one fixed step's worth of driver intent.
type Directives struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Brake    bool
}

type Source interface {
	Sample() Directives
}

// KeyState adapts key events to a Source. Terminals report key presses but
// not releases, so each direction is held for HoldSteps fixed updates after
// its last press and then decays.
type KeyState struct {
	HoldSteps int

	forward, backward, left, right, brake int
}

func NewKeyState(holdSteps int) *KeyState {
	if holdSteps < 1 {
		holdSteps = 1
	}
	return &KeyState{HoldSteps: holdSteps}
}

func (k *KeyState) PressForward()  { k.forward = k.HoldSteps }
func (k *KeyState) PressBackward() { k.backward = k.HoldSteps }
func (k *KeyState) PressLeft()     { k.left = k.HoldSteps }
func (k *KeyState) PressRight()    { k.right = k.HoldSteps }
func (k *KeyState) PressBrake()    { k.brake = k.HoldSteps }

// Sample reports the held directions and ages them by one step.
func (k *KeyState) Sample() Directives {
	d := Directives{
		Forward:  k.forward > 0,
		Backward: k.backward > 0,
		Left:     k.left > 0,
		Right:    k.right > 0,
		Brake:    k.brake > 0,
	}
	k.forward = dec(k.forward)
	k.backward = dec(k.backward)
	k.left = dec(k.left)
	k.right = dec(k.right)
	k.brake = dec(k.brake)
	return d
}

func dec(v int) int {
	if v > 0 {
		return v - 1
	}
	return 0
}
