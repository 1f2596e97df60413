package loop

// Handle identifies a pending tick request so it can be cancelled.
type Handle uint64

// FrameClock is the host display clock: it delivers one callback per refresh
// with a monotonic millisecond timestamp. Implementations hold at most one
// pending request per scheduler.
type FrameClock interface {
	RequestTick(fn func(nowMillis float64)) Handle
	CancelTick(h Handle)
}

// ManualClock is a FrameClock driven by explicit timestamps. It backs
// headless runs and tests, where frame delivery must be deterministic.
type ManualClock struct {
	next    func(float64)
	handle  Handle
	pending bool
}

func NewManualClock() *ManualClock { return &ManualClock{} }

func (c *ManualClock) RequestTick(fn func(nowMillis float64)) Handle {
	c.handle++
	c.next = fn
	c.pending = true
	return c.handle
}

func (c *ManualClock) CancelTick(h Handle) {
	if h == c.handle {
		c.pending = false
		c.next = nil
	}
}

// Pending reports whether a tick request is outstanding.
func (c *ManualClock) Pending() bool { return c.pending }

// Fire delivers the pending tick at the given timestamp. It returns false
// when no request is outstanding. The request is consumed before the
// callback runs, matching how a host clock delivers one callback per
// request.
func (c *ManualClock) Fire(nowMillis float64) bool {
	if !c.pending || c.next == nil {
		return false
	}
	fn := c.next
	c.pending = false
	c.next = nil
	fn(nowMillis)
	return true
}
