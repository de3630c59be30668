package signup

import (
	"fmt"
	"sync"
	"time"
)

// DefaultCodeSeconds is the lifetime of a phone verification code.
const DefaultCodeSeconds = 180

// Countdown counts down once per second from a fixed duration to zero.
//
// Each Start owns exactly one ticker and one goroutine. The ticker is
// stopped when the run is cancelled, replaced by another Start, or expires.
// OnTick and OnExpire are invoked from the countdown goroutine without the
// countdown lock held, so they may call back into the countdown.
type Countdown struct {
	clock    Clock
	onTick   func(remaining int)
	onExpire func()

	mu        sync.Mutex
	remaining int
	stop      chan struct{} // nil when idle
}

// CountdownOpts configures a Countdown.
type CountdownOpts struct {
	// Clock defaults to RealClock.
	Clock    Clock
	OnTick   func(remaining int)
	OnExpire func()
}

// NewCountdown creates an idle countdown.
func NewCountdown(opts CountdownOpts) *Countdown {
	clock := opts.Clock
	if clock == nil {
		clock = RealClock{}
	}
	return &Countdown{
		clock:    clock,
		onTick:   opts.OnTick,
		onExpire: opts.OnExpire,
	}
}

// Start begins a new run at seconds. A run already in progress is
// cancelled first.
func (c *Countdown) Start(seconds int) {
	if seconds < 0 {
		seconds = 0
	}

	c.mu.Lock()
	c.cancelLocked()
	c.remaining = seconds
	stop := make(chan struct{})
	c.stop = stop
	ticker := c.clock.NewTicker(time.Second)
	c.mu.Unlock()

	go c.run(ticker, stop)
}

// Cancel stops the current run, leaving the remaining value in place.
// A callback already past the lock when Cancel is called may still run once;
// no later tick of the cancelled run is counted or delivered.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	c.cancelLocked()
	c.mu.Unlock()
}

// Remaining returns the seconds left in the current or last run.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Running reports whether a run is in progress.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}

func (c *Countdown) cancelLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *Countdown) run(ticker Ticker, stop chan struct{}) {
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			c.mu.Lock()
			// A tick can win the select against a concurrent cancel.
			if c.stop != stop {
				c.mu.Unlock()
				return
			}
			if c.remaining > 0 {
				c.remaining--
			}
			remaining := c.remaining
			expired := remaining == 0
			if expired {
				c.stop = nil
			}
			c.mu.Unlock()

			if c.onTick != nil {
				c.onTick(remaining)
			}
			if expired {
				if c.onExpire != nil {
					c.onExpire()
				}
				return
			}
		}
	}
}

// FormatRemaining renders seconds as MM:SS.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
