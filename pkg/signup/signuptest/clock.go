// Package signuptest provides a manual clock and scripted collaborators for
// exercising signup sessions in tests.
package signuptest

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tendant/simple-signup/pkg/signup"
)

// tickTimeout bounds how long Tick waits for a countdown to receive.
const tickTimeout = 2 * time.Second

// Clock hands out tickers that only fire when the test calls Tick.
type Clock struct {
	mu      sync.Mutex
	tickers []*Ticker
}

// NewClock creates a manual clock.
func NewClock() *Clock {
	return &Clock{}
}

// NewTicker implements signup.Clock.
func (c *Clock) NewTicker(time.Duration) signup.Ticker {
	t := &Ticker{c: make(chan time.Time)}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

// Latest returns the most recently created ticker, or nil.
func (c *Clock) Latest() *Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		return nil
	}
	return c.tickers[len(c.tickers)-1]
}

// Created returns how many tickers were handed out.
func (c *Clock) Created() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

// Tick delivers one tick to the latest ticker. It returns false when nobody
// received the tick in time.
func (c *Clock) Tick() bool {
	t := c.Latest()
	if t == nil {
		return false
	}
	return t.Tick()
}

// Ticker is a manually driven signup.Ticker.
type Ticker struct {
	c       chan time.Time
	stopped atomic.Bool
}

// C implements signup.Ticker.
func (t *Ticker) C() <-chan time.Time {
	return t.c
}

// Stop implements signup.Ticker.
func (t *Ticker) Stop() {
	t.stopped.Store(true)
}

// Stopped reports whether Stop was called.
func (t *Ticker) Stopped() bool {
	return t.stopped.Load()
}

// Tick blocks until the tick is received or the timeout elapses.
func (t *Ticker) Tick() bool {
	select {
	case t.c <- time.Now():
		return true
	case <-time.After(tickTimeout):
		return false
	}
}
