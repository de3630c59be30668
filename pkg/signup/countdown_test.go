package signup_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/tendant/simple-signup/pkg/signup"
	"github.com/tendant/simple-signup/pkg/signup/signuptest"
)

type countdownHarness struct {
	clock   *signuptest.Clock
	ticks   chan int
	expired chan struct{}
	fired   atomic.Int32
}

func newCountdown() (*signup.Countdown, *countdownHarness) {
	p := &countdownHarness{
		clock:   signuptest.NewClock(),
		ticks:   make(chan int, 512),
		expired: make(chan struct{}, 4),
	}
	c := signup.NewCountdown(signup.CountdownOpts{
		Clock:  p.clock,
		OnTick: func(remaining int) { p.ticks <- remaining },
		OnExpire: func() {
			p.fired.Add(1)
			p.expired <- struct{}{}
		},
	})
	return c, p
}

func TestCountdown_ExpiresExactlyOnce(t *testing.T) {
	c, p := newCountdown()
	defer c.Cancel()

	c.Start(signup.DefaultCodeSeconds)
	if got := c.Remaining(); got != 180 {
		t.Fatalf("Remaining() = %d, want 180", got)
	}

	last := advance(t, p.clock, p.ticks, 180)
	if last != 0 {
		t.Errorf("last tick = %d, want 0", last)
	}

	select {
	case <-p.expired:
	case <-time.After(2 * time.Second):
		t.Fatal("OnExpire was not called")
	}

	if got := c.Remaining(); got != 0 {
		t.Errorf("Remaining() = %d, want 0", got)
	}
	if c.Running() {
		t.Error("Running() = true after expiry")
	}
	eventually(t, p.clock.Latest().Stopped, "ticker stop after expiry")
	never(t, p.expired, "second expiry")
	if got := p.fired.Load(); got != 1 {
		t.Errorf("OnExpire fired %d times, want 1", got)
	}
}

func TestCountdown_CancelPreventsExpiry(t *testing.T) {
	c, p := newCountdown()

	c.Start(3)
	if got := advance(t, p.clock, p.ticks, 2); got != 1 {
		t.Fatalf("remaining after 2 ticks = %d, want 1", got)
	}

	c.Cancel()

	if c.Running() {
		t.Error("Running() = true after Cancel")
	}
	if got := c.Remaining(); got != 1 {
		t.Errorf("Remaining() = %d, want 1 (frozen)", got)
	}
	eventually(t, p.clock.Latest().Stopped, "ticker stop after cancel")
	never(t, p.expired, "expiry after cancel")
}

func TestCountdown_RestartReplacesRun(t *testing.T) {
	c, p := newCountdown()
	defer c.Cancel()

	c.Start(5)
	advance(t, p.clock, p.ticks, 2)
	first := p.clock.Latest()

	c.Start(5)
	if got := p.clock.Created(); got != 2 {
		t.Fatalf("tickers created = %d, want 2", got)
	}
	eventually(t, first.Stopped, "first ticker stop after restart")
	if got := c.Remaining(); got != 5 {
		t.Errorf("Remaining() after restart = %d, want 5", got)
	}

	if got := advance(t, p.clock, p.ticks, 1); got != 4 {
		t.Errorf("remaining after one tick = %d, want 4", got)
	}
	if got := c.Remaining(); got != 4 {
		t.Errorf("Remaining() = %d, want 4", got)
	}
}

func TestCountdown_CancelIsIdempotent(t *testing.T) {
	c, _ := newCountdown()

	c.Cancel()
	c.Start(10)
	c.Cancel()
	c.Cancel()

	if c.Running() {
		t.Error("Running() = true after Cancel")
	}
	if got := c.Remaining(); got != 10 {
		t.Errorf("Remaining() = %d, want 10", got)
	}
}

func TestCountdown_TickAfterCancelIsDropped(t *testing.T) {
	c, p := newCountdown()

	c.Start(3)
	advance(t, p.clock, p.ticks, 1)
	c.Cancel()

	// The run goroutine may still take this tick from the ticker.
	p.clock.Tick()

	select {
	case got := <-p.ticks:
		t.Errorf("OnTick(%d) delivered after Cancel", got)
	case <-time.After(50 * time.Millisecond):
	}
	if got := c.Remaining(); got != 2 {
		t.Errorf("Remaining() = %d, want 2", got)
	}
	never(t, p.expired, "expiry after cancel")
}

func TestCountdown_StartZeroExpiresOnFirstTick(t *testing.T) {
	c, p := newCountdown()
	defer c.Cancel()

	c.Start(0)
	if got := advance(t, p.clock, p.ticks, 1); got != 0 {
		t.Errorf("remaining = %d, want 0", got)
	}
	select {
	case <-p.expired:
	case <-time.After(2 * time.Second):
		t.Fatal("OnExpire was not called")
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{seconds: 180, want: "03:00"},
		{seconds: 179, want: "02:59"},
		{seconds: 65, want: "01:05"},
		{seconds: 59, want: "00:59"},
		{seconds: 0, want: "00:00"},
		{seconds: -3, want: "00:00"},
		{seconds: 3600, want: "60:00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := signup.FormatRemaining(tt.seconds); got != tt.want {
				t.Errorf("FormatRemaining(%d) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}
