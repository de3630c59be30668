package signup_test

import (
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/tendant/simple-signup/pkg/signup/signuptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// advance delivers n ticks and waits for each to be processed. It returns
// the remaining value reported by the last tick.
func advance(t *testing.T, clock *signuptest.Clock, ticks <-chan int, n int) int {
	t.Helper()
	last := -1
	for i := 0; i < n; i++ {
		if !clock.Tick() {
			t.Fatalf("tick %d was not received", i+1)
		}
		select {
		case last = <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d was not processed", i+1)
		}
	}
	return last
}

func eventually(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func never(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("unexpected %s", what)
	case <-time.After(50 * time.Millisecond):
	}
}
