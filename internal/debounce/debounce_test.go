package debounce

import (
	"testing"
	"time"
)

func stubAfterFunc(t *testing.T) *[]func() {
	t.Helper()
	orig := afterFunc
	t.Cleanup(func() { afterFunc = orig })

	var callbacks []func()
	afterFunc = func(_ time.Duration, f func()) *time.Timer {
		callbacks = append(callbacks, f)
		timer := time.NewTimer(time.Hour)
		timer.Stop()
		return timer
	}
	return &callbacks
}

func pending(n *Notifier) int {
	select {
	case <-n.C():
		return 1
	default:
		return 0
	}
}

func TestNotifierIgnoresStaleCallback(t *testing.T) {
	callbacks := stubAfterFunc(t)
	n := New(time.Second)

	n.Trigger()
	n.Trigger()
	if len(*callbacks) != 2 {
		t.Fatalf("expected 2 scheduled callbacks, got %d", len(*callbacks))
	}

	(*callbacks)[0]()
	if got := pending(n); got != 0 {
		t.Fatalf("stale callback delivered a wake-up")
	}
	(*callbacks)[1]()
	if got := pending(n); got != 1 {
		t.Fatalf("latest callback did not deliver a wake-up")
	}
}

func TestNotifierStopIgnoresPendingCallback(t *testing.T) {
	callbacks := stubAfterFunc(t)
	n := New(time.Second)

	n.Trigger()
	n.Stop()
	(*callbacks)[0]()

	if got := pending(n); got != 0 {
		t.Fatalf("expected no wake-up after stop, got %d", got)
	}
}

func TestNotifierCoalescesBurst(t *testing.T) {
	n := New(10 * time.Millisecond)
	for range 5 {
		n.Trigger()
	}
	select {
	case <-n.C():
	case <-time.After(time.Second):
		t.Fatal("notifier did not fire")
	}
	select {
	case <-n.C():
		t.Fatal("burst produced more than one wake-up")
	case <-time.After(50 * time.Millisecond):
	}
}
