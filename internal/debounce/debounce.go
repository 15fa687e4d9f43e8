// Package debounce coalesces bursts of triggers into a single wake-up.
package debounce

import (
	"sync"
	"time"
)

var afterFunc = time.AfterFunc

// Notifier delivers one value on C once triggers stop arriving for delay.
// C is buffered with capacity one, so wake-ups never block and never pile
// up.
type Notifier struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	gen   uint64
	c     chan struct{}
}

func New(delay time.Duration) *Notifier {
	return &Notifier{delay: delay, c: make(chan struct{}, 1)}
}

func (n *Notifier) C() <-chan struct{} {
	return n.c
}

// Trigger restarts the quiet period.
func (n *Notifier) Trigger() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	gen := n.gen
	n.timer = afterFunc(n.delay, func() {
		n.fire(gen)
	})
}

// Stop drops any pending wake-up. A callback already racing with Stop is
// ignored.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
}

func (n *Notifier) fire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen {
		n.mu.Unlock()
		return
	}
	n.timer = nil
	n.mu.Unlock()
	select {
	case n.c <- struct{}{}:
	default:
	}
}
