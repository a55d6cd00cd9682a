package node

import (
	"sync/atomic"
	"time"
)

type timerFactory func(time.Duration) <-chan time.Time

// ControlTimer delivers timed events into a node's run loop. It is armed by
// sending a duration on resetCh and fires exactly once per arming, so
// periodic behavior is obtained by re-arming after each tick.
type ControlTimer struct {
	timerFactory timerFactory
	tickCh       chan struct{}      //sends a signal to listening process
	resetCh      chan time.Duration //receives instruction to reset the timer
	stopCh       chan struct{}      //receives instruction to stop the timer
	shutdownCh   chan struct{}      //receives instruction to exit Run loop
	set          int32
}

// NewControlTimer creates a ControlTimer from a timerFactory.
func NewControlTimer(timerFactory timerFactory) *ControlTimer {
	return &ControlTimer{
		timerFactory: timerFactory,
		tickCh:       make(chan struct{}),
		resetCh:      make(chan time.Duration),
		stopCh:       make(chan struct{}),
		shutdownCh:   make(chan struct{}),
	}
}

// NewFixedControlTimer creates a ControlTimer that fires a fixed delay after
// each arming. A zero delay leaves the timer unarmed.
func NewFixedControlTimer() *ControlTimer {
	fixedTimeout := func(d time.Duration) <-chan time.Time {
		if d == 0 {
			return nil
		}
		return time.After(d)
	}
	return NewControlTimer(fixedTimeout)
}

// Run processes arm/stop instructions and delivers ticks until Shutdown is
// called.
func (c *ControlTimer) Run(init time.Duration) {

	setTimer := func(t time.Duration) <-chan time.Time {
		if t == 0 {
			atomic.StoreInt32(&c.set, 0)
			return nil
		}
		atomic.StoreInt32(&c.set, 1)
		return c.timerFactory(t)
	}

	timer := setTimer(init)
	for {
		select {
		case <-timer:
			select {
			case c.tickCh <- struct{}{}:
				atomic.StoreInt32(&c.set, 0)
			case <-c.shutdownCh:
				return
			}
		case t := <-c.resetCh:
			timer = setTimer(t)
		case <-c.stopCh:
			timer = nil
			atomic.StoreInt32(&c.set, 0)
		case <-c.shutdownCh:
			atomic.StoreInt32(&c.set, 0)
			return
		}
	}
}

// Shutdown makes the Run loop return.
func (c *ControlTimer) Shutdown() {
	close(c.shutdownCh)
}

func (c *ControlTimer) isSet() bool {
	return atomic.LoadInt32(&c.set) == 1
}
