package simulation

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// CoordinatorState captures the state of the coordinator: Running, Complete
// or TimedOut. Complete and TimedOut are terminal and idempotent-entry.
type CoordinatorState uint32

const (
	// Running is the initial state; progress notifications are counted.
	Running CoordinatorState = iota

	// Complete is entered when every node has reported itself stopped.
	Complete

	// TimedOut is entered when the wall-clock budget elapses first.
	TimedOut
)

func (s CoordinatorState) String() string {
	switch s {
	case Running:
		return "Running"
	case Complete:
		return "Complete"
	case TimedOut:
		return "TimedOut"
	default:
		return "Unknown"
	}
}

type notificationKind uint8

const (
	nodeInformed notificationKind = iota
	nodeStopped
)

type notification struct {
	moniker string
	kind    notificationKind
}

// Result summarises a finished run.
type Result struct {
	// Converged is true when every node stopped within the time budget.
	Converged bool

	// Elapsed is the wall-clock time between launch and the terminal
	// transition.
	Elapsed time.Duration

	// Informed and Stopped are the progress counts at the terminal
	// transition.
	Informed int
	Stopped  int

	// Total is the node population of the run.
	Total int
}

// Coordinator aggregates global progress and detects convergence. It is the
// only cross-cutting shared state of a simulation, and it is only ever
// mutated by its own run loop; nodes interact with it exclusively through
// asynchronous notifications. Notifications arriving after a terminal
// transition are absorbed as no-ops.
type Coordinator struct {
	state uint32

	totalNodes    int
	informedCount int32
	stoppedCount  int32

	startTime time.Time
	timeout   time.Duration

	notifyCh   chan notification
	doneCh     chan Result
	shutdownCh chan struct{}

	shutdownOnce sync.Once
	wg           sync.WaitGroup

	logger *logrus.Entry
}

// NewCoordinator is a factory method that returns a Coordinator instance.
// A timeout of 0 disables the wall-clock budget.
func NewCoordinator(totalNodes int, timeout time.Duration, logger *logrus.Entry) *Coordinator {
	return &Coordinator{
		totalNodes: totalNodes,
		timeout:    timeout,
		notifyCh:   make(chan notification, 4*totalNodes+16),
		doneCh:     make(chan Result, 1),
		shutdownCh: make(chan struct{}),
		logger:     logger,
	}
}

// RunAsync captures the launch time and runs the coordinator loop in a
// background goroutine.
func (c *Coordinator) RunAsync() {
	c.startTime = time.Now()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run()
	}()
}

func (c *Coordinator) run() {
	var timeoutCh <-chan time.Time
	if c.timeout > 0 {
		timeoutCh = time.After(c.timeout)
	}

	for {
		select {
		case n := <-c.notifyCh:
			c.handleNotification(n)
		case <-timeoutCh:
			c.timeoutExpired()
		case <-c.shutdownCh:
			return
		}
	}
}

func (c *Coordinator) handleNotification(n notification) {
	// terminal states absorb late notifications
	if c.getState() != Running {
		return
	}

	switch n.kind {
	case nodeInformed:
		informed := atomic.AddInt32(&c.informedCount, 1)

		c.logger.WithFields(logrus.Fields{
			"node":     n.moniker,
			"informed": informed,
			"total":    c.totalNodes,
		}).Info("Node informed")
	case nodeStopped:
		stopped := atomic.AddInt32(&c.stoppedCount, 1)

		c.logger.WithFields(logrus.Fields{
			"node":    n.moniker,
			"stopped": stopped,
			"total":   c.totalNodes,
		}).Info("Node stopped")

		if int(stopped) == c.totalNodes {
			c.algorithmComplete()
		}
	}
}

// algorithmComplete performs the Running -> Complete transition. Re-entry
// has no effect.
func (c *Coordinator) algorithmComplete() {
	if !c.transition(Complete) {
		return
	}

	elapsed := time.Since(c.startTime)

	informed, stopped, total := c.CheckProgress()

	c.logger.WithFields(logrus.Fields{
		"elapsed_ms": elapsed.Milliseconds(),
		"stopped":    stopped,
		"total":      total,
	}).Info("Converged")

	c.doneCh <- Result{
		Converged: true,
		Elapsed:   elapsed,
		Informed:  informed,
		Stopped:   stopped,
		Total:     total,
	}
}

// timeoutExpired performs the Running -> TimedOut transition. Re-entry has
// no effect.
func (c *Coordinator) timeoutExpired() {
	if !c.transition(TimedOut) {
		return
	}

	elapsed := time.Since(c.startTime)

	informed, stopped, total := c.CheckProgress()

	c.logger.WithFields(logrus.Fields{
		"elapsed_ms": elapsed.Milliseconds(),
		"informed":   informed,
		"stopped":    stopped,
		"total":      total,
	}).Warn("Timed out")

	c.doneCh <- Result{
		Converged: false,
		Elapsed:   elapsed,
		Informed:  informed,
		Stopped:   stopped,
		Total:     total,
	}
}

// transition moves the coordinator from Running into a terminal state. It
// returns false when a terminal state had already been entered.
func (c *Coordinator) transition(to CoordinatorState) bool {
	return atomic.CompareAndSwapUint32(&c.state, uint32(Running), uint32(to))
}

func (c *Coordinator) getState() CoordinatorState {
	return CoordinatorState(atomic.LoadUint32(&c.state))
}

// NodeInformed implements node.Notifier.
func (c *Coordinator) NodeInformed(moniker string) {
	c.notify(notification{moniker: moniker, kind: nodeInformed})
}

// NodeStopped implements node.Notifier.
func (c *Coordinator) NodeStopped(moniker string) {
	c.notify(notification{moniker: moniker, kind: nodeStopped})
}

func (c *Coordinator) notify(n notification) {
	select {
	case c.notifyCh <- n:
	case <-c.shutdownCh:
	}
}

// CheckProgress returns a read-only snapshot of the progress counters. It
// can be called at any time and has no side effect.
func (c *Coordinator) CheckProgress() (informed, stopped, total int) {
	return int(atomic.LoadInt32(&c.informedCount)),
		int(atomic.LoadInt32(&c.stoppedCount)),
		c.totalNodes
}

// Done returns the channel on which the terminal Result is delivered.
func (c *Coordinator) Done() <-chan Result {
	return c.doneCh
}

// Shutdown makes the coordinator loop return and waits for it.
func (c *Coordinator) Shutdown() {
	c.shutdownOnce.Do(func() {
		c.logger.Debug("Coordinator shutdown")
		close(c.shutdownCh)
	})

	c.wg.Wait()
}
