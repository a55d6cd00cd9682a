package node

import (
	"sync"
	"sync/atomic"
)

// State captures the lifecycle of a simulated node: Running, Terminated or
// Shutdown.
type State uint32

const (
	// Running is the initial state of a node. It processes incoming messages
	// and periodic events.
	Running State = iota

	// Terminated is entered when the node's local stopping condition is met
	// (rumor cap for gossip, converged ratio for push-sum). A terminated
	// node keeps draining its inbox but absorbs events as no-ops.
	Terminated

	// Shutdown is the final state, entered when the simulation tears the
	// node down.
	Shutdown
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Terminated:
		return "Terminated"
	case Shutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

type nodeState struct {
	state State
	wg    sync.WaitGroup
}

func (b *nodeState) getState() State {
	stateAddr := (*uint32)(&b.state)
	return State(atomic.LoadUint32(stateAddr))
}

func (b *nodeState) setState(s State) {
	stateAddr := (*uint32)(&b.state)
	atomic.StoreUint32(stateAddr, uint32(s))
}

// Start a goroutine and add it to waitgroup
func (b *nodeState) goFunc(f func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		f()
	}()
}

func (b *nodeState) waitRoutines() {
	b.wg.Wait()
}
