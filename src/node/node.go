package node

import "errors"

// ErrNodeShutdown is returned by Submit when the target node has been shut
// down and will not drain its inbox anymore.
var ErrNodeShutdown = errors.New("node: shut down")

// Notifier receives state-transition notifications from nodes. It is
// implemented by the simulation coordinator. Nodes hold this one-way handle
// rather than a reference to the coordinator itself, so there is no cyclic
// ownership between the two.
type Notifier interface {
	// NodeInformed is called exactly once per node, when it first hears the
	// rumor.
	NodeInformed(moniker string)

	// NodeStopped is called exactly once per node, when its local stopping
	// condition is met.
	NodeStopped(moniker string)
}

// Node is the interface shared by the two simulated node variants. The
// variant is selected once at construction; there is no kind-switching
// afterwards.
type Node interface {
	// Moniker returns the node's stable identifier.
	Moniker() string

	// AddNeighbor appends a peer to the node's neighbor set. It must only be
	// called before RunAsync; the neighbor set is read-only afterwards.
	AddNeighbor(peer Node)

	// Submit enqueues a message into the node's inbox. It blocks while the
	// inbox is full and fails with ErrNodeShutdown once the node has been
	// shut down.
	Submit(msg Message) error

	// Start kicks off propagation from this node.
	Start()

	// RunAsync runs the node's event loop in background goroutines.
	RunAsync()

	// Shutdown terminates the event loop and waits for the node's goroutines
	// to exit.
	Shutdown()
}
