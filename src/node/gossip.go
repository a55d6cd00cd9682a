package node

import (
	"github.com/sirupsen/logrus"
)

// DefaultRumor is the payload seeded into the network when a gossip run
// starts.
const DefaultRumor = "the rumor"

// GossipNode simulates a node running the rumor-mongering protocol. It
// reports itself informed to the coordinator the first time it hears the
// rumor, and stopped when it has heard it rumorLimit times. While active, it
// rebroadcasts the rumor to all its neighbors on every tick of its
// rebroadcast timer.
//
// A node that has reached the rumor cap keeps relaying; StopSpreading is
// only invoked when the simulation shuts down.
type GossipNode struct {
	nodeState

	conf   *Config
	logger *logrus.Entry

	moniker   string
	neighbors []Node

	rumorCount int
	active     bool

	inbox      chan Message
	timer      *ControlTimer
	notifier   Notifier
	shutdownCh chan struct{}
}

// NewGossipNode is a factory method that returns a GossipNode instance.
func NewGossipNode(moniker string, notifier Notifier, conf *Config) *GossipNode {
	return &GossipNode{
		conf:       conf,
		logger:     conf.Logger.WithField("this_node", moniker),
		moniker:    moniker,
		active:     true,
		inbox:      make(chan Message, conf.MailboxSize),
		timer:      NewFixedControlTimer(),
		notifier:   notifier,
		shutdownCh: make(chan struct{}),
	}
}

// Moniker implements Node.
func (g *GossipNode) Moniker() string {
	return g.moniker
}

// AddNeighbor implements Node. It must only be called before RunAsync.
func (g *GossipNode) AddNeighbor(peer Node) {
	g.neighbors = append(g.neighbors, peer)
}

// Submit implements Node.
func (g *GossipNode) Submit(msg Message) error {
	select {
	case g.inbox <- msg:
		return nil
	case <-g.shutdownCh:
		return ErrNodeShutdown
	}
}

// Start seeds the rumor into this node, as if a neighbor had sent it.
func (g *GossipNode) Start() {
	g.Submit(RumorMessage{Payload: DefaultRumor})
}

// StopSpreading instructs the node to stop rebroadcasting and cancel its
// timer. Cancellation is best-effort: a tick already in flight is absorbed
// as a no-op.
func (g *GossipNode) StopSpreading() {
	g.Submit(stopMessage{})
}

// RunAsync runs the node's event loop in background goroutines.
func (g *GossipNode) RunAsync() {
	g.goFunc(func() { g.timer.Run(0) })
	g.goFunc(g.run)
}

func (g *GossipNode) run() {
	for {
		select {
		case msg := <-g.inbox:
			g.handleMessage(msg)
		case <-g.timer.tickCh:
			g.spreadRumor()
		case <-g.shutdownCh:
			return
		}
	}
}

func (g *GossipNode) handleMessage(msg Message) {
	switch m := msg.(type) {
	case RumorMessage:
		g.receiveRumor(m)
	case stopMessage:
		g.stopSpreading()
	default:
		g.logger.WithField("type", msg.Type()).Debug("Ignoring message")
	}
}

// receiveRumor counts a reception of the rumor. The count is capped at
// RumorLimit; the informed and stopped transitions each fire exactly once,
// on the 0->1 and the cap transition respectively.
func (g *GossipNode) receiveRumor(msg RumorMessage) {
	if g.rumorCount < g.conf.RumorLimit {
		g.rumorCount++

		if g.rumorCount == 1 {
			g.logger.WithField("rumor", msg.Payload).Debug("Informed")
			g.notifier.NodeInformed(g.moniker)
		}

		if g.rumorCount == g.conf.RumorLimit {
			g.logger.WithField("rumor_count", g.rumorCount).Debug("Reached rumor cap")
			g.setState(Terminated)
			g.notifier.NodeStopped(g.moniker)
		}
	}

	if g.active {
		g.resetTimer()
	}
}

// spreadRumor relays the rumor to every neighbor and re-arms the rebroadcast
// timer.
func (g *GossipNode) spreadRumor() {
	if !g.active {
		return
	}

	for _, peer := range g.neighbors {
		if err := peer.Submit(RumorMessage{Payload: DefaultRumor}); err != nil {
			g.logger.WithFields(logrus.Fields{
				"peer":  peer.Moniker(),
				"error": err,
			}).Debug("spreadRumor()")
		}
	}

	g.resetTimer()
}

func (g *GossipNode) stopSpreading() {
	if !g.active {
		return
	}

	g.logger.Debug("Stop spreading")

	g.active = false
	g.stopTimer()
}

func (g *GossipNode) resetTimer() {
	if !g.timer.isSet() {
		select {
		case g.timer.resetCh <- g.conf.GossipInterval:
		case <-g.shutdownCh:
		}
	}
}

func (g *GossipNode) stopTimer() {
	select {
	case g.timer.stopCh <- struct{}{}:
	default:
	}
}

// RumorCount returns how many times the node has heard the rumor. It is a
// progress snapshot; the count is only mutated by the node's own run loop.
func (g *GossipNode) RumorCount() int {
	return g.rumorCount
}

// Shutdown implements Node.
func (g *GossipNode) Shutdown() {
	if g.getState() != Shutdown {
		g.logger.Debug("Shutdown")

		g.setState(Shutdown)

		close(g.shutdownCh)

		g.timer.Shutdown()

		g.waitRoutines()
	}
}
