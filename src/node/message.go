package node

// Message is an immutable value delivered to a node's inbox. The Type tag is
// only used for logging; dispatch is done on the concrete type.
type Message interface {
	Type() string
}

// RumorMessage carries the rumor between gossip nodes.
type RumorMessage struct {
	Payload string
}

// Type implements Message.
func (RumorMessage) Type() string { return "rumor" }

// MassMessage carries half of a push-sum node's (sum, weight) state.
type MassMessage struct {
	Sum    float64
	Weight float64
}

// Type implements Message.
func (MassMessage) Type() string { return "mass" }

// startMessage kicks off propagation inside the owning node's run loop.
type startMessage struct{}

func (startMessage) Type() string { return "start" }

// stopMessage instructs a gossip node to stop rebroadcasting.
type stopMessage struct{}

func (stopMessage) Type() string { return "stop" }
