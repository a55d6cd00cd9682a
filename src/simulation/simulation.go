package simulation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/epidemic/src/config"
	"github.com/mosaicnetworks/epidemic/src/node"
	"github.com/mosaicnetworks/epidemic/src/topology"
)

// Algorithm enumerates the simulated epidemic algorithms.
type Algorithm uint32

const (
	// Gossip is rumor-style dissemination with a per-node reception cap.
	Gossip Algorithm = iota

	// PushSum is mass-conserving average aggregation.
	PushSum
)

func (a Algorithm) String() string {
	switch a {
	case Gossip:
		return "Gossip"
	case PushSum:
		return "PushSum"
	default:
		return "Unknown"
	}
}

// ParseAlgorithm parses an algorithm name as it appears on the command line.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(name) {
	case "gossip":
		return Gossip, nil
	case "pushsum":
		return PushSum, nil
	default:
		return 0, fmt.Errorf("unknown algorithm %q (expected Gossip or PushSum)", name)
	}
}

// Simulation ties together the node population, the topology and the
// coordinator for one run.
type Simulation struct {
	Config      *config.Config
	Coordinator *Coordinator
	Nodes       []node.Node

	algorithm Algorithm
	numNodes  int
	topology  topology.Type

	logger *logrus.Entry
}

// New is a factory method that returns an uninitialised Simulation.
func New(conf *config.Config, algorithm Algorithm, numNodes int, t topology.Type) *Simulation {
	return &Simulation{
		Config:    conf,
		algorithm: algorithm,
		numNodes:  numNodes,
		topology:  t,
		logger:    conf.Logger(),
	}
}

// Init creates the coordinator and the node population of the selected
// variant, then builds and wires the topology. Configuration and topology
// errors abort the run before any propagation starts.
func (s *Simulation) Init() error {
	if s.numNodes < 1 {
		return fmt.Errorf("simulation requires at least one node, got %d", s.numNodes)
	}

	if s.algorithm != Gossip && s.algorithm != PushSum {
		return fmt.Errorf("unknown algorithm %d", s.algorithm)
	}

	s.Coordinator = NewCoordinator(s.numNodes, s.Config.Timeout, s.logger)

	nodeConf := node.NewConfig(
		s.Config.GossipInterval,
		s.Config.CheckInterval,
		s.Config.RumorLimit,
		s.Config.ConvergenceRounds,
		s.Config.MailboxSize,
		s.logger.Logger,
	)

	s.Nodes = make([]node.Node, s.numNodes)
	for i := 0; i < s.numNodes; i++ {
		moniker := strconv.Itoa(i)

		switch s.algorithm {
		case Gossip:
			s.Nodes[i] = node.NewGossipNode(moniker, s.Coordinator, nodeConf)
		case PushSum:
			s.Nodes[i] = node.NewPushSumNode(moniker, s.Coordinator, nodeConf)
		}
	}

	adjacency, err := topology.Build(s.numNodes, s.topology)
	if err != nil {
		return err
	}

	for i, neighbors := range adjacency {
		for _, j := range neighbors {
			s.Nodes[i].AddNeighbor(s.Nodes[j])
		}
	}

	s.logger.WithFields(logrus.Fields{
		"algorithm": s.algorithm.String(),
		"nodes":     s.numNodes,
		"topology":  s.topology.String(),
	}).Info("Topology built")

	return nil
}

// Run starts the coordinator and every node, kicks off propagation from the
// seed node, waits for the coordinator's terminal transition, then shuts the
// whole simulation down. It returns the run's Result.
func (s *Simulation) Run() Result {
	s.Coordinator.RunAsync()

	for _, n := range s.Nodes {
		n.RunAsync()
	}

	// node 0 seeds the propagation
	s.Nodes[0].Start()

	res := <-s.Coordinator.Done()

	s.Shutdown()

	return res
}

// Shutdown tears the simulation down: gossip nodes stop rebroadcasting,
// every node's event loop is terminated, and the coordinator is stopped
// last so late notifications are still absorbed.
func (s *Simulation) Shutdown() {
	for _, n := range s.Nodes {
		if g, ok := n.(*node.GossipNode); ok {
			g.StopSpreading()
		}
	}

	for _, n := range s.Nodes {
		n.Shutdown()
	}

	s.Coordinator.Shutdown()
}
