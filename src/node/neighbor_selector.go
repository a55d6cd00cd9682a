package node

import (
	"math/rand"
)

//NeighborSelector defines an interface for neighbor selection strategies
type NeighborSelector interface {
	Neighbors() []Node
	Next() Node
}

//+++++++++++++++++++++++++++++++++++++++
//RANDOM

//RandomNeighborSelector selects neighbors uniformly at random, with
//replacement across calls. Draws go through the shared math/rand source,
//which is safe for concurrent use, so selections are not correlated across
//nodes.
type RandomNeighborSelector struct {
	neighbors []Node
}

//NewRandomNeighborSelector is a factory method that returns a new instance
//of RandomNeighborSelector
func NewRandomNeighborSelector(neighbors []Node) *RandomNeighborSelector {
	return &RandomNeighborSelector{
		neighbors: neighbors,
	}
}

//Neighbors returns the selectable neighbors
func (s *RandomNeighborSelector) Neighbors() []Node {
	return s.neighbors
}

//Next returns the next neighbor, or nil when the neighbor set is empty
func (s *RandomNeighborSelector) Next() Node {
	if len(s.neighbors) == 0 {
		return nil
	}

	return s.neighbors[rand.Intn(len(s.neighbors))]
}
