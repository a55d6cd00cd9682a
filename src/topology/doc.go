// Package topology computes the static neighbor-adjacency relation among
// simulated nodes.
//
// Build is a pure computation over node indices; the simulation wires the
// resulting adjacency lists into the node entities afterwards. Keeping the
// computation separate from the wiring means a failed build can never leave
// a partially-wired network behind.
package topology
