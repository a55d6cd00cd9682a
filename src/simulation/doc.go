// Package simulation contains the coordinator and the top-level driver of a
// simulation run.
//
// The Coordinator is the aggregation point for global progress: nodes report
// their informed and stopped transitions to it through one-way asynchronous
// notifications, and it detects completion when the stopped count reaches
// the node population. It also enforces the run's wall-clock budget and
// reports the final convergence time.
//
// Simulation wires a run together in the order mandated by the protocol:
// build the node population, compute and wire the topology, start the
// entities, seed the propagation from node 0, and wait for the coordinator
// to reach a terminal state.
package simulation
