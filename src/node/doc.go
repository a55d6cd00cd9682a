// Package node implements the simulated node entities of the epidemic
// protocols.
//
// A node is an independently scheduled unit of state and behavior. It owns a
// buffered inbox channel which is drained by a single run-loop goroutine, so
// no two operations on the same node's state ever execute concurrently.
// Nodes interact with each other and with the coordinator exclusively by
// sending immutable message values; there is no shared mutable memory
// between entities.
//
// Periodic work is driven by a ControlTimer whose ticks are consumed by the
// same run loop as the inbox, preserving the one-at-a-time processing
// discipline. A tick that is already in flight when a node cancels its timer
// may still be delivered once; the node absorbs it as a no-op.
//
// Two variants implement the Node interface, selected once at construction:
//
// GossipNode runs the rumor-mongering protocol. It counts how many times it
// has heard the rumor, reports itself informed on the first reception and
// stopped when the count reaches the rumor limit, and rebroadcasts the rumor
// to all its neighbors on every tick of its rebroadcast timer.
//
// PushSumNode runs the push-sum aggregation protocol. It maintains a
// (sum, weight) pair, halves it and forwards one half to a uniformly random
// neighbor whenever it receives mass, and periodically checks whether its
// sum/weight ratio has settled. Three consecutive unchanged checks latch the
// node into the terminated state.
package node
