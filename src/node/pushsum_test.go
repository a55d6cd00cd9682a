package node

import (
	"math"
	"testing"
	"time"
)

func TestPushSumInitialState(t *testing.T) {
	conf := TestConfig(t)
	notifier := newTestNotifier()

	p := NewPushSumNode("7", notifier, conf)
	if p.s != 7 || p.w != 1 {
		t.Fatalf("expected (s, w) = (7, 1), got (%v, %v)", p.s, p.w)
	}

	// an unparseable moniker falls back to sum 0
	q := NewPushSumNode("node-a", notifier, conf)
	if q.s != 0 || q.w != 1 {
		t.Fatalf("expected (s, w) = (0, 1), got (%v, %v)", q.s, q.w)
	}
}

func TestPushSumMassConservation(t *testing.T) {
	conf := TestConfig(t)
	notifier := newTestNotifier()

	a := NewPushSumNode("1", notifier, conf)
	b := NewPushSumNode("2", notifier, conf)

	// single-neighbor selectors make the forwarding deterministic
	a.selector = NewRandomNeighborSelector([]Node{b})
	b.selector = NewRandomNeighborSelector([]Node{a})

	go a.timer.Run(0)
	go b.timer.Run(0)
	defer a.timer.Shutdown()
	defer b.timer.Shutdown()

	total := a.s + b.s

	a.sendHalf()
	b.receiveMass((<-b.inbox).(MassMessage))
	a.receiveMass((<-a.inbox).(MassMessage))

	inflight := (<-b.inbox).(MassMessage)

	got := a.s + b.s + inflight.Sum
	if math.Abs(got-total) > 1e-12 {
		t.Fatalf("total sum should be conserved: expected %v, got %v", total, got)
	}

	gotWeight := a.w + b.w + inflight.Weight
	if math.Abs(gotWeight-2) > 1e-12 {
		t.Fatalf("total weight should be conserved: expected 2, got %v", gotWeight)
	}
}

func TestPushSumConvergenceLatch(t *testing.T) {
	conf := TestConfig(t)
	notifier := newTestNotifier()

	p := NewPushSumNode("5", notifier, conf)
	p.selector = NewRandomNeighborSelector(nil)

	go p.timer.Run(0)
	defer p.timer.Shutdown()

	// first check observes the ratio change from 0 to 5 and resets the
	// counter; the next ConvergenceRounds checks latch termination
	for i := 0; i < conf.ConvergenceRounds+1; i++ {
		p.checkTermination()
	}

	if !p.terminated {
		t.Fatal("node should have terminated")
	}
	if p.active {
		t.Fatal("terminated node should not be active")
	}

	if got := notifier.stoppedCount("5"); got != 1 {
		t.Fatalf("stopped should be reported exactly once, got %d", got)
	}

	// further checks and incoming mass are no-ops
	s, w := p.s, p.w
	p.checkTermination()
	p.checkTermination()
	p.receiveMass(MassMessage{Sum: 3, Weight: 0.5})

	if p.s != s || p.w != w {
		t.Fatalf("terminated node state should not change: (%v, %v) -> (%v, %v)", s, w, p.s, p.w)
	}

	if got := notifier.stoppedCount("5"); got != 1 {
		t.Fatalf("stopped should still be reported exactly once, got %d", got)
	}

	if got := p.Estimate(); got != 5 {
		t.Fatalf("isolated node should settle on its own value 5, got %v", got)
	}
}

func TestPushSumFullMeshConvergence(t *testing.T) {
	n := 4
	conf := TestConfig(t)
	notifier := newTestNotifier()

	nodes := make([]*PushSumNode, n)
	for i := 0; i < n; i++ {
		nodes[i] = NewPushSumNode(string(rune('0'+i)), notifier, conf)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j != i {
				nodes[i].AddNeighbor(nodes[j])
			}
		}
	}

	for _, p := range nodes {
		p.RunAsync()
	}

	nodes[0].Start()

	waitFor(t, notifier.stoppedCh, n, 15*time.Second)

	for _, p := range nodes {
		p.Shutdown()
	}

	// ids 0..3 average to 1.5
	for _, p := range nodes {
		if got := p.Estimate(); math.Abs(got-1.5) > 1e-9 {
			t.Fatalf("node %s: expected ratio 1.5, got %v", p.Moniker(), got)
		}

		if got := notifier.stoppedCount(p.Moniker()); got != 1 {
			t.Fatalf("node %s: stopped should be reported exactly once, got %d", p.Moniker(), got)
		}
	}
}
