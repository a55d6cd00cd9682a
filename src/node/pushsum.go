package node

import (
	"math"
	"strconv"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// convergenceEpsilon is the absolute tolerance below which two consecutive
// s/w ratios are considered unchanged. No relative-error normalization is
// applied, which can misbehave for very large sums; this is an accepted
// limitation.
const convergenceEpsilon = 1e-10

// PushSumNode simulates a node running the push-sum aggregation protocol.
// Its sum is initialized from its moniker parsed as a number (0 if not
// parseable) and its weight to 1. Whenever it receives mass it folds it in
// and forwards half of its own state to a random neighbor; a periodic check
// latches the node into the terminated state after ConvergenceRounds
// consecutive checks with an unchanged s/w ratio.
type PushSumNode struct {
	nodeState

	conf   *Config
	logger *logrus.Entry

	moniker   string
	neighbors []Node
	selector  NeighborSelector

	s               float64
	w               float64
	oldRatio        float64
	roundsUnchanged int

	active     bool
	terminated bool

	// final (s, w) snapshot, stored atomically as float bits when the node
	// terminates
	finalS uint64
	finalW uint64

	inbox      chan Message
	timer      *ControlTimer
	notifier   Notifier
	shutdownCh chan struct{}
}

// NewPushSumNode is a factory method that returns a PushSumNode instance.
func NewPushSumNode(moniker string, notifier Notifier, conf *Config) *PushSumNode {
	s, err := strconv.ParseFloat(moniker, 64)
	if err != nil {
		s = 0
	}

	return &PushSumNode{
		conf:       conf,
		logger:     conf.Logger.WithField("this_node", moniker),
		moniker:    moniker,
		s:          s,
		w:          1.0,
		active:     true,
		inbox:      make(chan Message, conf.MailboxSize),
		timer:      NewFixedControlTimer(),
		notifier:   notifier,
		shutdownCh: make(chan struct{}),
	}
}

// Moniker implements Node.
func (p *PushSumNode) Moniker() string {
	return p.moniker
}

// AddNeighbor implements Node. It must only be called before RunAsync.
func (p *PushSumNode) AddNeighbor(peer Node) {
	p.neighbors = append(p.neighbors, peer)
}

// Submit implements Node.
func (p *PushSumNode) Submit(msg Message) error {
	select {
	case p.inbox <- msg:
		return nil
	case <-p.shutdownCh:
		return ErrNodeShutdown
	}
}

// Start kicks off propagation from this node.
func (p *PushSumNode) Start() {
	p.Submit(startMessage{})
}

// RunAsync runs the node's event loop in background goroutines.
func (p *PushSumNode) RunAsync() {
	if p.selector == nil {
		p.selector = NewRandomNeighborSelector(p.neighbors)
	}

	p.goFunc(func() { p.timer.Run(0) })
	p.goFunc(p.run)
}

func (p *PushSumNode) run() {
	for {
		select {
		case msg := <-p.inbox:
			p.handleMessage(msg)
		case <-p.timer.tickCh:
			p.checkTermination()
		case <-p.shutdownCh:
			return
		}
	}
}

func (p *PushSumNode) handleMessage(msg Message) {
	switch m := msg.(type) {
	case MassMessage:
		p.receiveMass(m)
	case startMessage:
		p.start()
	default:
		p.logger.WithField("type", msg.Type()).Debug("Ignoring message")
	}
}

func (p *PushSumNode) start() {
	if !p.active {
		return
	}

	p.logger.WithFields(logrus.Fields{
		"s": p.s,
		"w": p.w,
	}).Debug("Start")

	p.sendHalf()
}

// receiveMass folds a received (sum, weight) pair into the local state and
// forwards half of the result. Mass arriving after termination is absorbed
// without effect.
func (p *PushSumNode) receiveMass(msg MassMessage) {
	if !p.active {
		return
	}

	p.s += msg.Sum
	p.w += msg.Weight

	p.sendHalf()
}

// sendHalf halves the local (s, w) pair and sends the other half to one
// uniformly random neighbor. When there is no neighbor, or no weight left to
// split, nothing is sent. Either way the periodic convergence check is
// re-armed.
func (p *PushSumNode) sendHalf() {
	if peer := p.selector.Next(); peer != nil && p.w > 0 {
		p.s /= 2
		p.w /= 2

		if err := peer.Submit(MassMessage{Sum: p.s, Weight: p.w}); err != nil {
			p.logger.WithFields(logrus.Fields{
				"peer":  peer.Moniker(),
				"error": err,
			}).Debug("sendHalf()")
		}
	}

	p.resetTimer()
}

// checkTermination compares the current s/w ratio against the previous one.
// ConvergenceRounds consecutive checks within convergenceEpsilon latch the
// node into the terminated state; a changed ratio resets the counter and
// triggers another send-half step. oldRatio is updated on every check.
func (p *PushSumNode) checkTermination() {
	if p.terminated {
		return
	}

	currentRatio := p.s / p.w

	if math.Abs(currentRatio-p.oldRatio) < convergenceEpsilon {
		p.roundsUnchanged++
	} else {
		p.roundsUnchanged = 0
		p.sendHalf()
	}

	p.oldRatio = currentRatio

	if p.roundsUnchanged >= p.conf.ConvergenceRounds {
		p.terminate(currentRatio)
	} else {
		p.resetTimer()
	}
}

// terminate latches the node into the terminated state. It is idempotent; a
// second attempt is a no-op.
func (p *PushSumNode) terminate(ratio float64) {
	if p.terminated {
		return
	}

	p.active = false
	p.terminated = true
	p.setState(Terminated)

	atomic.StoreUint64(&p.finalS, math.Float64bits(p.s))
	atomic.StoreUint64(&p.finalW, math.Float64bits(p.w))

	p.stopTimer()

	p.logger.WithFields(logrus.Fields{
		"ratio":  ratio,
		"rounds": p.roundsUnchanged,
	}).Debug("Terminated")

	p.notifier.NodeStopped(p.moniker)
}

func (p *PushSumNode) resetTimer() {
	if !p.timer.isSet() {
		select {
		case p.timer.resetCh <- p.conf.CheckInterval:
		case <-p.shutdownCh:
		}
	}
}

func (p *PushSumNode) stopTimer() {
	select {
	case p.timer.stopCh <- struct{}{}:
	default:
	}
}

// Estimate returns the s/w ratio the node settled on. It is only meaningful
// once the node has terminated.
func (p *PushSumNode) Estimate() float64 {
	s := math.Float64frombits(atomic.LoadUint64(&p.finalS))
	w := math.Float64frombits(atomic.LoadUint64(&p.finalW))

	if w == 0 {
		return 0
	}

	return s / w
}

// Mass returns the final (s, w) snapshot taken when the node terminated.
func (p *PushSumNode) Mass() (float64, float64) {
	s := math.Float64frombits(atomic.LoadUint64(&p.finalS))
	w := math.Float64frombits(atomic.LoadUint64(&p.finalW))

	return s, w
}

// Shutdown implements Node.
func (p *PushSumNode) Shutdown() {
	if p.getState() != Shutdown {
		p.logger.Debug("Shutdown")

		p.setState(Shutdown)

		close(p.shutdownCh)

		p.timer.Shutdown()

		p.waitRoutines()
	}
}
