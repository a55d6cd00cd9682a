package node

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/epidemic/src/common"
)

// Config contains the timing and sizing parameters of simulated nodes.
type Config struct {
	GossipInterval    time.Duration
	CheckInterval     time.Duration
	RumorLimit        int
	ConvergenceRounds int
	MailboxSize       int
	Logger            *logrus.Logger
}

// NewConfig instantiates a node Config.
func NewConfig(gossipInterval time.Duration,
	checkInterval time.Duration,
	rumorLimit int,
	convergenceRounds int,
	mailboxSize int,
	logger *logrus.Logger) *Config {
	return &Config{
		GossipInterval:    gossipInterval,
		CheckInterval:     checkInterval,
		RumorLimit:        rumorLimit,
		ConvergenceRounds: convergenceRounds,
		MailboxSize:       mailboxSize,
		Logger:            logger,
	}
}

// DefaultConfig returns a node Config with default values.
func DefaultConfig() *Config {
	logger := logrus.New()
	logger.Level = logrus.DebugLevel
	return &Config{
		GossipInterval:    10 * time.Millisecond,
		CheckInterval:     100 * time.Millisecond,
		RumorLimit:        10,
		ConvergenceRounds: 3,
		MailboxSize:       1024,
		Logger:            logger,
	}
}

// TestConfig returns a node Config with short timers and a test logger.
func TestConfig(t testing.TB) *Config {
	config := DefaultConfig()
	config.GossipInterval = time.Millisecond
	config.CheckInterval = 5 * time.Millisecond
	config.Logger = common.NewTestLogger(t)
	return config
}
