package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/mosaicnetworks/epidemic/src/common"
)

// Default configuration values.
const (
	DefaultLogLevel = "debug"

	// DefaultGossipInterval is the period of a gossip node's rebroadcast
	// timer.
	DefaultGossipInterval = 10 * time.Millisecond

	// DefaultCheckInterval is the period of a push-sum node's convergence
	// check timer.
	DefaultCheckInterval = 100 * time.Millisecond

	// DefaultRumorLimit is the number of times a gossip node hears the rumor
	// before it reports itself stopped.
	DefaultRumorLimit = 10

	// DefaultConvergenceRounds is the number of consecutive unchanged
	// convergence checks after which a push-sum node terminates.
	DefaultConvergenceRounds = 3

	// DefaultTimeout is the overall wall-clock budget of a simulation. A
	// value of 0 disables the budget.
	DefaultTimeout = 2 * time.Minute

	// DefaultMailboxSize is the capacity of a node's inbox channel.
	DefaultMailboxSize = 1024

	// DefaultShutdownGrace is how long the process lingers after the final
	// report so buffered output can flush.
	DefaultShutdownGrace = 500 * time.Millisecond
)

// Config contains all the configuration properties of a simulation run.
type Config struct {
	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFile, when set, mirrors log output to this file in addition to the
	// console.
	LogFile string `mapstructure:"log-file"`

	// GossipInterval is the frequency of the rebroadcast timer of gossip
	// nodes.
	GossipInterval time.Duration `mapstructure:"gossip-interval"`

	// CheckInterval is the frequency of the convergence-check timer of
	// push-sum nodes.
	CheckInterval time.Duration `mapstructure:"check-interval"`

	// RumorLimit is the rumor count at which a gossip node reports itself
	// stopped.
	RumorLimit int `mapstructure:"rumor-limit"`

	// ConvergenceRounds is the number of consecutive convergence checks with
	// an unchanged s/w ratio after which a push-sum node terminates.
	ConvergenceRounds int `mapstructure:"convergence-rounds"`

	// Timeout is the wall-clock budget of the whole run. When it elapses
	// before all nodes have stopped, the coordinator aborts the run and
	// reports partial counts. 0 disables the budget, in which case a run
	// that stalls never terminates.
	Timeout time.Duration `mapstructure:"timeout"`

	// MailboxSize is the capacity of each node's inbox channel.
	MailboxSize int `mapstructure:"mailbox-size"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:          DefaultLogLevel,
		GossipInterval:    DefaultGossipInterval,
		CheckInterval:     DefaultCheckInterval,
		RumorLimit:        DefaultRumorLimit,
		ConvergenceRounds: DefaultConvergenceRounds,
		Timeout:           DefaultTimeout,
		MailboxSize:       DefaultMailboxSize,
	}
}

// NewTestConfig returns a config object with short timers and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB) *Config {
	config := NewDefaultConfig()
	config.GossipInterval = time.Millisecond
	config.CheckInterval = 5 * time.Millisecond
	config.Timeout = 30 * time.Second
	config.logger = common.NewTestLogger(t)
	return config
}

// WithLogger substitutes a pre-built logger. It is chiefly used by the CLI,
// which attaches hooks before handing the logger over.
func (c *Config) WithLogger(logger *logrus.Logger) *Config {
	c.logger = logger
	return c
}

// Logger returns a formatted logrus Entry, with prefix set to "epidemic".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)
	}
	return c.logger.WithField("prefix", "epidemic")
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
