package commands

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/mosaicnetworks/epidemic/src/config"
	"github.com/mosaicnetworks/epidemic/src/simulation"
	"github.com/mosaicnetworks/epidemic/src/topology"
)

var (
	conf   = config.NewDefaultConfig()
	logger *logrus.Logger
)

func init() {
	RootCmd.Flags().String("log", conf.LogLevel, "debug, info, warn, error, fatal, panic")
	RootCmd.Flags().String("log-file", conf.LogFile, "Mirror log output to this file")
	RootCmd.Flags().Duration("gossip-interval", conf.GossipInterval, "Period of the gossip rebroadcast timer")
	RootCmd.Flags().Duration("check-interval", conf.CheckInterval, "Period of the push-sum convergence check")
	RootCmd.Flags().Int("rumor-limit", conf.RumorLimit, "Rumor count at which a gossip node stops")
	RootCmd.Flags().Int("convergence-rounds", conf.ConvergenceRounds, "Unchanged checks before a push-sum node terminates")
	RootCmd.Flags().Duration("timeout", conf.Timeout, "Wall-clock budget of the run (0 disables)")
	RootCmd.Flags().Int("mailbox-size", conf.MailboxSize, "Capacity of each node's inbox")
}

//RootCmd is the root command for the epidemic simulator
var RootCmd = &cobra.Command{
	Use:   "epidemic <algorithm> <num_nodes> <topology>",
	Short: "Epidemic protocol convergence simulator",
	Long: `Epidemic protocol convergence simulator.

Simulates the Gossip or PushSum algorithm over a network of message-driven
nodes and measures how long convergence takes.

  algorithm:  Gossip | PushSum
  num_nodes:  positive integer
  topology:   fullnetwork | line | 3d | imperfect3d`,
	Args:    cobra.ExactArgs(3),
	PreRunE: loadConfig,
	RunE:    runSimulation,
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runSimulation(cmd *cobra.Command, args []string) error {

	// Errors from here on are reported as plain error lines, not followed by
	// a usage dump; argument-count errors were already handled by cobra.
	cmd.SilenceUsage = true

	algorithm, err := simulation.ParseAlgorithm(args[0])
	if err != nil {
		return err
	}

	numNodes, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("num_nodes must be an integer, got %q", args[1])
	}
	if numNodes < 1 {
		return fmt.Errorf("num_nodes must be positive, got %d", numNodes)
	}

	topo, err := topology.ParseType(args[2])
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"algorithm": algorithm.String(),
		"num_nodes": numNodes,
		"topology":  topo.String(),
		"timeout":   conf.Timeout,
		"log":       conf.LogLevel,
	}).Debug("RUN")

	sim := simulation.New(conf, algorithm, numNodes, topo)

	if err := sim.Init(); err != nil {
		return err
	}

	res := sim.Run()

	logger.WithFields(logrus.Fields{
		"converged":  res.Converged,
		"elapsed_ms": res.Elapsed.Milliseconds(),
		"informed":   res.Informed,
		"stopped":    res.Stopped,
		"total":      res.Total,
	}).Info("Simulation finished")

	if res.Converged {
		finalize(0)
	} else {
		finalize(1)
	}

	return nil
}

// finalize terminates the process after a short grace period that lets
// buffered log output flush.
func finalize(code int) {
	time.Sleep(config.DefaultShutdownGrace)
	os.Exit(code)
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

func loadConfig(cmd *cobra.Command, args []string) error {

	err := viper.BindPFlags(cmd.Flags())
	if err != nil {
		return err
	}

	conf = config.NewDefaultConfig()
	if err := viper.Unmarshal(conf); err != nil {
		return err
	}

	logger = newLogger()
	logger.Level = config.LogLevel(conf.LogLevel)
	conf.WithLogger(logger)

	return nil
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Formatter = new(prefixed.TextFormatter)

	if conf.LogFile == "" {
		return logger
	}

	pathMap := lfshook.PathMap{}

	_, err := os.OpenFile(conf.LogFile, os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		logger.Infof("Failed to open %s, using default stderr", conf.LogFile)
		return logger
	}

	for _, level := range logrus.AllLevels {
		pathMap[level] = conf.LogFile
	}

	logger.Hooks.Add(lfshook.NewHook(
		pathMap,
		&logrus.TextFormatter{},
	))

	return logger
}
