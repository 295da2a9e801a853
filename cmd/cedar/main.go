// Command cedar is a scenario replay harness for the cedarstate engine.
// It drives a store through a scripted sequence of registrations, writes,
// staged diffs, reviews, and undo/redo steps, printing each transition so
// engine behavior can be inspected without a host application attached.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	noColor bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cedar",
	Short: "Replay harness for the cedarstate diff-tracked state engine",
	Long: `cedar drives a cedarstate.Store through scripted scenarios.

A scenario is a YAML file declaring initial states and a sequence of steps
(set, diff, patches, accept, reject, undo, redo, show). Each step prints
the resulting patch set and state transition, which makes the engine's
staging, review, and history semantics easy to eyeball.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay [scenario.yaml]",
	Short: "Replay a YAML scenario against a fresh store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read scenario: %w", err)
		}
		scenario, err := parseScenario(data)
		if err != nil {
			return err
		}
		return runScenario(cmd.OutOrStdout(), scenario)
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Replay the built-in review-workflow scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		scenario, err := parseScenario([]byte(demoScenario))
		if err != nil {
			return err
		}
		return runScenario(cmd.OutOrStdout(), scenario)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(demoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// demoScenario walks the full review workflow: a staged agent edit,
// accumulation, rejection, a second proposal, acceptance, and undo.
const demoScenario = `
states:
  - key: doc
    value:
      title: "Launch plan"
      sections: ["intro"]
    diff:
      mode: holdAccept
steps:
  - op: diff
    key: doc
    value:
      title: "Launch plan"
      sections: ["intro", "timeline"]
  - op: show
    key: doc
  - op: reject
    key: doc
  - op: diff
    key: doc
    value:
      title: "Launch plan v2"
      sections: ["intro", "budget"]
  - op: accept
    key: doc
  - op: show
    key: doc
  - op: undo
    key: doc
  - op: show
    key: doc
`
