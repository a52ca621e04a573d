// Command upkcli inspects, loads, and exports UPK asset containers.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/JetF0x/RL-UPKSuite/exporter"
	"github.com/JetF0x/RL-UPKSuite/loader"
	"github.com/JetF0x/RL-UPKSuite/upk"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:           "upkcli",
		Short:         "Inspect, load, and export UPK asset containers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			installLogger(verbose)
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringP("manifest", "m", "containers.yaml", "container manifest file")

	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newLoadCmd())
	cmd.AddCommand(newExportCmd())
	return cmd
}

// installLogger wires a real zap logger into every package: console
// encoding when stderr is a terminal, JSON otherwise.
func installLogger(verbose bool) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	if term.IsTerminal(int(os.Stderr.Fd())) {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
	}
	cfg.OutputPaths = []string{"stderr"}

	log, err := cfg.Build()
	if err != nil {
		return
	}
	upk.SetLogger(log.Named("upk"))
	loader.SetLogger(log.Named("loader"))
	exporter.SetLogger(log.Named("exporter"))
}
