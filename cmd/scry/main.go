package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/scry/config"
)

var version = "0.1.0"

// errProblemsFound makes the process exit non-zero without printing an
// error; the diagnostics have already been reported.
var errProblemsFound = errors.New("problems found")

type globalOptions struct {
	configPath string
	verbose    int
	logFile    string

	cfg *config.Config
}

func (g *globalOptions) setup() error {
	cfg, err := config.LoadOptional(g.configPath)
	if err != nil {
		return err
	}
	g.cfg = cfg

	verbosity := cfg.Verbosity()
	if g.verbose > 0 {
		verbosity = g.verbose
	}
	var path *string
	if g.logFile != "" {
		path = &g.logFile
	}
	commonlog.Configure(verbosity, path)
	return nil
}

func (g *globalOptions) config() *config.Config {
	if g.cfg == nil {
		return config.Default()
	}
	return g.cfg
}

func main() {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "scry",
		Short:         "A fault-tolerant linter for JavaScript, TypeScript and JSON",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.FileName, "configuration file")
	rootCmd.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newLintCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newLSPCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errProblemsFound) {
			fmt.Fprintf(os.Stderr, "scry: %s\n", err)
		}
		os.Exit(1)
	}
}
