package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/atinylittleshell/fsagent/internal/core"
	"github.com/atinylittleshell/fsagent/internal/history"
	"github.com/atinylittleshell/fsagent/internal/repl"
	"github.com/atinylittleshell/fsagent/internal/repl/config"
	"github.com/atinylittleshell/fsagent/internal/styles"
)

var BUILD_VERSION = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(execute(ctx, newRootCmd()))
}

// execute runs cmd and reports a failure on its stderr. It returns the
// process exit status.
func execute(ctx context.Context, cmd *cobra.Command) int {
	if err := cmd.ExecuteContext(ctx); err != nil {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintln(errOut, styles.Error(errOut, "Error: "+err.Error()))
		return 1
	}
	return 0
}

// app carries the state shared by all commands once the root command's
// pre-run hook has loaded the configuration and the logger.
type app struct {
	configPath string
	logFile    string
	noHistory  bool

	config *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "fsagent",
		Short: "Explore a codebase with @-path completion and agent file tools",
		Long: `fsagent is an interactive prompt for inspecting files the way an AI coding
agent does. Type @ followed by a partial path and press Tab to complete it.

Run without arguments in a terminal to start the interactive prompt. When
stdin is not a terminal, each input line is executed as a command.

Examples:
  # Start the interactive prompt
  fsagent

  # List the current directory as JSON
  fsagent ls --recursive=false

  # Print completions for a partial input line
  fsagent complete "read @src/ma"`,
		Version:       BUILD_VERSION,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.logger.Sync() // Flush any buffered log entries
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShell(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.fsagent/config.yaml)")
	cmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "log file (default ~/.fsagent/fsagent.log)")
	cmd.PersistentFlags().BoolVar(&a.noHistory, "no-history", false, "do not read or record command history")

	cmd.AddCommand(
		newListCmd(a),
		newReadCmd(a),
		newGrepCmd(a),
		newCompleteCmd(a),
		newToolsCmd(a),
		newCallCmd(a),
	)

	return cmd
}

func (a *app) setup(errOut io.Writer) error {
	if a.configPath == "" {
		a.configPath = core.ConfigFile()
	}
	if a.logFile == "" {
		a.logFile = core.LogFile()
	}

	result, err := config.NewLoader(nil).LoadFromFile(a.configPath)
	if err != nil {
		return err
	}
	a.config = result.Config

	logger, err := a.initializeLogger()
	if err != nil {
		return err
	}
	a.logger = logger
	a.logger.Info("-------- new fsagent session --------", zap.Any("args", os.Args))

	for _, configErr := range result.Errors {
		a.logger.Warn("config error", zap.String("path", a.configPath), zap.Error(configErr))
		fmt.Fprintln(errOut, styles.Warning(errOut, fmt.Sprintf("fsagent: %s: %v", a.configPath, configErr)))
	}
	return nil
}

func (a *app) initializeLogger() (*zap.Logger, error) {
	logLevel := a.config.ZapLevel()
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	// Logs only go to file to avoid interfering with the Bubble Tea UI.
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{a.logFile}
	loggerConfig.ErrorOutputPaths = []string{a.logFile}

	return loggerConfig.Build()
}

// newREPL wires a REPL writing to out. History is only opened when withHistory
// is set and --no-history was not given.
func (a *app) newREPL(in io.Reader, out, errOut io.Writer, withHistory bool) (*repl.REPL, func(), error) {
	var historyManager *history.HistoryManager
	cleanup := func() {}

	if withHistory && !a.noHistory {
		hm, err := history.NewHistoryManager(core.HistoryFile(), a.logger.Named("history"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize history manager: %w", err)
		}
		historyManager = hm
		cleanup = func() {
			if err := hm.Close(); err != nil {
				a.logger.Warn("failed to close history", zap.Error(err))
			}
		}
	}

	r := repl.NewREPL(repl.Options{
		Config:       a.config,
		History:      historyManager,
		Logger:       a.logger,
		Stdin:        in,
		Stdout:       out,
		Stderr:       errOut,
		BuildVersion: BUILD_VERSION,
	})
	return r, cleanup, nil
}

func (a *app) runShell(ctx context.Context, in io.Reader, out, errOut io.Writer) error {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r, cleanup, err := a.newREPL(in, out, errOut, true)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("unhandled error", zap.Error(err))
			return err
		}
		return nil
	}

	r, cleanup, err := a.newREPL(in, out, errOut, false)
	if err != nil {
		return err
	}
	defer cleanup()

	return runScript(ctx, r, in, errOut)
}

// runScript executes each input line as a command. Command failures are
// reported as they happen and execution continues; the returned error only
// counts them.
func runScript(ctx context.Context, r *repl.REPL, in io.Reader, errOut io.Writer) error {
	failed := 0
	summary := func() error {
		if failed == 0 {
			return nil
		}
		return fmt.Errorf("%d command(s) failed", failed)
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		err := r.Execute(ctx, line)
		if errors.Is(err, repl.ErrExit) {
			return summary()
		}
		if err != nil {
			fmt.Fprintln(errOut, styles.Error(errOut, "fsagent: "+err.Error()))
			failed++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return summary()
}
