// Package repl provides the interactive fsagent shell: a line editor with
// trigger-based path completion in front of the filesystem tools.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/atinylittleshell/fsagent/internal/history"
	"github.com/atinylittleshell/fsagent/internal/ignore"
	"github.com/atinylittleshell/fsagent/internal/repl/agent"
	"github.com/atinylittleshell/fsagent/internal/repl/completion"
	"github.com/atinylittleshell/fsagent/internal/repl/config"
	"github.com/atinylittleshell/fsagent/internal/repl/input"
	"github.com/atinylittleshell/fsagent/internal/repl/render"
)

// historyNavigationLimit bounds how many previous commands Up/Down can reach.
const historyNavigationLimit = 500

// Options configures a REPL.
type Options struct {
	Config *config.Config

	// History persists entered commands. Nil disables history.
	History *history.HistoryManager

	Logger *zap.Logger

	// Stdin, Stdout and Stderr default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// WorkDir returns the directory commands operate on. Defaults to os.Getwd.
	WorkDir func() (string, error)

	BuildVersion string
}

// REPL is the interactive fsagent shell.
type REPL struct {
	config    *config.Config
	history   *history.HistoryManager
	logger    *zap.Logger
	completer *completion.Completer
	files     *agent.FileTools
	tools     *agent.Registry
	keymap    *input.KeyMap
	renderer  *render.Renderer

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	workDir      func() (string, error)
	buildVersion string
}

// NewREPL wires the completer, the file tools and the renderer from opts.
func NewREPL(opts Options) *REPL {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &REPL{
		config:       cfg,
		history:      opts.History,
		logger:       logger,
		keymap:       input.DefaultKeyMap(),
		stdin:        opts.Stdin,
		stdout:       opts.Stdout,
		stderr:       opts.Stderr,
		workDir:      opts.WorkDir,
		buildVersion: opts.BuildVersion,
	}
	if r.stdin == nil {
		r.stdin = os.Stdin
	}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	if r.stderr == nil {
		r.stderr = os.Stderr
	}
	if r.workDir == nil {
		r.workDir = os.Getwd
	}

	matcher := ignore.New(ignore.Options{
		ExtraPatterns: cfg.IgnorePatterns,
		AllowHidden:   cfg.AllowHidden,
	})

	r.completer = completion.NewCompleter(completion.Options{
		Trigger: cfg.Trigger(),
		Ignorer: matcher,
		WorkDir: r.workDir,
		Logger:  logger.Named("completion"),
	})
	r.files = agent.NewFileTools(agent.Options{
		Ignorer:          matcher,
		MaxGrepMatches:   cfg.Grep.MaxMatches,
		MaxReadBytes:     cfg.Read.MaxBytes,
		DefaultRecursive: cfg.List.Recursive,
		Logger:           logger.Named("tools"),
	})
	r.tools = agent.NewRegistry(r.files, logger.Named("tools"))
	r.renderer = render.New(r.stdout, r.terminalWidth)

	return r
}

// Completer returns the path completer used by the line editor.
func (r *REPL) Completer() *completion.Completer {
	return r.completer
}

// Tools returns the agent tool registry.
func (r *REPL) Tools() *agent.Registry {
	return r.tools
}

// Run reads and executes commands until the user exits, sends EOF or ctx is
// cancelled.
func (r *REPL) Run(ctx context.Context) error {
	r.showWelcomeScreen()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := r.readLine(ctx)
		if err != nil {
			return err
		}

		switch result.Type {
		case input.ResultEOF:
			return nil
		case input.ResultInterrupt:
			continue
		case input.ResultSubmit:
			if err := r.Execute(ctx, result.Value); err != nil {
				if errors.Is(err, ErrExit) {
					return nil
				}
				r.renderer.RenderError(err.Error())
			}
		}
	}
}

func (r *REPL) readLine(ctx context.Context) (input.Result, error) {
	model := input.New(input.Config{
		Prompt:             r.config.Prompt,
		HistoryValues:      r.recentCommands(),
		CompletionProvider: r.completer,
		KeyMap:             r.keymap,
		Width:              r.terminalWidth(),
		Logger:             r.logger.Named("input"),
	})

	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(r.stdin),
		tea.WithOutput(r.stdout),
	)
	final, err := program.Run()
	if err != nil {
		return input.Result{}, fmt.Errorf("line editor failed: %w", err)
	}
	fmt.Fprintln(r.stdout)

	return final.(input.Model).Result(), nil
}

// recentCommands returns previous commands, most recent first.
func (r *REPL) recentCommands() []string {
	if r.history == nil {
		return nil
	}
	entries, err := r.history.GetRecentEntries("", historyNavigationLimit)
	if err != nil {
		r.logger.Warn("failed to load history", zap.Error(err))
		return nil
	}

	commands := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		commands = append(commands, entries[i].Command)
	}
	return commands
}

func (r *REPL) terminalWidth() int {
	if f, ok := r.stdout.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 80
}

func (r *REPL) showWelcomeScreen() {
	workDir, _ := r.workDir()
	render.RenderWelcome(r.stdout, render.WelcomeInfo{
		Version: r.buildVersion,
		Trigger: r.config.TriggerSymbol,
		WorkDir: workDir,
	}, r.terminalWidth())
}
