package repl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/shell"

	"github.com/atinylittleshell/fsagent/internal/history"
	"github.com/atinylittleshell/fsagent/internal/repl/agent"
)

// ErrExit is returned when the user requests to exit the REPL.
var ErrExit = fmt.Errorf("exit requested")

// historySearchLimit bounds the results of the history command.
const historySearchLimit = 20

type commandHandler func(r *REPL, ctx context.Context, args []string) error

type command struct {
	usage       string
	description string
	handler     commandHandler
}

var commands map[string]command

var commandOrder = []string{"ls", "read", "grep", "tools", "call", "history", "help", "exit"}

func init() {
	commands = map[string]command{
		"ls": {
			usage:       "ls [@dir] [-r|--flat]",
			description: "list a directory",
			handler:     (*REPL).handleList,
		},
		"read": {
			usage:       "read @file [start [end]] [-n]",
			description: "print a file or a line range of it",
			handler:     (*REPL).handleRead,
		},
		"grep": {
			usage:       "grep <text> [@dir]",
			description: "search files for a literal string",
			handler:     (*REPL).handleGrep,
		},
		"tools": {
			usage:       "tools",
			description: "print the agent tool definitions",
			handler:     (*REPL).handleTools,
		},
		"call": {
			usage:       "call <tool> [json]",
			description: "invoke an agent tool with JSON arguments",
			handler:     (*REPL).handleCall,
		},
		"history": {
			usage:       "history [query]",
			description: "fuzzy search previous commands",
			handler:     (*REPL).handleHistory,
		},
		"help": {
			usage:       "help",
			description: "show commands and key bindings",
			handler:     (*REPL).handleHelp,
		},
		"exit": {
			usage:       "exit",
			description: "leave fsagent",
			handler:     (*REPL).handleExit,
		},
	}
	commands["quit"] = commands["exit"]
}

// Execute runs one command line. Blank lines are ignored. Every non-blank
// line is recorded in history together with whether it succeeded.
func (r *REPL) Execute(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	fields, err := shell.Fields(line, nil)
	if err != nil {
		return fmt.Errorf("failed to parse command: %w", err)
	}
	if len(fields) == 0 {
		return nil
	}

	name := fields[0]
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q, type help for a list of commands", name)
	}

	entry := r.startHistory(line)
	err = cmd.handler(r, ctx, fields[1:])
	r.finishHistory(entry, err)
	return err
}

func (r *REPL) handleList(ctx context.Context, args []string) error {
	req := agent.ListFilesRequest{}
	dirArg := ""
	for _, arg := range args {
		switch arg {
		case "-r", "--recursive":
			req.Recursive = lo.ToPtr(true)
		case "--flat":
			req.Recursive = lo.ToPtr(false)
		default:
			if dirArg != "" {
				return fmt.Errorf("ls: unexpected argument %q", arg)
			}
			dirArg = arg
		}
	}
	req.Directory = r.resolvePath(dirArg)

	var resp agent.ListFilesResponse
	r.runTool(agent.ToolListFiles, req.Directory, func() string {
		resp = r.files.ListFiles(ctx, req)
		return resp.Error
	})
	r.renderer.RenderListing(resp)
	return nil
}

func (r *REPL) handleRead(ctx context.Context, args []string) error {
	req := agent.ReadFileRequest{}
	var positional []string
	for _, arg := range args {
		if arg == "-n" || arg == "--line-numbers" {
			req.LineNumbers = true
			continue
		}
		positional = append(positional, arg)
	}
	if len(positional) == 0 || len(positional) > 3 {
		return fmt.Errorf("usage: %s", commands["read"].usage)
	}
	req.FilePath = r.resolvePath(positional[0])

	lines := make([]int, 0, 2)
	for _, raw := range positional[1:] {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return fmt.Errorf("read: invalid line number %q", raw)
		}
		lines = append(lines, n)
	}
	if len(lines) > 0 {
		req.StartLine = lines[0]
	}
	if len(lines) > 1 {
		req.EndLine = lines[1]
	}

	var resp agent.ReadFileResponse
	r.runTool(agent.ToolReadFile, req.FilePath, func() string {
		resp = r.files.ReadFile(ctx, req)
		return resp.Error
	})
	r.renderer.RenderFile(resp)
	return nil
}

func (r *REPL) handleGrep(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("usage: %s", commands["grep"].usage)
	}
	req := agent.GrepRequest{SearchString: args[0], Directory: r.resolvePath("")}
	if len(args) == 2 {
		req.Directory = r.resolvePath(args[1])
	}

	var resp agent.GrepResponse
	r.runTool(agent.ToolGrep, req.SearchString, func() string {
		resp = r.files.Grep(ctx, req)
		return resp.Error
	})
	r.renderer.RenderMatches(resp)
	return nil
}

func (r *REPL) handleTools(_ context.Context, _ []string) error {
	out, err := json.MarshalIndent(r.tools.Definitions(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tool definitions: %w", err)
	}
	fmt.Fprintln(r.stdout, string(out))
	return nil
}

func (r *REPL) handleCall(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("usage: %s", commands["call"].usage)
	}
	arguments := ""
	if len(args) == 2 {
		arguments = args[1]
	}

	start := time.Now()
	result, err := r.tools.Execute(ctx, args[0], arguments)
	if err != nil {
		return err
	}
	r.logger.Debug("tool call finished", zap.String("tool", args[0]), zap.Duration("duration", time.Since(start)))
	fmt.Fprintln(r.stdout, result)
	return nil
}

func (r *REPL) handleHistory(_ context.Context, args []string) error {
	if r.history == nil {
		r.renderer.RenderSystemMessage("history is disabled")
		return nil
	}

	entries, err := r.history.SearchHistory(strings.Join(args, " "), historySearchLimit)
	if err != nil {
		return fmt.Errorf("failed to search history: %w", err)
	}
	if len(entries) == 0 {
		r.renderer.RenderSystemMessage("no matching history")
		return nil
	}
	for _, entry := range entries {
		fmt.Fprintf(r.stdout, "%6d  %s\n", entry.ID, entry.Command)
	}
	return nil
}

func (r *REPL) handleHelp(_ context.Context, _ []string) error {
	fmt.Fprintln(r.stdout, "Commands:")
	for _, name := range commandOrder {
		cmd := commands[name]
		fmt.Fprintf(r.stdout, "  %-32s %s\n", cmd.usage, cmd.description)
	}
	fmt.Fprintf(r.stdout, "\nType %s to complete a file or directory path.\n\n", r.config.TriggerSymbol)

	h := help.New()
	h.Width = r.terminalWidth()
	fmt.Fprintln(r.stdout, h.FullHelpView(r.keymap.FullHelp()))
	return nil
}

func (r *REPL) handleExit(_ context.Context, _ []string) error {
	return ErrExit
}

// runTool wraps a tool invocation with start and completion status lines.
// run returns the tool's error message, empty on success.
func (r *REPL) runTool(name, target string, run func() string) {
	r.renderer.RenderToolStart(name, target)
	start := time.Now()
	failure := run()
	r.renderer.RenderToolComplete(name, time.Since(start), failure == "")
}

// resolvePath strips the completion trigger from a path argument, expands a
// leading ~ to the home directory and anchors relative paths at the working
// directory, so commands see the same tree the completer offered. An empty
// argument resolves to the working directory itself.
func (r *REPL) resolvePath(arg string) string {
	if trigger := r.config.TriggerSymbol; trigger != "" {
		arg = strings.TrimPrefix(arg, trigger)
	}
	arg = expandHome(arg)
	if filepath.IsAbs(arg) {
		return arg
	}

	wd, err := r.workDir()
	if err != nil {
		r.logger.Debug("failed to resolve working directory", zap.Error(err))
		return arg
	}
	return filepath.Join(wd, arg)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func (r *REPL) startHistory(line string) *history.HistoryEntry {
	if r.history == nil {
		return nil
	}
	dir, _ := r.workDir()
	entry, err := r.history.StartCommand(line, dir)
	if err != nil {
		r.logger.Warn("failed to record command in history", zap.Error(err))
		return nil
	}
	return entry
}

func (r *REPL) finishHistory(entry *history.HistoryEntry, err error) {
	if entry == nil {
		return
	}
	if _, finishErr := r.history.FinishCommand(entry, err == nil || errors.Is(err, ErrExit)); finishErr != nil {
		r.logger.Warn("failed to update history entry", zap.Error(finishErr))
	}
}
