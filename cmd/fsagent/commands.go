package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/atinylittleshell/fsagent/internal/repl/agent"
)

func newListCmd(a *app) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ls [directory]",
		Short: "List files as the list_files tool does",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := agent.ListFilesRequest{Directory: firstArg(args)}
			if cmd.Flags().Changed("recursive") {
				req.Recursive = &recursive
			}
			return a.callTool(cmd, agent.ToolListFiles, req)
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "descend into subdirectories")
	return cmd
}

func newReadCmd(a *app) *cobra.Command {
	var req agent.ReadFileRequest

	cmd := &cobra.Command{
		Use:   "read <file>",
		Short: "Read a file as the read_file tool does",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.FilePath = args[0]
			return a.callTool(cmd, agent.ToolReadFile, req)
		},
	}
	cmd.Flags().IntVar(&req.StartLine, "start", 0, "first line to read (1-indexed)")
	cmd.Flags().IntVar(&req.EndLine, "end", 0, "last line to read (inclusive)")
	cmd.Flags().BoolVarP(&req.LineNumbers, "line-numbers", "n", false, "prefix lines with their number")
	return cmd
}

func newGrepCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "grep <text> [directory]",
		Short: "Search files for a literal string as the grep tool does",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := agent.GrepRequest{SearchString: args[0]}
			if len(args) == 2 {
				req.Directory = args[1]
			}
			return a.callTool(cmd, agent.ToolGrep, req)
		},
	}
}

func newCallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [json-arguments]",
		Short: "Invoke an agent tool with raw JSON arguments",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, cleanup, err := a.newREPL(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := r.Tools().Execute(cmd.Context(), args[0], firstArg(args[1:]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func newToolsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the agent tool definitions as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, cleanup, err := a.newREPL(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			return writeJSON(cmd.OutOrStdout(), r.Tools().Definitions())
		},
	}
}

func newCompleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <line> [cursor]",
		Short: "Print path completions for an input line",
		Long: `Print the completion candidates for an input line, one per line.

The cursor is a character offset into the line and defaults to its end.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			line := args[0]
			cursor := utf8.RuneCountInString(line)
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid cursor %q: %w", args[1], err)
				}
				cursor = n
			}

			r, cleanup, err := a.newREPL(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			for candidate := range r.Completer().GetCompletions(line, cursor) {
				fmt.Fprintln(cmd.OutOrStdout(), candidate.Text)
			}
			return nil
		},
	}
}

// callTool runs a tool through the registry so the command line and the
// agent see identical JSON.
func (a *app) callTool(cmd *cobra.Command, name string, req any) error {
	arguments, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode %s arguments: %w", name, err)
	}

	r, cleanup, err := a.newREPL(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := r.Tools().Execute(cmd.Context(), name, string(arguments))
	if err != nil {
		return err
	}

	var pretty any
	if err := json.Unmarshal([]byte(result), &pretty); err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), pretty)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
