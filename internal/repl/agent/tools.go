package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"
)

// Tool names exposed to the agent.
const (
	ToolListFiles = "list_files"
	ToolReadFile  = "read_file"
	ToolGrep      = "grep"
)

var (
	// ErrUnknownTool is returned by Execute for names not in the registry.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrMissingArgument is returned when a required argument is absent.
	ErrMissingArgument = errors.New("missing required argument")
	// ErrInvalidArguments is returned when the arguments are not valid JSON.
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

type toolHandler func(ctx context.Context, args json.RawMessage) (any, error)

type registeredTool struct {
	definition openai.Tool
	handler    toolHandler
}

// Registry maps tool names to their definitions and handlers.
type Registry struct {
	tools  map[string]registeredTool
	order  []string
	logger *zap.Logger
}

// NewRegistry creates a registry with the list_files, read_file and grep
// tools backed by files.
func NewRegistry(files *FileTools, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{tools: map[string]registeredTool{}, logger: logger}

	r.register(ListFilesToolDefinition(), func(ctx context.Context, args json.RawMessage) (any, error) {
		var req ListFilesRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return files.ListFiles(ctx, req), nil
	})

	r.register(ReadFileToolDefinition(), func(ctx context.Context, args json.RawMessage) (any, error) {
		var req ReadFileRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		if req.FilePath == "" {
			return nil, fmt.Errorf("%s: %w: file_path", ToolReadFile, ErrMissingArgument)
		}
		return files.ReadFile(ctx, req), nil
	})

	r.register(GrepToolDefinition(), func(ctx context.Context, args json.RawMessage) (any, error) {
		var req GrepRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		if req.SearchString == "" {
			return nil, fmt.Errorf("%s: %w: search_string", ToolGrep, ErrMissingArgument)
		}
		return files.Grep(ctx, req), nil
	})

	return r
}

func (r *Registry) register(def openai.Tool, handler toolHandler) {
	name := def.Function.Name
	r.tools[name] = registeredTool{definition: def, handler: handler}
	r.order = append(r.order, name)
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Definitions returns the OpenAI tool definitions in registration order.
func (r *Registry) Definitions() []openai.Tool {
	return lo.Map(r.order, func(name string, _ int) openai.Tool {
		return r.tools[name].definition
	})
}

// Execute runs the named tool with JSON encoded arguments and returns its
// JSON encoded response. Failures inside a tool, such as a missing file, are
// reported in the response's error field rather than as an error.
func (r *Registry) Execute(ctx context.Context, name, arguments string) (string, error) {
	tool, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	r.logger.Debug("executing tool", zap.String("tool", name), zap.String("arguments", arguments))

	result, err := tool.handler(ctx, json.RawMessage(arguments))
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s result: %w", name, err)
	}
	return string(out), nil
}

func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}

// ListFilesToolDefinition returns the tool definition for the list_files tool.
func ListFilesToolDefinition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        ToolListFiles,
			Description: "List files and directories. Returns each entry's relative path, type, size and depth, plus a summary. Commonly ignored directories such as .git and node_modules are skipped.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"directory": {
						Type:        jsonschema.String,
						Description: "Directory to list (relative or absolute). Defaults to the current directory.",
					},
					"recursive": {
						Type:        jsonschema.Boolean,
						Description: "Whether to descend into subdirectories.",
					},
				},
			},
		},
	}
}

// ReadFileToolDefinition returns the tool definition for the read_file tool.
func ReadFileToolDefinition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        ToolReadFile,
			Description: "Read the contents of a text file. Use start_line and end_line to read a specific range and line_numbers to prefix each line with its 5-digit 1-indexed line number (e.g., '    1:content').",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"file_path": {
						Type:        jsonschema.String,
						Description: "The path to the file to read (can be relative or absolute)",
					},
					"start_line": {
						Type:        jsonschema.Integer,
						Description: "Optional 1-indexed start line (inclusive). Defaults to 1.",
					},
					"end_line": {
						Type:        jsonschema.Integer,
						Description: "Optional 1-indexed end line (inclusive). Defaults to end of file.",
					},
					"line_numbers": {
						Type:        jsonschema.Boolean,
						Description: "Prefix each line with its line number.",
					},
				},
				Required: []string{"file_path"},
			},
		},
	}
}

// GrepToolDefinition returns the tool definition for the grep tool.
func GrepToolDefinition() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        ToolGrep,
			Description: "Search text files for lines containing a literal string. Returns matching lines with file paths relative to the searched directory and 1-indexed line numbers.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"search_string": {
						Type:        jsonschema.String,
						Description: "The literal text to search for",
					},
					"directory": {
						Type:        jsonschema.String,
						Description: "Directory to search (relative or absolute). Defaults to the current directory.",
					},
				},
				Required: []string{"search_string"},
			},
		},
	}
}
