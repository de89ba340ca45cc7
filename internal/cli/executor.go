package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ExecutorOptions contains options for tool execution
type ExecutorOptions struct {
	Format OutputFormat
	Quiet  bool
	Output io.Writer
}

// ToolExecutor provides high-level tool execution functionality
type ToolExecutor struct {
	client    *CLIClient
	options   ExecutorOptions
	formatter *Formatter
}

// NewToolExecutor creates an executor for the server at endpoint. It fails
// with ErrServerNotRunning when nothing listens there.
func NewToolExecutor(endpoint string, options ExecutorOptions) (*ToolExecutor, error) {
	if err := CheckServerRunning(endpoint); err != nil {
		return nil, err
	}
	return newToolExecutor(NewCLIClientWithEndpoint(endpoint), options), nil
}

func newToolExecutor(client *CLIClient, options ExecutorOptions) *ToolExecutor {
	if options.Output == nil {
		options.Output = os.Stdout
	}
	if options.Format == "" {
		options.Format = OutputFormatTable
	}
	return &ToolExecutor{
		client:    client,
		options:   options,
		formatter: NewFormatter(options.Format, options.Output),
	}
}

// Connect establishes connection to the server
func (e *ToolExecutor) Connect(ctx context.Context) error {
	return e.client.Connect(ctx)
}

// Close closes the connection
func (e *ToolExecutor) Close() error {
	return e.client.Close()
}

// Formatter returns the formatter used for output.
func (e *ToolExecutor) Formatter() *Formatter {
	return e.formatter
}

// Execute executes a tool and formats the output
func (e *ToolExecutor) Execute(ctx context.Context, toolName string, arguments map[string]interface{}) error {
	result, err := e.client.CallTool(ctx, toolName, arguments)
	if err != nil {
		return fmt.Errorf("failed to execute tool %s: %w", toolName, err)
	}

	if result.IsError {
		return e.formatError(result)
	}

	return e.formatOutput(result)
}

// ExecuteSimple executes a tool and returns the result as a string
func (e *ToolExecutor) ExecuteSimple(ctx context.Context, toolName string, args map[string]interface{}) (string, error) {
	return e.client.CallToolSimple(ctx, toolName, args)
}

// ExecuteInto executes a tool and decodes its JSON result into v.
func (e *ToolExecutor) ExecuteInto(ctx context.Context, toolName string, args map[string]interface{}, v any) error {
	return e.client.CallToolInto(ctx, toolName, args, v)
}

// formatError formats error output
func (e *ToolExecutor) formatError(result *mcp.CallToolResult) error {
	return fmt.Errorf("%s", strings.Join(textContents(result), "\n"))
}

// formatOutput formats the tool output according to the specified format
func (e *ToolExecutor) formatOutput(result *mcp.CallToolResult) error {
	texts := textContents(result)
	if len(texts) == 0 {
		if !e.options.Quiet {
			fmt.Fprintln(e.options.Output, "No results")
		}
		return nil
	}
	return e.formatter.RenderJSONText(texts[0])
}
