package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"multiroot/internal/config"
)

// ErrServerNotRunning is returned when no streamable-http server answers at
// the configured address.
var ErrServerNotRunning = errors.New("multiroot server is not running")

// For mocking in tests
var dialTimeout = time.Second

// Endpoint returns the streamable-http URL described by the server config.
func Endpoint(cfg config.ServerConfig) string {
	path := cfg.EndpointPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("http://%s%s", net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)), path)
}

// CheckServerRunning verifies that something accepts connections at endpoint.
func CheckServerRunning(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	conn, err := net.DialTimeout("tcp", u.Host, dialTimeout)
	if err != nil {
		return fmt.Errorf("%w at %s (start it with 'multiroot serve --transport %s')",
			ErrServerNotRunning, u.Host, config.TransportStreamableHTTP)
	}
	conn.Close()
	return nil
}

// CLIClient provides a simplified MCP client for CLI commands
type CLIClient struct {
	endpoint string
	client   *client.Client
	timeout  time.Duration
}

// NewCLIClient creates a client for the server described by cfg.
func NewCLIClient(cfg config.ServerConfig) *CLIClient {
	return NewCLIClientWithEndpoint(Endpoint(cfg))
}

// NewCLIClientWithEndpoint creates a new CLI client with a specific endpoint
func NewCLIClientWithEndpoint(endpoint string) *CLIClient {
	return &CLIClient{
		endpoint: endpoint,
		timeout:  30 * time.Second,
	}
}

// Endpoint returns the URL the client connects to.
func (c *CLIClient) Endpoint() string {
	return c.endpoint
}

// Connect establishes connection to the multiroot server
func (c *CLIClient) Connect(ctx context.Context) error {
	httpClient, err := client.NewStreamableHttpClient(c.endpoint)
	if err != nil {
		return fmt.Errorf("failed to create streamable-http client: %w", err)
	}

	if err := httpClient.Start(ctx); err != nil {
		return fmt.Errorf("failed to start streamable-http client: %w", err)
	}
	c.client = httpClient

	if err := c.initialize(ctx); err != nil {
		httpClient.Close()
		c.client = nil
		return fmt.Errorf("initialization failed: %w", err)
	}

	return nil
}

// CallTool executes a tool and returns the result
func (c *CLIClient) CallTool(ctx context.Context, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	if c.client == nil {
		return nil, fmt.Errorf("client not connected")
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.client.CallTool(timeoutCtx, req)
	if err != nil {
		return nil, fmt.Errorf("tool call failed: %w", err)
	}

	return result, nil
}

// CallToolSimple executes a tool and returns the text content as a string
func (c *CLIClient) CallToolSimple(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	result, err := c.CallTool(ctx, name, args)
	if err != nil {
		return "", err
	}

	if result.IsError {
		return "", fmt.Errorf("tool error: %s", strings.Join(textContents(result), "\n"))
	}

	output := textContents(result)
	if len(output) == 0 {
		return "", nil
	}
	return output[0], nil
}

// CallToolInto executes a tool and decodes its JSON result into v.
func (c *CLIClient) CallToolInto(ctx context.Context, name string, args map[string]interface{}, v any) error {
	textResult, err := c.CallToolSimple(ctx, name, args)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(textResult), v); err != nil {
		return fmt.Errorf("decoding %s result: %w", name, err)
	}
	return nil
}

// Close closes the connection
func (c *CLIClient) Close() error {
	if c.client != nil {
		err := c.client.Close()
		c.client = nil
		return err
	}
	return nil
}

// initialize performs the MCP protocol handshake
func (c *CLIClient) initialize(ctx context.Context) error {
	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    "multiroot-cli",
		Version: "1.0.0",
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.client.Initialize(timeoutCtx, req)
	return err
}

func textContents(result *mcp.CallToolResult) []string {
	var out []string
	for _, content := range result.Content {
		if textContent, ok := mcp.AsTextContent(content); ok {
			out = append(out, textContent.Text)
		}
	}
	return out
}
