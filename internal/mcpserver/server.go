package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"multiroot/internal/provider"
	"multiroot/internal/selection"
	"multiroot/internal/status"
	"multiroot/pkg/logging"
)

const (
	// NotifyConfigurationChanged tells clients per-file configurations may have changed.
	NotifyConfigurationChanged = "notifications/multiroot/didChangeCustomConfiguration"
	// NotifyBrowseConfigurationChanged tells clients browse configurations may have changed.
	NotifyBrowseConfigurationChanged = "notifications/multiroot/didChangeCustomBrowseConfiguration"
	// NotifyReady is sent once, after the first reload.
	NotifyReady = "notifications/multiroot/ready"

	// Transport names, mirrored from the config package.
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

// ErrAlreadyStarted is returned by Start on a running server.
var ErrAlreadyStarted = errors.New("host API server already started")

// ReloadFunc re-reads the configuration document and returns the new state.
type ReloadFunc func(ctx context.Context) selection.Snapshot

// notifier is the part of the MCP server used for broadcasts.
type notifier interface {
	SendNotificationToAllClients(method string, params map[string]any)
}

// Config configures the server.
type Config struct {
	Name         string
	Version      string
	Transport    string
	Host         string
	Port         int
	EndpointPath string

	// Stdin and Stdout are used by the stdio transport. They default to
	// the process streams.
	Stdin  io.Reader
	Stdout io.Writer
}

// Deps are the components the tools operate on.
type Deps struct {
	Controller *selection.Controller
	Provider   *provider.Provider
	Indicator  *status.Indicator
	Reload     ReloadFunc
}

// Server exposes the configuration provider over MCP.
type Server struct {
	config Config
	deps   Deps

	mcpServer *server.MCPServer
	notifier  notifier

	mu          sync.Mutex
	started     bool
	cancelFunc  context.CancelFunc
	unsubscribe func()
	httpServer  *http.Server
	listener    net.Listener
	done        chan struct{}
	wg          sync.WaitGroup

	readyOnce sync.Once
}

// New creates a server and registers its tools. Nothing is served until Start.
func New(cfg Config, deps Deps) *Server {
	if cfg.Name == "" {
		cfg.Name = "multiroot"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}

	mcpServer := server.NewMCPServer(
		cfg.Name,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		deps:      deps,
		mcpServer: mcpServer,
		notifier:  mcpServer,
	}
	mcpServer.AddTools(s.serverTools()...)
	return s
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Start subscribes to controller events and starts the transport. A
// transport that cannot start leaves nothing subscribed.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.done = make(chan struct{})

	switch s.config.Transport {
	case TransportStdio:
		s.startStdio(runCtx)
	case TransportStreamableHTTP:
		if err := s.startHTTP(); err != nil {
			cancel()
			return err
		}
	default:
		cancel()
		return fmt.Errorf("unknown transport %q", s.config.Transport)
	}

	s.cancelFunc = cancel
	s.unsubscribe = s.deps.Controller.Subscribe(s.handleEvent)
	s.started = true
	return nil
}

func (s *Server) startStdio(ctx context.Context) {
	stdio := server.NewStdioServer(s.mcpServer)
	logging.Info("HostAPI", "Serving MCP over stdio")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(s.done)
		if err := stdio.Listen(ctx, s.config.Stdin, s.config.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error("HostAPI", err, "stdio transport stopped")
		}
	}()
}

func (s *Server) startHTTP() error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	streamable := server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithEndpointPath(s.config.EndpointPath),
	)
	mux := http.NewServeMux()
	mux.Handle(s.config.EndpointPath, streamable)

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info("HostAPI", "Serving MCP over streamable-http at %s", s.endpointLocked())

	httpServer := s.httpServer
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(s.done)
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("HostAPI", err, "streamable-http transport stopped")
		}
	}()
	return nil
}

// Stop unsubscribes and shuts the transport down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	cancel := s.cancelFunc
	unsubscribe := s.unsubscribe
	httpServer := s.httpServer
	s.httpServer = nil
	s.listener = nil
	s.mu.Unlock()

	logging.Info("HostAPI", "Stopping host API server")

	unsubscribe()
	cancel()

	var err error
	if httpServer != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 5*time.Second)
		defer cancelShutdown()
		err = httpServer.Shutdown(shutdownCtx)
	}

	waitDone := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-ctx.Done():
		// The stdio reader may be blocked on a read that never returns.
	}
	return err
}

// Done is closed when the transport stops serving, for example when the
// stdio client closes its end.
func (s *Server) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Endpoint returns the streamable-http URL, or "" for stdio.
func (s *Server) Endpoint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpointLocked()
}

func (s *Server) endpointLocked() string {
	if s.config.Transport != TransportStreamableHTTP {
		return ""
	}
	addr := net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
	if s.listener != nil {
		addr = s.listener.Addr().String()
	}
	return "http://" + addr + s.config.EndpointPath
}

// handleEvent broadcasts the change notifications for a controller event.
func (s *Server) handleEvent(evt selection.Event) {
	params := map[string]any{
		"reason":              evt.Kind.String(),
		"activeConfiguration": evt.Snapshot.StatusText(),
		"hasActive":           evt.Snapshot.HasActive,
	}
	s.notifier.SendNotificationToAllClients(NotifyConfigurationChanged, params)
	s.notifier.SendNotificationToAllClients(NotifyBrowseConfigurationChanged, params)

	if evt.Kind == selection.EventReloaded {
		s.readyOnce.Do(func() {
			logging.Info("HostAPI", "Provider ready with %d configurations", len(evt.Snapshot.Names))
			s.notifier.SendNotificationToAllClients(NotifyReady, map[string]any{
				"name":        provider.Name,
				"extensionId": provider.ExtensionID,
			})
		})
	}
}
