package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/phpsymbols/internal/logging"
	"github.com/dshills/phpsymbols/internal/storage"
	"github.com/dshills/phpsymbols/internal/workspace"
)

const (
	// ServerName is the MCP server name
	ServerName = "phpsymbols"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// DirectoryWatcher follows changes below indexed directories
type DirectoryWatcher interface {
	Add(root string) error
}

// Server exposes a workspace as MCP tools
type Server struct {
	mcp       *server.MCPServer
	workspace *workspace.Workspace
	catalog   storage.Catalog
	watcher   DirectoryWatcher
	log       *slog.Logger
}

// Option configures a Server
type Option func(*Server)

// WithWatcher watches every directory indexed through index_workspace
func WithWatcher(w DirectoryWatcher) Option {
	return func(s *Server) { s.watcher = w }
}

// NewServer creates a new MCP server instance. catalog may be nil, in which
// case searches only consult the in-memory tables.
func NewServer(ws *workspace.Workspace, catalog storage.Catalog, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		mcp:       server.NewMCPServer(ServerName, ServerVersion, server.WithToolCapabilities(false)),
		workspace: ws,
		catalog:   catalog,
		log:       logging.OrNop(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until ctx is cancelled or
// the input closes. stdout is reserved for the protocol.
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(indexWorkspaceTool(), s.handleIndexWorkspace)
	s.mcp.AddTool(openDocumentTool(), s.handleOpenDocument)
	s.mcp.AddTool(changeDocumentTool(), s.handleChangeDocument)
	s.mcp.AddTool(closeDocumentTool(), s.handleCloseDocument)
	s.mcp.AddTool(findSymbolTool(), s.handleFindSymbol)
	s.mcp.AddTool(matchSymbolsTool(), s.handleMatchSymbols)
	s.mcp.AddTool(goToDefinitionTool(), s.handleGoToDefinition)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
