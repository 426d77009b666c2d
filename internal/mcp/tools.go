package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.lsp.dev/protocol"

	"github.com/dshills/phpsymbols/internal/storage"
	"github.com/dshills/phpsymbols/internal/syntax"
	"github.com/dshills/phpsymbols/internal/workspace"
	"github.com/dshills/phpsymbols/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeDocumentNotFound   = -32001 // Document is not known to the workspace
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeNotIndexed         = -32003 // Document has no symbol table yet
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
	ErrorCodeCatalogUnavailable = -32005 // No persistent catalog configured
	ErrorCodeParserUnavailable  = -32006 // Built without the PHP grammar
)

const (
	defaultMatchLimit = 50
	maxMatchLimit     = 500
	maxInlineErrors   = 5
)

// symbolResult is the wire form of a symbol
type symbolResult struct {
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Scope     string          `json:"scope,omitempty"`
	Modifiers string          `json:"modifiers,omitempty"`
	Type      string          `json:"type,omitempty"`
	Signature string          `json:"signature,omitempty"`
	URI       string          `json:"uri,omitempty"`
	Range     *protocol.Range `json:"range,omitempty"`
}

func fromSymbol(s *types.Symbol) symbolResult {
	r := symbolResult{
		Name:      s.Name,
		Kind:      s.Kind.String(),
		Scope:     s.Scope,
		Modifiers: s.Modifiers.String(),
		Type:      s.Type.String(),
		Signature: s.Signature(),
	}
	if s.Location != nil {
		r.URI = string(s.Location.URI)
		rng := s.Location.Range
		r.Range = &rng
	}
	return r
}

func fromCatalogSymbol(s *storage.Symbol) symbolResult {
	loc := s.Location()
	return symbolResult{
		Name:      s.Name,
		Kind:      s.Kind,
		Scope:     s.Scope,
		Modifiers: s.Modifiers,
		Type:      s.Type,
		Signature: s.Signature,
		URI:       s.URI,
		Range:     &loc.Range,
	}
}

// handleIndexWorkspace handles the index_workspace tool invocation
func (s *Server) handleIndexWorkspace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	stats, err := s.workspace.IndexDirectory(ctx, path)
	if err != nil {
		return nil, toolError("indexing failed", err)
	}

	response := map[string]interface{}{
		"indexed":           true,
		"files_indexed":     stats.FilesIndexed,
		"files_skipped":     stats.FilesSkipped,
		"files_failed":      stats.FilesFailed,
		"symbols_extracted": stats.SymbolsExtracted,
		"duration_ms":       stats.Duration.Milliseconds(),
	}
	if s.watcher != nil {
		if err := s.watcher.Add(path); err != nil {
			s.log.Warn("failed to watch directory", "path", path, "error", err)
		} else {
			response["watching"] = true
		}
	}
	if len(stats.ErrorMessages) > 0 {
		errorCount := len(stats.ErrorMessages)
		if errorCount > maxInlineErrors {
			response["errors"] = stats.ErrorMessages[:maxInlineErrors]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleOpenDocument handles the open_document tool invocation
func (s *Server) handleOpenDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	u, err := documentURI(args)
	if err != nil {
		return nil, err
	}
	text, ok := args["text"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "text parameter is required", map[string]interface{}{
			"param": "text",
		})
	}
	version := getIntDefault(args, "version", 1)

	if err := s.workspace.Open(ctx, u, text, int32(version)); err != nil {
		return nil, toolError("failed to open document", err)
	}
	return mcp.NewToolResultText(formatJSON(s.documentSummary(u))), nil
}

// handleChangeDocument handles the change_document tool invocation
func (s *Server) handleChangeDocument(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	u, err := documentURI(args)
	if err != nil {
		return nil, err
	}
	if !s.workspace.IsOpen(u) {
		return nil, newMCPError(ErrorCodeDocumentNotFound, "document is not open", map[string]interface{}{
			"uri": string(u),
		})
	}
	text, ok := args["text"].(string)
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "text parameter is required", map[string]interface{}{
			"param": "text",
		})
	}
	version := getIntDefault(args, "version", 0)

	s.workspace.Change(u, text, int32(version))
	if getBoolDefault(args, "flush", false) {
		s.workspace.Flush()
	}
	return mcp.NewToolResultText(formatJSON(s.documentSummary(u))), nil
}

// handleCloseDocument handles the close_document tool invocation
func (s *Server) handleCloseDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	u, err := documentURI(args)
	if err != nil {
		return nil, err
	}
	if err := s.workspace.Close(ctx, u); err != nil {
		return nil, toolError("failed to close document", err)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"uri":    string(u),
		"closed": true,
	})), nil
}

// handleFindSymbol handles the find_symbol tool invocation
func (s *Server) handleFindSymbol(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "name parameter is required and cannot be empty", map[string]interface{}{
			"param":  "name",
			"reason": "missing or empty",
		})
	}
	kinds, err := getKinds(args)
	if err != nil {
		return nil, err
	}

	results := filterSymbols(s.workspace.FindExact(name), kinds, "", 0)
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"name":    name,
		"count":   len(results),
		"symbols": results,
	})), nil
}

// handleMatchSymbols handles the match_symbols tool invocation
func (s *Server) handleMatchSymbols(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", defaultMatchLimit)
	if limit < 1 || limit > maxMatchLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", maxMatchLimit), map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}
	kinds, err := getKinds(args)
	if err != nil {
		return nil, err
	}
	scope := getStringDefault(args, "scope", "")

	source := getStringDefault(args, "source", "memory")
	var results []symbolResult
	switch source {
	case "memory":
		results = filterSymbols(s.workspace.MatchSubstring(query), kinds, scope, limit)
	case "catalog":
		if s.catalog == nil {
			return nil, newMCPError(ErrorCodeCatalogUnavailable, "no catalog configured", nil)
		}
		filters := &storage.SearchFilters{Scope: scope}
		for _, k := range kinds {
			filters.Kinds = append(filters.Kinds, k.String())
		}
		rows, err := s.catalog.SearchSymbols(ctx, query, limit, filters)
		if err != nil {
			return nil, toolError("catalog search failed", err)
		}
		results = make([]symbolResult, 0, len(rows))
		for _, row := range rows {
			results = append(results, fromCatalogSymbol(row))
		}
	default:
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid source", map[string]interface{}{
			"param":   "source",
			"value":   source,
			"allowed": []string{"memory", "catalog"},
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"query":   query,
		"source":  source,
		"count":   len(results),
		"symbols": results,
	})), nil
}

// handleGoToDefinition handles the go_to_definition tool invocation
func (s *Server) handleGoToDefinition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	u, err := documentURI(args)
	if err != nil {
		return nil, err
	}
	line := getIntDefault(args, "line", -1)
	character := getIntDefault(args, "character", -1)
	if line < 0 || character < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "line and character must be non-negative", map[string]interface{}{
			"line":      line,
			"character": character,
		})
	}
	pos := protocol.Position{Line: uint32(line), Character: uint32(character)}

	candidates, err := s.workspace.Candidates(ctx, u, pos)
	if err != nil {
		return nil, toolError("definition lookup failed", err)
	}
	if !getBoolDefault(args, "all", false) && len(candidates) > 1 {
		candidates = candidates[:1]
	}

	results := make([]symbolResult, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, fromSymbol(c))
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"uri":         string(u),
		"position":    pos,
		"found":       len(results) > 0,
		"definitions": results,
	})), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := s.workspace.Status()
	response := map[string]interface{}{
		"tables": map[string]interface{}{
			"documents":      st.Documents,
			"symbols":        st.Symbols,
			"keys":           st.Keys,
			"open_documents": st.Open,
			"pending_edits":  st.Pending,
			"indexing":       st.Indexing,
		},
	}

	if s.catalog == nil {
		response["catalog"] = map[string]interface{}{"enabled": false}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}

	cs, err := s.catalog.GetStatus(ctx)
	if err != nil {
		return nil, toolError("failed to get catalog status", err)
	}
	catalog := map[string]interface{}{
		"enabled":         true,
		"schema_version":  cs.SchemaVersion,
		"documents_count": cs.DocumentsCount,
		"symbols_count":   cs.SymbolsCount,
		"parse_errors":    cs.ParseErrors,
		"size_mb":         fmt.Sprintf("%.2f", cs.SizeMB),
		"build_mode":      cs.BuildMode,
	}
	if !cs.LastIndexedAt.IsZero() {
		catalog["last_indexed_at"] = cs.LastIndexedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	response["catalog"] = catalog
	return mcp.NewToolResultText(formatJSON(response)), nil
}

func (s *Server) documentSummary(u protocol.DocumentURI) map[string]interface{} {
	summary := map[string]interface{}{
		"uri":  string(u),
		"open": s.workspace.IsOpen(u),
	}
	if doc, _, ok := s.workspace.Snapshot(u); ok {
		summary["version"] = doc.Version()
	}
	if errs := s.workspace.Diagnostics(u); len(errs) > 0 {
		summary["parse_errors"] = errs
	}
	return summary
}

// Helper functions

// filterSymbols keeps symbols of the given kinds owned by scope, up to limit.
// Empty filters and a zero limit keep everything.
func filterSymbols(symbols []*types.Symbol, kinds []types.SymbolKind, scope string, limit int) []symbolResult {
	results := make([]symbolResult, 0, len(symbols))
	for _, sym := range symbols {
		if len(kinds) > 0 && !containsKind(kinds, sym.Kind) {
			continue
		}
		if scope != "" && !strings.EqualFold(sym.Scope, scope) {
			continue
		}
		results = append(results, fromSymbol(sym))
		if limit > 0 && len(results) == limit {
			break
		}
	}
	return results
}

func containsKind(kinds []types.SymbolKind, k types.SymbolKind) bool {
	for _, want := range kinds {
		if want == k {
			return true
		}
	}
	return false
}

// toolError maps domain errors onto MCP error codes
func toolError(message string, err error) error {
	data := map[string]interface{}{"error": err.Error()}
	switch {
	case errors.Is(err, types.ErrDocumentNotFound):
		return newMCPError(ErrorCodeDocumentNotFound, message, data)
	case errors.Is(err, types.ErrNotIndexed):
		return newMCPError(ErrorCodeNotIndexed, message, data)
	case errors.Is(err, types.ErrEmptyQuery):
		return newMCPError(ErrorCodeEmptyQuery, message, data)
	case errors.Is(err, workspace.ErrIndexInProgress):
		return newMCPError(ErrorCodeIndexingInProgress, message, data)
	case errors.Is(err, syntax.ErrParserUnavailable):
		return newMCPError(ErrorCodeParserUnavailable, message, data)
	default:
		return newMCPError(ErrorCodeInternalError, message, data)
	}
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// documentURI reads the uri argument or derives one from path
func documentURI(args map[string]interface{}) (protocol.DocumentURI, error) {
	if u, ok := args["uri"].(string); ok && u != "" {
		return protocol.DocumentURI(u), nil
	}
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "uri or path parameter is required", map[string]interface{}{
			"param":  "uri",
			"reason": "missing or empty",
		})
	}
	if !filepath.IsAbs(path) {
		return "", newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": ErrPathNotAbsolute.Error(),
		})
	}
	return workspace.PathURI(path), nil
}

// validatePath checks if a path is an accessible directory
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()
	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getKinds extracts the optional kinds filter
func getKinds(args map[string]interface{}) ([]types.SymbolKind, error) {
	raw, ok := args["kinds"].([]interface{})
	if !ok {
		return nil, nil
	}
	kinds := make([]types.SymbolKind, 0, len(raw))
	for _, v := range raw {
		name, _ := v.(string)
		k, ok := types.ParseKind(name)
		if !ok || k == types.KindNone {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid kind", map[string]interface{}{
				"param":   "kinds",
				"value":   v,
				"allowed": symbolKinds,
			})
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)
