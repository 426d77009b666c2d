// Package mcp implements the Model Context Protocol (MCP) server for phpsymbols.
//
// The server exposes the workspace symbol tables to AI coding assistants:
//   - index_workspace: Read every PHP file below a directory
//   - open_document, change_document, close_document: Mirror editor buffers
//   - find_symbol: Exact lookup by fully qualified or short name
//   - match_symbols: Substring search over the live tables or the catalog
//   - go_to_definition: Resolve the reference at a position
//   - get_status: Table and catalog statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// stdout carries protocol messages only; logs are written to stderr.
//
// # Tool: go_to_definition
//
//	Request:
//	{
//	  "name": "go_to_definition",
//	  "arguments": {
//	    "path": "/srv/app/src/Controller/HomeController.php",
//	    "line": 14,
//	    "character": 21
//	  }
//	}
//
//	Response:
//	{
//	  "found": true,
//	  "definitions": [
//	    {
//	      "name": "App\\Service\\Mailer::send",
//	      "kind": "method",
//	      "scope": "App\\Service\\Mailer",
//	      "modifiers": "public",
//	      "signature": "public function send(string $to): bool",
//	      "uri": "file:///srv/app/src/Service/Mailer.php",
//	      "range": {"start": {"line": 9, "character": 4}, "end": {"line": 12, "character": 5}}
//	    }
//	  ]
//	}
//
// Positions are zero-based with UTF-16 columns, as in LSP. Set "all" to
// receive every candidate when a member name is ambiguous.
//
// # Tool: match_symbols
//
// With "source": "memory" (the default) the live tables are searched,
// including variables of open documents. "catalog" searches the SQLite
// catalog, which survives restarts but holds declarations only.
//
// # Error Handling
//
// Handlers return *MCPError values which the framework encodes as JSON-RPC
// errors:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (database, filesystem, etc.)
//   - -32001: Document not found
//   - -32002: Indexing in progress
//   - -32003: Document not indexed
//   - -32004: Empty query
//   - -32005: Catalog not configured
//   - -32006: Parser not available in this build
//
// # MCP Client Configuration
//
//	{
//	  "mcpServers": {
//	    "phpsymbols": {
//	      "command": "/usr/local/bin/phpsymbols",
//	      "env": {
//	        "PHPSYMBOLS_WATCH": "true"
//	      }
//	    }
//	  }
//	}
package mcp
