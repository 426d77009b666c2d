package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var symbolKinds = []string{
	"namespace", "class", "interface", "trait", "method", "property",
	"constant", "class_constant", "function", "variable", "parameter",
}

func documentProperties() map[string]interface{} {
	return map[string]interface{}{
		"uri": map[string]interface{}{
			"type":        "string",
			"description": "Document URI (file:///... or any editor scheme)",
		},
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute file path, used when uri is omitted",
		},
	}
}

// indexWorkspaceTool returns the tool definition for index_workspace
func indexWorkspaceTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_workspace",
		Description: "Read every PHP source file below a directory into the symbol tables",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the project root",
				},
			},
			Required: []string{"path"},
		},
	}
}

// openDocumentTool returns the tool definition for open_document
func openDocumentTool() mcp.Tool {
	props := documentProperties()
	props["text"] = map[string]interface{}{
		"type":        "string",
		"description": "Full document text",
	}
	props["version"] = map[string]interface{}{
		"type":        "integer",
		"description": "Editor version of the text",
		"default":     1,
	}
	return mcp.Tool{
		Name:        "open_document",
		Description: "Open a document in the editor and read it in full, including local variables",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"text"},
		},
	}
}

// changeDocumentTool returns the tool definition for change_document
func changeDocumentTool() mcp.Tool {
	props := documentProperties()
	props["text"] = map[string]interface{}{
		"type":        "string",
		"description": "Full document text after the edit",
	}
	props["version"] = map[string]interface{}{
		"type":        "integer",
		"description": "Editor version of the text",
	}
	props["flush"] = map[string]interface{}{
		"type":        "boolean",
		"description": "If true, apply the edit now instead of after the debounce delay",
		"default":     false,
	}
	return mcp.Tool{
		Name:        "change_document",
		Description: "Replace the text of an open document; rapid edits are coalesced",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"text", "version"},
		},
	}
}

// closeDocumentTool returns the tool definition for close_document
func closeDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "close_document",
		Description: "Close a document; file-backed documents fall back to their contents on disk",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: documentProperties(),
		},
	}
}

// findSymbolTool returns the tool definition for find_symbol
func findSymbolTool() mcp.Tool {
	return mcp.Tool{
		Name:        "find_symbol",
		Description: "Find symbols by exact fully qualified or short name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Name to look up, e.g. App\\Models\\User or User",
				},
				"kinds": kindsProperty(),
			},
			Required: []string{"name"},
		},
	}
}

// matchSymbolsTool returns the tool definition for match_symbols
func matchSymbolsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "match_symbols",
		Description: "Find symbols whose name contains the query",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Substring to match",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-500)",
					"default":     50,
					"minimum":     1,
					"maximum":     500,
				},
				"kinds": kindsProperty(),
				"scope": map[string]interface{}{
					"type":        "string",
					"description": "Only members of this fully qualified class",
				},
				"source": map[string]interface{}{
					"type":        "string",
					"description": "memory searches the live tables, catalog the persisted index",
					"enum":        []string{"memory", "catalog"},
					"default":     "memory",
				},
			},
			Required: []string{"query"},
		},
	}
}

// goToDefinitionTool returns the tool definition for go_to_definition
func goToDefinitionTool() mcp.Tool {
	props := documentProperties()
	props["line"] = map[string]interface{}{
		"type":        "integer",
		"description": "Zero-based line",
		"minimum":     0,
	}
	props["character"] = map[string]interface{}{
		"type":        "integer",
		"description": "Zero-based UTF-16 column",
		"minimum":     0,
	}
	props["all"] = map[string]interface{}{
		"type":        "boolean",
		"description": "If true, return every candidate instead of the first",
		"default":     false,
	}
	return mcp.Tool{
		Name:        "go_to_definition",
		Description: "Resolve the reference at a position to its declaration",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"line", "character"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report symbol table and catalog statistics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

func kindsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Filter by symbol kind",
		"items": map[string]interface{}{
			"type": "string",
			"enum": symbolKinds,
		},
	}
}
