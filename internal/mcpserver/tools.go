// ABOUTME: MCP tool definitions and registration for the memvault server
// ABOUTME: Every tool is a thin schema over one policy gateway command
package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/oakhaven/memvault/internal/gateway"
)

// RegisterTools registers all memvault tools with the server. Tools never
// reach past the gateway, so every call goes through the same validation and
// sensitivity policy as the CLI.
func RegisterTools(srv *server.MCPServer, gw *gateway.Gateway) *Handlers {
	handlers := &Handlers{gateway: gw}

	srv.AddTool(mcp.Tool{
		Name:        "get_identity",
		Description: "Get the local identity record for this installation.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.GetIdentity)

	srv.AddTool(mcp.Tool{
		Name:        "set_display_name",
		Description: "Set the identity's display name.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Display name, at most 100 characters",
				},
			},
			Required: []string{"name"},
		},
	}, handlers.SetDisplayName)

	srv.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Open a new conversation session, optionally with a goal.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"goal": map[string]interface{}{
					"type":        "string",
					"description": "What the user wants to accomplish in this session",
				},
			},
		},
	}, handlers.CreateSession)

	srv.AddTool(mcp.Tool{
		Name:        "end_session",
		Description: "Close a session. Closed sessions no longer accept messages.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session to close",
				},
				"summary": map[string]interface{}{
					"type":        "string",
					"description": "Optional closing summary",
				},
			},
			Required: []string{"session_id"},
		},
	}, handlers.EndSession)

	srv.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List sessions, newest first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum sessions to return (default: 50)",
					"default":     50,
				},
			},
		},
	}, handlers.ListSessions)

	srv.AddTool(mcp.Tool{
		Name:        "add_message",
		Description: "Append a message to a session. Omit session_id to use the current open session.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Target session; defaults to the current open session",
				},
				"role": map[string]interface{}{
					"type":        "string",
					"description": "Message role: user, assistant, or system",
				},
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Message content",
				},
			},
			Required: []string{"role", "content"},
		},
	}, handlers.AddMessage)

	srv.AddTool(mcp.Tool{
		Name:        "get_recent_messages",
		Description: "Get a session's most recent messages in chronological order.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session to read; defaults to the current open session",
				},
				"count": map[string]interface{}{
					"type":        "number",
					"description": "Number of messages (default: 10, max: 100)",
					"default":     10,
				},
			},
		},
	}, handlers.GetRecentMessages)

	srv.AddTool(mcp.Tool{
		Name:        "set_fact",
		Description: "Store or update a fact as a category/predicate/object triple. Setting the same category and predicate again replaces the object.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Fact category (e.g. profile, preference, location)",
				},
				"predicate": map[string]interface{}{
					"type":        "string",
					"description": "What the fact states (e.g. home_city, favorite_editor)",
				},
				"object": map[string]interface{}{
					"type":        "string",
					"description": "The fact's value",
				},
				"confidence": map[string]interface{}{
					"type":        "number",
					"description": "Confidence in [0,1] (default: 0.8)",
					"default":     0.8,
				},
				"sensitivity": map[string]interface{}{
					"type":        "number",
					"description": "Sensitivity 0-3; level 3 requires allow_high_sensitivity",
					"default":     1,
				},
				"consent_scope": map[string]interface{}{
					"type":        "string",
					"description": "shareable or never_share (default: shareable)",
				},
				"source_message_id": map[string]interface{}{
					"type":        "string",
					"description": "Message the fact was learned from",
				},
				"allow_high_sensitivity": map[string]interface{}{
					"type":        "boolean",
					"description": "Explicit consent to store sensitivity-3 data",
				},
			},
			Required: []string{"category", "predicate", "object"},
		},
	}, handlers.SetFact)

	srv.AddTool(mcp.Tool{
		Name:        "get_facts",
		Description: "List stored facts. Sensitive facts are hidden unless include_sensitive is set; level-3 and never-share facts additionally need allow_high_sensitivity.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Filter by category",
				},
				"include_sensitive": map[string]interface{}{
					"type":        "boolean",
					"description": "Include sensitivity-2 facts",
				},
				"allow_high_sensitivity": map[string]interface{}{
					"type":        "boolean",
					"description": "With include_sensitive, also include level-3 and never-share facts",
				},
			},
		},
	}, handlers.GetFacts)

	srv.AddTool(mcp.Tool{
		Name:        "update_fact",
		Description: "Update parts of a fact by id. Only provided fields change.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Fact id",
				},
				"object": map[string]interface{}{
					"type":        "string",
					"description": "New value",
				},
				"confidence": map[string]interface{}{
					"type":        "number",
					"description": "New confidence in [0,1]",
				},
				"sensitivity": map[string]interface{}{
					"type":        "number",
					"description": "New sensitivity 0-3",
				},
				"consent_scope": map[string]interface{}{
					"type":        "string",
					"description": "shareable or never_share",
				},
				"allow_high_sensitivity": map[string]interface{}{
					"type":        "boolean",
					"description": "Required when raising sensitivity to 3",
				},
			},
			Required: []string{"id"},
		},
	}, handlers.UpdateFact)

	srv.AddTool(mcp.Tool{
		Name:        "delete_fact",
		Description: "Delete a fact by id.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Fact id",
				},
			},
			Required: []string{"id"},
		},
	}, handlers.DeleteFact)

	srv.AddTool(mcp.Tool{
		Name:        "reinforce_facts",
		Description: "Mark facts as useful, boosting their confidence and resetting decay. At most 25 facts per call.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"fact_ids": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Fact ids that proved useful",
				},
			},
			Required: []string{"fact_ids"},
		},
	}, handlers.ReinforceFacts)

	srv.AddTool(mcp.Tool{
		Name:        "build_context",
		Description: "Select the most relevant memory for a goal, packed into a token budget and grouped into profile, facts, preferences, and recent messages.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"goal": map[string]interface{}{
					"type":        "string",
					"description": "What the upcoming response needs context for",
				},
				"token_budget": map[string]interface{}{
					"type":        "number",
					"description": "Budget between 100 and 3000 tokens (default: 1500)",
					"default":     1500,
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session whose recent messages to consider",
				},
				"allow_high_sensitivity": map[string]interface{}{
					"type":        "boolean",
					"description": "Permit sensitivity-3 facts in the bundle",
				},
			},
			Required: []string{"goal"},
		},
	}, handlers.BuildContext)

	srv.AddTool(mcp.Tool{
		Name:        "search_messages",
		Description: "Search message content for a substring, newest first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Text to search for",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum results (default: 20, max: 50)",
					"default":     20,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchMessages)

	srv.AddTool(mcp.Tool{
		Name:        "search_facts",
		Description: "Search facts by category, predicate, or value. Never-share facts are excluded.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Text to search for",
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchFacts)

	srv.AddTool(mcp.Tool{
		Name:        "get_stats",
		Description: "Get store statistics: record counts, file size, schema version, and last integrity result.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.GetStats)

	srv.AddTool(mcp.Tool{
		Name:        "export_memory",
		Description: "Export identity, facts, and sessions as structured data. Never-share facts are always excluded.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"allow_high_sensitivity": map[string]interface{}{
					"type":        "boolean",
					"description": "Include sensitivity-3 facts",
				},
			},
		},
	}, handlers.ExportMemory)

	srv.AddTool(mcp.Tool{
		Name:        "backup",
		Description: "Write a consistent snapshot of the encrypted database to a new file.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Destination path; must not already exist",
				},
			},
			Required: []string{"path"},
		},
	}, handlers.Backup)

	return handlers
}
