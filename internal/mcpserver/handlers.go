// ABOUTME: MCP tool handler implementations for the memvault server
// ABOUTME: Extracts arguments, delegates to the gateway, and serializes responses
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/oakhaven/memvault/internal/gateway"
	"github.com/oakhaven/memvault/internal/models"
)

// Handlers holds the tool handler functions. Every handler is a pure
// argument adapter; policy lives in the gateway.
type Handlers struct {
	gateway *gateway.Gateway
}

// toResult converts a gateway response into an MCP tool result. Errors are
// reported as the gateway's short code, never as internal detail.
func toResult(resp gateway.Response) (*mcp.CallToolResult, error) {
	if !resp.OK {
		return mcp.NewToolResultError(resp.Error), nil
	}
	if resp.Data == nil {
		return mcp.NewToolResultText(`{"ok":true}`), nil
	}
	out, err := json.MarshalIndent(resp.Data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("internal"), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// GetIdentity handles the get_identity tool
func (h *Handlers) GetIdentity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toResult(h.gateway.GetIdentity(ctx))
}

// SetDisplayName handles the set_display_name tool
func (h *Handlers) SetDisplayName(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name argument is required and must be a string"), nil
	}
	return toResult(h.gateway.SetDisplayName(ctx, gateway.SetDisplayNameParams{Name: name}))
}

// CreateSession handles the create_session tool
func (h *Handlers) CreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goal := request.GetString("goal", "")
	return toResult(h.gateway.CreateSession(ctx, gateway.CreateSessionParams{Goal: goal}))
}

// EndSession handles the end_session tool
func (h *Handlers) EndSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required and must be a string"), nil
	}
	return toResult(h.gateway.EndSession(ctx, gateway.EndSessionParams{
		SessionID: sessionID,
		Summary:   request.GetString("summary", ""),
	}))
}

// ListSessions handles the list_sessions tool
func (h *Handlers) ListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toResult(h.gateway.ListSessions(ctx, gateway.ListSessionsParams{
		Limit: request.GetInt("limit", 0),
	}))
}

// AddMessage handles the add_message tool
func (h *Handlers) AddMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	role, err := request.RequireString("role")
	if err != nil {
		return mcp.NewToolResultError("role argument is required and must be a string"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content argument is required and must be a string"), nil
	}
	return toResult(h.gateway.AddMessage(ctx, gateway.AddMessageParams{
		SessionID: request.GetString("session_id", ""),
		Role:      role,
		Content:   content,
	}))
}

// GetRecentMessages handles the get_recent_messages tool
func (h *Handlers) GetRecentMessages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toResult(h.gateway.GetRecentMessages(ctx, gateway.RecentMessagesParams{
		SessionID: request.GetString("session_id", ""),
		Count:     request.GetInt("count", 0),
	}))
}

// SetFact handles the set_fact tool
func (h *Handlers) SetFact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := request.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError("category argument is required and must be a string"), nil
	}
	predicate, err := request.RequireString("predicate")
	if err != nil {
		return mcp.NewToolResultError("predicate argument is required and must be a string"), nil
	}
	object, err := request.RequireString("object")
	if err != nil {
		return mcp.NewToolResultError("object argument is required and must be a string"), nil
	}

	params := gateway.SetFactParams{
		Category:             category,
		Predicate:            predicate,
		Object:               object,
		Sensitivity:          request.GetInt("sensitivity", models.SensitivityLow),
		ConsentScope:         request.GetString("consent_scope", ""),
		SourceMessageID:      request.GetString("source_message_id", ""),
		AllowHighSensitivity: request.GetBool("allow_high_sensitivity", false),
	}
	if _, present := request.GetArguments()["confidence"]; present {
		c := request.GetFloat("confidence", 0.8)
		params.Confidence = &c
	}
	return toResult(h.gateway.SetFact(ctx, params))
}

// GetFacts handles the get_facts tool
func (h *Handlers) GetFacts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toResult(h.gateway.GetFacts(ctx, gateway.GetFactsParams{
		Category:             request.GetString("category", ""),
		IncludeSensitive:     request.GetBool("include_sensitive", false),
		AllowHighSensitivity: request.GetBool("allow_high_sensitivity", false),
	}))
}

// UpdateFact handles the update_fact tool
func (h *Handlers) UpdateFact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required and must be a string"), nil
	}

	params := gateway.UpdateFactParams{
		ID:                   id,
		AllowHighSensitivity: request.GetBool("allow_high_sensitivity", false),
	}
	args := request.GetArguments()
	if _, present := args["object"]; present {
		v := request.GetString("object", "")
		params.Object = &v
	}
	if _, present := args["confidence"]; present {
		v := request.GetFloat("confidence", 0)
		params.Confidence = &v
	}
	if _, present := args["sensitivity"]; present {
		v := request.GetInt("sensitivity", 0)
		params.Sensitivity = &v
	}
	if _, present := args["consent_scope"]; present {
		v := request.GetString("consent_scope", "")
		params.ConsentScope = &v
	}
	return toResult(h.gateway.UpdateFact(ctx, params))
}

// DeleteFact handles the delete_fact tool
func (h *Handlers) DeleteFact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required and must be a string"), nil
	}
	return toResult(h.gateway.DeleteFact(ctx, gateway.DeleteFactParams{ID: id}))
}

// ReinforceFacts handles the reinforce_facts tool
func (h *Handlers) ReinforceFacts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids := request.GetStringSlice("fact_ids", nil)
	if len(ids) == 0 {
		return mcp.NewToolResultError("fact_ids argument is required and must be a non-empty array of strings"), nil
	}
	return toResult(h.gateway.Reinforce(ctx, gateway.ReinforceParams{FactIDs: ids}))
}

// BuildContext handles the build_context tool
func (h *Handlers) BuildContext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goal, err := request.RequireString("goal")
	if err != nil {
		return mcp.NewToolResultError("goal argument is required and must be a string"), nil
	}
	return toResult(h.gateway.BuildContext(ctx, gateway.BuildContextParams{
		Goal:                 goal,
		TokenBudget:          request.GetInt("token_budget", 0),
		SessionID:            request.GetString("session_id", ""),
		AllowHighSensitivity: request.GetBool("allow_high_sensitivity", false),
	}))
}

// SearchMessages handles the search_messages tool
func (h *Handlers) SearchMessages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	return toResult(h.gateway.SearchMessages(ctx, gateway.SearchMessagesParams{
		Query: query,
		Limit: request.GetInt("limit", 0),
	}))
}

// SearchFacts handles the search_facts tool
func (h *Handlers) SearchFacts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	return toResult(h.gateway.SearchFacts(ctx, gateway.SearchFactsParams{Query: query}))
}

// GetStats handles the get_stats tool
func (h *Handlers) GetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toResult(h.gateway.GetStats(ctx))
}

// ExportMemory handles the export_memory tool
func (h *Handlers) ExportMemory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toResult(h.gateway.Export(ctx, gateway.ExportParams{
		AllowHighSensitivity: request.GetBool("allow_high_sensitivity", false),
	}))
}

// Backup handles the backup tool
func (h *Handlers) Backup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path argument is required and must be a string"), nil
	}
	resp := h.gateway.Backup(ctx, gateway.BackupParams{Path: path})
	if resp.OK {
		return mcp.NewToolResultText(fmt.Sprintf("backup written to %s", path)), nil
	}
	return toResult(resp)
}
