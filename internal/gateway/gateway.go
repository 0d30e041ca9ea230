// ABOUTME: The sole externally reachable command surface over the memory core
// ABOUTME: Validates shapes and lengths, enforces sensitivity and consent policy
package gateway

import (
	"context"
	"time"

	"github.com/oakhaven/memvault/internal/config"
	"github.com/oakhaven/memvault/internal/logger"
	"github.com/oakhaven/memvault/internal/models"
	"github.com/oakhaven/memvault/internal/relevance"
	"github.com/oakhaven/memvault/internal/selector"
	"github.com/oakhaven/memvault/internal/storage/sqlite"
)

// Validation ceilings. Free text beyond these limits is rejected, not
// silently truncated; sanitization happens after validation passes.
const (
	MaxDisplayNameLen = 100
	MaxGoalLen        = 2000
	MaxSummaryLen     = 500
	MaxContentLen     = 50000
	MaxCategoryLen    = 50
	MaxPredicateLen   = 100
	MaxObjectLen      = 5000
	MaxQueryLen       = 200

	MaxSessionList   = 200
	MaxMessageCount  = 100
	MaxSearchResults = 50

	MinTokenBudget = 100
	MaxTokenBudget = 3000

	// SensitivityCeiling is the hard cap absent the explicit override flag.
	SensitivityCeiling = models.SensitivityPersonal
)

// Gateway wraps the encrypted store, relevance engine, and context selector
// behind a validated, rate-limited command set.
type Gateway struct {
	store    *sqlite.Store
	engine   *relevance.Engine
	selector *selector.Selector
	limiter  *slidingLimiter
	cfg      *config.Config
}

// New assembles a gateway over initialized components.
func New(store *sqlite.Store, engine *relevance.Engine, sel *selector.Selector, cfg *config.Config) *Gateway {
	return &Gateway{
		store:    store,
		engine:   engine,
		selector: sel,
		limiter:  newSlidingLimiter(cfg.ContextRatePerSec, time.Second),
		cfg:      cfg,
	}
}

// --- Identity ---

// GetIdentity returns the installation's identity.
func (g *Gateway) GetIdentity(ctx context.Context) Response {
	identity, err := g.store.GetIdentity(ctx)
	if err != nil {
		return failFrom("get_identity", err)
	}
	return ok(identity)
}

// SetDisplayNameParams carries the display-name edit.
type SetDisplayNameParams struct {
	Name string `json:"name"`
}

// SetDisplayName updates the identity's display name.
func (g *Gateway) SetDisplayName(ctx context.Context, p SetDisplayNameParams) Response {
	if p.Name == "" {
		return fail(CodeBadArgs)
	}
	if len([]rune(p.Name)) > MaxDisplayNameLen {
		return fail(CodeValueTooLong)
	}
	name := sanitizeText(p.Name, MaxDisplayNameLen)
	if name == "" {
		return fail(CodeBadArgs)
	}
	if err := g.store.SetDisplayName(ctx, name); err != nil {
		return failFrom("set_display_name", err)
	}
	logger.Info("display name updated", "length", len(name))
	return ok(nil)
}

// --- Sessions ---

// CreateSessionParams starts a conversation.
type CreateSessionParams struct {
	Goal string `json:"goal,omitempty"`
}

// CreateSession opens a new session.
func (g *Gateway) CreateSession(ctx context.Context, p CreateSessionParams) Response {
	if len([]rune(p.Goal)) > MaxGoalLen {
		return fail(CodeValueTooLong)
	}
	identity, err := g.store.GetIdentity(ctx)
	if err != nil {
		return failFrom("create_session", err)
	}
	session, err := g.store.CreateSession(ctx, identity.ID, sanitizeText(p.Goal, MaxGoalLen))
	if err != nil {
		return failFrom("create_session", err)
	}
	logger.Info("session created", "session_id", session.ID)
	return ok(session)
}

// EndSessionParams closes a session with an optional summary title.
type EndSessionParams struct {
	SessionID string `json:"session_id"`
	Summary   string `json:"summary,omitempty"`
}

// EndSession closes a session.
func (g *Gateway) EndSession(ctx context.Context, p EndSessionParams) Response {
	if p.SessionID == "" {
		return fail(CodeBadArgs)
	}
	if len([]rune(p.Summary)) > MaxSummaryLen {
		return fail(CodeValueTooLong)
	}
	if err := g.store.EndSession(ctx, p.SessionID, sanitizeText(p.Summary, MaxSummaryLen)); err != nil {
		return failFrom("end_session", err)
	}
	logger.Info("session ended", "session_id", p.SessionID)
	return ok(nil)
}

// ListSessionsParams bounds the session listing.
type ListSessionsParams struct {
	Limit int `json:"limit,omitempty"`
}

// ListSessions returns sessions newest first.
func (g *Gateway) ListSessions(ctx context.Context, p ListSessionsParams) Response {
	limit := p.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > MaxSessionList {
		return fail(CodeBadArgs)
	}
	identity, err := g.store.GetIdentity(ctx)
	if err != nil {
		return failFrom("list_sessions", err)
	}
	sessions, err := g.store.ListSessions(ctx, identity.ID, limit)
	if err != nil {
		return failFrom("list_sessions", err)
	}
	return ok(sessions)
}

// --- Messages ---

// AddMessageParams appends one turn to an open session.
type AddMessageParams struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

// AddMessage appends a message. The session id is resolved explicitly; an
// empty id falls back to the current open session once, at this boundary.
func (g *Gateway) AddMessage(ctx context.Context, p AddMessageParams) Response {
	if p.Content == "" {
		return fail(CodeBadArgs)
	}
	if len([]rune(p.Content)) > MaxContentLen {
		return fail(CodeValueTooLong)
	}
	role := models.Role(p.Role)
	if !models.ValidRole(role) {
		return fail(CodeInvalidRole)
	}

	sessionID, resp := g.resolveSessionID(ctx, p.SessionID, "add_message")
	if resp != nil {
		return *resp
	}

	msg, err := models.NewMessage(sessionID, role, sanitizeText(p.Content, MaxContentLen))
	if err != nil {
		return fail(CodeBadArgs)
	}
	if err := g.store.AddMessage(ctx, msg); err != nil {
		return failFrom("add_message", err)
	}
	logger.Info("message added", "session_id", sessionID, "role", p.Role, "length", len(msg.Content))
	return ok(map[string]string{"message_id": msg.ID})
}

// RecentMessagesParams bounds a recent-messages read.
type RecentMessagesParams struct {
	Count     int    `json:"count,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// GetRecentMessages returns the session's trailing messages in chronological
// order.
func (g *Gateway) GetRecentMessages(ctx context.Context, p RecentMessagesParams) Response {
	count := p.Count
	if count <= 0 {
		count = 10
	}
	if count > MaxMessageCount {
		return fail(CodeBadArgs)
	}

	sessionID, resp := g.resolveSessionID(ctx, p.SessionID, "get_recent_messages")
	if resp != nil {
		return *resp
	}

	messages, err := g.store.RecentMessages(ctx, sessionID, count)
	if err != nil {
		return failFrom("get_recent_messages", err)
	}
	return ok(messages)
}

// --- Facts ---

// SetFactParams creates or upgrades a fact triple.
type SetFactParams struct {
	Category        string   `json:"category"`
	Predicate       string   `json:"predicate"`
	Object          string   `json:"object"`
	Confidence      *float64 `json:"confidence,omitempty"`
	Sensitivity     int      `json:"sensitivity"`
	ConsentScope    string   `json:"consent_scope,omitempty"`
	SourceMessageID string   `json:"source_message_id,omitempty"`
	// AllowHighSensitivity is the separately gated override required to
	// store sensitivity-3 data.
	AllowHighSensitivity bool `json:"allow_high_sensitivity,omitempty"`
}

// SetFact upserts a fact.
func (g *Gateway) SetFact(ctx context.Context, p SetFactParams) Response {
	if p.Category == "" || p.Predicate == "" || p.Object == "" {
		return fail(CodeBadArgs)
	}
	if len([]rune(p.Category)) > MaxCategoryLen ||
		len([]rune(p.Predicate)) > MaxPredicateLen ||
		len([]rune(p.Object)) > MaxObjectLen {
		return fail(CodeValueTooLong)
	}
	if !models.ValidSensitivity(p.Sensitivity) {
		return fail(CodeBadArgs)
	}
	if p.Sensitivity > SensitivityCeiling && !p.AllowHighSensitivity {
		return fail(CodeHighPIIDenied)
	}
	scope := models.ConsentShareable
	if p.ConsentScope != "" {
		scope = models.ConsentScope(p.ConsentScope)
		if !models.ValidConsentScope(scope) {
			return fail(CodeBadArgs)
		}
	}
	confidence := 0.8
	if p.Confidence != nil {
		confidence = *p.Confidence
	}

	identity, err := g.store.GetIdentity(ctx)
	if err != nil {
		return failFrom("set_fact", err)
	}

	fact, err := models.NewFact(identity.ID,
		sanitizeText(p.Category, MaxCategoryLen),
		sanitizeText(p.Predicate, MaxPredicateLen),
		sanitizeText(p.Object, MaxObjectLen),
		confidence)
	if err != nil {
		return fail(CodeBadArgs)
	}
	fact.Sensitivity = p.Sensitivity
	fact.ConsentScope = scope
	fact.SourceMessageID = p.SourceMessageID
	fact.DecayHalfLifeDays = g.cfg.DefaultHalfLifeDays

	stored, err := g.store.UpsertFact(ctx, fact)
	if err != nil {
		return failFrom("set_fact", err)
	}
	logger.Info("fact set", "fact_id", stored.ID, "sensitivity", stored.Sensitivity,
		"object_length", len(stored.Object))
	return ok(map[string]string{"fact_id": stored.ID})
}

// GetFactsParams filters the fact listing.
type GetFactsParams struct {
	Category             string `json:"category,omitempty"`
	IncludeSensitive     bool   `json:"include_sensitive,omitempty"`
	AllowHighSensitivity bool   `json:"allow_high_sensitivity,omitempty"`
}

// GetFacts lists the identity's facts. Sensitive rows (level 2) require
// IncludeSensitive; level-3 rows and never-shareable rows additionally
// require the override flag.
func (g *Gateway) GetFacts(ctx context.Context, p GetFactsParams) Response {
	if len([]rune(p.Category)) > MaxCategoryLen {
		return fail(CodeValueTooLong)
	}

	maxSensitivity := models.SensitivityLow
	includeNeverShare := false
	if p.IncludeSensitive {
		maxSensitivity = SensitivityCeiling
		if p.AllowHighSensitivity {
			maxSensitivity = models.MaxSensitivity
			includeNeverShare = true
		}
	}

	identity, err := g.store.GetIdentity(ctx)
	if err != nil {
		return failFrom("get_facts", err)
	}
	facts, err := g.store.ListFacts(ctx, identity.ID, sqlite.FactFilter{
		Category:          p.Category,
		MaxSensitivity:    maxSensitivity,
		IncludeNeverShare: includeNeverShare,
	})
	if err != nil {
		return failFrom("get_facts", err)
	}
	return ok(facts)
}

// UpdateFactParams is a partial fact edit; nil fields stay untouched.
type UpdateFactParams struct {
	ID                   string   `json:"id"`
	Object               *string  `json:"object,omitempty"`
	Confidence           *float64 `json:"confidence,omitempty"`
	Sensitivity          *int     `json:"sensitivity,omitempty"`
	ConsentScope         *string  `json:"consent_scope,omitempty"`
	AllowHighSensitivity bool     `json:"allow_high_sensitivity,omitempty"`
}

// UpdateFact applies a partial update.
func (g *Gateway) UpdateFact(ctx context.Context, p UpdateFactParams) Response {
	if p.ID == "" {
		return fail(CodeBadArgs)
	}
	update := sqlite.FactUpdate{Confidence: p.Confidence}
	if p.Object != nil {
		if *p.Object == "" {
			return fail(CodeBadArgs)
		}
		if len([]rune(*p.Object)) > MaxObjectLen {
			return fail(CodeValueTooLong)
		}
		clean := sanitizeText(*p.Object, MaxObjectLen)
		update.Object = &clean
	}
	if p.Sensitivity != nil {
		if !models.ValidSensitivity(*p.Sensitivity) {
			return fail(CodeBadArgs)
		}
		if *p.Sensitivity > SensitivityCeiling && !p.AllowHighSensitivity {
			return fail(CodeHighPIIDenied)
		}
		update.Sensitivity = p.Sensitivity
	}
	if p.ConsentScope != nil {
		scope := models.ConsentScope(*p.ConsentScope)
		if !models.ValidConsentScope(scope) {
			return fail(CodeBadArgs)
		}
		update.ConsentScope = &scope
	}

	if err := g.store.UpdateFact(ctx, p.ID, update); err != nil {
		return failFrom("update_fact", err)
	}
	logger.Info("fact updated", "fact_id", p.ID)
	return ok(nil)
}

// DeleteFactParams names the fact to remove.
type DeleteFactParams struct {
	ID string `json:"id"`
}

// DeleteFact removes a fact explicitly.
func (g *Gateway) DeleteFact(ctx context.Context, p DeleteFactParams) Response {
	if p.ID == "" {
		return fail(CodeBadArgs)
	}
	if err := g.store.DeleteFact(ctx, p.ID); err != nil {
		return failFrom("delete_fact", err)
	}
	logger.Info("fact deleted", "fact_id", p.ID)
	return ok(nil)
}

// ReinforceParams lists facts that proved useful.
type ReinforceParams struct {
	FactIDs []string `json:"fact_ids"`
}

// Reinforce boosts the listed facts' confidence. Lists beyond the engine's
// per-call cap are truncated, not rejected.
func (g *Gateway) Reinforce(ctx context.Context, p ReinforceParams) Response {
	if len(p.FactIDs) == 0 {
		return fail(CodeBadArgs)
	}
	n, err := g.engine.Reinforce(ctx, p.FactIDs, time.Now().UTC())
	if err != nil {
		return failFrom("reinforce", err)
	}
	logger.Info("facts reinforced", "requested", len(p.FactIDs), "applied", n)
	return ok(map[string]int{"reinforced": n})
}

// --- Context ---

// BuildContextParams shapes a context-selection pass.
type BuildContextParams struct {
	Goal        string `json:"goal"`
	TokenBudget int    `json:"token_budget,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
	// AllowHighSensitivity lifts the sensitivity ceiling from 2 to 3 for
	// this single build. Never-shareable facts stay excluded regardless.
	AllowHighSensitivity bool `json:"allow_high_sensitivity,omitempty"`
}

// BuildContext runs the context selector under the gateway's policy. The
// operation is rate limited; over-limit calls fail immediately.
func (g *Gateway) BuildContext(ctx context.Context, p BuildContextParams) Response {
	if p.Goal == "" {
		return fail(CodeBadArgs)
	}
	if len([]rune(p.Goal)) > MaxGoalLen {
		return fail(CodeValueTooLong)
	}
	budget := p.TokenBudget
	if budget == 0 {
		budget = g.cfg.TokenBudget
	}
	if budget < MinTokenBudget || budget > MaxTokenBudget {
		return fail(CodeBadArgs)
	}
	if !g.limiter.Allow() {
		logger.Warn("context build rate limited")
		return fail(CodeRateLimited)
	}

	maxSensitivity := g.cfg.MaxSensitivity
	if maxSensitivity > SensitivityCeiling {
		maxSensitivity = SensitivityCeiling
	}
	if p.AllowHighSensitivity {
		maxSensitivity = models.MaxSensitivity
	}

	sessionID := p.SessionID
	if sessionID == "" {
		// Optional default: the current open session, resolved once here.
		if current, err := g.store.CurrentOpenSession(ctx); err == nil {
			sessionID = current.ID
		}
	}

	identity, err := g.store.GetIdentity(ctx)
	if err != nil {
		return failFrom("build_context", err)
	}

	pol := selector.Policy{
		TokenBudget:    budget,
		MaxSensitivity: maxSensitivity,
		RespectConsent: true,
		Alpha:          g.cfg.Alpha,
		RecentMessages: g.cfg.RecentMessages,
	}
	bundle, err := g.selector.Select(ctx, identity.ID, sessionID, sanitizeText(p.Goal, MaxGoalLen), pol)
	if err != nil {
		return failFrom("build_context", err)
	}
	logger.Info("context built", "goal_length", len(p.Goal), "token_estimate", bundle.TokenEstimate)
	return ok(bundle)
}

// --- Search ---

// SearchMessagesParams is a bounded message search.
type SearchMessagesParams struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// SearchMessages scans message content for the query.
func (g *Gateway) SearchMessages(ctx context.Context, p SearchMessagesParams) Response {
	if p.Query == "" {
		return fail(CodeBadArgs)
	}
	if len([]rune(p.Query)) > MaxQueryLen {
		return fail(CodeValueTooLong)
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > MaxSearchResults {
		return fail(CodeBadArgs)
	}
	messages, err := g.store.SearchMessages(ctx, p.Query, limit)
	if err != nil {
		return failFrom("search_messages", err)
	}
	logger.Info("messages searched", "query_length", len(p.Query), "results", len(messages))
	return ok(messages)
}

// SearchFactsParams is a bounded fact search.
type SearchFactsParams struct {
	Query string `json:"query"`
}

// SearchFacts matches facts by category, predicate, and object.
// Never-shareable facts are excluded unconditionally.
func (g *Gateway) SearchFacts(ctx context.Context, p SearchFactsParams) Response {
	if p.Query == "" {
		return fail(CodeBadArgs)
	}
	if len([]rune(p.Query)) > MaxQueryLen {
		return fail(CodeValueTooLong)
	}
	identity, err := g.store.GetIdentity(ctx)
	if err != nil {
		return failFrom("search_facts", err)
	}
	facts, err := g.store.SearchFacts(ctx, identity.ID, p.Query, SensitivityCeiling)
	if err != nil {
		return failFrom("search_facts", err)
	}
	logger.Info("facts searched", "query_length", len(p.Query), "results", len(facts))
	return ok(facts)
}

// --- Maintenance ---

// GetStats returns store statistics.
func (g *Gateway) GetStats(ctx context.Context) Response {
	stats, err := g.store.Stats(ctx)
	if err != nil {
		return failFrom("get_stats", err)
	}
	return ok(stats)
}

// Health returns store statistics plus schema and integrity metadata. Kept
// as a distinct command so monitoring doesn't depend on stats shape.
func (g *Gateway) Health(ctx context.Context) Response {
	stats, err := g.store.Stats(ctx)
	if err != nil {
		return failFrom("health", err)
	}
	healthy := stats.IntegrityResult == "ok"
	return ok(map[string]any{
		"healthy": healthy,
		"stats":   stats,
	})
}

// ExportParams configures a user-initiated export.
type ExportParams struct {
	// AllowHighSensitivity includes sensitivity-3 facts in the export.
	// Never-shareable facts are excluded regardless.
	AllowHighSensitivity bool `json:"allow_high_sensitivity,omitempty"`
}

// Export returns the identity, facts, and sessions for user-initiated backup.
func (g *Gateway) Export(ctx context.Context, p ExportParams) Response {
	maxSensitivity := SensitivityCeiling
	if p.AllowHighSensitivity {
		maxSensitivity = models.MaxSensitivity
	}
	data, err := g.store.Export(ctx, maxSensitivity)
	if err != nil {
		return failFrom("export", err)
	}
	logger.Info("export built", "facts", len(data.Facts), "sessions", len(data.Sessions))
	return ok(data)
}

// BackupParams names the snapshot destination.
type BackupParams struct {
	Path string `json:"path"`
}

// Backup writes a consistent point-in-time copy of the store file.
func (g *Gateway) Backup(ctx context.Context, p BackupParams) Response {
	if p.Path == "" {
		return fail(CodeBadArgs)
	}
	if err := g.store.Backup(ctx, p.Path); err != nil {
		return failFrom("backup", err)
	}
	logger.Info("backup written")
	return ok(nil)
}

// resolveSessionID applies the explicit-session-id rule: callers pass an id,
// and an empty id resolves to the current open session exactly once, here.
func (g *Gateway) resolveSessionID(ctx context.Context, sessionID, op string) (string, *Response) {
	if sessionID != "" {
		return sessionID, nil
	}
	current, err := g.store.CurrentOpenSession(ctx)
	if err != nil {
		resp := failFrom(op, err)
		return "", &resp
	}
	return current.ID, nil
}
