// ABOUTME: Tests for the gateway command surface
// ABOUTME: Covers validation, sanitization, sensitivity policy, and rate limiting
package gateway

import (
	"context"
	"crypto/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/oakhaven/memvault/internal/config"
	"github.com/oakhaven/memvault/internal/models"
	"github.com/oakhaven/memvault/internal/relevance"
	"github.com/oakhaven/memvault/internal/selector"
	"github.com/oakhaven/memvault/internal/storage/sqlite"
)

func testGateway(t *testing.T) (*Gateway, *sqlite.Store) {
	t.Helper()

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand: %v", err)
	}
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "memory.db"), key)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if _, err := store.BootstrapIdentity(context.Background(), "install-test-001"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	cfg := &config.Config{
		TokenBudget:         1500,
		Alpha:               0.7,
		RecentMessages:      10,
		MaxSensitivity:      models.SensitivityPersonal,
		ContextRatePerSec:   5,
		DefaultHalfLifeDays: models.DefaultHalfLifeDays,
	}
	engine := relevance.NewEngine(store)
	sel := selector.New(store, nil)
	return New(store, engine, sel, cfg), store
}

func TestSetDisplayNameValidation(t *testing.T) {
	g, _ := testGateway(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		arg     string
		wantErr string
	}{
		{"empty", "", CodeBadArgs},
		{"too long", strings.Repeat("a", MaxDisplayNameLen+1), CodeValueTooLong},
		{"markup only", "<b></b>", CodeBadArgs},
		{"ok", "Dana", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := g.SetDisplayName(ctx, SetDisplayNameParams{Name: tt.arg})
			if tt.wantErr == "" {
				if !resp.OK {
					t.Fatalf("expected success, got error %q", resp.Error)
				}
				return
			}
			if resp.OK || resp.Error != tt.wantErr {
				t.Errorf("got (%v, %q), want error %q", resp.OK, resp.Error, tt.wantErr)
			}
		})
	}
}

func TestAddMessageSanitizesContent(t *testing.T) {
	g, store := testGateway(t)
	ctx := context.Background()

	sess := g.CreateSession(ctx, CreateSessionParams{Goal: "testing"})
	if !sess.OK {
		t.Fatalf("create session: %q", sess.Error)
	}
	sessionID := sess.Data.(*models.Session).ID

	resp := g.AddMessage(ctx, AddMessageParams{
		SessionID: sessionID,
		Role:      "user",
		Content:   "  hello <script>alert(1)</script> world  ",
	})
	if !resp.OK {
		t.Fatalf("add message: %q", resp.Error)
	}

	msgs, err := store.RecentMessages(ctx, sessionID, 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if got := msgs[0].Content; got != "hello alert(1) world" {
		t.Errorf("content = %q, want markup stripped and trimmed", got)
	}
}

func TestAddMessageRejectsInvalidInput(t *testing.T) {
	g, _ := testGateway(t)
	ctx := context.Background()

	sess := g.CreateSession(ctx, CreateSessionParams{})
	sessionID := sess.Data.(*models.Session).ID

	tests := []struct {
		name    string
		params  AddMessageParams
		wantErr string
	}{
		{"empty content", AddMessageParams{SessionID: sessionID, Role: "user"}, CodeBadArgs},
		{"bad role", AddMessageParams{SessionID: sessionID, Role: "robot", Content: "hi"}, CodeInvalidRole},
		{"oversized", AddMessageParams{SessionID: sessionID, Role: "user", Content: strings.Repeat("x", MaxContentLen+1)}, CodeValueTooLong},
		{"unknown session", AddMessageParams{SessionID: "nope", Role: "user", Content: "hi"}, CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := g.AddMessage(ctx, tt.params)
			if resp.OK || resp.Error != tt.wantErr {
				t.Errorf("got (%v, %q), want error %q", resp.OK, resp.Error, tt.wantErr)
			}
		})
	}
}

func TestAddMessageDefaultsToOpenSession(t *testing.T) {
	g, _ := testGateway(t)
	ctx := context.Background()

	sess := g.CreateSession(ctx, CreateSessionParams{Goal: "current"})
	sessionID := sess.Data.(*models.Session).ID

	resp := g.AddMessage(ctx, AddMessageParams{Role: "user", Content: "hello"})
	if !resp.OK {
		t.Fatalf("add message without session id: %q", resp.Error)
	}

	msgs := g.GetRecentMessages(ctx, RecentMessagesParams{SessionID: sessionID})
	if got := len(msgs.Data.([]models.Message)); got != 1 {
		t.Errorf("messages in open session = %d, want 1", got)
	}
}

func TestAddMessageToClosedSession(t *testing.T) {
	g, _ := testGateway(t)
	ctx := context.Background()

	sess := g.CreateSession(ctx, CreateSessionParams{})
	sessionID := sess.Data.(*models.Session).ID
	if resp := g.EndSession(ctx, EndSessionParams{SessionID: sessionID}); !resp.OK {
		t.Fatalf("end session: %q", resp.Error)
	}

	resp := g.AddMessage(ctx, AddMessageParams{SessionID: sessionID, Role: "user", Content: "late"})
	if resp.OK || resp.Error != CodeSessionClosed {
		t.Errorf("got (%v, %q), want %q", resp.OK, resp.Error, CodeSessionClosed)
	}
}

func TestSetFactSensitivityOverride(t *testing.T) {
	g, _ := testGateway(t)
	ctx := context.Background()

	denied := g.SetFact(ctx, SetFactParams{
		Category: "health", Predicate: "condition", Object: "private",
		Sensitivity: models.SensitivityRestricted,
	})
	if denied.OK || denied.Error != CodeHighPIIDenied {
		t.Fatalf("got (%v, %q), want %q", denied.OK, denied.Error, CodeHighPIIDenied)
	}

	allowed := g.SetFact(ctx, SetFactParams{
		Category: "health", Predicate: "condition", Object: "private",
		Sensitivity: models.SensitivityRestricted, AllowHighSensitivity: true,
	})
	if !allowed.OK {
		t.Fatalf("override write failed: %q", allowed.Error)
	}
}

func TestGetFactsSensitivityTiers(t *testing.T) {
	g, _ := testGateway(t)
	ctx := context.Background()

	seed := []SetFactParams{
		{Category: "profile", Predicate: "name", Object: "Dana", Sensitivity: models.SensitivityPublic},
		{Category: "location", Predicate: "city", Object: "Brooklyn", Sensitivity: models.SensitivityPersonal},
		{Category: "health", Predicate: "condition", Object: "private", Sensitivity: models.SensitivityRestricted, AllowHighSensitivity: true},
		{Category: "secret", Predicate: "note", Object: "local only", Sensitivity: models.SensitivityLow, ConsentScope: "never_share"},
	}
	for _, p := range seed {
		if resp := g.SetFact(ctx, p); !resp.OK {
			t.Fatalf("seed %s.%s: %q", p.Category, p.Predicate, resp.Error)
		}
	}

	tests := []struct {
		name   string
		params GetFactsParams
		want   int
	}{
		{"default hides personal and above", GetFactsParams{}, 1},
		{"include sensitive adds personal", GetFactsParams{IncludeSensitive: true}, 2},
		{"full override adds restricted and never-share", GetFactsParams{IncludeSensitive: true, AllowHighSensitivity: true}, 4},
		{"override without include stays at default", GetFactsParams{AllowHighSensitivity: true}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := g.GetFacts(ctx, tt.params)
			if !resp.OK {
				t.Fatalf("get facts: %q", resp.Error)
			}
			if got := len(resp.Data.([]models.Fact)); got != tt.want {
				t.Errorf("facts = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUpdateFactPartial(t *testing.T) {
	g, store := testGateway(t)
	ctx := context.Background()

	set := g.SetFact(ctx, SetFactParams{Category: "preference", Predicate: "editor", Object: "vim", Sensitivity: 0})
	factID := set.Data.(map[string]string)["fact_id"]

	obj := "neovim"
	if resp := g.UpdateFact(ctx, UpdateFactParams{ID: factID, Object: &obj}); !resp.OK {
		t.Fatalf("update: %q", resp.Error)
	}

	fact, err := store.GetFact(ctx, factID)
	if err != nil {
		t.Fatalf("get fact: %v", err)
	}
	if fact.Object != "neovim" {
		t.Errorf("object = %q, want %q", fact.Object, "neovim")
	}

	high := models.SensitivityRestricted
	resp := g.UpdateFact(ctx, UpdateFactParams{ID: factID, Sensitivity: &high})
	if resp.OK || resp.Error != CodeHighPIIDenied {
		t.Errorf("raising to restricted without override: got (%v, %q)", resp.OK, resp.Error)
	}
}

func TestDeleteFactNotFound(t *testing.T) {
	g, _ := testGateway(t)

	resp := g.DeleteFact(context.Background(), DeleteFactParams{ID: "missing"})
	if resp.OK || resp.Error != CodeNotFound {
		t.Errorf("got (%v, %q), want %q", resp.OK, resp.Error, CodeNotFound)
	}
}

func TestReinforceReturnsAppliedCount(t *testing.T) {
	g, _ := testGateway(t)
	ctx := context.Background()

	set := g.SetFact(ctx, SetFactParams{Category: "preference", Predicate: "lang", Object: "go", Sensitivity: 0})
	factID := set.Data.(map[string]string)["fact_id"]

	resp := g.Reinforce(ctx, ReinforceParams{FactIDs: []string{factID, "unknown", factID}})
	if !resp.OK {
		t.Fatalf("reinforce: %q", resp.Error)
	}
	if got := resp.Data.(map[string]int)["reinforced"]; got != 1 {
		t.Errorf("reinforced = %d, want 1 (dedup, unknown skipped)", got)
	}

	empty := g.Reinforce(ctx, ReinforceParams{})
	if empty.OK || empty.Error != CodeBadArgs {
		t.Errorf("empty list: got (%v, %q)", empty.OK, empty.Error)
	}
}

func TestBuildContextValidation(t *testing.T) {
	g, _ := testGateway(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		params  BuildContextParams
		wantErr string
	}{
		{"empty goal", BuildContextParams{}, CodeBadArgs},
		{"goal too long", BuildContextParams{Goal: strings.Repeat("g", MaxGoalLen+1)}, CodeValueTooLong},
		{"budget below floor", BuildContextParams{Goal: "plan", TokenBudget: 50}, CodeBadArgs},
		{"budget above ceiling", BuildContextParams{Goal: "plan", TokenBudget: 5000}, CodeBadArgs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := g.BuildContext(ctx, tt.params)
			if resp.OK || resp.Error != tt.wantErr {
				t.Errorf("got (%v, %q), want %q", resp.OK, resp.Error, tt.wantErr)
			}
		})
	}
}

func TestBuildContextRateLimited(t *testing.T) {
	g, _ := testGateway(t)
	ctx := context.Background()

	base := time.Now()
	g.limiter.now = func() time.Time { return base }

	var limited bool
	for i := 0; i < g.cfg.ContextRatePerSec+1; i++ {
		resp := g.BuildContext(ctx, BuildContextParams{Goal: "what should I do today"})
		if !resp.OK {
			if resp.Error != CodeRateLimited {
				t.Fatalf("call %d failed with %q", i, resp.Error)
			}
			limited = true
		}
	}
	if !limited {
		t.Fatal("expected the over-limit call to be rejected")
	}

	g.limiter.now = func() time.Time { return base.Add(2 * time.Second) }
	if resp := g.BuildContext(ctx, BuildContextParams{Goal: "later"}); !resp.OK {
		t.Errorf("after window passed: %q", resp.Error)
	}
}

func TestBuildContextExcludesNeverShare(t *testing.T) {
	g, _ := testGateway(t)
	ctx := context.Background()

	g.SetFact(ctx, SetFactParams{Category: "location", Predicate: "home_city", Object: "Brooklyn", Sensitivity: 1})
	g.SetFact(ctx, SetFactParams{Category: "location", Predicate: "hideout", Object: "undisclosed", Sensitivity: 1, ConsentScope: "never_share"})

	resp := g.BuildContext(ctx, BuildContextParams{Goal: "what is the weather like at home"})
	if !resp.OK {
		t.Fatalf("build context: %q", resp.Error)
	}
	bundle := resp.Data.(*selector.Bundle)
	for _, s := range bundle.Facts {
		if strings.Contains(s.Text, "undisclosed") {
			t.Error("never-share fact leaked into context bundle")
		}
	}
}

func TestSearchValidation(t *testing.T) {
	g, _ := testGateway(t)
	ctx := context.Background()

	long := strings.Repeat("q", MaxQueryLen+1)
	if resp := g.SearchMessages(ctx, SearchMessagesParams{Query: long}); resp.Error != CodeValueTooLong {
		t.Errorf("long message query: got %q", resp.Error)
	}
	if resp := g.SearchFacts(ctx, SearchFactsParams{Query: ""}); resp.Error != CodeBadArgs {
		t.Errorf("empty fact query: got %q", resp.Error)
	}
	if resp := g.SearchMessages(ctx, SearchMessagesParams{Query: "x", Limit: MaxSearchResults + 1}); resp.Error != CodeBadArgs {
		t.Errorf("oversized limit: got %q", resp.Error)
	}
}

func TestExportRespectsSensitivity(t *testing.T) {
	g, _ := testGateway(t)
	ctx := context.Background()

	g.SetFact(ctx, SetFactParams{Category: "profile", Predicate: "name", Object: "Dana", Sensitivity: 0})
	g.SetFact(ctx, SetFactParams{Category: "health", Predicate: "condition", Object: "private",
		Sensitivity: models.SensitivityRestricted, AllowHighSensitivity: true})

	resp := g.Export(ctx, ExportParams{})
	if !resp.OK {
		t.Fatalf("export: %q", resp.Error)
	}
	data := resp.Data.(*sqlite.ExportData)
	if len(data.Facts) != 1 {
		t.Errorf("default export facts = %d, want 1", len(data.Facts))
	}

	full := g.Export(ctx, ExportParams{AllowHighSensitivity: true})
	if got := len(full.Data.(*sqlite.ExportData).Facts); got != 2 {
		t.Errorf("override export facts = %d, want 2", got)
	}
}

func TestHealthReportsIntegrity(t *testing.T) {
	g, _ := testGateway(t)

	resp := g.Health(context.Background())
	if !resp.OK {
		t.Fatalf("health: %q", resp.Error)
	}
	body := resp.Data.(map[string]any)
	if healthy, _ := body["healthy"].(bool); !healthy {
		t.Error("fresh store should report healthy")
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"plain", "hello", 100, "hello"},
		{"markup stripped", "a <b>bold</b> move", 100, "a bold move"},
		{"control chars removed", "one\x00two\x07three", 100, "onetwothree"},
		{"newline and tab kept", "a\n\tb", 100, "a\n\tb"},
		{"trimmed", "  padded  ", 100, "padded"},
		{"truncated by runes", "héllo", 3, "hél"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeText(tt.in, tt.max); got != tt.want {
				t.Errorf("sanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
