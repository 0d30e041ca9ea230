// ABOUTME: Deterministic context selection: candidates, hybrid scoring, packing
// ABOUTME: Same goal plus same store state always yields the same ordered bundle
package selector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/oakhaven/memvault/internal/logger"
	"github.com/oakhaven/memvault/internal/models"
	"github.com/oakhaven/memvault/internal/relevance"
	"github.com/oakhaven/memvault/internal/storage/sqlite"
)

// Policy bounds a single selection pass.
type Policy struct {
	// TokenBudget is a soft cap on total selected context size.
	TokenBudget int
	// MaxSensitivity is the highest sensitivity level allowed in the bundle.
	MaxSensitivity int
	// RespectConsent excludes never-shareable facts. The gateway always sets
	// this; it exists as a field so the exclusion is visible and testable.
	RespectConsent bool
	// Alpha blends semantic (alpha) against lexical (1-alpha) scores.
	Alpha float64
	// RecentMessages is how many trailing session messages become candidates.
	RecentMessages int
}

// DefaultPolicy returns the stock selection policy.
func DefaultPolicy() Policy {
	return Policy{
		TokenBudget:    1500,
		MaxSensitivity: models.SensitivityPersonal,
		RespectConsent: true,
		Alpha:          0.7,
		RecentMessages: 10,
	}
}

// Candidate kinds.
const (
	KindFact    = "fact"
	KindMessage = "message"
)

const (
	// messagePriority is the fixed raw priority of message candidates.
	messagePriority = 0.5
	// alwaysIncludeThreshold pins candidates past competitive ranking.
	alwaysIncludeThreshold = 0.95
	// containmentBonus rewards one text containing the other.
	containmentBonus = 0.5
	// predicateBonus rewards the goal naming the fact's predicate.
	predicateBonus = 0.2
	// recencyBonus is the flat semantic score of recent conversation.
	recencyBonus = 0.2
)

// candidate is the uniform shape both facts and messages are scored in.
type candidate struct {
	id          string
	kind        string
	text        string
	tokens      int
	sensitivity int
	neverShare  bool
	priority    float64
	category    string
	predicate   string
	decay       float64
	score       float64
	order       int
}

// Slice is one selected piece of context.
type Slice struct {
	ID     string  `json:"id"`
	Kind   string  `json:"kind"`
	Text   string  `json:"text"`
	Tokens int     `json:"tokens"`
	Score  float64 `json:"score"`
}

// Bundle is the packed, bucketed selection result. Empty buckets are omitted
// from serialized output.
type Bundle struct {
	Profile        []Slice `json:"profile,omitempty"`
	Facts          []Slice `json:"facts,omitempty"`
	Preferences    []Slice `json:"preferences,omitempty"`
	RecentMessages []Slice `json:"recent_messages,omitempty"`
	TokenEstimate  int     `json:"token_estimate"`
}

// EmbedScorer is the extension point for swapping the semantic heuristic for
// an embedding-based similarity. Score returns a value in [0,1].
type EmbedScorer interface {
	Score(goal, text string) float64
}

// Selector builds context bundles from the encrypted store.
type Selector struct {
	store *sqlite.Store
	embed EmbedScorer
	now   func() time.Time
}

// New creates a Selector. embed may be nil to use the built-in heuristic.
func New(store *sqlite.Store, embed EmbedScorer) *Selector {
	return &Selector{store: store, embed: embed, now: time.Now}
}

// Select gathers candidates for the goal, scores and filters them under the
// policy, and packs the highest-value slices into a token-bounded bundle.
// sessionID may be empty when no conversation is active.
func (s *Selector) Select(ctx context.Context, identityID, sessionID, goal string, pol Policy) (*Bundle, error) {
	now := s.now().UTC()

	candidates, err := s.gather(ctx, identityID, sessionID, pol.RecentMessages)
	if err != nil {
		return nil, err
	}

	goalLower := strings.ToLower(goal)
	goalWords := keywords(goal)
	for i := range candidates {
		s.scoreCandidate(&candidates[i], goalLower, goalWords, pol.Alpha, now)
	}

	eligible := filterByPolicy(candidates, pol)
	selected := pack(eligible, pol.TokenBudget)

	logger.Debug("context selected",
		"goal_length", len(goal),
		"candidates", len(candidates),
		"eligible", len(eligible),
		"selected", len(selected))

	return bucket(selected), nil
}

// gather wraps every fact plus the session's trailing messages into the
// uniform candidate shape, in stable insertion order.
func (s *Selector) gather(ctx context.Context, identityID, sessionID string, recentN int) ([]candidate, error) {
	var out []candidate

	facts, err := s.store.ListFacts(ctx, identityID, sqlite.FactFilter{
		MaxSensitivity:    models.MaxSensitivity,
		IncludeNeverShare: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gathering fact candidates: %w", err)
	}
	now := s.now().UTC()
	for _, f := range facts {
		text := fmt.Sprintf("%s.%s: %s", f.Category, f.Predicate, f.Object)
		out = append(out, candidate{
			id:          f.ID,
			kind:        KindFact,
			text:        text,
			tokens:      estimateTokens(text),
			sensitivity: f.Sensitivity,
			neverShare:  f.ConsentScope == models.ConsentNeverShare,
			priority:    f.Confidence,
			category:    f.Category,
			predicate:   f.Predicate,
			decay:       relevance.DecayFactor(&f, now),
			order:       len(out),
		})
	}

	if sessionID != "" && recentN > 0 {
		messages, err := s.store.RecentMessages(ctx, sessionID, recentN)
		if err != nil {
			return nil, fmt.Errorf("gathering message candidates: %w", err)
		}
		for _, m := range messages {
			text := fmt.Sprintf("%s: %s", m.Role, m.Content)
			out = append(out, candidate{
				id:          m.ID,
				kind:        KindMessage,
				text:        text,
				tokens:      estimateTokens(text),
				sensitivity: models.SensitivityLow,
				priority:    messagePriority,
				decay:       1,
				order:       len(out),
			})
		}
	}

	return out, nil
}

// scoreCandidate computes the blended score in place.
func (s *Selector) scoreCandidate(c *candidate, goalLower string, goalWords map[string]struct{}, alpha float64, now time.Time) {
	lexical := jaccard(goalWords, keywords(c.text))

	var semantic float64
	if s.embed != nil {
		semantic = s.embed.Score(goalLower, c.text)
	} else {
		semantic = s.heuristicSemantic(c, goalLower, goalWords)
	}
	semantic = math.Min(semantic, 1.0)

	score := alpha*semantic + (1-alpha)*lexical
	if c.kind == KindFact {
		score *= c.decay
	}
	score *= 1 + c.priority*0.2
	c.score = score
}

func (s *Selector) heuristicSemantic(c *candidate, goalLower string, goalWords map[string]struct{}) float64 {
	semantic := 0.0
	textLower := strings.ToLower(c.text)
	if strings.Contains(goalLower, textLower) || strings.Contains(textLower, goalLower) {
		semantic += containmentBonus
	}
	switch c.kind {
	case KindFact:
		semantic += affinityBonus(goalWords, c.category)
		if c.predicate != "" && strings.Contains(goalLower, strings.ToLower(c.predicate)) {
			semantic += predicateBonus
		}
	case KindMessage:
		semantic += recencyBonus
	}
	return semantic
}

// filterByPolicy drops candidates above the sensitivity ceiling and, when
// consent is respected, never-shareable candidates. Always-include candidates
// get no exemption here.
func filterByPolicy(candidates []candidate, pol Policy) []candidate {
	out := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.sensitivity > pol.MaxSensitivity {
			continue
		}
		if pol.RespectConsent && c.neverShare {
			continue
		}
		out = append(out, c)
	}
	return out
}

// pack orders candidates (pinned ahead of ranked, ranked by score descending
// with stable insertion-order tie-break) and fills the token budget greedily.
// Packing stops at the first candidate that would exceed budget, except that
// a single always-include candidate is force-included when nothing has been
// selected yet.
func pack(candidates []candidate, budget int) []candidate {
	pinned := make([]candidate, 0)
	ranked := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.priority >= alwaysIncludeThreshold {
			pinned = append(pinned, c)
		} else {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	ordered := append(pinned, ranked...)

	var selected []candidate
	total := 0
	for _, c := range ordered {
		if total+c.tokens <= budget {
			selected = append(selected, c)
			total += c.tokens
			continue
		}
		if len(selected) == 0 && c.priority >= alwaysIncludeThreshold {
			selected = append(selected, c)
		}
		break
	}
	return selected
}

// bucket groups selected candidates for downstream consumption.
func bucket(selected []candidate) *Bundle {
	bundle := &Bundle{}
	for _, c := range selected {
		slice := Slice{ID: c.id, Kind: c.kind, Text: c.text, Tokens: c.tokens, Score: c.score}
		switch {
		case c.kind == KindMessage:
			bundle.RecentMessages = append(bundle.RecentMessages, slice)
		case c.category == "profile" || c.category == "identity":
			bundle.Profile = append(bundle.Profile, slice)
		case c.category == "preference":
			bundle.Preferences = append(bundle.Preferences, slice)
		default:
			bundle.Facts = append(bundle.Facts, slice)
		}
		bundle.TokenEstimate += c.tokens
	}
	return bundle
}

// estimateTokens approximates language-model tokens as ceil(len/4).
func estimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// CandidateIDs flattens a bundle back to its ordered candidate ids, bucket by
// bucket. Used by callers that need a stable identifier list.
func (b *Bundle) CandidateIDs() []string {
	var ids []string
	for _, group := range [][]Slice{b.Profile, b.Facts, b.Preferences, b.RecentMessages} {
		for _, s := range group {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
