// ABOUTME: Time-decayed relevance scoring and bounded reinforcement for facts
// ABOUTME: Decay is computed in Go rather than SQL; confidence only grows here
package relevance

import (
	"context"
	"math"
	"time"

	"github.com/oakhaven/memvault/internal/logger"
	"github.com/oakhaven/memvault/internal/models"
)

const (
	// ReinforceFactor is the multiplicative confidence boost per reinforcement.
	ReinforceFactor = 1.05

	// MaxReinforcePerCall bounds write amplification from a single consuming
	// step. Longer lists are truncated, not rejected.
	MaxReinforcePerCall = 25
)

// Score returns the decay-adjusted relevance of a fact at the given instant:
// confidence halved for every half-life elapsed since the fact was last
// reinforced (or created). The result lies in [0, confidence].
func Score(f *models.Fact, now time.Time) float64 {
	return f.Confidence * DecayFactor(f, now)
}

// DecayFactor returns the pure time component of relevance, in (0, 1]:
// 2^(-ageDays/halfLifeDays), measured from the last reinforcement.
func DecayFactor(f *models.Fact, now time.Time) float64 {
	halfLife := f.DecayHalfLifeDays
	if halfLife <= 0 {
		halfLife = models.DefaultHalfLifeDays
	}
	ageDays := now.Sub(f.ReinforcedAt()).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-math.Ln2 * ageDays / halfLife)
}

// FactStore is the slice of the encrypted store the engine needs.
type FactStore interface {
	GetFact(ctx context.Context, id string) (*models.Fact, error)
	ApplyReinforcement(ctx context.Context, id string, confidence float64, at time.Time) error
}

// Engine applies reinforcement mutations against a fact store.
type Engine struct {
	store FactStore
}

// NewEngine creates an Engine over the given store.
func NewEngine(store FactStore) *Engine {
	return &Engine{store: store}
}

// Reinforce marks the given facts as useful: each gets its confidence
// multiplied by ReinforceFactor (clamped to 1.0) and its reinforcement
// timestamp refreshed. Ids are de-duplicated preserving order and truncated
// to MaxReinforcePerCall. Unknown ids are skipped. Returns how many facts
// were reinforced.
func (e *Engine) Reinforce(ctx context.Context, factIDs []string, now time.Time) (int, error) {
	ids := dedupe(factIDs)
	if len(ids) > MaxReinforcePerCall {
		ids = ids[:MaxReinforcePerCall]
	}

	reinforced := 0
	for _, id := range ids {
		fact, err := e.store.GetFact(ctx, id)
		if err != nil {
			logger.Debug("skipping unknown fact in reinforcement", "id", id)
			continue
		}
		next := models.ClampConfidence(fact.Confidence * ReinforceFactor)
		if err := e.store.ApplyReinforcement(ctx, id, next, now); err != nil {
			return reinforced, err
		}
		reinforced++
	}
	return reinforced, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
