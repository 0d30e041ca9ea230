// ABOUTME: Fact persistence with atomic triple upserts and encrypted objects
// ABOUTME: Confidence is only ever mutated through the reinforcement path
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/oakhaven/memvault/internal/models"
)

// UpsertFact inserts a fact or, when the (identity, category, predicate)
// triple already exists, updates the existing row in place. The returned fact
// carries the surviving row's id and timestamps.
func (s *Store) UpsertFact(ctx context.Context, f *models.Fact) (*models.Fact, error) {
	sealed, err := s.cipher.Seal(f.Object)
	if err != nil {
		return nil, fmt.Errorf("sealing fact object: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO facts (id, identity_id, category, predicate, object, confidence,
			sensitivity, consent_scope, source_message_id, decay_half_life_days,
			created_at, updated_at, last_reinforced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
		ON CONFLICT(identity_id, category, predicate) DO UPDATE SET
			object = excluded.object,
			confidence = excluded.confidence,
			sensitivity = excluded.sensitivity,
			consent_scope = excluded.consent_scope,
			source_message_id = excluded.source_message_id,
			updated_at = excluded.updated_at
	`, f.ID, f.IdentityID, f.Category, f.Predicate, sealed,
		models.ClampConfidence(f.Confidence), f.Sensitivity, string(f.ConsentScope),
		nullString(f.SourceMessageID), f.DecayHalfLifeDays, f.CreatedAt, now)
	if err != nil {
		return nil, err
	}

	return s.GetFactByTriple(ctx, f.IdentityID, f.Category, f.Predicate)
}

// GetFact returns a fact by id.
func (s *Store) GetFact(ctx context.Context, id string) (*models.Fact, error) {
	row := s.db.QueryRowContext(ctx, factSelect+` WHERE id = ?`, id)
	return s.scanFact(row)
}

// GetFactByTriple returns the fact for a unique triple.
func (s *Store) GetFactByTriple(ctx context.Context, identityID, category, predicate string) (*models.Fact, error) {
	row := s.db.QueryRowContext(ctx,
		factSelect+` WHERE identity_id = ? AND category = ? AND predicate = ?`,
		identityID, category, predicate)
	return s.scanFact(row)
}

// FactFilter narrows ListFacts results. MaxSensitivity is inclusive;
// IncludeNeverShare is only ever set by the export-with-override path.
type FactFilter struct {
	Category          string
	MaxSensitivity    int
	IncludeNeverShare bool
}

// ListFacts returns the identity's facts in stable insertion order.
func (s *Store) ListFacts(ctx context.Context, identityID string, filter FactFilter) ([]models.Fact, error) {
	query := factSelect + ` WHERE identity_id = ? AND sensitivity <= ?`
	args := []any{identityID, filter.MaxSensitivity}
	if !filter.IncludeNeverShare {
		query += ` AND consent_scope != ?`
		args = append(args, string(models.ConsentNeverShare))
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Fact
	for rows.Next() {
		fact, err := s.scanFact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *fact)
	}
	return out, rows.Err()
}

// FactUpdate carries the partially updatable fact fields. Nil pointers leave
// the stored value untouched. Confidence changes here represent a caller
// correcting a value, not reinforcement.
type FactUpdate struct {
	Object       *string
	Confidence   *float64
	Sensitivity  *int
	ConsentScope *models.ConsentScope
}

// UpdateFact applies a partial update to a fact by id.
func (s *Store) UpdateFact(ctx context.Context, id string, update FactUpdate) error {
	fact, err := s.GetFact(ctx, id)
	if err != nil {
		return err
	}

	if update.Object != nil {
		fact.Object = *update.Object
	}
	if update.Confidence != nil {
		fact.Confidence = models.ClampConfidence(*update.Confidence)
	}
	if update.Sensitivity != nil {
		fact.Sensitivity = *update.Sensitivity
	}
	if update.ConsentScope != nil {
		fact.ConsentScope = *update.ConsentScope
	}

	sealed, err := s.cipher.Seal(fact.Object)
	if err != nil {
		return fmt.Errorf("sealing fact object: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE facts SET object = ?, confidence = ?, sensitivity = ?, consent_scope = ?, updated_at = ?
		WHERE id = ?
	`, sealed, fact.Confidence, fact.Sensitivity, string(fact.ConsentScope), time.Now().UTC(), id)
	return err
}

// DeleteFact removes a fact by id.
func (s *Store) DeleteFact(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM facts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyReinforcement persists a reinforcement outcome for one fact. This is
// the only path that mutates confidence outside an explicit caller update.
func (s *Store) ApplyReinforcement(ctx context.Context, id string, confidence float64, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE facts SET confidence = ?, last_reinforced_at = ?, updated_at = ?
		WHERE id = ?
	`, models.ClampConfidence(confidence), at, at, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountFacts returns the total fact count.
func (s *Store) CountFacts(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM facts`).Scan(&n)
	return n, err
}

const factSelect = `
	SELECT id, identity_id, category, predicate, object, confidence,
		sensitivity, consent_scope, source_message_id, decay_half_life_days,
		created_at, updated_at, last_reinforced_at
	FROM facts`

func (s *Store) scanFact(row rowScanner) (*models.Fact, error) {
	var (
		fact       models.Fact
		sealed     string
		scope      string
		sourceID   sql.NullString
		reinforced sql.NullTime
	)
	err := row.Scan(&fact.ID, &fact.IdentityID, &fact.Category, &fact.Predicate,
		&sealed, &fact.Confidence, &fact.Sensitivity, &scope, &sourceID,
		&fact.DecayHalfLifeDays, &fact.CreatedAt, &fact.UpdatedAt, &reinforced)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	fact.ConsentScope = models.ConsentScope(scope)
	fact.Object = s.decryptOrEmpty(sealed, "fact", fact.ID)
	if sourceID.Valid {
		fact.SourceMessageID = sourceID.String
	}
	if reinforced.Valid {
		t := reinforced.Time
		fact.LastReinforcedAt = &t
	}
	return &fact, nil
}
