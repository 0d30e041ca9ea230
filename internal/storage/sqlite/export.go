// ABOUTME: User-initiated export of identity, facts, and sessions
// ABOUTME: Supports YAML and JSON; never-shareable facts are excluded unconditionally
package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ExportData is the complete exportable structure. Message content never
// appears here; facts are decrypted for the user's own backup.
type ExportData struct {
	Version    string          `yaml:"version" json:"version"`
	ExportedAt string          `yaml:"exported_at" json:"exported_at"`
	Tool       string          `yaml:"tool" json:"tool"`
	Identity   *ExportIdentity `yaml:"identity,omitempty" json:"identity,omitempty"`
	Facts      []ExportFact    `yaml:"facts,omitempty" json:"facts,omitempty"`
	Sessions   []ExportSession `yaml:"sessions,omitempty" json:"sessions,omitempty"`
}

// ExportIdentity is the identity row for export.
type ExportIdentity struct {
	ID          string `yaml:"id" json:"id"`
	DisplayName string `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	CreatedAt   string `yaml:"created_at" json:"created_at"`
}

// ExportFact is one decrypted fact for export.
type ExportFact struct {
	FactID      string  `yaml:"fact_id" json:"fact_id"`
	Category    string  `yaml:"category" json:"category"`
	Predicate   string  `yaml:"predicate" json:"predicate"`
	Object      string  `yaml:"object" json:"object"`
	Confidence  float64 `yaml:"confidence" json:"confidence"`
	Sensitivity int     `yaml:"sensitivity" json:"sensitivity"`
	CreatedAt   string  `yaml:"created_at" json:"created_at"`
	UpdatedAt   string  `yaml:"updated_at" json:"updated_at"`
}

// ExportSession is one session for export.
type ExportSession struct {
	SessionID string `yaml:"session_id" json:"session_id"`
	Goal      string `yaml:"goal,omitempty" json:"goal,omitempty"`
	Title     string `yaml:"title,omitempty" json:"title,omitempty"`
	StartedAt string `yaml:"started_at" json:"started_at"`
	EndedAt   string `yaml:"ended_at,omitempty" json:"ended_at,omitempty"`
}

// Export assembles the exportable view of the store. Facts above
// maxSensitivity are omitted; never-shareable facts are always omitted.
func (s *Store) Export(ctx context.Context, maxSensitivity int) (*ExportData, error) {
	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Tool:       "memvault",
	}

	identity, err := s.GetIdentity(ctx)
	if err != nil {
		return nil, fmt.Errorf("exporting identity: %w", err)
	}
	data.Identity = &ExportIdentity{
		ID:          identity.ID,
		DisplayName: identity.DisplayName,
		CreatedAt:   identity.CreatedAt.Format(time.RFC3339),
	}

	facts, err := s.ListFacts(ctx, identity.ID, FactFilter{MaxSensitivity: maxSensitivity})
	if err != nil {
		return nil, fmt.Errorf("exporting facts: %w", err)
	}
	for _, f := range facts {
		data.Facts = append(data.Facts, ExportFact{
			FactID:      f.ID,
			Category:    f.Category,
			Predicate:   f.Predicate,
			Object:      f.Object,
			Confidence:  f.Confidence,
			Sensitivity: f.Sensitivity,
			CreatedAt:   f.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   f.UpdatedAt.Format(time.RFC3339),
		})
	}

	sessions, err := s.ListSessions(ctx, identity.ID, 200)
	if err != nil {
		return nil, fmt.Errorf("exporting sessions: %w", err)
	}
	for _, sess := range sessions {
		es := ExportSession{
			SessionID: sess.ID,
			Goal:      sess.Goal,
			Title:     sess.Title,
			StartedAt: sess.StartedAt.Format(time.RFC3339),
		}
		if sess.EndedAt != nil {
			es.EndedAt = sess.EndedAt.Format(time.RFC3339)
		}
		data.Sessions = append(data.Sessions, es)
	}

	return data, nil
}

// WriteFile writes an export to path; the format follows the extension
// (.json for JSON, anything else YAML).
func (data *ExportData) WriteFile(path string) error {
	var (
		raw []byte
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		raw, err = json.MarshalIndent(data, "", "  ")
	} else {
		raw, err = yaml.Marshal(data)
	}
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}
	return os.WriteFile(path, raw, 0o600)
}
