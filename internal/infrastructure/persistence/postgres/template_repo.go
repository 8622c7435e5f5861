// Package postgres implements the PostgreSQL persistence layer for the
// ProjectHub analytics engine.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEMPLATE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// TemplateRepository implements milestone.TemplateRepository for PostgreSQL.
// Template items are stored as an ordered JSONB array.
type TemplateRepository struct {
	conn *Connection
}

// NewTemplateRepository creates a new TemplateRepository.
func NewTemplateRepository(conn *Connection) *TemplateRepository {
	return &TemplateRepository{conn: conn}
}

// templateItemRecord is the JSONB shape of one template item.
type templateItemRecord struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	DaysFromStart  int     `json:"days_from_start"`
	Priority       string  `json:"priority"`
	EstimatedHours float64 `json:"estimated_hours"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Read Operations
// ─────────────────────────────────────────────────────────────────────────────

// FindByID returns a template by identifier.
func (r *TemplateRepository) FindByID(ctx context.Context, id string) (*milestone.Template, error) {
	query := `
		SELECT id, name, description, items, estimated_duration_weeks,
		       is_active, usage_count, created_at, updated_at
		FROM milestone_templates
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanTemplate(row)
}

// FindMostUsedActive returns the active template with the highest usage count.
func (r *TemplateRepository) FindMostUsedActive(ctx context.Context) (*milestone.Template, error) {
	query := `
		SELECT id, name, description, items, estimated_duration_weeks,
		       is_active, usage_count, created_at, updated_at
		FROM milestone_templates
		WHERE is_active = TRUE
		ORDER BY usage_count DESC, created_at ASC
		LIMIT 1
	`

	row := r.conn.QueryRow(ctx, query)
	return r.scanTemplate(row)
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *TemplateRepository) scanTemplate(row pgx.Row) (*milestone.Template, error) {
	var t milestone.Template
	var itemsJSON []byte

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&itemsJSON,
		&t.EstimatedDurationWeeks,
		&t.IsActive,
		&t.UsageCount,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to scan template: %w", err)
	}

	var records []templateItemRecord
	if err := json.Unmarshal(itemsJSON, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal template items: %w", err)
	}

	t.Items = make([]milestone.TemplateItem, len(records))
	for i, rec := range records {
		t.Items[i] = milestone.TemplateItem{
			Title:          rec.Title,
			Description:    rec.Description,
			DaysFromStart:  rec.DaysFromStart,
			Priority:       milestone.Priority(rec.Priority),
			EstimatedHours: rec.EstimatedHours,
		}
	}

	return &t, nil
}
