// Package postgres implements the PostgreSQL persistence layer for the
// ProjectHub analytics engine.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/milestone"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MILESTONE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// milestoneColumns is the canonical column list for milestone queries.
const milestoneColumns = `
	id, student_id, COALESCE(project_id::text, ''), title, description,
	status, priority, due_date, completed_at, estimated_hours, actual_hours,
	blocking_reason, created_at, updated_at
`

// MilestoneRepository implements milestone.Repository for PostgreSQL.
type MilestoneRepository struct {
	conn *Connection
}

// NewMilestoneRepository creates a new MilestoneRepository.
func NewMilestoneRepository(conn *Connection) *MilestoneRepository {
	return &MilestoneRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Read Operations
// ─────────────────────────────────────────────────────────────────────────────

// FindByStudent returns all milestones owned by a student, newest deadline last.
func (r *MilestoneRepository) FindByStudent(ctx context.Context, studentID string, f milestone.Filter) ([]*milestone.Milestone, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM milestones
		WHERE student_id = $1
	`, milestoneColumns)

	args := []interface{}{studentID}
	query, args = appendFilter(query, args, f)
	query += " ORDER BY due_date ASC, id ASC"

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestones by student: %w", err)
	}
	defer rows.Close()

	milestones, err := r.scanMilestones(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachNotes(ctx, milestones); err != nil {
		return nil, err
	}

	return milestones, nil
}

// FindBySupervisor returns milestones of every student the supervisor oversees.
// Supervision is recorded per milestone, so this is a single indexed scan.
func (r *MilestoneRepository) FindBySupervisor(ctx context.Context, supervisorID string, f milestone.Filter) ([]*milestone.Milestone, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM milestones
		WHERE supervisor_id = $1
	`, milestoneColumns)

	args := []interface{}{supervisorID}
	query, args = appendFilter(query, args, f)
	query += " ORDER BY student_id ASC, due_date ASC, id ASC"

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestones by supervisor: %w", err)
	}
	defer rows.Close()

	milestones, err := r.scanMilestones(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachNotes(ctx, milestones); err != nil {
		return nil, err
	}

	return milestones, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Filter & Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

// appendFilter extends a WHERE clause with the optional filter conditions.
func appendFilter(query string, args []interface{}, f milestone.Filter) (string, []interface{}) {
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		query += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}

	if len(f.Priorities) > 0 {
		priorities := make([]string, len(f.Priorities))
		for i, p := range f.Priorities {
			priorities[i] = string(p)
		}
		args = append(args, priorities)
		query += fmt.Sprintf(" AND priority = ANY($%d)", len(args))
	}

	if !f.DueAfter.IsZero() {
		args = append(args, f.DueAfter)
		query += fmt.Sprintf(" AND due_date >= $%d", len(args))
	}

	if !f.DueBefore.IsZero() {
		args = append(args, f.DueBefore)
		query += fmt.Sprintf(" AND due_date <= $%d", len(args))
	}

	return query, args
}

// scanMilestone scans a single milestone from a row.
func (r *MilestoneRepository) scanMilestone(row pgx.Row) (*milestone.Milestone, error) {
	var m milestone.Milestone
	var completedAt *time.Time

	err := row.Scan(
		&m.ID,
		&m.StudentID,
		&m.ProjectID,
		&m.Title,
		&m.Description,
		&m.Status,
		&m.Priority,
		&m.DueDate,
		&completedAt,
		&m.EstimatedHours,
		&m.ActualHours,
		&m.BlockingReason,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrMilestoneNotFound
		}
		return nil, fmt.Errorf("failed to scan milestone: %w", err)
	}

	m.CompletedAt = completedAt
	return &m, nil
}

// scanMilestones scans multiple milestones from rows.
func (r *MilestoneRepository) scanMilestones(rows pgx.Rows) ([]*milestone.Milestone, error) {
	milestones := make([]*milestone.Milestone, 0)
	for rows.Next() {
		m, err := r.scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

// attachNotes loads notes for the given milestones in one round trip.
func (r *MilestoneRepository) attachNotes(ctx context.Context, milestones []*milestone.Milestone) error {
	if len(milestones) == 0 {
		return nil
	}

	ids := make([]string, len(milestones))
	byID := make(map[string]*milestone.Milestone, len(milestones))
	for i, m := range milestones {
		ids[i] = m.ID
		byID[m.ID] = m
	}

	query := `
		SELECT id, milestone_id, content, created_at
		FROM milestone_notes
		WHERE milestone_id = ANY($1)
		ORDER BY created_at ASC
	`

	rows, err := r.conn.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to query milestone notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var note milestone.Note
		var milestoneID string

		if err := rows.Scan(&note.ID, &milestoneID, &note.Content, &note.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan milestone note: %w", err)
		}

		if m, ok := byID[milestoneID]; ok {
			m.Notes = append(m.Notes, note)
		}
	}

	return rows.Err()
}
