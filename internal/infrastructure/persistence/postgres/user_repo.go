// Package postgres implements the PostgreSQL persistence layer for the
// ProjectHub analytics engine.
package postgres

import (
	"context"
	"fmt"

	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/shared"
	"github.com/Enochthedev/ProjectHub-backend-sub008/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Read Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetByID returns a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	query := `
		SELECT id, display_name, role
		FROM users
		WHERE id = $1
	`

	var u user.User
	err := r.conn.QueryRow(ctx, query, id).Scan(&u.ID, &u.DisplayName, &u.Role)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}

// GetStudentsBySupervisor returns students supervised by the given supervisor.
// Supervision is derived from milestone ownership, so a student with no
// milestones under this supervisor does not appear here.
func (r *UserRepository) GetStudentsBySupervisor(ctx context.Context, supervisorID string) ([]*user.User, error) {
	query := `
		SELECT DISTINCT u.id, u.display_name, u.role
		FROM users u
		JOIN milestones m ON m.student_id = u.id
		WHERE m.supervisor_id = $1 AND u.role = 'student'
		ORDER BY u.id ASC
	`

	rows, err := r.conn.Query(ctx, query, supervisorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query supervised students: %w", err)
	}
	defer rows.Close()

	students := make([]*user.User, 0)
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.Role); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, &u)
	}

	return students, rows.Err()
}

// ListSupervisors returns all users with the supervisor role.
func (r *UserRepository) ListSupervisors(ctx context.Context) ([]*user.User, error) {
	query := `
		SELECT id, display_name, role
		FROM users
		WHERE role = 'supervisor'
		ORDER BY id ASC
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query supervisors: %w", err)
	}
	defer rows.Close()

	supervisors := make([]*user.User, 0)
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.Role); err != nil {
			return nil, fmt.Errorf("failed to scan supervisor: %w", err)
		}
		supervisors = append(supervisors, &u)
	}

	return supervisors, rows.Err()
}
