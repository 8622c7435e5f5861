// Package postgres implements the PostgreSQL persistence layer for the
// ProjectHub analytics engine.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE USERS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create users table
-- Version: 001

CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    display_name VARCHAR(100) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'student',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_role CHECK (role IN ('student', 'supervisor'))
);

CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
`

const migration001Down = `
DROP TABLE IF EXISTS users;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE MILESTONES
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create milestones and milestone_notes tables
-- Version: 002

CREATE TABLE IF NOT EXISTS milestones (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    student_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    supervisor_id UUID REFERENCES users(id) ON DELETE SET NULL,
    project_id UUID,
    title VARCHAR(200) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status VARCHAR(20) NOT NULL DEFAULT 'NOT_STARTED',
    priority VARCHAR(20) NOT NULL DEFAULT 'MEDIUM',
    due_date DATE NOT NULL,
    completed_at TIMESTAMP WITH TIME ZONE,
    estimated_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
    actual_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
    blocking_reason TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_status CHECK (status IN ('NOT_STARTED', 'IN_PROGRESS', 'COMPLETED', 'BLOCKED', 'CANCELLED')),
    CONSTRAINT valid_priority CHECK (priority IN ('LOW', 'MEDIUM', 'HIGH', 'CRITICAL')),
    CONSTRAINT valid_hours CHECK (estimated_hours >= 0 AND actual_hours >= 0),
    -- completed_at is set iff the milestone is completed
    CONSTRAINT completed_at_matches_status CHECK ((status = 'COMPLETED') = (completed_at IS NOT NULL))
);

-- Indexes for common queries
CREATE INDEX IF NOT EXISTS idx_milestones_student_id ON milestones(student_id);
CREATE INDEX IF NOT EXISTS idx_milestones_supervisor_id ON milestones(supervisor_id);
CREATE INDEX IF NOT EXISTS idx_milestones_due_date ON milestones(due_date);
CREATE INDEX IF NOT EXISTS idx_milestones_status ON milestones(status);
CREATE INDEX IF NOT EXISTS idx_milestones_completed_at ON milestones(completed_at DESC) WHERE completed_at IS NOT NULL;

-- Composite index for supervisor dashboard queries
CREATE INDEX IF NOT EXISTS idx_milestones_supervisor_due ON milestones(supervisor_id, due_date);

-- Notes attached to milestones
CREATE TABLE IF NOT EXISTS milestone_notes (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    milestone_id UUID NOT NULL REFERENCES milestones(id) ON DELETE CASCADE,
    content TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_milestone_notes_milestone_id ON milestone_notes(milestone_id);
`

const migration002Down = `
DROP TABLE IF EXISTS milestone_notes;
DROP TABLE IF EXISTS milestones;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE MILESTONE TEMPLATES
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create milestone_templates table
-- Version: 003

CREATE TABLE IF NOT EXISTS milestone_templates (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(200) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    -- Template items as ordered JSONB array (title, description,
    -- days_from_start, priority, estimated_hours)
    items JSONB NOT NULL DEFAULT '[]'::jsonb,
    estimated_duration_weeks DOUBLE PRECISION NOT NULL DEFAULT 0,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    usage_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_usage_count CHECK (usage_count >= 0)
);

CREATE INDEX IF NOT EXISTS idx_templates_active_usage ON milestone_templates(usage_count DESC) WHERE is_active = TRUE;
`

const migration003Down = `
DROP TABLE IF EXISTS milestone_templates;
`
