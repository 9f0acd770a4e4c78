package db

import (
	"context"
	"fmt"
)

// CreateSchema creates all tables needed by the service. Safe to call on
// every startup; uses IF NOT EXISTS throughout.
func CreateSchema(ctx context.Context, store *Store) error {
	if _, err := store.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const schema = `
-- Admins
CREATE TABLE IF NOT EXISTS admins (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Admin sessions; the row id is the bearer token itself
CREATE TABLE IF NOT EXISTS admin_sessions (
    id TEXT PRIMARY KEY,
    admin_id TEXT NOT NULL REFERENCES admins(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_admin_sessions_admin_id ON admin_sessions(admin_id);

-- Events (polls)
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    admin_id TEXT NOT NULL REFERENCES admins(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_events_admin_id ON events(admin_id);

-- Candidate time slots, immutable after poll creation
CREATE TABLE IF NOT EXISTS time_slots (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    starts_at TIMESTAMPTZ NOT NULL,
    ends_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_time_slots_event_id ON time_slots(event_id);

-- Participants
CREATE TABLE IF NOT EXISTS participants (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_participants_event_id ON participants(event_id);

-- Votes: at most one per (participant, slot)
CREATE TABLE IF NOT EXISTS votes (
    participant_id TEXT NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
    time_slot_id TEXT NOT NULL REFERENCES time_slots(id) ON DELETE CASCADE,
    available BOOLEAN NOT NULL,
    PRIMARY KEY (participant_id, time_slot_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_time_slot_id ON votes(time_slot_id);
`
