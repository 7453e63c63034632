package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const mainSchema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(250) NOT NULL,
	email VARCHAR(254) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS categories (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(50) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS events (
	id BIGSERIAL PRIMARY KEY,
	annotation VARCHAR(2000) NOT NULL,
	category_id BIGINT NOT NULL REFERENCES categories(id),
	created_on TIMESTAMP NOT NULL,
	description VARCHAR(7000) NOT NULL,
	event_date TIMESTAMP NOT NULL,
	initiator_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	lat DOUBLE PRECISION NOT NULL,
	lon DOUBLE PRECISION NOT NULL,
	paid BOOLEAN NOT NULL DEFAULT FALSE,
	participant_limit INTEGER NOT NULL DEFAULT 0,
	published_on TIMESTAMP,
	request_moderation BOOLEAN NOT NULL DEFAULT TRUE,
	state VARCHAR(16) NOT NULL,
	title VARCHAR(120) NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_category_id ON events(category_id);
CREATE INDEX IF NOT EXISTS idx_events_initiator_id ON events(initiator_id);

CREATE TABLE IF NOT EXISTS requests (
	id BIGSERIAL PRIMARY KEY,
	created TIMESTAMP NOT NULL,
	event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	requester_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	status VARCHAR(16) NOT NULL,
	CONSTRAINT uq_requests_event_requester UNIQUE (event_id, requester_id)
);

CREATE TABLE IF NOT EXISTS comments (
	id BIGSERIAL PRIMARY KEY,
	event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	text VARCHAR(2000) NOT NULL,
	state VARCHAR(16) NOT NULL,
	created_on TIMESTAMP NOT NULL,
	updated_on TIMESTAMP,
	published_on TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_comments_event_id ON comments(event_id);

CREATE TABLE IF NOT EXISTS compilations (
	id BIGSERIAL PRIMARY KEY,
	pinned BOOLEAN NOT NULL DEFAULT FALSE,
	title VARCHAR(50) NOT NULL
);

CREATE TABLE IF NOT EXISTS compilation_events (
	compilation_id BIGINT NOT NULL REFERENCES compilations(id) ON DELETE CASCADE,
	event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	PRIMARY KEY (compilation_id, event_id)
);
`

// MigrateMain creates the main service tables if they do not exist.
func MigrateMain(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, mainSchema); err != nil {
		return fmt.Errorf("failed to migrate main schema: %w", err)
	}
	return nil
}

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// execAffected runs a statement and reports whether any row changed.
func execAffected(ctx context.Context, db *sql.DB, query string, args ...interface{}) (bool, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// dbtx is the subset of *sql.DB and *sql.Tx the stores query through.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// withTx runs fn in a transaction, rolling back when fn fails.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
