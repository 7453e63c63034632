package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// NewSQLiteDB opens a local SQLite database. A single connection is kept so
// that ":memory:" databases survive between statements.
func NewSQLiteDB(ctx context.Context, dsn string, log *zap.Logger) (*DBClient, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to sqlite (ping failed): %w", err)
	}

	log.Info("opened SQLite database", zap.String("dsn", dsn))
	return &DBClient{DB: db, log: log}, nil
}
