package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"ewm/api/models"
)

// Dialect selects the placeholder style of a database/sql backend.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// SQLHitStore keeps hits in a relational table (Postgres or SQLite).
type SQLHitStore struct {
	db      *sql.DB
	dialect Dialect
	log     *zap.Logger
}

const hitsSchema = `
CREATE TABLE IF NOT EXISTS hits (
	id VARCHAR(36) PRIMARY KEY,
	app VARCHAR(255) NOT NULL,
	uri VARCHAR(512) NOT NULL,
	ip VARCHAR(45) NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_hits_created_at ON hits(created_at);
CREATE INDEX IF NOT EXISTS idx_hits_uri ON hits(uri);
`

func NewSQLHitStore(ctx context.Context, db *sql.DB, dialect Dialect, log *zap.Logger) (*SQLHitStore, error) {
	if _, err := db.ExecContext(ctx, hitsSchema); err != nil {
		return nil, fmt.Errorf("failed to create hits table: %w", err)
	}
	return &SQLHitStore{db: db, dialect: dialect, log: log}, nil
}

func (s *SQLHitStore) Save(ctx context.Context, hit *models.Hit) error {
	query := s.rebind(`INSERT INTO hits (id, app, uri, ip, created_at) VALUES (?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, hit.ID, hit.App, hit.URI, hit.IP, hit.Timestamp.UTC()); err != nil {
		return fmt.Errorf("failed to insert hit: %w", err)
	}
	return nil
}

func (s *SQLHitStore) Stats(ctx context.Context, q models.StatsQuery) ([]models.ViewStats, error) {
	countExpr := "COUNT(ip)"
	if q.Unique {
		countExpr = "COUNT(DISTINCT ip)"
	}

	args := []interface{}{q.Start.UTC(), q.End.UTC()}
	whereClause := "WHERE created_at >= ? AND created_at <= ?"
	if len(q.URIs) > 0 {
		whereClause += " AND uri IN (" + strings.TrimSuffix(strings.Repeat("?, ", len(q.URIs)), ", ") + ")"
		for _, uri := range q.URIs {
			args = append(args, uri)
		}
	}

	query := s.rebind(fmt.Sprintf(`
		SELECT app, uri, %s AS hits
		FROM hits
		%s
		GROUP BY app, uri
		ORDER BY hits DESC, MIN(created_at), app, uri
	`, countExpr, whereClause))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	results := []models.ViewStats{}
	for rows.Next() {
		var v models.ViewStats
		if err := rows.Scan(&v.App, &v.URI, &v.Hits); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		results = append(results, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during stats query: %w", err)
	}

	return results, nil
}

// rebind rewrites ? placeholders as $n for Postgres.
func (s *SQLHitStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
