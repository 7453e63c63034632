package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ewm/api/database"
	"ewm/api/models"
)

// ClickHouseHitStore keeps hits in a ClickHouse MergeTree table.
type ClickHouseHitStore struct {
	DB  *database.ClickHouseClient
	log *zap.Logger
}

func NewClickHouseHitStore(ctx context.Context, chClient *database.ClickHouseClient, log *zap.Logger) (*ClickHouseHitStore, error) {
	err := chClient.Conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS hits (
			id String,
			app String,
			uri String,
			ip String,
			timestamp DateTime('UTC')
		) ENGINE = MergeTree
		ORDER BY (app, uri, timestamp)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create hits table: %w", err)
	}

	return &ClickHouseHitStore{DB: chClient, log: log}, nil
}

func (s *ClickHouseHitStore) Save(ctx context.Context, hit *models.Hit) error {
	return s.SaveBatch(ctx, []models.Hit{*hit})
}

// SaveBatch inserts hits in one round trip.
func (s *ClickHouseHitStore) SaveBatch(ctx context.Context, hits []models.Hit) error {
	if len(hits) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, `INSERT INTO hits (id, app, uri, ip, timestamp)`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, hit := range hits {
		if err := batch.Append(hit.ID, hit.App, hit.URI, hit.IP, hit.Timestamp.UTC()); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("failed to append hit %s to batch: %w", hit.ID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	s.log.Debug("inserted hits", zap.Int("count", len(hits)))
	return nil
}

func (s *ClickHouseHitStore) Stats(ctx context.Context, q models.StatsQuery) ([]models.ViewStats, error) {
	countExpr := "count()"
	if q.Unique {
		countExpr = "uniqExact(ip)"
	}

	args := []interface{}{q.Start.UTC(), q.End.UTC()}
	whereClause := "WHERE timestamp >= ? AND timestamp <= ?"
	if len(q.URIs) > 0 {
		whereClause += " AND has(?, uri)"
		args = append(args, q.URIs)
	}

	query := fmt.Sprintf(`
		SELECT app, uri, %s AS hits
		FROM hits
		%s
		GROUP BY app, uri
		ORDER BY hits DESC, min(timestamp), app, uri
	`, countExpr, whereClause)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	results := []models.ViewStats{}
	for rows.Next() {
		var (
			app, uri string
			hits     uint64
		)
		if err := rows.Scan(&app, &uri, &hits); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		results = append(results, models.ViewStats{App: app, URI: uri, Hits: int64(hits)})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during stats query: %w", err)
	}

	return results, nil
}
