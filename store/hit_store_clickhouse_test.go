package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ewm/api/config"
	"ewm/api/database"
	"ewm/api/models"
)

// Set EWM_TEST_CLICKHOUSE_HOST (native port 9000, database "default") to run.
func newTestClickHouseStore(t *testing.T) *ClickHouseHitStore {
	t.Helper()
	host := os.Getenv("EWM_TEST_CLICKHOUSE_HOST")
	if host == "" {
		t.Skip("EWM_TEST_CLICKHOUSE_HOST not set")
	}
	ctx := context.Background()

	client, err := database.NewClickHouseDB(ctx, config.ClickHouse{
		Host:       host,
		NativePort: 9000,
		Database:   "default",
		Username:   "default",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to connect to clickhouse: %v", err)
	}
	t.Cleanup(client.Close)

	s, err := NewClickHouseHitStore(ctx, client, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClickHouseHitStore: %v", err)
	}
	if err := client.Conn.Exec(ctx, `TRUNCATE TABLE hits`); err != nil {
		t.Fatalf("truncate hits: %v", err)
	}
	return s
}

func TestClickHouseHitStoreStats(t *testing.T) {
	s := newTestClickHouseStore(t)
	ctx := context.Background()

	hits := []models.Hit{
		{App: "app", URI: "/events/9", IP: "1.1.1.1", Timestamp: t0},
		{App: "app", URI: "/events/1", IP: "1.1.1.1", Timestamp: t0.Add(time.Second)},
		{App: "app", URI: "/events/2", IP: "1.1.1.1", Timestamp: t0.Add(2 * time.Second)},
		{App: "app", URI: "/events/2", IP: "2.2.2.2", Timestamp: t0.Add(3 * time.Second)},
		{App: "app", URI: "/events/2", IP: "1.1.1.1", Timestamp: t0.Add(4 * time.Second)},
		{App: "app", URI: "/events/2", IP: "1.1.1.1", Timestamp: t0.Add(time.Hour)},
	}
	for i := range hits {
		hits[i].ID = uuid.New().String()
	}
	if err := s.SaveBatch(ctx, hits); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	window := models.StatsQuery{Start: t0, End: t0.Add(time.Minute)}
	total, err := s.Stats(ctx, window)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	wantURIs := []string{"/events/2", "/events/9", "/events/1"}
	if len(total) != len(wantURIs) {
		t.Fatalf("total = %+v", total)
	}
	for i, uri := range wantURIs {
		if total[i].URI != uri {
			t.Errorf("total[%d] = %+v, want %s", i, total[i], uri)
		}
	}
	if total[0].Hits != 3 {
		t.Errorf("/events/2 hits = %d, want 3", total[0].Hits)
	}

	window.Unique = true
	window.URIs = []string{"/events/2"}
	unique, err := s.Stats(ctx, window)
	if err != nil {
		t.Fatalf("Stats unique: %v", err)
	}
	if len(unique) != 1 || unique[0].Hits != 2 {
		t.Errorf("unique = %+v, want 2 hits", unique)
	}
}
