package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ewm/api/database"
	"ewm/api/models"
)

func newTestHitStore(t *testing.T) *SQLHitStore {
	t.Helper()
	ctx := context.Background()

	client, err := database.NewSQLiteDB(ctx, ":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(client.Close)

	s, err := NewSQLHitStore(ctx, client.DB, DialectSQLite, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to init hit store: %v", err)
	}
	return s
}

func saveHit(t *testing.T, s *SQLHitStore, app, uri, ip string, ts time.Time) {
	t.Helper()
	hit := &models.Hit{ID: uuid.New().String(), App: app, URI: uri, IP: ip, Timestamp: ts}
	if err := s.Save(context.Background(), hit); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

var t0 = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func TestSQLHitStoreUniqueAndTotal(t *testing.T) {
	s := newTestHitStore(t)
	saveHit(t, s, "app1", "/events/1", "1.1.1.1", t0)
	saveHit(t, s, "app1", "/events/1", "2.2.2.2", t0.Add(time.Second))
	saveHit(t, s, "app1", "/events/1", "1.1.1.1", t0.Add(2*time.Second))

	q := models.StatsQuery{Start: t0.Add(-time.Second), End: t0.Add(10 * time.Second)}

	total, err := s.Stats(context.Background(), q)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(total) != 1 || total[0].Hits != 3 {
		t.Fatalf("total = %+v, want one group with 3 hits", total)
	}

	q.Unique = true
	unique, err := s.Stats(context.Background(), q)
	if err != nil {
		t.Fatalf("Stats unique: %v", err)
	}
	if len(unique) != 1 || unique[0].Hits != 2 {
		t.Fatalf("unique = %+v, want one group with 2 hits", unique)
	}
	if unique[0].App != "app1" || unique[0].URI != "/events/1" {
		t.Errorf("unexpected group %+v", unique[0])
	}
}

func TestSQLHitStoreWindowIsClosed(t *testing.T) {
	s := newTestHitStore(t)
	saveHit(t, s, "app", "/a", "1.1.1.1", t0.Add(-time.Second)) // before
	saveHit(t, s, "app", "/a", "1.1.1.1", t0)                    // at start
	saveHit(t, s, "app", "/a", "1.1.1.1", t0.Add(time.Minute))   // at end
	saveHit(t, s, "app", "/a", "1.1.1.1", t0.Add(time.Hour))     // after

	got, err := s.Stats(context.Background(), models.StatsQuery{Start: t0, End: t0.Add(time.Minute)})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(got) != 1 || got[0].Hits != 2 {
		t.Fatalf("got %+v, want 2 hits inside [start, end]", got)
	}
}

func TestSQLHitStoreURIFilterAndOrder(t *testing.T) {
	s := newTestHitStore(t)
	saveHit(t, s, "app", "/events", "1.1.1.1", t0)
	saveHit(t, s, "app", "/events/1", "1.1.1.1", t0)
	saveHit(t, s, "app", "/events/1", "1.1.1.1", t0)
	saveHit(t, s, "app", "/events/2", "1.1.1.1", t0)
	saveHit(t, s, "app", "/events/2", "2.2.2.2", t0)
	saveHit(t, s, "app", "/events/2", "3.3.3.3", t0)

	q := models.StatsQuery{Start: t0, End: t0}
	all, err := s.Stats(context.Background(), q)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all = %+v, want 3 groups", all)
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Hits < all[i].Hits {
			t.Errorf("results not ordered by hits desc: %+v", all)
		}
	}
	if all[0].URI != "/events/2" || all[0].Hits != 3 {
		t.Errorf("top = %+v, want /events/2 with 3 hits", all[0])
	}

	q.URIs = []string{"/events/1", "/events/missing"}
	filtered, err := s.Stats(context.Background(), q)
	if err != nil {
		t.Fatalf("Stats filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].URI != "/events/1" || filtered[0].Hits != 2 {
		t.Fatalf("filtered = %+v", filtered)
	}
}

func TestSQLHitStoreTiesKeepFirstSeenOrder(t *testing.T) {
	s := newTestHitStore(t)
	saveHit(t, s, "app", "/events/9", "1.1.1.1", t0)
	saveHit(t, s, "app", "/events/1", "1.1.1.1", t0.Add(time.Second))
	saveHit(t, s, "app", "/events/5", "1.1.1.1", t0.Add(2*time.Second))
	saveHit(t, s, "app", "/events/3", "1.1.1.1", t0.Add(2*time.Second))

	for i := 0; i < 3; i++ {
		got, err := s.Stats(context.Background(), models.StatsQuery{Start: t0, End: t0.Add(time.Minute)})
		if err != nil {
			t.Fatalf("Stats: %v", err)
		}
		var uris []string
		for _, v := range got {
			uris = append(uris, v.URI)
		}
		want := []string{"/events/9", "/events/1", "/events/3", "/events/5"}
		if strings.Join(uris, ",") != strings.Join(want, ",") {
			t.Fatalf("order = %v, want %v", uris, want)
		}
	}
}

func TestSQLHitStoreNoDataIsEmpty(t *testing.T) {
	s := newTestHitStore(t)
	got, err := s.Stats(context.Background(), models.StatsQuery{Start: t0, End: t0.Add(time.Hour)})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty non-nil slice", got)
	}
}

func TestRebindDollar(t *testing.T) {
	got := rebindDollar("SELECT 1 WHERE a = ? AND b IN (?, ?)")
	want := "SELECT 1 WHERE a = $1 AND b IN ($2, $3)"
	if got != want {
		t.Errorf("rebindDollar() = %q, want %q", got, want)
	}
}
