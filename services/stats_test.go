package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"ewm/api/apperr"
	"ewm/api/models"
)

func TestRecordHitValidation(t *testing.T) {
	svc := NewStatsService(&fakeHitStore{}, zap.NewNop())

	tests := []struct {
		name string
		hit  models.EndpointHit
	}{
		{"missing app", models.EndpointHit{URI: "/events", IP: "1.1.1.1", Timestamp: "2024-01-01 10:00:00"}},
		{"blank uri", models.EndpointHit{App: "a", URI: "  ", IP: "1.1.1.1", Timestamp: "2024-01-01 10:00:00"}},
		{"missing ip", models.EndpointHit{App: "a", URI: "/events", Timestamp: "2024-01-01 10:00:00"}},
		{"missing timestamp", models.EndpointHit{App: "a", URI: "/events", IP: "1.1.1.1"}},
		{"rfc3339 timestamp", models.EndpointHit{App: "a", URI: "/events", IP: "1.1.1.1", Timestamp: "2024-01-01T10:00:00Z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordHit(context.Background(), tt.hit)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("RecordHit() error = %v, want validation error", err)
			}
		})
	}
}

func TestRecordHitStoreFailure(t *testing.T) {
	svc := NewStatsService(&fakeHitStore{saveErr: errStoreDown}, zap.NewNop())
	_, err := svc.RecordHit(context.Background(), models.EndpointHit{App: "a", URI: "/events", IP: "1.1.1.1", Timestamp: "2024-01-01 10:00:00"})
	if !errors.Is(err, errStoreDown) {
		t.Errorf("RecordHit() error = %v, want store error", err)
	}
}

func TestStatsUniqueAndTotal(t *testing.T) {
	store := &fakeHitStore{}
	svc := NewStatsService(store, zap.NewNop())
	ctx := context.Background()

	for _, h := range []models.EndpointHit{
		{App: "app1", URI: "/events/1", IP: "1.1.1.1", Timestamp: "2024-01-01 10:00:00"},
		{App: "app1", URI: "/events/1", IP: "2.2.2.2", Timestamp: "2024-01-01 10:00:01"},
		{App: "app1", URI: "/events/1", IP: "1.1.1.1", Timestamp: "2024-01-01 10:00:02"},
	} {
		if _, err := svc.RecordHit(ctx, h); err != nil {
			t.Fatalf("RecordHit: %v", err)
		}
	}

	ids := map[string]bool{}
	for _, h := range store.hits {
		if h.ID == "" || ids[h.ID] {
			t.Errorf("hit id %q is empty or duplicated", h.ID)
		}
		ids[h.ID] = true
	}

	start, _ := models.ParseDateTime("2024-01-01 00:00:00")
	end, _ := models.ParseDateTime("2024-01-02 00:00:00")

	total, err := svc.Stats(ctx, models.StatsQuery{Start: start, End: end})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	unique, err := svc.Stats(ctx, models.StatsQuery{Start: start, End: end, Unique: true})
	if err != nil {
		t.Fatalf("Stats unique: %v", err)
	}

	if len(total) != 1 || total[0].Hits != 3 {
		t.Errorf("total = %+v, want 3 hits", total)
	}
	if len(unique) != 1 || unique[0].Hits != 2 {
		t.Errorf("unique = %+v, want 2 hits", unique)
	}
}

func TestStatsRejectsInvertedWindow(t *testing.T) {
	svc := NewStatsService(&fakeHitStore{}, zap.NewNop())
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	_, err := svc.Stats(context.Background(), models.StatsQuery{Start: start, End: end})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("Stats() error = %v, want validation error", err)
	}
	if !strings.Contains(err.Error(), "2024-01-02 00:00:00") || !strings.Contains(err.Error(), "2024-01-01 23:00:00") {
		t.Errorf("error %q should name both bounds", err)
	}
}

func TestStatsEmptyAndURIs(t *testing.T) {
	store := &fakeHitStore{}
	svc := NewStatsService(store, zap.NewNop())
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := svc.Stats(ctx, models.StatsQuery{Start: now, End: now})
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("Stats() = %#v, %v; want empty slice", got, err)
	}

	store.hits = []models.Hit{
		{ID: "1", App: "a", URI: "/events/1", IP: "x", Timestamp: now},
		{ID: "2", App: "a", URI: "/events/2", IP: "x", Timestamp: now},
	}
	got, err = svc.Stats(ctx, models.StatsQuery{Start: now, End: now, URIs: []string{" /events/2 , /events/2"}})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(got) != 1 || got[0].URI != "/events/2" || got[0].Hits != 1 {
		t.Errorf("got %+v, want only /events/2 counted once", got)
	}
}

func TestEventURI(t *testing.T) {
	if got := EventURI(42); got != "/events/42" {
		t.Errorf("EventURI(42) = %q", got)
	}
}
