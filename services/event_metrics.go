package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ewm/api/models"
)

// EventMetrics fills the computed ConfirmedRequests and Views of events.
type EventMetrics struct {
	requests RequestRepository
	stats    StatsClient
	log      *zap.Logger
	now      func() time.Time
}

func NewEventMetrics(requests RequestRepository, stats StatsClient, log *zap.Logger) *EventMetrics {
	return &EventMetrics{requests: requests, stats: stats, log: log, now: nowUTC}
}

// Fill updates events in place. Missing statistics leave Views at zero.
func (m *EventMetrics) Fill(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	ids := make([]int64, len(events))
	for i := range events {
		ids[i] = events[i].ID
	}

	confirmed, err := m.requests.CountConfirmed(ctx, ids)
	if err != nil {
		return err
	}
	for i := range events {
		events[i].ConfirmedRequests = confirmed[events[i].ID]
	}

	views := m.views(ctx, events)
	for i := range events {
		events[i].Views = views[EventURI(events[i].ID)]
	}
	return nil
}

func (m *EventMetrics) views(ctx context.Context, events []models.Event) map[string]int64 {
	var (
		start time.Time
		uris  []string
	)
	for i := range events {
		e := &events[i]
		if e.PublishedOn == nil {
			continue
		}
		if start.IsZero() || e.PublishedOn.Before(start) {
			start = e.PublishedOn.Time
		}
		uris = append(uris, EventURI(e.ID))
	}

	views := make(map[string]int64, len(uris))
	if len(uris) == 0 {
		return views
	}

	stats, err := m.stats.Stats(ctx, start, m.now(), uris, true)
	if err != nil {
		m.log.Warn("event views unavailable", zap.Strings("uris", uris), zap.Error(err))
		return views
	}
	for _, st := range stats {
		views[st.URI] += st.Hits
	}
	return views
}
