package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ewm/api/apperr"
	"ewm/api/models"
	"ewm/api/utils"
)

// StatsService records hits and aggregates them per (app, uri).
type StatsService struct {
	store HitStore
	log   *zap.Logger
}

func NewStatsService(store HitStore, log *zap.Logger) *StatsService {
	return &StatsService{store: store, log: log}
}

// RecordHit validates and appends one hit. Identical hits are never merged.
func (s *StatsService) RecordHit(ctx context.Context, in models.EndpointHit) (*models.Hit, error) {
	hit := &models.Hit{
		App: strings.TrimSpace(in.App),
		URI: strings.TrimSpace(in.URI),
		IP:  strings.TrimSpace(in.IP),
	}
	if hit.App == "" || hit.URI == "" || hit.IP == "" || strings.TrimSpace(in.Timestamp) == "" {
		return nil, apperr.Validation("app, uri, ip and timestamp are required")
	}

	ts, err := models.ParseDateTime(in.Timestamp)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}
	hit.Timestamp = ts
	hit.ID = uuid.New().String()

	if err := s.store.Save(ctx, hit); err != nil {
		s.log.Error("failed to save hit",
			zap.String("app", hit.App), zap.String("uri", hit.URI), zap.String("ip", hit.IP), zap.Error(err))
		return nil, err
	}

	s.log.Debug("hit saved", zap.String("id", hit.ID), zap.String("app", hit.App), zap.String("uri", hit.URI))
	return hit, nil
}

// Stats returns the counts of hits inside the closed window [Start, End],
// highest first. An empty result is not an error.
func (s *StatsService) Stats(ctx context.Context, q models.StatsQuery) ([]models.ViewStats, error) {
	if q.Start.After(q.End) {
		s.log.Warn("rejected stats window", zap.Time("start", q.Start), zap.Time("end", q.End))
		return nil, apperr.Validation("start (%s) must not be after end (%s)",
			models.FormatDateTime(q.Start), models.FormatDateTime(q.End))
	}
	q.URIs = utils.Dedupe(utils.SplitList(q.URIs))

	s.log.Info("querying stats",
		zap.Time("start", q.Start), zap.Time("end", q.End), zap.Strings("uris", q.URIs), zap.Bool("unique", q.Unique))

	stats, err := s.store.Stats(ctx, q)
	if err != nil {
		s.log.Error("failed to query stats", zap.Error(err))
		return nil, err
	}
	if stats == nil {
		stats = []models.ViewStats{}
	}
	return stats, nil
}

// EventURI is the path under which public event views are recorded.
func EventURI(eventID int64) string {
	return "/events/" + strconv.FormatInt(eventID, 10)
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
