package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ewm/api/apperr"
	"ewm/api/models"
	"ewm/api/utils"
)

type CompilationService struct {
	compilations CompilationRepository
	events       EventRepository
	metrics      *EventMetrics
	log          *zap.Logger
}

func NewCompilationService(compilations CompilationRepository, events EventRepository, metrics *EventMetrics, log *zap.Logger) *CompilationService {
	return &CompilationService{compilations: compilations, events: events, metrics: metrics, log: log}
}

func (s *CompilationService) List(ctx context.Context, pinned *bool, page models.Page) ([]models.Compilation, error) {
	s.log.Info("listing compilations", zap.Any("pinned", pinned), zap.Int("from", page.From), zap.Int("size", page.Size))
	comps, err := s.compilations.List(ctx, pinned, page)
	if err != nil {
		return nil, err
	}
	for i := range comps {
		if err := s.loadEvents(ctx, &comps[i]); err != nil {
			return nil, err
		}
	}
	return comps, nil
}

func (s *CompilationService) Get(ctx context.Context, id int64) (*models.Compilation, error) {
	s.log.Info("getting compilation", zap.Int64("compId", id))
	c, err := s.compilations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.loadEvents(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CompilationService) Create(ctx context.Context, req models.NewCompilationRequest) (*models.Compilation, error) {
	s.log.Info("creating compilation", zap.String("title", req.Title), zap.Int64s("events", req.Events))

	title, err := compilationTitle(req.Title)
	if err != nil {
		return nil, err
	}
	c := &models.Compilation{Title: title, EventIDs: []int64{}}
	if req.Pinned != nil {
		c.Pinned = *req.Pinned
	}
	if req.Events != nil {
		if c.EventIDs, err = s.existingEvents(ctx, req.Events); err != nil {
			return nil, err
		}
	}

	if err := s.compilations.Create(ctx, c); err != nil {
		return nil, err
	}
	if err := s.loadEvents(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CompilationService) Update(ctx context.Context, id int64, req models.UpdateCompilationRequest) (*models.Compilation, error) {
	s.log.Info("updating compilation", zap.Int64("compId", id))

	c, err := s.compilations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		if c.Title, err = compilationTitle(*req.Title); err != nil {
			return nil, err
		}
	}
	if req.Pinned != nil {
		c.Pinned = *req.Pinned
	}
	if req.Events != nil {
		if c.EventIDs, err = s.existingEvents(ctx, req.Events); err != nil {
			return nil, err
		}
	}

	if err := s.compilations.Update(ctx, c); err != nil {
		return nil, err
	}
	if err := s.loadEvents(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CompilationService) Delete(ctx context.Context, id int64) error {
	s.log.Info("deleting compilation", zap.Int64("compId", id))
	return s.compilations.Delete(ctx, id)
}

// existingEvents drops unknown ids, like a lookup with IN would.
func (s *CompilationService) existingEvents(ctx context.Context, ids []int64) ([]int64, error) {
	ids = utils.Dedupe(ids)
	if len(ids) == 0 {
		return []int64{}, nil
	}
	events, err := s.events.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out, nil
}

func (s *CompilationService) loadEvents(ctx context.Context, c *models.Compilation) error {
	c.Events = []models.EventShort{}
	if len(c.EventIDs) == 0 {
		return nil
	}
	events, err := s.events.GetByIDs(ctx, c.EventIDs)
	if err != nil {
		return err
	}
	if err := s.metrics.Fill(ctx, events); err != nil {
		return err
	}
	c.Events = shorts(events)
	return nil
}

func compilationTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || len([]rune(title)) > 50 {
		return "", apperr.Validation("Compilation title must be from 1 to 50 characters")
	}
	return title, nil
}
