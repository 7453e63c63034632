package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ewm/api/apperr"
	"ewm/api/models"
)

type CategoryService struct {
	categories CategoryRepository
	events     EventRepository
	log        *zap.Logger
}

func NewCategoryService(categories CategoryRepository, events EventRepository, log *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, events: events, log: log}
}

func (s *CategoryService) List(ctx context.Context, page models.Page) ([]models.Category, error) {
	s.log.Info("listing categories", zap.Int("from", page.From), zap.Int("size", page.Size))
	return s.categories.List(ctx, page)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	s.log.Info("getting category", zap.Int64("catId", id))
	return s.categories.GetByID(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, req models.NewCategoryRequest) (*models.Category, error) {
	s.log.Info("creating category", zap.String("name", req.Name))
	name, err := categoryName(req.Name)
	if err != nil {
		return nil, err
	}
	c := &models.Category{Name: name}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, req models.NewCategoryRequest) (*models.Category, error) {
	s.log.Info("updating category", zap.Int64("catId", id), zap.String("name", req.Name))
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name, err := categoryName(req.Name)
	if err != nil {
		return nil, err
	}
	c.Name = name
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete refuses to remove a category that still has events.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	s.log.Info("deleting category", zap.Int64("catId", id))
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return err
	}

	used, err := s.events.ExistsByCategory(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return apperr.Forbidden("Category with id=%d is not empty", id)
	}

	return s.categories.Delete(ctx, id)
}

func categoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > 50 {
		return "", apperr.Validation("Category name must be from 1 to 50 characters")
	}
	return name, nil
}
