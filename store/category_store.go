package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ewm/api/apperr"
	"ewm/api/models"
)

type CategoryStore struct {
	db *sql.DB
}

func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) Create(ctx context.Context, c *models.Category) error {
	err := s.db.QueryRowContext(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id`, c.Name).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("Category with name '%s' already exists", c.Name)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (s *CategoryStore) Update(ctx context.Context, c *models.Category) error {
	ok, err := execAffected(ctx, s.db, `UPDATE categories SET name = $1 WHERE id = $2`, c.Name, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("Category with name '%s' already exists", c.Name)
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	if !ok {
		return apperr.NotFound("Category with id=%d was not found", c.ID)
	}
	return nil
}

func (s *CategoryStore) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	c := &models.Category{}
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Category with id=%d was not found", id)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

func (s *CategoryStore) List(ctx context.Context, page models.Page) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id LIMIT $1 OFFSET $2`, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryStore) Delete(ctx context.Context, id int64) error {
	ok, err := execAffected(ctx, s.db, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if !ok {
		return apperr.NotFound("Category with id=%d was not found", id)
	}
	return nil
}
