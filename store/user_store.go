package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"ewm/api/apperr"
	"ewm/api/models"
)

type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore instance.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user into the database.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (name, email)
		VALUES ($1, $2)
		RETURNING id;
	`
	err := s.db.QueryRowContext(ctx, query, u.Name, u.Email).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("User with email '%s' already exists", u.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u := &models.User{}
	query := `SELECT id, name, email FROM users WHERE id = $1;`

	err := s.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("User with id=%d was not found", id)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

func (s *UserStore) List(ctx context.Context, ids []int64, page models.Page) ([]models.User, error) {
	query := `SELECT id, name, email FROM users`
	args := []interface{}{}
	if len(ids) > 0 {
		query += ` WHERE id = ANY($1)`
		args = append(args, pq.Array(ids))
	}
	query += fmt.Sprintf(` ORDER BY id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

func (s *UserStore) Delete(ctx context.Context, id int64) error {
	ok, err := execAffected(ctx, s.db, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !ok {
		return apperr.NotFound("User with id=%d was not found", id)
	}
	return nil
}
