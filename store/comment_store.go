package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ewm/api/apperr"
	"ewm/api/models"
)

type CommentStore struct {
	db *sql.DB
}

func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentSelect = `
	SELECT cm.id, e.id, e.title, u.id, u.name, cm.text, cm.state, cm.created_on, cm.updated_on, cm.published_on
	FROM comments cm
	JOIN events e ON e.id = cm.event_id
	JOIN users u ON u.id = cm.author_id`

func scanComment(row rowScanner) (*models.Comment, error) {
	var (
		c                      models.Comment
		state                  string
		updatedOn, publishedOn sql.NullTime
	)
	err := row.Scan(&c.ID, &c.Event.ID, &c.Event.Title, &c.Author.ID, &c.Author.Name, &c.Text, &state,
		&c.CreatedOn.Time, &updatedOn, &publishedOn)
	if err != nil {
		return nil, err
	}
	c.State = models.CommentState(state)
	if updatedOn.Valid {
		c.UpdatedOn = models.DateTimePtr(updatedOn.Time)
	}
	if publishedOn.Valid {
		c.PublishedOn = models.DateTimePtr(publishedOn.Time)
	}
	return &c, nil
}

func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	query := `
		INSERT INTO comments (event_id, author_id, text, state, created_on)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query, c.Event.ID, c.Author.ID, c.Text, string(c.State), c.CreatedOn.UTC()).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (s *CommentStore) Update(ctx context.Context, c *models.Comment) error {
	ok, err := execAffected(ctx, s.db,
		`UPDATE comments SET text = $1, state = $2, updated_on = $3, published_on = $4 WHERE id = $5`,
		c.Text, string(c.State), dateTimeArg(c.UpdatedOn), dateTimeArg(c.PublishedOn), c.ID)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	if !ok {
		return apperr.NotFound("Comment with id=%d was not found", c.ID)
	}
	return nil
}

func (s *CommentStore) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx, commentSelect+` WHERE cm.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Comment with id=%d was not found", id)
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return c, nil
}

func (s *CommentStore) ListByEvent(ctx context.Context, eventID int64, page models.Page) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, commentSelect+` WHERE cm.event_id = $1 ORDER BY cm.created_on, cm.id LIMIT $2 OFFSET $3`,
		eventID, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return comments, nil
}

func (s *CommentStore) Delete(ctx context.Context, id int64) error {
	ok, err := execAffected(ctx, s.db, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if !ok {
		return apperr.NotFound("Comment with id=%d was not found", id)
	}
	return nil
}
