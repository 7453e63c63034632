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

type CompilationStore struct {
	db *sql.DB
}

func NewCompilationStore(db *sql.DB) *CompilationStore {
	return &CompilationStore{db: db}
}

// Create inserts the compilation and its event links in one transaction.
func (s *CompilationStore) Create(ctx context.Context, c *models.Compilation) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO compilations (pinned, title) VALUES ($1, $2) RETURNING id`, c.Pinned, c.Title,
		).Scan(&c.ID)
		if err != nil {
			return fmt.Errorf("failed to create compilation: %w", err)
		}
		return linkEvents(ctx, tx, c.ID, c.EventIDs)
	})
}

// Update rewrites the compilation row and replaces its event links.
func (s *CompilationStore) Update(ctx context.Context, c *models.Compilation) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE compilations SET pinned = $1, title = $2 WHERE id = $3`, c.Pinned, c.Title, c.ID)
		if err != nil {
			return fmt.Errorf("failed to update compilation: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return apperr.NotFound("Compilation with id=%d was not found", c.ID)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM compilation_events WHERE compilation_id = $1`, c.ID); err != nil {
			return fmt.Errorf("failed to unlink compilation events: %w", err)
		}
		return linkEvents(ctx, tx, c.ID, c.EventIDs)
	})
}

func (s *CompilationStore) GetByID(ctx context.Context, id int64) (*models.Compilation, error) {
	c := &models.Compilation{}
	err := s.db.QueryRowContext(ctx, `SELECT id, pinned, title FROM compilations WHERE id = $1`, id).Scan(&c.ID, &c.Pinned, &c.Title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Compilation with id=%d was not found", id)
		}
		return nil, fmt.Errorf("failed to get compilation: %w", err)
	}

	ids, err := s.eventIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	c.EventIDs = ids[id]
	return c, nil
}

func (s *CompilationStore) List(ctx context.Context, pinned *bool, page models.Page) ([]models.Compilation, error) {
	query := `SELECT id, pinned, title FROM compilations`
	args := []interface{}{}
	if pinned != nil {
		query += ` WHERE pinned = $1`
		args = append(args, *pinned)
	}
	query += fmt.Sprintf(` ORDER BY id LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list compilations: %w", err)
	}
	defer rows.Close()

	comps := []models.Compilation{}
	var compIDs []int64
	for rows.Next() {
		var c models.Compilation
		if err := rows.Scan(&c.ID, &c.Pinned, &c.Title); err != nil {
			return nil, fmt.Errorf("failed to scan compilation: %w", err)
		}
		comps = append(comps, c)
		compIDs = append(compIDs, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating compilations: %w", err)
	}

	ids, err := s.eventIDs(ctx, compIDs)
	if err != nil {
		return nil, err
	}
	for i := range comps {
		comps[i].EventIDs = ids[comps[i].ID]
	}
	return comps, nil
}

func (s *CompilationStore) Delete(ctx context.Context, id int64) error {
	ok, err := execAffected(ctx, s.db, `DELETE FROM compilations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete compilation: %w", err)
	}
	if !ok {
		return apperr.NotFound("Compilation with id=%d was not found", id)
	}
	return nil
}

func (s *CompilationStore) eventIDs(ctx context.Context, compIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64, len(compIDs))
	if len(compIDs) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT compilation_id, event_id FROM compilation_events WHERE compilation_id = ANY($1) ORDER BY event_id`,
		pq.Array(compIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load compilation events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var compID, eventID int64
		if err := rows.Scan(&compID, &eventID); err != nil {
			return nil, fmt.Errorf("failed to scan compilation event: %w", err)
		}
		out[compID] = append(out[compID], eventID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating compilation events: %w", err)
	}
	return out, nil
}

func (s *CompilationStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return withTx(ctx, s.db, fn)
}

func linkEvents(ctx context.Context, tx *sql.Tx, compID int64, eventIDs []int64) error {
	if len(eventIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO compilation_events (compilation_id, event_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`, compID, pq.Array(eventIDs))
	if err != nil {
		return fmt.Errorf("failed to link compilation events: %w", err)
	}
	return nil
}
