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

type RequestStore struct {
	db *sql.DB
}

func NewRequestStore(db *sql.DB) *RequestStore {
	return &RequestStore{db: db}
}

const requestColumns = `id, created, event_id, requester_id, status`

func scanRequest(row rowScanner) (*models.ParticipationRequest, error) {
	var (
		r      models.ParticipationRequest
		status string
	)
	if err := row.Scan(&r.ID, &r.Created.Time, &r.Event, &r.Requester, &status); err != nil {
		return nil, err
	}
	r.Status = models.RequestStatus(status)
	return &r, nil
}

func (s *RequestStore) Create(ctx context.Context, r *models.ParticipationRequest) error {
	return insertRequest(ctx, s.db, r)
}

// CreateAdmitted locks the event row so concurrent requests for the same
// event see each other's confirmations before admit runs.
func (s *RequestStore) CreateAdmitted(ctx context.Context, r *models.ParticipationRequest, admit models.Admission) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := lockEvent(ctx, tx, r.Event); err != nil {
			return err
		}
		confirmed, err := countConfirmed(ctx, tx, r.Event)
		if err != nil {
			return err
		}
		if err := admit(confirmed); err != nil {
			return err
		}
		return insertRequest(ctx, tx, r)
	})
}

func (s *RequestStore) ApplyStatusChange(ctx context.Context, eventID int64, ids []int64, plan models.StatusPlanner) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := lockEvent(ctx, tx, eventID); err != nil {
			return err
		}
		found, err := queryRequests(ctx, tx,
			`SELECT `+requestColumns+` FROM requests WHERE id = ANY($1) ORDER BY id FOR UPDATE`, pq.Array(ids))
		if err != nil {
			return err
		}
		confirmed, err := countConfirmed(ctx, tx, eventID)
		if err != nil {
			return err
		}

		p, err := plan(found, confirmed)
		if err != nil {
			return err
		}
		if err := updateStatus(ctx, tx, p.Confirm, models.RequestConfirmed); err != nil {
			return err
		}
		if err := updateStatus(ctx, tx, p.Reject, models.RequestRejected); err != nil {
			return err
		}
		if p.RejectPending {
			_, err := tx.ExecContext(ctx, `UPDATE requests SET status = $1 WHERE event_id = $2 AND status = $3`,
				string(models.RequestRejected), eventID, string(models.RequestPending))
			if err != nil {
				return fmt.Errorf("failed to reject pending requests: %w", err)
			}
		}
		return nil
	})
}

func lockEvent(ctx context.Context, tx *sql.Tx, eventID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("Event with id=%d was not found", eventID)
	}
	if err != nil {
		return fmt.Errorf("failed to lock event: %w", err)
	}
	return nil
}

func countConfirmed(ctx context.Context, q dbtx, eventID int64) (int64, error) {
	var n int64
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM requests WHERE event_id = $1 AND status = $2`, eventID, string(models.RequestConfirmed),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count confirmed requests: %w", err)
	}
	return n, nil
}

func insertRequest(ctx context.Context, q dbtx, r *models.ParticipationRequest) error {
	query := `
		INSERT INTO requests (created, event_id, requester_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := q.QueryRowContext(ctx, query, r.Created.UTC(), r.Event, r.Requester, string(r.Status)).Scan(&r.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Forbidden("Participation request of user %d for event %d already exists", r.Requester, r.Event)
		}
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

func (s *RequestStore) GetByID(ctx context.Context, id int64) (*models.ParticipationRequest, error) {
	r, err := scanRequest(s.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Request with id=%d was not found", id)
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return r, nil
}

func (s *RequestStore) GetByIDs(ctx context.Context, ids []int64) ([]models.ParticipationRequest, error) {
	if len(ids) == 0 {
		return []models.ParticipationRequest{}, nil
	}
	return s.query(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = ANY($1) ORDER BY id`, pq.Array(ids))
}

func (s *RequestStore) ListByRequester(ctx context.Context, userID int64) ([]models.ParticipationRequest, error) {
	return s.query(ctx, `SELECT `+requestColumns+` FROM requests WHERE requester_id = $1 ORDER BY id`, userID)
}

func (s *RequestStore) ListByEvent(ctx context.Context, eventID int64) ([]models.ParticipationRequest, error) {
	return s.query(ctx, `SELECT `+requestColumns+` FROM requests WHERE event_id = $1 ORDER BY id`, eventID)
}

func (s *RequestStore) Exists(ctx context.Context, eventID, requesterID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM requests WHERE event_id = $1 AND requester_id = $2)`, eventID, requesterID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check request existence: %w", err)
	}
	return exists, nil
}

func (s *RequestStore) UpdateStatus(ctx context.Context, ids []int64, status models.RequestStatus) error {
	return updateStatus(ctx, s.db, ids, status)
}

func updateStatus(ctx context.Context, q dbtx, ids []int64, status models.RequestStatus) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := q.ExecContext(ctx, `UPDATE requests SET status = $1 WHERE id = ANY($2)`, string(status), pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	return nil
}

func (s *RequestStore) CountConfirmed(ctx context.Context, eventIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, COUNT(*)
		FROM requests
		WHERE event_id = ANY($1) AND status = $2
		GROUP BY event_id
	`, pq.Array(eventIDs), string(models.RequestConfirmed))
	if err != nil {
		return nil, fmt.Errorf("failed to count confirmed requests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("failed to scan confirmed count: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating confirmed counts: %w", err)
	}
	return counts, nil
}

func (s *RequestStore) query(ctx context.Context, query string, args ...interface{}) ([]models.ParticipationRequest, error) {
	return queryRequests(ctx, s.db, query, args...)
}

func queryRequests(ctx context.Context, q dbtx, query string, args ...interface{}) ([]models.ParticipationRequest, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	requests := []models.ParticipationRequest{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating requests: %w", err)
	}
	return requests, nil
}
