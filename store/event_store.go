package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"ewm/api/apperr"
	"ewm/api/models"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

const eventColumns = `
	e.id, e.annotation, c.id, c.name, e.created_on, e.description, e.event_date,
	u.id, u.name, e.lat, e.lon, e.paid, e.participant_limit, e.published_on,
	e.request_moderation, e.state, e.title`

const eventFrom = `
	FROM events e
	JOIN categories c ON c.id = e.category_id
	JOIN users u ON u.id = e.initiator_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		e           models.Event
		publishedOn sql.NullTime
		state       string
	)
	err := row.Scan(
		&e.ID, &e.Annotation, &e.Category.ID, &e.Category.Name, &e.CreatedOn.Time, &e.Description, &e.EventDate.Time,
		&e.Initiator.ID, &e.Initiator.Name, &e.Location.Lat, &e.Location.Lon, &e.Paid, &e.ParticipantLimit, &publishedOn,
		&e.RequestModeration, &state, &e.Title,
	)
	if err != nil {
		return nil, err
	}
	e.State = models.EventState(state)
	if publishedOn.Valid {
		e.PublishedOn = models.DateTimePtr(publishedOn.Time)
	}
	return &e, nil
}

func (s *EventStore) Create(ctx context.Context, e *models.Event) error {
	query := `
		INSERT INTO events (
			annotation, category_id, created_on, description, event_date, initiator_id, lat, lon,
			paid, participant_limit, published_on, request_moderation, state, title
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		e.Annotation, e.Category.ID, e.CreatedOn.UTC(), e.Description, e.EventDate.UTC(), e.Initiator.ID,
		e.Location.Lat, e.Location.Lon, e.Paid, e.ParticipantLimit, dateTimeArg(e.PublishedOn),
		e.RequestModeration, string(e.State), e.Title,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (s *EventStore) Update(ctx context.Context, e *models.Event) error {
	query := `
		UPDATE events SET
			annotation = $1, category_id = $2, description = $3, event_date = $4, lat = $5, lon = $6,
			paid = $7, participant_limit = $8, published_on = $9, request_moderation = $10, state = $11, title = $12
		WHERE id = $13
	`
	ok, err := execAffected(ctx, s.db, query,
		e.Annotation, e.Category.ID, e.Description, e.EventDate.UTC(), e.Location.Lat, e.Location.Lon,
		e.Paid, e.ParticipantLimit, dateTimeArg(e.PublishedOn), e.RequestModeration, string(e.State), e.Title,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if !ok {
		return apperr.NotFound("Event with id=%d was not found", e.ID)
	}
	return nil
}

func (s *EventStore) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+eventFrom+` WHERE e.id = $1`, id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Event with id=%d was not found", id)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

func (s *EventStore) GetByIDs(ctx context.Context, ids []int64) ([]models.Event, error) {
	if len(ids) == 0 {
		return []models.Event{}, nil
	}
	return s.query(ctx, `SELECT `+eventColumns+eventFrom+` WHERE e.id = ANY($1) ORDER BY e.id`, pq.Array(ids))
}

func (s *EventStore) ListByInitiator(ctx context.Context, userID int64, page models.Page) ([]models.Event, error) {
	return s.query(ctx, `SELECT `+eventColumns+eventFrom+` WHERE e.initiator_id = $1 ORDER BY e.id LIMIT $2 OFFSET $3`,
		userID, page.Size, page.Offset())
}

func (s *EventStore) Search(ctx context.Context, f models.EventFilter) ([]models.Event, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.Users) > 0 {
		conds = append(conds, "e.initiator_id = ANY("+arg(pq.Array(f.Users))+")")
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, st := range f.States {
			states[i] = string(st)
		}
		conds = append(conds, "e.state = ANY("+arg(pq.Array(states))+")")
	}
	if len(f.Categories) > 0 {
		conds = append(conds, "e.category_id = ANY("+arg(pq.Array(f.Categories))+")")
	}
	if text := strings.TrimSpace(f.Text); text != "" {
		p := arg("%" + text + "%")
		conds = append(conds, "(e.annotation ILIKE "+p+" OR e.description ILIKE "+p+")")
	}
	if f.Paid != nil {
		conds = append(conds, "e.paid = "+arg(*f.Paid))
	}
	if f.RangeStart != nil {
		conds = append(conds, "e.event_date >= "+arg(f.RangeStart.UTC()))
	}
	if f.RangeEnd != nil {
		conds = append(conds, "e.event_date <= "+arg(f.RangeEnd.UTC()))
	}

	query := `SELECT ` + eventColumns + eventFrom
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	if f.Sort == models.SortEventDate {
		query += " ORDER BY e.event_date, e.id"
	} else {
		query += " ORDER BY e.id"
	}
	if f.Page.Size > 0 {
		query += " LIMIT " + arg(f.Page.Size) + " OFFSET " + arg(f.Page.Offset())
	}

	return s.query(ctx, query, args...)
}

func (s *EventStore) ExistsByCategory(ctx context.Context, categoryID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE category_id = $1)`, categoryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category events: %w", err)
	}
	return exists, nil
}

func (s *EventStore) query(ctx context.Context, query string, args ...interface{}) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

func dateTimeArg(d *models.DateTime) interface{} {
	if d == nil {
		return nil
	}
	return d.UTC()
}
