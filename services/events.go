package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"ewm/api/apperr"
	"ewm/api/models"
)

const (
	// Minimum lead time between now and the event date for initiators.
	userEventLeadTime = 2 * time.Hour
	// Minimum lead time between publication and the event date.
	publishLeadTime = 1 * time.Hour
)

type EventService struct {
	events     EventRepository
	categories CategoryRepository
	users      UserRepository
	metrics    *EventMetrics
	stats      StatsClient
	appName    string
	log        *zap.Logger
	now        func() time.Time
}

func NewEventService(
	events EventRepository,
	categories CategoryRepository,
	users UserRepository,
	metrics *EventMetrics,
	stats StatsClient,
	appName string,
	log *zap.Logger,
) *EventService {
	return &EventService{
		events:     events,
		categories: categories,
		users:      users,
		metrics:    metrics,
		stats:      stats,
		appName:    appName,
		log:        log,
		now:        nowUTC,
	}
}

// Visit identifies the public request being recorded as a hit.
type Visit struct {
	IP  string
	URI string
}

func (s *EventService) Create(ctx context.Context, userID int64, req models.NewEventRequest) (*models.Event, error) {
	s.log.Info("creating event", zap.Int64("userId", userID), zap.String("title", req.Title))

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	category, err := s.categories.GetByID(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := checkEventDate(req.EventDate.Time, now, userEventLeadTime); err != nil {
		return nil, err
	}
	annotation, err := eventText("annotation", req.Annotation, annotationLen)
	if err != nil {
		return nil, err
	}
	description, err := eventText("description", req.Description, descriptionLen)
	if err != nil {
		return nil, err
	}
	title, err := eventText("title", req.Title, titleLen)
	if err != nil {
		return nil, err
	}

	e := &models.Event{
		Annotation:        annotation,
		Category:          *category,
		CreatedOn:         models.NewDateTime(now),
		Description:       description,
		EventDate:         models.NewDateTime(req.EventDate.Time),
		Initiator:         user.Short(),
		Location:          *req.Location,
		RequestModeration: true,
		State:             models.EventPending,
		Title:             title,
	}
	if req.Paid != nil {
		e.Paid = *req.Paid
	}
	if req.ParticipantLimit != nil {
		e.ParticipantLimit = *req.ParticipantLimit
	}
	if req.RequestModeration != nil {
		e.RequestModeration = *req.RequestModeration
	}

	if err := s.events.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EventService) UserEvents(ctx context.Context, userID int64, page models.Page) ([]models.EventShort, error) {
	s.log.Info("listing user events", zap.Int64("userId", userID), zap.Int("from", page.From), zap.Int("size", page.Size))
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	events, err := s.events.ListByInitiator(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	if err := s.metrics.Fill(ctx, events); err != nil {
		return nil, err
	}
	return shorts(events), nil
}

func (s *EventService) UserEvent(ctx context.Context, userID, eventID int64) (*models.Event, error) {
	s.log.Info("getting user event", zap.Int64("userId", userID), zap.Int64("eventId", eventID))
	e, err := s.initiatorEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	return s.filled(ctx, e)
}

func (s *EventService) UpdateByUser(ctx context.Context, userID, eventID int64, req models.UpdateEventUserRequest) (*models.Event, error) {
	s.log.Info("updating event by initiator", zap.Int64("userId", userID), zap.Int64("eventId", eventID))
	e, err := s.initiatorEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if e.State == models.EventPublished {
		return nil, apperr.Forbidden("Only pending or canceled events can be changed")
	}

	now := s.now()
	if req.EventDate != nil {
		if err := checkEventDate(req.EventDate.Time, now, userEventLeadTime); err != nil {
			return nil, err
		}
	}
	if err := s.apply(ctx, e, req.UpdateEventFields); err != nil {
		return nil, err
	}

	if req.StateAction != nil {
		switch *req.StateAction {
		case models.ActionSendToReview:
			e.State = models.EventPending
		case models.ActionCancelReview:
			e.State = models.EventCanceled
		default:
			return nil, apperr.Validation("Unknown state action: %s", *req.StateAction)
		}
	}

	if err := s.events.Update(ctx, e); err != nil {
		return nil, err
	}
	return s.filled(ctx, e)
}

func (s *EventService) UpdateByAdmin(ctx context.Context, eventID int64, req models.UpdateEventAdminRequest) (*models.Event, error) {
	s.log.Info("updating event by admin", zap.Int64("eventId", eventID))
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if req.EventDate != nil {
		if err := checkEventDate(req.EventDate.Time, now, publishLeadTime); err != nil {
			return nil, err
		}
	}
	if err := s.apply(ctx, e, req.UpdateEventFields); err != nil {
		return nil, err
	}

	if req.StateAction != nil {
		switch *req.StateAction {
		case models.ActionPublishEvent:
			if e.State != models.EventPending {
				return nil, apperr.Forbidden("Cannot publish the event because it's not in the right state: %s", e.State)
			}
			if err := checkEventDate(e.EventDate.Time, now, publishLeadTime); err != nil {
				return nil, err
			}
			e.State = models.EventPublished
			e.PublishedOn = models.DateTimePtr(now)
		case models.ActionRejectEvent:
			if e.State == models.EventPublished {
				return nil, apperr.Forbidden("Cannot reject the event because it's already published")
			}
			e.State = models.EventCanceled
		default:
			return nil, apperr.Validation("Unknown state action: %s", *req.StateAction)
		}
	}

	if err := s.events.Update(ctx, e); err != nil {
		return nil, err
	}
	return s.filled(ctx, e)
}

// AdminSearch lists events of any state.
func (s *EventService) AdminSearch(ctx context.Context, f models.EventFilter) ([]models.Event, error) {
	s.log.Info("admin event search",
		zap.Int64s("users", f.Users), zap.Int64s("categories", f.Categories), zap.Int("from", f.Page.From), zap.Int("size", f.Page.Size))
	if err := checkRange(f.RangeStart, f.RangeEnd); err != nil {
		return nil, err
	}

	events, err := s.events.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.metrics.Fill(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

// PublicSearch lists published events and records the visit.
func (s *EventService) PublicSearch(ctx context.Context, f models.EventFilter, visit Visit) ([]models.EventShort, error) {
	s.log.Info("public event search",
		zap.String("text", f.Text), zap.Int64s("categories", f.Categories), zap.String("sort", f.Sort))
	if err := checkRange(f.RangeStart, f.RangeEnd); err != nil {
		return nil, err
	}

	f.Users = nil
	f.States = []models.EventState{models.EventPublished}
	if f.RangeStart == nil && f.RangeEnd == nil {
		now := s.now()
		f.RangeStart = &now
	}

	s.recordHit(ctx, visit)

	// Availability and views are computed after the query, so paginate in memory then.
	page := f.Page
	inMemory := f.OnlyAvailable || f.Sort == models.SortViews
	if inMemory {
		f.Page = models.Page{}
	}

	events, err := s.events.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.metrics.Fill(ctx, events); err != nil {
		return nil, err
	}

	if f.OnlyAvailable {
		available := events[:0]
		for _, e := range events {
			if e.Available() {
				available = append(available, e)
			}
		}
		events = available
	}
	if f.Sort == models.SortViews {
		sort.SliceStable(events, func(i, j int) bool { return events[i].Views > events[j].Views })
	}
	if inMemory {
		events = models.Slice(events, page)
	}

	return shorts(events), nil
}

// PublicEvent returns a published event and records the visit before counting views.
func (s *EventService) PublicEvent(ctx context.Context, eventID int64, visit Visit) (*models.Event, error) {
	s.log.Info("public event", zap.Int64("eventId", eventID))
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.State != models.EventPublished {
		return nil, apperr.NotFound("Event with id=%d was not found", eventID)
	}

	s.recordHit(ctx, visit)
	return s.filled(ctx, e)
}

func (s *EventService) recordHit(ctx context.Context, visit Visit) {
	s.stats.Hit(ctx, models.EndpointHit{
		App:       s.appName,
		URI:       visit.URI,
		IP:        visit.IP,
		Timestamp: models.FormatDateTime(s.now()),
	})
}

func (s *EventService) initiatorEvent(ctx context.Context, userID, eventID int64) (*models.Event, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.Initiator.ID != userID {
		return nil, apperr.NotFound("Event with id=%d was not found", eventID)
	}
	return e, nil
}

func (s *EventService) apply(ctx context.Context, e *models.Event, f models.UpdateEventFields) error {
	var err error
	if f.Annotation != nil {
		if e.Annotation, err = eventText("annotation", *f.Annotation, annotationLen); err != nil {
			return err
		}
	}
	if f.Category != nil && *f.Category != e.Category.ID {
		c, err := s.categories.GetByID(ctx, *f.Category)
		if err != nil {
			return err
		}
		e.Category = *c
	}
	if f.Description != nil {
		if e.Description, err = eventText("description", *f.Description, descriptionLen); err != nil {
			return err
		}
	}
	if f.EventDate != nil {
		e.EventDate = models.NewDateTime(f.EventDate.Time)
	}
	if f.Location != nil {
		e.Location = *f.Location
	}
	if f.Paid != nil {
		e.Paid = *f.Paid
	}
	if f.ParticipantLimit != nil {
		e.ParticipantLimit = *f.ParticipantLimit
	}
	if f.RequestModeration != nil {
		e.RequestModeration = *f.RequestModeration
	}
	if f.Title != nil {
		if e.Title, err = eventText("title", *f.Title, titleLen); err != nil {
			return err
		}
	}
	return nil
}

type textLen struct{ min, max int }

var (
	annotationLen  = textLen{20, 2000}
	descriptionLen = textLen{20, 7000}
	titleLen       = textLen{3, 120}
)

// eventText trims a text field and checks the trimmed length.
func eventText(field, value string, l textLen) (string, error) {
	value = strings.TrimSpace(value)
	if n := len([]rune(value)); n < l.min || n > l.max {
		return "", apperr.Validation("Field: %s. Error: must be from %d to %d characters, got %d", field, l.min, l.max, n)
	}
	return value, nil
}

func (s *EventService) filled(ctx context.Context, e *models.Event) (*models.Event, error) {
	one := []models.Event{*e}
	if err := s.metrics.Fill(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func checkEventDate(date, now time.Time, lead time.Duration) error {
	if date.Before(now.Add(lead)) {
		return apperr.Validation("Event date must be at least %s after %s, got %s",
			lead, models.FormatDateTime(now), models.FormatDateTime(date))
	}
	return nil
}

func checkRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return apperr.Validation("rangeStart (%s) must not be after rangeEnd (%s)",
			models.FormatDateTime(*start), models.FormatDateTime(*end))
	}
	return nil
}

func shorts(events []models.Event) []models.EventShort {
	out := make([]models.EventShort, len(events))
	for i := range events {
		out[i] = events[i].Short()
	}
	return out
}
