package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ewm/api/apperr"
	"ewm/api/models"
)

// RequestService manages participation requests.
type RequestService struct {
	requests RequestRepository
	events   EventRepository
	users    UserRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewRequestService(requests RequestRepository, events EventRepository, users UserRepository, log *zap.Logger) *RequestService {
	return &RequestService{requests: requests, events: events, users: users, log: log, now: nowUTC}
}

func (s *RequestService) Create(ctx context.Context, userID, eventID int64) (*models.ParticipationRequest, error) {
	s.log.Info("creating participation request", zap.Int64("userId", userID), zap.Int64("eventId", eventID))

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if e.Initiator.ID == userID {
		return nil, apperr.Forbidden("The initiator cannot request participation in their own event")
	}
	if e.State != models.EventPublished {
		return nil, apperr.Forbidden("Cannot participate in an unpublished event")
	}

	exists, err := s.requests.Exists(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Forbidden("Participation request of user %d for event %d already exists", userID, eventID)
	}

	r := &models.ParticipationRequest{
		Created:   models.NewDateTime(s.now()),
		Event:     eventID,
		Requester: userID,
		Status:    models.RequestPending,
	}
	if !e.RequestModeration || e.ParticipantLimit == 0 {
		r.Status = models.RequestConfirmed
	}

	limit := int64(e.ParticipantLimit)
	admit := func(confirmed int64) error {
		if limit > 0 && confirmed >= limit {
			return apperr.Forbidden("The participant limit has been reached")
		}
		return nil
	}
	if err := s.requests.CreateAdmitted(ctx, r, admit); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RequestService) Cancel(ctx context.Context, userID, requestID int64) (*models.ParticipationRequest, error) {
	s.log.Info("canceling participation request", zap.Int64("userId", userID), zap.Int64("requestId", requestID))

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	r, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if r.Requester != userID {
		return nil, apperr.NotFound("Request with id=%d was not found", requestID)
	}

	if err := s.requests.UpdateStatus(ctx, []int64{r.ID}, models.RequestCanceled); err != nil {
		return nil, err
	}
	r.Status = models.RequestCanceled
	return r, nil
}

func (s *RequestService) UserRequests(ctx context.Context, userID int64) ([]models.ParticipationRequest, error) {
	s.log.Info("listing user participation requests", zap.Int64("userId", userID))
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.requests.ListByRequester(ctx, userID)
}

// EventRequests lists requests for an event owned by userID.
func (s *RequestService) EventRequests(ctx context.Context, userID, eventID int64) ([]models.ParticipationRequest, error) {
	s.log.Info("listing event participation requests", zap.Int64("userId", userID), zap.Int64("eventId", eventID))
	if _, err := s.ownedEvent(ctx, userID, eventID); err != nil {
		return nil, err
	}
	return s.requests.ListByEvent(ctx, eventID)
}

// ChangeStatus confirms or rejects pending requests. Once the participant
// limit is reached every remaining pending request of the event is rejected.
// The whole change is written atomically.
func (s *RequestService) ChangeStatus(ctx context.Context, userID, eventID int64, req models.EventRequestStatusUpdateRequest) (*models.EventRequestStatusUpdateResult, error) {
	s.log.Info("changing participation request status",
		zap.Int64("userId", userID), zap.Int64("eventId", eventID), zap.Int64s("requestIds", req.RequestIDs), zap.String("status", req.Status))

	e, err := s.ownedEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	ch := &statusChange{
		eventID: eventID,
		ids:     req.RequestIDs,
		status:  models.RequestStatus(req.Status),
		limit:   int64(e.ParticipantLimit),
	}
	if err := s.requests.ApplyStatusChange(ctx, eventID, req.RequestIDs, ch.plan); err != nil {
		return nil, err
	}
	if ch.rejectedPending {
		s.log.Info("participant limit reached, rejected remaining pending requests", zap.Int64("eventId", eventID))
	}
	return &ch.result, nil
}

// statusChange plans one ChangeStatus call and records its outcome.
type statusChange struct {
	eventID int64
	ids     []int64
	status  models.RequestStatus
	limit   int64

	result          models.EventRequestStatusUpdateResult
	rejectedPending bool
}

func (ch *statusChange) plan(found []models.ParticipationRequest, confirmed int64) (models.StatusPlan, error) {
	ch.result = models.EventRequestStatusUpdateResult{
		ConfirmedRequests: []models.ParticipationRequest{},
		RejectedRequests:  []models.ParticipationRequest{},
	}
	byID := make(map[int64]models.ParticipationRequest, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}

	var pending []models.ParticipationRequest
	seen := make(map[int64]bool, len(ch.ids))
	for _, id := range ch.ids {
		r, ok := byID[id]
		if !ok || r.Event != ch.eventID {
			return models.StatusPlan{}, apperr.NotFound("Request with id=%d was not found", id)
		}
		if r.Status != models.RequestPending {
			return models.StatusPlan{}, apperr.Forbidden("Request must have status PENDING")
		}
		if !seen[id] {
			seen[id] = true
			pending = append(pending, r)
		}
	}

	var p models.StatusPlan
	if ch.status == models.RequestRejected {
		for _, r := range pending {
			p.Reject = append(p.Reject, r.ID)
			r.Status = models.RequestRejected
			ch.result.RejectedRequests = append(ch.result.RejectedRequests, r)
		}
		return p, nil
	}

	if ch.limit > 0 && confirmed >= ch.limit {
		return models.StatusPlan{}, apperr.Forbidden("The participant limit has been reached")
	}
	for _, r := range pending {
		if ch.limit == 0 || confirmed < ch.limit {
			confirmed++
			p.Confirm = append(p.Confirm, r.ID)
			r.Status = models.RequestConfirmed
			ch.result.ConfirmedRequests = append(ch.result.ConfirmedRequests, r)
			continue
		}
		p.Reject = append(p.Reject, r.ID)
		r.Status = models.RequestRejected
		ch.result.RejectedRequests = append(ch.result.RejectedRequests, r)
	}
	p.RejectPending = ch.limit > 0 && confirmed >= ch.limit
	ch.rejectedPending = p.RejectPending
	return p, nil
}

func (s *RequestService) ownedEvent(ctx context.Context, userID, eventID int64) (*models.Event, error) {
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
