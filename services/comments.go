package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"ewm/api/apperr"
	"ewm/api/models"
)

// CommentService manages comments on published events. Comments start
// PENDING; once an admin confirms one its author can no longer change it.
type CommentService struct {
	comments CommentRepository
	events   EventRepository
	users    UserRepository
	log      *zap.Logger
	now      func() time.Time
}

func NewCommentService(comments CommentRepository, events EventRepository, users UserRepository, log *zap.Logger) *CommentService {
	return &CommentService{comments: comments, events: events, users: users, log: log, now: nowUTC}
}

func (s *CommentService) Create(ctx context.Context, userID, eventID int64, req models.NewCommentRequest) (*models.Comment, error) {
	s.log.Info("creating comment", zap.Int64("userId", userID), zap.Int64("eventId", eventID))

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	e, err := s.publishedEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	text, err := commentText(req.Text)
	if err != nil {
		return nil, err
	}

	c := &models.Comment{
		Event:     models.CommentEvent{ID: e.ID, Title: e.Title},
		Author:    user.Short(),
		Text:      text,
		State:     models.CommentPending,
		CreatedOn: models.NewDateTime(s.now()),
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentService) EventComments(ctx context.Context, eventID int64, page models.Page) ([]models.Comment, error) {
	s.log.Info("listing event comments", zap.Int64("eventId", eventID), zap.Int("from", page.From), zap.Int("size", page.Size))
	if _, err := s.publishedEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.comments.ListByEvent(ctx, eventID, page)
}

func (s *CommentService) Get(ctx context.Context, commentID int64) (*models.Comment, error) {
	s.log.Info("getting comment", zap.Int64("commentId", commentID))
	return s.comments.GetByID(ctx, commentID)
}

// Update replaces the text and sends the comment back to moderation.
func (s *CommentService) Update(ctx context.Context, userID, commentID int64, req models.NewCommentRequest) (*models.Comment, error) {
	s.log.Info("updating comment", zap.Int64("userId", userID), zap.Int64("commentId", commentID))

	c, err := s.editable(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	text, err := commentText(req.Text)
	if err != nil {
		return nil, err
	}

	c.Text = text
	c.UpdatedOn = models.DateTimePtr(s.now())
	c.State = models.CommentPending

	if err := s.comments.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, userID, commentID int64) error {
	s.log.Info("deleting comment", zap.Int64("userId", userID), zap.Int64("commentId", commentID))
	if _, err := s.editable(ctx, userID, commentID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, commentID)
}

// Moderate confirms or rejects a comment.
func (s *CommentService) Moderate(ctx context.Context, commentID int64, confirm bool) (*models.Comment, error) {
	s.log.Info("moderating comment", zap.Int64("commentId", commentID), zap.Bool("confirm", confirm))

	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if confirm {
		c.State = models.CommentConfirmed
	} else {
		c.State = models.CommentRejected
	}
	c.PublishedOn = models.DateTimePtr(s.now())

	if err := s.comments.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CommentService) editable(ctx context.Context, userID, commentID int64) (*models.Comment, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c.Author.ID != userID {
		return nil, apperr.Forbidden("Cannot change a comment of another user")
	}
	if c.State == models.CommentConfirmed {
		return nil, apperr.Forbidden("Cannot change a confirmed comment")
	}
	return c, nil
}

func (s *CommentService) publishedEvent(ctx context.Context, eventID int64) (*models.Event, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.State != models.EventPublished {
		return nil, apperr.NotFound("Event with id=%d was not found", eventID)
	}
	return e, nil
}

func commentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" || len([]rune(text)) > 2000 {
		return "", apperr.Validation("Comment text must be from 1 to 2000 characters")
	}
	return text, nil
}
