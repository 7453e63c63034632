// Package services holds the domain logic of both services. Each service
// depends only on the storage interfaces declared here; lookups by id return
// an apperr NotFound error when the record is missing.
package services

import (
	"context"
	"time"

	"ewm/api/models"
)

// HitStore is the durable store of the stats service.
type HitStore interface {
	Save(ctx context.Context, hit *models.Hit) error
	Stats(ctx context.Context, q models.StatsQuery) ([]models.ViewStats, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, ids []int64, page models.Page) ([]models.User, error)
	Delete(ctx context.Context, id int64) error
}

type CategoryRepository interface {
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	List(ctx context.Context, page models.Page) ([]models.Category, error)
	Delete(ctx context.Context, id int64) error
}

type EventRepository interface {
	Create(ctx context.Context, e *models.Event) error
	Update(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Event, error)
	ListByInitiator(ctx context.Context, userID int64, page models.Page) ([]models.Event, error)
	// Search applies every filter field except OnlyAvailable; a zero page size means no limit.
	Search(ctx context.Context, f models.EventFilter) ([]models.Event, error)
	ExistsByCategory(ctx context.Context, categoryID int64) (bool, error)
}

type RequestRepository interface {
	Create(ctx context.Context, r *models.ParticipationRequest) error
	GetByID(ctx context.Context, id int64) (*models.ParticipationRequest, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.ParticipationRequest, error)
	ListByRequester(ctx context.Context, userID int64) ([]models.ParticipationRequest, error)
	ListByEvent(ctx context.Context, eventID int64) ([]models.ParticipationRequest, error)
	Exists(ctx context.Context, eventID, requesterID int64) (bool, error)
	UpdateStatus(ctx context.Context, ids []int64, status models.RequestStatus) error
	CountConfirmed(ctx context.Context, eventIDs []int64) (map[int64]int64, error)
	// CreateAdmitted inserts r while holding the event's lock, after admit
	// accepts the confirmed count read under that lock.
	CreateAdmitted(ctx context.Context, r *models.ParticipationRequest, admit models.Admission) error
	// ApplyStatusChange loads ids, plans and writes the change in one
	// transaction under the event's lock. Nothing is written on error.
	ApplyStatusChange(ctx context.Context, eventID int64, ids []int64, plan models.StatusPlanner) error
}

type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) error
	Update(ctx context.Context, c *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	ListByEvent(ctx context.Context, eventID int64, page models.Page) ([]models.Comment, error)
	Delete(ctx context.Context, id int64) error
}

type CompilationRepository interface {
	Create(ctx context.Context, c *models.Compilation) error
	Update(ctx context.Context, c *models.Compilation) error
	GetByID(ctx context.Context, id int64) (*models.Compilation, error)
	List(ctx context.Context, pinned *bool, page models.Page) ([]models.Compilation, error)
	Delete(ctx context.Context, id int64) error
}

// StatsClient is the main service's view of the stats service. Hit never
// fails from the caller's point of view.
type StatsClient interface {
	Hit(ctx context.Context, hit models.EndpointHit)
	Stats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]models.ViewStats, error)
}
