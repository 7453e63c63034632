package models

import "time"

type EventState string

const (
	EventPending   EventState = "PENDING"
	EventPublished EventState = "PUBLISHED"
	EventCanceled  EventState = "CANCELED"
)

// State actions accepted by the event update endpoints.
const (
	ActionSendToReview = "SEND_TO_REVIEW"
	ActionCancelReview = "CANCEL_REVIEW"
	ActionPublishEvent = "PUBLISH_EVENT"
	ActionRejectEvent  = "REJECT_EVENT"
)

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Event is stored with its category and initiator joined in. ConfirmedRequests
// and Views are computed per response.
type Event struct {
	ID                int64      `json:"id"`
	Annotation        string     `json:"annotation"`
	Category          Category   `json:"category"`
	ConfirmedRequests int64      `json:"confirmedRequests"`
	CreatedOn         DateTime   `json:"createdOn"`
	Description       string     `json:"description"`
	EventDate         DateTime   `json:"eventDate"`
	Initiator         UserShort  `json:"initiator"`
	Location          Location   `json:"location"`
	Paid              bool       `json:"paid"`
	ParticipantLimit  int        `json:"participantLimit"`
	PublishedOn       *DateTime  `json:"publishedOn"`
	RequestModeration bool       `json:"requestModeration"`
	State             EventState `json:"state"`
	Title             string     `json:"title"`
	Views             int64      `json:"views"`
}

type EventShort struct {
	ID                int64     `json:"id"`
	Annotation        string    `json:"annotation"`
	Category          Category  `json:"category"`
	ConfirmedRequests int64     `json:"confirmedRequests"`
	EventDate         DateTime  `json:"eventDate"`
	Initiator         UserShort `json:"initiator"`
	Paid              bool      `json:"paid"`
	Title             string    `json:"title"`
	Views             int64     `json:"views"`
}

func (e *Event) Short() EventShort {
	return EventShort{
		ID:                e.ID,
		Annotation:        e.Annotation,
		Category:          e.Category,
		ConfirmedRequests: e.ConfirmedRequests,
		EventDate:         e.EventDate,
		Initiator:         e.Initiator,
		Paid:              e.Paid,
		Title:             e.Title,
		Views:             e.Views,
	}
}

// Available reports whether the event still accepts participants.
func (e *Event) Available() bool {
	return e.ParticipantLimit == 0 || e.ConfirmedRequests < int64(e.ParticipantLimit)
}

type NewEventRequest struct {
	Annotation        string    `json:"annotation" binding:"required,min=20,max=2000"`
	Category          int64     `json:"category" binding:"required,gt=0"`
	Description       string    `json:"description" binding:"required,min=20,max=7000"`
	EventDate         *DateTime `json:"eventDate" binding:"required"`
	Location          *Location `json:"location" binding:"required"`
	Paid              *bool     `json:"paid"`
	ParticipantLimit  *int      `json:"participantLimit" binding:"omitempty,gte=0"`
	RequestModeration *bool     `json:"requestModeration"`
	Title             string    `json:"title" binding:"required,min=3,max=120"`
}

// UpdateEventFields holds the fields both the initiator and an admin may patch.
type UpdateEventFields struct {
	Annotation        *string   `json:"annotation" binding:"omitempty,min=20,max=2000"`
	Category          *int64    `json:"category" binding:"omitempty,gt=0"`
	Description       *string   `json:"description" binding:"omitempty,min=20,max=7000"`
	EventDate         *DateTime `json:"eventDate"`
	Location          *Location `json:"location"`
	Paid              *bool     `json:"paid"`
	ParticipantLimit  *int      `json:"participantLimit" binding:"omitempty,gte=0"`
	RequestModeration *bool     `json:"requestModeration"`
	Title             *string   `json:"title" binding:"omitempty,min=3,max=120"`
}

type UpdateEventUserRequest struct {
	UpdateEventFields
	StateAction *string `json:"stateAction" binding:"omitempty,oneof=SEND_TO_REVIEW CANCEL_REVIEW"`
}

type UpdateEventAdminRequest struct {
	UpdateEventFields
	StateAction *string `json:"stateAction" binding:"omitempty,oneof=PUBLISH_EVENT REJECT_EVENT"`
}

// Sort orders of the public event search.
const (
	SortEventDate = "EVENT_DATE"
	SortViews     = "VIEWS"
)

// EventFilter drives both the admin listing and the public search. Zero
// values mean "no restriction".
type EventFilter struct {
	Users         []int64
	States        []EventState
	Categories    []int64
	Text          string
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          string
	Page          Page
}
