package models

type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

// ParticipationRequest is a user's request to attend an event.
type ParticipationRequest struct {
	ID        int64         `json:"id"`
	Created   DateTime      `json:"created"`
	Event     int64         `json:"event"`
	Requester int64         `json:"requester"`
	Status    RequestStatus `json:"status"`
}

type EventRequestStatusUpdateRequest struct {
	RequestIDs []int64 `json:"requestIds" binding:"required"`
	Status     string  `json:"status" binding:"required,oneof=CONFIRMED REJECTED"`
}

type EventRequestStatusUpdateResult struct {
	ConfirmedRequests []ParticipationRequest `json:"confirmedRequests"`
	RejectedRequests  []ParticipationRequest `json:"rejectedRequests"`
}

// StatusPlan names the requests to move out of PENDING in one status change.
// RejectPending rejects every other pending request of the event as well.
type StatusPlan struct {
	Confirm       []int64
	Reject        []int64
	RejectPending bool
}

// StatusPlanner decides a StatusPlan from the requests being changed and the
// event's current confirmed count. Returning an error aborts the change.
type StatusPlanner func(requests []ParticipationRequest, confirmed int64) (StatusPlan, error)

// Admission checks whether one more request fits given the confirmed count.
type Admission func(confirmed int64) error
