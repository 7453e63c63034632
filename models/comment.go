package models

type CommentState string

const (
	CommentPending   CommentState = "PENDING"
	CommentConfirmed CommentState = "CONFIRMED"
	CommentRejected  CommentState = "REJECTED"
)

type CommentEvent struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type Comment struct {
	ID          int64        `json:"id"`
	Event       CommentEvent `json:"event"`
	Author      UserShort    `json:"author"`
	Text        string       `json:"text"`
	State       CommentState `json:"state"`
	CreatedOn   DateTime     `json:"createdOn"`
	UpdatedOn   *DateTime    `json:"updatedOn"`
	PublishedOn *DateTime    `json:"publishedOn"`
}

type NewCommentRequest struct {
	Text string `json:"text" binding:"required,min=1,max=2000"`
}
