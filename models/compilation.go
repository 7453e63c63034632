package models

// Compilation is a curated, admin-managed list of events.
type Compilation struct {
	ID       int64        `json:"id"`
	Events   []EventShort `json:"events"`
	EventIDs []int64      `json:"-"`
	Pinned   bool         `json:"pinned"`
	Title    string       `json:"title"`
}

type NewCompilationRequest struct {
	Events []int64 `json:"events"`
	Pinned *bool   `json:"pinned"`
	Title  string  `json:"title" binding:"required,min=1,max=50"`
}

// UpdateCompilationRequest leaves nil fields untouched; an empty Events slice clears the list.
type UpdateCompilationRequest struct {
	Events []int64 `json:"events"`
	Pinned *bool   `json:"pinned"`
	Title  *string `json:"title"`
}
