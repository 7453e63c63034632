package services

import (
	"context"
	"errors"
	"maps"
	"sort"
	"strings"
	"time"

	"ewm/api/apperr"
	"ewm/api/models"
)

var errStoreDown = errors.New("store is down")

type fakeHitStore struct {
	hits    []models.Hit
	saveErr error
}

func (f *fakeHitStore) Save(_ context.Context, hit *models.Hit) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.hits = append(f.hits, *hit)
	return nil
}

func (f *fakeHitStore) Stats(_ context.Context, q models.StatsQuery) ([]models.ViewStats, error) {
	type key struct{ app, uri string }
	wanted := make(map[string]bool, len(q.URIs))
	for _, u := range q.URIs {
		wanted[u] = true
	}

	counts := map[key]map[string]int64{}
	var order []key
	for _, h := range f.hits {
		if h.Timestamp.Before(q.Start) || h.Timestamp.After(q.End) {
			continue
		}
		if len(wanted) > 0 && !wanted[h.URI] {
			continue
		}
		k := key{h.App, h.URI}
		if counts[k] == nil {
			counts[k] = map[string]int64{}
			order = append(order, k)
		}
		counts[k][h.IP]++
	}

	out := []models.ViewStats{}
	for _, k := range order {
		var n int64
		for _, c := range counts[k] {
			if q.Unique {
				n++
			} else {
				n += c
			}
		}
		out = append(out, models.ViewStats{App: k.app, URI: k.uri, Hits: n})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Hits > out[j].Hits })
	return out, nil
}

type fakeUsers struct {
	byID   map[int64]models.User
	nextID int64
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{byID: map[int64]models.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
		if u.ID > f.nextID {
			f.nextID = u.ID
		}
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return apperr.Conflict("User with email %s already exists", u.Email)
		}
	}
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("User with id=%d was not found", id)
	}
	return &u, nil
}

func (f *fakeUsers) List(_ context.Context, ids []int64, page models.Page) ([]models.User, error) {
	var out []models.User
	for _, u := range f.byID {
		if len(ids) == 0 || containsID(ids, u.ID) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return models.Slice(out, page), nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return apperr.NotFound("User with id=%d was not found", id)
	}
	delete(f.byID, id)
	return nil
}

type fakeCategories struct {
	byID   map[int64]models.Category
	nextID int64
}

func newFakeCategories(cats ...models.Category) *fakeCategories {
	f := &fakeCategories{byID: map[int64]models.Category{}}
	for _, c := range cats {
		f.byID[c.ID] = c
		if c.ID > f.nextID {
			f.nextID = c.ID
		}
	}
	return f
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) error {
	f.nextID++
	c.ID = f.nextID
	f.byID[c.ID] = *c
	return nil
}

func (f *fakeCategories) Update(_ context.Context, c *models.Category) error {
	f.byID[c.ID] = *c
	return nil
}

func (f *fakeCategories) GetByID(_ context.Context, id int64) (*models.Category, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("Category with id=%d was not found", id)
	}
	return &c, nil
}

func (f *fakeCategories) List(_ context.Context, page models.Page) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return models.Slice(out, page), nil
}

func (f *fakeCategories) Delete(_ context.Context, id int64) error {
	delete(f.byID, id)
	return nil
}

type fakeEvents struct {
	byID   map[int64]models.Event
	nextID int64
}

func newFakeEvents(events ...models.Event) *fakeEvents {
	f := &fakeEvents{byID: map[int64]models.Event{}}
	for _, e := range events {
		f.byID[e.ID] = e
		if e.ID > f.nextID {
			f.nextID = e.ID
		}
	}
	return f
}

func (f *fakeEvents) Create(_ context.Context, e *models.Event) error {
	f.nextID++
	e.ID = f.nextID
	f.byID[e.ID] = *e
	return nil
}

func (f *fakeEvents) Update(_ context.Context, e *models.Event) error {
	if _, ok := f.byID[e.ID]; !ok {
		return apperr.NotFound("Event with id=%d was not found", e.ID)
	}
	f.byID[e.ID] = *e
	return nil
}

func (f *fakeEvents) GetByID(_ context.Context, id int64) (*models.Event, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("Event with id=%d was not found", id)
	}
	return &e, nil
}

func (f *fakeEvents) GetByIDs(_ context.Context, ids []int64) ([]models.Event, error) {
	out := []models.Event{}
	for _, e := range f.byID {
		if containsID(ids, e.ID) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEvents) ListByInitiator(_ context.Context, userID int64, page models.Page) ([]models.Event, error) {
	out := []models.Event{}
	for _, e := range f.byID {
		if e.Initiator.ID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return models.Slice(out, page), nil
}

func (f *fakeEvents) Search(_ context.Context, flt models.EventFilter) ([]models.Event, error) {
	out := []models.Event{}
	for _, e := range f.byID {
		if len(flt.Users) > 0 && !containsID(flt.Users, e.Initiator.ID) {
			continue
		}
		if len(flt.Categories) > 0 && !containsID(flt.Categories, e.Category.ID) {
			continue
		}
		if len(flt.States) > 0 {
			match := false
			for _, st := range flt.States {
				match = match || st == e.State
			}
			if !match {
				continue
			}
		}
		if flt.Text != "" {
			text := strings.ToLower(flt.Text)
			if !strings.Contains(strings.ToLower(e.Annotation), text) && !strings.Contains(strings.ToLower(e.Description), text) {
				continue
			}
		}
		if flt.Paid != nil && e.Paid != *flt.Paid {
			continue
		}
		if flt.RangeStart != nil && e.EventDate.Before(*flt.RangeStart) {
			continue
		}
		if flt.RangeEnd != nil && e.EventDate.After(*flt.RangeEnd) {
			continue
		}
		out = append(out, e)
	}
	if flt.Sort == models.SortEventDate {
		sort.Slice(out, func(i, j int) bool { return out[i].EventDate.Before(out[j].EventDate.Time) })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}
	if flt.Page.Size > 0 {
		out = models.Slice(out, flt.Page)
	}
	return out, nil
}

func (f *fakeEvents) ExistsByCategory(_ context.Context, categoryID int64) (bool, error) {
	for _, e := range f.byID {
		if e.Category.ID == categoryID {
			return true, nil
		}
	}
	return false, nil
}

type fakeRequests struct {
	byID   map[int64]models.ParticipationRequest
	nextID int64
	// failStatus makes every write of that status fail.
	failStatus models.RequestStatus
}

func newFakeRequests(rs ...models.ParticipationRequest) *fakeRequests {
	f := &fakeRequests{byID: map[int64]models.ParticipationRequest{}}
	for _, r := range rs {
		f.byID[r.ID] = r
		if r.ID > f.nextID {
			f.nextID = r.ID
		}
	}
	return f
}

func (f *fakeRequests) Create(_ context.Context, r *models.ParticipationRequest) error {
	f.nextID++
	r.ID = f.nextID
	f.byID[r.ID] = *r
	return nil
}

func (f *fakeRequests) GetByID(_ context.Context, id int64) (*models.ParticipationRequest, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("Request with id=%d was not found", id)
	}
	return &r, nil
}

func (f *fakeRequests) GetByIDs(_ context.Context, ids []int64) ([]models.ParticipationRequest, error) {
	return f.filter(func(r models.ParticipationRequest) bool { return containsID(ids, r.ID) }), nil
}

func (f *fakeRequests) ListByRequester(_ context.Context, userID int64) ([]models.ParticipationRequest, error) {
	return f.filter(func(r models.ParticipationRequest) bool { return r.Requester == userID }), nil
}

func (f *fakeRequests) ListByEvent(_ context.Context, eventID int64) ([]models.ParticipationRequest, error) {
	return f.filter(func(r models.ParticipationRequest) bool { return r.Event == eventID }), nil
}

func (f *fakeRequests) Exists(_ context.Context, eventID, requesterID int64) (bool, error) {
	for _, r := range f.byID {
		if r.Event == eventID && r.Requester == requesterID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRequests) UpdateStatus(_ context.Context, ids []int64, status models.RequestStatus) error {
	if len(ids) > 0 && f.failStatus != "" && status == f.failStatus {
		return errStoreDown
	}
	for _, id := range ids {
		r := f.byID[id]
		r.Status = status
		f.byID[id] = r
	}
	return nil
}

func (f *fakeRequests) CountConfirmed(_ context.Context, eventIDs []int64) (map[int64]int64, error) {
	out := map[int64]int64{}
	for _, r := range f.byID {
		if r.Status == models.RequestConfirmed && containsID(eventIDs, r.Event) {
			out[r.Event]++
		}
	}
	return out, nil
}

func (f *fakeRequests) CreateAdmitted(ctx context.Context, r *models.ParticipationRequest, admit models.Admission) error {
	counts, _ := f.CountConfirmed(ctx, []int64{r.Event})
	if err := admit(counts[r.Event]); err != nil {
		return err
	}
	return f.Create(ctx, r)
}

// ApplyStatusChange restores the previous state when any write fails.
func (f *fakeRequests) ApplyStatusChange(ctx context.Context, eventID int64, ids []int64, plan models.StatusPlanner) error {
	snapshot := maps.Clone(f.byID)
	counts, _ := f.CountConfirmed(ctx, []int64{eventID})
	found, _ := f.GetByIDs(ctx, ids)
	p, err := plan(found, counts[eventID])
	if err != nil {
		return err
	}
	if err := f.write(ctx, eventID, p); err != nil {
		f.byID = snapshot
		return err
	}
	return nil
}

func (f *fakeRequests) write(ctx context.Context, eventID int64, p models.StatusPlan) error {
	if err := f.UpdateStatus(ctx, p.Confirm, models.RequestConfirmed); err != nil {
		return err
	}
	if err := f.UpdateStatus(ctx, p.Reject, models.RequestRejected); err != nil {
		return err
	}
	if !p.RejectPending {
		return nil
	}
	var pending []int64
	for _, r := range f.byID {
		if r.Event == eventID && r.Status == models.RequestPending {
			pending = append(pending, r.ID)
		}
	}
	return f.UpdateStatus(ctx, pending, models.RequestRejected)
}

func (f *fakeRequests) filter(keep func(models.ParticipationRequest) bool) []models.ParticipationRequest {
	out := []models.ParticipationRequest{}
	for _, r := range f.byID {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeComments struct {
	byID   map[int64]models.Comment
	nextID int64
}

func newFakeComments(cs ...models.Comment) *fakeComments {
	f := &fakeComments{byID: map[int64]models.Comment{}}
	for _, c := range cs {
		f.byID[c.ID] = c
		if c.ID > f.nextID {
			f.nextID = c.ID
		}
	}
	return f
}

func (f *fakeComments) Create(_ context.Context, c *models.Comment) error {
	f.nextID++
	c.ID = f.nextID
	f.byID[c.ID] = *c
	return nil
}

func (f *fakeComments) Update(_ context.Context, c *models.Comment) error {
	f.byID[c.ID] = *c
	return nil
}

func (f *fakeComments) GetByID(_ context.Context, id int64) (*models.Comment, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("Comment with id=%d was not found", id)
	}
	return &c, nil
}

func (f *fakeComments) ListByEvent(_ context.Context, eventID int64, page models.Page) ([]models.Comment, error) {
	out := []models.Comment{}
	for _, c := range f.byID {
		if c.Event.ID == eventID && c.State == models.CommentConfirmed {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return models.Slice(out, page), nil
}

func (f *fakeComments) Delete(_ context.Context, id int64) error {
	delete(f.byID, id)
	return nil
}

type fakeCompilations struct {
	byID   map[int64]models.Compilation
	nextID int64
}

func newFakeCompilations() *fakeCompilations {
	return &fakeCompilations{byID: map[int64]models.Compilation{}}
}

func (f *fakeCompilations) Create(_ context.Context, c *models.Compilation) error {
	f.nextID++
	c.ID = f.nextID
	f.byID[c.ID] = *c
	return nil
}

func (f *fakeCompilations) Update(_ context.Context, c *models.Compilation) error {
	f.byID[c.ID] = *c
	return nil
}

func (f *fakeCompilations) GetByID(_ context.Context, id int64) (*models.Compilation, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("Compilation with id=%d was not found", id)
	}
	return &c, nil
}

func (f *fakeCompilations) List(_ context.Context, pinned *bool, page models.Page) ([]models.Compilation, error) {
	out := []models.Compilation{}
	for _, c := range f.byID {
		if pinned == nil || c.Pinned == *pinned {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return models.Slice(out, page), nil
}

func (f *fakeCompilations) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return apperr.NotFound("Compilation with id=%d was not found", id)
	}
	delete(f.byID, id)
	return nil
}

// fakeStats records hits and answers Stats from a fixed table.
type fakeStats struct {
	hits     []models.EndpointHit
	views    map[string]int64
	statsErr error
	queries  int
}

func (f *fakeStats) Hit(_ context.Context, hit models.EndpointHit) {
	f.hits = append(f.hits, hit)
}

func (f *fakeStats) Stats(_ context.Context, _, _ time.Time, uris []string, _ bool) ([]models.ViewStats, error) {
	f.queries++
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	out := []models.ViewStats{}
	for _, u := range uris {
		if n, ok := f.views[u]; ok {
			out = append(out, models.ViewStats{App: "ewm-main-service", URI: u, Hits: n})
		}
	}
	return out, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
