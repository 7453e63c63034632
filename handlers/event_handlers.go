package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ewm/api/apperr"
	"ewm/api/models"
	"ewm/api/services"
	"ewm/api/utils"
)

type EventHandlers struct {
	Service *services.EventService
	log     *zap.Logger
}

func NewEventHandlers(s *services.EventService, log *zap.Logger) *EventHandlers {
	return &EventHandlers{Service: s, log: log}
}

// Initiator endpoints under /users/:userId/events.

func (h *EventHandlers) Create(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req models.NewEventRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	e, err := h.Service.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *EventHandlers) UserEvents(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	p, err := page(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	events, err := h.Service.UserEvents(c.Request.Context(), userID, p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandlers) UserEvent(c *gin.Context) {
	userID, eventID, err := userAndEvent(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	e, err := h.Service.UserEvent(c.Request.Context(), userID, eventID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *EventHandlers) UpdateByUser(c *gin.Context) {
	userID, eventID, err := userAndEvent(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req models.UpdateEventUserRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	e, err := h.Service.UpdateByUser(c.Request.Context(), userID, eventID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// Admin endpoints under /admin/events.

func (h *EventHandlers) AdminSearch(c *gin.Context) {
	f, err := eventFilter(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if f.Users, err = queryIDs(c, "users"); err != nil {
		respondError(c, h.log, err)
		return
	}
	for _, raw := range utils.SplitList(c.QueryArray("states")) {
		st := models.EventState(strings.ToUpper(raw))
		switch st {
		case models.EventPending, models.EventPublished, models.EventCanceled:
			f.States = append(f.States, st)
		default:
			respondError(c, h.log, apperr.Validation("Unknown event state: %s", raw))
			return
		}
	}

	events, err := h.Service.AdminSearch(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandlers) UpdateByAdmin(c *gin.Context) {
	eventID, err := pathID(c, "eventId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req models.UpdateEventAdminRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	e, err := h.Service.UpdateByAdmin(c.Request.Context(), eventID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// Public endpoints. Both record a hit for the requested path.

func (h *EventHandlers) PublicSearch(c *gin.Context) {
	f, err := eventFilter(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	f.Text = c.Query("text")
	if f.Paid, err = queryBool(c, "paid"); err != nil {
		respondError(c, h.log, err)
		return
	}
	onlyAvailable, err := queryBool(c, "onlyAvailable")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	f.OnlyAvailable = onlyAvailable != nil && *onlyAvailable

	switch sort := strings.ToUpper(c.Query("sort")); sort {
	case "", models.SortEventDate, models.SortViews:
		f.Sort = sort
	default:
		respondError(c, h.log, apperr.Validation("Unknown sort: %s", c.Query("sort")))
		return
	}

	events, err := h.Service.PublicSearch(c.Request.Context(), f, visit(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandlers) PublicEvent(c *gin.Context) {
	eventID, err := pathID(c, "eventId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	e, err := h.Service.PublicEvent(c.Request.Context(), eventID, visit(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// eventFilter reads the parameters shared by the admin and public searches.
func eventFilter(c *gin.Context) (models.EventFilter, error) {
	var (
		f   models.EventFilter
		err error
	)
	if f.Categories, err = queryIDs(c, "categories"); err != nil {
		return f, err
	}
	if f.RangeStart, err = queryTime(c, "rangeStart"); err != nil {
		return f, err
	}
	if f.RangeEnd, err = queryTime(c, "rangeEnd"); err != nil {
		return f, err
	}
	if f.Page, err = page(c); err != nil {
		return f, err
	}
	return f, nil
}

func userAndEvent(c *gin.Context) (int64, int64, error) {
	userID, err := pathID(c, "userId")
	if err != nil {
		return 0, 0, err
	}
	eventID, err := pathID(c, "eventId")
	if err != nil {
		return 0, 0, err
	}
	return userID, eventID, nil
}

func visit(c *gin.Context) services.Visit {
	return services.Visit{IP: c.ClientIP(), URI: c.Request.URL.Path}
}
