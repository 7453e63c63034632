package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ewm/api/models"
	"ewm/api/services"
)

type RequestHandlers struct {
	Service *services.RequestService
	log     *zap.Logger
}

func NewRequestHandlers(s *services.RequestService, log *zap.Logger) *RequestHandlers {
	return &RequestHandlers{Service: s, log: log}
}

// Create handles POST /users/:userId/requests?eventId=.
func (h *RequestHandlers) Create(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	eventID, err := queryID(c, "eventId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	r, err := h.Service.Create(c.Request.Context(), userID, eventID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *RequestHandlers) Cancel(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	requestID, err := pathID(c, "requestId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	r, err := h.Service.Cancel(c.Request.Context(), userID, requestID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RequestHandlers) UserRequests(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	rs, err := h.Service.UserRequests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rs)
}

func (h *RequestHandlers) EventRequests(c *gin.Context) {
	userID, eventID, err := userAndEvent(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	rs, err := h.Service.EventRequests(c.Request.Context(), userID, eventID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rs)
}

// ChangeStatus confirms or rejects pending requests of an event.
func (h *RequestHandlers) ChangeStatus(c *gin.Context) {
	userID, eventID, err := userAndEvent(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req models.EventRequestStatusUpdateRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	res, err := h.Service.ChangeStatus(c.Request.Context(), userID, eventID, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
