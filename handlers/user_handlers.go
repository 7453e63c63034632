package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ewm/api/models"
	"ewm/api/services"
)

type UserHandlers struct {
	Service *services.UserService
	log     *zap.Logger
}

func NewUserHandlers(s *services.UserService, log *zap.Logger) *UserHandlers {
	return &UserHandlers{Service: s, log: log}
}

func (h *UserHandlers) Create(c *gin.Context) {
	var req models.NewUserRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	user, err := h.Service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandlers) List(c *gin.Context) {
	ids, err := queryIDs(c, "ids")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	p, err := page(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	users, err := h.Service.List(c.Request.Context(), ids, p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandlers) Delete(c *gin.Context) {
	id, err := pathID(c, "userId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.Service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
