package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ewm/api/models"
	"ewm/api/services"
)

type CategoryHandlers struct {
	Service *services.CategoryService
	log     *zap.Logger
}

func NewCategoryHandlers(s *services.CategoryService, log *zap.Logger) *CategoryHandlers {
	return &CategoryHandlers{Service: s, log: log}
}

func (h *CategoryHandlers) Create(c *gin.Context) {
	var req models.NewCategoryRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	cat, err := h.Service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandlers) Update(c *gin.Context) {
	id, err := pathID(c, "catId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req models.NewCategoryRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	cat, err := h.Service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// Delete answers 403 while any event still references the category.
func (h *CategoryHandlers) Delete(c *gin.Context) {
	id, err := pathID(c, "catId")
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

func (h *CategoryHandlers) List(c *gin.Context) {
	p, err := page(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	cats, err := h.Service.List(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (h *CategoryHandlers) Get(c *gin.Context) {
	id, err := pathID(c, "catId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	cat, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}
