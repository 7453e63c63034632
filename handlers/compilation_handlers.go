package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ewm/api/models"
	"ewm/api/services"
)

type CompilationHandlers struct {
	Service *services.CompilationService
	log     *zap.Logger
}

func NewCompilationHandlers(s *services.CompilationService, log *zap.Logger) *CompilationHandlers {
	return &CompilationHandlers{Service: s, log: log}
}

func (h *CompilationHandlers) Create(c *gin.Context) {
	var req models.NewCompilationRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	comp, err := h.Service.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, comp)
}

func (h *CompilationHandlers) Update(c *gin.Context) {
	id, err := pathID(c, "compId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req models.UpdateCompilationRequest
	if !bindJSON(c, h.log, &req) {
		return
	}
	comp, err := h.Service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comp)
}

func (h *CompilationHandlers) Delete(c *gin.Context) {
	id, err := pathID(c, "compId")
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

func (h *CompilationHandlers) List(c *gin.Context) {
	pinned, err := queryBool(c, "pinned")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	p, err := page(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	comps, err := h.Service.List(c.Request.Context(), pinned, p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comps)
}

func (h *CompilationHandlers) Get(c *gin.Context) {
	id, err := pathID(c, "compId")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	comp, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comp)
}
