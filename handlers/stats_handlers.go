package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ewm/api/models"
	"ewm/api/services"
)

const storeTimeout = 10 * time.Second

type StatsHandlers struct {
	Service *services.StatsService
	log     *zap.Logger
}

func NewStatsHandlers(s *services.StatsService, log *zap.Logger) *StatsHandlers {
	return &StatsHandlers{Service: s, log: log}
}

// RecordHit handles POST /hit.
func (h *StatsHandlers) RecordHit(c *gin.Context) {
	var in models.EndpointHit
	if !bindJSON(c, h.log, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	if _, err := h.Service.RecordHit(ctx, in); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusCreated)
}

// GetStats handles GET /stats?start=&end=&uris=&unique=.
func (h *StatsHandlers) GetStats(c *gin.Context) {
	start, err := requiredTime(c, "start")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	end, err := requiredTime(c, "end")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	unique, err := queryBool(c, "unique")
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	q := models.StatsQuery{Start: start, End: end, URIs: c.QueryArray("uris")}
	if unique != nil {
		q.Unique = *unique
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	stats, err := h.Service.Stats(ctx, q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
