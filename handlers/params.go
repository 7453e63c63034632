package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ewm/api/apperr"
	"ewm/api/models"
	"ewm/api/utils"
)

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Path parameter %s must be a positive integer, got %q", name, c.Param(name))
	}
	return id, nil
}

func queryID(c *gin.Context, name string) (int64, error) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return 0, apperr.Validation("Required request parameter '%s' is not present", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Parameter %s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}

// page reads from (>= 0, default 0) and size (> 0, default 10).
func page(c *gin.Context) (models.Page, error) {
	p := models.Page{From: 0, Size: models.DefaultPageSize}
	if raw := c.Query("from"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return p, apperr.Validation("Parameter from must be a non-negative integer, got %q", raw)
		}
		p.From = v
	}
	if raw := c.Query("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return p, apperr.Validation("Parameter size must be a positive integer, got %q", raw)
		}
		p.Size = v
	}
	return p, nil
}

func queryIDs(c *gin.Context, name string) ([]int64, error) {
	ids, err := utils.ParseIDList(c.QueryArray(name))
	if err != nil {
		return nil, apperr.Validation("Parameter %s: %v", name, err)
	}
	return ids, nil
}

func queryBool(c *gin.Context, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation("Parameter %s must be true or false, got %q", name, raw)
	}
	return &v, nil
}

func queryTime(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := models.ParseDateTime(raw)
	if err != nil {
		return nil, apperr.Validation("Parameter %s: %v", name, err)
	}
	return &t, nil
}

// requiredTime is queryTime for parameters that must be present.
func requiredTime(c *gin.Context, name string) (time.Time, error) {
	t, err := queryTime(c, name)
	if err != nil {
		return time.Time{}, err
	}
	if t == nil {
		return time.Time{}, apperr.Validation("Required request parameter '%s' is not present", name)
	}
	return *t, nil
}
