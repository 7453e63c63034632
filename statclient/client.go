// Package statclient talks to the stats service over HTTP.
package statclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"ewm/api/models"
)

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Hit posts one hit. It never fails from the caller's side: transport errors
// and non-2xx answers are only logged.
func (c *Client) Hit(ctx context.Context, hit models.EndpointHit) {
	body, err := json.Marshal(hit)
	if err != nil {
		c.log.Warn("failed to encode hit", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		c.log.Warn("failed to build hit request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("stats service unreachable, hit dropped", zap.String("uri", hit.URI), zap.Error(err))
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		c.log.Warn("stats service rejected hit", zap.String("uri", hit.URI), zap.Int("status", resp.StatusCode))
	}
}

// Stats fetches aggregated view counts for the window [start, end].
func (c *Client) Stats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]models.ViewStats, error) {
	q := url.Values{}
	q.Set("start", models.FormatDateTime(start))
	q.Set("end", models.FormatDateTime(end))
	for _, u := range uris {
		q.Add("uris", u)
	}
	q.Set("unique", strconv.FormatBool(unique))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build stats request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("stats service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var stats []models.ViewStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	if stats == nil {
		stats = []models.ViewStats{}
	}
	return stats, nil
}
