package models

import "time"

// Hit is one recorded access to a URI by a client IP.
type Hit struct {
	ID        string    `json:"id" ch:"id"`
	App       string    `json:"app" ch:"app"`
	URI       string    `json:"uri" ch:"uri"`
	IP        string    `json:"ip" ch:"ip"`
	Timestamp time.Time `json:"timestamp" ch:"timestamp"`
}

// EndpointHit is the body of POST /hit.
type EndpointHit struct {
	App       string `json:"app" binding:"required"`
	URI       string `json:"uri" binding:"required"`
	IP        string `json:"ip" binding:"required"`
	Timestamp string `json:"timestamp" binding:"required"`
}

// ViewStats is one (app, uri) aggregate returned by GET /stats.
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

type StatsQuery struct {
	Start  time.Time
	End    time.Time
	URIs   []string
	Unique bool
}
