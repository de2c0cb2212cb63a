package api

import (
	"github.com/wqlegmed/death-time-calculator/pkg/estimate"
	"github.com/wqlegmed/death-time-calculator/pkg/types"
	"github.com/wqlegmed/death-time-calculator/server/internal/metrics"
)

// EstimateResponse is the payload for POST /api/v1/estimate and
// GET /api/v1/estimates/{id}.
type EstimateResponse struct {
	ID          string           `json:"id"`
	Result      *types.Result    `json:"result"`
	Diagnostics []DiagnosticHint `json:"diagnostics"`
	// Cached is set when the result was served from the result cache.
	Cached     bool   `json:"cached"`
	Disclaimer string `json:"disclaimer"`
	CreatedAt  string `json:"created_at"` // RFC3339
}

// HumidityResponse is the payload for GET /api/v1/humidity.
type HumidityResponse struct {
	Region   string          `json:"region"`
	Class    estimate.Region `json:"class"`
	Month    int             `json:"month"`
	Weather  types.Weather   `json:"weather"`
	Humidity float64         `json:"humidity"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status       string `json:"status"`
	CacheEntries int    `json:"cache_entries"`
	// CacheHeld also counts expired entries not yet evicted.
	CacheHeld     int                `json:"cache_held"`
	CacheTTL      string             `json:"cache_ttl"`
	Locale        estimate.Locale    `json:"locale"`
	DecayForm     estimate.DecayForm `json:"decay_form"`
	FixedLocation bool               `json:"fixed_location"`
	Metrics       metrics.Summary    `json:"metrics"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
