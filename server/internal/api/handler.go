package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wqlegmed/death-time-calculator/pkg/estimate"
	"github.com/wqlegmed/death-time-calculator/pkg/types"
	"github.com/wqlegmed/death-time-calculator/server/internal/metrics"
	"github.com/wqlegmed/death-time-calculator/server/internal/store"
)

// maxBodyBytes caps the size of an estimate request body.
const maxBodyBytes = 64 << 10

// Handler serves the /api/v1/* endpoints.
type Handler struct {
	engine  atomic.Pointer[estimate.Engine]
	store   *store.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Handler. metrics may be nil; a nil logger logs to slog.Default.
func New(engine *estimate.Engine, st *store.Store, m *metrics.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{store: st, metrics: m, logger: logger}
	h.engine.Store(engine)
	return h
}

// Register mounts the API endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/estimate", h.HandleEstimate)
		r.Get("/estimates/{id}", h.HandleGetEstimate)
		r.Get("/humidity", h.HandleHumidity)
		r.Get("/tables", h.HandleTables)
		r.Get("/health", h.HandleHealth)
	})
}

// SetEngine replaces the engine used by subsequent requests.
func (h *Handler) SetEngine(e *estimate.Engine) {
	h.engine.Store(e)
}

// Engine returns the engine currently serving requests.
func (h *Handler) Engine() *estimate.Engine {
	return h.engine.Load()
}

// HandleEstimate handles POST /api/v1/estimate.
//
// The body is an observation; sex defaults to male. ?locale=en|zh overrides
// the configured warning language for this request.
func (h *Handler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	engine := h.Engine()
	if q := r.URL.Query().Get("locale"); q != "" {
		locale, err := estimate.ParseLocale(q)
		if err != nil {
			h.metrics.IncrementOutcome(metrics.OutcomeInvalid)
			jsonErr(w, http.StatusBadRequest, err.Error())
			return
		}
		opts := engine.Options()
		opts.Locale = locale
		engine = estimate.NewEngine(opts)
	}

	obs, err := decodeObservation(w, r)
	if err != nil {
		h.metrics.IncrementOutcome(metrics.OutcomeInvalid)
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := engine.Options()
	key, err := store.Key(obs, opts)
	if err != nil {
		h.metrics.IncrementOutcome(metrics.OutcomeError)
		h.logger.ErrorContext(ctx, "api: fingerprint failed", "err", err)
		jsonErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	if e, ok := h.store.Get(key); ok {
		h.metrics.ObserveCache(true)
		h.logger.DebugContext(ctx, "api: cache hit", "id", e.ID)
		jsonResp(w, http.StatusOK, toEstimateResponse(e, true))
		return
	}
	h.metrics.ObserveCache(false)

	res, err := engine.Infer(obs)
	if err != nil {
		h.metrics.IncrementOutcome(metrics.OutcomeError)
		h.logger.WarnContext(ctx, "api: inference failed", "err", err)
		if errors.Is(err, estimate.ErrNonFinite) {
			jsonErr(w, http.StatusUnprocessableEntity, "computation failed, check the input values")
			return
		}
		jsonErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.metrics.ObserveResult(res, time.Since(start))

	e := h.store.Put(key, uuid.NewString(), opts.Locale, res)
	h.logger.InfoContext(ctx, "api: estimated",
		"id", e.ID,
		"best_estimate", res.BestEstimate,
		"insufficient", res.Insufficient,
		"fallback", res.Fallback,
		"warnings", res.WarningCodes,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	jsonResp(w, http.StatusOK, toEstimateResponse(e, false))
}

// HandleGetEstimate handles GET /api/v1/estimates/{id}.
func (h *Handler) HandleGetEstimate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, ok := h.store.ByID(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "estimate not found")
		return
	}
	jsonResp(w, http.StatusOK, toEstimateResponse(e, true))
}

// HandleHumidity handles GET /api/v1/humidity?region=&month=&weather=.
// Month defaults to June and weather to overcast.
func (h *Handler) HandleHumidity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := estimate.DefaultLocation
	loc.Region = q.Get("region")

	if s := q.Get("month"); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil || m < 1 || m > 12 {
			jsonErr(w, http.StatusBadRequest, "month must be an integer in [1, 12]")
			return
		}
		loc.Month = m
	}
	if s := q.Get("weather"); s != "" {
		wth, ok := estimate.ParseWeather(s)
		if !ok {
			jsonErr(w, http.StatusBadRequest, "weather "+strconv.Quote(s)+" unknown")
			return
		}
		loc.Weather = wth
	}

	jsonResp(w, http.StatusOK, HumidityResponse{
		Region:   loc.Region,
		Class:    estimate.ClassifyRegion(loc.Region),
		Month:    loc.Month,
		Weather:  loc.Weather,
		Humidity: estimate.EstimateHumidity(loc.Region, loc.Month, loc.Weather),
	})
}

// HandleTables handles GET /api/v1/tables.
func (h *Handler) HandleTables(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, http.StatusOK, estimate.LookupTables())
}

// HandleHealth handles GET /api/v1/health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	summary, err := h.metrics.Summary()
	if err != nil {
		h.logger.WarnContext(r.Context(), "api: metrics summary failed", "err", err)
	}
	opts := h.Engine().Options()
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		CacheEntries:  len(h.store.List()),
		CacheHeld:     h.store.Count(),
		CacheTTL:      h.store.TTL().String(),
		Locale:        opts.Locale,
		DecayForm:     opts.Decay,
		FixedLocation: opts.FixedLocation,
		Metrics:       summary,
	})
}

// --- helpers ----------------------------------------------------------------

// decodeObservation reads and validates the request body. Weather labels are
// normalised before validation so Chinese labels are accepted.
func decodeObservation(w http.ResponseWriter, r *http.Request) (types.Observation, error) {
	obs := types.Observation{Sex: types.SexMale}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&obs); err != nil {
		return types.Observation{}, errors.New("invalid JSON body: " + err.Error())
	}
	if loc := obs.Location; loc != nil && loc.Weather != "" {
		if wth, ok := estimate.ParseWeather(string(loc.Weather)); ok {
			loc.Weather = wth
		}
	}
	if err := obs.Validate(); err != nil {
		return types.Observation{}, err
	}
	return obs, nil
}

// toEstimateResponse renders the disclaimer in the locale the entry's
// warnings were produced in.
func toEstimateResponse(e *store.Entry, cached bool) EstimateResponse {
	return EstimateResponse{
		ID:          e.ID,
		Result:      e.Result,
		Diagnostics: computeDiagnostics(e.Result),
		Cached:      cached,
		Disclaimer:  e.Locale.Disclaimer(),
		CreatedAt:   e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
