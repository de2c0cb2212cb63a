package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"github.com/wqlegmed/death-time-calculator/pkg/estimate"
	"github.com/wqlegmed/death-time-calculator/server/internal/metrics"
	"github.com/wqlegmed/death-time-calculator/server/internal/store"
)

const scenarioA = `{
  "height": 170, "body_type": 2, "age": 30, "env_temp": 20, "clothing": 3,
  "rectal_temp": 30, "rigor_mortis": 2, "livor_mortis": 1, "livor_pressure": 1
}`

type HandlerSuite struct {
	suite.Suite
	handler *Handler
	store   *store.Store
	metrics *metrics.Metrics
	router  http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = store.New(5 * time.Minute)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.handler = New(estimate.NewEngine(estimate.Options{}), s.store, s.metrics, logger)

	r := chi.NewRouter()
	s.handler.Register(r)
	s.router = r
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(v), rec.Body.String())
}

func (s *HandlerSuite) TestEstimate() {
	s.Run("scenario A discards rigor and livor", func() {
		rec := s.do(http.MethodPost, "/api/v1/estimate", scenarioA)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		s.Equal("application/json", rec.Header().Get("Content-Type"))

		var resp EstimateResponse
		s.decode(rec, &resp)
		s.NotEmpty(resp.ID)
		s.False(resp.Cached)
		s.InDelta(20.531, resp.Result.BestEstimate, 0.001)
		s.Equal([]string{"rigor_inconsistent", "livor_inconsistent"}, resp.Result.WarningCodes)
		s.Contains(resp.Disclaimer, "Disclaimer")

		keys := make([]string, 0, len(resp.Diagnostics))
		for _, d := range resp.Diagnostics {
			keys = append(keys, d.Key)
		}
		s.Equal([]string{"discarded_rigor", "discarded_livor", "single_estimator"}, keys)
	})

	s.Run("identical request is served from cache", func() {
		first := s.do(http.MethodPost, "/api/v1/estimate", scenarioA)
		second := s.do(http.MethodPost, "/api/v1/estimate", scenarioA)

		var a, b EstimateResponse
		s.decode(first, &a)
		s.decode(second, &b)
		s.True(b.Cached)
		s.Equal(a.ID, b.ID)
		s.Equal(1, s.store.Count())
	})

	s.Run("locale query switches warning language", func() {
		rec := s.do(http.MethodPost, "/api/v1/estimate?locale=zh", scenarioA)
		s.Require().Equal(http.StatusOK, rec.Code)
		var resp EstimateResponse
		s.decode(rec, &resp)
		s.Equal("尸僵数据可能不准确，已优先使用尸温结果！", resp.Result.Warnings[0])
		s.Contains(resp.Disclaimer, "免责声明")
	})

	s.Run("no phenomena returns the sentinel", func() {
		rec := s.do(http.MethodPost, "/api/v1/estimate",
			`{"height": 170, "body_type": 2, "age": 30, "env_temp": 20, "clothing": 3}`)
		s.Require().Equal(http.StatusOK, rec.Code)
		var resp EstimateResponse
		s.decode(rec, &resp)
		s.True(resp.Result.Insufficient)
		s.Require().Len(resp.Diagnostics, 1)
		s.Equal("no_phenomena", resp.Diagnostics[0].Key)
		s.Equal("critical", resp.Diagnostics[0].Level)
	})

	s.Run("chinese weather label accepted", func() {
		rec := s.do(http.MethodPost, "/api/v1/estimate",
			`{"height": 170, "body_type": 2, "age": 30, "env_temp": 20, "clothing": 3,
			  "rectal_temp": 30, "location": {"region": "广东", "month": 5, "weather": "小雨"}}`)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		var resp EstimateResponse
		s.decode(rec, &resp)
		s.Equal(100.0, resp.Result.Humidity)
	})
}

func (s *HandlerSuite) TestEstimate_BadRequest() {
	tests := []struct {
		name string
		path string
		body string
	}{
		{"malformed json", "/api/v1/estimate", `{"height": `},
		{"unknown field", "/api/v1/estimate", `{"height": 170, "colour": "red"}`},
		{"height out of range", "/api/v1/estimate", strings.Replace(scenarioA, "170", "300", 1)},
		{"unknown weather", "/api/v1/estimate", `{"height": 170, "body_type": 2, "age": 30, "env_temp": 20, "clothing": 3, "location": {"month": 5, "weather": "fog"}}`},
		{"unknown locale", "/api/v1/estimate?locale=fr", scenarioA},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			rec := s.do(http.MethodPost, tc.path, tc.body)
			s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
			var body errorResponse
			s.decode(rec, &body)
			s.NotEmpty(body.Error)
		})
	}

	summary, err := s.metrics.Summary()
	s.Require().NoError(err)
	s.Equal(float64(len(tests)), summary.Estimates[metrics.OutcomeInvalid])
}

func (s *HandlerSuite) TestGetEstimate() {
	rec := s.do(http.MethodPost, "/api/v1/estimate", scenarioA)
	var created EstimateResponse
	s.decode(rec, &created)

	s.Run("known id", func() {
		rec := s.do(http.MethodGet, "/api/v1/estimates/"+created.ID, "")
		s.Require().Equal(http.StatusOK, rec.Code)
		var got EstimateResponse
		s.decode(rec, &got)
		s.Equal(created.ID, got.ID)
		s.Equal(created.Result.BestEstimate, got.Result.BestEstimate)
	})

	s.Run("disclaimer follows the stored locale", func() {
		rec := s.do(http.MethodPost, "/api/v1/estimate?locale=zh", scenarioA)
		s.Require().Equal(http.StatusOK, rec.Code)
		var zh EstimateResponse
		s.decode(rec, &zh)

		rec = s.do(http.MethodGet, "/api/v1/estimates/"+zh.ID, "")
		s.Require().Equal(http.StatusOK, rec.Code)
		var got EstimateResponse
		s.decode(rec, &got)
		s.Contains(got.Disclaimer, "免责声明")
		s.Equal(zh.Result.Warnings, got.Result.Warnings)

		rec = s.do(http.MethodGet, "/api/v1/estimates/"+created.ID, "")
		s.decode(rec, &got)
		s.Contains(got.Disclaimer, "Disclaimer")
	})

	s.Run("unknown id", func() {
		rec := s.do(http.MethodGet, "/api/v1/estimates/nope", "")
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *HandlerSuite) TestHumidity() {
	tests := []struct {
		name  string
		query string
		code  int
		want  float64
	}{
		{"defaults", "", http.StatusOK, 65},
		{"guangdong summer rain", "?region=%E5%B9%BF%E4%B8%9C&month=7&weather=%E5%B0%8F%E9%9B%A8", http.StatusOK, 85},
		{"beijing winter", "?region=beijing&month=12&weather=clear", http.StatusOK, 20},
		{"bad month", "?month=13", http.StatusBadRequest, 0},
		{"month not a number", "?month=june", http.StatusBadRequest, 0},
		{"unknown weather", "?weather=fog", http.StatusBadRequest, 0},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			rec := s.do(http.MethodGet, "/api/v1/humidity"+tc.query, "")
			s.Require().Equal(tc.code, rec.Code, rec.Body.String())
			if tc.code != http.StatusOK {
				return
			}
			var resp HumidityResponse
			s.decode(rec, &resp)
			s.Equal(tc.want, resp.Humidity)
		})
	}
}

func (s *HandlerSuite) TestTables() {
	rec := s.do(http.MethodGet, "/api/v1/tables", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var body map[string]json.RawMessage
	s.decode(rec, &body)
	for _, key := range []string{"clothing_factor", "rigor_ranges", "livor_ranges", "pressure_ranges", "humidity_base"} {
		s.Contains(body, key)
	}
}

func (s *HandlerSuite) TestHealth() {
	s.do(http.MethodPost, "/api/v1/estimate", scenarioA)
	s.do(http.MethodPost, "/api/v1/estimate", scenarioA)

	rec := s.do(http.MethodGet, "/api/v1/health", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var resp HealthResponse
	s.decode(rec, &resp)
	s.Equal("ok", resp.Status)
	s.Equal(1, resp.CacheEntries)
	s.Equal(1, resp.CacheHeld)
	s.Equal("5m0s", resp.CacheTTL)
	s.Equal(estimate.DecayContinuous, resp.DecayForm)
	s.Equal(1.0, resp.Metrics.Estimates[metrics.OutcomeOK])
	s.Equal(1.0, resp.Metrics.CacheHits)
	s.Equal(1.0, resp.Metrics.Discards["rigor"])
}

func (s *HandlerSuite) TestSetEngine() {
	s.handler.SetEngine(estimate.NewEngine(estimate.Options{Decay: estimate.DecayLiteral}))

	rec := s.do(http.MethodPost, "/api/v1/estimate", scenarioA)
	s.Require().Equal(http.StatusOK, rec.Code)
	var resp EstimateResponse
	s.decode(rec, &resp)
	s.True(resp.Result.Fallback)
	s.Empty(resp.Result.WarningCodes)

	keys := make([]string, 0, len(resp.Diagnostics))
	for _, d := range resp.Diagnostics {
		keys = append(keys, d.Key)
	}
	s.Equal([]string{"cooling_fallback"}, keys)
}
