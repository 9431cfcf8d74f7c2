package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eloiseboudon/crossfit-audit/internal/analyzer"
	"github.com/eloiseboudon/crossfit-audit/internal/config"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
	"github.com/eloiseboudon/crossfit-audit/internal/store"
)

func sampleDoc() map[string]any {
	return map[string]any{
		"name":                     "CrossFit Lyon",
		"monthly_revenue":          36000,
		"fixed_costs":              8000,
		"variable_costs":           3000,
		"rent":                     4000,
		"sublease_income":          1000,
		"payroll":                  12000,
		"active_subscriptions":     180,
		"auto_debit_subscriptions": 160,
		"card_subscriptions":       20,
		"average_price":            200,
		"sticker_price":            220,
		"new_members":              8,
		"lost_members":             5,
		"attendance_rate":          55,
		"member_tenure_months":     14,
		"total_area_m2":            500,
		"training_area_m2":         400,
		"equipment_value":          110000,
		"equipment_age_years":      3.5,
		"max_capacity":             25,
		"coaches":                  4,
		"full_time_coaches":        2,
		"coach_tenure_years":       3,
		"classes_per_week":         35,
		"class_fill_rate":          70,
		"opening_hours_per_week":   70,
		"marketing_budget":         800,
		"social_followers":         650,
		"engagement_rate":          0.025,
		"review_count":             45,
		"review_rating":            4.6,
		"competitors":              3,
		"competitor_price":         230,
		"market_position":          "suiveur",
	}
}

func newTestServer(t *testing.T, st store.Store, cfg config.ServerConfig) http.Handler {
	t.Helper()
	a, err := analyzer.New(config.DefaultEngineConfig())
	require.NoError(t, err)
	s := New(a, st, cfg)
	s.now = func() time.Time { return time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC) }
	return s.Handler()
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "api.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, nil, config.ServerConfig{})

	rr := do(t, h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]any
	decode(t, rr, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, Version, body["version"])
	assert.Equal(t, false, body["store"])
}

func TestAnalyzeSample(t *testing.T) {
	h := newTestServer(t, nil, config.ServerConfig{})

	doc := sampleDoc()
	doc["purchase_price"] = 160000
	rr := do(t, h, http.MethodPost, "/api/analyze", doc)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp AnalysisResponse
	decode(t, rr, &resp)
	require.NotNil(t, resp.AnalysisResult)
	assert.InDelta(t, 69.6, resp.Scores.Score, 0.01)
	assert.Equal(t, model.GradeBPlus, resp.Scores.Grade)
	assert.Len(t, resp.Insights, 5)
	assert.Equal(t, "Too many members per coach", resp.Insights[0].Title)
	assert.Equal(t, time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC), resp.GeneratedAt)
	require.NotNil(t, resp.Acquisition)
	assert.InDelta(t, 2187.01, resp.Acquisition.MonthlyPayment, 0.01)

	assert.Equal(t, Version, resp.Metadata.APIVersion)
	assert.InDelta(t, 97.1, resp.Metadata.DataCompleteness, 0.001)
	assert.Empty(t, resp.Metadata.RunID)
}

func TestAnalyzeMissingFields(t *testing.T) {
	h := newTestServer(t, nil, config.ServerConfig{})

	rr := do(t, h, http.MethodPost, "/api/analyze", map[string]any{"monthly_revenue": 36000})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body errorBody
	decode(t, rr, &body)
	assert.Equal(t, "missing required fields", body.Error)
	assert.Equal(t, []string{"active_subscriptions", "total_area_m2", "coaches"}, body.MissingFields)
}

func TestAnalyzeInvalidInput(t *testing.T) {
	h := newTestServer(t, nil, config.ServerConfig{})

	doc := sampleDoc()
	doc["active_subscriptions"] = 0
	rr := do(t, h, http.MethodPost, "/api/analyze", doc)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid input")
}

func TestAnalyzeNonFiniteValues(t *testing.T) {
	h := newTestServer(t, nil, config.ServerConfig{})

	for _, v := range []string{"NaN", "Inf", "-Infinity"} {
		doc := sampleDoc()
		doc["monthly_revenue"] = v
		for _, path := range []string{"/api/analyze", "/api/analyze/quick"} {
			rr := do(t, h, http.MethodPost, path, doc)
			require.Equal(t, http.StatusBadRequest, rr.Code, "%s monthly_revenue=%q", path, v)

			var body errorBody
			decode(t, rr, &body)
			assert.Contains(t, body.Error, "monthly_revenue must be a finite number")
		}
	}
}

func TestWriteJSONEncodeFailure(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusOK, map[string]float64{"score": math.NaN()})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	var body errorBody
	decode(t, rr, &body)
	assert.Equal(t, "failed to encode response", body.Error)

	rr = httptest.NewRecorder()
	writeJSON(rr, http.StatusCreated, map[string]int{"n": 1})
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"n":1}`, rr.Body.String())
}

func TestAnalyzeBadBody(t *testing.T) {
	h := newTestServer(t, nil, config.ServerConfig{})

	for _, body := range []string{"", "not json", "[1,2]", "null"} {
		rr := do(t, h, http.MethodPost, "/api/analyze", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "body %q", body)
	}
}

func TestAnalyzePersistsRun(t *testing.T) {
	st := newTestStore(t)
	h := newTestServer(t, st, config.ServerConfig{})

	rr := do(t, h, http.MethodPost, "/api/analyze", sampleDoc())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp AnalysisResponse
	decode(t, rr, &resp)
	require.NotEmpty(t, resp.Metadata.RunID)

	rr = do(t, h, http.MethodGet, "/api/analyses/"+resp.Metadata.RunID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var run model.AnalysisRun
	decode(t, rr, &run)
	assert.Equal(t, "CrossFit Lyon", run.Name)
	assert.Equal(t, model.GradeBPlus, run.Grade)
	require.NotNil(t, run.Result)
	assert.Len(t, run.Result.Insights, 5)

	rr = do(t, h, http.MethodGet, "/api/analyses?grade=B%2B&limit=5", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Analyses []model.AnalysisRun `json:"analyses"`
		Count    int                 `json:"count"`
	}
	decode(t, rr, &list)
	assert.Equal(t, 1, list.Count)
	assert.Nil(t, list.Analyses[0].Result)

	rr = do(t, h, http.MethodDelete, "/api/analyses/"+resp.Metadata.RunID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/analyses/"+resp.Metadata.RunID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListAnalysesBadParams(t *testing.T) {
	h := newTestServer(t, newTestStore(t), config.ServerConfig{})

	for _, q := range []string{"min_score=high", "limit=ten", "offset=1.5"} {
		rr := do(t, h, http.MethodGet, "/api/analyses?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}

	rr := do(t, h, http.MethodGet, "/api/analyses", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"analyses":[]`)
}

func TestAnalysesRoutesRequireStore(t *testing.T) {
	h := newTestServer(t, nil, config.ServerConfig{})

	rr := do(t, h, http.MethodGet, "/api/analyses", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestQuick(t *testing.T) {
	h := newTestServer(t, nil, config.ServerConfig{})

	rr := do(t, h, http.MethodPost, "/api/analyze/quick", sampleDoc())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp QuickResponse
	decode(t, rr, &resp)
	assert.InDelta(t, 69.6, resp.OverallScore, 0.01)
	assert.Equal(t, model.GradeBPlus, resp.Grade)
	assert.Equal(t, "Good", resp.GradeLabel)
	assert.Len(t, resp.CategoryScores, 5)
	assert.InDelta(t, 91.0, resp.CategoryScores["operational_efficiency"], 0.01)
	assert.Zero(t, resp.CategoryScores["growth_potential"])

	rr = do(t, h, http.MethodPost, "/api/analyze/quick", map[string]any{"coaches": 2})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestValidate(t *testing.T) {
	h := newTestServer(t, nil, config.ServerConfig{})

	rr := do(t, h, http.MethodPost, "/api/validate", map[string]any{
		"monthly_revenue": 36000,
		"attendance_rate": 140,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var report struct {
		IsValid          bool     `json:"is_valid"`
		MissingRequired  []string `json:"missing_required"`
		MissingOptional  []string `json:"missing_optional"`
		SchemaErrors     []string `json:"schema_errors"`
		DataCompleteness float64  `json:"data_completeness"`
		Recommendation   string   `json:"recommendation"`
	}
	decode(t, rr, &report)
	assert.False(t, report.IsValid)
	assert.Equal(t, []string{"active_subscriptions", "total_area_m2", "coaches"}, report.MissingRequired)
	assert.Len(t, report.MissingOptional, 10)
	assert.NotEmpty(t, report.SchemaErrors)
	assert.InDelta(t, 5.7, report.DataCompleteness, 0.001)
	assert.NotEmpty(t, report.Recommendation)
}

func TestBenchmarksDefaultAndStored(t *testing.T) {
	h := newTestServer(t, nil, config.ServerConfig{})

	rr := do(t, h, http.MethodGet, "/api/benchmarks", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Benchmarks []model.Benchmark `json:"benchmarks"`
	}
	decode(t, rr, &body)
	assert.Len(t, body.Benchmarks, 8)

	st := newTestStore(t)
	require.NoError(t, st.SeedBenchmarks(context.Background(), []model.Benchmark{
		{Key: "arpm", Name: "Average revenue per member", Value: 95, Category: "pricing"},
	}))
	h = newTestServer(t, st, config.ServerConfig{})

	rr = do(t, h, http.MethodGet, "/api/benchmarks", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &body)
	require.Len(t, body.Benchmarks, 1)
	assert.InDelta(t, 95.0, body.Benchmarks[0].Value, 0.001)
}

func TestBenchmarksCompare(t *testing.T) {
	h := newTestServer(t, nil, config.ServerConfig{})

	rr := do(t, h, http.MethodPost, "/api/benchmarks/compare", sampleDoc())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body struct {
		Comparisons []struct {
			Key    string   `json:"key"`
			Actual *float64 `json:"actual"`
			Meets  *bool    `json:"meets"`
		} `json:"comparisons"`
	}
	decode(t, rr, &body)
	require.Len(t, body.Comparisons, 8)
	for _, c := range body.Comparisons {
		if c.Key == "churn_target" {
			require.NotNil(t, c.Meets)
			assert.False(t, *c.Meets)
		}
		if c.Key == "conversion_target" {
			assert.Nil(t, c.Actual)
		}
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, nil, config.ServerConfig{RateLimit: 0.001, RateBurst: 2})

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/health", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/health", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/api/health", nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, nil, config.ServerConfig{AllowedOrigins: []string{"https://audit.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	req.Header.Set("Origin", "https://audit.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "https://audit.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, nil, config.ServerConfig{})
	do(t, h, http.MethodPost, "/api/analyze", sampleDoc())

	rr := do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "gymaudit_analyses_total")
	assert.Contains(t, rr.Body.String(), `route="/api/analyze"`)
}
