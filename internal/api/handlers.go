package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/eloiseboudon/crossfit-audit/internal/benchmark"
	"github.com/eloiseboudon/crossfit-audit/internal/intake"
	"github.com/eloiseboudon/crossfit-audit/internal/model"
	"github.com/eloiseboudon/crossfit-audit/internal/monitoring"
	"github.com/eloiseboudon/crossfit-audit/internal/store"
)

// AnalysisMetadata accompanies every full analysis response.
type AnalysisMetadata struct {
	APIVersion       string  `json:"api_version"`
	DataCompleteness float64 `json:"data_completeness"`
	RunID            string  `json:"run_id,omitempty"`
}

// AnalysisResponse is the body of POST /api/analyze.
type AnalysisResponse struct {
	*model.AnalysisResult
	Metadata AnalysisMetadata `json:"metadata"`
}

// QuickResponse is the body of POST /api/analyze/quick.
type QuickResponse struct {
	OverallScore   float64            `json:"overall_score"`
	Grade          model.Grade        `json:"grade"`
	GradeLabel     string             `json:"grade_label"`
	CategoryScores map[string]float64 `json:"category_scores"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": Version,
		"store":   s.store != nil,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	raw, ok := decodeDocument(w, r)
	if !ok {
		return
	}
	if missing := intake.Missing(raw); len(missing) > 0 {
		monitoring.RecordAnalysis("api", monitoring.OutcomeInvalid, nil, time.Since(start))
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing required fields", MissingFields: missing})
		return
	}

	m, err := intake.FromMap(raw)
	if err != nil {
		monitoring.RecordAnalysis("api", monitoring.OutcomeInvalid, nil, time.Since(start))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.analyzer.Run(r.Context(), m, intake.PurchasePrice(raw))
	if err != nil {
		s.analysisFailed(w, err, start)
		return
	}
	result.GeneratedAt = s.now()
	monitoring.RecordAnalysis("api", monitoring.OutcomeOK, result, time.Since(start))

	meta := AnalysisMetadata{
		APIVersion:       Version,
		DataCompleteness: intake.Completeness(raw),
	}
	if s.store != nil {
		run := &model.AnalysisRun{Name: intake.GymName(raw), Metrics: m, Result: result, CreatedAt: result.GeneratedAt}
		if err := s.store.SaveAnalysis(r.Context(), run); err != nil {
			zap.L().Error("api: save analysis", zap.Error(err))
		} else {
			meta.RunID = run.ID
		}
	}

	writeJSON(w, http.StatusOK, AnalysisResponse{AnalysisResult: result, Metadata: meta})
}

func (s *Server) handleQuick(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeDocument(w, r)
	if !ok {
		return
	}
	m, err := intake.FromMap(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	score, err := s.analyzer.QuickScore(m)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	categories := make(map[string]float64, len(score.Categories))
	for _, c := range score.Categories {
		categories[string(c.Category)] = c.Score
	}
	writeJSON(w, http.StatusOK, QuickResponse{
		OverallScore:   score.Score,
		Grade:          score.Grade,
		GradeLabel:     score.GradeLabel,
		CategoryScores: categories,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, intake.Check(raw))
}

func (s *Server) handleBenchmarks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"benchmarks": s.benchmarks(r)})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	raw, ok := decodeDocument(w, r)
	if !ok {
		return
	}
	m, err := intake.FromMap(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comparisons": benchmark.Compare(m, s.benchmarks(r))})
}

// benchmarks prefers the stored table and falls back to the defaults.
func (s *Server) benchmarks(r *http.Request) []model.Benchmark {
	if s.store != nil {
		list, err := s.store.ListBenchmarks(r.Context())
		if err != nil {
			zap.L().Warn("api: list benchmarks", zap.Error(err))
		} else if len(list) > 0 {
			return list
		}
	}
	return benchmark.Defaults()
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RunFilter{
		Name:  q.Get("name"),
		Grade: model.Grade(q.Get("grade")),
	}
	var err error
	if filter.MinScore, err = floatParam(q.Get("min_score")); err != nil {
		writeError(w, http.StatusBadRequest, "min_score must be a number")
		return
	}
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		writeError(w, http.StatusBadRequest, "offset must be an integer")
		return
	}

	runs, err := s.store.ListAnalyses(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list analyses", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}
	if runs == nil {
		runs = []model.AnalysisRun{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"analyses": runs, "count": len(runs)})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetAnalysis(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.storeFailed(w, err, "get analysis")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAnalysis(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.storeFailed(w, err, "delete analysis")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) analysisFailed(w http.ResponseWriter, err error, start time.Time) {
	if eris.Is(err, model.ErrInvalidInput) {
		monitoring.RecordAnalysis("api", monitoring.OutcomeInvalid, nil, time.Since(start))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	monitoring.RecordAnalysis("api", monitoring.OutcomeError, nil, time.Since(start))
	zap.L().Error("api: analysis failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "analysis failed")
}

func (s *Server) storeFailed(w http.ResponseWriter, err error, action string) {
	if eris.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	zap.L().Error("api: "+action, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "failed to "+action)
}

// decodeDocument reads a JSON object body. It writes the error response
// itself and reports whether decoding succeeded.
func decodeDocument(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil || raw == nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return nil, false
	}
	return raw, true
}

func floatParam(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
