// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/federicodeponte/openanalytics/internal/model"
	"github.com/federicodeponte/openanalytics/internal/pipeline"
)

// Server routes HTTP requests into the pipeline.
type Server struct {
	pipeline *pipeline.Pipeline
}

// New creates a Server.
func New(p *pipeline.Pipeline) *Server {
	return &Server{pipeline: p}
}

// analyzeRequest is the POST body for all analysis endpoints. Endpoints
// differ only in which fields they require.
type analyzeRequest struct {
	URL        string                `json:"url,omitempty"`
	Company    *model.CompanyProfile `json:"company,omitempty"`
	NumQueries int                   `json:"num_queries,omitempty"`
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/status", s.handleStatus)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/health-check", s.handleHealthCheck)
		r.Post("/mentions-check", s.handleMentionsCheck)
	})
	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	if req.URL == "" && req.Company == nil {
		writeError(w, http.StatusBadRequest, "url or company is required")
		return
	}
	s.run(w, r, pipeline.Request{URL: req.URL, Company: req.Company, NumQueries: req.NumQueries})
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	s.run(w, r, pipeline.Request{URL: req.URL})
}

func (s *Server) handleMentionsCheck(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	if req.Company == nil || req.Company.Name == "" {
		writeError(w, http.StatusBadRequest, "company.name is required")
		return
	}
	s.run(w, r, pipeline.Request{Company: req.Company, NumQueries: req.NumQueries})
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, req pipeline.Request) {
	report, err := s.pipeline.Run(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	zap.L().Info("api request served",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("run_id", report.RunID))
	writeJSON(w, http.StatusOK, report)
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (analyzeRequest, bool) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
