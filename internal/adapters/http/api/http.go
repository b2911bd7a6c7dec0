// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/user/swordfinder/internal/adapters/repository"
	"github.com/user/swordfinder/internal/app"
	"github.com/user/swordfinder/internal/domain/model"
	"github.com/user/swordfinder/internal/jobs"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SwordsForDate returns the cached ranking for a date, computing on miss.
	SwordsForDate(ctx context.Context, date string) (*model.QueryResultSet, error)

	// Invalidate drops a date's cached ranking.
	Invalidate(ctx context.Context, date string) error

	// ProcessVideos resolves and downloads clips for a date's ranked swings.
	ProcessVideos(ctx context.Context, date string) (*app.VideoReport, error)

	// Job control and status.
	StartJob(ctx context.Context, jobType string) (string, error)
	CancelJob(jobType string) error
	JobStatus(jobType string) (jobs.Snapshot, error)

	// StoreStats returns row counts for monitoring.
	StoreStats(ctx context.Context) (repository.Stats, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	swordsHandler *SwordsHandler
	videosHandler *VideosHandler
	jobsHandler   *JobsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
		swordsHandler: NewSwordsHandler(deps),
		videosHandler: NewVideosHandler(deps),
		jobsHandler:   NewJobsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/swords", MetricsMiddleware(s.swordsHandler.HandleSwords, "swords"))
	mux.HandleFunc("/videos/process", MetricsMiddleware(s.videosHandler.HandleProcess, "videos_process"))
	mux.HandleFunc("/jobs/", MetricsMiddleware(s.jobsHandler.HandleJobs, "jobs"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
