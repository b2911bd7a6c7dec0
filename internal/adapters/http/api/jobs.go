package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/user/swordfinder/internal/jobs"
)

type jobStartResponse struct {
	RunID string `json:"run_id"`
}

// JobsHandler handles job control and status requests.
type JobsHandler struct {
	deps Dependencies
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps Dependencies) *JobsHandler {
	return &JobsHandler{deps: deps}
}

// HandleJobs routes /jobs/{type}, /jobs/{type}/start and /jobs/{type}/cancel.
func (h *JobsHandler) HandleJobs(w http.ResponseWriter, r *http.Request) {
	const op = "api.jobs"

	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/jobs/"), "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	jobType := parts[0]

	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.status(w, jobType)
	case action == "start" && r.Method == http.MethodPost:
		h.start(w, r, jobType)
	case action == "cancel" && r.Method == http.MethodPost:
		h.cancel(w, jobType)
	default:
		http.NotFound(w, r)
	}
}

func (h *JobsHandler) status(w http.ResponseWriter, jobType string) {
	const op = "api.jobs_status"
	snap, err := h.deps.JobStatus(jobType)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *JobsHandler) start(w http.ResponseWriter, r *http.Request, jobType string) {
	const op = "api.jobs_start"
	runID, err := h.deps.StartJob(r.Context(), jobType)
	switch {
	case errors.Is(err, jobs.ErrUnknownJob):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, jobs.ErrAlreadyRunning):
		writeError(w, http.StatusConflict, "already_running", Wrap(op, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	default:
		writeJSON(w, http.StatusAccepted, jobStartResponse{RunID: runID})
	}
}

func (h *JobsHandler) cancel(w http.ResponseWriter, jobType string) {
	const op = "api.jobs_cancel"
	if err := h.deps.CancelJob(jobType); err != nil {
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
