package api

import "net/http"

// VideosHandler handles video processing requests.
type VideosHandler struct {
	deps Dependencies
}

// NewVideosHandler creates a new videos handler.
func NewVideosHandler(deps Dependencies) *VideosHandler {
	return &VideosHandler{deps: deps}
}

// HandleProcess handles POST /videos/process?date=YYYY-MM-DD requests. The
// call is synchronous: the response carries the per-swing outcomes.
func (h *VideosHandler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	const op = "api.videos_process"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	date, ok := parseDate(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	report, err := h.deps.ProcessVideos(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
