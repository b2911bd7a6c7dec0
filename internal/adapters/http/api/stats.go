package api

import "net/http"

type statsResponse struct {
	PitchEvents      int   `json:"pitch_events"`
	ScoredSwings     int   `json:"scored_swings"`
	CompletedDates   int   `json:"completed_dates"`
	VideosResolved   int   `json:"videos_resolved"`
	VideosDownloaded int   `json:"videos_downloaded"`
	VideoBytes       int64 `json:"video_bytes"`
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	deps Dependencies
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(deps Dependencies) *StatsHandler {
	return &StatsHandler{deps: deps}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.stats"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	st, err := h.deps.StoreStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		PitchEvents:      st.PitchEvents,
		ScoredSwings:     st.ScoredSwings,
		CompletedDates:   st.CompletedDates,
		VideosResolved:   st.VideosResolved,
		VideosDownloaded: st.VideosDownloaded,
		VideoBytes:       st.VideoBytes,
	})
}
