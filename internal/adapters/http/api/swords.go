package api

import (
	"net/http"
	"time"

	"github.com/user/swordfinder/internal/domain/model"
)

const dateLayout = "2006-01-02"

// swingResponse mirrors the read shape of one ranked swing.
type swingResponse struct {
	Rank            int      `json:"rank"`
	GamePK          int64    `json:"game_pk"`
	AtBatNumber     int      `json:"at_bat_number"`
	PitchNumber     int      `json:"pitch_number"`
	Inning          int      `json:"inning"`
	Pitcher         string   `json:"pitcher,omitempty"`
	Batter          string   `json:"batter,omitempty"`
	PitchType       string   `json:"pitch_type,omitempty"`
	BatSpeed        *float64 `json:"bat_speed,omitempty"`
	SwingPathTilt   *float64 `json:"swing_path_tilt,omitempty"`
	InterceptOffset *float64 `json:"intercept_offset,omitempty"`
	RawMetric       float64  `json:"raw_metric"`
	UniversalScore  float64  `json:"universal_score"`
	DailyScore      float64  `json:"daily_score"`
	PlayID          string   `json:"play_id,omitempty"`
}

type swordsResponse struct {
	Date         string          `json:"date"`
	TotalPitches int             `json:"total_pitches"`
	ComputedAt   time.Time       `json:"computed_at"`
	Swords       []swingResponse `json:"swords"`
}

// SwordsHandler handles sword ranking requests.
type SwordsHandler struct {
	deps Dependencies
}

// NewSwordsHandler creates a new swords handler.
func NewSwordsHandler(deps Dependencies) *SwordsHandler {
	return &SwordsHandler{deps: deps}
}

// HandleSwords handles GET /swords?date=YYYY-MM-DD requests and DELETE on the
// same path, which drops the date's cached ranking.
func (h *SwordsHandler) HandleSwords(w http.ResponseWriter, r *http.Request) {
	const op = "api.swords"

	date, ok := parseDate(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	switch r.Method {
	case http.MethodGet:
		set, err := h.deps.SwordsForDate(r.Context(), date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, toSwordsResponse(set))
	case http.MethodDelete:
		if err := h.deps.Invalidate(r.Context(), date); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

// parseDate extracts and validates the date query parameter.
func parseDate(r *http.Request) (string, bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return "", false
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", false
	}
	return date, true
}

func toSwordsResponse(set *model.QueryResultSet) swordsResponse {
	resp := swordsResponse{
		Date:         set.Date,
		TotalPitches: set.TotalPitches,
		ComputedAt:   set.ComputedAt,
		Swords:       make([]swingResponse, 0, len(set.Swings)),
	}
	for i := range set.Swings {
		sw := &set.Swings[i]
		p := sw.Pitch
		resp.Swords = append(resp.Swords, swingResponse{
			Rank:            sw.Rank,
			GamePK:          p.GamePK,
			AtBatNumber:     p.AtBatNumber,
			PitchNumber:     p.PitchNumber,
			Inning:          p.Inning,
			Pitcher:         p.PitcherName,
			Batter:          p.BatterName,
			PitchType:       p.PitchType,
			BatSpeed:        p.BatSpeed,
			SwingPathTilt:   p.SwingPathTilt,
			InterceptOffset: p.InterceptOffset,
			RawMetric:       sw.RawMetric,
			UniversalScore:  sw.UniversalScore,
			DailyScore:      sw.DailyScore,
			PlayID:          p.PlayID,
		})
	}
	return resp
}
