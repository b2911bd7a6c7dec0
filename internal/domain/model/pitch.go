// Package model contains domain models passed between layers.
package model

import "time"

// PitchEvent is one pitch from the bulk ingest source. Swing metrics and
// location fields are pointers because the upstream feed omits them for many
// pitches; a nil field means "not measured", never zero.
type PitchEvent struct {
	GameDate    string // YYYY-MM-DD
	GamePK      int64  // game identifier
	AtBatNumber int    // game-global at-bat sequence
	PitchNumber int    // pitch sequence within the at-bat
	Inning      int

	Outcome  string // per-pitch outcome text, e.g. "swinging_strike"
	AtBatEnd string // at-bat final outcome text, e.g. "strikeout"

	BatSpeed        *float64 // mph
	SwingPathTilt   *float64 // degrees
	InterceptOffset *float64 // inches, ball-minus-batter intercept offset

	PlateX     *float64 // ft from plate center
	PlateZ     *float64 // ft above ground
	ZoneTop    *float64 // ft
	ZoneBottom *float64 // ft

	PlayID string // external video identifier; may be empty

	PitcherName string
	BatterName  string
	PitchType   string
}

// Key returns the natural key of a pitch within its game day.
func (p *PitchEvent) Key() PitchKey {
	return PitchKey{GamePK: p.GamePK, AtBatNumber: p.AtBatNumber, PitchNumber: p.PitchNumber}
}

// PitchKey identifies a pitch by (game, at-bat, pitch) sequence.
type PitchKey struct {
	GamePK      int64
	AtBatNumber int
	PitchNumber int
}

// Less orders keys by game, then at-bat, then pitch. Used as the
// deterministic tiebreak when raw metrics are equal.
func (k PitchKey) Less(o PitchKey) bool {
	if k.GamePK != o.GamePK {
		return k.GamePK < o.GamePK
	}
	if k.AtBatNumber != o.AtBatNumber {
		return k.AtBatNumber < o.AtBatNumber
	}
	return k.PitchNumber < o.PitchNumber
}

// ScoredSwing is the derived score record for one candidate pitch.
type ScoredSwing struct {
	Pitch *PitchEvent

	RawMetric      float64 // unscaled weighted sum
	UniversalScore float64 // raw mapped onto a fixed 50-100 scale
	DailyScore     float64 // raw rescaled onto 50-100 within the date cohort
	Rank           int     // 1-based position within the date
}

// VideoAssetState tracks the lifecycle of a swing's clip.
type VideoAssetState string

const (
	VideoNotAttempted VideoAssetState = "not_attempted"
	VideoResolved     VideoAssetState = "resolved"
	VideoDownloaded   VideoAssetState = "downloaded"
	VideoFailed       VideoAssetState = "failed"
)

// VideoAsset holds the resolved and downloaded clip metadata for a swing.
type VideoAsset struct {
	Identifier string // external video identifier (play id)
	PageURL    string // source page the media URL was extracted from
	MediaURL   string // direct media URL
	LocalPath  string // path under the media directory once downloaded
	ByteSize   int64
	State      VideoAssetState
}

// QueryResultSet is the cached top-N ranking for one date. Once Completed it
// is treated as immutable until explicit invalidation.
type QueryResultSet struct {
	Date         string
	Swings       []ScoredSwing
	Completed    bool
	TotalPitches int
	ComputedAt   time.Time
}
