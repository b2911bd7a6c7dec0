// Package scoring computes sword-swing scores and per-date rankings.
package scoring

import (
	"fmt"
	"sort"

	"github.com/user/swordfinder/internal/domain/model"
)

// Default scoring configuration constants.
const (
	weightBatSpeed    = 0.35
	weightSwingTilt   = 0.25
	weightIntercept   = 0.25
	weightZonePenalty = 0.15

	batSpeedCeiling  = 60.0 // mph, slower swings score higher
	tiltCeiling      = 60.0 // degrees
	interceptCeiling = 50.0 // inches

	scaleSpan   = 50.0 // both user-facing scales run 50-100
	scaleFloor  = 50.0
	defaultTopN = 5
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTopN caps how many ranked swings are retained per date.
func WithTopN(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.topN = n
		}
	}
}

// Engine scores candidate pitches and ranks a date's cohort.
type Engine struct {
	topN int
}

// NewEngine creates a scoring engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{topN: defaultTopN}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TopN returns the configured ranking cap.
func (e *Engine) TopN() int { return e.topN }

// RawMetric computes the unscaled weighted sum for one candidate. A missing
// swing metric is a programming error here: the filter must have excluded the
// event already, so this fails fast instead of producing a silent default.
func (e *Engine) RawMetric(p *model.PitchEvent) (float64, error) {
	if p == nil {
		return 0, fmt.Errorf("%w: nil pitch event", ErrInvalidCandidate)
	}
	if p.BatSpeed == nil || p.SwingPathTilt == nil || p.InterceptOffset == nil {
		return 0, fmt.Errorf("%w: game %d at-bat %d pitch %d is missing swing metrics",
			ErrInvalidCandidate, p.GamePK, p.AtBatNumber, p.PitchNumber)
	}

	batComponent := clamp01((batSpeedCeiling - *p.BatSpeed) / batSpeedCeiling)
	tiltComponent := clamp01(*p.SwingPathTilt / tiltCeiling)
	interceptComponent := clamp01(*p.InterceptOffset / interceptCeiling)

	raw := weightBatSpeed*batComponent +
		weightSwingTilt*tiltComponent +
		weightIntercept*interceptComponent +
		weightZonePenalty*ZonePenalty(p)
	return raw, nil
}

// UniversalScore maps a raw metric onto the fixed 50-100 scale. The mapping
// is affine and date-independent, so scores compare across dates.
func UniversalScore(raw float64) float64 {
	return raw*scaleSpan + scaleFloor
}

// RankDate scores every candidate, scales against the full cohort, and
// returns the top-N swings ordered by raw metric descending. Ties break on
// the earliest (game, at-bat, pitch) key so output is deterministic. The
// daily scale uses the cohort's min/max before trimming; an all-equal cohort
// maps every daily score to 100.
func (e *Engine) RankDate(candidates []*model.PitchEvent) ([]model.ScoredSwing, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	swings := make([]model.ScoredSwing, 0, len(candidates))
	minRaw, maxRaw := 0.0, 0.0
	for i, p := range candidates {
		raw, err := e.RawMetric(p)
		if err != nil {
			return nil, err
		}
		if i == 0 || raw < minRaw {
			minRaw = raw
		}
		if i == 0 || raw > maxRaw {
			maxRaw = raw
		}
		swings = append(swings, model.ScoredSwing{
			Pitch:          p,
			RawMetric:      raw,
			UniversalScore: UniversalScore(raw),
		})
	}

	span := maxRaw - minRaw
	for i := range swings {
		if span == 0 {
			swings[i].DailyScore = scaleFloor + scaleSpan
			continue
		}
		swings[i].DailyScore = scaleFloor + (swings[i].RawMetric-minRaw)/span*scaleSpan
	}

	sort.SliceStable(swings, func(i, j int) bool {
		if swings[i].RawMetric != swings[j].RawMetric {
			return swings[i].RawMetric > swings[j].RawMetric
		}
		return swings[i].Pitch.Key().Less(swings[j].Pitch.Key())
	})

	if len(swings) > e.topN {
		swings = swings[:e.topN]
	}
	for i := range swings {
		swings[i].Rank = i + 1
	}
	return swings, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
