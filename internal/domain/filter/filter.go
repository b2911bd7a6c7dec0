// Package filter selects sword-swing candidates from a day's pitch events.
package filter

import (
	"github.com/user/swordfinder/internal/domain/model"
)

// Candidate thresholds. A swing qualifies strictly below/above these bounds;
// the boundary values themselves do not qualify.
const (
	maxBatSpeed        = 60.0 // mph, exclusive
	minSwingPathTilt   = 30.0 // degrees, exclusive
	minInterceptOffset = 14.0 // inches, exclusive
	strikeoutOutcome   = "strikeout"
)

// swingOutcomes are the per-pitch outcomes eligible for scoring.
var swingOutcomes = map[string]struct{}{
	"swinging_strike":         {},
	"swinging_strike_blocked": {},
}

// IsCandidate reports whether a single pitch event passes the sword-swing
// predicates. A missing metric excludes the event; it never errors.
func IsCandidate(p *model.PitchEvent) bool {
	if p == nil {
		return false
	}
	if _, ok := swingOutcomes[p.Outcome]; !ok {
		return false
	}
	if p.BatSpeed == nil || *p.BatSpeed >= maxBatSpeed {
		return false
	}
	if p.SwingPathTilt == nil || *p.SwingPathTilt <= minSwingPathTilt {
		return false
	}
	if p.InterceptOffset == nil || *p.InterceptOffset <= minInterceptOffset {
		return false
	}
	return true
}

// Candidates returns the subset of events eligible for scoring. Only the
// terminal pitch of an at-bat that ended in a strikeout is considered;
// mid at-bat whiffs and foul tips are excluded. Output order carries no
// meaning.
func Candidates(events []*model.PitchEvent) []*model.PitchEvent {
	// Terminal pitch per at-bat: the highest pitch number seen for the
	// (game, at-bat) pair.
	type atBat struct {
		gamePK int64
		number int
	}
	terminal := make(map[atBat]*model.PitchEvent)
	for _, p := range events {
		if p == nil {
			continue
		}
		key := atBat{gamePK: p.GamePK, number: p.AtBatNumber}
		if cur, ok := terminal[key]; !ok || p.PitchNumber > cur.PitchNumber {
			terminal[key] = p
		}
	}

	var out []*model.PitchEvent
	for _, p := range terminal {
		if p.AtBatEnd != strikeoutOutcome {
			continue
		}
		if IsCandidate(p) {
			out = append(out, p)
		}
	}
	return out
}
