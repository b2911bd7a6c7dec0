package scoring

import "github.com/user/swordfinder/internal/domain/model"

// Zone penalty constants. Distances are measured in feet and converted to
// inches before the bonus is computed.
const (
	halfPlateWidth = 0.83 // ft, horizontal edge of the hittable zone
	inchesPerFoot  = 12.0
	bonusDivisor   = 18.0 // inches per full bonus point
	bonusCap       = 2.0
	neutralPenalty = 1.0
)

// ZonePenalty returns the location-based multiplier for a pitch. Pitches
// inside the zone get the neutral 1.0; the factor grows with distance outside
// the zone and saturates at 3.0. Any missing location input yields 1.0.
func ZonePenalty(p *model.PitchEvent) float64 {
	if p == nil || p.PlateX == nil || p.PlateZ == nil || p.ZoneTop == nil || p.ZoneBottom == nil {
		return neutralPenalty
	}
	return zonePenalty(*p.PlateX, *p.PlateZ, *p.ZoneTop, *p.ZoneBottom)
}

func zonePenalty(plateX, plateZ, zoneTop, zoneBottom float64) float64 {
	var distFt float64

	if plateX > halfPlateWidth {
		distFt += plateX - halfPlateWidth
	} else if plateX < -halfPlateWidth {
		distFt += -halfPlateWidth - plateX
	}

	if plateZ > zoneTop {
		distFt += plateZ - zoneTop
	} else if plateZ < zoneBottom {
		distFt += zoneBottom - plateZ
	}

	distIn := distFt * inchesPerFoot
	bonus := distIn / bonusDivisor
	if bonus > bonusCap {
		bonus = bonusCap
	}
	return neutralPenalty + bonus
}
