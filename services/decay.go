package services

import "time"

// Energy bounds for the buddy resource.
const (
	EnergyMin = 0
	EnergyMax = 100
)

// Buddy mood thresholds, presentation only.
const (
	MoodHappy   = "happy"
	MoodNeutral = "neutral"
	MoodSad     = "sad"
	MoodDead    = "dead"
)

// StepDown applies whole-unit decay to value. Only fully elapsed units are
// consumed: the anchor advances by consumedUnits*unit rather than to now, so
// leftover sub-unit time is never lost across frequent small calls.
// A now before anchor (clock skew) is treated as zero elapsed time.
func StepDown(value int, anchor, now time.Time, unit time.Duration, perStep int) (int, time.Time) {
	units := WholeUnits(anchor, now, unit)
	if units < 1 {
		return value, anchor
	}
	return clampEnergy(value - units*perStep), anchor.Add(time.Duration(units) * unit)
}

// WholeUnits reports how many full units elapsed between anchor and now,
// zero when now precedes anchor.
func WholeUnits(anchor, now time.Time, unit time.Duration) int {
	if unit <= 0 || !now.After(anchor) {
		return 0
	}
	return int(now.Sub(anchor) / unit)
}

func clampEnergy(v int) int {
	if v < EnergyMin {
		return EnergyMin
	}
	if v > EnergyMax {
		return EnergyMax
	}
	return v
}

// MoodFor classifies energy into a presentation mood. It never gates engine
// behavior.
func MoodFor(energy int) string {
	switch {
	case energy >= 70:
		return MoodHappy
	case energy >= 30:
		return MoodNeutral
	case energy >= 1:
		return MoodSad
	default:
		return MoodDead
	}
}
