package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStepDownWholeUnits(t *testing.T) {
	anchor := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	unit := 30 * time.Minute

	tests := []struct {
		name       string
		elapsed    time.Duration
		wantValue  int
		wantAnchor time.Time
	}{
		{"no elapsed time", 0, 80, anchor},
		{"sub unit keeps value and anchor", 29 * time.Minute, 80, anchor},
		{"one whole unit", 30 * time.Minute, 79, anchor.Add(30 * time.Minute)},
		{"one and a half units consumes one", 45 * time.Minute, 79, anchor.Add(30 * time.Minute)},
		{"four units", 2 * time.Hour, 76, anchor.Add(2 * time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, newAnchor := StepDown(80, anchor, anchor.Add(tt.elapsed), unit, 1)
			assert.Equal(t, tt.wantValue, value)
			assert.True(t, newAnchor.Equal(tt.wantAnchor), "anchor %v want %v", newAnchor, tt.wantAnchor)
		})
	}
}

func TestStepDownClockSkew(t *testing.T) {
	anchor := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	value, newAnchor := StepDown(50, anchor, anchor.Add(-time.Hour), 30*time.Minute, 1)
	assert.Equal(t, 50, value)
	assert.True(t, newAnchor.Equal(anchor), "anchor must never advance into the future")
}

// Repeated sub-unit calls must converge to the same result as one spanning
// call: fractional elapsed time is carried forward, never dropped.
func TestStepDownNoDrift(t *testing.T) {
	anchor := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	unit := 30 * time.Minute

	// Three calls 20 minutes apart.
	value, a := 80, anchor
	for i := 1; i <= 3; i++ {
		value, a = StepDown(value, a, anchor.Add(time.Duration(i)*20*time.Minute), unit, 1)
	}

	// One call after the full 60 minutes.
	wantValue, wantAnchor := StepDown(80, anchor, anchor.Add(60*time.Minute), unit, 1)

	assert.Equal(t, wantValue, value)
	assert.True(t, a.Equal(wantAnchor))
}

func TestStepDownMonotonicAndClamped(t *testing.T) {
	anchor := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	unit := 30 * time.Minute

	prev := 10
	for hours := 1; hours <= 12; hours++ {
		value, _ := StepDown(10, anchor, anchor.Add(time.Duration(hours)*time.Hour), unit, 1)
		assert.LessOrEqual(t, value, prev, "energy must not rise without feeding")
		assert.GreaterOrEqual(t, value, EnergyMin)
		prev = value
	}

	// Deep decay bottoms out at zero.
	value, _ := StepDown(10, anchor, anchor.Add(1000*time.Hour), unit, 1)
	assert.Equal(t, EnergyMin, value)
}

func TestWholeUnits(t *testing.T) {
	anchor := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	assert.Equal(t, 0, WholeUnits(anchor, anchor, day))
	assert.Equal(t, 0, WholeUnits(anchor, anchor.Add(23*time.Hour), day))
	assert.Equal(t, 3, WholeUnits(anchor, anchor.Add(3*day+6*time.Hour), day))
	assert.Equal(t, 0, WholeUnits(anchor, anchor.Add(-day), day), "clock skew yields zero")
	assert.Equal(t, 0, WholeUnits(anchor, anchor.Add(day), 0), "non-positive unit yields zero")
}

func TestMoodFor(t *testing.T) {
	assert.Equal(t, MoodHappy, MoodFor(100))
	assert.Equal(t, MoodHappy, MoodFor(70))
	assert.Equal(t, MoodNeutral, MoodFor(69))
	assert.Equal(t, MoodNeutral, MoodFor(30))
	assert.Equal(t, MoodSad, MoodFor(29))
	assert.Equal(t, MoodSad, MoodFor(1))
	assert.Equal(t, MoodDead, MoodFor(0))
}
