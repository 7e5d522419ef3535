package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateNeverFlagsBelowMinComparisons(t *testing.T) {
	for _, recent := range [][]float64{nil, {}, {5.0}} {
		stats, flagged := Evaluate(recent, 1e12)
		assert.False(t, flagged, "flagged with %d comparisons", len(recent))
		assert.Zero(t, stats)
	}
}

func TestEvaluateZeroDeviationBoundary(t *testing.T) {
	recent := []float64{10.00, 10.00, 10.00}

	stats, flagged := Evaluate(recent, 10.01)
	assert.True(t, flagged)
	assert.Equal(t, 10.0, stats.Mean)
	assert.Equal(t, 0.0, stats.SD)

	// Threshold is strict: equal to mean + 3*sd does not flag.
	_, flagged = Evaluate(recent, 10.00)
	assert.False(t, flagged)
}

func TestEvaluatePopulationStandardDeviation(t *testing.T) {
	stats, _ := Evaluate([]float64{100, 200, 150}, 0)
	assert.InDelta(t, 150.0, stats.Mean, 1e-9)
	// Population sd of {100,200,150}: sqrt(5000/3).
	assert.InDelta(t, 40.8248, stats.SD, 1e-4)
}

func TestEvaluateFlagsFarOutlier(t *testing.T) {
	stats, flagged := Evaluate([]float64{100, 200, 150}, 1000)
	assert.True(t, flagged)
	assert.Greater(t, 1000.0, stats.Mean+DeviationMultiplier*stats.SD)
}

func TestEvaluateDoesNotFlagWithinThreshold(t *testing.T) {
	// mean 150, sd ~40.82, threshold ~272.47
	_, flagged := Evaluate([]float64{100, 200, 150}, 270)
	assert.False(t, flagged)
}
