package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceZeroAtSamePoint(t *testing.T) {
	assert.Equal(t, 0.0, Distance(30.5, 114.3, 30.5, 114.3))
}

func TestDistanceSymmetric(t *testing.T) {
	d1 := Distance(30.5, 114.3, 30.6, 114.4)
	d2 := Distance(30.6, 114.4, 30.5, 114.3)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestDistanceOneDegreeLatitude(t *testing.T) {
	// One degree of latitude is roughly 111.19 km on a 6371 km sphere.
	d := Distance(0, 0, 1, 0)
	assert.InDelta(t, 111_194.9, d, 10)
}

func TestWithinRadiusBoundary(t *testing.T) {
	// ~0.0009 degrees of latitude at the equator is right at a 100 m fence.
	inside, d := WithinRadius(0, 0, 0.00089, 0, 100)
	require.True(t, inside)
	assert.Less(t, d, 100.0)

	outside, d := WithinRadius(0, 0, 0.00091, 0, 100)
	require.False(t, outside)
	assert.Greater(t, d, 100.0)
}

func TestDistanceTriangleSanity(t *testing.T) {
	// Direct leg never exceeds the sum of the two hops.
	ab := Distance(0, 0, 0.5, 0.5)
	bc := Distance(0.5, 0.5, 1, 0.2)
	ac := Distance(0, 0, 1, 0.2)
	assert.LessOrEqual(t, ac, ab+bc)
}
