package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine_KnownDistance(t *testing.T) {
	// Paris to London is roughly 344 km
	d := Haversine(48.8566, 2.3522, 51.5074, -0.1278)
	assert.InDelta(t, 344, d, 5)
}

func TestHaversine_ZeroDistance(t *testing.T) {
	assert.InDelta(t, 0, Haversine(41.3874, 2.1686, 41.3874, 2.1686), 1e-9)
}

func TestHaversine_Symmetric(t *testing.T) {
	a := Haversine(59.3293, 18.0686, 40.4168, -3.7038)
	b := Haversine(40.4168, -3.7038, 59.3293, 18.0686)
	assert.InDelta(t, a, b, 1e-9)
}
