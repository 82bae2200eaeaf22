// Package geo implements the flat-earth validity test used to decide
// whether a node's actual position still falls inside the area its current
// STA advertises, or whether the node has moved far enough to need a new
// one.
package geo

import (
	"math"

	"github.com/satokano/stamanagement/internal/sta"
)

// CommunicationRange is the one-hop radio range, in meters, used as the
// validity radius around a decoded position.
const CommunicationRange = 50.0

// LocationGranularity is the size, in meters, of the quantization cell a
// decoded STA represents.
const LocationGranularity = 1.0

// lat2y converts a latitude in degrees to a north-south meter offset.
func lat2y(lat float64) float64 {
	return lat * 110952.0
}

// lon2x converts a longitude in degrees to an east-west meter offset at the
// given latitude. lat is passed to math.Cos in degrees, not radians,
// matching the original formula, so the east-west scale factor is not the
// true cos(latitude). The formula is kept as-is.
func lon2x(lon, lat float64) float64 {
	return 111319.0 * lon * math.Cos(lat)
}

// InsideValidRange reports whether real still falls within the
// communication range of the position decoded from the node's current STA,
// accounting for the STA's quantization granularity. It evaluates four
// quarter-disk-plus-halfplane conditions, one per corner of the
// quantization cell, and requires all four to hold simultaneously.
//
// cond1/cond3 and cond2/cond4 bound the same axis from opposite sides of the
// same half-granularity offset, so the conjunction only holds when real
// lands exactly half a granularity from the base corner on both axes (the
// centre of the cell). That is effectively never with
// floating-point position input; this mirrors the original validity check
// rather than a corrected disjunction, and in practice every drift forces a
// fresh DAD attempt.
func InsideValidRange(real, decoded sta.SpatioTemporal) bool {
	dLon := real.Lon - decoded.Lon
	dLat := real.Lat - decoded.Lat

	dx := lon2x(dLon, real.Lat)
	dy := lat2y(dLat)

	realX := lon2x(real.Lon, real.Lat)
	realY := lat2y(real.Lat)
	baseX := lon2x(decoded.Lon, decoded.Lat)
	baseY := lat2y(decoded.Lat)

	rangeSq := CommunicationRange * CommunicationRange
	half := LocationGranularity / 2

	cond1 := dx*dx+dy*dy <= rangeSq &&
		realX >= baseX+half &&
		realY >= baseY+half
	if !cond1 {
		return false
	}

	cond2 := dx*dx+(dy-LocationGranularity)*(dy-LocationGranularity) <= rangeSq &&
		realX >= baseX+half &&
		realY <= baseY+half
	if !cond2 {
		return false
	}

	cond3 := (dx-LocationGranularity)*(dx-LocationGranularity)+dy*dy <= rangeSq &&
		realX <= baseX+half &&
		realY >= baseY+half
	if !cond3 {
		return false
	}

	cond4 := (dx-LocationGranularity)*(dx-LocationGranularity)+(dy-LocationGranularity)*(dy-LocationGranularity) <= rangeSq &&
		realX <= baseX+half &&
		realY <= baseY+half

	return cond4
}
