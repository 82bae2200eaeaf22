// Package sta encodes and decodes Spatio-Temporal Addresses: IPv6 addresses
// under the 2001:0200::/48 prefix whose low 80 bits pack a node's latitude,
// longitude, altitude and time of day.
package sta

import (
	"encoding/binary"
	"math"
	"net/netip"
	"time"
)

// prefixGroups is the fixed 48-bit STA prefix, stored as three big-endian groups.
var prefixGroups = [3]uint16{0x2001, 0x0200, 0x0000}

// SpatioTemporal is the quantity a Spatio-Temporal Address encodes: a
// position, an altitude and a moment in time.
//
// Time is a Unix timestamp on Encode. Decode can only recover the seconds
// elapsed since local midnight (the date is not part of the wire encoding),
// so after a Decode, Time holds that offset in [0, 86400) rather than a
// valid Unix timestamp.
type SpatioTemporal struct {
	Time int64
	Lat  float64
	Lon  float64
	Alt  float64
}

// Encode packs s into a 128-bit Spatio-Temporal Address. Lat must be in
// [-90, 90] and Lon in [-180, 180]; Alt and Time are not range-checked and
// are silently truncated to the bits their fields carry.
func Encode(s SpatioTemporal) (netip.Addr, error) {
	if s.Lat < -90 || s.Lat > 90 {
		return netip.Addr{}, RangeError{Field: "lat", Value: s.Lat}
	}
	if s.Lon < -180 || s.Lon > 180 {
		return netip.Addr{}, RangeError{Field: "lon", Value: s.Lon}
	}

	latRaw := int64(math.Floor((s.Lat + 90.0) * 1_000_000))
	latCode := uint32(latRaw>>2) & 0x3FFFFFF

	lonRaw := int64(math.Floor((s.Lon + 180.0) * 1_000_000))
	lonCode := uint32(lonRaw>>3) & 0x3FFFFFF

	altRaw := int64(math.Floor(s.Alt / 2.0))
	altCode := uint32(altRaw) & 0x3FFF

	local := time.Unix(s.Time, 0).Local()
	secOfDay := local.Hour()*3600 + local.Minute()*60 + local.Second()
	timeCode := uint32(secOfDay/10) & 0x3FFF

	var groups [8]uint16
	groups[0] = prefixGroups[0]
	groups[1] = prefixGroups[1]
	groups[2] = prefixGroups[2]
	groups[3] = uint16(lonCode >> 10)
	groups[4] = uint16(((lonCode & 0x3FF) << 6) | (latCode >> 20))
	groups[5] = uint16(latCode >> 4)
	groups[6] = uint16(((latCode & 0xF) << 12) | ((altCode >> 2) & 0xFFF))
	groups[7] = uint16(((altCode & 0x3) << 14) | timeCode)

	var raw [16]byte
	for i, g := range groups {
		binary.BigEndian.PutUint16(raw[i*2:], g)
	}
	return netip.AddrFrom16(raw), nil
}

// Decode recovers the SpatioTemporal value an STA encodes. addr must carry
// the STA prefix.
func Decode(addr netip.Addr) (SpatioTemporal, error) {
	if !IsSTA(addr) {
		return SpatioTemporal{}, NotAnStaError{Addr: addr}
	}

	raw := addr.As16()
	var groups [8]uint16
	for i := range groups {
		groups[i] = binary.BigEndian.Uint16(raw[i*2:])
	}

	timeCode := uint32(groups[7]) & 0x3FFF
	altCode := (uint32(groups[6]&0xFFF) << 2) | (uint32(groups[7]>>14) & 0x3)
	latCode := (uint32(groups[4]&0x3F) << 20) | (uint32(groups[5]) << 4) | (uint32(groups[6]>>12) & 0xF)
	lonCode := (uint32(groups[3]) << 10) | (uint32(groups[4]>>6) & 0x3FF)

	return SpatioTemporal{
		Time: int64(timeCode) * 10,
		Lat:  float64(latCode)*4.0/1_000_000.0 - 90.0,
		Lon:  float64(lonCode)*8.0/1_000_000.0 - 180.0,
		Alt:  float64(altCode) * 2.0,
	}, nil
}

// IsSTA reports whether addr carries the 2001:0200::/48 STA prefix.
func IsSTA(addr netip.Addr) bool {
	if !addr.Is6() || addr.Is4In6() {
		return false
	}
	raw := addr.As16()
	return binary.BigEndian.Uint16(raw[0:2]) == prefixGroups[0] &&
		binary.BigEndian.Uint16(raw[2:4]) == prefixGroups[1] &&
		binary.BigEndian.Uint16(raw[4:6]) == prefixGroups[2]
}
