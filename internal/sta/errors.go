package sta

import (
	"fmt"
	"net/netip"
)

// RangeError reports a SpatioTemporal field outside the range the codec can
// pack into its bit layout.
type RangeError struct {
	Field string
	Value float64
}

func (e RangeError) Error() string {
	return fmt.Sprintf("sta: %s value %g is out of range", e.Field, e.Value)
}

// NotAnStaError reports an address that does not carry the STA prefix.
type NotAnStaError struct {
	Addr netip.Addr
}

func (e NotAnStaError) Error() string {
	return fmt.Sprintf("sta: %s does not carry the 2001:0200::/48 prefix", e.Addr)
}
