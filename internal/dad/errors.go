package dad

import (
	"errors"
	"fmt"
)

// ErrShortFrame is returned when a datagram is too small to hold the fixed
// AREQ/AREP header and address fields.
var ErrShortFrame = errors.New("dad: frame shorter than the fixed AREQ/AREP layout")

// ErrUnknownType is returned when a frame's type tag is neither AREQ nor
// AREP.
var ErrUnknownType = errors.New("dad: unrecognized frame type")

// TransportError wraps a failure in sending, receiving, or maintaining
// multicast membership for the DAD wire protocol.
type TransportError struct {
	Op  string
	Err error
}

func (e TransportError) Error() string {
	return fmt.Sprintf("dad: %s: %v", e.Op, e.Err)
}

func (e TransportError) Unwrap() error {
	return e.Err
}
