// Package position reads fixed-size position records off the middleware
// FIFO that feeds the STA daemon its node's current location.
package position

import (
	"bytes"
	"encoding/binary"
)

// Record mirrors the middleware's PositionOut struct field for field, in
// native byte order. Only Time, Lat, Lon and Alt feed the codec and
// geometry packages; the rest are decoded and discarded.
type Record struct {
	Index      uint64
	NodeID     [16]int32
	Time       int64
	Lat        float64
	Lon        float64
	Alt        float64
	Error      [4]float64
	RadioRange float64
}

// RecordSize is the exact byte size of one Record on the wire.
var RecordSize = binary.Size(Record{})

func decodeRecord(buf []byte) (Record, error) {
	var rec Record
	if err := binary.Read(bytes.NewReader(buf), binary.NativeEndian, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}
