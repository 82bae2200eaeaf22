package position

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeRecordRoundTrip(t *testing.T) {
	want := Record{
		Index:      42,
		NodeID:     [16]int32{1, 2, 3},
		Time:       1700000000,
		Lat:        35.681236,
		Lon:        139.767125,
		Alt:        38,
		Error:      [4]float64{0.1, 0.2, 0.3, 0.4},
		RadioRange: 50.0,
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.NativeEndian, want); err != nil {
		t.Fatalf("encode fixture record: %v", err)
	}

	got, err := decodeRecord(buf.Bytes())
	if err != nil {
		t.Fatalf("decodeRecord: %v", err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded record mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRecordRejectsShortBuffer(t *testing.T) {
	_, err := decodeRecord(make([]byte, RecordSize-1))
	if err == nil {
		t.Fatal("expected an error decoding a truncated buffer")
	}
}
