package position

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testLog = zap.NewNop().Sugar()

func writeRecord(t *testing.T, f *os.File, rec Record) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.NativeEndian, rec))
	_, err := f.Write(buf.Bytes())
	require.NoError(t, err)
}

func TestReaderReadsRecordsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "position")
	f, err := os.Create(path)
	require.NoError(t, err)

	first := Record{Index: 1, Time: 100, Lat: 35.68, Lon: 139.77, Alt: 10}
	second := Record{Index: 2, Time: 200, Lat: 35.70, Lon: 139.80, Alt: 20}
	writeRecord(t, f, first)
	writeRecord(t, f, second)
	require.NoError(t, f.Close())

	r, err := Open(path, testLog)
	require.NoError(t, err)
	defer r.Close()

	got1, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, first.Index, got1.Index)
	assert.InDelta(t, first.Lat, got1.Lat, 1e-9)

	got2, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, second.Index, got2.Index)

	_, err = r.Next()
	require.ErrorIs(t, err, ErrClosed)
}

func TestReaderReportsShortReadAsNonTerminalError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "position")
	require.NoError(t, os.WriteFile(path, make([]byte, RecordSize/2), 0o644))

	r, err := Open(path, testLog)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Next()
	require.Error(t, err)
	var fifoErr FifoError
	require.ErrorAs(t, err, &fifoErr)
	assert.NotErrorIs(t, err, ErrClosed)
}

func TestReaderImmediateEOFIsClosed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "position")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	r, err := Open(path, testLog)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Next()
	require.ErrorIs(t, err, ErrClosed)
}

func TestOpenMissingFifoReturnsFifoError(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "does-not-exist"), testLog)
	require.Error(t, err)
	var fifoErr FifoError
	require.ErrorAs(t, err, &fifoErr)
}
