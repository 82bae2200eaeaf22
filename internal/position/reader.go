package position

import (
	"io"
	"os"

	"github.com/c2h5oh/datasize"
	"go.uber.org/zap"
)

// Reader reads fixed-size Records off a FIFO opened read-only.
type Reader struct {
	file *os.File
}

// Open opens path (expected to be a named pipe) for reading.
func Open(path string, log *zap.SugaredLogger) (*Reader, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, FifoError{Op: "open " + path, Err: err}
	}
	log.Debugw("opened position FIFO", "path", path, "record_size", datasize.ByteSize(RecordSize).String())
	return &Reader{file: f}, nil
}

// Close releases the underlying file descriptor.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Next reads and decodes the next Record. It returns ErrClosed once the
// writer end has closed the pipe (a zero-length read); any other read
// error is returned wrapped in a FifoError and is not fatal to the caller's
// loop, per the daemon's error-handling policy.
func (r *Reader) Next() (Record, error) {
	buf := make([]byte, RecordSize)
	n, err := io.ReadFull(r.file, buf)
	if err != nil {
		if err == io.EOF || (n == 0 && err == io.ErrUnexpectedEOF) {
			return Record{}, ErrClosed
		}
		return Record{}, FifoError{Op: "read record", Err: err}
	}

	rec, err := decodeRecord(buf)
	if err != nil {
		return Record{}, FifoError{Op: "decode record", Err: err}
	}
	return rec, nil
}
