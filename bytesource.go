package htmlstream

import (
	"io"
	"sync"

	"github.com/juju/errors"
	"github.com/spf13/afero"
)

// fileReadBufferSize is the capacity of the file source's ring buffer.
// Must be a power of two; 256 bytes balances syscall count against the
// memory footprint of many concurrently open parses.
const fileReadBufferSize = 256

// byteSource is the lowest layer of the pipeline: it hands out one raw
// byte at a time. End of input is signalled with io.EOF; read failures
// are returned as errors, never as in-band sentinel bytes.
type byteSource interface {
	next() (byte, error)
	Close() error
}

// fileSource reads a file through a fixed-capacity ring buffer.
// head and tail only ever grow; the buffer index is their value masked
// with the (power-of-two) capacity.
type fileSource struct {
	file afero.File
	buf  [fileReadBufferSize]byte
	head int // next byte handed out
	tail int // next slot to fill
	eof  bool

	closeOnce sync.Once
	closeErr  error
}

func newFileSource(file afero.File) *fileSource {
	return &fileSource{file: file}
}

func (s *fileSource) next() (byte, error) {
	const mask = fileReadBufferSize - 1
	for s.head == s.tail {
		if s.eof {
			return 0, io.EOF
		}
		// Fill the contiguous free region starting at tail.
		lo := s.tail & mask
		hi := lo + (fileReadBufferSize - (s.tail - s.head))
		if hi > fileReadBufferSize {
			hi = fileReadBufferSize
		}
		n, err := s.file.Read(s.buf[lo:hi])
		s.tail += n
		if err == io.EOF {
			s.eof = true
		} else if err != nil {
			return 0, errors.Trace(err)
		}
	}
	b := s.buf[s.head&mask]
	s.head++
	return b, nil
}

// Close releases the underlying file handle. Closing twice is a no-op.
func (s *fileSource) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.file.Close()
	})
	return s.closeErr
}

// memSource serves bytes from an in-memory slice.
type memSource struct {
	data []byte
	pos  int
}

func newMemSource(data []byte) *memSource {
	return &memSource{data: data}
}

func (s *memSource) next() (byte, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

func (s *memSource) Close() error { return nil }
