package ar

import (
	"io"
)

// source is the byte source an Iterator walks. Callers check remaining before calling read or
// skip; both backends treat an overrun as an I/O error.
type source interface {
	// read consumes and returns the next n bytes.
	read(n int64) ([]byte, error)

	// skip consumes the next n bytes without returning them.
	skip(n int64) error

	// remaining is the number of bytes not yet consumed.
	remaining() int64

	// offset is the number of bytes consumed so far.
	offset() int64
}

// bufferSource walks an in-memory archive by reslicing it. The slice is borrowed, never copied.
type bufferSource struct {
	b   slicer
	off int64
}

func newBufferSource(b []byte) *bufferSource {
	return &bufferSource{b: slicer(b)}
}

func (s *bufferSource) read(n int64) ([]byte, error) {
	if n > int64(len(s.b)) {
		return nil, io.ErrUnexpectedEOF
	}
	s.off += n
	return s.b.next(int(n)), nil
}

func (s *bufferSource) skip(n int64) error {
	_, err := s.read(n)
	return err
}

func (s *bufferSource) remaining() int64 {
	return int64(len(s.b))
}

func (s *bufferSource) offset() int64 {
	return s.off
}

// streamSource walks an archive through a seekable reader, reading only file headers and
// extended names and seeking over everything else.
type streamSource struct {
	rs   io.ReadSeeker
	off  int64
	size int64
}

// newStreamSource measures the bytes between the reader's current position and its end, and
// leaves the position where it was.
func newStreamSource(rs io.ReadSeeker) (*streamSource, error) {
	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return nil, err
	}
	return &streamSource{rs: rs, size: end - start}, nil
}

func (s *streamSource) read(n int64) ([]byte, error) {
	if n > s.remaining() {
		return nil, io.ErrUnexpectedEOF
	}
	b := make([]byte, n)
	m, err := io.ReadFull(s.rs, b)
	s.off += int64(m)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *streamSource) skip(n int64) error {
	if n > s.remaining() {
		return io.ErrUnexpectedEOF
	}
	if n == 0 {
		return nil
	}
	if _, err := s.rs.Seek(n, io.SeekCurrent); err != nil {
		return err
	}
	s.off += n
	return nil
}

func (s *streamSource) remaining() int64 {
	return s.size - s.off
}

func (s *streamSource) offset() int64 {
	return s.off
}
