/*
Copyright (c) 2013 Blake Smith <blakesmith0@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package ar

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
)

type state int

const (
	// statePending means the next header has not been decoded yet.
	statePending state = iota
	// stateReady means header holds a decoded header that Advance has not consumed.
	stateReady
	// stateExhausted means every member has been advanced past.
	stateExhausted
	// stateFailed means err ended the iteration.
	stateFailed
)

// Iterator walks the file headers of an ar archive one at a time, without reading member data.
// It is forward-only and not safe for concurrent use.
//
// Example:
//
//	it, err := ar.NewIterator(b)
//	if err != nil {
//	    return err
//	}
//	for !it.Exhausted() {
//	    hdr, err := it.Peek()
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(hdr.Name)
//	    if err := it.Advance(); err != nil {
//	        return err
//	    }
//	}
type Iterator struct {
	src    source
	logger *slog.Logger

	state  state
	header *Header

	// headerOff is the archive offset of the header being decoded or held in header.
	headerOff int64

	// err is returned by every call once the iteration has failed.
	err error
}

// NewIterator creates an Iterator over an archive held in memory. b is borrowed and must not be
// modified while the Iterator is in use. It returns an error if the global archive header is
// missing or malformed.
func NewIterator(b []byte, opts ...Option) (*Iterator, error) {
	return newIterator(newBufferSource(b), opts)
}

// NewStreamIterator creates an Iterator over the archive that starts at the current position of
// rs. Only file headers and extended names are read; member data is skipped by seeking.
func NewStreamIterator(rs io.ReadSeeker, opts ...Option) (*Iterator, error) {
	src, err := newStreamSource(rs)
	if err != nil {
		return nil, err
	}
	return newIterator(src, opts)
}

func newIterator(src source, opts []Option) (*Iterator, error) {
	o := newOptions(opts)
	// Ensure the global archive header is valid.
	if n := src.remaining(); n < int64(len(GLOBAL_HEADER)) {
		return nil, &FormatError{
			Kind: KindBadMagic,
			Err:  fmt.Errorf("archive is only %d bytes long", n),
		}
	}
	b, err := src.read(int64(len(GLOBAL_HEADER)))
	if err != nil {
		return nil, err
	}
	if string(b) != GLOBAL_HEADER {
		return nil, &FormatError{
			Kind: KindBadMagic,
			Err:  fmt.Errorf("found %q", b),
		}
	}
	it := &Iterator{
		src:       src,
		logger:    o.logger,
		headerOff: src.offset(),
	}
	if src.remaining() == 0 {
		it.state = stateExhausted
	}
	return it, nil
}

// Exhausted reports whether every member has been visited. It stays false while a header is
// held by Peek, even if decoding that header's extended name consumed the last bytes of the
// archive; it becomes true once Advance moves past the final member.
func (it *Iterator) Exhausted() bool {
	return it.state == stateExhausted
}

// Offset returns the archive offset of the current file header.
func (it *Iterator) Offset() int64 {
	if it.state == stateReady || it.state == stateFailed {
		return it.headerOff
	}
	return it.src.offset()
}

// Peek decodes and returns the current file header without advancing past it. Repeated calls
// return the same header. Format errors are returned as an *OffsetError wrapping a *FormatError;
// errors from the underlying reader are returned as they are. Any error ends the iteration.
// Peek returns io.EOF once the iterator is exhausted.
func (it *Iterator) Peek() (*Header, error) {
	switch it.state {
	case stateReady:
		return it.header, nil
	case stateExhausted:
		return nil, io.EOF
	case stateFailed:
		return nil, it.err
	}

	it.headerOff = it.src.offset()
	header, err := it.decode()
	if err != nil {
		var ferr *FormatError
		if errors.As(err, &ferr) {
			err = &OffsetError{Offset: it.headerOff, Err: err}
		}
		return nil, it.fail(err)
	}
	it.logger.Debug("decoded member header",
		"name", header.Name,
		"offset", it.headerOff,
		"size", header.Size,
		"dataStart", header.DataStart,
	)
	it.header, it.state = header, stateReady
	return header, nil
}

// decode consumes the file header at the cursor and, for BSD extended names, the name block
// that follows it.
func (it *Iterator) decode() (*Header, error) {
	b, err := it.src.read(min(HEADER_BYTE_SIZE, it.src.remaining()))
	if err != nil {
		return nil, err
	}
	header, nameSize, err := decodeRecord(b)
	if err != nil {
		return nil, err
	}
	if nameSize == 0 {
		return header, nil
	}
	if n := it.src.remaining(); nameSize > n {
		return nil, &FormatError{
			Kind:  KindInvalidExtendedName,
			Field: "name",
			Err:   fmt.Errorf("name needs %d bytes, only %d available", nameSize, n),
		}
	}
	block, err := it.src.read(nameSize)
	if err != nil {
		return nil, err
	}
	if err := resolveExtendedName(header, block); err != nil {
		return nil, err
	}
	return header, nil
}

// Advance moves past the current member, decoding its header first if Peek has not been called.
// Advance returns io.EOF once the iterator is exhausted.
func (it *Iterator) Advance() error {
	header, err := it.Peek()
	if err != nil {
		return err
	}
	// Decoding consumed the header and the extended name; skip the rest of the data section and its
	// padding. Archives whose last member has an odd size sometimes lack the final padding byte.
	skip := header.paddedSize() - int64(header.DataStart)
	if n := it.src.remaining(); skip > n {
		if skip != n+1 || header.Size%2 == 0 {
			return it.fail(&OffsetError{
				Offset: it.headerOff,
				Err: &FormatError{
					Kind: KindTruncatedMember,
					Err:  fmt.Errorf("member '%s' needs %d more bytes, only %d available", header.Name, skip, n),
				},
			})
		}
		skip = n
	}
	if err := it.src.skip(skip); err != nil {
		return it.fail(err)
	}
	it.header = nil
	if it.src.remaining() == 0 {
		it.state = stateExhausted
	} else {
		it.state = statePending
	}
	return nil
}

// DataOffset returns the archive offset of the current member's contents, after any extended
// name, decoding its header first if necessary.
func (it *Iterator) DataOffset() (int64, error) {
	header, err := it.Peek()
	if err != nil {
		return 0, err
	}
	return it.headerOff + HEADER_BYTE_SIZE + int64(header.DataStart), nil
}

// All returns a sequence of the remaining headers, advancing past each one after it is yielded.
// An error is yielded once and ends the sequence.
func (it *Iterator) All() iter.Seq2[*Header, error] {
	return func(yield func(*Header, error) bool) {
		for !it.Exhausted() {
			header, err := it.Peek()
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(header, nil) {
				return
			}
			if err := it.Advance(); err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

func (it *Iterator) fail(err error) error {
	it.logger.Debug("archive iteration failed", "offset", it.headerOff, "err", err)
	it.state, it.header, it.err = stateFailed, nil, err
	return err
}
