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
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DecodeHeader decodes the file header at the start of b. If the header uses a BSD extended
// name, b must also contain the start of the member's data section, from which the name is
// read; otherwise only the first 60 bytes are examined.
func DecodeHeader(b []byte) (*Header, error) {
	header, nameSize, err := decodeRecord(b)
	if err != nil {
		return nil, err
	}
	if nameSize > 0 {
		data := b[HEADER_BYTE_SIZE:]
		if int64(len(data)) < nameSize {
			return nil, &FormatError{
				Kind:  KindInvalidExtendedName,
				Field: "name",
				Err:   fmt.Errorf("name needs %d bytes, only %d available", nameSize, len(data)),
			}
		}
		if err := resolveExtendedName(header, data[:nameSize]); err != nil {
			return nil, err
		}
	}
	return header, nil
}

// decodeRecord decodes the fixed 60-byte part of a file header. If the name field holds a BSD
// extended name, the returned nameSize is the length of the name block that follows the header
// and header.Name is left as the raw "#1/<N>" field; otherwise nameSize is 0.
func decodeRecord(b []byte) (header *Header, nameSize int64, err error) {
	if len(b) < HEADER_BYTE_SIZE {
		return nil, 0, &FormatError{
			Kind: KindTruncatedHeader,
			Err:  fmt.Errorf("need %d bytes, have %d", HEADER_BYTE_SIZE, len(b)),
		}
	}
	if term := b[HEADER_BYTE_SIZE-termLen : HEADER_BYTE_SIZE]; string(term) != HEADER_TERMINATOR {
		return nil, 0, &FormatError{
			Kind: KindBadTerminator,
			Err:  fmt.Errorf("found %q", term),
		}
	}

	s := slicer(b[:HEADER_BYTE_SIZE])
	header = &Header{}
	header.Name = strings.TrimRight(string(s.next(nameLen)), " ")
	if header.ModTime, err = numeric(s.next(mtimeLen), "modTime", 64); err != nil {
		return nil, 0, err
	}
	uid, err := numeric(s.next(uidLen), "ownerId", 32)
	if err != nil {
		return nil, 0, err
	}
	gid, err := numeric(s.next(gidLen), "groupId", 32)
	if err != nil {
		return nil, 0, err
	}
	copy(header.Mode[:], s.next(modeLen))
	size, err := numeric(s.next(sizeLen), "size", 32)
	if err != nil {
		return nil, 0, err
	}
	header.Uid, header.Gid, header.Size = uint32(uid), uint32(gid), uint32(size)

	// A file name consisting of "#1/" followed by an integer indicates that this file has a long name
	// that is prepended to the file's data section. The integer is the length of the prepended data.
	if strings.HasPrefix(header.Name, BSD_NAME_PREFIX) {
		n, err := strconv.ParseUint(header.Name[len(BSD_NAME_PREFIX):], 10, 32)
		if err != nil {
			return nil, 0, &FormatError{Kind: KindInvalidExtendedName, Field: "name", Err: err}
		}
		if n == 0 {
			return nil, 0, &FormatError{
				Kind:  KindInvalidExtendedName,
				Field: "name",
				Err:   errors.New("zero-length name"),
			}
		}
		if n > uint64(header.Size) {
			return nil, 0, &FormatError{
				Kind:  KindInvalidExtendedName,
				Field: "name",
				Err:   fmt.Errorf("name length %d exceeds member size %d", n, header.Size),
			}
		}
		nameSize = int64(n)
	}
	return header, nameSize, nil
}

// resolveExtendedName replaces header.Name with the name stored in block, the first bytes of the
// member's data section. The declared length often exceeds the name (llvm-ar pads it with an
// indeterminate number of nulls), so the name ends at the first null.
func resolveExtendedName(header *Header, block []byte) error {
	end := bytes.IndexByte(block, 0)
	if end == -1 {
		return &FormatError{
			Kind:  KindInvalidExtendedName,
			Field: "name",
			Err:   errors.New("missing null terminator"),
		}
	}
	header.Name = strings.TrimSpace(string(block[:end]))
	header.DataStart = uint32(len(block))
	return nil
}

// numeric parses a space-padded decimal field that must fit in bits.
func numeric(b []byte, field string, bits int) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(string(b)), 10, bits)
	if err != nil {
		return 0, &FormatError{Kind: KindBadNumericField, Field: field, Err: err}
	}
	return n, nil
}
