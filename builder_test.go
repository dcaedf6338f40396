package ar

import (
	"bytes"
	"strconv"
)

// archiveBuilder assembles archives for tests, one member at a time.
type archiveBuilder struct {
	buf bytes.Buffer

	// omitFinalPad drops the padding byte after an odd-sized last member.
	omitFinalPad bool
	lastOdd      bool
}

func newArchiveBuilder() *archiveBuilder {
	ab := &archiveBuilder{}
	ab.buf.WriteString(GLOBAL_HEADER)
	return ab
}

// field writes s into b, left-justified and padded with spaces.
func field(b []byte, s string) {
	for len(s) < len(b) {
		s = s + " "
	}
	copy(b, s)
}

// headerRecord encodes a 60-byte file header.
func headerRecord(name string, modTime uint64, uid, gid uint32, mode string, size int) []byte {
	header := make([]byte, HEADER_BYTE_SIZE)
	s := slicer(header)
	field(s.next(nameLen), name)
	field(s.next(mtimeLen), strconv.FormatUint(modTime, 10))
	field(s.next(uidLen), strconv.FormatUint(uint64(uid), 10))
	field(s.next(gidLen), strconv.FormatUint(uint64(gid), 10))
	field(s.next(modeLen), mode)
	field(s.next(sizeLen), strconv.Itoa(size))
	field(s.next(termLen), HEADER_TERMINATOR)
	return header
}

// raw appends a header record followed by data and its padding, exactly as given.
func (ab *archiveBuilder) raw(header []byte, data []byte) *archiveBuilder {
	ab.buf.Write(header)
	ab.buf.Write(data)
	ab.lastOdd = len(data)%2 == 1
	if ab.lastOdd {
		ab.buf.WriteByte('\n')
	}
	return ab
}

// add appends a member whose name fits in the header.
func (ab *archiveBuilder) add(name string, data []byte) *archiveBuilder {
	return ab.raw(headerRecord(name, 1722788759, 0, 0, "100644", len(data)), data)
}

// addBSD appends a member whose name is stored in a nameSize-byte block, padded with nulls, at
// the start of its data section.
func (ab *archiveBuilder) addBSD(name string, nameSize int, data []byte) *archiveBuilder {
	block := make([]byte, nameSize)
	copy(block, name)
	section := append(block, data...)
	return ab.raw(headerRecord("#1/"+strconv.Itoa(nameSize), 1722788759, 0, 0, "100644", len(section)), section)
}

func (ab *archiveBuilder) bytes() []byte {
	b := ab.buf.Bytes()
	if ab.omitFinalPad && ab.lastOdd {
		b = b[:len(b)-1]
	}
	return b
}

// payload returns n bytes of member data.
func payload(n int) []byte {
	return bytes.Repeat([]byte{'x'}, n)
}
