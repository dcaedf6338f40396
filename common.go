package ar

import (
	"io/fs"
	"strconv"
	"strings"
	"time"
)

const (
	HEADER_BYTE_SIZE = 60
	GLOBAL_HEADER    = "!<arch>\n"

	// HEADER_TERMINATOR ends every file header.
	HEADER_TERMINATOR = "\x60\x0a"

	// BSD_NAME_PREFIX marks a file name that is stored at the start of the data section; the
	// digits that follow give the length of that stored name.
	BSD_NAME_PREFIX = "#1/"
)

// Field widths of a file header, in the order they appear.
const (
	nameLen  = 16
	mtimeLen = 12
	uidLen   = 6
	gidLen   = 6
	modeLen  = 8
	sizeLen  = 10
	termLen  = 2
)

// Header is a decoded ar file header.
type Header struct {
	// Name is the member's file name with trailing padding removed. For BSD extended names it is
	// the name stored at the start of the data section.
	Name string

	// ModTime is the modification time in seconds since the Unix epoch.
	ModTime uint64

	Uid uint32
	Gid uint32

	// Mode is the raw mode field, copied verbatim.
	Mode [modeLen]byte

	// Size is the length of the data section, including any extended name but excluding the
	// padding byte.
	Size uint32

	// DataStart is the number of bytes at the start of the data section that hold the file name,
	// or 0 if the name was stored in the header itself.
	DataStart uint32
}

// Modified returns ModTime as a time.Time.
func (h *Header) Modified() time.Time {
	return time.Unix(int64(h.ModTime), 0)
}

// FileMode interprets the raw mode field as an octal st_mode value.
func (h *Header) FileMode() (fs.FileMode, error) {
	s := strings.TrimSpace(string(h.Mode[:]))
	m, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, &FormatError{Kind: KindBadNumericField, Field: "mode", Err: err}
	}
	mode := fs.FileMode(m & 0777)
	switch m & 0170000 {
	case 0040000:
		mode |= fs.ModeDir
	case 0120000:
		mode |= fs.ModeSymlink
	}
	return mode, nil
}

// paddedSize is the number of bytes the data section occupies in the archive.
func (h *Header) paddedSize() int64 {
	n := int64(h.Size)
	if n%2 == 1 {
		n++
	}
	return n
}

type slicer []byte

func (sp *slicer) next(n int) (b []byte) {
	s := *sp
	b, *sp = s[0:n], s[n:]
	return
}
