package ar

import (
	"fmt"
)

// ErrorKind classifies a FormatError.
type ErrorKind int

const (
	// KindBadMagic means the archive does not begin with "!<arch>\n".
	KindBadMagic ErrorKind = iota + 1

	// KindTruncatedHeader means fewer than 60 bytes remained where a file header was expected.
	KindTruncatedHeader

	// KindBadTerminator means a file header did not end with "`\n".
	KindBadTerminator

	// KindBadNumericField means a decimal header field could not be parsed.
	KindBadNumericField

	// KindInvalidExtendedName means a BSD "#1/<N>" name was malformed, truncated or not
	// NUL-terminated.
	KindInvalidExtendedName

	// KindTruncatedMember means the archive ended inside a member's data section.
	KindTruncatedMember
)

func (k ErrorKind) String() string {
	switch k {
	case KindBadMagic:
		return "not an AR archive"
	case KindTruncatedHeader:
		return "truncated header"
	case KindBadTerminator:
		return "bad header terminator"
	case KindBadNumericField:
		return "bad numeric field"
	case KindInvalidExtendedName:
		return "invalid extended name length"
	case KindTruncatedMember:
		return "truncated member data"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

var (
	// ErrBadMagic matches any FormatError of kind KindBadMagic.
	ErrBadMagic = &FormatError{Kind: KindBadMagic}

	// ErrTruncatedHeader matches any FormatError of kind KindTruncatedHeader.
	ErrTruncatedHeader = &FormatError{Kind: KindTruncatedHeader}

	// ErrBadTerminator matches any FormatError of kind KindBadTerminator.
	ErrBadTerminator = &FormatError{Kind: KindBadTerminator}

	// ErrBadNumericField matches any FormatError of kind KindBadNumericField.
	ErrBadNumericField = &FormatError{Kind: KindBadNumericField}

	// ErrInvalidExtendedName matches any FormatError of kind KindInvalidExtendedName.
	ErrInvalidExtendedName = &FormatError{Kind: KindInvalidExtendedName}

	// ErrTruncatedMember matches any FormatError of kind KindTruncatedMember.
	ErrTruncatedMember = &FormatError{Kind: KindTruncatedMember}
)

// FormatError indicates that the archive is structurally invalid. Errors from the underlying
// reader are never reported as a FormatError.
type FormatError struct {
	Kind ErrorKind

	// Field names the offending header field, if any.
	Field string

	Err error
}

func (e *FormatError) Error() string {
	msg := "ar: " + e.Kind.String()
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a FormatError of the same kind. A target with a Field only
// matches errors in that field.
func (e *FormatError) Is(target error) bool {
	t, ok := target.(*FormatError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Field == "" || t.Field == e.Field)
}

// OffsetError records the archive offset of the file header that could not be decoded.
type OffsetError struct {
	// Offset is counted in bytes from the start of the archive, including the global header.
	Offset int64
	Err    error
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("at offset %d: %s", e.Offset, e.Err)
}

func (e *OffsetError) Unwrap() error {
	return e.Err
}
