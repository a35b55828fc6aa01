package bencode

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	UnexpectedByte ErrorKind = iota
	UnexpectedEndOfFile
	InvalidByteStringLength
	InvalidUTF8
	ParseInt
	NestingTooDeep
	NonCanonical
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedByte:
		return "unexpected byte"
	case UnexpectedEndOfFile:
		return "unexpected end of file"
	case InvalidByteStringLength:
		return "invalid byte string length"
	case InvalidUTF8:
		return "invalid utf-8"
	case ParseInt:
		return "invalid integer"
	case NestingTooDeep:
		return "nesting too deep"
	case NonCanonical:
		return "non-canonical encoding"
	default:
		return fmt.Sprintf("error kind(%d)", int(k))
	}
}

var ErrInvalidUTF8 = errors.New("invalid utf-8 sequence")

// DecodeError describes why and where decoding stopped.
//
// Offset is relative to the start of the innermost production being parsed:
// the byte after 'i' for integers, the first length digit for byte strings,
// the byte after 'l' or 'd' for lists and dictionaries, and 0 at top level.
// Pos is the same location measured from the start of the whole input.
type DecodeError struct {
	Kind   ErrorKind
	Byte   byte
	Offset int
	Pos    int
	Length int
	Err    error
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case UnexpectedByte:
		return fmt.Sprintf("unexpected byte 0x%02x at index %d", e.Byte, e.Pos)
	case UnexpectedEndOfFile:
		return "unexpected end of file"
	case InvalidByteStringLength:
		return fmt.Sprintf("invalid byte string length %d at index %d", e.Length, e.Pos)
	case NestingTooDeep:
		return fmt.Sprintf("nesting too deep at index %d", e.Pos)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s at index %d: %v", e.Kind, e.Pos, e.Err)
	}
	return fmt.Sprintf("%s at index %d", e.Kind, e.Pos)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is matches another *DecodeError of the same kind, so callers can test with
// errors.Is(err, &DecodeError{Kind: UnexpectedEndOfFile}).
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	return ok && t.Kind == e.Kind
}
