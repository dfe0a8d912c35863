package wld

import "fmt"

// ErrorKind classifies a decode failure.
type ErrorKind int

const (
	KindTruncated ErrorKind = iota + 1
	KindInvalidLength
	KindUnexpectedChunk
	KindWstaNotFound
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindTruncated:
		return "truncated read"
	case KindInvalidLength:
		return "invalid length"
	case KindUnexpectedChunk:
		return "unexpected chunk"
	case KindWstaNotFound:
		return "WSTA not found"
	case KindMalformed:
		return "malformed chunk"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the single error value produced by the decoder. Expected and
// Actual are meaningful only for KindUnexpectedChunk.
type Error struct {
	Kind     ErrorKind
	Pos      int
	Expected FourCC
	Actual   FourCC
	Msg      string
}

func (e *Error) Error() string {
	if e.Kind == KindUnexpectedChunk {
		return fmt.Sprintf("%s: want %q, got %q at byte %d", e.Kind, e.Expected, e.Actual, e.Pos)
	}
	return fmt.Sprintf("%s: %s at byte %d", e.Kind, e.Msg, e.Pos)
}

func errTruncated(pos, n int) *Error {
	return &Error{Kind: KindTruncated, Pos: pos, Msg: fmt.Sprintf("need %d bytes", n)}
}

func errInvalidLength(pos, n int) *Error {
	return &Error{Kind: KindInvalidLength, Pos: pos, Msg: fmt.Sprintf("string length %d", n)}
}

func errUnexpected(pos int, want, got FourCC) *Error {
	return &Error{Kind: KindUnexpectedChunk, Pos: pos, Expected: want, Actual: got}
}

func errWstaNotFound(pos int) *Error {
	return &Error{Kind: KindWstaNotFound, Pos: pos, Msg: "no world state marker in remaining buffer"}
}

func errMalformed(pos int, format string, args ...any) *Error {
	return &Error{Kind: KindMalformed, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
