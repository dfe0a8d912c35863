package wld

import (
	"encoding/binary"
	"io"
	"math"
)

// maxStringLen bounds every counted string read.
const maxStringLen = 1_000_000

// Cursor is a positioned little-endian reader over an immutable byte buffer.
// Reads never touch bytes at or past Size; a failed read leaves the position
// unchanged. Out-of-range positions are legal, subsequent reads fail.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor positions a cursor at byte 0 of data. The buffer is borrowed,
// never copied or mutated.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

func (c *Cursor) Size() int { return len(c.data) }

func (c *Cursor) Pos() int { return c.pos }

func (c *Cursor) SetPos(i int) { c.pos = i }

// Seek moves the position relative to whence (io.SeekStart, io.SeekCurrent,
// io.SeekEnd).
func (c *Cursor) Seek(offset int, whence int) {
	switch whence {
	case io.SeekStart:
		c.pos = offset
	case io.SeekCurrent:
		c.pos += offset
	case io.SeekEnd:
		c.pos = len(c.data) + offset
	}
}

func (c *Cursor) AtEOF() bool { return c.pos >= len(c.data) }

// Remaining reports the bytes readable from the current position.
func (c *Cursor) Remaining() int {
	if c.pos < 0 || c.pos >= len(c.data) {
		return 0
	}
	return len(c.data) - c.pos
}

// take returns the next n bytes and advances, or fails with Truncated.
func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || c.pos < 0 || n > len(c.data)-c.pos {
		return nil, errTruncated(c.pos, n)
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Skip advances the position by n bytes, failing with Truncated when fewer
// remain.
func (c *Cursor) Skip(n int) error {
	_, err := c.take(n)
	return err
}

func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) ReadI8() (int8, error) {
	v, err := c.ReadU8()
	return int8(v), err
}

func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) ReadI16() (int16, error) {
	v, err := c.ReadU16()
	return int16(v), err
}

func (c *Cursor) ReadU32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

func (c *Cursor) ReadF32() (float32, error) {
	v, err := c.ReadU32()
	return math.Float32frombits(v), err
}

func (c *Cursor) ReadF64() (float64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// ReadString reads exactly length bytes as UTF-8. A trailing NUL, if the
// file wrote one, is retained. Fails with InvalidLength outside
// [0, maxStringLen], Truncated past EOF.
func (c *Cursor) ReadString(length int) (string, error) {
	if length < 0 || length > maxStringLen {
		return "", errInvalidLength(c.pos, length)
	}
	b, err := c.take(length)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadCString reads bytes up to and including a terminating NUL, which is
// not part of the result. An unterminated string runs to EOF.
func (c *Cursor) ReadCString() string {
	if c.pos < 0 || c.pos >= len(c.data) {
		return ""
	}
	start := c.pos
	for c.pos < len(c.data) {
		if c.data[c.pos] == 0 {
			s := string(c.data[start:c.pos])
			c.pos++
			return s
		}
		c.pos++
	}
	return string(c.data[start:])
}

// ReadFourCC consumes the next four bytes as a chunk tag.
func (c *Cursor) ReadFourCC() (FourCC, error) {
	b, err := c.take(4)
	if err != nil {
		return FourCC{}, err
	}
	return FourCC(b), nil
}

// PeekFourCC returns the next tag without advancing.
func (c *Cursor) PeekFourCC() (FourCC, error) {
	pos := c.pos
	id, err := c.ReadFourCC()
	c.pos = pos
	return id, err
}

// ExpectFourCC consumes a tag and fails with UnexpectedChunk when it is not
// the wanted one. The error's position is the tag's first byte.
func (c *Cursor) ExpectFourCC(want FourCC) error {
	pos := c.pos
	id, err := c.ReadFourCC()
	if err != nil {
		return err
	}
	if id != want {
		return errUnexpected(pos, want, id)
	}
	return nil
}
