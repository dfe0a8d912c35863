package wld

import (
	"errors"
	"testing"
)

func TestFindFourCCUnaligned(t *testing.T) {
	// WSTA at offset 3: scans must step one byte at a time.
	data := append([]byte{'x', 'y', 'z'}, []byte("WSTAtail")...)
	c := NewCursor(data)
	pos, ok := c.FindFourCC(fccWSTA)
	if !ok || pos != 3 {
		t.Fatalf("FindFourCC = %d, %v", pos, ok)
	}
	if c.Pos() != 3 {
		t.Fatalf("cursor at %d, want 3 (tag not consumed)", c.Pos())
	}
}

func TestFindFourCCNotFoundRestores(t *testing.T) {
	c := NewCursor([]byte("no markers here"))
	c.SetPos(5)
	if _, ok := c.FindFourCC(fccWSTA); ok {
		t.Fatal("unexpected match")
	}
	if c.Pos() != 5 {
		t.Fatalf("cursor at %d after failed scan, want 5", c.Pos())
	}
}

func TestSkipToFourCC(t *testing.T) {
	c := NewCursor([]byte("..WEND.."))
	c.SkipToFourCC(fccWEND)
	if c.Pos() != 2 {
		t.Fatalf("cursor at %d, want 2", c.Pos())
	}

	c = NewCursor([]byte("nothing"))
	c.SkipToFourCC(fccWEND)
	if !c.AtEOF() {
		t.Fatalf("cursor at %d, want EOF", c.Pos())
	}
}

func TestSkipSized(t *testing.T) {
	c := NewCursor([]byte{3, 0, 0, 0, 'a', 'b', 'c', 'd'})
	if err := c.SkipSized(100); err != nil {
		t.Fatalf("SkipSized: %v", err)
	}
	if c.Pos() != 7 {
		t.Fatalf("cursor at %d, want 7", c.Pos())
	}
}

func TestSkipSizedRejections(t *testing.T) {
	cases := []struct {
		name     string
		data     []byte
		envelope int
	}{
		{"zero size", []byte{0, 0, 0, 0, 1, 2}, 100},
		{"negative size", []byte{0xff, 0xff, 0xff, 0xff, 1, 2}, 100},
		{"above envelope", []byte{50, 0, 0, 0}, 10},
		{"beyond buffer", []byte{9, 0, 0, 0, 1, 2}, 100},
	}
	for _, tc := range cases {
		c := NewCursor(tc.data)
		err := c.SkipSized(tc.envelope)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		var e *Error
		if !errors.As(err, &e) || e.Kind != KindMalformed {
			t.Fatalf("%s: expected Malformed, got %v", tc.name, err)
		}
		if c.Pos() != 4 { // the size field stays consumed, nothing else
			t.Fatalf("%s: cursor at %d, want 4", tc.name, c.Pos())
		}
	}
}
