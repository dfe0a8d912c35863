package wld

// Scanner primitives. FourCCs are not aligned within a WLD file, so every
// scan steps one byte at a time.

// FindFourCC scans forward from the current position for id. On a match the
// cursor is left at the match (tag not consumed) and its offset is returned;
// otherwise the cursor is restored and ok is false.
func (c *Cursor) FindFourCC(id FourCC) (pos int, ok bool) {
	for i := max(c.pos, 0); i+4 <= len(c.data); i++ {
		if FourCC(c.data[i:i+4]) == id {
			c.pos = i
			return i, true
		}
	}
	return 0, false
}

// SkipToFourCC advances the cursor to the start of the next occurrence of
// id, or to EOF when there is none.
func (c *Cursor) SkipToFourCC(id FourCC) {
	for i := max(c.pos, 0); ; i++ {
		if i+4 > len(c.data) {
			c.pos = len(c.data)
			return
		}
		if FourCC(c.data[i:i+4]) == id {
			c.pos = i
			return
		}
	}
}

// SkipSized reads a 32-bit size field and skips that many bytes. The size is
// honored only when it lies strictly inside (0, envelope) and within the
// remaining buffer; otherwise a Malformed error is returned and the cursor
// stays just past the size field.
func (c *Cursor) SkipSized(envelope int) error {
	pos := c.pos
	n, err := c.ReadI32()
	if err != nil {
		return err
	}
	size := int(n)
	if size <= 0 || size >= envelope {
		return errMalformed(pos, "chunk size %d outside (0, %d)", size, envelope)
	}
	if size > c.Remaining() {
		return errMalformed(pos, "chunk size %d exceeds %d remaining", size, c.Remaining())
	}
	c.pos += size
	return nil
}
