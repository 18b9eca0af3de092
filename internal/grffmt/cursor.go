// NewGRF byte cursor.
// Every read is bounds checked; a short read never advances the position.
package grffmt

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Cursor reads forward over an in-memory byte slice.
type Cursor struct {
	data  []byte
	pos   int
	end   int
	order binary.ByteOrder
}

// NewCursor creates a little-endian cursor over data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data, pos: 0, end: len(data), order: binary.LittleEndian}
}

// NewCursorAt creates a cursor starting at offset within data.
func NewCursorAt(data []byte, offset int) *Cursor {
	if offset > len(data) {
		offset = len(data)
	}
	return &Cursor{data: data, pos: offset, end: len(data), order: binary.LittleEndian}
}

// WithOrder switches the byte order used by multi-byte reads.
func (c *Cursor) WithOrder(order binary.ByteOrder) *Cursor {
	c.order = order
	return c
}

// Position returns the current read position.
func (c *Cursor) Position() int { return c.pos }

// SetPosition resumes reading at pos. Used only to return to a saved offset.
func (c *Cursor) SetPosition(pos int) {
	if pos > c.end {
		pos = c.end
	}
	if pos < 0 {
		pos = 0
	}
	c.pos = pos
}

// Remaining returns bytes left to read.
func (c *Cursor) Remaining() int { return c.end - c.pos }

func (c *Cursor) need(n int) error {
	if n < 0 || n > c.end-c.pos {
		return fmt.Errorf("%w: need %d bytes at 0x%x, have %d", ErrTruncatedInput, n, c.pos, c.end-c.pos)
	}
	return nil
}

// Peek returns the next n bytes without consuming them. The result aliases
// the underlying buffer.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	return c.data[c.pos : c.pos+n], nil
}

// Take consumes n bytes. The result aliases the underlying buffer.
func (c *Cursor) Take(n int) ([]byte, error) {
	b, err := c.Peek(n)
	if err != nil {
		return nil, err
	}
	c.pos += n
	return b, nil
}

// Skip advances the position by n bytes.
func (c *Cursor) Skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.pos += n
	return nil
}

// ReadUint8 reads a single byte.
func (c *Cursor) ReadUint8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

// ReadUint16 reads a uint16 in the cursor's byte order.
func (c *Cursor) ReadUint16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := c.order.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

// ReadUint32 reads a uint32 in the cursor's byte order.
func (c *Cursor) ReadUint32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := c.order.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

// ReadExtByte reads a NewGRF extended byte: 0xFF escapes to a following uint16.
func (c *Cursor) ReadExtByte() (uint16, error) {
	start := c.pos
	b, err := c.ReadUint8()
	if err != nil {
		return 0, err
	}
	if b != 0xFF {
		return uint16(b), nil
	}
	v, err := c.ReadUint16()
	if err != nil {
		c.pos = start
		return 0, err
	}
	return v, nil
}

// ReadCString reads a zero-terminated byte string. The terminator is consumed
// but not returned. A missing terminator is a truncation.
func (c *Cursor) ReadCString() ([]byte, error) {
	i := bytes.IndexByte(c.data[c.pos:c.end], 0)
	if i < 0 {
		return nil, fmt.Errorf("%w: unterminated string at 0x%x", ErrTruncatedInput, c.pos)
	}
	s := c.data[c.pos : c.pos+i]
	c.pos += i + 1
	return s, nil
}
