// Package sprite expands NewGRF-compressed sprite data.
package sprite

import (
	"fmt"

	"grf2txt/internal/grffmt"
)

// Expand decodes the compressed stream at the start of src until exactly size
// output bytes have been produced. It returns the output and the number of
// source bytes consumed.
//
// Stream format, one code byte at a time:
//
//	c < 0x80:  literal run of c bytes (0 means 0x80) copied from src
//	c >= 0x80: copy run of 32-(c>>3) bytes starting ((c&7)<<8 | next) bytes
//	           back in the output; source and destination may overlap
func Expand(src []byte, size int) ([]byte, int, error) {
	if size < 0 {
		return nil, 0, grffmt.Corrupt(fmt.Errorf("sprite: negative size %d", size))
	}
	out := make([]byte, 0, size)
	pos := 0
	for len(out) < size {
		if pos >= len(src) {
			return nil, pos, grffmt.Corrupt(fmt.Errorf("sprite: %w: source ended at %d of %d output bytes",
				grffmt.ErrTruncatedInput, len(out), size))
		}
		code := src[pos]
		pos++

		if code < 0x80 {
			n := int(code)
			if n == 0 {
				n = 0x80
			}
			if n > size-len(out) {
				return nil, pos, grffmt.Corrupt(fmt.Errorf("sprite: literal run %d overshoots size %d at output %d", n, size, len(out)))
			}
			if pos+n > len(src) {
				return nil, pos, grffmt.Corrupt(fmt.Errorf("sprite: %w: literal run %d at source %d", grffmt.ErrTruncatedInput, n, pos))
			}
			out = append(out, src[pos:pos+n]...)
			pos += n
			continue
		}

		n := 32 - int(code>>3)
		if pos >= len(src) {
			return nil, pos, grffmt.Corrupt(fmt.Errorf("sprite: %w: copy offset missing at source %d", grffmt.ErrTruncatedInput, pos))
		}
		offset := int(code&7)<<8 | int(src[pos])
		pos++
		if n > size-len(out) {
			return nil, pos, grffmt.Corrupt(fmt.Errorf("sprite: copy run %d overshoots size %d at output %d", n, size, len(out)))
		}
		if offset == 0 || offset > len(out) {
			return nil, pos, grffmt.Corrupt(fmt.Errorf("sprite: copy offset %d outside %d output bytes", offset, len(out)))
		}
		// Byte at a time: with offset < n the run re-reads bytes it just wrote.
		from := len(out) - offset
		for i := 0; i < n; i++ {
			out = append(out, out[from+i])
		}
	}
	return out, pos, nil
}
