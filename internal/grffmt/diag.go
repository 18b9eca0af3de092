// Package grffmt provides the byte cursor, shared identifiers and diagnostics
// used throughout NewGRF container parsing.
package grffmt

import (
	"errors"
	"fmt"
)

var (
	ErrTruncatedInput     = errors.New("grf: truncated input")
	ErrCorruptChunk       = errors.New("grf: corrupt chunk")
	ErrUnsupportedVersion = errors.New("grf: unsupported container version")
)

// ChunkError locates a failure at a sprite inside the container.
type ChunkError struct {
	Sprite int
	Offset int
	Err    error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("sprite %d at 0x%x: %v", e.Sprite, e.Offset, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

// Corrupt wraps err so that it matches both ErrCorruptChunk and err itself.
func Corrupt(err error) error {
	if err == nil || errors.Is(err, ErrCorruptChunk) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrCorruptChunk, err)
}

// DiagKind classifies a diagnostic message.
type DiagKind string

const (
	DiagTruncated DiagKind = "truncated"
	DiagCorrupt   DiagKind = "corrupt_chunk"
	DiagTrailing  DiagKind = "trailing_data"
	DiagClamped   DiagKind = "clamped"
)

// Diag records a non-fatal issue encountered during parsing.
type Diag struct {
	Offset uint64   `json:"offset"`
	Sprite int      `json:"sprite"`
	Kind   DiagKind `json:"kind"`
	Msg    string   `json:"msg"`
}

func (d Diag) String() string {
	if d.Sprite < 0 {
		return fmt.Sprintf("[%s] 0x%x: %s", d.Kind, d.Offset, d.Msg)
	}
	return fmt.Sprintf("[%s] sprite %d at 0x%x: %s", d.Kind, d.Sprite, d.Offset, d.Msg)
}

// Diags accumulates diagnostics.
type Diags struct {
	items []Diag
}

func (d *Diags) Add(offset uint64, sprite int, kind DiagKind, msg string) {
	d.items = append(d.items, Diag{Offset: offset, Sprite: sprite, Kind: kind, Msg: msg})
}

func (d *Diags) Addf(offset uint64, sprite int, kind DiagKind, format string, args ...any) {
	d.items = append(d.items, Diag{Offset: offset, Sprite: sprite, Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

// AddErr classifies err and records it. Truncation wins over corruption so the
// kind reflects the root cause. A ChunkError contributes only its cause, since
// the diagnostic already carries the location.
func (d *Diags) AddErr(offset uint64, sprite int, err error) {
	kind := DiagCorrupt
	if errors.Is(err, ErrTruncatedInput) {
		kind = DiagTruncated
	}
	msg := err.Error()
	var ce *ChunkError
	if errors.As(err, &ce) {
		msg = ce.Err.Error()
	}
	d.Add(offset, sprite, kind, msg)
}

func (d *Diags) Items() []Diag { return d.items }
func (d *Diags) Len() int      { return len(d.items) }

// Mode controls error handling behavior.
type Mode int

const (
	ModeBestEffort Mode = iota // record diagnostics and keep walking
	ModeStrict                 // first chunk error is returned
)

// Options controls parsing behavior across packages.
type Options struct {
	Mode     Mode
	MaxSteps int // chunk cap; 0 = use default
}

// DefaultMaxSteps is the default chunk cap.
const DefaultMaxSteps = 10_000_000

func (o Options) EffectiveMaxSteps() int {
	if o.MaxSteps > 0 {
		return o.MaxSteps
	}
	return DefaultMaxSteps
}
