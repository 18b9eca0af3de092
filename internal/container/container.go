// Package container walks the sprite stream of a NewGRF container.
package container

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"grf2txt/internal/grffmt"
	"grf2txt/internal/sprite"
)

// Version identifies the container framing.
type Version int

const (
	V1 Version = 1
	V2 Version = 2
)

func (v Version) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	}
	return fmt.Sprintf("Unknown(%d)", int(v))
}

// v2Signature follows the leading zero uint16 of a v2 container.
var v2Signature = [8]byte{'G', 'R', 'F', 0x82, '\r', '\n', 0x1A, '\n'}

// Info bytes with a fixed meaning.
const (
	InfoPseudo    = 0xFF
	InfoReference = 0xFD // v2: sprite stored in the sprite section

	infoRawSize = 0x02 // v1: size is the stored length, no expansion needed
)

// v1 real sprite header: info, height u8, width u16, x i16, y i16.
const v1SpriteHeader = 8

// Kind classifies a chunk.
type Kind int

const (
	KindPseudo Kind = iota
	KindReal
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindPseudo:
		return "pseudo"
	case KindReal:
		return "real"
	case KindReference:
		return "reference"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Chunk is one sprite record of the data section.
type Chunk struct {
	Index   int    // sprite number, 0 is the sprite count
	Offset  int    // offset of the size field
	Kind    Kind   //
	Info    byte   // info byte as stored
	Size    int    // declared size
	Payload []byte // pseudo sprites only; aliases the container buffer
}

// Info summarizes a walked container.
type Info struct {
	Version       Version `json:"version"`
	SpriteSection uint32  `json:"sprite_section_offset,omitempty"`
	Pseudo        int     `json:"pseudo_sprites"`
	Real          int     `json:"real_sprites"`
	References    int     `json:"sprite_references"`
	SpriteData    int     `json:"sprite_section_entries"`
	Skipped       int     `json:"skipped_records,omitempty"` // v2 records with an unknown info byte
	Checksum      uint32  `json:"checksum,omitempty"`
	MD5           string  `json:"md5,omitempty"` // data section, empty until Done
	Complete      bool    `json:"complete"`
}

type state int

const (
	stateBody state = iota
	stateDone
)

// Reader is a pull parser over a complete container buffer.
type Reader struct {
	data  []byte
	cur   *grffmt.Cursor
	opts  grffmt.Options
	diags *grffmt.Diags
	state state
	info  Info
	next  int // size of the next chunk, already read
	index int
	err   error // deferred failure reading the next size
}

// Open validates the container header and positions the reader at the first
// chunk. Any header failure is ErrUnsupportedVersion.
func Open(data []byte, opts grffmt.Options, diags *grffmt.Diags) (*Reader, error) {
	if diags == nil {
		diags = &grffmt.Diags{}
	}
	r := &Reader{data: data, cur: grffmt.NewCursor(data), opts: opts, diags: diags}
	if err := r.readHeader(); err != nil {
		return nil, fmt.Errorf("%w: %w", grffmt.ErrUnsupportedVersion, err)
	}
	return r, nil
}

func (r *Reader) readHeader() error {
	first, err := r.cur.ReadUint16()
	if err != nil {
		return err
	}
	if first != 0 {
		r.info.Version = V1
		r.next = int(first)
		return nil
	}

	sig, err := r.cur.Take(len(v2Signature))
	if err != nil {
		return err
	}
	if [8]byte(sig) != v2Signature {
		return fmt.Errorf("bad signature %x (want %x)", sig, v2Signature)
	}
	r.info.Version = V2
	if r.info.SpriteSection, err = r.cur.ReadUint32(); err != nil {
		return err
	}
	compression, err := r.cur.ReadUint8()
	if err != nil {
		return err
	}
	if compression != 0 {
		return fmt.Errorf("unknown compression %d", compression)
	}
	size, err := r.cur.ReadUint32()
	if err != nil {
		return err
	}
	r.next = int(size)
	return nil
}

// Version returns the detected container version.
func (r *Reader) Version() Version { return r.info.Version }

// Info returns the summary gathered so far.
func (r *Reader) Info() Info { return r.info }

// Next returns the next data-section chunk. It returns io.EOF once the
// terminating zero size has been read and the trailer validated. Errors
// wrap ErrCorruptChunk; the reader cannot continue after one. A v2 record
// with an unknown info byte still states its size, so in best-effort mode it
// is skipped with a diagnostic instead.
func (r *Reader) Next() (Chunk, error) {
	for {
		if r.state == stateDone {
			return Chunk{}, io.EOF
		}
		if r.err != nil {
			r.state = stateDone
			return Chunk{}, r.err
		}
		if r.next == 0 {
			r.finish()
			return Chunk{}, io.EOF
		}
		if r.index >= r.opts.EffectiveMaxSteps() {
			r.state = stateDone
			r.diags.Addf(uint64(r.cur.Position()), r.index, grffmt.DiagClamped, "stopped after %d sprites", r.index)
			return Chunk{}, io.EOF
		}

		ch, skipped, err := r.readChunk()
		if err != nil {
			cerr := &grffmt.ChunkError{Sprite: r.index, Offset: ch.Offset, Err: grffmt.Corrupt(err)}
			if !skipped || r.opts.Mode == grffmt.ModeStrict {
				r.state = stateDone
				return Chunk{}, cerr
			}
			r.diags.AddErr(uint64(ch.Offset), r.index, cerr)
			r.info.Skipped++
		}
		r.index++

		// The chunk itself is intact; a missing size surfaces on the next call.
		size, err := r.readSize()
		if err != nil {
			r.err = &grffmt.ChunkError{Sprite: r.index, Offset: r.cur.Position(), Err: grffmt.Corrupt(err)}
		}
		r.next = size
		if !skipped {
			return ch, nil
		}
	}
}

func (r *Reader) sizeWidth() int {
	if r.info.Version == V2 {
		return 4
	}
	return 2
}

func (r *Reader) readSize() (int, error) {
	if r.info.Version == V2 {
		v, err := r.cur.ReadUint32()
		return int(v), err
	}
	v, err := r.cur.ReadUint16()
	return int(v), err
}

// readChunk reads the chunk at the cursor. skipped reports that the chunk was
// rejected but the cursor already sits on the next record.
func (r *Reader) readChunk() (ch Chunk, skipped bool, err error) {
	ch = Chunk{
		Index:  r.index,
		Offset: r.cur.Position() - r.sizeWidth(),
		Size:   r.next,
	}
	info, err := r.cur.ReadUint8()
	if err != nil {
		return ch, false, err
	}
	ch.Info = info

	switch {
	case info == InfoPseudo:
		ch.Kind = KindPseudo
		if ch.Payload, err = r.cur.Take(ch.Size); err != nil {
			return ch, false, err
		}
		r.info.Pseudo++

	case r.info.Version == V2 && info == InfoReference:
		ch.Kind = KindReference
		if err := r.cur.Skip(ch.Size); err != nil {
			return ch, false, err
		}
		r.info.References++

	case r.info.Version == V1:
		ch.Kind = KindReal
		if err := r.skipRealV1(ch); err != nil {
			return ch, false, err
		}
		r.info.Real++

	default:
		if err := r.cur.Skip(ch.Size); err != nil {
			return ch, false, err
		}
		return ch, true, fmt.Errorf("unknown info byte 0x%02x", info)
	}
	return ch, false, nil
}

// skipRealV1 moves past a v1 real sprite. Without infoRawSize the declared size
// counts expanded pixels, so the stored length is only known after expansion.
func (r *Reader) skipRealV1(ch Chunk) error {
	if ch.Size < v1SpriteHeader {
		return fmt.Errorf("real sprite size %d below header size", ch.Size)
	}
	if err := r.cur.Skip(v1SpriteHeader - 1); err != nil {
		return err
	}
	size := ch.Size - v1SpriteHeader
	if ch.Info&infoRawSize != 0 {
		return r.cur.Skip(size)
	}
	rest, _ := r.cur.Peek(r.cur.Remaining())
	_, consumed, err := sprite.Expand(rest, size)
	if err != nil {
		return err
	}
	return r.cur.Skip(consumed)
}

// finish validates everything after the data section. Problems here are
// diagnostics only; every string has already been seen.
func (r *Reader) finish() {
	r.state = stateDone
	r.info.Complete = true

	switch r.info.Version {
	case V1:
		end := r.cur.Position()
		if v, err := r.cur.ReadUint32(); err == nil {
			r.info.Checksum = v
		} else if v, err := r.cur.ReadUint16(); err == nil {
			// Some v1 files carry a 16-bit checksum. OpenTTD never reads it.
			r.info.Checksum = uint32(v)
		} else {
			r.diags.Add(uint64(end), -1, grffmt.DiagTruncated, "missing checksum")
		}
		r.setMD5(r.cur.Position())
	case V2:
		r.setMD5(r.cur.Position())
		if err := r.walkSpriteSection(); err != nil {
			r.diags.AddErr(uint64(r.cur.Position()), -1, err)
			return
		}
	}

	if n := r.cur.Remaining(); n > 0 {
		r.diags.Addf(uint64(r.cur.Position()), -1, grffmt.DiagTrailing, "%d bytes of junk at end of file", n)
	}
}

func (r *Reader) setMD5(end int) {
	sum := md5.Sum(r.data[:end])
	r.info.MD5 = hex.EncodeToString(sum[:])
}

func (r *Reader) walkSpriteSection() error {
	for {
		id, err := r.cur.ReadUint32()
		if err != nil {
			return err
		}
		if id == 0 {
			return nil
		}
		size, err := r.cur.ReadUint32()
		if err != nil {
			return err
		}
		if err := r.cur.Skip(int(size)); err != nil {
			return fmt.Errorf("sprite section entry %d: %w", id, err)
		}
		r.info.SpriteData++
	}
}

// Walk calls fn for each chunk in order. Chunk errors end the walk and are
// returned; errors from fn are returned unchanged.
func Walk(r *Reader, fn func(Chunk) error) error {
	for {
		ch, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(ch); err != nil {
			return err
		}
	}
}
