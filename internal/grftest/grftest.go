// Package grftest builds synthetic NewGRF containers for tests.
package grftest

import (
	"encoding/binary"
)

// Builder assembles a container sprite by sprite. Sprite 0, the sprite count,
// is prepended by Bytes.
type Builder struct {
	v2      bool
	sprites [][]byte
	section [][]byte
}

// V1 starts a container with 16-bit framing.
func V1() *Builder { return &Builder{} }

// V2 starts a container with the GRF\x82 signature and 32-bit framing.
func V2() *Builder { return &Builder{v2: true} }

func (b *Builder) size(n int) []byte {
	if b.v2 {
		return binary.LittleEndian.AppendUint32(nil, uint32(n))
	}
	return binary.LittleEndian.AppendUint16(nil, uint16(n))
}

// Pseudo appends a pseudo sprite carrying payload.
func (b *Builder) Pseudo(payload []byte) *Builder {
	s := append(b.size(len(payload)), 0xFF)
	b.sprites = append(b.sprites, append(s, payload...))
	return b
}

// Record appends a record with an arbitrary info byte and body.
func (b *Builder) Record(info byte, body []byte) *Builder {
	s := append(b.size(len(body)), info)
	b.sprites = append(b.sprites, append(s, body...))
	return b
}

// Real appends a v1 real sprite whose pixels are stored compressed.
func (b *Builder) Real(pixels []byte) *Builder {
	return b.RealEncoded(0x01, len(pixels), Compress(pixels))
}

// RealRaw appends a v1 real sprite whose size field is the stored length.
func (b *Builder) RealRaw(data []byte) *Builder {
	return b.RealEncoded(0x03, len(data), data)
}

// RealEncoded appends a v1 real sprite with an explicit info byte, declared
// pixel count and already encoded body.
func (b *Builder) RealEncoded(info byte, pixels int, body []byte) *Builder {
	s := b.size(8 + pixels)
	s = append(s, info, 1, 1, 0, 0, 0, 0, 0)
	b.sprites = append(b.sprites, append(s, body...))
	return b
}

// Reference appends a v2 sprite reference and a matching sprite section entry.
func (b *Builder) Reference(id uint32, data []byte) *Builder {
	s := append(b.size(4), 0xFD)
	s = binary.LittleEndian.AppendUint32(s, id)
	b.sprites = append(b.sprites, s)

	e := binary.LittleEndian.AppendUint32(nil, id)
	e = binary.LittleEndian.AppendUint32(e, uint32(len(data)))
	b.section = append(b.section, append(e, data...))
	return b
}

// Bytes serializes the container.
func (b *Builder) Bytes() []byte {
	count := binary.LittleEndian.AppendUint32(nil, uint32(len(b.sprites)))
	first := append(b.size(len(count)), 0xFF)
	first = append(first, count...)

	var body []byte
	body = append(body, first...)
	for _, s := range b.sprites {
		body = append(body, s...)
	}

	if !b.v2 {
		// The first size doubles as the v1 header.
		body = append(body, 0, 0)
		return binary.LittleEndian.AppendUint32(body, 0x12345678)
	}

	out := []byte{0, 0, 'G', 'R', 'F', 0x82, '\r', '\n', 0x1A, '\n'}
	out = binary.LittleEndian.AppendUint32(out, uint32(len(body)+4+1))
	out = append(out, 0)
	out = append(out, body...)
	out = binary.LittleEndian.AppendUint32(out, 0)
	for _, e := range b.section {
		out = append(out, e...)
	}
	return binary.LittleEndian.AppendUint32(out, 0)
}

// Compress encodes data as literal runs only.
func Compress(data []byte) []byte {
	var out []byte
	for len(data) > 0 {
		n := min(len(data), 0x7F)
		out = append(out, byte(n))
		out = append(out, data[:n]...)
		data = data[n:]
	}
	return out
}

func cstrings(out []byte, strs ...string) []byte {
	for _, s := range strs {
		out = append(out, s...)
		out = append(out, 0)
	}
	return out
}

// Action4 encodes a string table with byte ids (lang < 0x80) or word ids.
func Action4(feature, lang byte, first uint16, strs ...string) []byte {
	out := []byte{0x04, feature, lang, byte(len(strs))}
	switch {
	case lang >= 0x80:
		out = binary.LittleEndian.AppendUint16(out, first)
	case first >= 0xFF:
		out = append(out, 0xFF)
		out = binary.LittleEndian.AppendUint16(out, first)
	default:
		out = append(out, byte(first))
	}
	return cstrings(out, strs...)
}

// Action8 encodes the GRF info action.
func Action8(version byte, grfid uint32, name, desc string) []byte {
	out := []byte{0x08, version}
	out = binary.LittleEndian.AppendUint32(out, grfid)
	return cstrings(out, name, desc)
}

// ActionB encodes a custom error message.
func ActionB(severity, lang byte, text string) []byte {
	return cstrings([]byte{0x0B, severity, lang, 0xFF}, text)
}

// Node is one action 14 node.
type Node struct {
	Type     byte // 'C', 'B' or 'T'
	ID       string
	Lang     byte
	Text     string
	Data     []byte
	Children []Node
}

// Action14 encodes static info nodes.
func Action14(nodes ...Node) []byte {
	return appendNodes([]byte{0x14}, nodes)
}

func appendNodes(out []byte, nodes []Node) []byte {
	for _, n := range nodes {
		out = append(out, n.Type)
		out = append(out, n.ID[:4]...)
		switch n.Type {
		case 'C':
			out = appendNodes(out, n.Children)
		case 'B':
			out = binary.LittleEndian.AppendUint16(out, uint16(len(n.Data)))
			out = append(out, n.Data...)
		case 'T':
			out = append(out, n.Lang)
			out = cstrings(out, n.Text)
		}
	}
	return append(out, 0)
}
