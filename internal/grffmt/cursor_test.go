package grffmt

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

func TestCursorReadUint(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x34, 0x12, 0x78, 0x56, 0x34, 0x12})
	b, err := c.ReadUint8()
	if err != nil || b != 0x01 {
		t.Fatalf("ReadUint8 = %#x, %v", b, err)
	}
	w, err := c.ReadUint16()
	if err != nil || w != 0x1234 {
		t.Fatalf("ReadUint16 = %#x, %v", w, err)
	}
	d, err := c.ReadUint32()
	if err != nil || d != 0x12345678 {
		t.Fatalf("ReadUint32 = %#x, %v", d, err)
	}
	if c.Remaining() != 0 {
		t.Errorf("remaining = %d, want 0", c.Remaining())
	}
}

func TestCursorBigEndian(t *testing.T) {
	c := NewCursor([]byte{0x12, 0x34}).WithOrder(binary.BigEndian)
	w, err := c.ReadUint16()
	if err != nil || w != 0x1234 {
		t.Fatalf("ReadUint16 BE = %#x, %v", w, err)
	}
}

func TestCursorTruncated(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02, 0x03})
	if _, err := c.ReadUint32(); !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("ReadUint32 err = %v, want ErrTruncatedInput", err)
	}
	// A failed read must not move the cursor.
	if c.Position() != 0 {
		t.Errorf("position = %d after failed read, want 0", c.Position())
	}
	if _, err := c.Take(4); !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("Take(4) err = %v", err)
	}
	if err := c.Skip(4); !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("Skip(4) err = %v", err)
	}
	if _, err := c.Peek(-1); !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("Peek(-1) err = %v", err)
	}
}

func TestCursorPeekTake(t *testing.T) {
	c := NewCursor([]byte("abcdef"))
	p, err := c.Peek(2)
	if err != nil || string(p) != "ab" {
		t.Fatalf("Peek = %q, %v", p, err)
	}
	if c.Position() != 0 {
		t.Errorf("Peek moved cursor to %d", c.Position())
	}
	tk, err := c.Take(3)
	if err != nil || string(tk) != "abc" {
		t.Fatalf("Take = %q, %v", tk, err)
	}
	if err := c.Skip(1); err != nil {
		t.Fatal(err)
	}
	if c.Remaining() != 2 {
		t.Errorf("remaining = %d, want 2", c.Remaining())
	}
}

func TestCursorExtByte(t *testing.T) {
	tests := []struct {
		in   []byte
		want uint16
	}{
		{[]byte{0x10}, 0x10},
		{[]byte{0xFE}, 0xFE},
		{[]byte{0xFF, 0x00, 0x01}, 0x0100},
	}
	for _, tt := range tests {
		got, err := NewCursor(tt.in).ReadExtByte()
		if err != nil {
			t.Errorf("ReadExtByte(%x): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ReadExtByte(%x) = %#x, want %#x", tt.in, got, tt.want)
		}
	}

	c := NewCursor([]byte{0xFF, 0x01})
	if _, err := c.ReadExtByte(); !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("short ext byte err = %v", err)
	}
	if c.Position() != 0 {
		t.Errorf("position = %d after failed ext byte", c.Position())
	}
}

func TestCursorCString(t *testing.T) {
	c := NewCursor([]byte("hello\x00world\x00tail"))
	for _, want := range []string{"hello", "world"} {
		got, err := c.ReadCString()
		if err != nil {
			t.Fatalf("ReadCString: %v", err)
		}
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
	if _, err := c.ReadCString(); !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("unterminated err = %v", err)
	}
}

func TestCursorAt(t *testing.T) {
	c := NewCursorAt([]byte{0, 0, 0, 7}, 3)
	if c.Position() != 3 || c.Remaining() != 1 {
		t.Fatalf("pos=%d rem=%d", c.Position(), c.Remaining())
	}
	c.SetPosition(100)
	if c.Position() != 4 {
		t.Errorf("SetPosition clamp = %d, want 4", c.Position())
	}
}

func TestCorruptWrapping(t *testing.T) {
	err := Corrupt(ErrTruncatedInput)
	if !errors.Is(err, ErrCorruptChunk) || !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("Corrupt(truncated) = %v, want both kinds", err)
	}
	ce := &ChunkError{Sprite: 3, Offset: 0x10, Err: err}
	if !errors.Is(ce, ErrCorruptChunk) {
		t.Errorf("ChunkError does not unwrap: %v", ce)
	}

	var d Diags
	d.AddErr(0x10, 3, err)
	if d.Items()[0].Kind != DiagTruncated {
		t.Errorf("kind = %s, want truncated", d.Items()[0].Kind)
	}
	d.AddErr(0x20, 4, Corrupt(errors.New("bad size")))
	if d.Items()[1].Kind != DiagCorrupt {
		t.Errorf("kind = %s, want corrupt_chunk", d.Items()[1].Kind)
	}

	d.AddErr(0x10, 3, ce)
	got := d.Items()[2]
	if got.Kind != DiagTruncated || got.Msg != err.Error() {
		t.Errorf("chunk error diag = %+v", got)
	}
	if s := got.String(); strings.Count(s, "sprite 3") != 1 {
		t.Errorf("diag string = %q, location repeated", s)
	}
}

func TestStringIDNames(t *testing.T) {
	tests := []struct {
		id   StringID
		want string
	}{
		{FeatureString(0x00, 256), "STR_TRAIN_256"},
		{FeatureString(0x30, 1), "STR_48_1"},
		{ExtendedString(0xD000), "STR_GENERIC_D000"},
		{ExtendedString(0xC400), "STR_STATION_CLASS_0_NAME"},
		{ExtendedString(0xC501), "STR_STATION_1_NAME"},
		{ExtendedString(0xC902), "STR_HOUSE_2_NAME"},
		{ErrorString(19), "STR_ERROR_19"},
		{InfoString(InfoName), "STR_GRF_NAME"},
		{InfoString(InfoURL), "STR_GRF_URL"},
		{StringID{Space: SpaceParamName}, "STR_PARAM_0_NAME"},
		{StringID{Space: SpaceParamDesc, Index: 2}, "STR_PARAM_2_DESCRIPTION"},
	}
	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.id, got, tt.want)
		}
	}
	if CanonicalLang(0x82) != 0x02 || CanonicalLang(0xFF) != LangGeneric {
		t.Error("CanonicalLang did not strip the high bit")
	}
}
