package strtab

import (
	"errors"
	"reflect"
	"testing"

	"grf2txt/internal/grffmt"
	"grf2txt/internal/grfstr"
)

func record(t *testing.T, b *Builder, lang uint8, id grffmt.StringID, raw string, sprite int) {
	t.Helper()
	if err := b.Record(lang, id, grfstr.Decode([]byte(raw)), []byte(raw), sprite); err != nil {
		t.Fatal(err)
	}
}

func TestLastWriteWins(t *testing.T) {
	b := NewBuilder()
	a, c := grffmt.FeatureString(0, 1), grffmt.FeatureString(0, 2)
	record(t, b, 0x7F, a, "first", 1)
	record(t, b, 0x7F, c, "other", 1)
	record(t, b, 0x7F, a, "second", 2)

	tab := b.Finalize()
	l, ok := tab.Language(grffmt.LangGeneric)
	if !ok {
		t.Fatal("generic language missing")
	}
	if l.Len() != 2 {
		t.Errorf("len = %d, want 2", l.Len())
	}
	if !reflect.DeepEqual(l.IDs(), []grffmt.StringID{a, c}) {
		t.Errorf("order = %v", l.IDs())
	}
	e, _ := l.Get(a)
	if e.Decoded.Render() != "second" || e.Sprite != 2 {
		t.Errorf("entry = %+v", e)
	}
}

func TestCanonicalLanguages(t *testing.T) {
	b := NewBuilder()
	id := grffmt.ExtendedString(0xD000)
	record(t, b, 0x82, id, "hallo", 1)
	record(t, b, 0x01, id, "hello", 1)

	tab := b.Finalize()
	if got := tab.Languages(); !reflect.DeepEqual(got, []grffmt.LangID{0x01, 0x02}) {
		t.Errorf("languages = %v", got)
	}
	l, _ := tab.Language(0x02)
	e, _ := l.Get(id)
	if e.Physical != 0x82 {
		t.Errorf("physical = %#x, want 0x82", e.Physical)
	}
	if tr := tab.Translations(id); len(tr) != 2 {
		t.Errorf("translations = %v", tr)
	}
	if tab.Len() != 1 {
		t.Errorf("table len = %d", tab.Len())
	}
}

func TestNames(t *testing.T) {
	b := NewBuilder()
	id := grffmt.FeatureString(0x00, 0x10)
	if err := b.Name(id, "STR_MY_ENGINE"); err != nil {
		t.Fatal(err)
	}
	tab := b.Finalize()
	if n, ok := tab.Name(id); !ok || n != "STR_MY_ENGINE" {
		t.Errorf("name = %q, %v", n, ok)
	}
	if len(tab.Languages()) != 0 {
		t.Errorf("a name must not create a language")
	}
	if !reflect.DeepEqual(tab.IDs(), []grffmt.StringID{id}) {
		t.Errorf("ids = %v", tab.IDs())
	}
}

func TestFinalized(t *testing.T) {
	b := NewBuilder()
	b.Finalize()
	err := b.Record(0x7F, grffmt.FeatureString(0, 0), grfstr.Decoded{}, nil, 1)
	if !errors.Is(err, ErrFinalized) {
		t.Errorf("Record err = %v", err)
	}
	if err := b.Name(grffmt.FeatureString(0, 0), "X"); !errors.Is(err, ErrFinalized) {
		t.Errorf("Name err = %v", err)
	}
}

func TestEachOrder(t *testing.T) {
	b := NewBuilder()
	ids := []grffmt.StringID{grffmt.FeatureString(1, 5), grffmt.FeatureString(1, 3), grffmt.ErrorString(9)}
	for i, id := range ids {
		record(t, b, 0x00, id, "x", i+1)
	}
	l, _ := b.Finalize().Language(0x00)
	var got []grffmt.StringID
	l.Each(func(id grffmt.StringID, _ Entry) { got = append(got, id) })
	if !reflect.DeepEqual(got, ids) {
		t.Errorf("Each order = %v, want %v", got, ids)
	}
}
