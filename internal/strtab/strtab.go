// Package strtab accumulates decoded strings into per-language tables.
package strtab

import (
	"errors"
	"slices"

	"grf2txt/internal/grffmt"
	"grf2txt/internal/grfstr"
)

// ErrFinalized is returned when recording into a finalized builder.
var ErrFinalized = errors.New("strtab: builder already finalized")

// Entry is one string of a language table.
type Entry struct {
	Decoded  grfstr.Decoded
	Raw      []byte
	Physical uint8 // language byte as stored in the container
	Sprite   int   // sprite that last wrote the entry
}

// Language is the insertion-ordered string table of one canonical language.
type Language struct {
	ID      grffmt.LangID
	order   []grffmt.StringID
	entries map[grffmt.StringID]Entry
}

func newLanguage(id grffmt.LangID) *Language {
	return &Language{ID: id, entries: make(map[grffmt.StringID]Entry)}
}

// Len returns the number of strings.
func (l *Language) Len() int { return len(l.order) }

// IDs returns the string ids in first-insertion order.
func (l *Language) IDs() []grffmt.StringID { return slices.Clone(l.order) }

// Get returns the entry for id.
func (l *Language) Get(id grffmt.StringID) (Entry, bool) {
	e, ok := l.entries[id]
	return e, ok
}

// Each calls fn for every entry in order.
func (l *Language) Each(fn func(grffmt.StringID, Entry)) {
	for _, id := range l.order {
		fn(id, l.entries[id])
	}
}

func (l *Language) put(id grffmt.StringID, e Entry) {
	if _, ok := l.entries[id]; !ok {
		l.order = append(l.order, id)
	}
	l.entries[id] = e
}

// Table is the finalized result of a run. It is read-only.
type Table struct {
	langs map[grffmt.LangID]*Language
	names map[grffmt.StringID]string
	order []grffmt.StringID // every id in first-seen order, across languages
}

// Languages returns the canonical language ids in ascending order.
func (t *Table) Languages() []grffmt.LangID {
	ids := make([]grffmt.LangID, 0, len(t.langs))
	for id := range t.langs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Language returns the table of one canonical language.
func (t *Table) Language(id grffmt.LangID) (*Language, bool) {
	l, ok := t.langs[id]
	return l, ok
}

// Name returns the string name assigned through the name pseudo language.
func (t *Table) Name(id grffmt.StringID) (string, bool) {
	n, ok := t.names[id]
	return n, ok
}

// IDs returns every string id in the order it was first seen.
func (t *Table) IDs() []grffmt.StringID { return slices.Clone(t.order) }

// Translations returns the entries of id keyed by canonical language.
func (t *Table) Translations(id grffmt.StringID) map[grffmt.LangID]Entry {
	out := make(map[grffmt.LangID]Entry)
	for lid, l := range t.langs {
		if e, ok := l.entries[id]; ok {
			out[lid] = e
		}
	}
	return out
}

// Len returns the number of distinct string ids.
func (t *Table) Len() int { return len(t.order) }

// Builder accumulates strings for one run. It is not safe for concurrent use.
type Builder struct {
	t    *Table
	seen map[grffmt.StringID]bool
	done bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		t: &Table{
			langs: make(map[grffmt.LangID]*Language),
			names: make(map[grffmt.StringID]string),
		},
		seen: make(map[grffmt.StringID]bool),
	}
}

func (b *Builder) touch(id grffmt.StringID) {
	if !b.seen[id] {
		b.seen[id] = true
		b.t.order = append(b.t.order, id)
	}
}

// Record stores a decoded string under the canonical form of physical. A
// later record for the same language and id replaces the earlier one in
// place.
func (b *Builder) Record(physical uint8, id grffmt.StringID, d grfstr.Decoded, raw []byte, sprite int) error {
	if b.done {
		return ErrFinalized
	}
	lid := grffmt.CanonicalLang(physical)
	l, ok := b.t.langs[lid]
	if !ok {
		l = newLanguage(lid)
		b.t.langs[lid] = l
	}
	l.put(id, Entry{Decoded: d, Raw: raw, Physical: physical, Sprite: sprite})
	b.touch(id)
	return nil
}

// Name assigns a symbolic name to id. The last name wins.
func (b *Builder) Name(id grffmt.StringID, name string) error {
	if b.done {
		return ErrFinalized
	}
	b.t.names[id] = name
	b.touch(id)
	return nil
}

// Finalize returns the accumulated table. The builder accepts no further
// records.
func (b *Builder) Finalize() *Table {
	b.done = true
	return b.t
}
