// Package langinfo maps NewGRF language ids to OpenTTD language metadata:
// iso code, language file name, plural form and the gender and case names.
//
// The list is fetched from the translator service as CSV, cached in a local
// SQLite database and falls back to a built-in table when neither the network
// nor the cache can serve it.
package langinfo

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"grf2txt/internal/grffmt"
	"grf2txt/internal/version"
)

// LangInfo describes one OpenTTD language.
type LangInfo struct {
	ISOCode   string        `json:"isocode"`
	GRFLangID grffmt.LangID `json:"grflangid"`
	Filename  string        `json:"filename"`
	Name      string        `json:"name"`
	OwnName   string        `json:"ownname"`
	Plural    int           `json:"plural"`
	Gender    []string      `json:"gender,omitempty"`
	Case      []string      `json:"case,omitempty"`
}

// Origin tells where a table came from.
type Origin string

const (
	OriginNetwork Origin = "network"
	OriginCache   Origin = "cache"
	OriginStale   Origin = "stale-cache"
	OriginBuiltin Origin = "builtin"
)

// Table is a read-only language lookup.
type Table struct {
	Origin    Origin
	FetchedAt time.Time // zero for built-ins
	list      []LangInfo
	byID      map[grffmt.LangID]int
}

// NewTable indexes list. When an id appears twice the first row wins.
func NewTable(list []LangInfo, origin Origin, fetchedAt time.Time) *Table {
	t := &Table{Origin: origin, FetchedAt: fetchedAt, list: list, byID: make(map[grffmt.LangID]int, len(list))}
	for i, li := range list {
		if _, dup := t.byID[li.GRFLangID]; !dup {
			t.byID[li.GRFLangID] = i
		}
	}
	return t
}

// Lookup returns the language with the given id.
func (t *Table) Lookup(id grffmt.LangID) (LangInfo, bool) {
	i, ok := t.byID[id]
	if !ok {
		return LangInfo{}, false
	}
	return t.list[i], true
}

// ByISOCode returns the language with the given iso code, e.g. "de_DE".
func (t *Table) ByISOCode(code string) (LangInfo, bool) {
	for _, li := range t.list {
		if li.ISOCode == code {
			return li, true
		}
	}
	return LangInfo{}, false
}

// ByFilename returns the language stored in <name>.txt.
func (t *Table) ByFilename(name string) (LangInfo, bool) {
	for _, li := range t.list {
		if li.Filename == name {
			return li, true
		}
	}
	return LangInfo{}, false
}

// Filename returns the language file base name for id. Unknown ids get a
// synthetic name so their strings are still written.
func (t *Table) Filename(id grffmt.LangID) string {
	if li, ok := t.Lookup(id); ok && li.Filename != "" {
		return li.Filename
	}
	return fmt.Sprintf("unknown_%02x", uint8(id))
}

// All returns the languages sorted by id.
func (t *Table) All() []LangInfo {
	out := slices.Clone(t.list)
	slices.SortStableFunc(out, func(a, b LangInfo) int { return int(a.GRFLangID) - int(b.GRFLangID) })
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.list) }

// ErrBadList is returned for a language list that cannot be parsed.
var ErrBadList = errors.New("langinfo: malformed language list")

// ParseCSV reads the translator language list. The first row names the
// columns; grflangid and filename are required, the rest default to empty.
func ParseCSV(r io.Reader) ([]LangInfo, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrBadList, err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, req := range []string{"grflangid", "filename"} {
		if _, ok := col[req]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrBadList, req)
		}
	}

	var out []LangInfo
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadList, err)
		}
		field := func(name string) string {
			if i, ok := col[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		id, err := strconv.ParseUint(field("grflangid"), 0, 8)
		if err != nil || id > 0x7F {
			return nil, fmt.Errorf("%w: line %d: grflangid %q", ErrBadList, line, field("grflangid"))
		}
		li := LangInfo{
			ISOCode:   field("isocode"),
			GRFLangID: grffmt.LangID(id),
			Filename:  field("filename"),
			Name:      field("name"),
			OwnName:   field("ownname"),
			Gender:    strings.Fields(field("gender")),
			Case:      strings.Fields(field("case")),
		}
		if p := field("plural"); p != "" {
			if li.Plural, err = strconv.Atoi(p); err != nil {
				return nil, fmt.Errorf("%w: line %d: plural %q", ErrBadList, line, p)
			}
		}
		out = append(out, li)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no languages", ErrBadList)
	}
	return out, nil
}

// Fetch downloads and parses the language list at url.
func Fetch(ctx context.Context, client *http.Client, url string) ([]LangInfo, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("langinfo: fetch: %w", err)
	}
	req.Header.Set("User-Agent", "grf2txt/"+version.String())
	req.Header.Set("Accept", "text/csv, text/plain")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("langinfo: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("langinfo: fetch %s: %s", url, resp.Status)
	}
	return ParseCSV(resp.Body)
}
