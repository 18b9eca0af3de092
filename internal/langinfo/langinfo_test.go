package langinfo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"grf2txt/internal/grffmt"
)

const sampleCSV = `isocode,grflangid,filename,name,ownname,plural,gender,case
en_GB,0x01,english,English (UK),English (UK),0,,
de_DE,0x02,german,German,Deutsch,0,m w n p,nom gen dat akk
fr_FR,3,french,French,Français,2,m f,
`

func TestParseCSV(t *testing.T) {
	list, err := ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("rows = %d", len(list))
	}
	de := list[1]
	if de.GRFLangID != 0x02 || de.Filename != "german" || de.OwnName != "Deutsch" {
		t.Errorf("de = %+v", de)
	}
	if !reflect.DeepEqual(de.Gender, []string{"m", "w", "n", "p"}) || !reflect.DeepEqual(de.Case, []string{"nom", "gen", "dat", "akk"}) {
		t.Errorf("de gender/case = %v / %v", de.Gender, de.Case)
	}
	if fr := list[2]; fr.GRFLangID != 3 || fr.Plural != 2 || len(fr.Case) != 0 {
		t.Errorf("fr = %+v", fr)
	}
}

func TestParseCSVErrors(t *testing.T) {
	tests := map[string]string{
		"missing column": "isocode,filename\nen_GB,english\n",
		"id too large":   "grflangid,filename\n0x80,x\n",
		"bad id":         "grflangid,filename\nabc,x\n",
		"bad plural":     "grflangid,filename,plural\n1,english,many\n",
		"no rows":        "grflangid,filename\n",
		"empty":          "",
		"ragged":         "grflangid,filename\n1,english,extra\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseCSV(strings.NewReader(in)); !errors.Is(err, ErrBadList) {
				t.Errorf("err = %v", err)
			}
		})
	}
}

// listServer serves sampleCSV and counts requests. Setting fail makes it
// answer 503.
type listServer struct {
	*httptest.Server
	hits atomic.Int32
	fail atomic.Bool
	ua   atomic.Value
}

func newListServer(t *testing.T) *listServer {
	t.Helper()
	s := &listServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.ua.Store(r.UserAgent())
		if s.fail.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		fmt.Fprint(w, sampleCSV)
	}))
	t.Cleanup(s.Close)
	return s
}

func TestFetch(t *testing.T) {
	s := newListServer(t)
	list, err := Fetch(context.Background(), s.Client(), s.URL)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Errorf("rows = %d", len(list))
	}
	if ua, _ := s.ua.Load().(string); !strings.HasPrefix(ua, "grf2txt/") {
		t.Errorf("user agent = %q", ua)
	}

	s.fail.Store(true)
	if _, err := Fetch(context.Background(), s.Client(), s.URL); err == nil || !strings.Contains(err.Error(), "503") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadUsesCacheWithinTTL(t *testing.T) {
	s := newListServer(t)
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := t0
	opts := Options{
		URL:       s.URL,
		CachePath: filepath.Join(t.TempDir(), "cache", "langinfo.sqlite"),
		Client:    s.Client(),
		Now:       func() time.Time { return now },
	}
	ctx := context.Background()

	tab, err := Load(ctx, opts)
	if err != nil || tab.Origin != OriginNetwork {
		t.Fatalf("first load = %v, %v", tab, err)
	}

	now = t0.Add(time.Hour)
	tab, err = Load(ctx, opts)
	if err != nil || tab.Origin != OriginCache || s.hits.Load() != 1 {
		t.Fatalf("second load origin = %v, hits = %d, err = %v", tab.Origin, s.hits.Load(), err)
	}
	if !tab.FetchedAt.Equal(t0) {
		t.Errorf("fetched at = %v, want %v", tab.FetchedAt, t0)
	}
	if li, ok := tab.Lookup(0x02); !ok || li.Filename != "german" || len(li.Gender) != 4 {
		t.Errorf("lookup = %+v, %v", li, ok)
	}

	now = t0.Add(DefaultTTL + time.Minute)
	tab, err = Load(ctx, opts)
	if err != nil || tab.Origin != OriginNetwork || s.hits.Load() != 2 {
		t.Fatalf("expired load origin = %v, hits = %d, err = %v", tab.Origin, s.hits.Load(), err)
	}
}

func TestLoadFallsBackToStaleCache(t *testing.T) {
	s := newListServer(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	opts := Options{
		URL:       s.URL,
		CachePath: filepath.Join(t.TempDir(), "langinfo.sqlite"),
		Client:    s.Client(),
		TTL:       time.Hour,
		Now:       func() time.Time { return now },
	}
	if _, err := Load(context.Background(), opts); err != nil {
		t.Fatal(err)
	}

	s.fail.Store(true)
	now = now.Add(2 * time.Hour)
	tab, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if tab.Origin != OriginStale || tab.Len() != 3 {
		t.Errorf("origin = %v, len = %d", tab.Origin, tab.Len())
	}

	opts.Offline = true
	hits := s.hits.Load()
	if tab, _ := Load(context.Background(), opts); tab.Origin != OriginStale || s.hits.Load() != hits {
		t.Errorf("offline load touched the network or lost the cache: %v", tab.Origin)
	}
}

func TestLoadBuiltin(t *testing.T) {
	s := newListServer(t)
	s.fail.Store(true)

	tab, err := Load(context.Background(), Options{URL: s.URL, Client: s.Client()})
	if err != nil {
		t.Fatal(err)
	}
	if tab.Origin != OriginBuiltin {
		t.Fatalf("origin = %v", tab.Origin)
	}
	if li, ok := tab.Lookup(0x01); !ok || li.Filename != "english" {
		t.Errorf("english = %+v, %v", li, ok)
	}

	tab, _ = Load(context.Background(), Options{Offline: true, URL: s.URL})
	if tab.Origin != OriginBuiltin {
		t.Errorf("offline origin = %v", tab.Origin)
	}
}

func TestLoadCancelled(t *testing.T) {
	s := newListServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx, Options{URL: s.URL, Client: s.Client()}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestRefresh(t *testing.T) {
	s := newListServer(t)
	path := filepath.Join(t.TempDir(), "langinfo.sqlite")
	tab, err := Refresh(context.Background(), Options{URL: s.URL, CachePath: path, Client: s.Client()})
	if err != nil || tab.Len() != 3 {
		t.Fatalf("refresh = %v, %v", tab, err)
	}

	c, err := OpenCache(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	list, _, err := c.Load(context.Background())
	if err != nil || len(list) != 3 {
		t.Errorf("cached = %d, %v", len(list), err)
	}

	s.fail.Store(true)
	if _, err := Refresh(context.Background(), Options{URL: s.URL, Client: s.Client()}); err == nil {
		t.Error("refresh against a failing server succeeded")
	}
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := OpenCache(ctx, filepath.Join(t.TempDir(), "c.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, _, err := c.Load(ctx); !errors.Is(err, ErrCacheEmpty) {
		t.Fatalf("empty load err = %v", err)
	}
	want, _ := ParseCSV(strings.NewReader(sampleCSV))
	at := time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)
	if err := c.Store(ctx, want, at); err != nil {
		t.Fatal(err)
	}
	got, gotAt, err := c.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !gotAt.Equal(at) {
		t.Errorf("at = %v", gotAt)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v\nwant %+v", got, want)
	}
}

func TestTable(t *testing.T) {
	tab := NewTable([]LangInfo{
		{ISOCode: "de_DE", GRFLangID: 0x02, Filename: "german"},
		{ISOCode: "en_GB", GRFLangID: 0x01, Filename: "english"},
		{ISOCode: "de_AT", GRFLangID: 0x02, Filename: "austrian"},
	}, OriginBuiltin, time.Time{})

	if li, _ := tab.Lookup(0x02); li.Filename != "german" {
		t.Errorf("first row must win, got %q", li.Filename)
	}
	if got := tab.Filename(0x7D); got != "unknown_7d" {
		t.Errorf("Filename(0x7D) = %q", got)
	}
	if li, ok := tab.ByISOCode("de_AT"); !ok || li.Filename != "austrian" {
		t.Errorf("ByISOCode = %+v, %v", li, ok)
	}
	if li, ok := tab.ByFilename("english"); !ok || li.GRFLangID != 0x01 {
		t.Errorf("ByFilename = %+v, %v", li, ok)
	}
	all := tab.All()
	if all[0].GRFLangID != 0x01 || all[1].ISOCode != "de_DE" || all[2].ISOCode != "de_AT" {
		t.Errorf("All = %+v", all)
	}
}

func TestBuiltinIDsUnique(t *testing.T) {
	seen := make(map[grffmt.LangID]string)
	for _, li := range builtin {
		if prev, dup := seen[li.GRFLangID]; dup {
			t.Errorf("id %s used by %s and %s", li.GRFLangID, prev, li.Filename)
		}
		seen[li.GRFLangID] = li.Filename
	}
}
