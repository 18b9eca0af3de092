package langinfo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"grf2txt/internal/log"
)

// DefaultTTL is how long a cached list is used without refetching.
const DefaultTTL = 16 * time.Hour

// Options controls where Load looks for the language list.
type Options struct {
	URL       string
	CachePath string        // empty disables the cache
	TTL       time.Duration // 0 uses DefaultTTL
	Timeout   time.Duration // per fetch; 0 means no extra deadline
	Offline   bool          // never touch the network
	Client    *http.Client
	Now       func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) ttl() time.Duration {
	if o.TTL > 0 {
		return o.TTL
	}
	return DefaultTTL
}

// Load returns the best available table: a fresh cache, then the network,
// then a stale cache, then the built-ins. It only fails when ctx is done.
func Load(ctx context.Context, opts Options) (*Table, error) {
	l := log.WithOperation(log.WithComponent("langinfo"), "load")

	var cached []LangInfo
	var cachedAt time.Time
	var cache *Cache
	if opts.CachePath != "" {
		c, err := OpenCache(ctx, opts.CachePath)
		if err != nil {
			l.Warn("language cache unavailable", slog.Any("err", err))
		} else {
			cache = c
			defer cache.Close()
			cached, cachedAt, err = cache.Load(ctx)
			if err != nil && !errors.Is(err, ErrCacheEmpty) {
				l.Warn("language cache unreadable", slog.Any("err", err))
			}
		}
	}

	if len(cached) > 0 && opts.now().Before(cachedAt.Add(opts.ttl())) {
		l.Debug("using cached language list", slog.Int("languages", len(cached)), slog.Time("fetched_at", cachedAt))
		return NewTable(cached, OriginCache, cachedAt), nil
	}

	if !opts.Offline && opts.URL != "" {
		list, err := fetch(ctx, opts)
		if err == nil {
			at := opts.now()
			if cache != nil {
				if err := cache.Store(ctx, list, at); err != nil {
					l.Warn("language cache not updated", slog.Any("err", err))
				}
			}
			l.Debug("fetched language list", slog.Int("languages", len(list)), slog.String("url", opts.URL))
			return NewTable(list, OriginNetwork, at), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		l.Warn("language list fetch failed", slog.String("url", opts.URL), slog.Any("err", err))
	}

	if len(cached) > 0 {
		l.Info("using stale language list", slog.Time("fetched_at", cachedAt))
		return NewTable(cached, OriginStale, cachedAt), nil
	}
	l.Info("using built-in language list")
	return Builtin(), nil
}

// Refresh fetches the list unconditionally and stores it in the cache.
func Refresh(ctx context.Context, opts Options) (*Table, error) {
	if opts.URL == "" {
		return nil, errors.New("langinfo: no language list url")
	}
	list, err := fetch(ctx, opts)
	if err != nil {
		return nil, err
	}
	at := opts.now()
	if opts.CachePath != "" {
		c, err := OpenCache(ctx, opts.CachePath)
		if err != nil {
			return nil, err
		}
		defer c.Close()
		if err := c.Store(ctx, list, at); err != nil {
			return nil, fmt.Errorf("langinfo: refresh: %w", err)
		}
	}
	return NewTable(list, OriginNetwork, at), nil
}

func fetch(ctx context.Context, opts Options) ([]LangInfo, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	return Fetch(ctx, opts.Client, opts.URL)
}
