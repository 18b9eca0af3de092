// Package extract runs the full pipeline over one container: walk the chunks,
// dispatch actions, translate every string and build the language tables.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"grf2txt/internal/action"
	"grf2txt/internal/container"
	"grf2txt/internal/grffmt"
	"grf2txt/internal/grfstr"
	"grf2txt/internal/log"
	"grf2txt/internal/strtab"
)

// Options controls a run.
type Options struct {
	grffmt.Options
	Workers   int    // parallel string translation; <= 1 is serial
	Charset   string // legacy charset for unmapped high bytes
	CacheSize int    // decoded-string memo size; 0 disables it
}

// Result is everything a run produced. Table is always set, even when the
// walk stopped early.
type Result struct {
	Info    container.Info
	Meta    *action.Meta
	Table   *strtab.Table
	Diags   []grffmt.Diag
	Actions map[byte]int // dispatched actions by type
	Strings int          // raw strings seen, names included
}

// Run extracts the string tables of data. Header failures and, in strict mode,
// the first chunk error are returned; everything else becomes a diagnostic.
func Run(ctx context.Context, data []byte, opts Options) (*Result, error) {
	l := log.WithOperation(log.WithComponent("extract"), "run")

	dec, err := grfstr.NewDecoder(grfstr.Options{Charset: opts.Charset, CacheSize: opts.CacheSize})
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	var diags grffmt.Diags
	r, err := container.Open(data, opts.Options, &diags)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	l.Debug("container opened", slog.String("version", r.Version().String()), slog.Int("bytes", len(data)))

	d := action.NewDispatcher()
	res := &Result{Meta: d.Meta(), Actions: make(map[byte]int)}
	var entries []action.Entry

	walkErr := container.Walk(r, func(ch container.Chunk) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		a, ok, err := d.Dispatch(ch)
		if !ok {
			return nil
		}
		res.Actions[a.Type]++
		if err != nil {
			if opts.Mode == grffmt.ModeStrict {
				return &grffmt.ChunkError{Sprite: ch.Index, Offset: ch.Offset, Err: err}
			}
			diags.AddErr(uint64(ch.Offset), ch.Index, err)
			return nil
		}
		entries = append(entries, a.Entries...)
		return nil
	})
	switch {
	case walkErr == nil:
	case errors.Is(walkErr, context.Canceled), errors.Is(walkErr, context.DeadlineExceeded):
		return nil, walkErr
	case opts.Mode == grffmt.ModeStrict:
		return nil, fmt.Errorf("extract: %w", walkErr)
	default:
		var ce *grffmt.ChunkError
		if errors.As(walkErr, &ce) {
			diags.AddErr(uint64(ce.Offset), ce.Sprite, walkErr)
		} else {
			diags.AddErr(0, -1, walkErr)
		}
	}
	res.Info = r.Info()
	res.Strings = len(entries)

	decoded, err := translate(ctx, dec, entries, opts.Workers)
	if err != nil {
		return nil, err
	}

	b := strtab.NewBuilder()
	for i, e := range entries {
		if grffmt.CanonicalLang(e.Lang) == grffmt.LangName {
			err = b.Name(e.ID, decoded[i].Text())
		} else {
			err = b.Record(e.Lang, e.ID, decoded[i], e.Raw, e.Sprite)
		}
		if err != nil {
			return nil, fmt.Errorf("extract: %w", err)
		}
	}
	res.Table = b.Finalize()
	res.Diags = diags.Items()

	l.Debug("run complete",
		slog.Int("strings", res.Strings),
		slog.Int("ids", res.Table.Len()),
		slog.Int("languages", len(res.Table.Languages())),
		slog.Int("diags", len(res.Diags)),
		slog.Bool("complete", res.Info.Complete),
	)
	return res, nil
}

// translate decodes every entry. Results land at the entry's index, so the
// caller can feed the builder in container order whatever the worker count.
func translate(ctx context.Context, dec *grfstr.Decoder, entries []action.Entry, workers int) ([]grfstr.Decoded, error) {
	out := make([]grfstr.Decoded, len(entries))
	if workers <= 1 {
		for i, e := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = dec.Decode(e.Raw)
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = dec.Decode(entries[i].Raw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
