package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"grf2txt/internal/langinfo"
	"grf2txt/internal/log"
	"grf2txt/internal/output"
)

func cmdExtract(ctx context.Context, args []string) error {
	c := newCommon("extract")
	c.fs.String("lang-dir", "", "language file directory, relative to the GRF")
	c.fs.String("l", "", "shorthand for --lang-dir")
	c.fs.Bool("unnamed-strings", false, "also extract strings without a string name")
	c.fs.Bool("u", false, "shorthand for --unnamed-strings")
	jsonOut := c.fs.Bool("json", false, "also write strings.json")

	grf, err := c.parse(args)
	if err != nil {
		return err
	}
	res, err := c.runExtract(ctx, grf)
	if err != nil {
		return err
	}
	l := log.WithOperation(log.WithComponent("grf2txt"), "extract").With(slog.String("file", grf))

	langs, err := langinfo.Load(ctx, c.langOptions())
	if err != nil {
		return err
	}
	l.Debug("language list", slog.String("origin", string(langs.Origin)), slog.Int("languages", langs.Len()))

	plan := output.BuildPlan(res.Table, res.Meta, output.PlanOptions{Unnamed: c.cfg.UnnamedStrings})
	for _, key := range plan.MissingBase {
		l.Warn("missing base language text", slog.String("string", key))
	}
	for _, f := range plan.Files {
		if _, ok := langs.Lookup(f.Lang); !ok {
			l.Warn("unknown language id", slog.String("lang", f.Lang.String()), slog.String("file", langs.Filename(f.Lang)+".txt"))
		}
	}

	dir := c.cfg.LangDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(grf), dir)
	}
	paths, err := output.WriteLangDir(dir, plan, langs)
	if err != nil {
		return err
	}
	for _, p := range paths {
		l.Debug("wrote language file", slog.String("path", p))
	}

	if *jsonOut {
		doc := output.BuildDocument(filepath.Base(grf), res.Info, res.Meta, res.Table, res.Diags)
		p, err := output.WriteStringsJSON(dir, doc)
		if err != nil {
			return err
		}
		l.Debug("wrote strings dump", slog.String("path", p))
	}

	fmt.Fprintln(stdout, plan.Summary)
	return nil
}
