package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"grf2txt/internal/config"
	"grf2txt/internal/extract"
	"grf2txt/internal/grffmt"
	"grf2txt/internal/langinfo"
	"grf2txt/internal/log"
)

var errUsage = errors.New("usage")

// common holds the flags every subcommand shares. Flags only override the
// config when given on the command line.
type common struct {
	configPath string
	cfg        config.Config
	fs         *flag.FlagSet
}

func newCommon(name string) *common {
	c := &common{cfg: config.Defaults(), fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	fs := c.fs
	fs.StringVar(&c.configPath, "config", "", "config file")
	fs.String("charset", "", "legacy charset: none, latin1, windows1252")
	fs.Int("workers", 0, "parallel string decoding")
	fs.Bool("strict", false, "fail on first corrupt chunk")
	fs.Int("max-steps", 0, "sprite cap")
	fs.String("lang-info-cache", "", "language list cache (SQLite)")
	fs.Bool("offline", false, "never download the language list")
	fs.String("log-level", "", "log level")
	fs.String("log-format", "", "log format: console or json")
	fs.String("log-file", "", "rotating JSON log file")
	return c
}

// parse parses args, allowing one positional argument in front of or among
// the flags, then loads config and initializes logging.
func (c *common) parse(args []string) (string, error) {
	if err := c.fs.Parse(args); err != nil {
		return "", err
	}
	var pos string
	if c.fs.NArg() > 0 {
		pos = c.fs.Arg(0)
		if err := c.fs.Parse(c.fs.Args()[1:]); err != nil {
			return "", err
		}
		if c.fs.NArg() > 0 {
			return "", fmt.Errorf("unexpected arguments: %s", strings.Join(c.fs.Args(), " "))
		}
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return "", err
	}
	c.fs.Visit(func(f *flag.Flag) { applyFlag(&cfg, f) })
	c.cfg = cfg

	log.Init(log.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	return pos, nil
}

func applyFlag(cfg *config.Config, f *flag.Flag) {
	v := f.Value.String()
	atoi := func() int {
		n, _ := strconv.Atoi(v)
		return n
	}
	on := v == "true"
	switch f.Name {
	case "lang-dir", "l":
		cfg.LangDir = v
	case "unnamed-strings", "u":
		cfg.UnnamedStrings = on
	case "charset":
		cfg.Charset = strings.ToLower(v)
	case "workers":
		cfg.Workers = atoi()
	case "strict":
		cfg.Strict = on
	case "max-steps":
		cfg.MaxSteps = atoi()
	case "lang-info-cache":
		cfg.LangInfo.Cache = v
	case "offline":
		cfg.LangInfo.Offline = on
	case "log-level":
		cfg.Logging.Level = v
	case "log-format":
		cfg.Logging.Format = v
	case "log-file":
		cfg.Logging.File = v
	}
}

func (c *common) extractOptions() extract.Options {
	opts := extract.Options{
		Options:   grffmt.Options{Mode: grffmt.ModeBestEffort, MaxSteps: c.cfg.MaxSteps},
		Workers:   c.cfg.Workers,
		Charset:   c.cfg.Charset,
		CacheSize: c.cfg.CacheSize,
	}
	if c.cfg.Strict {
		opts.Mode = grffmt.ModeStrict
	}
	if opts.Charset == "none" {
		opts.Charset = ""
	}
	return opts
}

// runExtract reads and extracts path, logging every diagnostic at warn.
func (c *common) runExtract(ctx context.Context, path string) (*extract.Result, error) {
	if path == "" {
		return nil, errUsage
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	res, err := extract.Run(ctx, data, c.extractOptions())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l := log.WithComponent("grf2txt").With(slog.String("file", path))
	for _, d := range res.Diags {
		l.Warn(d.Msg, slog.String("kind", string(d.Kind)), slog.Int("sprite", d.Sprite), slog.Uint64("offset", d.Offset))
	}
	return res, nil
}

func (c *common) langOptions() langinfo.Options {
	li := c.cfg.LangInfo
	path := li.Cache
	if path == "" {
		if dir, err := config.CacheDir(); err == nil {
			path = filepath.Join(dir, "langinfo.sqlite")
		}
	}
	return langinfo.Options{
		URL:       li.URL,
		CachePath: path,
		TTL:       li.TTL,
		Timeout:   li.Timeout,
		Offline:   li.Offline,
	}
}

// parseLang accepts 0x01, 1 or the generic/name aliases.
func parseLang(s string) (grffmt.LangID, error) {
	switch strings.ToLower(s) {
	case "generic":
		return grffmt.LangGeneric, nil
	case "name":
		return grffmt.LangName, nil
	}
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil || n > 0x7F {
		return 0, fmt.Errorf("invalid language id %q", s)
	}
	return grffmt.LangID(n), nil
}
