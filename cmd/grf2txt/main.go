package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"grf2txt/internal/log"
)

var stdout io.Writer = os.Stdout

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:])
	stop()
	_ = log.Close()

	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if errors.Is(err, errUsage) {
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	switch args[0] {
	case "extract":
		return cmdExtract(ctx, args[1:])
	case "scan":
		return cmdScan(ctx, args[1:])
	case "strings":
		return cmdStrings(ctx, args[1:])
	case "graph":
		return cmdGraph(ctx, args[1:])
	case "langs":
		return cmdLangs(ctx, args[1:])
	case "version":
		return cmdVersion(args[1:])
	case "help", "-h", "--help":
		usage()
		return nil
	}
	// grf2txt [flags] <file.grf> is extract.
	if strings.HasPrefix(args[0], "-") || fileExists(args[0]) {
		return cmdExtract(ctx, args)
	}
	fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
	return errUsage
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func usage() {
	fmt.Fprintf(os.Stderr, `grf2txt: extract language files from NewGRF containers

Usage:
  grf2txt [extract] <file.grf> [-l <dir>] [-u] [--json]   Write lang/<language>.txt files
  grf2txt scan    <file.grf> [--json]                      Print container summary and diagnostics
  grf2txt strings <file.grf> [--lang 0x01] [--raw] [--json] Print decoded strings
  grf2txt graph   <file.grf> [--out refs.dot]              String reference graph as DOT
  grf2txt langs   [--refresh] [--json]                     Show the language list
  grf2txt version                                          Print version

Flags:
  --config <path>          Config file (default $XDG_CONFIG_HOME/grf2txt/config.yaml)
  -l, --lang-dir <dir>     Language file directory, relative to the GRF (default lang)
  -u, --unnamed-strings    Also extract strings without a string name
  --lang-info-cache <path> SQLite cache for the language list
  --offline                Never download the language list
  --charset <name>         Legacy charset for unmapped bytes: none, latin1, windows1252
  --workers <n>            Parallel string decoding
  --strict                 Fail on first corrupt chunk
  --max-steps <n>          Sprite cap
  --log-level <level>      debug, info, warn, error
  --log-format <fmt>       console or json
  --log-file <path>        Also log JSON to a rotating file
`)
}
