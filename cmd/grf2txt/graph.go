package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"grf2txt/internal/refgraph"
)

func cmdGraph(ctx context.Context, args []string) error {
	c := newCommon("graph")
	out := c.fs.String("out", "", "write DOT to this file instead of stdout")
	title := c.fs.String("title", "", "graph title (default: file name)")

	grf, err := c.parse(args)
	if err != nil {
		return err
	}
	res, err := c.runExtract(ctx, grf)
	if err != nil {
		return err
	}

	if *title == "" {
		*title = filepath.Base(grf)
	}
	g := refgraph.Build(res.Table)
	dot := refgraph.DOT(g, *title)
	if *out == "" {
		_, err = fmt.Fprint(stdout, dot)
		return err
	}
	if err := os.WriteFile(*out, []byte(dot), 0644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	fmt.Fprintf(os.Stderr, "%d strings, %d references -> %s\n", len(g.Nodes), len(g.Edges), *out)
	return nil
}
