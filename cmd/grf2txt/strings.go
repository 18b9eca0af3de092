package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"grf2txt/internal/grffmt"
	"grf2txt/internal/output"
	"grf2txt/internal/refgraph"
	"grf2txt/internal/strtab"
)

func cmdStrings(ctx context.Context, args []string) error {
	c := newCommon("strings")
	lang := c.fs.String("lang", "", "only this language id (0x01, generic, ...)")
	raw := c.fs.Bool("raw", false, "also print the raw bytes")
	jsonOut := c.fs.Bool("json", false, "print the strings.json document")

	grf, err := c.parse(args)
	if err != nil {
		return err
	}
	var only *grffmt.LangID
	if *lang != "" {
		lid, err := parseLang(*lang)
		if err != nil {
			return err
		}
		only = &lid
	}
	res, err := c.runExtract(ctx, grf)
	if err != nil {
		return err
	}

	if *jsonOut {
		doc := output.BuildDocument(filepath.Base(grf), res.Info, res.Meta, res.Table, res.Diags)
		data, err := output.MarshalDocument(doc)
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	}

	for _, lid := range res.Table.Languages() {
		if only != nil && *only != lid {
			continue
		}
		l, _ := res.Table.Language(lid)
		fmt.Fprintf(stdout, "# %s (%d strings)\n", lid, l.Len())
		l.Each(func(id grffmt.StringID, e strtab.Entry) {
			fmt.Fprintf(stdout, "%s\t%s\n", refgraph.Key(res.Table, id), e.Decoded.Render())
			if *raw {
				fmt.Fprintf(stdout, "\t%s\n", hex.EncodeToString(e.Raw))
			}
		})
	}
	return nil
}
