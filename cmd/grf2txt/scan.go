package main

import (
	"context"
	"fmt"
	"slices"

	"grf2txt/internal/action"
	"grf2txt/internal/container"
	"grf2txt/internal/grffmt"
	"grf2txt/internal/output"
)

// scanReport is the --json form of scan.
type scanReport struct {
	File      string         `json:"file"`
	GRFID     string         `json:"grfid"`
	Container container.Info `json:"container"`
	Meta      *action.Meta   `json:"meta"`
	Actions   map[string]int `json:"actions"`
	Strings   int            `json:"strings"`
	IDs       int            `json:"ids"`
	Languages []string       `json:"languages"`
	Diags     []grffmt.Diag  `json:"diagnostics"`
}

func cmdScan(ctx context.Context, args []string) error {
	c := newCommon("scan")
	jsonOut := c.fs.Bool("json", false, "output as JSON")

	grf, err := c.parse(args)
	if err != nil {
		return err
	}
	res, err := c.runExtract(ctx, grf)
	if err != nil {
		return err
	}

	types := make([]byte, 0, len(res.Actions))
	for t := range res.Actions {
		types = append(types, t)
	}
	slices.Sort(types)

	if *jsonOut {
		rep := scanReport{
			File:      grf,
			GRFID:     res.Meta.GRFIDString(),
			Container: res.Info,
			Meta:      res.Meta,
			Actions:   make(map[string]int, len(types)),
			Strings:   res.Strings,
			IDs:       res.Table.Len(),
			Diags:     res.Diags,
		}
		for _, t := range types {
			rep.Actions[fmt.Sprintf("%02X", t)] = res.Actions[t]
		}
		for _, lid := range res.Table.Languages() {
			rep.Languages = append(rep.Languages, lid.String())
		}
		return output.WriteJSON(stdout, rep)
	}

	info := res.Info
	fmt.Fprintf(stdout, "Container: %s, complete=%v\n", info.Version, info.Complete)
	fmt.Fprintf(stdout, "Sprites: %d pseudo, %d real, %d references, %d sprite section entries\n",
		info.Pseudo, info.Real, info.References, info.SpriteData)
	if info.Skipped > 0 {
		fmt.Fprintf(stdout, "Skipped records: %d\n", info.Skipped)
	}
	if info.MD5 != "" {
		fmt.Fprintf(stdout, "MD5: %s\n", info.MD5)
	}
	fmt.Fprintf(stdout, "GRFID: %s (GRF version %d)\n", res.Meta.GRFIDString(), res.Meta.GRFVersion)
	if v := res.Meta.Version; v != nil {
		fmt.Fprintf(stdout, "Version: %d\n", *v)
	}
	if v := res.Meta.MinCompatible; v != nil {
		fmt.Fprintf(stdout, "Min compatible version: %d\n", *v)
	}
	fmt.Fprintf(stdout, "Actions:")
	for _, t := range types {
		fmt.Fprintf(stdout, " %02X=%d", t, res.Actions[t])
	}
	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "Strings: %d raw, %d ids\n", res.Strings, res.Table.Len())
	for _, lid := range res.Table.Languages() {
		l, _ := res.Table.Language(lid)
		fmt.Fprintf(stdout, "  %-8s %d\n", lid, l.Len())
	}
	if len(res.Diags) > 0 {
		fmt.Fprintf(stdout, "Diagnostics: %d\n", len(res.Diags))
		for _, d := range res.Diags {
			fmt.Fprintf(stdout, "  %s\n", d)
		}
	}
	return nil
}
