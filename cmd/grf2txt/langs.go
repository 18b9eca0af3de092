package main

import (
	"context"
	"fmt"

	"grf2txt/internal/langinfo"
	"grf2txt/internal/output"
	"grf2txt/internal/version"
)

func cmdLangs(ctx context.Context, args []string) error {
	c := newCommon("langs")
	refresh := c.fs.Bool("refresh", false, "download the language list now")
	jsonOut := c.fs.Bool("json", false, "output as JSON")

	if _, err := c.parse(args); err != nil {
		return err
	}

	var tab *langinfo.Table
	var err error
	if *refresh {
		tab, err = langinfo.Refresh(ctx, c.langOptions())
	} else {
		tab, err = langinfo.Load(ctx, c.langOptions())
	}
	if err != nil {
		return err
	}

	if *jsonOut {
		return output.WriteJSON(stdout, tab.All())
	}
	fmt.Fprintf(stdout, "Source: %s", tab.Origin)
	if !tab.FetchedAt.IsZero() {
		fmt.Fprintf(stdout, " (fetched %s)", tab.FetchedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(stdout)
	for _, li := range tab.All() {
		fmt.Fprintf(stdout, "0x%02X  %-6s %-24s %-28s plural=%d\n", uint8(li.GRFLangID), li.ISOCode, li.Filename, li.Name, li.Plural)
	}
	return nil
}

func cmdVersion(args []string) error {
	if len(args) > 0 {
		return errUsage
	}
	fmt.Fprintf(stdout, "grf2txt %s\n", version.String())
	return nil
}
